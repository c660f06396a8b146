package batch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/chronos-tachyon/texthuff"
	"github.com/chronos-tachyon/texthuff/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
)

func TestParseOp(t *testing.T) {
	type testRow struct {
		input  string
		expect Op
		ok     bool
	}

	testData := [...]testRow{
		{input: "compress", expect: Compress, ok: true},
		{input: "Decompress", expect: Decompress, ok: true},
		{input: "zip", ok: false},
		{input: "", ok: false},
	}
	for _, row := range testData {
		actual, err := ParseOp(row.input)
		if row.ok && err != nil {
			t.Errorf("ParseOp(%q): unexpected error: %v", row.input, err)
			continue
		}
		if !row.ok && err == nil {
			t.Errorf("ParseOp(%q): expected an error, got %q", row.input, actual)
			continue
		}
		if actual != row.expect {
			t.Errorf("ParseOp(%q): expected %q, got %q", row.input, row.expect, actual)
		}
	}
}

func TestRunner_OutputPath(t *testing.T) {
	type testRow struct {
		op     Op
		outDir string
		input  string
		expect string
	}

	testData := [...]testRow{
		{op: Compress, input: "a/notes.txt", expect: "a/notes.txt.thz"},
		{op: Compress, outDir: "out", input: "a/notes.txt", expect: filepath.Join("out", "notes.txt.thz")},
		{op: Decompress, input: "a/notes.txt.thz", expect: "a/notes.txt"},
		{op: Decompress, input: "a/notes.bin", expect: "a/notes.bin.out"},
		{op: Decompress, input: ".thz", expect: ".thz.out"},
		{op: Decompress, outDir: "out", input: "a/notes.txt.thz", expect: filepath.Join("out", "notes.txt")},
	}
	for _, row := range testData {
		r := &Runner{Op: row.op, OutDir: row.outDir, Suffix: ".thz"}
		if actual := r.OutputPath(row.input); actual != row.expect {
			t.Errorf("OutputPath(%s, %q): expected %q, got %q", row.op, row.input, row.expect, actual)
		}
	}
}

func TestResult_SpaceSaved(t *testing.T) {
	type testRow struct {
		original   int64
		compressed int64
		expect     float64
	}

	testData := [...]testRow{
		{original: 0, compressed: 10, expect: 0},
		{original: 100, compressed: 25, expect: 75},
		{original: 3, compressed: 2, expect: 33.33},
		{original: 10, compressed: 20, expect: -100},
	}
	for _, row := range testData {
		r := Result{OriginalSize: row.original, CompressedSize: row.compressed}
		if actual := r.SpaceSaved(); actual != row.expect {
			t.Errorf("SpaceSaved(%d, %d): expected %v, got %v", row.original, row.compressed, row.expect, actual)
		}
	}
}

func TestRunner_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	texts := map[string]string{
		"one.txt":   "the cat sat on the mat, the cat sat on the mat",
		"two.txt":   "ünïcödé ✓ ünïcödé ✓ ünïcödé",
		"three.txt": "",
	}
	var inputs []string
	for name, text := range texts {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			t.Fatal(err)
		}
		inputs = append(inputs, path)
	}

	m := metrics.New("test_")
	c := &Runner{
		Op:      Compress,
		Level:   texthuff.LevelMax,
		Suffix:  ".thz",
		Jobs:    2,
		Logger:  zerolog.Nop(),
		Metrics: m,
	}
	compressed, err := c.Run(context.Background(), inputs)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	if len(compressed) != len(inputs) {
		t.Fatalf("compress: expected %d results, got %d", len(inputs), len(compressed))
	}

	outDir := filepath.Join(dir, "restored")
	d := &Runner{
		Op:      Decompress,
		OutDir:  outDir,
		Suffix:  ".thz",
		Logger:  zerolog.Nop(),
		Metrics: m,
	}
	var containers []string
	for i, res := range compressed {
		if res.Input != inputs[i] {
			t.Errorf("result %d: expected input %q, got %q", i, inputs[i], res.Input)
		}
		if res.OriginalSize != int64(len(texts[filepath.Base(res.Input)])) {
			t.Errorf("%s: wrong original size %d", res.Input, res.OriginalSize)
		}
		containers = append(containers, res.Output)
	}
	restored, err := d.Run(context.Background(), containers)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}

	for _, res := range restored {
		name := filepath.Base(res.Output)
		actual, err := os.ReadFile(res.Output)
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if expect := texts[name]; !bytes.Equal(actual, []byte(expect)) {
			t.Errorf("%s: expected %q, got %q", name, expect, actual)
		}
	}

	if actual := testutil.ToFloat64(m.TotalFiles.WithLabelValues("compress", "ok")); actual != 3 {
		t.Errorf("compress ok: expected 3, got %v", actual)
	}
	if actual := testutil.ToFloat64(m.TotalFiles.WithLabelValues("decompress", "ok")); actual != 3 {
		t.Errorf("decompress ok: expected 3, got %v", actual)
	}
}

func TestRunner_PartialFailure(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.txt")
	if err := os.WriteFile(good, []byte("hello hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	bad := filepath.Join(dir, "bad.txt")
	if err := os.WriteFile(bad, []byte{0xff, 0xfe}, 0o644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "missing.txt")

	m := metrics.New("test_")
	r := &Runner{
		Op:      Compress,
		Level:   texthuff.LevelFast,
		Suffix:  ".thz",
		Logger:  zerolog.Nop(),
		Metrics: m,
	}
	results, err := r.Run(context.Background(), []string{good, bad, missing})
	if err == nil {
		t.Fatalf("expected an error")
	}
	if !errors.Is(err, texthuff.ErrInvalidText) {
		t.Errorf("expected the error to wrap ErrInvalidText, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected the error to wrap os.ErrNotExist, got %v", err)
	}

	if results[0].Err != nil {
		t.Errorf("good: unexpected error: %v", results[0].Err)
	}
	if _, err := os.Stat(good + ".thz"); err != nil {
		t.Errorf("good: output missing: %v", err)
	}
	if results[1].Err == nil || results[2].Err == nil {
		t.Errorf("expected bad and missing to fail")
	}

	if actual := testutil.ToFloat64(m.TotalFiles.WithLabelValues("compress", "ok")); actual != 1 {
		t.Errorf("ok: expected 1, got %v", actual)
	}
	if actual := testutil.ToFloat64(m.TotalFiles.WithLabelValues("compress", "error")); actual != 2 {
		t.Errorf("error: expected 2, got %v", actual)
	}
}

func TestRunner_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Runner{Op: Compress, Suffix: ".thz", Logger: zerolog.Nop()}
	results, err := r.Run(ctx, []string{"a.txt", "b.txt"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	for _, res := range results {
		if !errors.Is(res.Err, context.Canceled) {
			t.Errorf("%s: expected context.Canceled, got %v", res.Input, res.Err)
		}
	}
}

func TestRunner_PathCollisions(t *testing.T) {
	dir := t.TempDir()
	write := func(rel, text string) string {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}
	alpha := write("a/x.txt", "alpha alpha alpha")
	bravo := write("b/x.txt", "bravo bravo bravo")

	type testRow struct {
		name   string
		outDir string
		inputs []string
		failed []bool
	}

	testData := [...]testRow{
		{name: "same basename into out-dir", outDir: filepath.Join(dir, "out"), inputs: []string{alpha, bravo}, failed: []bool{false, true}},
		{name: "same input twice", inputs: []string{alpha, alpha}, failed: []bool{false, true}},
		{name: "output is another input", inputs: []string{bravo + ".thz", bravo}, failed: []bool{false, true}},
	}
	for _, row := range testData {
		if row.inputs[0] == bravo+".thz" {
			write("b/x.txt.thz", "not a container")
		}
		r := &Runner{Op: Compress, OutDir: row.outDir, Suffix: ".thz", Logger: zerolog.Nop()}
		results, err := r.Run(context.Background(), row.inputs)
		if !errors.Is(err, ErrPathCollision) {
			t.Errorf("%s: expected ErrPathCollision, got %v", row.name, err)
			continue
		}
		for i, res := range results {
			if actual := errors.Is(res.Err, ErrPathCollision); actual != row.failed[i] {
				t.Errorf("%s: result %d: expected collision=%v, got error %v", row.name, i, row.failed[i], res.Err)
			}
		}
	}

	// The first file's container must be intact.
	out := filepath.Join(dir, "out", "x.txt.thz")
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	text, err := texthuff.Decompress(data)
	if err != nil {
		t.Fatalf("%s: %v", out, err)
	}
	if string(text) != "alpha alpha alpha" {
		t.Errorf("%s: expected alpha text, got %q", out, text)
	}
}

func TestRunner_EmptySuffix(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "c.txt")
	text := "charlie charlie"
	if err := os.WriteFile(input, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}

	r := &Runner{Op: Compress, Logger: zerolog.Nop()}
	if _, err := r.Run(context.Background(), []string{input}); !errors.Is(err, ErrEmptySuffix) {
		t.Errorf("expected ErrEmptySuffix, got %v", err)
	}

	actual, err := os.ReadFile(input)
	if err != nil {
		t.Fatal(err)
	}
	if string(actual) != text {
		t.Errorf("input was modified: %q", actual)
	}
}

func TestRunner_DecompressOntoInput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "d.txt")
	if err := os.WriteFile(input, []byte("delta"), 0o644); err != nil {
		t.Fatal(err)
	}

	// With no suffix to strip, the output gets ".out" and never replaces the input.
	r := &Runner{Op: Decompress, Logger: zerolog.Nop()}
	results, _ := r.Run(context.Background(), []string{input})
	if results[0].Output == input {
		t.Errorf("output path equals input path %s", input)
	}
	if actual, err := os.ReadFile(input); err != nil || string(actual) != "delta" {
		t.Errorf("input was modified: %q, %v", actual, err)
	}
}
