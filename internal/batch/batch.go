package batch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/chronos-tachyon/texthuff"
	"github.com/chronos-tachyon/texthuff/internal/metrics"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrEmptySuffix is returned by Run when compressing without a suffix,
	// which would make every output path equal to its input path.
	ErrEmptySuffix = errors.New("batch: compress needs a non-empty suffix")

	// ErrPathCollision fails a file whose output path is its own input
	// path, or the output path of an earlier file in the same run.
	ErrPathCollision = errors.New("batch: output path collision")
)

// Op selects the direction of a run.
type Op string

const (
	Compress   Op = "compress"
	Decompress Op = "decompress"
)

// ParseOp parses a command name.
func ParseOp(str string) (Op, error) {
	switch op := Op(strings.ToLower(str)); op {
	case Compress, Decompress:
		return op, nil
	default:
		return "", fmt.Errorf("unknown operation %q", str)
	}
}

// Result describes one processed file.
type Result struct {
	Input  string
	Output string

	// OriginalSize is the size of the text side, CompressedSize the size
	// of the container side, whichever direction the run went.
	OriginalSize   int64
	CompressedSize int64

	Duration time.Duration
	Err      error
}

// SpaceSaved returns the percentage of the original size saved by the
// container, rounded to two decimals.  It is 0 for an empty original.
func (r Result) SpaceSaved() float64 {
	if r.OriginalSize <= 0 {
		return 0
	}
	saved := (1 - float64(r.CompressedSize)/float64(r.OriginalSize)) * 100
	return math.Round(saved*100) / 100
}

// Runner runs one codec invocation per file.  Invocations share nothing, so
// up to Jobs of them run at once.
type Runner struct {
	Op     Op
	Level  texthuff.Level
	OutDir string
	Suffix string

	// Jobs is the number of files processed in parallel; 0 means
	// runtime.GOMAXPROCS(0).
	Jobs int

	Logger  zerolog.Logger
	Metrics *metrics.Metrics
}

// OutputPath returns where the result for input is written.  Compression
// appends Suffix; decompression strips it, or appends ".out" when input does
// not carry it.
func (r *Runner) OutputPath(input string) string {
	var out string
	switch {
	case r.Op == Compress:
		out = input + r.Suffix
	case r.Suffix != "" && strings.HasSuffix(input, r.Suffix) && len(input) > len(r.Suffix):
		out = strings.TrimSuffix(input, r.Suffix)
	default:
		out = input + ".out"
	}
	if r.OutDir != "" {
		out = filepath.Join(r.OutDir, filepath.Base(out))
	}
	return out
}

// Run processes every input and returns one Result per input, in order.  A
// failed file does not stop the others; the returned error joins all of the
// per-file errors.  Files not yet started when ctx is done are reported with
// ctx.Err().
//
// Output paths are checked before any file is processed: a file whose output
// would overwrite its own input, or the output of an earlier file, fails with
// ErrPathCollision and is not touched.
func (r *Runner) Run(ctx context.Context, inputs []string) ([]Result, error) {
	if r.Op == Compress && r.Suffix == "" {
		return nil, ErrEmptySuffix
	}

	jobs := r.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	if r.OutDir != "" {
		if err := os.MkdirAll(r.OutDir, 0o755); err != nil {
			return nil, err
		}
	}

	results := make([]Result, len(inputs))
	claimed := make(map[string]string, 2*len(inputs))
	for _, input := range inputs {
		claimed[pathKey(input)] = input
	}
	for i, input := range inputs {
		results[i] = Result{Input: input, Output: r.OutputPath(input)}
		out := pathKey(results[i].Output)
		if owner, found := claimed[out]; found {
			results[i].Err = fmt.Errorf("%w: %s is already used by %s", ErrPathCollision, results[i].Output, owner)
			r.Logger.Error().Err(results[i].Err).Str("op", string(r.Op)).Str("input", input).Msg("Skipped file")
			continue
		}
		claimed[out] = input
	}

	g := new(errgroup.Group)
	g.SetLimit(jobs)
	for i := range results {
		if results[i].Err != nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		g.Go(func() error {
			r.runOne(ctx, &results[i])
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Input, res.Err))
		}
	}
	return results, errors.Join(errs...)
}

func (r *Runner) runOne(ctx context.Context, res *Result) {
	if err := ctx.Err(); err != nil {
		res.Err = err
		return
	}

	start := time.Now()
	var err error
	switch r.Op {
	case Compress:
		err = texthuff.CompressFile(res.Input, res.Output, r.Level)
	case Decompress:
		err = texthuff.DecompressFile(res.Input, res.Output)
	default:
		err = fmt.Errorf("unknown operation %q", r.Op)
	}
	res.Duration = time.Since(start)

	var read, written int64
	if err == nil {
		read, written, err = fileSizes(res.Input, res.Output)
	}
	res.Err = err
	if r.Op == Compress {
		res.OriginalSize, res.CompressedSize = read, written
	} else {
		res.OriginalSize, res.CompressedSize = written, read
	}

	if r.Metrics != nil {
		r.Metrics.Observe(string(r.Op), read, written, res.Duration, err)
	}

	if err != nil {
		r.Logger.Error().Err(err).Str("op", string(r.Op)).Str("input", res.Input).Msg("Failed to process file")
		return
	}
	r.Logger.Info().
		Str("op", string(r.Op)).
		Str("input", res.Input).
		Str("output", res.Output).
		Int64("original_size", res.OriginalSize).
		Int64("compressed_size", res.CompressedSize).
		Float64("space_saved", res.SpaceSaved()).
		Dur("duration", res.Duration).
		Msg("Processed file")
}

// pathKey normalizes a path for collision checks.
func pathKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func fileSizes(input, output string) (int64, int64, error) {
	in, err := os.Stat(input)
	if err != nil {
		return 0, 0, err
	}
	out, err := os.Stat(output)
	if err != nil {
		return 0, 0, err
	}
	return in.Size(), out.Size(), nil
}
