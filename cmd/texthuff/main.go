package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	_ "go.uber.org/automaxprocs"

	"github.com/chronos-tachyon/texthuff"
	"github.com/chronos-tachyon/texthuff/internal/batch"
	"github.com/chronos-tachyon/texthuff/internal/config"
	"github.com/chronos-tachyon/texthuff/internal/logger"
	"github.com/chronos-tachyon/texthuff/internal/metrics"
)

const usage = `usage: texthuff [flags] compress|decompress FILE...

Compresses UTF-8 text files into self-describing Huffman containers, or
restores them.  Files are processed in parallel.

flags:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

// flagKeys maps command-line flags onto config keys.
var flagKeys = map[string]string{
	"level":        "level",
	"out-dir":      "output.dir",
	"suffix":       "output.suffix",
	"jobs":         "jobs",
	"metrics-file": "metrics.file",
	"log-level":    "logger.level",
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("texthuff", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	configPath := fs.String("config", "", "YAML config file")
	fs.String("level", "balanced", "compression level: fast, balanced, max, or an integer")
	fs.String("out-dir", "", "directory for output files (default: next to each input)")
	fs.String("suffix", ".thz", "suffix of compressed files")
	fs.Int("jobs", 0, "files processed in parallel (default: GOMAXPROCS)")
	fs.String("metrics-file", "", "write Prometheus metrics to this file when done")
	fs.String("log-level", "info", "log level")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 2 {
		fs.Usage()
		return 2
	}

	op, err := batch.ParseOp(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "texthuff: %v\n", err)
		return 2
	}

	overrides := make(map[string]any)
	fs.Visit(func(f *flag.Flag) {
		if key, found := flagKeys[f.Name]; found {
			overrides[key] = f.Value.String()
		}
	})

	conf, err := config.Load(*configPath, overrides)
	if err != nil {
		fmt.Fprintf(stderr, "texthuff: %v\n", err)
		return 1
	}

	log, err := logger.NewLogger(conf)
	if err != nil {
		fmt.Fprintf(stderr, "texthuff: logger.level: %v\n", err)
		return 1
	}

	level, err := texthuff.ParseLevel(conf.String("level", "balanced"))
	if err != nil {
		log.Error().Err(err).Msg("Invalid level")
		return 2
	}

	m := metrics.New(conf.String("metrics.prefix", "texthuff_"))
	runner := &batch.Runner{
		Op:      op,
		Level:   level,
		OutDir:  conf.String("output.dir", ""),
		Suffix:  conf.String("output.suffix", ".thz"),
		Jobs:    conf.Int("jobs", 0),
		Logger:  log,
		Metrics: m,
	}

	log.Debug().Str("op", string(op)).Stringer("level", level).Stringer("tier", level.Tier()).Int("files", fs.NArg()-1).Msg("Starting")
	_, runErr := runner.Run(ctx, fs.Args()[1:])

	if path := conf.String("metrics.file", ""); path != "" {
		if err := m.WriteTextfile(path); err != nil {
			log.Error().Err(err).Str("path", path).Msg("Failed to write metrics")
		}
	}

	if runErr != nil {
		return 1
	}
	return 0
}
