package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dusk-indust/planweave/internal/augment"
	"github.com/dusk-indust/planweave/internal/config"
	"github.com/dusk-indust/planweave/internal/export"
	"github.com/dusk-indust/planweave/internal/infer"
	"github.com/dusk-indust/planweave/internal/pipeline"
)

// runConvert reads a corpus of annotated chains and writes the inferred DAGs
// (plus variants, when -augment is set) as a corpus export.
func runConvert(cfg *config.ProjectConfig, args []string) error {
	fs := flag.NewFlagSet("planweave convert", flag.ContinueOnError)
	input := fs.String("input", "", "chains file (JSON array or JSON Lines); - for stdin")
	output := fs.String("out", "", "output file (default: stdout)")
	doAugment := fs.Bool("augment", false, "also generate structural variants")
	workers := fs.Int("workers", cfg.Workers, "plan-level concurrency")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" {
		return fmt.Errorf("usage: planweave convert -input <chains-file>")
	}

	chains, err := readChainsFile(*input)
	if err != nil {
		return err
	}

	reg, err := loadRegistry(cfg)
	if err != nil {
		return err
	}

	var onProgress func(pipeline.Event)
	if cfg.Verbose {
		onProgress = func(ev pipeline.Event) {
			fmt.Fprintln(os.Stderr, pipeline.FormatEvent(ev))
		}
	}

	proc := pipeline.NewProcessor(
		infer.New(reg, inferConfig(cfg)),
		augment.New(reg, augmentConfig(cfg)),
		pipeline.Options{
			Workers:    *workers,
			Augment:    *doAugment,
			OnProgress: onProgress,
		},
	)

	batch, err := proc.Run(context.Background(), chains)
	if err != nil {
		return err
	}

	corpus, err := export.BuildCorpus(batch.Records, batch.Variants, batch.Failed, batch.Skipped)
	if err != nil {
		return err
	}

	w, closeFn, err := openOutput(*output)
	if err != nil {
		return err
	}
	defer closeFn()
	return export.WriteCorpus(w, corpus)
}

// readChainsFile reads chains from a path, or stdin when path is "-".
func readChainsFile(path string) ([]pipeline.Chain, error) {
	if path == "-" {
		return pipeline.ReadChains(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return pipeline.ReadChains(f)
}

// openOutput returns a writer for path, or stdout when path is empty.
func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, func() { f.Close() }, nil
}
