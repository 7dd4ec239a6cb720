package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/dusk-indust/planweave/internal/export"
	"github.com/dusk-indust/planweave/internal/metrics"
)

// runReport recomputes the diversity and quality summary of a corpus export
// and prints it as indented JSON.
func runReport(args []string) error {
	fs := flag.NewFlagSet("planweave report", flag.ContinueOnError)
	input := fs.String("input", "", "corpus export file; - for stdin")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" {
		return fmt.Errorf("usage: planweave report -input <corpus-file>")
	}

	corpus, err := readCorpusFile(*input)
	if err != nil {
		return err
	}

	summary, err := metrics.Summarize(corpus.Plans, corpus.Variants,
		corpus.Summary.FailedPlans, corpus.Summary.SkippedPlans)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	_, err = os.Stdout.Write(append(out, '\n'))
	return err
}

// readCorpusFile decodes a corpus export from a path or stdin.
func readCorpusFile(path string) (*export.CorpusExport, error) {
	f := os.Stdin
	if path != "-" {
		var err error
		f, err = os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
	}
	var corpus export.CorpusExport
	if err := json.NewDecoder(f).Decode(&corpus); err != nil {
		return nil, fmt.Errorf("decode corpus: %w", err)
	}
	return &corpus, nil
}
