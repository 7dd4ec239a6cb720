package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/dusk-indust/planweave/internal/augment"
	"github.com/dusk-indust/planweave/internal/config"
	"github.com/dusk-indust/planweave/internal/export"
	"github.com/dusk-indust/planweave/internal/plan"
)

// runAugment reads previously inferred DAG records (JSON Lines) and writes
// one variant record per line. Source plans pass through inference exactly
// once; augmentation can be re-run with different knobs.
func runAugment(cfg *config.ProjectConfig, args []string) error {
	fs := flag.NewFlagSet("planweave augment", flag.ContinueOnError)
	input := fs.String("input", "", "plan records file (JSON Lines); - for stdin")
	output := fs.String("out", "", "output file (default: stdout)")
	maxVariants := fs.Int("max-variants", cfg.MaxVariants(), "cap on variants per plan")
	preserve := fs.Bool("preserve-critical-path", cfg.PreserveCriticalPath, "keep placeholder/parameter edges untouched")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" {
		return fmt.Errorf("usage: planweave augment -input <records-file>")
	}

	records, err := readRecordsFile(*input)
	if err != nil {
		return err
	}

	reg, err := loadRegistry(cfg)
	if err != nil {
		return err
	}
	eng := augment.New(reg, augment.Config{
		Strategies:           cfg.Strategies,
		MaxVariants:          *maxVariants,
		PreserveCriticalPath: *preserve,
	})

	ctx := context.Background()
	var variants []plan.VariantRecord
	for _, rec := range records {
		d, err := plan.FromRecord(rec)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skip %s: %v\n", rec.PlanID, err)
			continue
		}
		vs, err := eng.Augment(ctx, d)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skip %s: %v\n", rec.PlanID, err)
			continue
		}
		for _, v := range vs {
			variants = append(variants, v.Record())
		}
	}

	w, closeFn, err := openOutput(*output)
	if err != nil {
		return err
	}
	defer closeFn()
	return export.WriteVariants(w, variants)
}

// readRecordsFile reads plan records as JSON Lines from a path or stdin.
func readRecordsFile(path string) ([]plan.Record, error) {
	f := os.Stdin
	if path != "-" {
		var err error
		f, err = os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
	}

	var records []plan.Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var rec plan.Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("read records: line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	return records, nil
}
