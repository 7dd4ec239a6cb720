package main

import (
	"flag"
	"fmt"

	"github.com/dusk-indust/planweave/internal/export"
)

// runDiagram renders one plan from a corpus export as a Mermaid diagram.
func runDiagram(args []string) error {
	fs := flag.NewFlagSet("planweave diagram", flag.ContinueOnError)
	input := fs.String("input", "", "corpus export file; - for stdin")
	planID := fs.String("plan", "", "plan id to render (default: first plan)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" {
		return fmt.Errorf("usage: planweave diagram -input <corpus-file> [-plan <id>]")
	}

	corpus, err := readCorpusFile(*input)
	if err != nil {
		return err
	}
	if len(corpus.Plans) == 0 {
		return fmt.Errorf("corpus contains no plans")
	}

	rec := corpus.Plans[0]
	if *planID != "" {
		found := false
		for _, p := range corpus.Plans {
			if p.PlanID == *planID {
				rec = p
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("plan %q not found in corpus", *planID)
		}
	}

	fmt.Print(export.GenerateMermaid(rec))
	return nil
}
