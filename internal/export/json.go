package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dusk-indust/planweave/internal/metrics"
	"github.com/dusk-indust/planweave/internal/plan"
)

// CorpusExport is the top-level JSON export structure. Source plans are kept
// alongside their variants so a consumer always sees the unmodified original.
type CorpusExport struct {
	ExportedAt string               `json:"exportedAt"`
	Plans      []plan.Record        `json:"plans"`
	Variants   []plan.VariantRecord `json:"variants,omitempty"`
	Summary    metrics.Summary      `json:"summary"`
}

// BuildCorpus assembles a CorpusExport with a freshly computed summary.
func BuildCorpus(records []plan.Record, variants []plan.VariantRecord, failed, skipped []string) (*CorpusExport, error) {
	summary, err := metrics.Summarize(records, variants, failed, skipped)
	if err != nil {
		return nil, fmt.Errorf("export: summarize: %w", err)
	}
	return &CorpusExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Plans:      records,
		Variants:   variants,
		Summary:    summary,
	}, nil
}

// WriteCorpus streams a CorpusExport as indented JSON.
func WriteCorpus(w io.Writer, corpus *CorpusExport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(corpus); err != nil {
		return fmt.Errorf("export: encode corpus: %w", err)
	}
	return nil
}

// WriteRecords streams plan records as JSON Lines, one record per line.
func WriteRecords(w io.Writer, records []plan.Record) error {
	enc := json.NewEncoder(w)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("export: encode record %s: %w", rec.PlanID, err)
		}
	}
	return nil
}

// WriteVariants streams variant records as JSON Lines, one record per line.
func WriteVariants(w io.Writer, variants []plan.VariantRecord) error {
	enc := json.NewEncoder(w)
	for _, rec := range variants {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("export: encode variant %s: %w", rec.VariantID, err)
		}
	}
	return nil
}
