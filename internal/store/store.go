// Package store persists DAG records and their variants. Implementations:
// KuzuStore (graph database, requires CGO), MemStore (in-memory, testing and
// single-shot CLI runs).
package store

import (
	"context"
	"errors"
	"io"

	"github.com/dusk-indust/planweave/internal/plan"
)

// ErrNotFound is returned by reads for unknown plan ids.
var ErrNotFound = errors.New("store: plan not found")

// Store is the interface for the corpus backend.
type Store interface {
	io.Closer

	// Schema setup — called once before any data is inserted.
	InitSchema(ctx context.Context) error

	// Write operations.
	AddPlan(ctx context.Context, rec plan.Record) error
	AddVariant(ctx context.Context, rec plan.VariantRecord) error

	// Read operations.
	GetPlan(ctx context.Context, planID string) (*plan.Record, error)
	ListPlans(ctx context.Context) ([]plan.Record, error)
	ListVariants(ctx context.Context, planID string) ([]plan.VariantRecord, error)

	// Stats.
	Stats(ctx context.Context) (*CorpusStats, error)
}

// CorpusStats counts the stored corpus.
type CorpusStats struct {
	PlanCount    int `json:"plan_count"`
	VariantCount int `json:"variant_count"`
	NodeCount    int `json:"node_count"`
	EdgeCount    int `json:"edge_count"`
}
