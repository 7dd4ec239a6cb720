// Package augment expands one inferred DAG into a bounded set of structural
// variants. Each strategy in the fixed table is a pure rewrite over a clone
// of the source; the source plan itself is never modified and is always kept
// alongside its variants in the output corpus.
package augment

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/planweave/internal/metrics"
	"github.com/dusk-indust/planweave/internal/plan"
	"github.com/dusk-indust/planweave/internal/toolreg"
)

// Config holds the augmentation knobs.
type Config struct {
	// Strategies selects which table entries run, by id. Empty means all.
	Strategies []int

	// MaxVariants caps the variants emitted per source plan. Zero or negative
	// means no cap. When more strategies succeed than the cap allows, table
	// order decides which survive.
	MaxVariants int

	// PreserveCriticalPath restricts topology-changing strategies to nodes and
	// edges outside the placeholder/parameter backbone.
	PreserveCriticalPath bool
}

// DefaultConfig enables all strategies, caps output at ten variants, and
// leaves the critical path unconstrained.
func DefaultConfig() Config {
	return Config{MaxVariants: 10}
}

// Variant is one augmentation result: a rewritten DAG plus its provenance.
type Variant struct {
	ID                 string
	StrategyID         int
	StrategyName       string
	SourcePlanID       string
	DAG                *plan.DAG
	CanonicalSignature []string
}

// Record serializes the variant into its wire form.
func (v Variant) Record() plan.VariantRecord {
	return plan.VariantRecord{
		PlanID:             v.SourcePlanID,
		StrategyID:         v.StrategyID,
		VariantID:          v.ID,
		DAG:                v.DAG.Record(),
		CanonicalSignature: v.CanonicalSignature,
	}
}

// Engine applies the strategy table to source plans. It holds only read-only
// state and is safe for concurrent use.
type Engine struct {
	reg *toolreg.Registry
	cfg Config
}

// New creates an Engine over a frozen tool-schema registry.
func New(reg *toolreg.Registry, cfg Config) *Engine {
	return &Engine{reg: reg, cfg: cfg}
}

// Augment runs every enabled strategy against the source DAG. Strategies run
// concurrently; results are collected in table order so output is
// deterministic regardless of scheduling. A strategy whose precondition is
// unmet contributes nothing, and a rewrite that fails validation is discarded
// rather than failing the plan.
func (e *Engine) Augment(ctx context.Context, src *plan.DAG) ([]Variant, error) {
	if src == nil || src.Len() == 0 {
		return nil, fmt.Errorf("augment: empty source plan")
	}

	enabled := e.enabledStrategies()
	results := make([]*Variant, len(enabled))

	g, ctx := errgroup.WithContext(ctx)
	for i, strat := range enabled {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, ok := strat.apply(src, e.reg, e.cfg.PreserveCriticalPath)
			if !ok {
				return nil
			}
			if out.Validate(true) != nil {
				return nil
			}
			if e.cfg.PreserveCriticalPath && !criticalPathPreserved(src, out) {
				return nil
			}
			results[i] = &Variant{
				ID:                 fmt.Sprintf("%s-s%d", src.PlanID, strat.ID),
				StrategyID:         strat.ID,
				StrategyName:       strat.Name,
				SourcePlanID:       src.PlanID,
				DAG:                out,
				CanonicalSignature: metrics.CanonicalSignature(out),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	variants := make([]Variant, 0, len(results))
	for _, v := range results {
		if v == nil {
			continue
		}
		if e.cfg.MaxVariants > 0 && len(variants) >= e.cfg.MaxVariants {
			break
		}
		variants = append(variants, *v)
	}
	return variants, nil
}

// enabledStrategies filters the table by the configured id set, preserving
// table order. Unknown ids are ignored.
func (e *Engine) enabledStrategies() []Strategy {
	if len(e.cfg.Strategies) == 0 {
		return Table
	}
	want := make(map[int]bool, len(e.cfg.Strategies))
	for _, id := range e.cfg.Strategies {
		want[id] = true
	}
	out := make([]Strategy, 0, len(Table))
	for _, s := range Table {
		if want[s.ID] {
			out = append(out, s)
		}
	}
	return out
}

// criticalPathPreserved verifies that every placeholder- and parameter-layer
// edge of the source survives in the variant, and that the surviving critical
// nodes keep their relative chain order.
func criticalPathPreserved(src, variant *plan.DAG) bool {
	var order []int
	seen := make(map[int]bool)
	for _, n := range src.Nodes() {
		for _, e := range src.Edges() {
			if !e.Layer.Critical() {
				continue
			}
			if e.From == n.ID || e.To == n.ID {
				if !seen[n.ID] {
					seen[n.ID] = true
					order = append(order, n.ID)
				}
			}
		}
	}

	for _, e := range src.Edges() {
		if !e.Layer.Critical() {
			continue
		}
		layer, ok := variant.EdgeLayer(e.From, e.To)
		if !ok || !layer.Critical() {
			return false
		}
	}

	last := -1
	for _, id := range order {
		p, ok := variant.Position(id)
		if !ok || p <= last {
			return false
		}
		last = p
	}
	return true
}
