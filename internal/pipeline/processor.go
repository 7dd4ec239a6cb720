// Package pipeline drives the batch conversion of annotated reasoning chains
// into dependency DAGs and their augmented variants. Plans are independent:
// one plan's failure is recorded and never aborts the rest of the batch.
package pipeline

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/planweave/internal/augment"
	"github.com/dusk-indust/planweave/internal/infer"
	"github.com/dusk-indust/planweave/internal/plan"
)

// Result is the per-plan outcome of a batch run.
type Result struct {
	PlanID   string
	Record   *plan.Record
	Variants []plan.VariantRecord
	Skipped  bool
	Err      error
}

// Batch aggregates all per-plan results of one run.
type Batch struct {
	Records  []plan.Record
	Variants []plan.VariantRecord
	Failed   []string
	Skipped  []string
}

// Options configures a Processor.
type Options struct {
	// Workers bounds plan-level concurrency. Zero or negative means 4.
	Workers int

	// Augment enables variant generation after inference.
	Augment bool

	// OnProgress is called from worker goroutines; it may be nil.
	OnProgress func(Event)
}

// Processor converts chains to DAGs and variants.
type Processor struct {
	inf  *infer.Engine
	aug  *augment.Engine
	opts Options
}

// NewProcessor creates a Processor. aug may be nil when Options.Augment is
// false.
func NewProcessor(inf *infer.Engine, aug *augment.Engine, opts Options) *Processor {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	return &Processor{inf: inf, aug: aug, opts: opts}
}

// Run processes every chain with bounded concurrency and collects the
// results in input order. The only returned error is context cancellation;
// per-plan failures land in Batch.Failed.
func (p *Processor) Run(ctx context.Context, chains []Chain) (Batch, error) {
	results := make([]Result, len(chains))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)

	for i, chain := range chains {
		if chain.PlanID == "" {
			chain.PlanID = uuid.NewString()
		}
		p.emit(Event{PlanID: chain.PlanID, Status: StatusPending})

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.processOne(gctx, chain)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Batch{}, err
	}

	var batch Batch
	for _, res := range results {
		switch {
		case res.Skipped:
			batch.Skipped = append(batch.Skipped, res.PlanID)
		case res.Err != nil:
			batch.Failed = append(batch.Failed, res.PlanID)
		default:
			batch.Records = append(batch.Records, *res.Record)
			batch.Variants = append(batch.Variants, res.Variants...)
		}
	}
	return batch, nil
}

// processOne runs inference and, when enabled, augmentation for one chain.
func (p *Processor) processOne(ctx context.Context, chain Chain) Result {
	res := Result{PlanID: chain.PlanID}

	if len(chain.Steps) == 0 {
		res.Skipped = true
		p.emit(Event{PlanID: chain.PlanID, Status: StatusSkipped, Message: "no steps"})
		return res
	}

	p.emit(Event{PlanID: chain.PlanID, Status: StatusWorking})

	d, err := p.inf.Infer(chain.PlanID, chain.Steps)
	if err != nil {
		res.Err = err
		p.emit(Event{PlanID: chain.PlanID, Status: StatusFailed, Message: err.Error()})
		return res
	}
	rec := d.Record()
	res.Record = &rec

	if p.opts.Augment && p.aug != nil {
		variants, err := p.aug.Augment(ctx, d)
		if err != nil {
			res.Err = err
			p.emit(Event{PlanID: chain.PlanID, Status: StatusFailed, Message: err.Error()})
			return res
		}
		res.Variants = make([]plan.VariantRecord, 0, len(variants))
		for _, v := range variants {
			res.Variants = append(res.Variants, v.Record())
		}
	}

	p.emit(Event{PlanID: chain.PlanID, Status: StatusComplete, Variants: len(res.Variants)})
	return res
}

func (p *Processor) emit(ev Event) {
	if p.opts.OnProgress != nil {
		p.opts.OnProgress(ev)
	}
}
