package mcptools

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/planweave/internal/augment"
	"github.com/dusk-indust/planweave/internal/export"
	"github.com/dusk-indust/planweave/internal/infer"
	"github.com/dusk-indust/planweave/internal/metrics"
	"github.com/dusk-indust/planweave/internal/plan"
	"github.com/dusk-indust/planweave/internal/store"
	"github.com/dusk-indust/planweave/internal/toolreg"
)

// PlanService holds the corpus store and engine configuration used by MCP
// tool handlers.
type PlanService struct {
	store    store.Store
	reg      *toolreg.Registry
	inferCfg infer.Config
	augCfg   augment.Config
}

// NewPlanService creates a PlanService over the given store and registry.
func NewPlanService(st store.Store, reg *toolreg.Registry, inferCfg infer.Config, augCfg augment.Config) *PlanService {
	return &PlanService{store: st, reg: reg, inferCfg: inferCfg, augCfg: augCfg}
}

// ConvertChain infers the dependency DAG for one annotated chain, stores it,
// and optionally augments it in the same call.
func (s *PlanService) ConvertChain(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ConvertChainInput,
) (*mcp.CallToolResult, ConvertChainOutput, error) {
	if len(input.Steps) == 0 {
		return nil, ConvertChainOutput{}, fmt.Errorf("steps is required")
	}
	planID := input.PlanID
	if planID == "" {
		planID = uuid.NewString()
	}

	eng := infer.New(s.reg, s.inferCfg)
	d, err := eng.Infer(planID, input.Steps)
	if err != nil {
		return nil, ConvertChainOutput{}, err
	}
	rec := d.Record()
	if err := s.store.AddPlan(ctx, rec); err != nil {
		return nil, ConvertChainOutput{}, fmt.Errorf("store plan: %w", err)
	}
	out := ConvertChainOutput{Plan: rec}

	if input.Augment {
		variants, err := augment.New(s.reg, s.augCfg).Augment(ctx, d)
		if err != nil {
			return nil, ConvertChainOutput{}, err
		}
		for _, v := range variants {
			vrec := v.Record()
			if err := s.store.AddVariant(ctx, vrec); err != nil {
				return nil, ConvertChainOutput{}, fmt.Errorf("store variant: %w", err)
			}
			out.Variants = append(out.Variants, vrec)
		}
	}
	return nil, out, nil
}

// AugmentPlan generates structural variants of a previously converted plan.
func (s *PlanService) AugmentPlan(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AugmentPlanInput,
) (*mcp.CallToolResult, AugmentPlanOutput, error) {
	if input.PlanID == "" {
		return nil, AugmentPlanOutput{}, fmt.Errorf("planId is required")
	}
	rec, err := s.store.GetPlan(ctx, input.PlanID)
	if err != nil {
		return nil, AugmentPlanOutput{}, err
	}
	d, err := plan.FromRecord(*rec)
	if err != nil {
		return nil, AugmentPlanOutput{}, fmt.Errorf("rebuild plan %s: %w", input.PlanID, err)
	}

	cfg := s.augCfg
	if len(input.Strategies) > 0 {
		cfg.Strategies = input.Strategies
	}
	if input.MaxVariants > 0 {
		cfg.MaxVariants = input.MaxVariants
	}
	if input.PreserveCriticalPath {
		cfg.PreserveCriticalPath = true
	}

	variants, err := augment.New(s.reg, cfg).Augment(ctx, d)
	if err != nil {
		return nil, AugmentPlanOutput{}, err
	}

	out := AugmentPlanOutput{Variants: make([]plan.VariantRecord, 0, len(variants))}
	for _, v := range variants {
		vrec := v.Record()
		if err := s.store.AddVariant(ctx, vrec); err != nil {
			return nil, AugmentPlanOutput{}, fmt.Errorf("store variant: %w", err)
		}
		out.Variants = append(out.Variants, vrec)
	}
	return nil, out, nil
}

// GetPlan returns a stored plan with its variants and an optional diagram.
func (s *PlanService) GetPlan(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetPlanInput,
) (*mcp.CallToolResult, GetPlanOutput, error) {
	if input.PlanID == "" {
		return nil, GetPlanOutput{}, fmt.Errorf("planId is required")
	}
	rec, err := s.store.GetPlan(ctx, input.PlanID)
	if err != nil {
		return nil, GetPlanOutput{}, err
	}
	variants, err := s.store.ListVariants(ctx, input.PlanID)
	if err != nil {
		return nil, GetPlanOutput{}, err
	}
	out := GetPlanOutput{Plan: *rec, Variants: variants}
	if input.Diagram {
		out.Mermaid = export.GenerateMermaid(*rec)
	}
	return nil, out, nil
}

// CorpusMetrics computes diversity and quality statistics over the whole
// stored corpus.
func (s *PlanService) CorpusMetrics(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ CorpusMetricsInput,
) (*mcp.CallToolResult, CorpusMetricsOutput, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, CorpusMetricsOutput{}, err
	}
	records, err := s.store.ListPlans(ctx)
	if err != nil {
		return nil, CorpusMetricsOutput{}, err
	}
	variants, err := s.store.ListVariants(ctx, "")
	if err != nil {
		return nil, CorpusMetricsOutput{}, err
	}
	summary, err := metrics.Summarize(records, variants, nil, nil)
	if err != nil {
		return nil, CorpusMetricsOutput{}, err
	}
	return nil, CorpusMetricsOutput{Stats: *stats, Summary: summary}, nil
}
