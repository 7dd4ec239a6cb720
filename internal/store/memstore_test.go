package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/planweave/internal/plan"
)

func sampleRecord(planID string) plan.Record {
	return plan.Record{
		PlanID: planID,
		Nodes: []plan.NodeRecord{
			{ID: 1, Kind: plan.StepKindToolCall, Tool: "web_search", Dependencies: []int{}},
			{ID: 2, Kind: plan.StepKindToolCall, Tool: "calculate", Dependencies: []int{1}},
		},
		Edges: []plan.Edge{{From: 1, To: 2, Layer: plan.LayerPlaceholder}},
		Stats: plan.Stats{NumNodes: 2, NumEdges: 1, MaxDepth: 2, Parallelizable: 1},
	}
}

func sampleVariant(planID string, strategyID int) plan.VariantRecord {
	return plan.VariantRecord{
		PlanID:             planID,
		StrategyID:         strategyID,
		VariantID:          planID + "-s" + string(rune('0'+strategyID)),
		DAG:                sampleRecord(planID),
		CanonicalSignature: []string{"web_search", "calculate"},
	}
}

func TestMemStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	st := NewMemStore()
	require.NoError(t, st.InitSchema(ctx))
	defer st.Close()

	rec := sampleRecord("p1")
	require.NoError(t, st.AddPlan(ctx, rec))

	got, err := st.GetPlan(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, rec, *got)

	_, err = st.GetPlan(ctx, "absent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemStore_ListPlans_Sorted(t *testing.T) {
	ctx := context.Background()
	st := NewMemStore()
	require.NoError(t, st.AddPlan(ctx, sampleRecord("zeta")))
	require.NoError(t, st.AddPlan(ctx, sampleRecord("alpha")))

	plans, err := st.ListPlans(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "alpha", plans[0].PlanID)
	assert.Equal(t, "zeta", plans[1].PlanID)
}

func TestMemStore_Variants(t *testing.T) {
	ctx := context.Background()
	st := NewMemStore()
	require.NoError(t, st.AddVariant(ctx, sampleVariant("p1", 3)))
	require.NoError(t, st.AddVariant(ctx, sampleVariant("p1", 1)))
	require.NoError(t, st.AddVariant(ctx, sampleVariant("p2", 4)))

	vs, err := st.ListVariants(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, vs, 2)
	assert.Equal(t, "p1-s1", vs[0].VariantID)
	assert.Equal(t, "p1-s3", vs[1].VariantID)

	all, err := st.ListVariants(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMemStore_Stats(t *testing.T) {
	ctx := context.Background()
	st := NewMemStore()
	require.NoError(t, st.AddPlan(ctx, sampleRecord("p1")))
	require.NoError(t, st.AddPlan(ctx, sampleRecord("p2")))
	require.NoError(t, st.AddVariant(ctx, sampleVariant("p1", 3)))

	stats, err := st.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &CorpusStats{
		PlanCount:    2,
		VariantCount: 1,
		NodeCount:    4,
		EdgeCount:    2,
	}, stats)
}
