package augment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/planweave/internal/plan"
	"github.com/dusk-indust/planweave/internal/toolreg"
)

// richSource builds: 1 web_search -> 2 web_fetch -> 3 calculate, with a
// placeholder edge into 2 and a sequential edge into 3.
func richSource(t *testing.T) *plan.DAG {
	t.Helper()
	d := plan.New("rich", []plan.Step{
		{ID: 1, Kind: plan.StepKindToolCall, Tool: "web_search",
			Parameters: map[string]string{"query": "castle height"}},
		{ID: 2, Kind: plan.StepKindToolCall, Tool: "web_fetch",
			Parameters: map[string]string{"url": "{step_1_result}"}},
		{ID: 3, Kind: plan.StepKindToolCall, Tool: "calculate",
			Parameters: map[string]string{"expression": "height / 2"}},
	})
	mustEdge(t, d, 1, 2, plan.LayerPlaceholder)
	mustEdge(t, d, 2, 3, plan.LayerSequential)
	return d
}

func TestAugment_DeterministicTableOrder(t *testing.T) {
	eng := New(toolreg.Default(), Config{MaxVariants: 10})
	src := richSource(t)

	variants, err := eng.Augment(context.Background(), src)
	require.NoError(t, err)

	// Applicable here: add-reasoning, remove-optional, simplify-description,
	// tool-substitution, add-error-handling, parameter-variation,
	// depth-adjustment. No parallel batch, no decomposable tool, no sibling
	// branch.
	var ids []int
	for _, v := range variants {
		ids = append(ids, v.StrategyID)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 7, 8, 10}, ids)

	for _, v := range variants {
		assert.Equal(t, "rich", v.SourcePlanID)
		assert.NotEmpty(t, v.CanonicalSignature)
		require.NoError(t, v.DAG.Validate(true), "variant %s must be valid", v.ID)
	}
	assert.Equal(t, "rich-s1", variants[0].ID)

	// Re-running yields the same set.
	again, err := eng.Augment(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, again, len(variants))
	for i := range variants {
		assert.Equal(t, variants[i].ID, again[i].ID)
		assert.Equal(t, variants[i].CanonicalSignature, again[i].CanonicalSignature)
	}
}

func TestAugment_SourceUntouched(t *testing.T) {
	eng := New(toolreg.Default(), DefaultConfig())
	src := richSource(t)
	before := src.Record()

	_, err := eng.Augment(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, before, src.Record())
}

func TestAugment_MaxVariantsCap(t *testing.T) {
	eng := New(toolreg.Default(), Config{MaxVariants: 3})
	variants, err := eng.Augment(context.Background(), richSource(t))
	require.NoError(t, err)

	require.Len(t, variants, 3)
	// Table order decides which survive the cap.
	assert.Equal(t, 1, variants[0].StrategyID)
	assert.Equal(t, 2, variants[1].StrategyID)
	assert.Equal(t, 3, variants[2].StrategyID)
}

func TestAugment_StrategySubset(t *testing.T) {
	eng := New(toolreg.Default(), Config{Strategies: []int{3, 8, 99}, MaxVariants: 10})
	variants, err := eng.Augment(context.Background(), richSource(t))
	require.NoError(t, err)

	require.Len(t, variants, 2)
	assert.Equal(t, 3, variants[0].StrategyID)
	assert.Equal(t, 8, variants[1].StrategyID)

	// Description-only strategies keep topology byte-identical.
	src := richSource(t)
	for _, v := range variants {
		assert.Equal(t, src.Edges(), v.DAG.Edges())
		assert.Equal(t, src.Len(), v.DAG.Len())
	}
}

func TestAugment_PreserveCriticalPath(t *testing.T) {
	eng := New(toolreg.Default(), Config{MaxVariants: 10, PreserveCriticalPath: true})
	variants, err := eng.Augment(context.Background(), richSource(t))
	require.NoError(t, err)
	require.NotEmpty(t, variants)

	for _, v := range variants {
		layer, ok := v.DAG.EdgeLayer(1, 2)
		require.True(t, ok, "variant %s must keep the placeholder edge", v.ID)
		assert.Equal(t, plan.LayerPlaceholder, layer)

		p1, _ := v.DAG.Position(1)
		p2, _ := v.DAG.Position(2)
		assert.Less(t, p1, p2)
	}
}

func TestAugment_EmptySource(t *testing.T) {
	eng := New(toolreg.Default(), DefaultConfig())
	_, err := eng.Augment(context.Background(), nil)
	require.Error(t, err)
}

func TestVariantRecord(t *testing.T) {
	eng := New(toolreg.Default(), Config{Strategies: []int{4}, MaxVariants: 1})
	variants, err := eng.Augment(context.Background(), richSource(t))
	require.NoError(t, err)
	require.Len(t, variants, 1)

	rec := variants[0].Record()
	assert.Equal(t, "rich", rec.PlanID)
	assert.Equal(t, 4, rec.StrategyID)
	assert.Equal(t, "rich-s4", rec.VariantID)
	assert.Equal(t, variants[0].CanonicalSignature, rec.CanonicalSignature)
	assert.Len(t, rec.DAG.Nodes, 3)
}
