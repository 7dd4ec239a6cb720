package augment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/planweave/internal/metrics"
	"github.com/dusk-indust/planweave/internal/plan"
	"github.com/dusk-indust/planweave/internal/toolreg"
)

func mustEdge(t *testing.T, d *plan.DAG, from, to int, layer plan.Layer) {
	t.Helper()
	require.NoError(t, d.AddEdge(from, to, layer))
}

// searchFetch builds: 1 web_search -> 2 web_fetch, linked by a placeholder
// edge.
func searchFetch(t *testing.T) *plan.DAG {
	t.Helper()
	d := plan.New("sf", []plan.Step{
		{ID: 1, Kind: plan.StepKindToolCall, Tool: "web_search",
			Parameters: map[string]string{"query": "eiffel tower"}},
		{ID: 2, Kind: plan.StepKindToolCall, Tool: "web_fetch",
			Parameters: map[string]string{"url": "{step_1_result}"}},
	})
	mustEdge(t, d, 1, 2, plan.LayerPlaceholder)
	return d
}

// parallelDiamond builds: 1 -> {2, 3} -> 4 with the given edge layer.
func parallelDiamond(t *testing.T, layer plan.Layer) *plan.DAG {
	t.Helper()
	d := plan.New("dia", []plan.Step{
		{ID: 1, Kind: plan.StepKindToolCall, Tool: "read_json"},
		{ID: 2, Kind: plan.StepKindToolCall, Tool: "web_search"},
		{ID: 3, Kind: plan.StepKindToolCall, Tool: "web_fetch"},
		{ID: 4, Kind: plan.StepKindToolCall, Tool: "calculate"},
	})
	mustEdge(t, d, 1, 2, layer)
	mustEdge(t, d, 1, 3, layer)
	mustEdge(t, d, 2, 4, layer)
	mustEdge(t, d, 3, 4, layer)
	return d
}

func TestAddReasoning(t *testing.T) {
	src := searchFetch(t)
	out, ok := applyAddReasoning(src, toolreg.Default(), false)
	require.True(t, ok)

	assert.Equal(t, 3, out.Len())
	inserted := out.NodeByID(3)
	require.NotNil(t, inserted)
	assert.Equal(t, plan.StepKindReasoning, inserted.Kind)

	// The original edge is rerouted through the reasoning node.
	_, direct := out.EdgeLayer(1, 2)
	assert.False(t, direct)
	layer, ok2 := out.EdgeLayer(1, 3)
	require.True(t, ok2)
	assert.Equal(t, plan.LayerPlaceholder, layer)
	_, ok2 = out.EdgeLayer(3, 2)
	assert.True(t, ok2)
	require.NoError(t, out.Validate(true))

	// Source untouched.
	assert.Equal(t, 2, src.Len())
}

func TestAddReasoning_PreserveSkipsCriticalEdges(t *testing.T) {
	src := searchFetch(t) // only edge is critical
	_, ok := applyAddReasoning(src, toolreg.Default(), true)
	assert.False(t, ok)
}

func TestRemoveOptional(t *testing.T) {
	d := plan.New("leaf", []plan.Step{
		{ID: 1, Kind: plan.StepKindToolCall, Tool: "web_search"},
		{ID: 2, Kind: plan.StepKindToolCall, Tool: "web_fetch"},
		{ID: 3, Kind: plan.StepKindToolCall, Tool: "validate_data"},
	})
	mustEdge(t, d, 1, 2, plan.LayerPlaceholder)
	mustEdge(t, d, 2, 3, plan.LayerSequential)

	out, ok := applyRemoveOptional(d, toolreg.Default(), false)
	require.True(t, ok)
	assert.Equal(t, 2, out.Len())
	assert.Nil(t, out.NodeByID(3))
	_, stillThere := out.EdgeLayer(1, 2)
	assert.True(t, stillThere)
}

func TestRemoveOptional_CriticalLeafStays(t *testing.T) {
	src := searchFetch(t) // leaf 2 is held by a placeholder edge
	_, ok := applyRemoveOptional(src, toolreg.Default(), false)
	assert.False(t, ok)
}

func TestSimplifyDescription_TopologyUntouched(t *testing.T) {
	src := searchFetch(t)
	src.NodeByID(1).Description = "Search  the web for the tower.   Then read everything twice."

	out, ok := applySimplifyDescription(src, toolreg.Default(), false)
	require.True(t, ok)
	assert.Equal(t, "Search the web for the tower.", out.NodeByID(1).Description)
	assert.Equal(t, src.Edges(), out.Edges())
	assert.Equal(t, src.Len(), out.Len())
}

func TestToolSubstitution(t *testing.T) {
	src := searchFetch(t)
	out, ok := applyToolSubstitution(src, toolreg.Default(), false)
	require.True(t, ok)

	assert.Equal(t, "wikipedia_search", out.NodeByID(1).Tool)
	assert.Equal(t, "eiffel tower", out.NodeByID(1).Parameters["query"])
	assert.Equal(t, src.Edges(), out.Edges())
	// Source untouched.
	assert.Equal(t, "web_search", src.NodeByID(1).Tool)
}

func TestReorderParallel(t *testing.T) {
	src := parallelDiamond(t, plan.LayerSequential)
	out, ok := applyReorderParallel(src, toolreg.Default(), false)
	require.True(t, ok)

	// Nodes 2 and 3 share a batch; their chain positions swap.
	p2, _ := out.Position(2)
	p3, _ := out.Position(3)
	assert.Equal(t, 2, p2)
	assert.Equal(t, 1, p3)
	assert.Equal(t, src.Edges(), out.Edges())
	require.NoError(t, out.Validate(true))
}

func TestReorderParallel_Preconditions(t *testing.T) {
	// A pure chain has no parallel batch.
	chain := searchFetch(t)
	_, ok := applyReorderParallel(chain, toolreg.Default(), false)
	assert.False(t, ok)

	// Critical nodes stay put under preserve.
	critical := parallelDiamond(t, plan.LayerPlaceholder)
	_, ok = applyReorderParallel(critical, toolreg.Default(), true)
	assert.False(t, ok)
}

func TestSplitCompound(t *testing.T) {
	d := plan.New("split", []plan.Step{
		{ID: 1, Kind: plan.StepKindToolCall, Tool: "web_search"},
		{ID: 2, Kind: plan.StepKindToolCall, Tool: "web_research",
			Parameters: map[string]string{"query": "castle height"}},
		{ID: 3, Kind: plan.StepKindToolCall, Tool: "calculate"},
	})
	mustEdge(t, d, 1, 2, plan.LayerSemantic)
	mustEdge(t, d, 2, 3, plan.LayerSequential)

	out, ok := applySplitCompound(d, toolreg.Default(), false)
	require.True(t, ok)
	require.NoError(t, out.Validate(true))

	// web_research expands into web_search + web_fetch in place.
	assert.Equal(t, 4, out.Len())
	assert.Nil(t, out.NodeByID(2))

	sigBefore := metrics.CanonicalSignature(d)
	sigAfter := metrics.CanonicalSignature(out)
	assert.Equal(t, len(sigBefore)+1, len(sigAfter))

	// Inbound rewired to the first sub-node, outbound from the last.
	first := out.NodeByID(4)
	require.NotNil(t, first)
	assert.Equal(t, "web_search", first.Tool)
	assert.Equal(t, "castle height", first.Parameters["query"])
	layer, ok2 := out.EdgeLayer(1, 4)
	require.True(t, ok2)
	assert.Equal(t, plan.LayerSemantic, layer)
	_, ok2 = out.EdgeLayer(4, 5)
	assert.True(t, ok2)
	_, ok2 = out.EdgeLayer(5, 3)
	assert.True(t, ok2)
	assert.Equal(t, "web_fetch", out.NodeByID(5).Tool)
}

func TestAddErrorHandling(t *testing.T) {
	src := searchFetch(t)
	out, ok := applyAddErrorHandling(src, toolreg.Default(), false)
	require.True(t, ok)
	require.NoError(t, out.Validate(true))

	assert.Equal(t, 3, out.Len())
	retry := out.NodeByID(3)
	require.NotNil(t, retry)
	assert.Equal(t, "web_search", retry.Tool)

	// Original edges intact, plus one from the original to its retry.
	_, ok2 := out.EdgeLayer(1, 2)
	assert.True(t, ok2)
	layer, ok2 := out.EdgeLayer(1, 3)
	require.True(t, ok2)
	assert.Equal(t, plan.LayerSequential, layer)
}

func TestParameterVariation(t *testing.T) {
	src := searchFetch(t)
	out, ok := applyParameterVariation(src, toolreg.Default(), false)
	require.True(t, ok)

	// Node 1's literal query changes; node 2's placeholder is off-limits.
	assert.Equal(t, "eiffel tower (exact)", out.NodeByID(1).Parameters["query"])
	assert.Equal(t, "{step_1_result}", out.NodeByID(2).Parameters["url"])
	assert.Equal(t, src.Edges(), out.Edges())
	assert.Equal(t, "eiffel tower", src.NodeByID(1).Parameters["query"])
}

func TestParameterVariation_NoLiterals(t *testing.T) {
	d := plan.New("ph", []plan.Step{
		{ID: 1, Kind: plan.StepKindToolCall, Tool: "web_search"},
		{ID: 2, Kind: plan.StepKindToolCall, Tool: "web_fetch",
			Parameters: map[string]string{"url": "<from_context>"}},
	})
	_, ok := applyParameterVariation(d, toolreg.Default(), false)
	assert.False(t, ok)
}

func TestBranchDuplication(t *testing.T) {
	src := parallelDiamond(t, plan.LayerSequential)
	out, ok := applyBranchDuplication(src, toolreg.Default(), false)
	require.True(t, ok)
	require.NoError(t, out.Validate(true))

	assert.Equal(t, 5, out.Len())
	dup := out.NodeByID(5)
	require.NotNil(t, dup)
	// The duplicated sibling hangs off the same ancestor.
	_, ok2 := out.EdgeLayer(1, 5)
	assert.True(t, ok2)
	// Original branches are untouched.
	for _, e := range src.Edges() {
		_, still := out.EdgeLayer(e.From, e.To)
		assert.True(t, still, "edge %d->%d must survive", e.From, e.To)
	}
}

func TestDepthAdjustment_MergesChain(t *testing.T) {
	d := plan.New("deep", []plan.Step{
		{ID: 1, Kind: plan.StepKindToolCall, Tool: "web_search"},
		{ID: 2, Kind: plan.StepKindToolCall, Tool: "web_fetch", Description: "fetch the page"},
		{ID: 3, Kind: plan.StepKindToolCall, Tool: "calculate"},
	})
	mustEdge(t, d, 1, 2, plan.LayerSequential)
	mustEdge(t, d, 2, 3, plan.LayerSequential)
	require.Equal(t, 3, d.Stats().MaxDepth)

	out, ok := applyDepthAdjustment(d, toolreg.Default(), false)
	require.True(t, ok)
	require.NoError(t, out.Validate(true))

	assert.Equal(t, 2, out.Len())
	assert.Nil(t, out.NodeByID(2))
	// Net dependency of the endpoints survives the merge.
	_, ok2 := out.EdgeLayer(1, 3)
	assert.True(t, ok2)
	assert.Equal(t, 2, out.Stats().MaxDepth)
}

func TestDepthAdjustment_PreserveSkipsCriticalChain(t *testing.T) {
	d := plan.New("deep", []plan.Step{
		{ID: 1, Kind: plan.StepKindToolCall, Tool: "web_search"},
		{ID: 2, Kind: plan.StepKindToolCall, Tool: "web_fetch"},
		{ID: 3, Kind: plan.StepKindToolCall, Tool: "calculate"},
	})
	mustEdge(t, d, 1, 2, plan.LayerPlaceholder)
	mustEdge(t, d, 2, 3, plan.LayerPlaceholder)

	_, ok := applyDepthAdjustment(d, toolreg.Default(), true)
	assert.False(t, ok)
}
