package metrics

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/planweave/internal/plan"
)

// fetchChain builds a 4-node DAG: 1 -> {2, 3} -> 4, with a reasoning node
// appended that carries no tool.
func fetchChain(t *testing.T) *plan.DAG {
	t.Helper()
	steps := []plan.Step{
		{ID: 1, Kind: plan.StepKindToolCall, Tool: "read_json"},
		{ID: 2, Kind: plan.StepKindToolCall, Tool: "web_search"},
		{ID: 3, Kind: plan.StepKindToolCall, Tool: "web_fetch"},
		{ID: 4, Kind: plan.StepKindToolCall, Tool: "calculate"},
		{ID: 5, Kind: plan.StepKindReasoning, Description: "summarize"},
	}
	d := plan.New("fetch", steps)
	require.NoError(t, d.AddEdge(1, 2, plan.LayerPlaceholder))
	require.NoError(t, d.AddEdge(1, 3, plan.LayerParameter))
	require.NoError(t, d.AddEdge(2, 4, plan.LayerSemantic))
	require.NoError(t, d.AddEdge(3, 4, plan.LayerSequential))
	require.NoError(t, d.AddEdge(4, 5, plan.LayerSequential))
	return d
}

func TestCanonicalSignature(t *testing.T) {
	d := fetchChain(t)
	// Topological batches: [1], [2,3], [4], [5]; reasoning node 5 contributes
	// nothing.
	want := []string{"read_json", "web_search", "web_fetch", "calculate"}
	assert.Equal(t, want, CanonicalSignature(d))
}

func TestCanonicalSignature_TieBreakByID(t *testing.T) {
	// Two parallel roots: ascending id decides the order.
	steps := []plan.Step{
		{ID: 1, Kind: plan.StepKindToolCall, Tool: "web_search"},
		{ID: 2, Kind: plan.StepKindToolCall, Tool: "read_csv"},
	}
	d := plan.New("ties", steps)
	assert.Equal(t, []string{"web_search", "read_csv"}, CanonicalSignature(d))
}

func TestStructuralDiversity(t *testing.T) {
	assert.Equal(t, 0.0, StructuralDiversity(nil))

	sigs := [][]string{
		{"a", "b"},
		{"a", "b"},
		{"a", "c"},
		{"a"},
	}
	assert.InDelta(t, 0.75, StructuralDiversity(sigs), 1e-9)

	// Scenario from reporting: 42 variants with 9 distinct signatures.
	var many [][]string
	for i := 0; i < 42; i++ {
		many = append(many, []string{"tool", fmt.Sprintf("shape_%d", i%9)})
	}
	assert.InDelta(t, 9.0/42.0, StructuralDiversity(many), 1e-9)
}

func TestStructuralDiversity_NonDecreasingWithMoreStrategies(t *testing.T) {
	// Adding variants from a new distinct strategy never lowers the distinct
	// count, so diversity over the distinct set stays monotone.
	base := [][]string{{"a", "b"}, {"a", "b"}}
	wider := append(append([][]string{}, base...), []string{"a", "c"})

	distinct := func(sigs [][]string) int {
		seen := map[string]bool{}
		for _, s := range sigs {
			seen[SignatureKey(s)] = true
		}
		return len(seen)
	}
	assert.GreaterOrEqual(t, distinct(wider), distinct(base))
}

func TestOrphanRate(t *testing.T) {
	// Singleton plan is the designated exception.
	solo := plan.New("solo", []plan.Step{{ID: 1, Kind: plan.StepKindToolCall, Tool: "calculate"}})
	assert.Equal(t, 0.0, OrphanRate(solo))

	connected := fetchChain(t)
	assert.Equal(t, 0.0, OrphanRate(connected))

	steps := []plan.Step{
		{ID: 1, Kind: plan.StepKindToolCall, Tool: "a"},
		{ID: 2, Kind: plan.StepKindToolCall, Tool: "b"},
		{ID: 3, Kind: plan.StepKindToolCall, Tool: "c"},
		{ID: 4, Kind: plan.StepKindToolCall, Tool: "d"},
	}
	d := plan.New("half", steps)
	require.NoError(t, d.AddEdge(1, 2, plan.LayerSequential))
	assert.InDelta(t, 0.5, OrphanRate(d), 1e-9)
}

func TestSummarize(t *testing.T) {
	d := fetchChain(t)
	records := []plan.Record{d.Record()}

	variants := []plan.VariantRecord{
		{PlanID: "fetch", StrategyID: 3, VariantID: "fetch-s3", CanonicalSignature: []string{"a", "b"}},
		{PlanID: "fetch", StrategyID: 4, VariantID: "fetch-s4", CanonicalSignature: []string{"a", "c"}},
		{PlanID: "fetch", StrategyID: 7, VariantID: "fetch-s7", CanonicalSignature: []string{"a", "b"}},
	}

	s, err := Summarize(records, variants, []string{"bad-plan"}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, s.PlanCount)
	assert.Equal(t, 3, s.VariantCount)
	assert.Equal(t, []string{"bad-plan"}, s.FailedPlans)
	assert.Nil(t, s.SkippedPlans)
	assert.InDelta(t, 2.0/3.0, s.StructuralDiversity, 1e-9)
	assert.Equal(t, 0.0, s.MeanOrphanRate)
	assert.Equal(t, map[int]int{3: 1, 4: 1, 7: 1}, s.VariantsPerStrategy)
}
