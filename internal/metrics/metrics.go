// Package metrics computes diversity and quality statistics over finished
// DAGs and variants. It is a pure, stateless reducer: nothing here feeds back
// into engine decisions within a run.
package metrics

import (
	"sort"
	"strings"

	"github.com/dusk-indust/planweave/internal/plan"
)

// CanonicalSignature returns the ordered list of tool names visited in
// topological order, ties broken by ascending original chain id. Reasoning
// nodes carry no tool and do not contribute.
func CanonicalSignature(d *plan.DAG) []string {
	sig := make([]string, 0, d.Len())
	for _, batch := range d.Batches() {
		// Batches already list ids ascending; ascending id is the tie-break.
		ids := append([]int(nil), batch...)
		sort.Ints(ids)
		for _, id := range ids {
			n := d.NodeByID(id)
			if n != nil && n.IsToolCall() {
				sig = append(sig, n.Tool)
			}
		}
	}
	return sig
}

// SignatureKey joins a signature into a single comparable string.
func SignatureKey(sig []string) string {
	return strings.Join(sig, "\x1f")
}

// StructuralDiversity is |distinct signatures| / |signatures|. An empty input
// scores 0.
func StructuralDiversity(signatures [][]string) float64 {
	if len(signatures) == 0 {
		return 0
	}
	distinct := make(map[string]bool, len(signatures))
	for _, sig := range signatures {
		distinct[SignatureKey(sig)] = true
	}
	return float64(len(distinct)) / float64(len(signatures))
}

// OrphanRate is the fraction of nodes with neither inbound nor outbound
// edges. A 1-node plan is the designated singleton case and scores 0.
func OrphanRate(d *plan.DAG) float64 {
	if d.Len() <= 1 {
		return 0
	}
	return float64(len(d.Orphans())) / float64(d.Len())
}
