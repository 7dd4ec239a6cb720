// Package export renders DAG records and corpora for humans and downstream
// tooling: Mermaid diagrams and a JSON corpus dump.
package export

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/planweave/internal/plan"
)

// GenerateMermaid produces a Mermaid graph TD diagram from a plan record.
// Placeholder and parameter edges render solid, semantic and sequential
// edges dotted, each labeled with its layer.
func GenerateMermaid(rec plan.Record) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, n := range rec.Nodes {
		label := nodeLabel(n)
		if n.Kind == plan.StepKindReasoning {
			// Rounded box for reasoning-only steps.
			sb.WriteString(fmt.Sprintf("  N%d(\"%s\")\n", n.ID, label))
		} else {
			sb.WriteString(fmt.Sprintf("  N%d[\"%s\"]\n", n.ID, label))
		}
	}

	for _, e := range rec.Edges {
		if e.Layer.Critical() {
			sb.WriteString(fmt.Sprintf("  N%d -->|%s| N%d\n", e.From, e.Layer, e.To))
		} else {
			sb.WriteString(fmt.Sprintf("  N%d -.->|%s| N%d\n", e.From, e.Layer, e.To))
		}
	}

	return sb.String()
}

// nodeLabel builds a short Mermaid-safe label for a node.
func nodeLabel(n plan.NodeRecord) string {
	label := n.Tool
	if label == "" {
		label = shortDesc(n.Description)
	}
	if label == "" {
		label = fmt.Sprintf("step %d", n.ID)
	}
	label = strings.ReplaceAll(label, `"`, "'")
	return fmt.Sprintf("%d: %s", n.ID, label)
}

// shortDesc truncates a description to 40 runes for diagram readability.
func shortDesc(desc string) string {
	runes := []rune(strings.TrimSpace(desc))
	if len(runes) <= 40 {
		return string(runes)
	}
	return string(runes[:37]) + "..."
}
