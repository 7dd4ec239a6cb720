package mcptools

import (
	"github.com/dusk-indust/planweave/internal/metrics"
	"github.com/dusk-indust/planweave/internal/plan"
	"github.com/dusk-indust/planweave/internal/store"
)

// --- MCP Tool Input Types ---
// These structs define the JSON schema for each MCP tool's input.
// The MCP Go SDK auto-generates JSON schemas from struct tags.

// ConvertChainInput is the input for the convert_chain MCP tool.
type ConvertChainInput struct {
	PlanID  string      `json:"planId,omitempty" jsonschema:"identifier for the plan; generated when omitted"`
	Steps   []plan.Step `json:"steps" jsonschema:"the ordered annotated reasoning chain to convert"`
	Augment bool        `json:"augment,omitempty" jsonschema:"also generate structural variants of the inferred DAG"`
}

// ConvertChainOutput is the result of the convert_chain MCP tool.
type ConvertChainOutput struct {
	Plan     plan.Record          `json:"plan"`
	Variants []plan.VariantRecord `json:"variants,omitempty"`
}

// AugmentPlanInput is the input for the augment_plan MCP tool.
type AugmentPlanInput struct {
	PlanID               string `json:"planId" jsonschema:"id of a previously converted plan"`
	Strategies           []int  `json:"strategies,omitempty" jsonschema:"strategy ids to run (1-10); empty means all"`
	MaxVariants          int    `json:"maxVariants,omitempty" jsonschema:"cap on emitted variants (default: 10)"`
	PreserveCriticalPath bool   `json:"preserveCriticalPath,omitempty" jsonschema:"keep placeholder and parameter edges untouched"`
}

// AugmentPlanOutput is the result of the augment_plan MCP tool.
type AugmentPlanOutput struct {
	Variants []plan.VariantRecord `json:"variants"`
}

// GetPlanInput is the input for the get_plan MCP tool.
type GetPlanInput struct {
	PlanID  string `json:"planId" jsonschema:"id of a previously converted plan"`
	Diagram bool   `json:"diagram,omitempty" jsonschema:"include a Mermaid rendering of the DAG"`
}

// GetPlanOutput is the result of the get_plan MCP tool.
type GetPlanOutput struct {
	Plan     plan.Record          `json:"plan"`
	Variants []plan.VariantRecord `json:"variants,omitempty"`
	Mermaid  string               `json:"mermaid,omitempty"`
}

// CorpusMetricsInput is the input for the corpus_metrics MCP tool.
type CorpusMetricsInput struct{}

// CorpusMetricsOutput is the result of the corpus_metrics MCP tool.
type CorpusMetricsOutput struct {
	Stats   store.CorpusStats `json:"stats"`
	Summary metrics.Summary   `json:"summary"`
}
