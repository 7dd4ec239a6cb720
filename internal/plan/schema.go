package plan

// --- Enums ---

// StepKind classifies steps in an annotated reasoning chain.
type StepKind string

const (
	StepKindToolCall  StepKind = "tool-call"
	StepKindReasoning StepKind = "reasoning"
)

// Layer identifies which inference signal produced a dependency edge.
// An edge's layer is permanent metadata assigned at creation time.
type Layer string

const (
	LayerPlaceholder Layer = "placeholder"
	LayerParameter   Layer = "parameter"
	LayerSemantic    Layer = "semantic"
	LayerSequential  Layer = "sequential"
)

// Priority returns the layer's rank; lower is higher priority. When the same
// edge is produced by two layers, the higher-priority tag wins.
func (l Layer) Priority() int {
	switch l {
	case LayerPlaceholder:
		return 0
	case LayerParameter:
		return 1
	case LayerSemantic:
		return 2
	case LayerSequential:
		return 3
	default:
		return 4
	}
}

// Critical reports whether edges of this layer are load-bearing: placeholder
// and parameter edges are high-confidence data dependencies that augmentation
// must not rewrite when preserve_critical_path is set.
func (l Layer) Critical() bool {
	return l == LayerPlaceholder || l == LayerParameter
}

// --- Models ---

// Step is one record of an annotated reasoning chain, produced by the
// text-extraction front end. Steps are immutable once parsed; ids are the
// 1-based sequence position and stay stable through the whole pipeline.
type Step struct {
	ID          int               `json:"id"`
	Kind        StepKind          `json:"kind"`
	Tool        string            `json:"tool,omitempty"` // empty for reasoning steps
	Parameters  map[string]string `json:"parameters,omitempty"`
	Description string            `json:"description,omitempty"`
}

// Edge is a directed dependency between two steps, tagged with the inference
// layer that produced it.
type Edge struct {
	From  int   `json:"from"`
	To    int   `json:"to"`
	Layer Layer `json:"layer"`
}

// Node wraps a Step with its resolved dependencies. Trace records, per
// inbound edge, which layer produced it; Warnings collects non-fatal
// resolution conflicts (e.g. a dangling explicit placeholder).
type Node struct {
	Step
	Dependencies []int         `json:"dependencies"`
	Trace        map[int]Layer `json:"-"`
	Warnings     []string      `json:"-"`
}

// IsToolCall reports whether the node invokes a tool.
func (n *Node) IsToolCall() bool {
	return n.Kind == StepKindToolCall
}

// Stats summarizes a DAG's shape. Reported on every DAG record.
type Stats struct {
	NumNodes       int `json:"num_nodes"`
	NumEdges       int `json:"num_edges"`
	MaxDepth       int `json:"max_depth"`
	Parallelizable int `json:"parallelizable_steps"`
}
