package plan

// NodeRecord is the wire form of a node in a DAG record.
type NodeRecord struct {
	ID           int               `json:"id"`
	Kind         StepKind          `json:"kind"`
	Tool         string            `json:"tool,omitempty"`
	Parameters   map[string]string `json:"parameters,omitempty"`
	Description  string            `json:"description,omitempty"`
	Dependencies []int             `json:"dependencies"`
}

// Record is the output DAG record consumed by storage, export, and the
// augmentation CLI.
type Record struct {
	PlanID   string       `json:"plan_id"`
	Nodes    []NodeRecord `json:"nodes"`
	Edges    []Edge       `json:"edges"`
	Stats    Stats        `json:"stats"`
	Warnings []string     `json:"warnings,omitempty"`
}

// VariantRecord is the output form of one augmentation variant.
type VariantRecord struct {
	PlanID             string   `json:"plan_id"`
	StrategyID         int      `json:"strategy_id"`
	VariantID          string   `json:"variant_id"`
	DAG                Record   `json:"dag"`
	CanonicalSignature []string `json:"canonical_signature"`
}

// Record serializes the DAG into its wire form.
func (d *DAG) Record() Record {
	rec := Record{
		PlanID:   d.PlanID,
		Nodes:    make([]NodeRecord, 0, len(d.nodes)),
		Edges:    d.Edges(),
		Stats:    d.Stats(),
		Warnings: d.Warnings(),
	}
	for _, n := range d.nodes {
		deps := n.Dependencies
		if deps == nil {
			deps = []int{}
		}
		rec.Nodes = append(rec.Nodes, NodeRecord{
			ID:           n.ID,
			Kind:         n.Kind,
			Tool:         n.Tool,
			Parameters:   n.Parameters,
			Description:  n.Description,
			Dependencies: deps,
		})
	}
	return rec
}

// FromRecord rebuilds a DAG from its wire form. Edge layer tags are restored
// verbatim; they are permanent metadata, never re-derived.
func FromRecord(rec Record) (*DAG, error) {
	steps := make([]Step, 0, len(rec.Nodes))
	for _, n := range rec.Nodes {
		steps = append(steps, Step{
			ID:          n.ID,
			Kind:        n.Kind,
			Tool:        n.Tool,
			Parameters:  n.Parameters,
			Description: n.Description,
		})
	}
	d := New(rec.PlanID, steps)
	for _, e := range rec.Edges {
		if err := d.AddEdge(e.From, e.To, e.Layer); err != nil {
			return nil, err
		}
	}
	// Warnings are plan-level on the wire; reattach to the first node so they
	// round-trip through Warnings().
	if len(rec.Warnings) > 0 && len(d.nodes) > 0 {
		d.nodes[0].Warnings = append(d.nodes[0].Warnings, rec.Warnings...)
	}
	return d, nil
}
