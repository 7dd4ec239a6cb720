// Package infer turns a linear, annotated reasoning chain into a DAG of data
// dependencies. Four signal layers run per parameter in fixed priority order:
// placeholder, parameter typing, semantic cue, sequential fallback. The
// engine is a best-effort heuristic, not a verifier: it always terminates
// with a valid DAG for well-ordered input and records conflicts as warnings.
package infer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dusk-indust/planweave/internal/plan"
	"github.com/dusk-indust/planweave/internal/toolreg"
)

// Config holds the tunable knobs of the inference engine.
type Config struct {
	// SemanticThreshold gates layer-3 matches; a description-similarity score
	// must reach it before a semantic edge is added.
	SemanticThreshold float64

	// AllowOrphans accepts nodes left with zero edges after all layers. When
	// false, every such node (except the chain's first) gets a forced
	// sequential edge from its predecessor.
	AllowOrphans bool
}

// DefaultConfig mirrors the configuration surface defaults.
func DefaultConfig() Config {
	return Config{SemanticThreshold: 0.3, AllowOrphans: true}
}

// Engine resolves dependencies for one chain at a time. It holds only
// read-only state and is safe to share across concurrent plans.
type Engine struct {
	reg *toolreg.Registry
	cfg Config
}

// New creates an Engine over a frozen tool-schema registry.
func New(reg *toolreg.Registry, cfg Config) *Engine {
	return &Engine{reg: reg, cfg: cfg}
}

// Infer builds the dependency DAG for an ordered step list. Every step
// becomes exactly one node; no step is dropped. Inference is strictly
// sequential within a chain: each node's resolution sees all strictly-prior
// nodes' edges already fixed.
func (e *Engine) Infer(planID string, steps []plan.Step) (*plan.DAG, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("infer: plan %s has no steps", planID)
	}

	d := plan.New(planID, steps)
	nodes := d.Nodes()

	for i, n := range nodes {
		hadUnresolved := false

		for _, pname := range sortedParamNames(n.Parameters) {
			if e.resolveParam(d, nodes, i, pname, n.Parameters[pname]) {
				continue
			}
			hadUnresolved = true

			// Layer 4: sequential fallback, gated by the orphan policy. Only
			// for tool-call nodes that still have no inbound edge, and only
			// from a prior tool-call.
			if !e.cfg.AllowOrphans && n.IsToolCall() && d.InDegree(n.ID) == 0 {
				if prev := nearestPriorToolCall(nodes, i); prev != nil {
					// Cannot fail: prev strictly precedes n.
					_ = d.AddEdge(prev.ID, n.ID, plan.LayerSequential)
				}
			}
		}

		// The chain's first node has nothing to depend on; no conflict there.
		if hadUnresolved && i > 0 && d.InDegree(n.ID) == 0 {
			d.AddWarning(n.ID, plan.ConflictWarning(n.ID, "no layer resolved any parameter"))
		}
	}

	if !e.cfg.AllowOrphans {
		e.forceSequentialEdges(d, nodes)
	}

	if err := d.Validate(true); err != nil {
		return nil, err
	}
	return d, nil
}

// resolveParam runs layers 1-3 for a single parameter. It returns true when
// the parameter is resolved (or consumed: a dangling explicit placeholder is
// recorded as a conflict and never falls through to lower layers).
func (e *Engine) resolveParam(d *plan.DAG, nodes []*plan.Node, i int, pname, value string) bool {
	n := nodes[i]

	// Layer 1: placeholder.
	if ph, ok := ParsePlaceholder(value); ok {
		switch ph.Kind {
		case PlaceholderExplicit:
			if d.NodeByID(ph.StepID) == nil {
				d.AddWarning(n.ID, plan.ConflictWarning(n.ID,
					fmt.Sprintf("parameter %q references missing step %d", pname, ph.StepID)))
				return true // no edge fabricated
			}
			if err := d.AddEdge(ph.StepID, n.ID, plan.LayerPlaceholder); err != nil {
				d.AddWarning(n.ID, plan.ConflictWarning(n.ID,
					fmt.Sprintf("parameter %q: %v", pname, err)))
			}
			return true

		case PlaceholderTyped:
			for j := i - 1; j >= 0; j-- {
				prev := nodes[j]
				if prev.IsToolCall() && strings.Contains(strings.ToLower(prev.Tool), ph.Tool) {
					_ = d.AddEdge(prev.ID, n.ID, plan.LayerPlaceholder)
					return true
				}
			}
			return false // no prior tool matched; lower layers may still resolve

		case PlaceholderContextual:
			added := false
			for j := 0; j < i; j++ {
				prev := nodes[j]
				if !prev.IsToolCall() {
					continue
				}
				if err := d.AddEdge(prev.ID, n.ID, plan.LayerPlaceholder); err != nil {
					// Dropped, not fatal: the fan-in edge would break ordering.
					d.AddWarning(n.ID, plan.ConflictWarning(n.ID,
						fmt.Sprintf("parameter %q: %v", pname, err)))
					continue
				}
				added = true
			}
			return added

		case PlaceholderIteration:
			for j := i - 1; j >= 0; j-- {
				prev := nodes[j]
				if prev.IsToolCall() && e.reg.HasOutputField(prev.Tool, ph.Field) {
					_ = d.AddEdge(prev.ID, n.ID, plan.LayerPlaceholder)
					return true
				}
			}
			return false
		}
	}

	// Layer 2: parameter typing against the registry.
	if n.IsToolCall() {
		if ptype, ok := e.reg.InputType(n.Tool, pname); ok {
			for j := i - 1; j >= 0; j-- {
				prev := nodes[j]
				if prev.IsToolCall() && e.reg.HasOutputType(prev.Tool, ptype) {
					_ = d.AddEdge(prev.ID, n.ID, plan.LayerParameter)
					return true
				}
			}
		}
	}

	// Layer 3: lexical cue match over descriptions.
	if e.cfg.SemanticThreshold > 0 && n.Description != "" {
		backRef := HasBackReference(n.Description)
		best := 0.0
		bestID := 0
		found := false
		for j := i - 1; j >= 0; j-- {
			prev := nodes[j]
			score := Similarity(n.Description, prev.Description)
			if backRef && j == i-1 {
				score += backRefBonus
			}
			// Strict > keeps the nearest prior node on score ties.
			if score > best {
				best = score
				bestID = prev.ID
				found = true
			}
		}
		if found && best >= e.cfg.SemanticThreshold {
			_ = d.AddEdge(bestID, n.ID, plan.LayerSemantic)
			return true
		}
	}

	return false
}

// forceSequentialEdges links every orphan (except the chain's first node) to
// its nearest preceding tool-call node, or failing that its immediate
// predecessor.
func (e *Engine) forceSequentialEdges(d *plan.DAG, nodes []*plan.Node) {
	for i := 1; i < len(nodes); i++ {
		n := nodes[i]
		if d.InDegree(n.ID) > 0 || d.OutDegree(n.ID) > 0 {
			continue
		}
		prev := nearestPriorToolCall(nodes, i)
		if prev == nil {
			prev = nodes[i-1]
		}
		_ = d.AddEdge(prev.ID, n.ID, plan.LayerSequential)
	}
}

// nearestPriorToolCall scans backward from position i for a tool-call node.
func nearestPriorToolCall(nodes []*plan.Node, i int) *plan.Node {
	for j := i - 1; j >= 0; j-- {
		if nodes[j].IsToolCall() {
			return nodes[j]
		}
	}
	return nil
}

// sortedParamNames returns map keys in ascending order so resolution and
// warning output are deterministic.
func sortedParamNames(params map[string]string) []string {
	if len(params) == 0 {
		return nil
	}
	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
