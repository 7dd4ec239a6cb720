package augment

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dusk-indust/planweave/internal/plan"
	"github.com/dusk-indust/planweave/internal/toolreg"
)

// applyFunc is one transformation rule: a pure function from a source DAG to
// a rewritten clone. It returns ok=false when its precondition is unmet; the
// source is never mutated.
type applyFunc func(src *plan.DAG, reg *toolreg.Registry, preserve bool) (*plan.DAG, bool)

// Strategy is one entry of the fixed transformation table. Table order is
// the deterministic priority order used when more strategies are eligible
// than max_variants_per_sample allows.
type Strategy struct {
	ID    int
	Name  string
	apply applyFunc
}

// Table lists all ten strategies in priority order.
var Table = []Strategy{
	{ID: 1, Name: "add-reasoning", apply: applyAddReasoning},
	{ID: 2, Name: "remove-optional", apply: applyRemoveOptional},
	{ID: 3, Name: "simplify-description", apply: applySimplifyDescription},
	{ID: 4, Name: "tool-substitution", apply: applyToolSubstitution},
	{ID: 5, Name: "reorder-parallel", apply: applyReorderParallel},
	{ID: 6, Name: "split-compound", apply: applySplitCompound},
	{ID: 7, Name: "add-error-handling", apply: applyAddErrorHandling},
	{ID: 8, Name: "parameter-variation", apply: applyParameterVariation},
	{ID: 9, Name: "branch-duplication", apply: applyBranchDuplication},
	{ID: 10, Name: "depth-adjustment", apply: applyDepthAdjustment},
}

// AllIDs returns every strategy id in table order.
func AllIDs() []int {
	ids := make([]int, 0, len(Table))
	for _, s := range Table {
		ids = append(ids, s.ID)
	}
	return ids
}

// criticalIDs returns the ids of load-bearing nodes: endpoints of any
// placeholder- or parameter-layer edge.
func criticalIDs(d *plan.DAG) map[int]bool {
	out := make(map[int]bool)
	for _, e := range d.Edges() {
		if e.Layer.Critical() {
			out[e.From] = true
			out[e.To] = true
		}
	}
	return out
}

// --- #1 add-reasoning: insert a reasoning-only node on an existing edge ---

func applyAddReasoning(src *plan.DAG, _ *toolreg.Registry, preserve bool) (*plan.DAG, bool) {
	var target *plan.Edge
	for _, e := range src.Edges() {
		if preserve && e.Layer.Critical() {
			continue
		}
		to := src.NodeByID(e.To)
		if to == nil || !to.IsToolCall() {
			continue
		}
		target = &e
		break
	}
	if target == nil {
		return nil, false
	}

	out := src.Clone()
	newID := out.MaxID() + 1
	pos, _ := out.Position(target.To)

	node := plan.Node{Step: plan.Step{
		ID:          newID,
		Kind:        plan.StepKindReasoning,
		Description: "Review the intermediate result before continuing.",
	}}
	if err := out.InsertNodeAt(pos, node); err != nil {
		return nil, false
	}
	out.RemoveEdge(target.From, target.To)
	_ = out.AddEdge(target.From, newID, target.Layer)
	_ = out.AddEdge(newID, target.To, plan.LayerSequential)
	return out, true
}

// --- #2 remove-optional: delete a leaf held only by low-confidence edges ---

func applyRemoveOptional(src *plan.DAG, _ *toolreg.Registry, _ bool) (*plan.DAG, bool) {
	nodes := src.Nodes()
	victim := 0
	found := false
	// Scan back to front: a redundant step is most often a trailing one.
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		if src.OutDegree(n.ID) != 0 || len(n.Dependencies) == 0 {
			continue
		}
		removable := true
		for _, dep := range n.Dependencies {
			if layer, ok := src.EdgeLayer(dep, n.ID); !ok || layer.Critical() {
				removable = false
				break
			}
		}
		if removable {
			victim = n.ID
			found = true
			break
		}
	}
	if !found {
		return nil, false
	}

	out := src.Clone()
	out.RemoveNode(victim)
	return out, true
}

// --- #3 simplify-description: rewrite text only, topology untouched ---

func applySimplifyDescription(src *plan.DAG, _ *toolreg.Registry, _ bool) (*plan.DAG, bool) {
	if src.Len() == 0 {
		return nil, false
	}
	out := src.Clone()
	for _, n := range out.Nodes() {
		n.Description = simplifyText(n.Description, n.Tool)
	}
	return out, true
}

// simplifyText keeps the first sentence of a description and collapses
// whitespace. Empty descriptions of tool nodes get a minimal stand-in.
func simplifyText(desc, tool string) string {
	s := strings.Join(strings.Fields(desc), " ")
	if i := strings.Index(s, ". "); i >= 0 {
		s = s[:i+1]
	}
	if s == "" && tool != "" {
		s = fmt.Sprintf("Run %s.", tool)
	}
	return s
}

// --- #4 tool-substitution: swap in a declared functional equivalent ---

func applyToolSubstitution(src *plan.DAG, reg *toolreg.Registry, _ bool) (*plan.DAG, bool) {
	for _, n := range src.Nodes() {
		if !n.IsToolCall() {
			continue
		}
		replacement, ok := reg.Equivalent(n.Tool)
		if !ok {
			continue
		}
		out := src.Clone()
		target := out.NodeByID(n.ID)
		target.Parameters = reg.RemapParameters(target.Tool, replacement, target.Parameters)
		target.Tool = replacement
		return out, true
	}
	return nil, false
}

// --- #5 reorder-parallel: swap two adjacent same-batch nodes ---

func applyReorderParallel(src *plan.DAG, _ *toolreg.Registry, preserve bool) (*plan.DAG, bool) {
	critical := criticalIDs(src)
	for _, batch := range src.Batches() {
		if len(batch) < 2 {
			continue
		}
		// Only adjacent chain positions may swap without breaking the
		// backward-in-time edge invariant.
		posOf := make(map[int]int, len(batch))
		for _, id := range batch {
			p, _ := src.Position(id)
			posOf[id] = p
		}
		for _, a := range batch {
			for _, b := range batch {
				if posOf[b] != posOf[a]+1 {
					continue
				}
				if preserve && (critical[a] || critical[b]) {
					continue
				}
				out := src.Clone()
				if err := out.SwapAdjacent(posOf[a]); err != nil {
					return nil, false
				}
				return out, true
			}
		}
	}
	return nil, false
}

// --- #6 split-compound: expand a decomposable tool into a linear chain ---

func applySplitCompound(src *plan.DAG, reg *toolreg.Registry, preserve bool) (*plan.DAG, bool) {
	critical := criticalIDs(src)
	for _, n := range src.Nodes() {
		if !n.IsToolCall() {
			continue
		}
		subs := reg.Decomposition(n.Tool)
		if len(subs) < 2 {
			continue
		}
		if preserve && critical[n.ID] {
			continue
		}
		return splitNode(src, n.ID, subs), true
	}
	return nil, false
}

func splitNode(src *plan.DAG, id int, subs []string) *plan.DAG {
	out := src.Clone()
	victim := out.NodeByID(id)
	pos, _ := out.Position(id)

	inbound := make([]plan.Edge, 0)
	outbound := make([]plan.Edge, 0)
	for _, e := range out.Edges() {
		if e.To == id {
			inbound = append(inbound, e)
		}
		if e.From == id {
			outbound = append(outbound, e)
		}
	}

	params := victim.Parameters
	baseDesc := victim.Description
	out.RemoveNode(id)

	nextID := out.MaxID() + 1
	if id >= nextID {
		nextID = id + 1
	}
	ids := make([]int, len(subs))
	for i, sub := range subs {
		ids[i] = nextID + i
		node := plan.Node{Step: plan.Step{
			ID:   ids[i],
			Kind: plan.StepKindToolCall,
			Tool: sub,
		}}
		if i == 0 {
			node.Parameters = params
			node.Description = baseDesc
		} else {
			node.Description = fmt.Sprintf("Continue with %s on the previous output.", sub)
		}
		// Insert in order so the sub-chain occupies the victim's slot.
		_ = out.InsertNodeAt(pos+i, node)
	}

	for _, e := range inbound {
		_ = out.AddEdge(e.From, ids[0], e.Layer)
	}
	for i := 1; i < len(ids); i++ {
		_ = out.AddEdge(ids[i-1], ids[i], plan.LayerSequential)
	}
	for _, e := range outbound {
		_ = out.AddEdge(ids[len(ids)-1], e.To, e.Layer)
	}
	return out
}

// --- #7 add-error-handling: append a retry/fallback node ---

func applyAddErrorHandling(src *plan.DAG, _ *toolreg.Registry, _ bool) (*plan.DAG, bool) {
	for _, n := range src.Nodes() {
		if !n.IsToolCall() {
			continue
		}
		out := src.Clone()
		newID := out.MaxID() + 1
		pos, _ := out.Position(n.ID)
		retry := plan.Node{Step: plan.Step{
			ID:          newID,
			Kind:        plan.StepKindToolCall,
			Tool:        n.Tool,
			Description: fmt.Sprintf("Retry %s with fallback settings if the first attempt fails.", n.Tool),
		}}
		if err := out.InsertNodeAt(pos+1, retry); err != nil {
			return nil, false
		}
		_ = out.AddEdge(n.ID, newID, plan.LayerSequential)
		return out, true
	}
	return nil, false
}

// --- #8 parameter-variation: alter one non-critical literal value ---

func applyParameterVariation(src *plan.DAG, reg *toolreg.Registry, _ bool) (*plan.DAG, bool) {
	for _, n := range src.Nodes() {
		if len(n.Parameters) == 0 {
			continue
		}
		for _, pname := range sortedKeys(n.Parameters) {
			value := n.Parameters[pname]
			if isPlaceholderValue(value) {
				continue
			}
			// Skip parameters that may have produced a parameter-layer edge.
			if hasCriticalInbound(src, n.ID) {
				if _, typed := reg.InputType(n.Tool, pname); typed {
					continue
				}
			}
			out := src.Clone()
			out.NodeByID(n.ID).Parameters[pname] = varyLiteral(value)
			return out, true
		}
	}
	return nil, false
}

func hasCriticalInbound(d *plan.DAG, id int) bool {
	n := d.NodeByID(id)
	for _, dep := range n.Dependencies {
		if layer, ok := d.EdgeLayer(dep, id); ok && layer.Critical() {
			return true
		}
	}
	return false
}

// varyLiteral rewrites a literal without changing its meaning: arithmetic
// expressions gain explicit grouping, plain text gets a neutral qualifier.
func varyLiteral(v string) string {
	if strings.ContainsAny(v, "+-*/0123456789") && !strings.HasPrefix(v, "(") {
		return "(" + v + ")"
	}
	return v + " (exact)"
}

// --- #9 branch-duplication: mirror a sibling branch ---

func applyBranchDuplication(src *plan.DAG, reg *toolreg.Registry, preserve bool) (*plan.DAG, bool) {
	critical := criticalIDs(src)
	for _, c := range src.Nodes() {
		succ := src.Successors(c.ID)
		if len(succ) < 2 {
			continue
		}
		for i := 0; i < len(succ); i++ {
			for j := i + 1; j < len(succ); j++ {
				a, b := succ[i], succ[j]
				if src.HasPath(a, b) || src.HasPath(b, a) {
					continue
				}
				if preserve && critical[b] {
					continue
				}
				return duplicateBranch(src, reg, c.ID, b), true
			}
		}
	}
	return nil, false
}

func duplicateBranch(src *plan.DAG, reg *toolreg.Registry, ancestor, branch int) *plan.DAG {
	out := src.Clone()
	orig := out.NodeByID(branch)
	newID := out.MaxID() + 1
	pos, _ := out.Position(branch)

	tool := orig.Tool
	params := orig.Parameters
	if alt, ok := reg.Equivalent(orig.Tool); ok {
		params = reg.RemapParameters(orig.Tool, alt, params)
		tool = alt
	}

	dup := plan.Node{Step: plan.Step{
		ID:          newID,
		Kind:        orig.Kind,
		Tool:        tool,
		Parameters:  copyParams(params),
		Description: fmt.Sprintf("Alternate path: %s", orig.Description),
	}}
	_ = out.InsertNodeAt(pos+1, dup)
	_ = out.AddEdge(ancestor, newID, plan.LayerSequential)
	return out
}

// --- #10 depth-adjustment: flatten a single-in/single-out chain ---

func applyDepthAdjustment(src *plan.DAG, _ *toolreg.Registry, preserve bool) (*plan.DAG, bool) {
	if src.Len() < 3 {
		return nil, false
	}
	critical := criticalIDs(src)
	for _, v := range src.Nodes() {
		if src.InDegree(v.ID) != 1 || src.OutDegree(v.ID) != 1 {
			continue
		}
		u := v.Dependencies[0]
		w := src.Successors(v.ID)[0]
		if src.OutDegree(u) != 1 || src.InDegree(w) != 1 {
			continue
		}
		if preserve && (critical[u] || critical[v.ID] || critical[w]) {
			continue
		}

		out := src.Clone()
		merged := out.NodeByID(u)
		if v.Description != "" {
			merged.Description = strings.TrimSpace(merged.Description + " Then: " + v.Description)
		}
		out.RemoveNode(v.ID)
		_ = out.AddEdge(u, w, plan.LayerSequential)
		return out, true
	}
	return nil, false
}

// --- helpers ---

func isPlaceholderValue(v string) bool {
	return strings.Contains(v, "{step_") || strings.Contains(v, "<from_") || strings.Contains(v, "<iterate:")
}

func copyParams(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
