package plan

import (
	"fmt"
	"sort"
)

type edgeKey struct {
	from int
	to   int
}

// DAG is a dependency graph over the steps of one chain. Nodes keep the
// original chain order as a total order; every edge points from an earlier
// position to a later one, which is what makes cycles impossible by
// construction.
type DAG struct {
	PlanID string

	nodes []*Node
	pos   map[int]int // node id -> chain position
	edges map[edgeKey]Layer
}

// New builds a DAG with one node per step, in chain order, and no edges.
func New(planID string, steps []Step) *DAG {
	d := &DAG{
		PlanID: planID,
		pos:    make(map[int]int, len(steps)),
		edges:  make(map[edgeKey]Layer),
	}
	for _, s := range steps {
		d.appendNode(Node{Step: s})
	}
	return d
}

func (d *DAG) appendNode(n Node) {
	if n.Trace == nil {
		n.Trace = make(map[int]Layer)
	}
	d.pos[n.ID] = len(d.nodes)
	d.nodes = append(d.nodes, &n)
}

// Len returns the node count.
func (d *DAG) Len() int { return len(d.nodes) }

// Nodes returns the nodes in chain order. The slice is shared with the DAG;
// callers must not reorder it directly.
func (d *DAG) Nodes() []*Node { return d.nodes }

// NodeByID returns the node with the given id, or nil.
func (d *DAG) NodeByID(id int) *Node {
	p, ok := d.pos[id]
	if !ok {
		return nil
	}
	return d.nodes[p]
}

// Position returns a node's chain position.
func (d *DAG) Position(id int) (int, bool) {
	p, ok := d.pos[id]
	return p, ok
}

// MaxID returns the largest node id in the DAG, or 0 when empty. Strategies
// use it to mint fresh ids for inserted nodes.
func (d *DAG) MaxID() int {
	max := 0
	for id := range d.pos {
		if id > max {
			max = id
		}
	}
	return max
}

// AddEdge records a dependency from -> to with the given layer tag. It fails
// with *CycleError when to does not come strictly after from in chain order,
// and with a plain error when either endpoint does not exist. A duplicate
// edge collapses into the existing one, keeping the highest-priority layer.
func (d *DAG) AddEdge(from, to int, layer Layer) error {
	pf, ok := d.pos[from]
	if !ok {
		return fmt.Errorf("edge %d->%d: node %d does not exist", from, to, from)
	}
	pt, ok := d.pos[to]
	if !ok {
		return fmt.Errorf("edge %d->%d: node %d does not exist", from, to, to)
	}
	if pf >= pt {
		return &CycleError{From: from, To: to}
	}

	key := edgeKey{from: from, to: to}
	if existing, ok := d.edges[key]; ok {
		if layer.Priority() < existing.Priority() {
			d.edges[key] = layer
			d.nodes[pt].Trace[from] = layer
		}
		return nil
	}

	d.edges[key] = layer
	node := d.nodes[pt]
	node.Trace[from] = layer
	node.Dependencies = insertSorted(node.Dependencies, from)
	return nil
}

// RemoveEdge deletes the edge from -> to if present.
func (d *DAG) RemoveEdge(from, to int) {
	key := edgeKey{from: from, to: to}
	if _, ok := d.edges[key]; !ok {
		return
	}
	delete(d.edges, key)
	node := d.nodes[d.pos[to]]
	delete(node.Trace, from)
	node.Dependencies = removeSorted(node.Dependencies, from)
}

// EdgeLayer returns the layer of edge from -> to, if it exists.
func (d *DAG) EdgeLayer(from, to int) (Layer, bool) {
	l, ok := d.edges[edgeKey{from: from, to: to}]
	return l, ok
}

// Edges returns all edges sorted by (To, From) so identical inputs always
// serialize identically.
func (d *DAG) Edges() []Edge {
	out := make([]Edge, 0, len(d.edges))
	for k, l := range d.edges {
		out = append(out, Edge{From: k.from, To: k.to, Layer: l})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].To != out[j].To {
			return out[i].To < out[j].To
		}
		return out[i].From < out[j].From
	})
	return out
}

// InDegree returns the number of inbound edges of a node.
func (d *DAG) InDegree(id int) int {
	n := d.NodeByID(id)
	if n == nil {
		return 0
	}
	return len(n.Dependencies)
}

// OutDegree returns the number of outbound edges of a node.
func (d *DAG) OutDegree(id int) int {
	count := 0
	for k := range d.edges {
		if k.from == id {
			count++
		}
	}
	return count
}

// Successors returns the ids a node points to, ascending.
func (d *DAG) Successors(id int) []int {
	var out []int
	for k := range d.edges {
		if k.from == id {
			out = append(out, k.to)
		}
	}
	sort.Ints(out)
	return out
}

// HasPath reports whether to is reachable from from along edges.
func (d *DAG) HasPath(from, to int) bool {
	if from == to {
		return true
	}
	stack := []int{from}
	seen := map[int]bool{from: true}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range d.Successors(cur) {
			if next == to {
				return true
			}
			if !seen[next] {
				seen[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}

// Orphans returns the ids of nodes with no inbound and no outbound edges,
// ascending. A single-node plan has no orphans by definition.
func (d *DAG) Orphans() []int {
	if len(d.nodes) <= 1 {
		return nil
	}
	var out []int
	for _, n := range d.nodes {
		if len(n.Dependencies) == 0 && d.OutDegree(n.ID) == 0 {
			out = append(out, n.ID)
		}
	}
	sort.Ints(out)
	return out
}

// Validate checks every DAG invariant and returns a *ValidationError
// enumerating all violations, or nil. Orphan nodes count as a violation only
// when allowOrphans is false.
func (d *DAG) Validate(allowOrphans bool) error {
	var violations []string

	seen := make(map[int]bool, len(d.nodes))
	for _, n := range d.nodes {
		if seen[n.ID] {
			violations = append(violations, fmt.Sprintf("duplicate node id %d", n.ID))
		}
		seen[n.ID] = true
	}

	for k := range d.edges {
		pf, okF := d.pos[k.from]
		pt, okT := d.pos[k.to]
		if !okF || !okT {
			violations = append(violations, fmt.Sprintf("edge %d->%d references a missing node", k.from, k.to))
			continue
		}
		if pf >= pt {
			violations = append(violations, fmt.Sprintf("edge %d->%d points forward in chain order", k.from, k.to))
		}
	}

	for _, n := range d.nodes {
		for _, dep := range n.Dependencies {
			if _, ok := d.pos[dep]; !ok {
				violations = append(violations, fmt.Sprintf("node %d depends on missing node %d", n.ID, dep))
			}
		}
	}

	if d.hasCycle() {
		violations = append(violations, "graph contains a cycle")
	}

	if !allowOrphans {
		if orphans := d.Orphans(); len(orphans) > 0 {
			violations = append(violations, fmt.Sprintf("%d orphan node(s): %v", len(orphans), orphans))
		}
	}

	if len(violations) > 0 {
		return &ValidationError{PlanID: d.PlanID, Violations: violations}
	}
	return nil
}

// hasCycle runs Kahn's algorithm. Order-respecting edges cannot cycle, but
// Validate checks independently rather than trusting AddEdge.
func (d *DAG) hasCycle() bool {
	indeg := make(map[int]int, len(d.nodes))
	for _, n := range d.nodes {
		indeg[n.ID] = 0
	}
	for k := range d.edges {
		indeg[k.to]++
	}
	queue := make([]int, 0, len(d.nodes))
	for _, n := range d.nodes {
		if indeg[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}
	processed := 0
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		processed++
		for _, next := range d.Successors(cur) {
			indeg[next]--
			if indeg[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	return processed != len(d.nodes)
}

// Batches produces the parallel-execution hint: a sequence of node-id sets
// where each batch contains every node whose dependencies are fully satisfied
// by earlier batches. Ids are ascending within a batch; calling Batches again
// restarts the computation.
func (d *DAG) Batches() [][]int {
	remaining := make(map[int][]int, len(d.nodes))
	for _, n := range d.nodes {
		deps := make([]int, len(n.Dependencies))
		copy(deps, n.Dependencies)
		remaining[n.ID] = deps
	}

	done := make(map[int]bool, len(d.nodes))
	var batches [][]int

	for len(done) < len(d.nodes) {
		var batch []int
		for _, n := range d.nodes {
			if done[n.ID] {
				continue
			}
			ready := true
			for _, dep := range remaining[n.ID] {
				if !done[dep] {
					ready = false
					break
				}
			}
			if ready {
				batch = append(batch, n.ID)
			}
		}
		if len(batch) == 0 {
			// Unsatisfiable dependencies (cycle or dangling ref); stop rather
			// than loop forever. Validate reports the underlying violation.
			break
		}
		sort.Ints(batch)
		for _, id := range batch {
			done[id] = true
		}
		batches = append(batches, batch)
	}

	return batches
}

// Stats computes the summary block reported on every DAG record.
func (d *DAG) Stats() Stats {
	return Stats{
		NumNodes:       len(d.nodes),
		NumEdges:       len(d.edges),
		MaxDepth:       d.maxDepth(),
		Parallelizable: d.countRoots(),
	}
}

// maxDepth returns the number of nodes on the longest dependency path.
func (d *DAG) maxDepth() int {
	if len(d.nodes) == 0 {
		return 0
	}
	depth := make(map[int]int, len(d.nodes))
	max := 1
	// Nodes in chain order: every dependency precedes its dependent, so one
	// forward pass suffices.
	for _, n := range d.nodes {
		best := 1
		for _, dep := range n.Dependencies {
			if depth[dep]+1 > best {
				best = depth[dep] + 1
			}
		}
		depth[n.ID] = best
		if best > max {
			max = best
		}
	}
	return max
}

// countRoots returns the number of nodes with no dependencies.
func (d *DAG) countRoots() int {
	count := 0
	for _, n := range d.nodes {
		if len(n.Dependencies) == 0 {
			count++
		}
	}
	return count
}

// Warnings collects all node warnings in chain order.
func (d *DAG) Warnings() []string {
	var out []string
	for _, n := range d.nodes {
		out = append(out, n.Warnings...)
	}
	return out
}

// AddWarning attaches a warning to a node.
func (d *DAG) AddWarning(id int, msg string) {
	if n := d.NodeByID(id); n != nil {
		n.Warnings = append(n.Warnings, msg)
	}
}

// --- Mutation used by augmentation (copy-on-write: callers Clone first) ---

// InsertNodeAt splices a new node into the chain order at the given position.
// The node id must be unused.
func (d *DAG) InsertNodeAt(position int, n Node) error {
	if _, exists := d.pos[n.ID]; exists {
		return fmt.Errorf("insert node %d: id already in use", n.ID)
	}
	if position < 0 || position > len(d.nodes) {
		return fmt.Errorf("insert node %d: position %d out of range", n.ID, position)
	}
	if n.Trace == nil {
		n.Trace = make(map[int]Layer)
	}
	d.nodes = append(d.nodes, nil)
	copy(d.nodes[position+1:], d.nodes[position:])
	d.nodes[position] = &n
	d.reindex()
	return nil
}

// RemoveNode deletes a node and every incident edge.
func (d *DAG) RemoveNode(id int) {
	p, ok := d.pos[id]
	if !ok {
		return
	}
	for k := range d.edges {
		if k.from == id || k.to == id {
			d.RemoveEdge(k.from, k.to)
		}
	}
	d.nodes = append(d.nodes[:p], d.nodes[p+1:]...)
	d.reindex()
}

// SwapAdjacent exchanges the chain positions of the nodes at position and
// position+1. Edges are untouched; callers must ensure the two nodes have no
// path between them or the order invariant breaks.
func (d *DAG) SwapAdjacent(position int) error {
	if position < 0 || position+1 >= len(d.nodes) {
		return fmt.Errorf("swap at %d: position out of range", position)
	}
	d.nodes[position], d.nodes[position+1] = d.nodes[position+1], d.nodes[position]
	d.reindex()
	return nil
}

func (d *DAG) reindex() {
	d.pos = make(map[int]int, len(d.nodes))
	for i, n := range d.nodes {
		d.pos[n.ID] = i
	}
}

// Clone returns a deep copy. Variants own their copy of every node and edge
// they touch; the source DAG stays read-only during augmentation.
func (d *DAG) Clone() *DAG {
	out := &DAG{
		PlanID: d.PlanID,
		nodes:  make([]*Node, 0, len(d.nodes)),
		pos:    make(map[int]int, len(d.pos)),
		edges:  make(map[edgeKey]Layer, len(d.edges)),
	}
	for i, n := range d.nodes {
		cp := *n
		cp.Dependencies = append([]int(nil), n.Dependencies...)
		cp.Warnings = append([]string(nil), n.Warnings...)
		cp.Trace = make(map[int]Layer, len(n.Trace))
		for k, v := range n.Trace {
			cp.Trace[k] = v
		}
		if n.Parameters != nil {
			cp.Parameters = make(map[string]string, len(n.Parameters))
			for k, v := range n.Parameters {
				cp.Parameters[k] = v
			}
		}
		out.nodes = append(out.nodes, &cp)
		out.pos[cp.ID] = i
	}
	for k, v := range d.edges {
		out.edges[k] = v
	}
	return out
}

// --- small sorted-slice helpers ---

func insertSorted(s []int, v int) []int {
	i := sort.SearchInts(s, v)
	if i < len(s) && s[i] == v {
		return s
	}
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

func removeSorted(s []int, v int) []int {
	i := sort.SearchInts(s, v)
	if i >= len(s) || s[i] != v {
		return s
	}
	return append(s[:i], s[i+1:]...)
}
