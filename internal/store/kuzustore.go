//go:build cgo

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	kuzu "github.com/kuzudb/go-kuzu"

	"github.com/dusk-indust/planweave/internal/plan"
)

// KuzuStore implements the Store interface using KuzuDB as the graph backend.
// It requires CGO because the go-kuzu driver wraps KuzuDB's C library.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(":memory:", cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at the
// given directory path. KuzuDB creates the directory itself for new
// databases. This enables corpora that survive across runs.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	// Ensure parent directory exists (KuzuDB creates the leaf directory).
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(dbPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open file database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

// ddlStatements defines the Cypher DDL executed by InitSchema.
// Order matters: node tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS Plan(
		id STRING,
		num_nodes INT64,
		num_edges INT64,
		max_depth INT64,
		parallelizable INT64,
		warnings STRING,
		PRIMARY KEY(id)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Step(
		id STRING,
		plan_id STRING,
		step_id INT64,
		kind STRING,
		tool STRING,
		description STRING,
		parameters STRING,
		PRIMARY KEY(id)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Variant(
		id STRING,
		plan_id STRING,
		strategy_id INT64,
		payload STRING,
		PRIMARY KEY(id)
	)`,
	`CREATE REL TABLE IF NOT EXISTS HAS_STEP(FROM Plan TO Step)`,
	`CREATE REL TABLE IF NOT EXISTS DEPENDS_ON(FROM Step TO Step, layer STRING)`,
	`CREATE REL TABLE IF NOT EXISTS VARIANT_OF(FROM Variant TO Plan)`,
}

// InitSchema creates all node and relationship tables if they do not exist.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// ---------- Write operations ----------

// AddPlan inserts a Plan node, one Step node per DAG node, and one
// DEPENDS_ON edge per dependency.
func (s *KuzuStore) AddPlan(_ context.Context, rec plan.Record) error {
	warnings, err := json.Marshal(rec.Warnings)
	if err != nil {
		return fmt.Errorf("kuzu: marshal warnings: %w", err)
	}
	if err := s.exec(
		`CREATE (p:Plan {
			id: $id,
			num_nodes: $nn,
			num_edges: $ne,
			max_depth: $md,
			parallelizable: $par,
			warnings: $warn
		})`,
		map[string]any{
			"id":   rec.PlanID,
			"nn":   int64(rec.Stats.NumNodes),
			"ne":   int64(rec.Stats.NumEdges),
			"md":   int64(rec.Stats.MaxDepth),
			"par":  int64(rec.Stats.Parallelizable),
			"warn": string(warnings),
		},
	); err != nil {
		return err
	}

	for _, n := range rec.Nodes {
		params, err := json.Marshal(n.Parameters)
		if err != nil {
			return fmt.Errorf("kuzu: marshal parameters: %w", err)
		}
		if err := s.exec(
			`CREATE (n:Step {
				id: $id,
				plan_id: $pid,
				step_id: $sid,
				kind: $kind,
				tool: $tool,
				description: $desc,
				parameters: $params
			})`,
			map[string]any{
				"id":     stepKey(rec.PlanID, n.ID),
				"pid":    rec.PlanID,
				"sid":    int64(n.ID),
				"kind":   string(n.Kind),
				"tool":   n.Tool,
				"desc":   n.Description,
				"params": string(params),
			},
		); err != nil {
			return err
		}
		if err := s.exec(
			`MATCH (p:Plan {id: $pid}), (n:Step {id: $nid})
			 CREATE (p)-[:HAS_STEP]->(n)`,
			map[string]any{"pid": rec.PlanID, "nid": stepKey(rec.PlanID, n.ID)},
		); err != nil {
			return err
		}
	}

	for _, e := range rec.Edges {
		if err := s.exec(
			`MATCH (a:Step {id: $src}), (b:Step {id: $dst})
			 CREATE (a)-[:DEPENDS_ON {layer: $layer}]->(b)`,
			map[string]any{
				"src":   stepKey(rec.PlanID, e.From),
				"dst":   stepKey(rec.PlanID, e.To),
				"layer": string(e.Layer),
			},
		); err != nil {
			return err
		}
	}
	return nil
}

// AddVariant inserts a Variant node holding the full record payload, linked
// to its source plan.
func (s *KuzuStore) AddVariant(_ context.Context, rec plan.VariantRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("kuzu: marshal variant: %w", err)
	}
	if err := s.exec(
		`CREATE (v:Variant {id: $id, plan_id: $pid, strategy_id: $sid, payload: $payload})`,
		map[string]any{
			"id":      rec.VariantID,
			"pid":     rec.PlanID,
			"sid":     int64(rec.StrategyID),
			"payload": string(payload),
		},
	); err != nil {
		return err
	}
	// Source plan may not be stored; the link is best-effort.
	_ = s.exec(
		`MATCH (v:Variant {id: $vid}), (p:Plan {id: $pid})
		 CREATE (v)-[:VARIANT_OF]->(p)`,
		map[string]any{"vid": rec.VariantID, "pid": rec.PlanID},
	)
	return nil
}

// ---------- Read operations ----------

// GetPlan reconstructs one plan record from its Plan, Step and DEPENDS_ON
// rows.
func (s *KuzuStore) GetPlan(_ context.Context, planID string) (*plan.Record, error) {
	rows, err := s.query(
		`MATCH (p:Plan {id: $id})
		 RETURN p.num_nodes, p.num_edges, p.max_depth, p.parallelizable, p.warnings`,
		map[string]any{"id": planID},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	r := rows[0]
	rec := plan.Record{
		PlanID: planID,
		Stats: plan.Stats{
			NumNodes:       toInt(r[0]),
			NumEdges:       toInt(r[1]),
			MaxDepth:       toInt(r[2]),
			Parallelizable: toInt(r[3]),
		},
	}
	if w := toString(r[4]); w != "" && w != "null" {
		if err := json.Unmarshal([]byte(w), &rec.Warnings); err != nil {
			return nil, fmt.Errorf("kuzu: unmarshal warnings: %w", err)
		}
	}

	nodeRows, err := s.query(
		`MATCH (n:Step {plan_id: $pid})
		 RETURN n.step_id, n.kind, n.tool, n.description, n.parameters`,
		map[string]any{"pid": planID},
	)
	if err != nil {
		return nil, err
	}
	for _, nr := range nodeRows {
		node := plan.NodeRecord{
			ID:           toInt(nr[0]),
			Kind:         plan.StepKind(toString(nr[1])),
			Tool:         toString(nr[2]),
			Description:  toString(nr[3]),
			Dependencies: []int{},
		}
		if p := toString(nr[4]); p != "" && p != "null" {
			if err := json.Unmarshal([]byte(p), &node.Parameters); err != nil {
				return nil, fmt.Errorf("kuzu: unmarshal parameters: %w", err)
			}
		}
		rec.Nodes = append(rec.Nodes, node)
	}
	sort.Slice(rec.Nodes, func(i, j int) bool { return rec.Nodes[i].ID < rec.Nodes[j].ID })

	edgeRows, err := s.query(
		`MATCH (a:Step {plan_id: $pid})-[r:DEPENDS_ON]->(b:Step)
		 RETURN a.step_id, b.step_id, r.layer`,
		map[string]any{"pid": planID},
	)
	if err != nil {
		return nil, err
	}
	deps := make(map[int][]int)
	for _, er := range edgeRows {
		from, to := toInt(er[0]), toInt(er[1])
		rec.Edges = append(rec.Edges, plan.Edge{
			From:  from,
			To:    to,
			Layer: plan.Layer(toString(er[2])),
		})
		deps[to] = append(deps[to], from)
	}
	sort.Slice(rec.Edges, func(i, j int) bool {
		if rec.Edges[i].To != rec.Edges[j].To {
			return rec.Edges[i].To < rec.Edges[j].To
		}
		return rec.Edges[i].From < rec.Edges[j].From
	})
	for i := range rec.Nodes {
		if d := deps[rec.Nodes[i].ID]; len(d) > 0 {
			sort.Ints(d)
			rec.Nodes[i].Dependencies = d
		}
	}
	return &rec, nil
}

// ListPlans returns every stored plan record ordered by plan id.
func (s *KuzuStore) ListPlans(ctx context.Context) ([]plan.Record, error) {
	rows, err := s.query("MATCH (p:Plan) RETURN p.id", nil)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, toString(r[0]))
	}
	sort.Strings(ids)

	out := make([]plan.Record, 0, len(ids))
	for _, id := range ids {
		rec, err := s.GetPlan(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, nil
}

// ListVariants returns the variants of one plan, or every variant when
// planID is empty, ordered by variant id.
func (s *KuzuStore) ListVariants(_ context.Context, planID string) ([]plan.VariantRecord, error) {
	var rows [][]any
	var err error
	if planID == "" {
		rows, err = s.query("MATCH (v:Variant) RETURN v.payload", nil)
	} else {
		rows, err = s.query(
			"MATCH (v:Variant {plan_id: $pid}) RETURN v.payload",
			map[string]any{"pid": planID},
		)
	}
	if err != nil {
		return nil, err
	}
	out := make([]plan.VariantRecord, 0, len(rows))
	for _, r := range rows {
		var rec plan.VariantRecord
		if err := json.Unmarshal([]byte(toString(r[0])), &rec); err != nil {
			return nil, fmt.Errorf("kuzu: unmarshal variant: %w", err)
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VariantID < out[j].VariantID })
	return out, nil
}

// ---------- Stats ----------

// Stats returns counts of all node and edge tables.
func (s *KuzuStore) Stats(_ context.Context) (*CorpusStats, error) {
	plans, err := s.countTable("Plan")
	if err != nil {
		return nil, err
	}
	variants, err := s.countTable("Variant")
	if err != nil {
		return nil, err
	}
	nodes, err := s.countTable("Step")
	if err != nil {
		return nil, err
	}
	edges, err := s.countRel("DEPENDS_ON")
	if err != nil {
		return nil, err
	}
	return &CorpusStats{
		PlanCount:    plans,
		VariantCount: variants,
		NodeCount:    nodes,
		EdgeCount:    edges,
	}, nil
}

// ---------- Internal helpers ----------

// stepKey produces a deterministic identifier for a step: "planID:stepID".
func stepKey(planID string, stepID int) string {
	return fmt.Sprintf("%s:%d", planID, stepID)
}

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a parameterized Cypher statement and collects all result rows.
// Each row is a []any slice with values in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// countTable returns the number of rows in a node table.
func (s *KuzuStore) countTable(table string) (int, error) {
	// Table name is a fixed internal constant, not user input.
	cypher := fmt.Sprintf("MATCH (n:%s) RETURN count(n)", table)
	rows, err := s.query(cypher, nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// countRel returns the number of rows in a relationship table.
func (s *KuzuStore) countRel(table string) (int, error) {
	cypher := fmt.Sprintf("MATCH ()-[r:%s]->() RETURN count(r)", table)
	rows, err := s.query(cypher, nil)
	if err != nil {
		// Table may not exist yet; treat as zero.
		return 0, nil
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, float64, bool, string).
// These helpers safely coerce any -> concrete type.

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
