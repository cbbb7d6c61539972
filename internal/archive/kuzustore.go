//go:build cgo

package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	kuzu "github.com/kuzudb/go-kuzu"

	"github.com/dusk-indust/tribunal/internal/verdict"
	"github.com/dusk-indust/tribunal/internal/workflow"
)

// KuzuStore implements the Store interface using KuzuDB as the archive
// backend. It requires CGO because the go-kuzu driver wraps KuzuDB's C
// library.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	return openKuzu(":memory:")
}

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at the
// given path, so the archive survives across sessions. KuzuDB creates the
// leaf directory itself.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	return openKuzu(dbPath)
}

func openKuzu(path string) (*KuzuStore, error) {
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(path, cfg)
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

// ddlStatements defines the Cypher DDL executed by InitSchema.
// Order matters: node tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS Run(
		run_id STRING,
		repo_url STRING,
		report_path STRING,
		overall DOUBLE,
		warnings STRING,
		generated_at INT64,
		PRIMARY KEY(run_id)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Verdict(
		id STRING,
		criterion STRING,
		criterion_name STRING,
		score INT64,
		dissent STRING,
		applied_rules STRING,
		opinions STRING,
		remediation STRING,
		PRIMARY KEY(id)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Evidence(
		id STRING,
		criterion STRING,
		source STRING,
		found BOOLEAN,
		confidence DOUBLE,
		location STRING,
		rationale STRING,
		PRIMARY KEY(id)
	)`,
	`CREATE REL TABLE IF NOT EXISTS DECIDED(FROM Run TO Verdict)`,
	`CREATE REL TABLE IF NOT EXISTS SUPPORTED_BY(FROM Run TO Evidence)`,
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

// SaveRun persists the report, its verdicts, and the supporting evidence.
func (s *KuzuStore) SaveRun(_ context.Context, rep *verdict.Report, evidence map[string][]workflow.Evidence) error {
	warnings, err := json.Marshal(rep.Warnings)
	if err != nil {
		return fmt.Errorf("kuzu: marshal warnings: %w", err)
	}
	if err := s.exec(
		`CREATE (r:Run {
			run_id: $id,
			repo_url: $repo,
			report_path: $report,
			overall: $overall,
			warnings: $warnings,
			generated_at: $at
		})`,
		map[string]any{
			"id":       rep.RunID,
			"repo":     rep.Target.RepoURL,
			"report":   rep.Target.ReportPath,
			"overall":  rep.OverallScore,
			"warnings": string(warnings),
			"at":       rep.GeneratedAt.UnixMilli(),
		},
	); err != nil {
		return err
	}

	for _, v := range rep.Verdicts {
		opinions, err := json.Marshal(v.Opinions)
		if err != nil {
			return fmt.Errorf("kuzu: marshal opinions: %w", err)
		}
		rules, err := json.Marshal(v.AppliedRules)
		if err != nil {
			return fmt.Errorf("kuzu: marshal rules: %w", err)
		}
		if err := s.exec(
			`CREATE (v:Verdict {
				id: $id,
				criterion: $criterion,
				criterion_name: $name,
				score: $score,
				dissent: $dissent,
				applied_rules: $rules,
				opinions: $opinions,
				remediation: $remediation
			})`,
			map[string]any{
				"id":          rep.RunID + "/" + v.Criterion,
				"criterion":   v.Criterion,
				"name":        v.CriterionName,
				"score":       int64(v.FinalScore),
				"dissent":     v.Dissent,
				"rules":       string(rules),
				"opinions":    string(opinions),
				"remediation": v.Remediation,
			},
		); err != nil {
			return err
		}
		if err := s.exec(
			`MATCH (r:Run {run_id: $run}), (v:Verdict {id: $id})
			 CREATE (r)-[:DECIDED]->(v)`,
			map[string]any{"run": rep.RunID, "id": rep.RunID + "/" + v.Criterion},
		); err != nil {
			return err
		}
	}

	for criterion, records := range evidence {
		for i, ev := range records {
			id := fmt.Sprintf("%s/%s#%d", rep.RunID, ev.ID(), i)
			if err := s.exec(
				`CREATE (e:Evidence {
					id: $id,
					criterion: $criterion,
					source: $source,
					found: $found,
					confidence: $confidence,
					location: $location,
					rationale: $rationale
				})`,
				map[string]any{
					"id":         id,
					"criterion":  criterion,
					"source":     ev.Source,
					"found":      ev.Found,
					"confidence": ev.Confidence,
					"location":   ev.Location,
					"rationale":  ev.Rationale,
				},
			); err != nil {
				return err
			}
			if err := s.exec(
				`MATCH (r:Run {run_id: $run}), (e:Evidence {id: $id})
				 CREATE (r)-[:SUPPORTED_BY]->(e)`,
				map[string]any{"run": rep.RunID, "id": id},
			); err != nil {
				return err
			}
		}
	}
	return nil
}

// GetRun reconstructs the full report for a run, or returns nil if unknown.
func (s *KuzuStore) GetRun(_ context.Context, runID string) (*verdict.Report, error) {
	rows, err := s.query(
		`MATCH (r:Run {run_id: $id})
		 RETURN r.repo_url, r.report_path, r.overall, r.warnings, r.generated_at`,
		map[string]any{"id": runID},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	r := rows[0]
	rep := &verdict.Report{
		RunID: runID,
		Target: workflow.Target{
			RepoURL:    toString(r[0]),
			ReportPath: toString(r[1]),
		},
		OverallScore: toFloat64(r[2]),
		GeneratedAt:  time.UnixMilli(toInt64(r[4])).UTC(),
	}
	if w := toString(r[3]); w != "" && w != "null" {
		if err := json.Unmarshal([]byte(w), &rep.Warnings); err != nil {
			return nil, fmt.Errorf("kuzu: unmarshal warnings: %w", err)
		}
	}

	vrows, err := s.query(
		`MATCH (:Run {run_id: $id})-[:DECIDED]->(v:Verdict)
		 RETURN v.criterion, v.criterion_name, v.score, v.dissent,
		        v.applied_rules, v.opinions, v.remediation
		 ORDER BY v.id`,
		map[string]any{"id": runID},
	)
	if err != nil {
		return nil, err
	}
	for _, row := range vrows {
		v := verdict.Verdict{
			Criterion:     toString(row[0]),
			CriterionName: toString(row[1]),
			FinalScore:    int(toInt64(row[2])),
			Dissent:       toString(row[3]),
			Remediation:   toString(row[6]),
		}
		if err := json.Unmarshal([]byte(toString(row[4])), &v.AppliedRules); err != nil {
			return nil, fmt.Errorf("kuzu: unmarshal rules: %w", err)
		}
		if err := json.Unmarshal([]byte(toString(row[5])), &v.Opinions); err != nil {
			return nil, fmt.Errorf("kuzu: unmarshal opinions: %w", err)
		}
		rep.Verdicts = append(rep.Verdicts, v)
	}
	return rep, nil
}

// ListRuns returns run summaries, most recent first.
func (s *KuzuStore) ListRuns(_ context.Context) ([]RunSummary, error) {
	rows, err := s.query(
		`MATCH (r:Run)
		 OPTIONAL MATCH (r)-[:DECIDED]->(v:Verdict)
		 RETURN r.run_id, r.repo_url, r.overall, r.generated_at, count(v)
		 ORDER BY r.generated_at DESC`,
		nil,
	)
	if err != nil {
		return nil, err
	}
	out := make([]RunSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, RunSummary{
			RunID:        toString(r[0]),
			RepoURL:      toString(r[1]),
			OverallScore: toFloat64(r[2]),
			GeneratedAt:  time.UnixMilli(toInt64(r[3])).UTC(),
			Criteria:     int(toInt64(r[4])),
		})
	}
	return out, nil
}

// QueryEvidence returns archived evidence for a criterion across all runs.
func (s *KuzuStore) QueryEvidence(_ context.Context, criterion string, limit int) ([]workflow.Evidence, error) {
	if limit <= 0 {
		limit = 1000
	}
	rows, err := s.query(
		`MATCH (e:Evidence {criterion: $criterion})
		 RETURN e.criterion, e.source, e.found, e.confidence, e.location, e.rationale
		 ORDER BY e.id
		 LIMIT $lim`,
		map[string]any{"criterion": criterion, "lim": int64(limit)},
	)
	if err != nil {
		return nil, err
	}
	out := make([]workflow.Evidence, 0, len(rows))
	for _, r := range rows {
		out = append(out, workflow.Evidence{
			Criterion:  toString(r[0]),
			Source:     toString(r[1]),
			Found:      toBool(r[2]),
			Confidence: toFloat64(r[3]),
			Location:   toString(r[4]),
			Rationale:  toString(r[5]),
		})
	}
	return out, nil
}

// ScoreHistory returns a criterion's final score per run, oldest first.
func (s *KuzuStore) ScoreHistory(_ context.Context, criterion string) ([]ScorePoint, error) {
	rows, err := s.query(
		`MATCH (r:Run)-[:DECIDED]->(v:Verdict {criterion: $criterion})
		 RETURN r.run_id, v.score, r.generated_at
		 ORDER BY r.generated_at ASC`,
		map[string]any{"criterion": criterion},
	)
	if err != nil {
		return nil, err
	}
	out := make([]ScorePoint, 0, len(rows))
	for _, r := range rows {
		out = append(out, ScorePoint{
			RunID:       toString(r[0]),
			Score:       int(toInt64(r[1])),
			GeneratedAt: time.UnixMilli(toInt64(r[2])).UTC(),
		})
	}
	return out, nil
}

// ---------- Internal helpers ----------

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

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, float64, bool, string).

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func toFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

func toBool(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return false
}
