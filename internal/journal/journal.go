// Package journal provides SQLite-backed storage for report routing
// decisions.
//
// The conformance harness records one Decision per panic step: whether
// the report was emitted (forwarded to the original handler) or
// suppressed. The journal stores only the decision and the panic value —
// never the report text, which is discarded at the interceptor.
//
// Ordering uses a logical seq within a run, never timestamps, so reads
// are deterministic across replays.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial schema (decisions + schema_version)
const currentSchemaVersion = 1

// Outcome values for a journaled decision.
const (
	OutcomeEmitted    = "emitted"
	OutcomeSuppressed = "suppressed"
)

// Decision is one journaled report routing decision.
type Decision struct {
	// RunID groups decisions from one harness run.
	RunID string `json:"run_id"`

	// Seq is the logical position of the decision within its run.
	Seq int64 `json:"seq"`

	// Goroutine is the ID of the goroutine the report belonged to.
	Goroutine uint64 `json:"goroutine"`

	// Outcome is OutcomeEmitted or OutcomeSuppressed.
	Outcome string `json:"outcome"`

	// Value is the panic value rendered as text.
	Value string `json:"value"`
}

// Journal provides durable storage for routing decisions.
// Uses SQLite with WAL mode for concurrent read access.
type Journal struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and the schema automatically. Use ":memory:"
// for a throwaway in-process journal.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//
// This function is idempotent - safe to call multiple times on the same
// path.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// NewRunID returns a fresh time-sortable run identifier (UUIDv7).
func NewRunID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and records the schema
// version. Idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	var version int
	err := db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	switch {
	case err == sql.ErrNoRows:
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion); err != nil {
			return fmt.Errorf("failed to record schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to read schema version: %w", err)
	case version > currentSchemaVersion:
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	return nil
}

// WriteDecision appends a decision to the journal.
// Uses ON CONFLICT DO NOTHING for idempotency - re-writing the same
// (run_id, seq) is silently ignored.
func (j *Journal) WriteDecision(ctx context.Context, d Decision) error {
	if d.Outcome != OutcomeEmitted && d.Outcome != OutcomeSuppressed {
		return fmt.Errorf("write decision: invalid outcome %q", d.Outcome)
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO decisions (run_id, seq, goroutine, outcome, value)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_id, seq) DO NOTHING
	`,
		d.RunID,
		d.Seq,
		int64(d.Goroutine),
		d.Outcome,
		d.Value,
	)
	if err != nil {
		return fmt.Errorf("write decision: %w", err)
	}

	return nil
}

// ReadDecisions returns all decisions for a run, ordered by seq.
func (j *Journal) ReadDecisions(ctx context.Context, runID string) ([]Decision, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id, seq, goroutine, outcome, value
		FROM decisions
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read decisions: %w", err)
	}
	defer rows.Close()

	var decisions []Decision
	for rows.Next() {
		var d Decision
		var goroutine int64
		if err := rows.Scan(&d.RunID, &d.Seq, &goroutine, &d.Outcome, &d.Value); err != nil {
			return nil, fmt.Errorf("read decisions: %w", err)
		}
		d.Goroutine = uint64(goroutine)
		decisions = append(decisions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read decisions: %w", err)
	}

	return decisions, nil
}

// CountDecisions returns the number of decisions for a run with the
// given outcome.
func (j *Journal) CountDecisions(ctx context.Context, runID, outcome string) (int, error) {
	var count int
	err := j.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM decisions
		WHERE run_id = ? AND outcome = ?
	`, runID, outcome).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count decisions: %w", err)
	}
	return count, nil
}

// Runs returns the distinct run IDs present in the journal, ordered
// lexically (UUIDv7 run IDs sort by creation time).
func (j *Journal) Runs(ctx context.Context) ([]string, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT DISTINCT run_id FROM decisions ORDER BY run_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	return runs, nil
}
