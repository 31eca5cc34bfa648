package export

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/partdb/internal/record"
	"github.com/roach88/partdb/internal/schema"
)

// DB is a SQLite database that receives snapshots of a part collection.
type DB struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path.
//
// The database is configured with:
//   - WAL mode so readers can query while a snapshot is written
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

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

// WriteCollection replaces the table named after the schema with recs, in
// one transaction. A seq column records collection order. Decimal fields
// are stored as TEXT so the exact file text survives.
func (d *DB) WriteCollection(ctx context.Context, s *schema.Schema, recs []record.Record) (int, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("write collection: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, createTableSQL(s)); err != nil {
		return 0, fmt.Errorf("write collection: create table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+quoteIdent(s.Name)); err != nil {
		return 0, fmt.Errorf("write collection: clear table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL(s))
	if err != nil {
		return 0, fmt.Errorf("write collection: prepare: %w", err)
	}
	defer stmt.Close()

	for seq, rec := range recs {
		args := make([]any, 0, rec.Len()+1)
		args = append(args, seq)
		for i := 0; i < rec.Len(); i++ {
			args = append(args, columnValue(rec, i))
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("write collection: insert key %d: %w", rec.Key(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("write collection: commit: %w", err)
	}

	return len(recs), nil
}

// ReadCollection returns the exported rows as text, ordered by seq.
// Returns an empty slice (not nil) for an empty table.
func (d *DB) ReadCollection(ctx context.Context, s *schema.Schema) ([][]string, error) {
	cols := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		cols[i] = "COALESCE(CAST(" + quoteIdent(f.Name) + " AS TEXT), '')"
	}

	rows, err := d.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY seq ASC",
		strings.Join(cols, ", "), quoteIdent(s.Name),
	))
	if err != nil {
		return nil, fmt.Errorf("read collection: %w", err)
	}
	defer rows.Close()

	out := [][]string{}
	for rows.Next() {
		vals := make([]string, len(s.Fields))
		ptrs := make([]any, len(vals))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, vals)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return out, nil
}

func createTableSQL(s *schema.Schema) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(quoteIdent(s.Name))
	b.WriteString(" (seq INTEGER NOT NULL")
	for _, f := range s.Fields {
		b.WriteString(", ")
		b.WriteString(quoteIdent(f.Name))
		if f.Kind == schema.Integer {
			b.WriteString(" INTEGER")
		} else {
			b.WriteString(" TEXT")
		}
	}
	b.WriteString(")")
	return b.String()
}

func insertSQL(s *schema.Schema) string {
	cols := make([]string, 0, len(s.Fields)+1)
	cols = append(cols, "seq")
	for _, f := range s.Fields {
		cols = append(cols, quoteIdent(f.Name))
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quoteIdent(s.Name), strings.Join(cols, ", "), marks)
}

// columnValue keeps integers typed and everything else as the raw text.
// Empty integer fields become NULL.
func columnValue(rec record.Record, i int) any {
	if rec.Schema().Fields[i].Kind == schema.Integer {
		if n, ok := rec.Int(i); ok {
			return n
		}
		return nil
	}
	return rec.Field(i)
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
