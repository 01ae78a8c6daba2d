// Package store persists scan and analysis results into a DuckDB index so
// later stages and the dashboard can query documents and concepts without
// re-running the pipeline.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/gabvrl/revisor/internal/analyzer"
	"github.com/gabvrl/revisor/internal/scanner"
)

// Index wraps the DuckDB file at .revisor/state/index.duckdb.
type Index struct {
	db *sql.DB
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
	path        TEXT PRIMARY KEY,
	filename    TEXT NOT NULL,
	extension   TEXT NOT NULL,
	category    TEXT NOT NULL,
	module      TEXT,
	word_count  INTEGER NOT NULL,
	scanned_at  TIMESTAMP NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS concepts (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	description      TEXT,
	category         TEXT,
	importance       TEXT NOT NULL,
	source_document  TEXT,
	module           TEXT,
	exam_relevant    BOOLEAN NOT NULL,
	prerequisites    TEXT,
	analyzed_at      TIMESTAMP NOT NULL
)`,
}

// Open opens (or creates) the index file. DuckDB works best with a single
// connection, so the pool is capped at one.
func Open(path string) (*Index, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: create schema: %w", err)
		}
	}
	return &Index{db: db}, nil
}

// Close releases the underlying connection.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// ReplaceDocuments rewrites the documents table with the latest scan results.
func (ix *Index) ReplaceDocuments(ctx context.Context, docs []scanner.Document) error {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents`); err != nil {
		return fmt.Errorf("store: clear documents: %w", err)
	}
	for _, d := range docs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO documents (path, filename, extension, category, module, word_count, scanned_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			d.Path, d.Filename, d.Extension, string(d.Category), d.Module, d.WordCount, d.ScannedAt)
		if err != nil {
			return fmt.Errorf("store: insert document %s: %w", d.Path, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit documents: %w", err)
	}
	return nil
}

// ReplaceConcepts rewrites the concepts table after an analysis run.
func (ix *Index) ReplaceConcepts(ctx context.Context, concepts []analyzer.Concept, analyzedAt time.Time) error {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM concepts`); err != nil {
		return fmt.Errorf("store: clear concepts: %w", err)
	}
	for _, c := range concepts {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO concepts (id, name, description, category, importance, source_document, module, exam_relevant, prerequisites, analyzed_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.Name, c.Description, c.Category, string(c.Priority),
			c.SourceDocument, c.SourceModule, c.ExamRelevant,
			strings.Join(c.Prerequisites, "\n"), analyzedAt)
		if err != nil {
			return fmt.Errorf("store: insert concept %s: %w", c.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit concepts: %w", err)
	}
	return nil
}

// DocumentSummary is one row of the documents view.
type DocumentSummary struct {
	Path      string
	Filename  string
	Category  scanner.Category
	Module    string
	WordCount int
	ScannedAt time.Time
}

// Documents lists indexed documents, courses first, then by path.
func (ix *Index) Documents(ctx context.Context) ([]DocumentSummary, error) {
	rows, err := ix.db.QueryContext(ctx,
		`SELECT path, filename, category, module, word_count, scanned_at
		 FROM documents ORDER BY category, path`)
	if err != nil {
		return nil, fmt.Errorf("store: query documents: %w", err)
	}
	defer rows.Close()

	var out []DocumentSummary
	for rows.Next() {
		var d DocumentSummary
		var category string
		var module sql.NullString
		if err := rows.Scan(&d.Path, &d.Filename, &category, &module, &d.WordCount, &d.ScannedAt); err != nil {
			return nil, fmt.Errorf("store: scan document row: %w", err)
		}
		d.Category = scanner.Category(category)
		d.Module = module.String
		out = append(out, d)
	}
	return out, rows.Err()
}

// Concepts lists indexed concepts ordered by priority tier then name.
func (ix *Index) Concepts(ctx context.Context) ([]analyzer.Concept, error) {
	rows, err := ix.db.QueryContext(ctx,
		`SELECT id, name, description, category, importance, source_document, module, exam_relevant, prerequisites
		 FROM concepts
		 ORDER BY CASE importance
			WHEN 'critical' THEN 0 WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END,
			name`)
	if err != nil {
		return nil, fmt.Errorf("store: query concepts: %w", err)
	}
	defer rows.Close()

	var out []analyzer.Concept
	for rows.Next() {
		var c analyzer.Concept
		var priority string
		var description, category, source, module, prereqs sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &description, &category, &priority, &source, &module, &c.ExamRelevant, &prereqs); err != nil {
			return nil, fmt.Errorf("store: scan concept row: %w", err)
		}
		c.Description = description.String
		c.Category = category.String
		c.Priority = analyzer.Priority(priority)
		c.SourceDocument = source.String
		c.SourceModule = module.String
		if prereqs.String != "" {
			c.Prerequisites = strings.Split(prereqs.String, "\n")
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Stats summarizes the index contents for the dashboard.
type Stats struct {
	Documents    int `json:"documents"`
	Courses      int `json:"courses"`
	Directives   int `json:"directives"`
	Concepts     int `json:"concepts"`
	ExamRelevant int `json:"exam_relevant"`
}

// Stats counts indexed rows.
func (ix *Index) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	row := ix.db.QueryRowContext(ctx, `
		SELECT
			(SELECT count(*) FROM documents),
			(SELECT count(*) FROM documents WHERE category = 'course'),
			(SELECT count(*) FROM documents WHERE category = 'directive'),
			(SELECT count(*) FROM concepts),
			(SELECT count(*) FROM concepts WHERE exam_relevant)`)
	if err := row.Scan(&s.Documents, &s.Courses, &s.Directives, &s.Concepts, &s.ExamRelevant); err != nil {
		return Stats{}, fmt.Errorf("store: stats: %w", err)
	}
	return s, nil
}
