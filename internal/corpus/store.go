// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus persists document metadata and serves ranked candidate
// queries over a SQLite FTS5 index. The engine treats the store as a
// read-only collaborator; writes happen only through ingestion.
package corpus

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/answer-engine/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "corpus.db"
)

// Store manages the corpus SQLite database.
type Store struct {
	db         *sql.DB
	corpusDir  string
	maxResults int
}

// NewStore opens or creates the corpus database at
// corpusDir/index/corpus.db, creating the schema if needed.
func NewStore(cfg types.CorpusConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.CorpusDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		corpusDir:  cfg.CorpusDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			abstract TEXT,
			authors TEXT,
			venue TEXT,
			citations INTEGER DEFAULT 0,
			date TEXT,
			embedding TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_citations ON documents(citations)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table over title and abstract with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='documents_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE documents_fts USING fts5(title, abstract, content=documents, content_rowid=rowid)`,
			`CREATE TRIGGER documents_ai AFTER INSERT ON documents BEGIN
				INSERT INTO documents_fts(rowid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
			END`,
			`CREATE TRIGGER documents_ad AFTER DELETE ON documents BEGIN
				INSERT INTO documents_fts(documents_fts, rowid, title, abstract) VALUES('delete', old.rowid, old.title, old.abstract);
			END`,
			`CREATE TRIGGER documents_au AFTER UPDATE ON documents BEGIN
				INSERT INTO documents_fts(documents_fts, rowid, title, abstract) VALUES('delete', old.rowid, old.title, old.abstract);
				INSERT INTO documents_fts(rowid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Put inserts or replaces one document record.
func (s *Store) Put(ctx context.Context, doc types.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("document has no id")
	}

	authorsJSON, _ := json.Marshal(doc.Authors)

	var embeddingJSON any
	if doc.Embedding != nil {
		data, err := json.Marshal(doc.Embedding)
		if err != nil {
			return fmt.Errorf("marshaling embedding for %s: %w", doc.ID, err)
		}
		embeddingJSON = string(data)
	}

	dateStr := ""
	if !doc.Date.IsZero() {
		dateStr = doc.Date.Format(time.RFC3339)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, title, abstract, authors, venue, citations, date, embedding)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, abstract=excluded.abstract, authors=excluded.authors,
			venue=excluded.venue, citations=excluded.citations, date=excluded.date,
			embedding=excluded.embedding`,
		doc.ID, doc.Title, doc.Abstract, string(authorsJSON),
		doc.Venue, doc.Citations, dateStr, embeddingJSON,
	)
	if err != nil {
		return fmt.Errorf("upserting document %s: %w", doc.ID, err)
	}
	return nil
}

// Query returns documents matching any of the key terms, optionally
// AND-filtered by topic, ordered by full-text rank with citation count
// as tiebreak. Zero matches is a valid empty result, not an error.
func (s *Store) Query(ctx context.Context, terms []string, topic string, limit int) ([]types.Document, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)

	match := ftsQuery(terms)
	if match != "" {
		qb.WriteString(
			`SELECT d.id, d.title, d.abstract, d.authors, d.venue, d.citations, d.date, d.embedding
			FROM documents_fts
			JOIN documents d ON d.rowid = documents_fts.rowid
			WHERE documents_fts MATCH ?`)
		args = append(args, match)
	} else {
		qb.WriteString(
			`SELECT d.id, d.title, d.abstract, d.authors, d.venue, d.citations, d.date, d.embedding
			FROM documents d
			WHERE 1=1`)
	}

	if topic != "" {
		qb.WriteString(` AND (d.title LIKE ? OR d.abstract LIKE ? OR d.venue LIKE ?)`)
		pattern := "%" + topic + "%"
		args = append(args, pattern, pattern, pattern)
	}

	if match != "" {
		qb.WriteString(` ORDER BY documents_fts.rank, d.citations DESC, d.id`)
	} else {
		// No search terms: citation count stands in for relevance.
		qb.WriteString(` ORDER BY d.citations DESC, d.id`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying corpus: %w", err)
	}
	defer rows.Close()

	var docs []types.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// Get returns a single document by ID, or sql.ErrNoRows if absent.
func (s *Store) Get(ctx context.Context, id string) (types.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT d.id, d.title, d.abstract, d.authors, d.venue, d.citations, d.date, d.embedding
		 FROM documents d WHERE d.id = ?`, id)
	if err != nil {
		return types.Document{}, fmt.Errorf("querying document %s: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return types.Document{}, err
		}
		return types.Document{}, sql.ErrNoRows
	}
	return scanDocument(rows)
}

// Count returns the number of documents in the corpus.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return n, nil
}

func scanDocument(rows *sql.Rows) (types.Document, error) {
	var (
		doc           types.Document
		abstract      sql.NullString
		authorsJSON   sql.NullString
		venue         sql.NullString
		dateStr       sql.NullString
		embeddingJSON sql.NullString
	)

	if err := rows.Scan(
		&doc.ID, &doc.Title, &abstract, &authorsJSON,
		&venue, &doc.Citations, &dateStr, &embeddingJSON,
	); err != nil {
		return types.Document{}, fmt.Errorf("scanning row: %w", err)
	}

	if abstract.Valid {
		doc.Abstract = abstract.String
	}
	if authorsJSON.Valid {
		json.Unmarshal([]byte(authorsJSON.String), &doc.Authors)
	}
	if venue.Valid {
		doc.Venue = venue.String
	}
	if dateStr.Valid && dateStr.String != "" {
		if t, err := time.Parse(time.RFC3339, dateStr.String); err == nil {
			doc.Date = t
		}
	}
	if embeddingJSON.Valid && embeddingJSON.String != "" {
		json.Unmarshal([]byte(embeddingJSON.String), &doc.Embedding)
	}

	return doc, nil
}

// ftsQuery builds an OR-combined FTS5 match expression from key terms.
// Terms are double-quoted so FTS operators inside them stay literal.
func ftsQuery(terms []string) string {
	var quoted []string
	for _, term := range terms {
		term = strings.TrimSpace(strings.ReplaceAll(term, `"`, ""))
		if term == "" {
			continue
		}
		quoted = append(quoted, `"`+term+`"`)
	}
	return strings.Join(quoted, " OR ")
}

// IngestSummary holds counts from a corpus ingestion run.
type IngestSummary struct {
	Ingested int
	Failed   int
}

// Total returns the number of files processed.
func (s IngestSummary) Total() int {
	return s.Ingested + s.Failed
}

// HasFailures reports whether any files failed.
func (s IngestSummary) HasFailures() bool {
	return s.Failed > 0
}

// Ingest reads document metadata YAML files (*.yaml) from dir and
// upserts them into the corpus. Progress lines go to w; a bad file is
// counted and skipped rather than aborting the run.
func (s *Store) Ingest(ctx context.Context, dir string, w io.Writer) (IngestSummary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading document directory %s: %w", dir, err)
	}

	var summary IngestSummary

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		path := filepath.Join(dir, entry.Name())

		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", entry.Name(), err)
			summary.Failed++
			continue
		}

		var doc types.Document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			fmt.Fprintf(w, "failed  %s: parse error: %v\n", entry.Name(), err)
			summary.Failed++
			continue
		}
		if doc.ID == "" {
			doc.ID = strings.TrimSuffix(entry.Name(), ".yaml")
		}

		if err := s.Put(ctx, doc); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", entry.Name(), err)
			summary.Failed++
			continue
		}

		fmt.Fprintf(w, "ingested %s\n", doc.ID)
		summary.Ingested++
	}

	fmt.Fprintf(w, "\ningested: %d, failed: %d\n", summary.Ingested, summary.Failed)
	return summary, nil
}
