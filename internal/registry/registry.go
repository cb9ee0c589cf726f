// Package registry persists the little local state the client owns: the
// tab-scoped session token (client-generated, never server-issued) and the
// mapping from locally chosen files to backend-issued document ids.
package registry

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"edumentor/internal/model"
)

// sessionKey is the fixed key the session token is stored under.
const sessionKey = "session_id"

type Registry struct {
	path string

	mu sync.Mutex
	db *sql.DB
}

func Open(path string) *Registry {
	return &Registry{path: path}
}

func (r *Registry) Init(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", r.path)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return err
	}

	schema := `
CREATE TABLE IF NOT EXISTS kv (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS documents (
  doc_id TEXT PRIMARY KEY,
  session_id TEXT NOT NULL,
  name TEXT NOT NULL,
  kind TEXT NOT NULL DEFAULT 'other',
  page_count INTEGER NOT NULL DEFAULT 1,
  size_label TEXT NOT NULL DEFAULT '',
  has_visuals INTEGER NOT NULL DEFAULT 0,
  local_path TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_documents_session ON documents(session_id);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return err
	}

	r.db = db
	return nil
}

func (r *Registry) ensureDB(ctx context.Context) (*sql.DB, error) {
	r.mu.Lock()
	db := r.db
	r.mu.Unlock()
	if db != nil {
		return db, nil
	}
	if err := r.Init(ctx); err != nil {
		return nil, err
	}
	r.mu.Lock()
	db = r.db
	r.mu.Unlock()
	return db, nil
}

func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// SessionID returns the persisted session token, creating and storing a new
// one on first use. The token is opaque to the backend and reused for every
// call until the journal is discarded.
func (r *Registry) SessionID(ctx context.Context) (string, error) {
	db, err := r.ensureDB(ctx)
	if err != nil {
		return "", err
	}

	var sid string
	err = db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, sessionKey).Scan(&sid)
	if err == nil && sid != "" {
		return sid, nil
	}
	if err != nil && err != sql.ErrNoRows {
		return "", err
	}

	sid = uuid.NewString()
	if _, err := db.ExecContext(ctx,
		`INSERT INTO kv(key, value) VALUES(?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		sessionKey, sid); err != nil {
		return "", err
	}
	return sid, nil
}

// RecordDocument upserts one uploaded document for the session.
func (r *Registry) RecordDocument(ctx context.Context, sessionID string, doc model.Document) error {
	db, err := r.ensureDB(ctx)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO documents(doc_id, session_id, name, kind, page_count, size_label, has_visuals, local_path)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(doc_id) DO UPDATE SET
		   session_id=excluded.session_id,
		   name=excluded.name,
		   kind=excluded.kind,
		   page_count=excluded.page_count,
		   size_label=excluded.size_label,
		   has_visuals=excluded.has_visuals,
		   local_path=excluded.local_path`,
		doc.ID, sessionID, doc.Name, string(doc.Kind), doc.PageCount,
		doc.SizeLabel, boolToInt(doc.HasVisualContent), doc.LocalPath)
	return err
}

// Documents returns the recorded documents for the session in insertion
// order (rowid order).
func (r *Registry) Documents(ctx context.Context, sessionID string) ([]model.Document, error) {
	db, err := r.ensureDB(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx,
		`SELECT doc_id, name, kind, page_count, size_label, has_visuals, local_path
		 FROM documents WHERE session_id = ? ORDER BY rowid`, sessionID)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var docs []model.Document
	for rows.Next() {
		var doc model.Document
		var kind string
		var hasVisuals int
		if err := rows.Scan(&doc.ID, &doc.Name, &kind, &doc.PageCount, &doc.SizeLabel, &hasVisuals, &doc.LocalPath); err != nil {
			return nil, err
		}
		doc.Kind = model.DocumentKind(kind)
		doc.HasVisualContent = hasVisuals != 0
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// DeleteDocument removes one recorded document.
func (r *Registry) DeleteDocument(ctx context.Context, docID string) error {
	db, err := r.ensureDB(ctx)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `DELETE FROM documents WHERE doc_id = ?`, docID)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
