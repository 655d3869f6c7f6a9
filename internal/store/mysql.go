package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
)

// MySQLStore persists documents in a single `documents` table with the
// path as primary key and the body as a JSON column.  Prefix scans ride
// on the primary key index.
type MySQLStore struct {
	db *sql.DB
}

// Open connects to MySQL, verifies the connection and ensures the
// documents table exists.
func Open(user, pass, host, port, name string) (*MySQLStore, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open: %v", ErrUnavailable, err)
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping: %v", ErrUnavailable, err)
	}

	s := &MySQLStore{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *MySQLStore) migrate(ctx context.Context) error {
	const schema = `CREATE TABLE IF NOT EXISTS documents (
		path       VARCHAR(512) NOT NULL,
		doc        JSON         NOT NULL,
		updated_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (path)
	) CHARACTER SET utf8mb4`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: migrate: %v", ErrUnavailable, err)
	}
	return nil
}

// Close closes the database connection.
func (s *MySQLStore) Close() error { return s.db.Close() }

// Get unmarshals the document at path into out.
func (s *MySQLStore) Get(ctx context.Context, path string, out any) error {
	const q = `SELECT doc FROM documents WHERE path = ?`
	var raw json.RawMessage
	err := s.db.QueryRowContext(ctx, q, path).Scan(&raw)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: get %s: %v", ErrUnavailable, path, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: get %s: decode: %v", ErrUnavailable, path, err)
	}
	return nil
}

// Set writes the document at path, replacing any existing body.
func (s *MySQLStore) Set(ctx context.Context, path string, value any) error {
	body, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: set %s: encode: %v", ErrUnavailable, path, err)
	}
	const q = `INSERT INTO documents (path, doc) VALUES (?, ?)
	           ON DUPLICATE KEY UPDATE doc = VALUES(doc)`
	if _, err := s.db.ExecContext(ctx, q, path, body); err != nil {
		return fmt.Errorf("%w: set %s: %v", ErrUnavailable, path, err)
	}
	return nil
}

// Update merges fields into the document at path inside a transaction so
// that concurrent mergers do not lose writes.  A missing document is
// created from the fields alone.
func (s *MySQLStore) Update(ctx context.Context, path string, fields map[string]any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: update %s: begin: %v", ErrUnavailable, path, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	merged := make(map[string]any)
	var raw json.RawMessage
	const sel = `SELECT doc FROM documents WHERE path = ? FOR UPDATE`
	err = tx.QueryRowContext(ctx, sel, path).Scan(&raw)
	switch {
	case err == sql.ErrNoRows:
		// fall through with an empty base document
	case err != nil:
		return fmt.Errorf("%w: update %s: read: %v", ErrUnavailable, path, err)
	default:
		if err := json.Unmarshal(raw, &merged); err != nil {
			return fmt.Errorf("%w: update %s: decode: %v", ErrUnavailable, path, err)
		}
	}
	for k, v := range fields {
		merged[k] = v
	}
	body, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("%w: update %s: encode: %v", ErrUnavailable, path, err)
	}
	const up = `INSERT INTO documents (path, doc) VALUES (?, ?)
	            ON DUPLICATE KEY UPDATE doc = VALUES(doc)`
	if _, err := tx.ExecContext(ctx, up, path, body); err != nil {
		return fmt.Errorf("%w: update %s: write: %v", ErrUnavailable, path, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: update %s: commit: %v", ErrUnavailable, path, err)
	}
	committed = true
	return nil
}

// Remove deletes the document at path.  Absent paths are ignored.
func (s *MySQLStore) Remove(ctx context.Context, path string) error {
	const q = `DELETE FROM documents WHERE path = ?`
	if _, err := s.db.ExecContext(ctx, q, path); err != nil {
		return fmt.Errorf("%w: remove %s: %v", ErrUnavailable, path, err)
	}
	return nil
}

// GenerateID returns a fresh random child key.  The parent path does not
// influence the key; it is part of the signature so callers read naturally
// ("generate an id under events").
func (s *MySQLStore) GenerateID(parent string) string {
	_ = parent
	return uuid.NewString()
}

// Scan returns all documents under prefix keyed by relative path.
func (s *MySQLStore) Scan(ctx context.Context, prefix string) (map[string]json.RawMessage, error) {
	const q = `SELECT path, doc FROM documents WHERE path LIKE ?`
	rows, err := s.db.QueryContext(ctx, q, prefix+"/%")
	if err != nil {
		return nil, fmt.Errorf("%w: scan %s: %v", ErrUnavailable, prefix, err)
	}
	defer rows.Close()
	out := make(map[string]json.RawMessage)
	for rows.Next() {
		var path string
		var raw json.RawMessage
		if err := rows.Scan(&path, &raw); err != nil {
			return nil, fmt.Errorf("%w: scan %s: %v", ErrUnavailable, prefix, err)
		}
		rel := strings.TrimPrefix(path, prefix+"/")
		out[rel] = raw
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scan %s: %v", ErrUnavailable, prefix, err)
	}
	return out, nil
}
