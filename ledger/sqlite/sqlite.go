// Package sqlite reads registered records from a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/adaverc/adaforms-demo-api/digest"
	"github.com/adaverc/adaforms-demo-api/ledger"
	"github.com/adaverc/adaforms-demo-api/model"
)

const schema = `CREATE TABLE IF NOT EXISTS ledger_records (
	digest      TEXT PRIMARY KEY,
	form_id     TEXT NOT NULL,
	response_id TEXT NOT NULL,
	timestamp   TEXT NOT NULL,
	stored_at   TEXT NOT NULL DEFAULT ''
)`

const lookupQuery = `SELECT digest, form_id, response_id, timestamp, stored_at FROM ledger_records WHERE digest = ?`

// Ledger is a read-only view over a ledger_records table.
type Ledger struct {
	db *sql.DB
}

var _ ledger.Ledger = (*Ledger)(nil)

// Open opens the database at path read-only.
func Open(path string) (*Ledger, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite: database path is required")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve ledger path: %w", err)
	}

	u := url.URL{Scheme: "file", Path: absPath}
	q := u.Query()
	q.Set("mode", "ro")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()

	db, err := sql.Open("sqlite", u.String())
	if err != nil {
		return nil, fmt.Errorf("open ledger sqlite (ro): %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping ledger sqlite: %w", err)
	}
	return &Ledger{db: db}, nil
}

func (l *Ledger) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

func (l *Ledger) Lookup(ctx context.Context, d digest.Digest) (model.Record, error) {
	var rec model.Record
	err := l.db.QueryRowContext(ctx, lookupQuery, d.String()).Scan(
		&rec.Digest,
		&rec.Metadata.FormID,
		&rec.Metadata.ResponseID,
		&rec.Metadata.Timestamp,
		&rec.StoredAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Record{}, ledger.ErrNotFound
	}
	if err != nil {
		return model.Record{}, fmt.Errorf("sqlite: lookup %s: %w", d, err)
	}
	if err := ledger.CheckRecord(d, rec); err != nil {
		return model.Record{}, err
	}
	return rec, nil
}

// CreateFixture creates (or extends) a database at path holding recs. It is
// meant for tests and demos; production databases are populated by the
// registrar.
func CreateFixture(ctx context.Context, path string, recs ...model.Record) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open ledger sqlite: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create ledger schema: %w", err)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, r := range recs {
		if _, err := digest.Parse(r.Digest); err != nil {
			return ledger.ErrInvalidDigest
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO ledger_records (digest, form_id, response_id, timestamp, stored_at) VALUES (?, ?, ?, ?, ?)`,
			r.Digest, r.Metadata.FormID, r.Metadata.ResponseID, r.Metadata.Timestamp, r.StoredAt)
		if err != nil {
			return fmt.Errorf("insert %s: %w", r.Digest, err)
		}
	}
	return tx.Commit()
}
