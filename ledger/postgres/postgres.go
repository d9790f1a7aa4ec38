// Package postgres reads registered records from a PostgreSQL table.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adaverc/adaforms-demo-api/digest"
	"github.com/adaverc/adaforms-demo-api/ledger"
	"github.com/adaverc/adaforms-demo-api/model"
)

const lookupQuery = `SELECT digest, form_id, response_id, timestamp, stored_at FROM ledger_records WHERE digest = $1`

type Ledger struct{ db *pgxpool.Pool }

var _ ledger.Ledger = (*Ledger)(nil)

// New connects to url. The pool is only used for SELECTs.
func New(ctx context.Context, url string) (*Ledger, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("postgres: connection url is required")
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Ledger{db: pool}, nil
}

func (l *Ledger) Close() error {
	if l != nil && l.db != nil {
		l.db.Close()
	}
	return nil
}

func (l *Ledger) Lookup(ctx context.Context, d digest.Digest) (model.Record, error) {
	var rec model.Record
	err := l.db.QueryRow(ctx, lookupQuery, d.String()).Scan(
		&rec.Digest,
		&rec.Metadata.FormID,
		&rec.Metadata.ResponseID,
		&rec.Metadata.Timestamp,
		&rec.StoredAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Record{}, ledger.ErrNotFound
	}
	if err != nil {
		return model.Record{}, fmt.Errorf("postgres: lookup %s: %w", d, err)
	}
	if err := ledger.CheckRecord(d, rec); err != nil {
		return model.Record{}, err
	}
	return rec, nil
}

// EnsureSchema creates the ledger_records table. Tests and demos only; the
// registrar owns the production schema.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, `CREATE TABLE IF NOT EXISTS ledger_records (
		digest      TEXT PRIMARY KEY,
		form_id     TEXT NOT NULL,
		response_id TEXT NOT NULL,
		timestamp   TEXT NOT NULL,
		stored_at   TEXT NOT NULL DEFAULT ''
	)`)
	return err
}

// Seed inserts fixture records inside one transaction.
func Seed(ctx context.Context, db *pgxpool.Pool, recs ...model.Record) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	for _, r := range recs {
		if _, err := digest.Parse(r.Digest); err != nil {
			return ledger.ErrInvalidDigest
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO ledger_records (digest, form_id, response_id, timestamp, stored_at) VALUES ($1, $2, $3, $4, $5)`,
			r.Digest, r.Metadata.FormID, r.Metadata.ResponseID, r.Metadata.Timestamp, r.StoredAt)
		if err != nil {
			return fmt.Errorf("insert %s: %w", r.Digest, err)
		}
	}
	return tx.Commit(ctx)
}
