// Package memory is an in-process Ledger for fixtures and tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/adaverc/adaforms-demo-api/digest"
	"github.com/adaverc/adaforms-demo-api/ledger"
	"github.com/adaverc/adaforms-demo-api/model"
)

// Ledger holds records in a map keyed by digest.
type Ledger struct {
	mu      sync.RWMutex
	records map[digest.Digest]model.Record
}

var _ ledger.Ledger = (*Ledger)(nil)

// New returns a ledger preloaded with recs.
func New(recs ...model.Record) (*Ledger, error) {
	l := &Ledger{records: make(map[digest.Digest]model.Record, len(recs))}
	for _, r := range recs {
		if err := l.Add(r); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Add seeds a record. Adding the same record twice is a no-op; adding a
// different record under an existing digest fails.
func (l *Ledger) Add(rec model.Record) error {
	d, err := digest.Parse(rec.Digest)
	if err != nil {
		return ledger.ErrInvalidDigest
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, ok := l.records[d]; ok {
		if existing != rec {
			return ledger.ErrDigestMismatch
		}
		return nil
	}
	l.records[d] = rec
	return nil
}

func (l *Ledger) Lookup(ctx context.Context, d digest.Digest) (model.Record, error) {
	if err := ctx.Err(); err != nil {
		return model.Record{}, err
	}
	l.mu.RLock()
	rec, ok := l.records[d]
	l.mu.RUnlock()
	if !ok {
		return model.Record{}, ledger.ErrNotFound
	}
	return rec, nil
}

// Len returns the number of records held.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// LoadFile reads a JSON array of records into a new ledger.
func LoadFile(path string) (*Ledger, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var recs []model.Record
	if err := json.Unmarshal(b, &recs); err != nil {
		return nil, fmt.Errorf("memory: %s: %w", path, err)
	}
	return New(recs...)
}
