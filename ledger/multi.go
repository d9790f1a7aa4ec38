package ledger

import (
	"context"
	"errors"

	"github.com/adaverc/adaforms-demo-api/digest"
	"github.com/adaverc/adaforms-demo-api/model"
)

// Named associates a Ledger with a stable backend name.
type Named struct {
	Name   string
	Ledger Ledger
}

// MultiLedger provides deterministic, ordered fallback across several ledgers.
//
// Lookup order is the slice order in Backends; callers MUST supply a fixed
// order. A backend answering ErrNotFound passes the lookup to the next one;
// any other error stops the walk.
type MultiLedger struct {
	Backends []Named
}

var _ Ledger = MultiLedger{}

func (m MultiLedger) Lookup(ctx context.Context, d digest.Digest) (model.Record, error) {
	if len(m.Backends) == 0 {
		return model.Record{}, errors.New("ledger: MultiLedger has no backends")
	}
	for _, b := range m.Backends {
		if b.Ledger == nil {
			continue
		}
		rec, err := b.Ledger.Lookup(ctx, d)
		if err == nil {
			return rec, nil
		}
		if IsNotFound(err) {
			continue
		}
		return model.Record{}, err
	}
	return model.Record{}, ErrNotFound
}

// LookupFrom is Lookup that also reports which backend answered.
func (m MultiLedger) LookupFrom(ctx context.Context, d digest.Digest) (model.Record, string, error) {
	for _, b := range m.Backends {
		if b.Ledger == nil {
			continue
		}
		rec, err := b.Ledger.Lookup(ctx, d)
		if err == nil {
			return rec, b.Name, nil
		}
		if !IsNotFound(err) {
			return model.Record{}, b.Name, err
		}
	}
	return model.Record{}, "", ErrNotFound
}
