package verify

import (
	"context"
	"errors"

	"github.com/adaverc/adaforms-demo-api/digest"
	"github.com/adaverc/adaforms-demo-api/ledger"
	"github.com/adaverc/adaforms-demo-api/model"
)

// Authority answers whether a digest was registered, and with what metadata.
//
// A digest that is simply unknown is a Result with Verified=false, not an
// error. Errors mean the authority could not answer.
type Authority interface {
	Verify(ctx context.Context, d digest.Digest) (model.Result, error)
}

// AuthorityFunc adapts a function to Authority.
type AuthorityFunc func(ctx context.Context, d digest.Digest) (model.Result, error)

func (f AuthorityFunc) Verify(ctx context.Context, d digest.Digest) (model.Result, error) {
	return f(ctx, d)
}

const (
	MessageVerified    = "Digest verified: registered on the ledger"
	MessageNotVerified = "Digest not found on the ledger"
)

// LedgerAuthority answers from a ledger.Ledger.
type LedgerAuthority struct {
	Ledger ledger.Ledger
}

var _ Authority = LedgerAuthority{}

func (a LedgerAuthority) Verify(ctx context.Context, d digest.Digest) (model.Result, error) {
	if a.Ledger == nil {
		return model.Result{}, newError(KindLookup, RuleNoAuthority, "no ledger configured")
	}
	rec, err := a.Ledger.Lookup(ctx, d)
	if errors.Is(err, ledger.ErrNotFound) {
		return model.Result{Verified: false, Message: MessageNotVerified}, nil
	}
	if err != nil {
		return model.Result{}, err
	}
	return rec.Result(MessageVerified), nil
}
