package verify

import (
	"context"

	"go.uber.org/zap"

	"github.com/adaverc/adaforms-demo-api/model"
)

// Outcome is the full result of one verification.
type Outcome struct {
	Resolution Resolution
	Result     model.Result
}

// Verifier runs submissions through the dispatcher and asks an authority
// about the resulting digest. It is safe for concurrent use.
type Verifier struct {
	authority Authority
	opts      Options
	log       *zap.Logger
}

// NewVerifier returns a Verifier. A nil logger disables logging.
func NewVerifier(a Authority, opts Options, log *zap.Logger) *Verifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Verifier{authority: a, opts: opts, log: log}
}

// Verify resolves req and consults the authority. Validation errors are
// returned before any lookup happens. Authority failures come back as
// KindLookup errors; the Resolution is still filled in so callers can show
// the digest that was checked.
func (v *Verifier) Verify(ctx context.Context, req Request) (Outcome, error) {
	res, err := ResolveWithOptions(req, v.opts)
	if err != nil {
		if IsKind(err, KindEncoding) {
			v.log.Error("canonical encoding failed", zap.String("mode", string(req.Mode)), zap.Error(err))
		}
		return Outcome{}, err
	}
	if res.Mode == ModeContent && !res.Structured {
		v.log.Debug("content is not JSON; hashed as plain text", zap.String("digest", res.Digest.String()))
	}

	out := Outcome{Resolution: res}
	if v.authority == nil {
		return out, newError(KindLookup, RuleNoAuthority, "no verification authority configured")
	}
	result, err := v.authority.Verify(ctx, res.Digest)
	if err != nil {
		v.log.Warn("verification lookup failed", zap.String("digest", res.Digest.String()), zap.Error(err))
		if IsKind(err, KindLookup) {
			return out, err
		}
		return out, LookupError(err.Error(), err)
	}
	out.Result = result
	v.log.Info("verification complete",
		zap.String("mode", string(res.Mode)),
		zap.String("digest", res.Digest.String()),
		zap.Bool("verified", result.Verified),
	)
	return out, nil
}
