package verify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/adaverc/adaforms-demo-api/digest"
	"github.com/adaverc/adaforms-demo-api/ledger"
	"github.com/adaverc/adaforms-demo-api/ledger/memory"
	"github.com/adaverc/adaforms-demo-api/model"
)

func registered(t *testing.T, canonical string) (model.Record, *memory.Ledger) {
	t.Helper()
	rec := model.Record{
		Digest: digest.Sum([]byte(canonical)).String(),
		Metadata: model.Metadata{
			FormID:     "1FAIpQLSf",
			ResponseID: "ACYDBNj",
			Timestamp:  "2024-03-01T10:20:30Z",
		},
		StoredAt: "2024-03-01T10:21:00Z",
	}
	l, err := memory.New(rec)
	require.NoError(t, err)
	return rec, l
}

func TestVerifier_ContentVerified(t *testing.T) {
	rec, l := registered(t, `{"answers":["a","b"],"formId":"1FAIpQLSf"}`)
	core, logs := observer.New(zapcore.DebugLevel)
	v := NewVerifier(LedgerAuthority{Ledger: l}, Options{}, zap.New(core))

	out, err := v.Verify(context.Background(), Request{
		Mode:  ModeContent,
		Input: `{"formId":"1FAIpQLSf","answers":["b","a"]}`,
	})
	require.NoError(t, err)
	assert.Equal(t, rec.Digest, out.Resolution.Digest.String())
	assert.True(t, out.Result.Verified)
	assert.Equal(t, MessageVerified, out.Result.Message)
	require.NotNil(t, out.Result.Metadata)
	assert.Equal(t, rec.Metadata, *out.Result.Metadata)
	assert.Equal(t, rec.StoredAt, out.Result.StoredAt)

	assert.Equal(t, 1, logs.FilterMessage("verification complete").Len())
}

func TestVerifier_NotVerified(t *testing.T) {
	_, l := registered(t, `{"a":1}`)
	v := NewVerifier(LedgerAuthority{Ledger: l}, Options{}, nil)

	out, err := v.Verify(context.Background(), Request{Mode: ModeContent, Input: `{"a":2}`})
	require.NoError(t, err)
	assert.False(t, out.Result.Verified)
	assert.Equal(t, MessageNotVerified, out.Result.Message)
	assert.Nil(t, out.Result.Metadata)
}

func TestVerifier_ZeroDigestIsNotVerified(t *testing.T) {
	_, l := registered(t, `{"a":1}`)
	v := NewVerifier(LedgerAuthority{Ledger: l}, Options{}, nil)

	out, err := v.Verify(context.Background(), Request{Mode: ModeDigest, Input: strings.Repeat("0", 64)})
	require.NoError(t, err)
	assert.False(t, out.Result.Verified)
	assert.Equal(t, MessageNotVerified, out.Result.Message)
}

func TestVerifier_ValidationNeverReachesAuthority(t *testing.T) {
	var calls atomic.Int32
	a := AuthorityFunc(func(context.Context, digest.Digest) (model.Result, error) {
		calls.Add(1)
		return model.Result{}, nil
	})
	v := NewVerifier(a, Options{}, nil)

	for _, req := range []Request{
		{Mode: ModeDigest, Input: ""},
		{Mode: ModeDigest, Input: "ABC"},
		{Mode: ModeContent, Input: "   "},
	} {
		_, err := v.Verify(context.Background(), req)
		assert.True(t, IsKind(err, KindValidation))
	}
	assert.Zero(t, calls.Load())
}

func TestVerifier_PlainTextFallbackIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	v := NewVerifier(AuthorityFunc(func(context.Context, digest.Digest) (model.Result, error) {
		return model.Result{Verified: false, Message: MessageNotVerified}, nil
	}), Options{}, zap.New(core))

	_, err := v.Verify(context.Background(), Request{Mode: ModeContent, Input: "hello world"})
	require.NoError(t, err)
	entries := logs.FilterMessageSnippet("plain text").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
}

func TestVerifier_LookupErrors(t *testing.T) {
	d := digest.Sum([]byte("x")).String()

	failing := NewVerifier(AuthorityFunc(func(context.Context, digest.Digest) (model.Result, error) {
		return model.Result{}, errors.New("connection refused")
	}), Options{}, nil)
	out, err := failing.Verify(context.Background(), Request{Mode: ModeDigest, Input: d})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindLookup))
	assert.Equal(t, "connection refused", err.Error())
	assert.Equal(t, d, out.Resolution.Digest.String())

	remote := NewVerifier(AuthorityFunc(func(context.Context, digest.Digest) (model.Result, error) {
		return model.Result{}, LookupError("ledger unavailable", nil)
	}), Options{}, nil)
	_, err = remote.Verify(context.Background(), Request{Mode: ModeDigest, Input: d})
	assert.Equal(t, "ledger unavailable", err.Error())

	broken := NewVerifier(LedgerAuthority{Ledger: ledgerFunc(func() error { return ledger.ErrDigestMismatch })}, Options{}, nil)
	_, err = broken.Verify(context.Background(), Request{Mode: ModeDigest, Input: d})
	assert.True(t, IsKind(err, KindLookup))
	assert.ErrorIs(t, err, ledger.ErrDigestMismatch)

	none := NewVerifier(nil, Options{}, nil)
	_, err = none.Verify(context.Background(), Request{Mode: ModeDigest, Input: d})
	assert.Equal(t, RuleNoAuthority, RuleID(err))

	_, err = LedgerAuthority{}.Verify(context.Background(), digest.Sum(nil))
	assert.Equal(t, RuleNoAuthority, RuleID(err))
}

type ledgerFunc func() error

func (f ledgerFunc) Lookup(context.Context, digest.Digest) (model.Record, error) {
	return model.Record{}, f()
}

func TestVerifyBatch_PreservesOrder(t *testing.T) {
	_, l := registered(t, `[1,2,3]`)
	v := NewVerifier(LedgerAuthority{Ledger: l}, Options{}, nil)

	var reqs []Request
	for i := 0; i < 20; i++ {
		switch i % 3 {
		case 0:
			reqs = append(reqs, Request{Mode: ModeContent, Input: "[3,2,1]"})
		case 1:
			reqs = append(reqs, Request{Mode: ModeContent, Input: fmt.Sprintf("[%d]", i)})
		default:
			reqs = append(reqs, Request{Mode: ModeDigest, Input: "bad"})
		}
	}

	items, err := v.VerifyBatch(context.Background(), reqs, 4)
	require.NoError(t, err)
	require.Len(t, items, len(reqs))
	for i, it := range items {
		assert.Equal(t, reqs[i], it.Request)
		switch i % 3 {
		case 0:
			require.NoError(t, it.Err)
			assert.True(t, it.Outcome.Result.Verified, "item %d", i)
		case 1:
			require.NoError(t, it.Err)
			assert.False(t, it.Outcome.Result.Verified, "item %d", i)
		default:
			assert.True(t, IsKind(it.Err, KindValidation), "item %d", i)
		}
	}
}

func TestVerifyBatch_Cancelled(t *testing.T) {
	v := NewVerifier(LedgerAuthority{Ledger: ledgerFunc(func() error { return ledger.ErrNotFound })}, Options{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	items, err := v.VerifyBatch(ctx, []Request{{Mode: ModeContent, Input: "x"}}, 0)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, items, 1)
	assert.ErrorIs(t, items[0].Err, context.Canceled)
}
