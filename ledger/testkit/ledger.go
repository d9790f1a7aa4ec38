package testkit

import (
	"context"
	"strconv"
	"testing"

	"github.com/adaverc/adaforms-demo-api/digest"
	"github.com/adaverc/adaforms-demo-api/ledger"
	"github.com/adaverc/adaforms-demo-api/model"
)

// NewLedger constructs a fresh ledger seeded with exactly recs.
// The returned Ledger MUST be isolated from other tests.
type NewLedger func(t *testing.T, recs []model.Record) ledger.Ledger

// Record returns a deterministic record whose digest is that of the
// canonical text `{"n":<n>}`.
func Record(n int) model.Record {
	canonical := []byte(`{"n":` + strconv.Itoa(n) + `}`)
	return model.Record{
		Digest: digest.Sum(canonical).String(),
		Metadata: model.Metadata{
			FormID:     "form-" + strconv.Itoa(n),
			ResponseID: "response-" + strconv.Itoa(n),
			Timestamp:  "2024-03-01T10:20:30Z",
		},
		StoredAt: "2024-03-01T10:21:00Z",
	}
}

func RunLedgerConformance(t *testing.T, newLedger NewLedger) {
	t.Helper()
	ctx := context.Background()

	t.Run("LookupFound", func(t *testing.T) {
		want := Record(1)
		l := newLedger(t, []model.Record{want, Record(2)})

		d, err := digest.Parse(want.Digest)
		if err != nil {
			t.Fatalf("digest.Parse failed: %v", err)
		}
		got, err := l.Lookup(ctx, d)
		if err != nil {
			t.Fatalf("Lookup failed: %v", err)
		}
		if got != want {
			t.Fatalf("Lookup record mismatch:\n got %+v\nwant %+v", got, want)
		}
		if err := ledger.CheckRecord(d, got); err != nil {
			t.Fatalf("returned record not bound to requested digest: %v", err)
		}
	})

	t.Run("LookupNotFound", func(t *testing.T) {
		l := newLedger(t, []model.Record{Record(1)})
		missing := digest.Sum([]byte("missing"))
		_, err := l.Lookup(ctx, missing)
		if !ledger.IsNotFound(err) {
			t.Fatalf("Lookup missing: got err=%v want ErrNotFound", err)
		}
	})

	t.Run("LookupEmpty", func(t *testing.T) {
		l := newLedger(t, nil)
		_, err := l.Lookup(ctx, digest.Sum([]byte(`{"n":1}`)))
		if !ledger.IsNotFound(err) {
			t.Fatalf("Lookup on empty ledger: got err=%v want ErrNotFound", err)
		}
	})

	t.Run("ZeroDigestIsOrdinaryKey", func(t *testing.T) {
		var zero digest.Digest
		l := newLedger(t, []model.Record{Record(1)})
		if _, err := l.Lookup(ctx, zero); !ledger.IsNotFound(err) {
			t.Fatalf("Lookup zero digest: got err=%v want ErrNotFound", err)
		}

		want := Record(2)
		want.Digest = zero.String()
		l = newLedger(t, []model.Record{want})
		got, err := l.Lookup(ctx, zero)
		if err != nil {
			t.Fatalf("Lookup registered zero digest: %v", err)
		}
		if got != want {
			t.Fatalf("Lookup registered zero digest: got %+v want %+v", got, want)
		}
	})

	t.Run("Repeatable", func(t *testing.T) {
		want := Record(3)
		l := newLedger(t, []model.Record{want})
		d, _ := digest.Parse(want.Digest)
		for i := 0; i < 3; i++ {
			got, err := l.Lookup(ctx, d)
			if err != nil {
				t.Fatalf("Lookup(%d) failed: %v", i, err)
			}
			if got != want {
				t.Fatalf("Lookup(%d) not repeatable", i)
			}
		}
	})
}
