package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/adaverc/adaforms-demo-api/ledger"
	"github.com/adaverc/adaforms-demo-api/ledger/testkit"
	"github.com/adaverc/adaforms-demo-api/model"
)

// ADAVERC_TEST_POSTGRES_URL points at a disposable database; each subtest
// gets its own schema.
func testURL(t *testing.T) string {
	url := os.Getenv("ADAVERC_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("ADAVERC_TEST_POSTGRES_URL not set")
	}
	return url
}

func TestPostgres_Conformance(t *testing.T) {
	url := testURL(t)
	n := 0
	testkit.RunLedgerConformance(t, func(t *testing.T, recs []model.Record) ledger.Ledger {
		t.Helper()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		n++
		schema := fmt.Sprintf("adaverc_test_%d_%d", os.Getpid(), n)
		admin, err := pgxpool.New(ctx, url)
		require.NoError(t, err)
		_, err = admin.Exec(ctx, `CREATE SCHEMA `+schema)
		require.NoError(t, err)
		admin.Close()
		t.Cleanup(func() {
			pool, err := pgxpool.New(context.Background(), url)
			if err == nil {
				_, _ = pool.Exec(context.Background(), `DROP SCHEMA `+schema+` CASCADE`)
				pool.Close()
			}
		})

		cfg, err := pgxpool.ParseConfig(url)
		require.NoError(t, err)
		cfg.ConnConfig.RuntimeParams["search_path"] = schema
		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		require.NoError(t, err)
		require.NoError(t, EnsureSchema(ctx, pool))
		require.NoError(t, Seed(ctx, pool, recs...))

		l := &Ledger{db: pool}
		t.Cleanup(func() { _ = l.Close() })
		return l
	})
}

func TestNew_RequiresURL(t *testing.T) {
	_, err := New(context.Background(), " ")
	require.Error(t, err)
}
