package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/adaverc/adaforms-demo-api/ledger"
	"github.com/adaverc/adaforms-demo-api/ledger/ledgerregistry"
)

var (
	flagURL         string
	flagDialTimeout time.Duration
)

func init() {
	ledgerregistry.MustRegister(ledgerregistry.Backend{
		Name:        "postgres",
		Description: "PostgreSQL ledger table (read-only queries)",
		Usage:       ledgerregistry.UsageCLI | ledgerregistry.UsageDaemon,
		RegisterFlags: func(fs *pflag.FlagSet) {
			fs.StringVar(&flagURL, "postgres-url", "", "PostgreSQL connection URL (for --backend=postgres)")
			fs.DurationVar(&flagDialTimeout, "postgres-dial-timeout", 5*time.Second, "Connect timeout (for --backend=postgres)")
		},
		Open: func() (ledger.Ledger, func() error, error) {
			return open(flagURL, flagDialTimeout)
		},
		OpenConfig: func(cfg map[string]string) (ledger.Ledger, func() error, error) {
			timeout := 5 * time.Second
			if s := cfg["postgres-dial-timeout"]; s != "" {
				d, err := time.ParseDuration(s)
				if err != nil {
					return nil, nil, fmt.Errorf("invalid postgres-dial-timeout: %w", err)
				}
				timeout = d
			}
			return open(cfg["postgres-url"], timeout)
		},
	})
}

func open(url string, timeout time.Duration) (ledger.Ledger, func() error, error) {
	if url == "" {
		return nil, nil, fmt.Errorf("missing --postgres-url")
	}
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	l, err := New(ctx, url)
	if err != nil {
		return nil, nil, err
	}
	return l, l.Close, nil
}
