package sqlite

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/adaverc/adaforms-demo-api/ledger"
	"github.com/adaverc/adaforms-demo-api/ledger/ledgerregistry"
)

var (
	flagPath string
)

func init() {
	ledgerregistry.MustRegister(ledgerregistry.Backend{
		Name:        "sqlite",
		Description: "SQLite ledger database (read-only)",
		Usage:       ledgerregistry.UsageCLI | ledgerregistry.UsageDaemon,
		RegisterFlags: func(fs *pflag.FlagSet) {
			fs.StringVar(&flagPath, "sqlite-path", "", "SQLite ledger database file (for --backend=sqlite)")
		},
		Open: func() (ledger.Ledger, func() error, error) {
			return open(flagPath)
		},
		OpenConfig: func(cfg map[string]string) (ledger.Ledger, func() error, error) {
			return open(cfg["sqlite-path"])
		},
	})
}

func open(path string) (ledger.Ledger, func() error, error) {
	if path == "" {
		return nil, nil, fmt.Errorf("missing --sqlite-path")
	}
	l, err := Open(path)
	if err != nil {
		return nil, nil, err
	}
	return l, l.Close, nil
}
