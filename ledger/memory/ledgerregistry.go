package memory

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/adaverc/adaforms-demo-api/ledger"
	"github.com/adaverc/adaforms-demo-api/ledger/ledgerregistry"
)

var (
	flagRecords string
)

func init() {
	ledgerregistry.MustRegister(ledgerregistry.Backend{
		Name:        "memory",
		Description: "In-memory ledger loaded from a JSON records file",
		Usage:       ledgerregistry.UsageCLI | ledgerregistry.UsageDaemon,
		RegisterFlags: func(fs *pflag.FlagSet) {
			fs.StringVar(&flagRecords, "memory-records", "", "JSON array of ledger records (for --backend=memory)")
		},
		Open: func() (ledger.Ledger, func() error, error) {
			return open(flagRecords)
		},
		OpenConfig: func(cfg map[string]string) (ledger.Ledger, func() error, error) {
			return open(cfg["memory-records"])
		},
	})
}

func open(path string) (ledger.Ledger, func() error, error) {
	if path == "" {
		return nil, nil, fmt.Errorf("missing --memory-records")
	}
	l, err := LoadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return l, nil, nil
}
