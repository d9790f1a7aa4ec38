package localfs

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/adaverc/adaforms-demo-api/ledger"
	"github.com/adaverc/adaforms-demo-api/ledger/ledgerregistry"
)

var (
	flagLocalDir string
)

func init() {
	ledgerregistry.MustRegister(ledgerregistry.Backend{
		Name:        "localfs",
		Description: "Local filesystem ledger (directory of JSON records)",
		Usage:       ledgerregistry.UsageCLI | ledgerregistry.UsageDaemon,
		RegisterFlags: func(fs *pflag.FlagSet) {
			fs.StringVar(&flagLocalDir, "localfs-dir", "", "LocalFS ledger directory (for --backend=localfs)")
		},
		Open: func() (ledger.Ledger, func() error, error) {
			return open(flagLocalDir)
		},
		OpenConfig: func(cfg map[string]string) (ledger.Ledger, func() error, error) {
			return open(cfg["localfs-dir"])
		},
	})
}

func open(dir string) (ledger.Ledger, func() error, error) {
	if dir == "" {
		return nil, nil, fmt.Errorf("missing --localfs-dir")
	}
	l, err := New(dir)
	if err != nil {
		return nil, nil, err
	}
	return l, nil, nil
}
