package grpcledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/adaverc/adaforms-demo-api/ledger"
	"github.com/adaverc/adaforms-demo-api/ledger/ledgerregistry"
)

var (
	flagTarget      string
	flagDialTimeout time.Duration
	flagTimeout     time.Duration
	flagMaxMsgBytes int
)

func init() {
	ledgerregistry.MustRegister(ledgerregistry.Backend{
		Name:        "grpc",
		Description: "gRPC ledger client (talks to a lookup daemon, e.g. adaverc-ledgerd)",
		Usage:       ledgerregistry.UsageCLI,
		RegisterFlags: func(fs *pflag.FlagSet) {
			fs.StringVar(&flagTarget, "grpc-target", "", "gRPC target host:port (for --backend=grpc)")
			fs.DurationVar(&flagDialTimeout, "grpc-dial-timeout", 5*time.Second, "Dial timeout (for --backend=grpc)")
			fs.DurationVar(&flagTimeout, "grpc-timeout", 0, "Per-RPC timeout (for --backend=grpc)")
			fs.IntVar(&flagMaxMsgBytes, "grpc-max-msg-bytes", 0, "Max gRPC message size in bytes (send+recv); 0 uses grpc defaults")
		},
		Open: func() (ledger.Ledger, func() error, error) {
			return open(flagTarget, DialOptions{Timeout: flagDialTimeout, MaxMsgBytes: flagMaxMsgBytes}, flagTimeout)
		},
		OpenConfig: func(cfg map[string]string) (ledger.Ledger, func() error, error) {
			opts := DialOptions{Timeout: 5 * time.Second}
			var rpcTimeout time.Duration
			var err error
			if s := cfg["grpc-dial-timeout"]; s != "" {
				if opts.Timeout, err = time.ParseDuration(s); err != nil {
					return nil, nil, fmt.Errorf("invalid grpc-dial-timeout: %w", err)
				}
			}
			if s := cfg["grpc-timeout"]; s != "" {
				if rpcTimeout, err = time.ParseDuration(s); err != nil {
					return nil, nil, fmt.Errorf("invalid grpc-timeout: %w", err)
				}
			}
			if s := cfg["grpc-max-msg-bytes"]; s != "" {
				if opts.MaxMsgBytes, err = strconv.Atoi(s); err != nil {
					return nil, nil, fmt.Errorf("invalid grpc-max-msg-bytes: %w", err)
				}
			}
			return open(cfg["grpc-target"], opts, rpcTimeout)
		},
	})
}

func open(target string, opts DialOptions, rpcTimeout time.Duration) (ledger.Ledger, func() error, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, nil, fmt.Errorf("missing --grpc-target")
	}
	client, err := Dial(target, opts)
	if err != nil {
		return nil, nil, err
	}
	client.Timeout = rpcTimeout
	return client, client.Close, nil
}
