package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/adaverc/adaforms-demo-api/internal/config"
	"github.com/adaverc/adaforms-demo-api/internal/logging"
	"github.com/adaverc/adaforms-demo-api/verify"

	_ "github.com/adaverc/adaforms-demo-api/ledger/grpcledger"
	_ "github.com/adaverc/adaforms-demo-api/ledger/localfs"
	_ "github.com/adaverc/adaforms-demo-api/ledger/memory"
	_ "github.com/adaverc/adaforms-demo-api/ledger/postgres"
	_ "github.com/adaverc/adaforms-demo-api/ledger/sqlite"
)

// version is set at link time.
var version = "dev"

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
	logName     = "adaverc"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// exitError carries an exit code out of a command. A nil err means the
// command already reported its outcome.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func usageErr(err error) error { return &exitError{code: exitUsage, err: err} }

func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return usageErr(err)
		}
		return nil
	}
}

type rootOptions struct {
	configPath string
	logLevel   string
	logJSON    bool
	noColor    bool

	log *zap.Logger
}

func (o *rootOptions) logger() *zap.Logger {
	if o.log == nil {
		return zap.NewNop()
	}
	return o.log
}

func run(args []string, in io.Reader, out, errOut io.Writer) int {
	root := newRootCommand()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.Execute()
	if err == nil {
		return exitOK
	}
	code := exitFailure
	var ee *exitError
	if errors.As(err, &ee) {
		code = ee.code
	}
	if verify.IsKind(err, verify.KindValidation) {
		code = exitUsage
	}
	if ee == nil || ee.err != nil {
		fmt.Fprintf(errOut, "adaverc: %v\n", err)
	}
	return code
}

func newRootCommand() *cobra.Command {
	o := &rootOptions{}
	root := &cobra.Command{
		Use:           "adaverc",
		Short:         "Canonical digests and ledger verification for form submissions",
		Args:          usageArgs(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.Apply(o.configPath, cmd.Flags()); err != nil {
				return usageErr(err)
			}
			if o.noColor {
				color.NoColor = true
			}
			log, err := logging.New(o.logLevel, o.logJSON)
			if err != nil {
				return usageErr(err)
			}
			o.log = log.Named(logName)
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if o.log != nil {
				_ = o.log.Sync()
			}
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageErr(err) })

	pf := root.PersistentFlags()
	pf.StringVar(&o.configPath, "config", "", "Config file (YAML or JSON); defaults to $"+config.EnvConfig)
	pf.StringVar(&o.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	pf.BoolVar(&o.logJSON, "log-json", false, "Log as JSON")
	pf.BoolVar(&o.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(
		newDigestCommand(o),
		newCanonicalCommand(),
		newVerifyCommand(o),
		newBackendsCommand(),
		newVersionCommand(),
	)
	return root
}
