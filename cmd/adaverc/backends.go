package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/adaverc/adaforms-demo-api/digest"
	"github.com/adaverc/adaforms-demo-api/ledger/ledgerregistry"
)

func newBackendsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List ledger backends linked into this binary",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, b := range ledgerregistry.List(ledgerregistry.UsageCLI) {
				if b.Description == "" {
					_, _ = fmt.Fprintf(out, "%s\n", b.Name)
					continue
				}
				_, _ = fmt.Fprintf(out, "%s\t%s\n", b.Name, b.Description)
			}
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "adaverc %s (%s canonical v%d, %s)\n",
				version, digest.Algorithm, digest.Version, runtime.Version())
			return err
		},
	}
}
