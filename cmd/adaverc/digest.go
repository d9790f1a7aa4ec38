package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/adaverc/adaforms-demo-api/compliance"
	"github.com/adaverc/adaforms-demo-api/verify"
)

type contentOptions struct {
	text   string
	strict bool
}

func (c *contentOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.text, "text", "", "Content given inline instead of a file")
	cmd.Flags().BoolVar(&c.strict, "strict", false, "Reject content that is not JSON")
}

// read returns the content from --text, the file argument, or stdin when the
// argument is "-" or absent.
func (c *contentOptions) read(in io.Reader, args []string) (string, error) {
	if c.text != "" {
		if len(args) > 0 {
			return "", usageErr(errors.New("--text and a file argument are mutually exclusive"))
		}
		return c.text, nil
	}
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}
	return string(b), nil
}

func (c *contentOptions) resolve(in io.Reader, args []string) (verify.Resolution, error) {
	text, err := c.read(in, args)
	if err != nil {
		return verify.Resolution{}, err
	}
	opts := verify.Options{Compliance: compliance.Permissive}
	if c.strict {
		opts.Compliance = compliance.Strict
	}
	return verify.ResolveWithOptions(verify.Request{Mode: verify.ModeContent, Input: text}, opts)
}

func newDigestCommand(o *rootOptions) *cobra.Command {
	var (
		content contentOptions
		asCID   bool
	)
	cmd := &cobra.Command{
		Use:   "digest [file|-]",
		Short: "Print the SHA-256 digest of canonicalized content",
		Long: "Canonicalizes the content (JSON, or plain text when it is not JSON)\n" +
			"and prints the 64-character hex digest that a ledger registers.",
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := content.resolve(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			if !res.Structured {
				o.logger().Debug("content is not JSON; hashed as plain text")
			}
			if asCID {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), res.Digest.CID())
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), res.Digest)
			return err
		},
	}
	content.bind(cmd)
	cmd.Flags().BoolVar(&asCID, "cid", false, "Print the digest as a CIDv1 (raw, sha2-256)")
	return cmd
}

func newCanonicalCommand() *cobra.Command {
	var content contentOptions
	cmd := &cobra.Command{
		Use:   "canonical [file|-]",
		Short: "Print the canonical serialization that is hashed",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := content.resolve(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", res.Canonical)
			return err
		},
	}
	content.bind(cmd)
	return cmd
}
