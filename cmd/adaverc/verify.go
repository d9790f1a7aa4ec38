package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/adaverc/adaforms-demo-api/compliance"
	"github.com/adaverc/adaforms-demo-api/httpapi"
	"github.com/adaverc/adaforms-demo-api/ledger/ledgerconfig"
	"github.com/adaverc/adaforms-demo-api/ledger/ledgerregistry"
	"github.com/adaverc/adaforms-demo-api/model"
	"github.com/adaverc/adaforms-demo-api/verify"
)

type verifyOptions struct {
	digest      string
	cid         string
	text        string
	contentFile string
	batch       string
	strict      bool
	jsonOut     bool

	authorityURL     string
	authorityTimeout time.Duration
	authorityRPS     float64
	backend          string
	ledgerConfig     string
	concurrency      int
}

func newVerifyCommand(o *rootOptions) *cobra.Command {
	v := &verifyOptions{}
	cmd := &cobra.Command{
		Use:   "verify (--digest <hex> | --cid <cid> | --text <content> | --content-file <file|-> | --batch <file>)",
		Short: "Check whether a digest is registered with the verification authority",
		Long: "Resolves the input to a digest and asks the authority about it.\n" +
			"The authority is a remote service (--authority-url), a ledger config\n" +
			"file (--ledger-config) or a single linked backend (--backend).\n\n" +
			"Exit status: 0 verified, 1 not verified or lookup failure, 2 invalid input.",
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return v.run(cmd, o)
		},
	}

	f := cmd.Flags()
	f.StringVar(&v.digest, "digest", "", "64-character lowercase hex digest")
	f.StringVar(&v.digest, "hash", "", "Alias for --digest")
	_ = f.MarkHidden("hash")
	f.StringVar(&v.cid, "cid", "", "CIDv1 (raw, sha2-256) carrying the digest")
	f.StringVar(&v.text, "text", "", "Content to canonicalize and hash")
	f.StringVar(&v.contentFile, "content-file", "", "File with content to canonicalize and hash (- for stdin)")
	f.StringVar(&v.batch, "batch", "", "File of '<mode> <input>' lines (mode: digest, cid, content)")
	f.BoolVar(&v.strict, "strict", false, "Reject content that is not JSON")
	f.BoolVar(&v.jsonOut, "json", false, "Print results as JSON")

	f.StringVar(&v.authorityURL, "authority-url", "", "Base URL of a remote verification service")
	f.DurationVar(&v.authorityTimeout, "authority-timeout", httpapi.DefaultTimeout, "Per-request timeout for --authority-url")
	f.Float64Var(&v.authorityRPS, "authority-rps", 0, "Request rate limit for --authority-url (0 = unlimited)")
	f.StringVar(&v.backend, "backend", "", "Ledger backend ("+strings.Join(ledgerregistry.Names(ledgerregistry.UsageCLI), ", ")+")")
	f.StringVar(&v.ledgerConfig, "ledger-config", "", "Ledger backends config file (YAML or JSON)")
	f.IntVar(&v.concurrency, "concurrency", 4, "Concurrent lookups for --batch")
	ledgerregistry.RegisterFlags(f, ledgerregistry.UsageCLI)
	return cmd
}

func (v *verifyOptions) options() verify.Options {
	if v.strict {
		return verify.Options{Compliance: compliance.Strict}
	}
	return verify.Options{Compliance: compliance.Permissive}
}

// request builds the single request named by the input flags.
func (v *verifyOptions) request(in io.Reader) (verify.Request, error) {
	var reqs []verify.Request
	if v.digest != "" {
		reqs = append(reqs, verify.Request{Mode: verify.ModeDigest, Input: v.digest})
	}
	if v.cid != "" {
		reqs = append(reqs, verify.Request{Mode: verify.ModeCID, Input: v.cid})
	}
	if v.text != "" {
		reqs = append(reqs, verify.Request{Mode: verify.ModeContent, Input: v.text})
	}
	if v.contentFile != "" {
		var (
			b   []byte
			err error
		)
		if v.contentFile == "-" {
			b, err = io.ReadAll(in)
		} else {
			b, err = os.ReadFile(v.contentFile)
		}
		if err != nil {
			return verify.Request{}, fmt.Errorf("read content: %w", err)
		}
		reqs = append(reqs, verify.Request{Mode: verify.ModeContent, Input: string(b)})
	}
	if len(reqs) != 1 {
		return verify.Request{}, usageErr(errors.New("exactly one of --digest, --cid, --text, --content-file or --batch is required"))
	}
	return reqs[0], nil
}

func (v *verifyOptions) openAuthority(o *rootOptions) (verify.Authority, func() error, error) {
	switch {
	case v.authorityURL != "":
		c, err := httpapi.NewClient(v.authorityURL, httpapi.ClientOptions{
			Timeout: v.authorityTimeout,
			RPS:     v.authorityRPS,
		})
		if err != nil {
			return nil, nil, usageErr(err)
		}
		o.logger().Debug("using remote authority")
		return c, nil, nil
	case v.ledgerConfig != "":
		cfg, err := ledgerconfig.LoadFile(v.ledgerConfig)
		if err != nil {
			return nil, nil, usageErr(err)
		}
		l, closeFn, err := cfg.Open(ledgerregistry.UsageCLI, v.backend)
		if err != nil {
			return nil, nil, err
		}
		return verify.LedgerAuthority{Ledger: l}, closeFn, nil
	case v.backend != "":
		l, closeFn, err := ledgerregistry.Open(v.backend, ledgerregistry.UsageCLI)
		if err != nil {
			return nil, nil, usageErr(err)
		}
		return verify.LedgerAuthority{Ledger: l}, closeFn, nil
	default:
		return nil, nil, usageErr(errors.New("no authority: set --authority-url, --ledger-config or --backend"))
	}
}

func (v *verifyOptions) run(cmd *cobra.Command, o *rootOptions) error {
	var (
		reqs []verify.Request
		err  error
	)
	if v.batch != "" {
		if v.digest != "" || v.cid != "" || v.text != "" || v.contentFile != "" {
			return usageErr(errors.New("--batch cannot be combined with another input flag"))
		}
		reqs, err = readBatch(v.batch)
	} else {
		var req verify.Request
		req, err = v.request(cmd.InOrStdin())
		reqs = []verify.Request{req}
	}
	if err != nil {
		return err
	}

	authority, closeFn, err := v.openAuthority(o)
	if err != nil {
		return err
	}
	if closeFn != nil {
		defer func() { _ = closeFn() }()
	}

	verifier := verify.NewVerifier(authority, v.options(), o.logger())
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if v.batch == "" {
		out, err := verifier.Verify(ctx, reqs[0])
		if err != nil && !verify.IsKind(err, verify.KindLookup) {
			return err
		}
		return v.report(cmd.OutOrStdout(), []verify.BatchItem{{Request: reqs[0], Outcome: out, Err: err}})
	}
	items, err := verifier.VerifyBatch(ctx, reqs, v.concurrency)
	if err != nil {
		return err
	}
	return v.report(cmd.OutOrStdout(), items)
}

// readBatch parses one "<mode> <input>" request per non-blank line.
func readBatch(path string) ([]verify.Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read batch: %w", err)
	}
	defer f.Close()

	var reqs []verify.Request
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4<<20)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		modeText, input, ok := strings.Cut(line, " ")
		if !ok {
			return nil, usageErr(fmt.Errorf("%s:%d: want '<mode> <input>'", path, n))
		}
		mode, err := verify.ParseMode(modeText)
		if err != nil {
			return nil, usageErr(fmt.Errorf("%s:%d: %w", path, n, err))
		}
		reqs = append(reqs, verify.Request{Mode: mode, Input: input})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read batch: %w", err)
	}
	if len(reqs) == 0 {
		return nil, usageErr(fmt.Errorf("%s: no requests", path))
	}
	return reqs, nil
}

type jsonItem struct {
	Mode      verify.Mode   `json:"mode"`
	Digest    string        `json:"digest,omitempty"`
	Canonical string        `json:"canonical,omitempty"`
	Result    *model.Result `json:"result,omitempty"`
	Error     string        `json:"error,omitempty"`
	RuleID    string        `json:"ruleId,omitempty"`
}

// report prints every item and returns the exit status for the set: usage
// when any input was invalid, failure when anything is unverified.
func (v *verifyOptions) report(w io.Writer, items []verify.BatchItem) error {
	code := exitOK
	for _, it := range items {
		switch {
		case it.Err != nil && verify.IsKind(it.Err, verify.KindValidation):
			code = max(code, exitUsage)
		case it.Err != nil || !it.Outcome.Result.Verified:
			code = max(code, exitFailure)
		}
	}

	if v.jsonOut {
		out := make([]jsonItem, 0, len(items))
		for _, it := range items {
			out = append(out, toJSONItem(it))
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		var err error
		if len(out) == 1 && v.batch == "" {
			err = enc.Encode(out[0])
		} else {
			err = enc.Encode(out)
		}
		if err != nil {
			return err
		}
	} else {
		for i, it := range items {
			if i > 0 {
				fmt.Fprintln(w)
			}
			printItem(w, it)
		}
	}
	if code != exitOK {
		return &exitError{code: code}
	}
	return nil
}

func toJSONItem(it verify.BatchItem) jsonItem {
	res := it.Outcome.Resolution
	j := jsonItem{Mode: it.Request.Mode}
	if !res.Digest.IsZero() {
		j.Digest = res.Digest.String()
	}
	if res.Canonical != nil {
		j.Canonical = string(res.Canonical)
	}
	if it.Err != nil {
		j.Error = it.Err.Error()
		j.RuleID = verify.RuleID(it.Err)
		return j
	}
	r := it.Outcome.Result
	j.Result = &r
	return j
}

var (
	okStyle   = color.New(color.FgGreen, color.Bold)
	failStyle = color.New(color.FgRed, color.Bold)
	errStyle  = color.New(color.FgYellow, color.Bold)
	dimStyle  = color.New(color.Faint)
)

func printItem(w io.Writer, it verify.BatchItem) {
	res := it.Outcome.Resolution
	switch {
	case it.Err != nil:
		errStyle.Fprint(w, "ERROR")
		fmt.Fprintf(w, "         %s\n", it.Err)
	case it.Outcome.Result.Verified:
		okStyle.Fprint(w, "VERIFIED")
		fmt.Fprintf(w, "      %s\n", it.Outcome.Result.Message)
	default:
		failStyle.Fprint(w, "NOT VERIFIED")
		fmt.Fprintf(w, "  %s\n", it.Outcome.Result.Message)
	}
	if !res.Digest.IsZero() {
		field(w, "digest", res.Digest.String())
	}
	if md := it.Outcome.Result.Metadata; md != nil {
		field(w, "form", md.FormID)
		field(w, "response", md.ResponseID)
		field(w, "submitted", md.Timestamp)
	}
	if s := it.Outcome.Result.StoredAt; s != "" {
		field(w, "stored", s)
	}
}

func field(w io.Writer, name, value string) {
	dimStyle.Fprintf(w, "  %-10s", name+":")
	fmt.Fprintf(w, " %s\n", value)
}
