package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/adaverc/adaforms-demo-api/digest"
	"github.com/adaverc/adaforms-demo-api/model"
	"github.com/adaverc/adaforms-demo-api/verify"
)

// DefaultTimeout bounds one lookup when ClientOptions.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// fallbackMessage is shown when a failed response carries no message.
const fallbackMessage = "Verification failed"

type ClientOptions struct {
	// Timeout bounds each request. Zero means DefaultTimeout.
	Timeout time.Duration
	// RPS limits outgoing requests per second. Zero disables limiting.
	RPS float64
	// HTTPClient overrides the transport. Its Timeout is left as is.
	HTTPClient *http.Client
}

// Client asks a remote verification service about digests.
type Client struct {
	endpoint string
	http     *http.Client
	limiter  *rate.Limiter
}

var _ verify.Authority = (*Client)(nil)

// NewClient returns a Client for the service rooted at baseURL.
func NewClient(baseURL string, opts ClientOptions) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("httpapi: invalid authority url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("httpapi: authority url %q must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("httpapi: authority url %q has no host", baseURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + VerifyPath

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	c := &Client{endpoint: u.String(), http: hc}
	if opts.RPS > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RPS), 1)
	}
	return c, nil
}

// Endpoint returns the full lookup URL.
func (c *Client) Endpoint() string { return c.endpoint }

// Verify posts d and decodes the verdict. A failed response becomes a
// verify.KindLookup error carrying the server's message.
func (c *Client) Verify(ctx context.Context, d digest.Digest) (model.Result, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return model.Result{}, err
		}
	}

	body, err := json.Marshal(model.VerifyRequest{Digest: d.String()})
	if err != nil {
		return model.Result{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return model.Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return model.Result{}, fmt.Errorf("httpapi: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return model.Result{}, fmt.Errorf("httpapi: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.Result{}, responseError(resp.StatusCode, raw)
	}

	var out model.Result
	if err := json.Unmarshal(raw, &out); err != nil {
		return model.Result{}, verify.LookupError(fallbackMessage, fmt.Errorf("httpapi: decode response: %w", err))
	}
	return out, nil
}

// StatusError is the cause attached to lookup errors from non-2xx responses.
type StatusError struct {
	Status int
	Code   model.ErrorCode
}

func (e *StatusError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("httpapi: status %d", e.Status)
	}
	return fmt.Sprintf("httpapi: status %d (%s)", e.Status, e.Code)
}

func responseError(status int, raw []byte) error {
	se := &StatusError{Status: status}
	var ce model.CodedError
	if err := json.Unmarshal(raw, &ce); err == nil && ce.Message != "" {
		se.Code = ce.Code
		return verify.LookupError(ce.Message, se)
	}
	return verify.LookupError(fallbackMessage, se)
}

// IsStatus reports whether err came from a response with the given status.
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == status
}
