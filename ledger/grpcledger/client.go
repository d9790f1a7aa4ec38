package grpcledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/adaverc/adaforms-demo-api/digest"
	"github.com/adaverc/adaforms-demo-api/ledger"
	"github.com/adaverc/adaforms-demo-api/model"
)

// Client implements ledger.Ledger over a Ledger gRPC service.
type Client struct {
	cc     *grpc.ClientConn
	client LedgerClient

	// Timeout applies per RPC when non-zero.
	Timeout time.Duration
}

var _ ledger.Ledger = (*Client)(nil)

type DialOptions struct {
	// Timeout applies to the initial dial when non-zero.
	Timeout time.Duration

	// MaxMsgBytes sets both send/recv max sizes when non-zero.
	MaxMsgBytes int
}

func Dial(target string, opts DialOptions) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if opts.MaxMsgBytes > 0 {
		dialOpts = append(dialOpts,
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(opts.MaxMsgBytes),
				grpc.MaxCallSendMsgSize(opts.MaxMsgBytes),
			),
		)
	}

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cc, err := grpc.DialContext(ctx, target, dialOpts...)
	if err != nil {
		return nil, err
	}
	return NewClient(cc), nil
}

// NewClient wraps an existing connection. Close closes cc.
func NewClient(cc *grpc.ClientConn) *Client {
	return &Client{cc: cc, client: NewLedgerClient(cc)}
}

func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

func (c *Client) Lookup(ctx context.Context, d digest.Digest) (model.Record, error) {
	if c == nil || c.client == nil {
		return model.Record{}, ledger.ErrNotFound
	}
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	reply, err := c.client.Lookup(ctx, wrapperspb.String(d.String()))
	if err != nil {
		return model.Record{}, mapRPC(err)
	}
	var rec model.Record
	if err := json.Unmarshal(reply.GetValue(), &rec); err != nil {
		return model.Record{}, fmt.Errorf("grpcledger: decode record: %w", err)
	}
	if err := ledger.CheckRecord(d, rec); err != nil {
		return model.Record{}, err
	}
	return rec, nil
}

func (c *Client) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, c.Timeout)
}
