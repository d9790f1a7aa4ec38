package grpcledger

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/adaverc/adaforms-demo-api/digest"
	"github.com/adaverc/adaforms-demo-api/ledger"
	"github.com/adaverc/adaforms-demo-api/ledger/localfs"
	"github.com/adaverc/adaforms-demo-api/ledger/memory"
	"github.com/adaverc/adaforms-demo-api/ledger/testkit"
	"github.com/adaverc/adaforms-demo-api/model"
)

func serve(t *testing.T, l ledger.Ledger) *Client {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	RegisterLedgerServer(srv, &Server{Ledger: l})

	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	dialer := func(ctx context.Context, s string) (net.Conn, error) { return lis.Dial() }
	cc, err := grpc.DialContext(
		context.Background(),
		"bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("DialContext: %v", err)
	}
	client := NewClient(cc)
	client.Timeout = 2 * time.Second
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestGRPCLedger_Conformance(t *testing.T) {
	testkit.RunLedgerConformance(t, func(t *testing.T, recs []model.Record) ledger.Ledger {
		t.Helper()
		mem, err := memory.New(recs...)
		if err != nil {
			t.Fatalf("memory.New: %v", err)
		}
		return serve(t, mem)
	})
}

func TestGRPCLedger_LocalFS_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := testkit.Record(7)
	if err := localfs.WriteRecord(dir, want); err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}
	l, err := localfs.New(dir)
	if err != nil {
		t.Fatalf("localfs.New: %v", err)
	}
	client := serve(t, l)

	d, _ := digest.Parse(want.Digest)
	got, err := client.Lookup(context.Background(), d)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got != want {
		t.Fatalf("record mismatch: got %+v want %+v", got, want)
	}
}

type stubLedger struct {
	rec model.Record
	err error
}

func (s stubLedger) Lookup(context.Context, digest.Digest) (model.Record, error) {
	return s.rec, s.err
}

func TestGRPCLedger_ErrorMapping(t *testing.T) {
	d := digest.Sum([]byte("x"))

	client := serve(t, stubLedger{rec: testkit.Record(1)})
	if _, err := client.Lookup(context.Background(), d); err != ledger.ErrDigestMismatch {
		t.Fatalf("foreign record: got %v want ErrDigestMismatch", err)
	}

	client = serve(t, stubLedger{err: errors.New("disk on fire")})
	_, err := client.Lookup(context.Background(), d)
	if err == nil || status.Code(err) != codes.Internal {
		t.Fatalf("backend failure: got %v want Internal", err)
	}

	// Malformed digests never leave a well-behaved client; hit the server directly.
	srv := &Server{Ledger: stubLedger{}}
	_, err = srv.Lookup(context.Background(), nil)
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("malformed digest: got %v want InvalidArgument", err)
	}
	if mapRPC(err) != ledger.ErrInvalidDigest {
		t.Fatalf("mapRPC(InvalidArgument) = %v", mapRPC(err))
	}

	_, err = (&Server{}).Lookup(context.Background(), nil)
	if status.Code(err) != codes.FailedPrecondition {
		t.Fatalf("missing ledger: got %v want FailedPrecondition", err)
	}
}

func TestMapRPC_UsesCodeOnly(t *testing.T) {
	cases := []struct {
		in   error
		want error
	}{
		{status.Error(codes.NotFound, "anything"), ledger.ErrNotFound},
		{status.Error(codes.InvalidArgument, "anything"), ledger.ErrInvalidDigest},
		{status.Error(codes.DataLoss, "anything"), ledger.ErrDigestMismatch},
		{status.Error(codes.Canceled, "anything"), context.Canceled},
		{status.Error(codes.DeadlineExceeded, "anything"), context.DeadlineExceeded},
	}
	for _, tc := range cases {
		if got := mapRPC(tc.in); got != tc.want {
			t.Fatalf("mapRPC(%v) = %v want %v", tc.in, got, tc.want)
		}
	}

	// A sentinel's text under another code is still a transport failure.
	in := status.Error(codes.Unavailable, ledger.ErrNotFound.Error())
	if got := mapRPC(in); got != in || ledger.IsNotFound(got) {
		t.Fatalf("mapRPC(Unavailable) = %v want the status error unchanged", got)
	}

	plain := errors.New("dial failed")
	if got := mapRPC(plain); got != plain {
		t.Fatalf("mapRPC(non-status) = %v", got)
	}
	if mapRPC(nil) != nil {
		t.Fatalf("mapRPC(nil) should be nil")
	}
}
