package grpcledger

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/adaverc/adaforms-demo-api/ledger"
)

// mapRPC turns a Lookup status back into the ledger sentinel the server
// mapped it from. Only the code is consulted; any other status is returned
// unchanged so callers still see the transport failure.
func mapRPC(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.NotFound:
		return ledger.ErrNotFound
	case codes.InvalidArgument:
		return ledger.ErrInvalidDigest
	case codes.DataLoss:
		return ledger.ErrDigestMismatch
	case codes.Canceled:
		return context.Canceled
	case codes.DeadlineExceeded:
		return context.DeadlineExceeded
	default:
		return err
	}
}
