package grpcledger

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/adaverc/adaforms-demo-api/digest"
	"github.com/adaverc/adaforms-demo-api/ledger"
)

// Server exposes a ledger.Ledger over the Ledger gRPC service.
type Server struct {
	UnimplementedLedgerServer
	Ledger ledger.Ledger
	// Logger is optional.
	Logger *zap.Logger
}

func (s *Server) Lookup(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	if s == nil || s.Ledger == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing ledger")
	}
	d, err := digest.Parse(in.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, ledger.ErrInvalidDigest.Error())
	}
	rec, err := s.Ledger.Lookup(ctx, d)
	if err != nil {
		if !ledger.IsNotFound(err) {
			s.logger().Warn("ledger lookup failed", zap.String("digest", d.String()), zap.Error(err))
		}
		return nil, mapErr(err)
	}
	// Enforce the record/digest binding on the server side too.
	if err := ledger.CheckRecord(d, rec); err != nil {
		return nil, status.Error(codes.DataLoss, err.Error())
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, status.Error(codes.Internal, "record encoding failed")
	}
	return wrapperspb.Bytes(b), nil
}

func (s *Server) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return status.Error(codes.NotFound, ledger.ErrNotFound.Error())
	case errors.Is(err, ledger.ErrInvalidDigest):
		return status.Error(codes.InvalidArgument, ledger.ErrInvalidDigest.Error())
	case errors.Is(err, ledger.ErrDigestMismatch):
		return status.Error(codes.DataLoss, ledger.ErrDigestMismatch.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
