package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/stickyhabits/internal/common"
	"github.com/dmitrijs2005/stickyhabits/internal/escrow"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service errors onto gRPC status codes. Unknown errors are
// logged and reported as Internal without details.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case err == nil:
		return nil
	case escrow.IsConfigError(err):
		return status.Error(codes.FailedPrecondition, err.Error())
	case escrow.IsValidationError(err), errors.Is(err, common.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, escrow.ErrPermissionDenied):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, escrow.ErrNoHabits):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, escrow.ErrIndexOutOfRange):
		return status.Error(codes.OutOfRange, err.Error())
	case errors.Is(err, common.ErrTokenExpired):
		return status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
	case errors.Is(err, common.ErrRefreshTokenExpired):
		return status.Error(codes.Unauthenticated, common.ErrRefreshTokenExpired.Error())
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}

	s.logger.Error(ctx, "request failed", "error", err)
	return status.Error(codes.Internal, "internal error")
}
