package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/stickyhabits/internal/common"
	pb "github.com/dmitrijs2005/stickyhabits/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const accountKey ctxKey = "account"

// publicMethods need no access token.
var publicMethods = map[string]bool{
	pb.FullMethod(pb.MethodPing):                 true,
	pb.FullMethod(pb.MethodRegisterUser):         true,
	pb.FullMethod(pb.MethodGetSalt):              true,
	pb.FullMethod(pb.MethodLogin):                true,
	pb.FullMethod(pb.MethodRefreshToken):         true,
	pb.FullMethod(pb.MethodGetHabitsUser):        true,
	pb.FullMethod(pb.MethodGetHabitsBeneficiary): true,
	pb.FullMethod(pb.MethodGetBalance):           true,
	pb.FullMethod(pb.MethodGetContract):          true,
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	if publicMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	account, err := s.users.Authenticate(accessToken)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
		}
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	ctx = context.WithValue(ctx, accountKey, account)
	return handler(ctx, req)
}

func callerFromContext(ctx context.Context) (string, error) {
	account, ok := ctx.Value(accountKey).(string)
	if !ok || account == "" {
		return "", status.Error(codes.Internal, "caller not found in context")
	}
	return account, nil
}
