package grpc

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/stickyhabits/internal/common"
	pb "github.com/dmitrijs2005/stickyhabits/internal/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func withToken(token string) context.Context {
	md := metadata.New(map[string]string{common.AccessTokenHeaderName: token})
	return metadata.NewIncomingContext(context.Background(), md)
}

func TestInterceptor_PublicMethod_AllowsWithoutToken(t *testing.T) {
	s := newServer(&fakeUser{authErr: errors.New("must not be called")}, &fakeEscrow{}, &fakeEvidence{})

	for _, m := range []string{pb.MethodPing, pb.MethodLogin, pb.MethodGetHabitsUser, pb.MethodGetContract} {
		info := &grpc.UnaryServerInfo{FullMethod: pb.FullMethod(m)}
		called := false
		h := func(ctx context.Context, req any) (any, error) {
			called = true
			return "ok", nil
		}

		resp, err := s.accessTokenInterceptor(context.Background(), nil, info, h)
		require.NoError(t, err, m)
		assert.True(t, called, m)
		assert.Equal(t, "ok", resp)
	}
}

func TestInterceptor_MissingToken(t *testing.T) {
	s := newServer(&fakeUser{}, &fakeEscrow{}, &fakeEvidence{})
	info := &grpc.UnaryServerInfo{FullMethod: pb.FullMethod(pb.MethodAddHabit)}

	h := func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler should not be called when token missing")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(context.Background(), nil, info, h)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, "missing token", status.Convert(err).Message())
}

func TestInterceptor_InvalidAndExpiredToken(t *testing.T) {
	info := &grpc.UnaryServerInfo{FullMethod: pb.FullMethod(pb.MethodUnlockDeposit)}
	h := func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler should not be called")
		return nil, nil
	}

	s := newServer(&fakeUser{authErr: common.ErrInvalidToken}, &fakeEscrow{}, &fakeEvidence{})
	_, err := s.accessTokenInterceptor(withToken("garbage"), nil, info, h)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, "invalid token", status.Convert(err).Message())

	s = newServer(&fakeUser{authErr: common.ErrTokenExpired}, &fakeEscrow{}, &fakeEvidence{})
	_, err = s.accessTokenInterceptor(withToken("old"), nil, info, h)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, common.ErrTokenExpired.Error(), status.Convert(err).Message())
}

func TestInterceptor_ValidToken_PutsAccountInContext(t *testing.T) {
	s := newServer(&fakeUser{account: "alice.near"}, &fakeEscrow{}, &fakeEvidence{})
	info := &grpc.UnaryServerInfo{FullMethod: pb.FullMethod(pb.MethodAddHabit)}

	var got string
	h := func(ctx context.Context, req any) (any, error) {
		var err error
		got, err = callerFromContext(ctx)
		return nil, err
	}

	_, err := s.accessTokenInterceptor(withToken("good"), nil, info, h)
	require.NoError(t, err)
	assert.Equal(t, "alice.near", got)
}
