package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/stickyhabits/internal/common"
	"github.com/dmitrijs2005/stickyhabits/internal/escrow"
	pb "github.com/dmitrijs2005/stickyhabits/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// escrowAPI is the subset of pb.EscrowServiceClient in use.
type escrowAPI interface {
	Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*pb.PingResponse, error)
	RegisterUser(ctx context.Context, in *pb.RegisterUserRequest, opts ...grpc.CallOption) (*pb.RegisterUserResponse, error)
	GetSalt(ctx context.Context, in *pb.GetSaltRequest, opts ...grpc.CallOption) (*pb.GetSaltResponse, error)
	Login(ctx context.Context, in *pb.LoginRequest, opts ...grpc.CallOption) (*pb.TokenPair, error)
	RefreshToken(ctx context.Context, in *pb.RefreshTokenRequest, opts ...grpc.CallOption) (*pb.TokenPair, error)
	AddHabit(ctx context.Context, in *pb.AddHabitRequest, opts ...grpc.CallOption) (*pb.AddHabitResponse, error)
	UpdateEvidence(ctx context.Context, in *pb.UpdateEvidenceRequest, opts ...grpc.CallOption) (*emptypb.Empty, error)
	ApproveHabit(ctx context.Context, in *pb.HabitRef, opts ...grpc.CallOption) (*emptypb.Empty, error)
	UnlockDeposit(ctx context.Context, in *pb.HabitRef, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	GetHabitsUser(ctx context.Context, in *pb.GetHabitsUserRequest, opts ...grpc.CallOption) (*pb.GetHabitsUserResponse, error)
	GetHabitsBeneficiary(ctx context.Context, in *pb.GetHabitsBeneficiaryRequest, opts ...grpc.CallOption) (*pb.GetHabitsBeneficiaryResponse, error)
	GetBalance(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.UInt64Value, error)
	GetContract(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*pb.ContractResponse, error)
	EvidenceUploadURL(ctx context.Context, in *pb.EvidenceUploadURLRequest, opts ...grpc.CallOption) (*pb.EvidenceUploadURLResponse, error)
	EvidenceDownloadURL(ctx context.Context, in *pb.HabitRef, opts ...grpc.CallOption) (*pb.EvidenceDownloadURLResponse, error)
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      escrowAPI

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) tokens() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) setTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken, s.refreshToken = access, refresh
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	accessToken, refreshToken := s.tokens()
	err := invoker(withAccessToken(ctx, accessToken), method, req, reply, cc, opts...)
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated || st.Message() != common.ErrTokenExpired.Error() {
		return err
	}
	if refreshToken == "" || method == pb.FullMethod(pb.MethodRefreshToken) {
		return err
	}

	resp, rerr := s.client.RefreshToken(ctx, &pb.RefreshTokenRequest{RefreshToken: refreshToken})
	if rerr != nil {
		return rerr
	}
	s.setTokens(resp.AccessToken, resp.RefreshToken)

	return invoker(withAccessToken(ctx, resp.AccessToken), method, req, reply, cc, opts...)
}

func NewEscrowClientService(endpointURL string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	err := c.InitGRPCClient()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {

	conn, err := grpc.NewClient(s.endpointURL, grpc.WithTransportCredentials(insecure.NewCredentials()), grpc.WithUnaryInterceptor(s.accessTokenInterceptor))
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = pb.NewEscrowServiceClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) Register(ctx context.Context, userName string, salt []byte, key []byte) error {

	req := &pb.RegisterUserRequest{Username: userName, Salt: salt, Verifier: key}

	if _, err := s.client.RegisterUser(ctx, req); err != nil {
		return s.mapError(err)
	}

	return nil

}

func (s *GRPCClient) GetSalt(ctx context.Context, userName string) ([]byte, error) {

	ctx, cancel := context.WithTimeout(ctx, 12*time.Second)
	defer cancel()

	resp, err := s.client.GetSalt(ctx, &pb.GetSaltRequest{Username: userName})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Salt, nil
}

func (s *GRPCClient) Login(ctx context.Context, userName string, key []byte) error {

	resp, err := s.client.Login(ctx, &pb.LoginRequest{Username: userName, VerifierCandidate: key})
	if err != nil {
		return s.mapError(err)
	}

	s.setTokens(resp.AccessToken, resp.RefreshToken)
	return nil

}

func (s *GRPCClient) Ping(ctx context.Context) error {

	resp, err := s.client.Ping(ctx, &emptypb.Empty{})
	if err != nil {
		return s.mapError(err)
	}

	if resp.Status != "OK" {
		return ErrUnavailable
	}

	return nil

}

func (s *GRPCClient) AddHabit(ctx context.Context, description string, extension time.Duration, beneficiary string, deposit uint64) (int, error) {
	resp, err := s.client.AddHabit(ctx, &pb.AddHabitRequest{
		Description:         description,
		DeadlineExtensionNs: int64(extension),
		Beneficiary:         beneficiary,
		Deposit:             deposit,
	})
	if err != nil {
		return 0, s.mapError(err)
	}
	return resp.Index, nil
}

func (s *GRPCClient) UpdateEvidence(ctx context.Context, index int, evidence string) error {
	_, err := s.client.UpdateEvidence(ctx, &pb.UpdateEvidenceRequest{Index: index, Evidence: evidence})
	return s.mapError(err)
}

func (s *GRPCClient) ApproveHabit(ctx context.Context, user string, index int) error {
	_, err := s.client.ApproveHabit(ctx, &pb.HabitRef{User: user, Index: index})
	return s.mapError(err)
}

func (s *GRPCClient) UnlockDeposit(ctx context.Context, user string, index int) (string, error) {
	resp, err := s.client.UnlockDeposit(ctx, &pb.HabitRef{User: user, Index: index})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.GetValue(), nil
}

func (s *GRPCClient) HabitsOfUser(ctx context.Context, user string, from, limit int) ([]escrow.Habit, error) {
	resp, err := s.client.GetHabitsUser(ctx, &pb.GetHabitsUserRequest{User: user, From: from, Limit: limit})
	if err != nil {
		return nil, s.mapError(err)
	}
	return habitsFromPB(resp.Habits), nil
}

func (s *GRPCClient) HabitsOfBeneficiary(ctx context.Context, beneficiary string, from, limit int) (map[string][]escrow.Habit, error) {
	resp, err := s.client.GetHabitsBeneficiary(ctx, &pb.GetHabitsBeneficiaryRequest{Beneficiary: beneficiary, From: from, Limit: limit})
	if err != nil {
		return nil, s.mapError(err)
	}

	out := make(map[string][]escrow.Habit, len(resp.Users))
	for user, habits := range resp.Users {
		out[user] = habitsFromPB(habits)
	}
	return out, nil
}

func (s *GRPCClient) Balance(ctx context.Context) (uint64, error) {
	resp, err := s.client.GetBalance(ctx, &emptypb.Empty{})
	if err != nil {
		return 0, s.mapError(err)
	}
	return resp.GetValue(), nil
}

func (s *GRPCClient) Contract(ctx context.Context) (*Contract, error) {
	resp, err := s.client.GetContract(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return &Contract{
		State: escrow.State{
			Params: escrow.Params{
				Owner:             resp.Owner,
				DevFeePercent:     resp.DevFeePercent,
				AcquisitionPeriod: time.Duration(resp.AcquisitionPeriodNs),
				GracePeriod:       time.Duration(resp.GracePeriodNs),
			},
			Balance: resp.Balance,
		},
		StorageCost: resp.StorageCost,
	}, nil
}

func (s *GRPCClient) EvidenceUploadURL(ctx context.Context, index int) (string, string, error) {
	resp, err := s.client.EvidenceUploadURL(ctx, &pb.EvidenceUploadURLRequest{Index: index})
	if err != nil {
		return "", "", s.mapError(err)
	}
	return resp.URI, resp.URL, nil
}

func (s *GRPCClient) EvidenceDownloadURL(ctx context.Context, user string, index int) (string, string, error) {
	resp, err := s.client.EvidenceDownloadURL(ctx, &pb.HabitRef{User: user, Index: index})
	if err != nil {
		return "", "", s.mapError(err)
	}
	return resp.URL, resp.Text, nil
}

func habitsFromPB(habits []pb.Habit) []escrow.Habit {
	out := make([]escrow.Habit, 0, len(habits))
	for _, h := range habits {
		out = append(out, escrow.Habit{
			Description: h.Description,
			Deadline:    h.Deadline,
			Deposit:     h.Deposit,
			Beneficiary: h.Beneficiary,
			Evidence:    h.Evidence,
			Approved:    h.Approved,
		})
	}
	return out
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated:
		return ErrUnauthorized
	case codes.PermissionDenied:
		return ErrPermissionDenied
	case codes.NotFound, codes.OutOfRange:
		return fmt.Errorf("%w: %s", ErrNotFound, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
