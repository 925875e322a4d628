package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// EscrowServiceClient is the client API for EscrowService. Every call is
// sent with the JSON content-subtype.
type EscrowServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewEscrowServiceClient(cc grpc.ClientConnInterface) *EscrowServiceClient {
	return &EscrowServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *EscrowServiceClient) Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, MethodPing, in, opts)
}

func (c *EscrowServiceClient) RegisterUser(ctx context.Context, in *RegisterUserRequest, opts ...grpc.CallOption) (*RegisterUserResponse, error) {
	return invoke[RegisterUserResponse](ctx, c.cc, MethodRegisterUser, in, opts)
}

func (c *EscrowServiceClient) GetSalt(ctx context.Context, in *GetSaltRequest, opts ...grpc.CallOption) (*GetSaltResponse, error) {
	return invoke[GetSaltResponse](ctx, c.cc, MethodGetSalt, in, opts)
}

func (c *EscrowServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*TokenPair, error) {
	return invoke[TokenPair](ctx, c.cc, MethodLogin, in, opts)
}

func (c *EscrowServiceClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*TokenPair, error) {
	return invoke[TokenPair](ctx, c.cc, MethodRefreshToken, in, opts)
}

func (c *EscrowServiceClient) AddHabit(ctx context.Context, in *AddHabitRequest, opts ...grpc.CallOption) (*AddHabitResponse, error) {
	return invoke[AddHabitResponse](ctx, c.cc, MethodAddHabit, in, opts)
}

func (c *EscrowServiceClient) UpdateEvidence(ctx context.Context, in *UpdateEvidenceRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, MethodUpdateEvidence, in, opts)
}

func (c *EscrowServiceClient) ApproveHabit(ctx context.Context, in *HabitRef, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, MethodApproveHabit, in, opts)
}

func (c *EscrowServiceClient) UnlockDeposit(ctx context.Context, in *HabitRef, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	return invoke[wrapperspb.StringValue](ctx, c.cc, MethodUnlockDeposit, in, opts)
}

func (c *EscrowServiceClient) GetHabitsUser(ctx context.Context, in *GetHabitsUserRequest, opts ...grpc.CallOption) (*GetHabitsUserResponse, error) {
	return invoke[GetHabitsUserResponse](ctx, c.cc, MethodGetHabitsUser, in, opts)
}

func (c *EscrowServiceClient) GetHabitsBeneficiary(ctx context.Context, in *GetHabitsBeneficiaryRequest, opts ...grpc.CallOption) (*GetHabitsBeneficiaryResponse, error) {
	return invoke[GetHabitsBeneficiaryResponse](ctx, c.cc, MethodGetHabitsBeneficiary, in, opts)
}

func (c *EscrowServiceClient) GetBalance(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.UInt64Value, error) {
	return invoke[wrapperspb.UInt64Value](ctx, c.cc, MethodGetBalance, in, opts)
}

func (c *EscrowServiceClient) GetContract(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*ContractResponse, error) {
	return invoke[ContractResponse](ctx, c.cc, MethodGetContract, in, opts)
}

func (c *EscrowServiceClient) EvidenceUploadURL(ctx context.Context, in *EvidenceUploadURLRequest, opts ...grpc.CallOption) (*EvidenceUploadURLResponse, error) {
	return invoke[EvidenceUploadURLResponse](ctx, c.cc, MethodEvidenceUploadURL, in, opts)
}

func (c *EscrowServiceClient) EvidenceDownloadURL(ctx context.Context, in *HabitRef, opts ...grpc.CallOption) (*EvidenceDownloadURLResponse, error) {
	return invoke[EvidenceDownloadURLResponse](ctx, c.cc, MethodEvidenceDownloadURL, in, opts)
}
