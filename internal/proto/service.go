package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "stickyhabits.EscrowService"

const (
	MethodPing                 = "Ping"
	MethodRegisterUser         = "RegisterUser"
	MethodGetSalt              = "GetSalt"
	MethodLogin                = "Login"
	MethodRefreshToken         = "RefreshToken"
	MethodAddHabit             = "AddHabit"
	MethodUpdateEvidence       = "UpdateEvidence"
	MethodApproveHabit         = "ApproveHabit"
	MethodUnlockDeposit        = "UnlockDeposit"
	MethodGetHabitsUser        = "GetHabitsUser"
	MethodGetHabitsBeneficiary = "GetHabitsBeneficiary"
	MethodGetBalance           = "GetBalance"
	MethodGetContract          = "GetContract"
	MethodEvidenceUploadURL    = "EvidenceUploadURL"
	MethodEvidenceDownloadURL  = "EvidenceDownloadURL"
)

// FullMethod returns the gRPC path of method, as seen by interceptors.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// EscrowServiceServer is the server API for EscrowService.
type EscrowServiceServer interface {
	Ping(context.Context, *emptypb.Empty) (*PingResponse, error)
	RegisterUser(context.Context, *RegisterUserRequest) (*RegisterUserResponse, error)
	GetSalt(context.Context, *GetSaltRequest) (*GetSaltResponse, error)
	Login(context.Context, *LoginRequest) (*TokenPair, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*TokenPair, error)
	AddHabit(context.Context, *AddHabitRequest) (*AddHabitResponse, error)
	UpdateEvidence(context.Context, *UpdateEvidenceRequest) (*emptypb.Empty, error)
	ApproveHabit(context.Context, *HabitRef) (*emptypb.Empty, error)
	UnlockDeposit(context.Context, *HabitRef) (*wrapperspb.StringValue, error)
	GetHabitsUser(context.Context, *GetHabitsUserRequest) (*GetHabitsUserResponse, error)
	GetHabitsBeneficiary(context.Context, *GetHabitsBeneficiaryRequest) (*GetHabitsBeneficiaryResponse, error)
	GetBalance(context.Context, *emptypb.Empty) (*wrapperspb.UInt64Value, error)
	GetContract(context.Context, *emptypb.Empty) (*ContractResponse, error)
	EvidenceUploadURL(context.Context, *EvidenceUploadURLRequest) (*EvidenceUploadURLResponse, error)
	EvidenceDownloadURL(context.Context, *HabitRef) (*EvidenceDownloadURLResponse, error)
}

// UnimplementedEscrowServiceServer answers every method with codes.Unimplemented.
// Embed it to stay compatible when methods are added.
type UnimplementedEscrowServiceServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedEscrowServiceServer) Ping(context.Context, *emptypb.Empty) (*PingResponse, error) {
	return nil, unimplemented(MethodPing)
}
func (UnimplementedEscrowServiceServer) RegisterUser(context.Context, *RegisterUserRequest) (*RegisterUserResponse, error) {
	return nil, unimplemented(MethodRegisterUser)
}
func (UnimplementedEscrowServiceServer) GetSalt(context.Context, *GetSaltRequest) (*GetSaltResponse, error) {
	return nil, unimplemented(MethodGetSalt)
}
func (UnimplementedEscrowServiceServer) Login(context.Context, *LoginRequest) (*TokenPair, error) {
	return nil, unimplemented(MethodLogin)
}
func (UnimplementedEscrowServiceServer) RefreshToken(context.Context, *RefreshTokenRequest) (*TokenPair, error) {
	return nil, unimplemented(MethodRefreshToken)
}
func (UnimplementedEscrowServiceServer) AddHabit(context.Context, *AddHabitRequest) (*AddHabitResponse, error) {
	return nil, unimplemented(MethodAddHabit)
}
func (UnimplementedEscrowServiceServer) UpdateEvidence(context.Context, *UpdateEvidenceRequest) (*emptypb.Empty, error) {
	return nil, unimplemented(MethodUpdateEvidence)
}
func (UnimplementedEscrowServiceServer) ApproveHabit(context.Context, *HabitRef) (*emptypb.Empty, error) {
	return nil, unimplemented(MethodApproveHabit)
}
func (UnimplementedEscrowServiceServer) UnlockDeposit(context.Context, *HabitRef) (*wrapperspb.StringValue, error) {
	return nil, unimplemented(MethodUnlockDeposit)
}
func (UnimplementedEscrowServiceServer) GetHabitsUser(context.Context, *GetHabitsUserRequest) (*GetHabitsUserResponse, error) {
	return nil, unimplemented(MethodGetHabitsUser)
}
func (UnimplementedEscrowServiceServer) GetHabitsBeneficiary(context.Context, *GetHabitsBeneficiaryRequest) (*GetHabitsBeneficiaryResponse, error) {
	return nil, unimplemented(MethodGetHabitsBeneficiary)
}
func (UnimplementedEscrowServiceServer) GetBalance(context.Context, *emptypb.Empty) (*wrapperspb.UInt64Value, error) {
	return nil, unimplemented(MethodGetBalance)
}
func (UnimplementedEscrowServiceServer) GetContract(context.Context, *emptypb.Empty) (*ContractResponse, error) {
	return nil, unimplemented(MethodGetContract)
}
func (UnimplementedEscrowServiceServer) EvidenceUploadURL(context.Context, *EvidenceUploadURLRequest) (*EvidenceUploadURLResponse, error) {
	return nil, unimplemented(MethodEvidenceUploadURL)
}
func (UnimplementedEscrowServiceServer) EvidenceDownloadURL(context.Context, *HabitRef) (*EvidenceDownloadURLResponse, error) {
	return nil, unimplemented(MethodEvidenceDownloadURL)
}

// unary builds the method descriptor for one request/response pair.
func unary[Req, Resp any](method string, call func(EscrowServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(EscrowServiceServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// EscrowServiceDesc describes EscrowService for grpc.ServiceRegistrar.
var EscrowServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EscrowServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodPing, EscrowServiceServer.Ping),
		unary(MethodRegisterUser, EscrowServiceServer.RegisterUser),
		unary(MethodGetSalt, EscrowServiceServer.GetSalt),
		unary(MethodLogin, EscrowServiceServer.Login),
		unary(MethodRefreshToken, EscrowServiceServer.RefreshToken),
		unary(MethodAddHabit, EscrowServiceServer.AddHabit),
		unary(MethodUpdateEvidence, EscrowServiceServer.UpdateEvidence),
		unary(MethodApproveHabit, EscrowServiceServer.ApproveHabit),
		unary(MethodUnlockDeposit, EscrowServiceServer.UnlockDeposit),
		unary(MethodGetHabitsUser, EscrowServiceServer.GetHabitsUser),
		unary(MethodGetHabitsBeneficiary, EscrowServiceServer.GetHabitsBeneficiary),
		unary(MethodGetBalance, EscrowServiceServer.GetBalance),
		unary(MethodGetContract, EscrowServiceServer.GetContract),
		unary(MethodEvidenceUploadURL, EscrowServiceServer.EvidenceUploadURL),
		unary(MethodEvidenceDownloadURL, EscrowServiceServer.EvidenceDownloadURL),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "stickyhabits/escrow",
}

func RegisterEscrowServiceServer(s grpc.ServiceRegistrar, srv EscrowServiceServer) {
	s.RegisterService(&EscrowServiceDesc, srv)
}
