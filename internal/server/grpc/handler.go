package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/stickyhabits/internal/escrow"
	pb "github.com/dmitrijs2005/stickyhabits/internal/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func (s *GRPCServer) Ping(ctx context.Context, req *emptypb.Empty) (*pb.PingResponse, error) {

	return &pb.PingResponse{Status: "OK"}, nil

}

func (s *GRPCServer) RegisterUser(ctx context.Context, req *pb.RegisterUserRequest) (*pb.RegisterUserResponse, error) {

	s.logger.Info(ctx, "Registration request", "username", req.Username)

	result, err := s.users.Register(ctx, req.Username, req.Salt, req.Verifier)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Registered", "username", result.UserName)
	return &pb.RegisterUserResponse{Username: result.UserName}, nil

}

func (s *GRPCServer) GetSalt(ctx context.Context, req *pb.GetSaltRequest) (*pb.GetSaltResponse, error) {

	result, err := s.users.GetSalt(ctx, req.Username)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &pb.GetSaltResponse{Salt: result}, nil

}

func (s *GRPCServer) Login(ctx context.Context, req *pb.LoginRequest) (*pb.TokenPair, error) {

	tokens, err := s.users.Login(ctx, req.Username, req.VerifierCandidate)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &pb.TokenPair{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil

}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *pb.RefreshTokenRequest) (*pb.TokenPair, error) {

	tokens, err := s.users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &pb.TokenPair{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil

}

func (s *GRPCServer) AddHabit(ctx context.Context, req *pb.AddHabitRequest) (*pb.AddHabitResponse, error) {

	caller, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	index, err := s.escrow.AddHabit(ctx, caller, req.Deposit, escrow.AddHabitRequest{
		Description:       req.Description,
		DeadlineExtension: time.Duration(req.DeadlineExtensionNs),
		Beneficiary:       req.Beneficiary,
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &pb.AddHabitResponse{Index: index}, nil

}

func (s *GRPCServer) UpdateEvidence(ctx context.Context, req *pb.UpdateEvidenceRequest) (*emptypb.Empty, error) {

	caller, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.escrow.UpdateEvidence(ctx, caller, req.Index, req.Evidence); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &emptypb.Empty{}, nil

}

func (s *GRPCServer) ApproveHabit(ctx context.Context, req *pb.HabitRef) (*emptypb.Empty, error) {

	caller, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.escrow.ApproveHabit(ctx, caller, req.User, req.Index); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &emptypb.Empty{}, nil

}

func (s *GRPCServer) UnlockDeposit(ctx context.Context, req *pb.HabitRef) (*wrapperspb.StringValue, error) {

	caller, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	receiver, err := s.escrow.UnlockDeposit(ctx, caller, req.User, req.Index)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return wrapperspb.String(receiver), nil

}

func (s *GRPCServer) GetHabitsUser(ctx context.Context, req *pb.GetHabitsUserRequest) (*pb.GetHabitsUserResponse, error) {

	habits, err := s.escrow.HabitsOfUser(ctx, req.User, escrow.Page{From: req.From, Limit: req.Limit})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &pb.GetHabitsUserResponse{Habits: habitsToPB(habits)}, nil

}

func (s *GRPCServer) GetHabitsBeneficiary(ctx context.Context, req *pb.GetHabitsBeneficiaryRequest) (*pb.GetHabitsBeneficiaryResponse, error) {

	byUser, err := s.escrow.HabitsOfBeneficiary(ctx, req.Beneficiary, escrow.Page{From: req.From, Limit: req.Limit})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	users := make(map[string][]pb.Habit, len(byUser))
	for user, habits := range byUser {
		users[user] = habitsToPB(habits)
	}

	return &pb.GetHabitsBeneficiaryResponse{Users: users}, nil

}

func (s *GRPCServer) GetBalance(ctx context.Context, req *emptypb.Empty) (*wrapperspb.UInt64Value, error) {

	balance, err := s.escrow.Balance(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return wrapperspb.UInt64(balance), nil

}

func (s *GRPCServer) GetContract(ctx context.Context, req *emptypb.Empty) (*pb.ContractResponse, error) {

	state, err := s.escrow.Contract(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &pb.ContractResponse{
		Owner:               state.Owner,
		DevFeePercent:       state.DevFeePercent,
		AcquisitionPeriodNs: int64(state.AcquisitionPeriod),
		GracePeriodNs:       int64(state.GracePeriod),
		Balance:             state.Balance,
		StorageCost:         escrow.StorageCost,
	}, nil

}

func (s *GRPCServer) EvidenceUploadURL(ctx context.Context, req *pb.EvidenceUploadURLRequest) (*pb.EvidenceUploadURLResponse, error) {

	caller, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	upload, err := s.evidence.UploadURL(ctx, caller, req.Index)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &pb.EvidenceUploadURLResponse{URI: upload.URI, URL: upload.URL}, nil

}

func (s *GRPCServer) EvidenceDownloadURL(ctx context.Context, req *pb.HabitRef) (*pb.EvidenceDownloadURLResponse, error) {

	caller, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	link, err := s.evidence.DownloadURL(ctx, caller, req.User, req.Index)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &pb.EvidenceDownloadURLResponse{URL: link.URL, Text: link.Text}, nil

}

func habitsToPB(habits []escrow.Habit) []pb.Habit {
	out := make([]pb.Habit, 0, len(habits))
	for _, h := range habits {
		out = append(out, pb.Habit{
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
