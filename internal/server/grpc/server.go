// Package grpc exposes the escrow, account and evidence services over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/stickyhabits/internal/escrow"
	"github.com/dmitrijs2005/stickyhabits/internal/logging"
	pb "github.com/dmitrijs2005/stickyhabits/internal/proto"
	"github.com/dmitrijs2005/stickyhabits/internal/server/models"
	"github.com/dmitrijs2005/stickyhabits/internal/server/services"
	"google.golang.org/grpc"
)

type userSvc interface {
	Register(ctx context.Context, username string, salt, verifier []byte) (*models.User, error)
	GetSalt(ctx context.Context, username string) ([]byte, error)
	Login(ctx context.Context, username string, verifierCandidate []byte) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Authenticate(accessToken string) (string, error)
}

type escrowSvc interface {
	AddHabit(ctx context.Context, caller string, deposit uint64, req escrow.AddHabitRequest) (int, error)
	UpdateEvidence(ctx context.Context, caller string, index int, evidence string) error
	ApproveHabit(ctx context.Context, caller, user string, index int) error
	UnlockDeposit(ctx context.Context, caller, user string, index int) (string, error)
	HabitsOfUser(ctx context.Context, user string, page escrow.Page) ([]escrow.Habit, error)
	HabitsOfBeneficiary(ctx context.Context, beneficiary string, page escrow.Page) (map[string][]escrow.Habit, error)
	Balance(ctx context.Context) (uint64, error)
	Contract(ctx context.Context) (*escrow.State, error)
}

type evidenceSvc interface {
	UploadURL(ctx context.Context, caller string, index int) (*services.EvidenceUpload, error)
	DownloadURL(ctx context.Context, caller, user string, index int) (*services.EvidenceLink, error)
}

type GRPCServer struct {
	pb.UnimplementedEscrowServiceServer
	address  string
	users    userSvc
	escrow   escrowSvc
	evidence evidenceSvc
	logger   logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, us userSvc, es escrowSvc, ev evidenceSvc) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		users:    us,
		escrow:   es,
		evidence: ev,
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	pb.RegisterEscrowServiceServer(srv, s)

	stopped := make(chan struct{})
	defer close(stopped)

	go func() {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Stopping gRPC server...")
			srv.GracefulStop()
		case <-stopped:
		}
	}()

	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
