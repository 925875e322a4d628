// Package server wires storage, the escrow engine, the payout dispatcher and
// the gRPC transport into one process and runs them until shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/stickyhabits/internal/escrow"
	"github.com/dmitrijs2005/stickyhabits/internal/logging"
	"github.com/dmitrijs2005/stickyhabits/internal/server/config"
	"github.com/dmitrijs2005/stickyhabits/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/stickyhabits/internal/server/services"

	gs "github.com/dmitrijs2005/stickyhabits/internal/server/grpc"
)

var (
	ErrUnknownStorage        = errors.New("unknown storage backend")
	ErrInvalidPayoutInterval = errors.New("payout interval must be positive")
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	repos      repomanager.RepositoryManager
	dispatcher *services.Dispatcher
	server     *gs.GRPCServer
}

// openRepositories returns the repository manager for the configured
// backend with its schema in place.
func openRepositories(ctx context.Context, c *config.Config) (repomanager.RepositoryManager, error) {
	var rm repomanager.RepositoryManager
	switch c.StorageBackend {
	case config.StorageMemory:
		rm = repomanager.NewMemoryRepositoryManager()
	case config.StoragePostgres:
		pg, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		rm = pg
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStorage, c.StorageBackend)
	}

	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}
	return rm, nil
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	if c.PayoutInterval <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPayoutInterval, c.PayoutInterval)
	}

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	rm, err := openRepositories(ctx, c)
	if err != nil {
		return nil, err
	}

	var gateway services.Gateway = services.NewLogGateway(logger)
	if c.PayoutWebhookURL != "" {
		gateway = services.NewWebhookGateway(c.PayoutWebhookURL, nil)
	}
	dispatcher := services.NewDispatcher(rm.Ledger(), gateway, c.PayoutInterval, logger)

	engine := escrow.NewEngine(rm.Ledger(), escrow.SystemClock{}, logger)
	es := services.NewEscrowService(engine, dispatcher, logger)
	if _, err := es.EnsureInitialized(ctx, c.EscrowParams()); err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("contract init error: %w", err)
	}

	us := services.NewUserService(rm.Users(), rm.RefreshTokens(), c, logger)
	ev := services.NewEvidenceService(engine, c)

	return &App{
		config:     c,
		logger:     logger,
		repos:      rm,
		dispatcher: dispatcher,
		server:     gs.NewGRPCServer(c.EndpointAddrGRPC, logger, us, es, ev),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is canceled, a termination signal arrives or the
// gRPC server fails. Pending payouts are left in the outbox on exit.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.StorageBackend)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.dispatcher.Run(ctx)
	}()

	err := app.server.Run(ctx)
	if err != nil {
		app.logger.Error(ctx, "gRPC server failed", "error", err)
	}
	cancelFunc()

	wg.Wait()

	if cerr := app.repos.Close(); cerr != nil {
		app.logger.Error(ctx, "closing storage", "error", cerr)
	}

	app.logger.Info(ctx, "App stopped")
	return err
}
