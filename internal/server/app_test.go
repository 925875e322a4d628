package server

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/stickyhabits/internal/escrow"
	"github.com/dmitrijs2005/stickyhabits/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.LogLevel = "error"
	c.PayoutInterval = 20 * time.Millisecond
	return c
}

func TestNewApp_MemoryBackendInitializesContract(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig())
	require.NoError(t, err)

	var state *escrow.State
	err = app.repos.Ledger().Atomically(context.Background(), func(ctx context.Context, s escrow.Store) error {
		state, err = s.State().Load(ctx)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, memoryConfig().EscrowParams(), state.Params)
	assert.Zero(t, state.Balance)
}

func TestNewApp_UnknownBackend(t *testing.T) {
	c := memoryConfig()
	c.StorageBackend = "sqlite"

	_, err := NewApp(context.Background(), c)
	assert.ErrorIs(t, err, ErrUnknownStorage)
}

func TestNewApp_RejectsInvalidContractParams(t *testing.T) {
	c := memoryConfig()
	c.DevFeePercent = 100

	_, err := NewApp(context.Background(), c)
	assert.ErrorIs(t, err, escrow.ErrInvalidConfig)
}

func TestNewApp_RejectsNonPositivePayoutInterval(t *testing.T) {
	for _, d := range []time.Duration{0, -time.Second} {
		c := memoryConfig()
		c.PayoutInterval = d

		_, err := NewApp(context.Background(), c)
		assert.ErrorIs(t, err, ErrInvalidPayoutInterval)
	}
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop after cancel")
	}
}

func TestApp_RunReturnsServerError(t *testing.T) {
	c := memoryConfig()
	c.EndpointAddrGRPC = "127.0.0.1:99999"
	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- app.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop after listen failure")
	}
}
