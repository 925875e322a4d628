package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/stickyhabits/internal/escrow"
	"github.com/dmitrijs2005/stickyhabits/internal/logging"
	"github.com/dmitrijs2005/stickyhabits/internal/server/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingGateway struct {
	mu     sync.Mutex
	sent   []escrow.Transfer
	failOn map[string]bool
}

func (g *recordingGateway) Send(ctx context.Context, t escrow.Transfer) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failOn[t.Receiver] {
		return errors.New("receiver rejected")
	}
	g.sent = append(g.sent, t)
	return nil
}

func (g *recordingGateway) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sent)
}

func enqueue(t *testing.T, l *memory.Ledger, receivers ...string) {
	t.Helper()
	err := l.Atomically(context.Background(), func(ctx context.Context, s escrow.Store) error {
		for i, r := range receivers {
			tr := &escrow.Transfer{ID: fmt.Sprintf("%s-%d", r, i), Receiver: r, Amount: 10, Status: escrow.TransferPending}
			if err := s.Transfers().Enqueue(ctx, tr); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func TestDispatcher_DrainMarksOutcome(t *testing.T) {
	ledger := memory.NewLedger()
	enqueue(t, ledger, "alice.near", "bob.near", "owner.near")

	gw := &recordingGateway{failOn: map[string]bool{"bob.near": true}}
	d := NewDispatcher(ledger, gw, time.Hour, logging.NewDiscardLogger())

	n, err := d.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all := ledger.Transfers()
	assert.Equal(t, escrow.TransferDelivered, all[0].Status)
	assert.Equal(t, escrow.TransferFailed, all[1].Status)
	assert.Equal(t, "receiver rejected", all[1].Failure)
	assert.Equal(t, escrow.TransferDelivered, all[2].Status)

	n, err = d.Drain(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "failed transfers are not retried")
}

func TestDispatcher_DrainPagesThroughBatches(t *testing.T) {
	ledger := memory.NewLedger()
	receivers := make([]string, 7)
	for i := range receivers {
		receivers[i] = fmt.Sprintf("u%d.near", i)
	}
	enqueue(t, ledger, receivers...)

	gw := &recordingGateway{}
	d := NewDispatcher(ledger, gw, time.Hour, logging.NewDiscardLogger())
	d.batch = 3

	n, err := d.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, 7, gw.count())
}

func TestDispatcher_KickTriggersRound(t *testing.T) {
	ledger := memory.NewLedger()
	gw := &recordingGateway{}
	d := NewDispatcher(ledger, gw, time.Hour, logging.NewDiscardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	enqueue(t, ledger, "alice.near")
	d.Kick()
	d.Kick()

	assert.Eventually(t, func() bool { return gw.count() == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher did not stop")
	}
}

func TestDispatcher_TickerTriggersRound(t *testing.T) {
	ledger := memory.NewLedger()
	enqueue(t, ledger, "alice.near", "bob.near")
	gw := &recordingGateway{}
	d := NewDispatcher(ledger, gw, 10*time.Millisecond, logging.NewDiscardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	assert.Eventually(t, func() bool { return gw.count() == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestWebhookGateway(t *testing.T) {
	var got escrow.Transfer
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		if got.Receiver == "nobody.near" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	gw := NewWebhookGateway(ts.URL, ts.Client())
	tr := escrow.Transfer{ID: "t-1", Receiver: "bob.near", Amount: 1_900_000, Kind: escrow.TransferForfeit}

	require.NoError(t, gw.Send(context.Background(), tr))
	assert.Equal(t, "t-1", got.ID)
	assert.Equal(t, uint64(1_900_000), got.Amount)

	tr.Receiver = "nobody.near"
	assert.Error(t, gw.Send(context.Background(), tr))
}

func TestLogGateway(t *testing.T) {
	gw := NewLogGateway(logging.NewDiscardLogger())
	assert.NoError(t, gw.Send(context.Background(), escrow.Transfer{ID: "t"}))
}
