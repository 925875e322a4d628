package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/stickyhabits/internal/escrow"
	"github.com/dmitrijs2005/stickyhabits/internal/logging"
	"github.com/dmitrijs2005/stickyhabits/internal/netx"
)

const defaultPayoutBatch = 50

// Gateway moves funds out of the escrow. A failed Send is recorded on the
// transfer and never undoes the bookkeeping that queued it.
//
// Delivery is at least once: a transfer sent just before a crash is sent
// again on restart, so receivers must deduplicate on Transfer.ID.
type Gateway interface {
	Send(ctx context.Context, t escrow.Transfer) error
}

// LogGateway only records transfers. It stands in when no payout backend
// is configured.
type LogGateway struct {
	logger logging.Logger
}

func NewLogGateway(logger logging.Logger) *LogGateway {
	return &LogGateway{logger: logger.With("module", "payouts")}
}

func (g *LogGateway) Send(ctx context.Context, t escrow.Transfer) error {
	g.logger.Info(ctx, "transfer", "id", t.ID, "receiver", t.Receiver, "amount", t.Amount, "kind", t.Kind)
	return nil
}

// WebhookGateway POSTs every transfer as JSON to an external payout
// service.
type WebhookGateway struct {
	url    string
	client *http.Client
}

func NewWebhookGateway(url string, client *http.Client) *WebhookGateway {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &WebhookGateway{url: url, client: client}
}

func (g *WebhookGateway) Send(ctx context.Context, t escrow.Transfer) error {
	return netx.PostJSON(ctx, g.client, g.url, t)
}

// Dispatcher delivers queued transfers through a Gateway, on a fixed
// interval and whenever it is kicked.
type Dispatcher struct {
	outbox   escrow.Outbox
	gateway  Gateway
	interval time.Duration
	batch    int
	kick     chan struct{}
	logger   logging.Logger
}

func NewDispatcher(outbox escrow.Outbox, gateway Gateway, interval time.Duration, logger logging.Logger) *Dispatcher {
	return &Dispatcher{
		outbox:   outbox,
		gateway:  gateway,
		interval: interval,
		batch:    defaultPayoutBatch,
		kick:     make(chan struct{}, 1),
		logger:   logger.With("module", "dispatcher"),
	}
}

// Kick schedules a delivery round without blocking. Kicks that arrive
// while one is already pending are merged.
func (d *Dispatcher) Kick() {
	select {
	case d.kick <- struct{}{}:
	default:
	}
}

// Run delivers until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
		case <-d.kick:
		case <-ctx.Done():
			return
		}

		if _, err := d.Drain(ctx); err != nil && ctx.Err() == nil {
			d.logger.Error(ctx, "payout round failed", "error", err)
		}
	}
}

// Drain delivers pending transfers until none are left and returns how
// many were delivered.
func (d *Dispatcher) Drain(ctx context.Context) (int, error) {
	delivered := 0
	for {
		pending, err := d.outbox.Pending(ctx, d.batch)
		if err != nil {
			return delivered, fmt.Errorf("load pending transfers: %w", err)
		}

		for _, t := range pending {
			if err := d.gateway.Send(ctx, t); err != nil {
				d.logger.Warn(ctx, "transfer failed", "id", t.ID, "receiver", t.Receiver, "amount", t.Amount, "error", err)
				if err := d.outbox.MarkFailed(ctx, t.ID, err.Error()); err != nil {
					return delivered, fmt.Errorf("mark transfer %s failed: %w", t.ID, err)
				}
				continue
			}
			if err := d.outbox.MarkDelivered(ctx, t.ID); err != nil {
				return delivered, fmt.Errorf("mark transfer %s delivered: %w", t.ID, err)
			}
			delivered++
		}

		if len(pending) < d.batch {
			return delivered, nil
		}
	}
}
