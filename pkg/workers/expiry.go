package workers

import (
	"context"
	"time"

	"github.com/cbodonnell/skwarz/pkg/log"
)

// TicketExpirer removes tickets that were never confirmed in time.
type TicketExpirer interface {
	ExpireTickets(now time.Time) int
}

type TicketExpiryWorker struct {
	expirer  TicketExpirer
	interval time.Duration
}

type NewTicketExpiryWorkerOptions struct {
	Expirer  TicketExpirer
	Interval time.Duration
}

// NewTicketExpiryWorker creates a new TicketExpiryWorker.
// The worker periodically sweeps tickets that outlived their ttl.
func NewTicketExpiryWorker(opts NewTicketExpiryWorkerOptions) *TicketExpiryWorker {
	return &TicketExpiryWorker{
		expirer:  opts.Expirer,
		interval: opts.Interval,
	}
}

// Start blocks until ctx is done.
func (w *TicketExpiryWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			w.sweep(t)
		}
	}
}

func (w *TicketExpiryWorker) sweep(now time.Time) {
	if removed := w.expirer.ExpireTickets(now); removed > 0 {
		log.Debug("Expired %d tickets", removed)
	}
}
