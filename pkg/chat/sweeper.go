package chat

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper periodically reclaims expired chat sessions. Adapted from the
// teacher's pkg/cleanup service shape (run-once-immediately-then-on-tick,
// cancellable via context) but driven off a single in-memory Store sweep
// instead of the teacher's two Postgres-backed retention queries.
type Sweeper struct {
	store    *Store
	interval time.Duration
	log      zerolog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewSweeper builds a sweeper over store, checking every interval.
func NewSweeper(store *Store, interval time.Duration, log zerolog.Logger) *Sweeper {
	return &Sweeper{store: store, interval: interval, log: log}
}

// Start launches the background sweep loop. A second call while already
// running is a no-op.
func (sw *Sweeper) Start(ctx context.Context) {
	if sw.cancel != nil {
		return
	}
	ctx, sw.cancel = context.WithCancel(ctx)
	sw.done = make(chan struct{})
	go sw.run(ctx)
}

// Stop signals the sweep loop to exit and waits for it to finish.
func (sw *Sweeper) Stop() {
	if sw.cancel == nil {
		return
	}
	sw.cancel()
	<-sw.done
}

func (sw *Sweeper) run(ctx context.Context) {
	defer close(sw.done)

	sw.sweepOnce()

	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sw.sweepOnce()
		}
	}
}

func (sw *Sweeper) sweepOnce() {
	n := sw.store.Sweep(time.Now())
	if n > 0 {
		sw.log.Info().Int("expired", n).Msg("swept expired chat sessions")
	}
}
