package autosave

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Bridge drives periodic snapshotting for one attempt. Each tick it asks the
// session for its current state and writes it to the store. Save failures
// are logged and retried on the next tick; they never interrupt the session.
type Bridge struct {
	store    Store
	interval time.Duration
	maxAge   time.Duration
	log      zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewBridge builds a bridge. interval is how often snapshots are written;
// maxAge is how old a stored snapshot may be before Load rejects it as
// stale.
func NewBridge(store Store, interval, maxAge time.Duration, log zerolog.Logger) *Bridge {
	return &Bridge{
		store:    store,
		interval: interval,
		maxAge:   maxAge,
		log:      log.With().Str("component", "autosave_bridge").Logger(),
	}
}

// Start begins the snapshot ticker. getter is called on every tick and must
// be safe to invoke from the bridge's goroutine; it returns the snapshot to
// persist, or false when the attempt is no longer running. Calling Start on
// a running bridge is a no-op.
func (b *Bridge) Start(ctx context.Context, getter func() (Snapshot, bool)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.done = make(chan struct{})

	go b.run(ctx, getter, b.done)
}

func (b *Bridge) run(ctx context.Context, getter func() (Snapshot, bool), done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap, ok := getter()
			if !ok {
				return
			}
			snap.SavedAt = time.Now()
			if err := b.store.Save(ctx, snap); err != nil {
				if ctx.Err() != nil {
					return
				}
				b.log.Error().Err(err).
					Str("attempt_id", snap.AttemptID.String()).
					Msg("Snapshot save failed, will retry next tick")
			}
		}
	}
}

// Stop halts the ticker and waits for the snapshot goroutine to exit. Safe
// to call repeatedly.
func (b *Bridge) Stop() {
	b.mu.Lock()
	cancel, done := b.cancel, b.done
	b.cancel = nil
	b.done = nil
	b.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Load fetches the snapshot for attemptID, rejecting entries older than the
// staleness window. A stale snapshot is cleared from the store so the next
// resume starts clean.
func (b *Bridge) Load(ctx context.Context, attemptID uuid.UUID) (Snapshot, error) {
	snap, err := b.store.Load(ctx, attemptID)
	if err != nil {
		return Snapshot{}, err
	}
	if b.maxAge > 0 && time.Since(snap.SavedAt) > b.maxAge {
		if err := b.store.Clear(ctx, attemptID); err != nil {
			b.log.Warn().Err(err).
				Str("attempt_id", attemptID.String()).
				Msg("Failed to clear stale snapshot")
		}
		return Snapshot{}, ErrNoSnapshot
	}
	return snap, nil
}

// Clear removes the stored snapshot, typically after submission.
func (b *Bridge) Clear(ctx context.Context, attemptID uuid.UUID) error {
	return b.store.Clear(ctx, attemptID)
}
