package cleanup

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"filestore/internal/model"
	"filestore/internal/repository"
	"filestore/internal/storage"
)

// Package cleanup runs the background reclamation of expired temporary files.

// DefaultInterval is how often the sweep runs when no interval is configured.
const DefaultInterval = 6 * time.Hour

// Reclaimer periodically retires temporary files whose expiry has passed:
// physical removal first (best effort), then the ledger row is marked
// deleted regardless. Ledger consistency wins over storage consistency;
// an orphaned blob is recoverable by hand, a live row for dead bytes is not.
type Reclaimer struct {
	repo     repository.FileRepository
	store    storage.Storage
	interval time.Duration

	enc *json.Encoder
}

// New constructs a Reclaimer. A non-positive interval falls back to
// DefaultInterval.
func New(repo repository.FileRepository, store storage.Storage, interval time.Duration) *Reclaimer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Reclaimer{
		repo:     repo,
		store:    store,
		interval: interval,
		enc:      json.NewEncoder(os.Stdout),
	}
}

// Run executes the sweep on a fixed interval until the context is cancelled.
// The first sweep happens immediately on start.
func (r *Reclaimer) Run(ctx context.Context) {
	r.logEvent("cleanup_started", map[string]any{"interval": r.interval.String()})

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if n, err := r.Sweep(ctx); err != nil {
			r.logEvent("sweep_failed", map[string]any{"error": err.Error()})
		} else if n > 0 {
			r.logEvent("sweep_completed", map[string]any{"reclaimed": n})
		}

		select {
		case <-ctx.Done():
			r.logEvent("cleanup_stopped", nil)
			return
		case <-ticker.C:
		}
	}
}

// Sweep runs one reclamation cycle and returns the number of files retired.
// Per-file failures are isolated: one file's error is logged and does not
// abort the cycle. Files already marked deleted never reappear in the query,
// which makes the sweep idempotent and safe to resume after cancellation.
func (r *Reclaimer) Sweep(ctx context.Context) (int, error) {
	expired, err := r.repo.FindExpiredTemporary(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	reclaimed := 0
	for i := range expired {
		if ctx.Err() != nil {
			// Cooperative shutdown; partial progress is safe to resume.
			return reclaimed, ctx.Err()
		}
		file := &expired[i]
		if err := r.reclaim(ctx, file); err != nil {
			r.logEvent("reclaim_failed", map[string]any{
				"file_id": file.ID,
				"bucket":  file.Bucket,
				"error":   err.Error(),
			})
			continue
		}
		reclaimed++
		r.logEvent("file_reclaimed", map[string]any{
			"file_id": file.ID,
			"bucket":  file.Bucket,
		})
	}
	return reclaimed, nil
}

func (r *Reclaimer) reclaim(ctx context.Context, file *model.StoredFile) error {
	// Best effort: removal errors are logged but never block the ledger
	// update below.
	if err := r.store.Remove(ctx, file.StoragePath, file.Bucket); err != nil {
		r.logEvent("physical_remove_failed", map[string]any{
			"file_id": file.ID,
			"bucket":  file.Bucket,
			"error":   err.Error(),
		})
	}

	file.MarkDeleted("cleanup", time.Now().UTC())
	return r.repo.Update(ctx, file)
}

func (r *Reclaimer) logEvent(event string, fields map[string]any) {
	entry := map[string]any{
		"component": "cleanup",
		"event":     event,
		"time":      time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range fields {
		entry[k] = v
	}
	_ = r.enc.Encode(entry)
}
