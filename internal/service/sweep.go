package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tenderdocs/internal/apperr"
	"tenderdocs/internal/repository"
	"tenderdocs/internal/storage"
)

// SweepResult summarizes one orphan sweep.
type SweepResult struct {
	Scanned    int      `json:"scanned" yaml:"scanned"`
	Referenced int      `json:"referenced" yaml:"referenced"`
	Recent     int      `json:"recent" yaml:"recent"`
	Removed    int      `json:"removed" yaml:"removed"`
	Failed     int      `json:"failed" yaml:"failed"`
	Orphans    []string `json:"orphans" yaml:"orphans"`
}

// OrphanSweeper deletes objects that no document row references. These are left behind
// when the compensating delete of a failed upload itself fails.
type OrphanSweeper struct {
	store   storage.Storage
	repo    repository.DocumentRepository
	log     zerolog.Logger
	metrics *Metrics
	now     func() time.Time
}

func NewOrphanSweeper(store storage.Storage, repo repository.DocumentRepository, log zerolog.Logger, metrics *Metrics) *OrphanSweeper {
	return &OrphanSweeper{store: store, repo: repo, log: log, metrics: metrics, now: time.Now}
}

// Sweep lists objects under prefix and removes the unreferenced ones last modified more than
// grace ago. The grace period keeps uploads whose insert is still in flight. With dryRun set
// orphans are reported but kept. A lookup failure aborts the sweep; a delete failure is counted.
func (w *OrphanSweeper) Sweep(ctx context.Context, prefix string, grace time.Duration, dryRun bool) (SweepResult, error) {
	const op = "service.Sweep"
	res := SweepResult{Orphans: []string{}}

	if prefix == "" {
		prefix = storage.RootPrefix
	}
	if !strings.HasPrefix(prefix, storage.RootPrefix) {
		return res, apperr.Validation(op, "prefix", "prefix must start with "+storage.RootPrefix)
	}
	if grace < 0 {
		return res, apperr.Validation(op, "grace", "grace must not be negative")
	}

	objs, err := w.store.List(ctx, prefix)
	if err != nil {
		return res, err
	}
	cutoff := w.now().Add(-grace)

	for _, obj := range objs {
		res.Scanned++
		if obj.LastModified.After(cutoff) {
			res.Recent++
			continue
		}
		referenced, err := w.repo.StoragePathExists(ctx, obj.Key)
		if err != nil {
			return res, err
		}
		if referenced {
			res.Referenced++
			continue
		}
		if dryRun {
			res.Orphans = append(res.Orphans, obj.Key)
			continue
		}
		if err := w.store.Delete(ctx, obj.Key); err != nil {
			res.Failed++
			w.log.Error().Err(err).Str("storage_path", obj.Key).Msg("orphan_delete_failed")
			continue
		}
		res.Removed++
		res.Orphans = append(res.Orphans, obj.Key)
		w.metrics.orphanRemoved()
	}

	w.log.Info().
		Str("prefix", prefix).
		Bool("dry_run", dryRun).
		Int("scanned", res.Scanned).
		Int("removed", res.Removed).
		Int("failed", res.Failed).
		Msg("orphan_sweep_finished")
	return res, nil
}
