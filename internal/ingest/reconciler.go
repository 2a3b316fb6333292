package ingest

import (
	"context"
	gosync "sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-pos-sync/internal/catalog"
	"go-pos-sync/internal/model"
	"go-pos-sync/internal/store"
)

// CloudIndex is the slice of the cloud store the reconciler needs for drift
// repair.
type CloudIndex interface {
	GetAllProductIDs(ctx context.Context) ([]uuid.UUID, error)
}

// Reconciler runs the daily full sweep: a complete catalog walk to repair
// anything the incremental feed missed, deletion detection for products that
// vanished without a webhook, and a cloud diff to re-queue rows the cloud
// somehow lost.
type Reconciler struct {
	catalog   *catalog.Client
	applier   *Applier
	local     *store.Local
	cloud     CloudIndex
	hour      int
	pageSize  int
	pageDelay time.Duration
	logger    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     gosync.WaitGroup
}

func NewReconciler(cat *catalog.Client, applier *Applier, local *store.Local, cloud CloudIndex, hour, pageSize int, pageDelay time.Duration, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		catalog:   cat,
		applier:   applier,
		local:     local,
		cloud:     cloud,
		hour:      hour,
		pageSize:  pageSize,
		pageDelay: pageDelay,
		logger:    logger,
	}
}

// Start schedules the sweep at the configured low-traffic hour, then every
// 24 hours after.
func (r *Reconciler) Start() {
	r.ctx, r.cancel = context.WithCancel(context.Background())
	r.wg.Add(1)
	go r.run()
}

func (r *Reconciler) Stop() {
	if r.cancel != nil {
		r.cancel()
		r.wg.Wait()
	}
}

func (r *Reconciler) run() {
	defer r.wg.Done()
	for {
		wait := time.Until(nextRunAfter(time.Now(), r.hour))
		select {
		case <-r.ctx.Done():
			return
		case <-time.After(wait):
			if err := r.RunOnce(r.ctx); err != nil {
				r.logger.Warn("reconciliation failed", zap.Error(err))
			}
		}
	}
}

// nextRunAfter returns the next occurrence of hour:00 strictly after now.
func nextRunAfter(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// RunOnce performs one full reconciliation pass.
func (r *Reconciler) RunOnce(ctx context.Context) error {
	start := time.Now()

	seen, err := r.fullWalk(ctx)
	if err != nil {
		return err
	}

	deleted, err := r.detectDeletions(ctx)
	if err != nil {
		return err
	}

	// drift repair is best effort: the catalog half of the sweep already
	// succeeded and should count even when the cloud is unreachable
	requeued, err := r.repairCloudDrift(ctx)
	if err != nil {
		r.logger.Warn("cloud drift check skipped", zap.Error(err))
	}

	if err := r.local.SetCheckpoint(model.CheckpointLastReconcile, start); err != nil {
		return err
	}
	r.logger.Info("reconciliation complete",
		zap.Int("walked", seen),
		zap.Int("deleted", deleted),
		zap.Int("requeued", requeued),
		zap.Duration("took", time.Since(start)))
	return nil
}

func (r *Reconciler) fullWalk(ctx context.Context) (int, error) {
	seen := 0
	for page := 1; ; page++ {
		records, err := r.catalog.List(ctx, time.Time{}, page, r.pageSize)
		if err != nil {
			return seen, err
		}
		seen += len(records)
		for _, rec := range records {
			if _, err := r.applier.ApplyCatalogRecord(ctx, rec); err != nil {
				r.logger.Warn("reconcile apply failed",
					zap.String("id", rec.ID.String()), zap.Error(err))
			}
		}
		if len(records) < r.pageSize {
			return seen, nil
		}
		select {
		case <-ctx.Done():
			return seen, ctx.Err()
		case <-time.After(r.pageDelay):
		}
	}
}

// detectDeletions tombstones synced local products the catalog no longer
// lists. Deletions on the platform do not always produce a webhook; this is
// where they finally land. Only pushed rows are judged, so a product created
// at the terminal survives until it has reached the cloud at least once.
func (r *Reconciler) detectDeletions(ctx context.Context) (int, error) {
	catalogIDs, err := r.catalog.ListAllIDs(ctx)
	if err != nil {
		return 0, err
	}
	localIDs, err := r.local.SyncedProductIDs()
	if err != nil {
		return 0, err
	}

	known := make(map[uuid.UUID]struct{}, len(catalogIDs))
	for _, id := range catalogIDs {
		known[id] = struct{}{}
	}

	deleted := 0
	for _, id := range localIDs {
		if _, ok := known[id]; ok {
			continue
		}
		if err := r.local.SoftDeleteProduct(id); err != nil {
			if err == gorm.ErrRecordNotFound {
				continue
			}
			return deleted, err
		}
		deleted++
		r.logger.Info("product removed from catalog", zap.String("id", id.String()))
	}
	return deleted, nil
}

// repairCloudDrift re-queues synced local products the cloud turns out not
// to know, so the next push recreates them.
func (r *Reconciler) repairCloudDrift(ctx context.Context) (int, error) {
	cloudIDs, err := r.cloud.GetAllProductIDs(ctx)
	if err != nil {
		return 0, err
	}
	localIDs, err := r.local.SyncedProductIDs()
	if err != nil {
		return 0, err
	}

	present := make(map[uuid.UUID]struct{}, len(cloudIDs))
	for _, id := range cloudIDs {
		present[id] = struct{}{}
	}

	var missing []uuid.UUID
	for _, id := range localIDs {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	if err := r.local.MarkProductsDirty(missing); err != nil {
		return 0, err
	}
	return len(missing), nil
}
