package ingest

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-pos-sync/internal/catalog"
	"go-pos-sync/internal/images"
	"go-pos-sync/internal/model"
	"go-pos-sync/internal/store"
	"go-pos-sync/internal/sync"
)

// Notifier wakes the sync coordinator after an apply queued new work.
// *sync.Coordinator implements it.
type Notifier interface {
	NotifyLocalChange()
}

// Applier lands remote product versions in the local store. Every ingestion
// path (webhook, poll, reconcile, cloud pull) funnels through it, so
// conflict resolution and image handling behave identically no matter how a
// change arrived. Applying the same version twice converges to the same row.
type Applier struct {
	local    *store.Local
	images   images.Pipeline
	notifier Notifier
	logger   *zap.Logger
}

func NewApplier(local *store.Local, pipeline images.Pipeline, notifier Notifier, logger *zap.Logger) *Applier {
	return &Applier{local: local, images: pipeline, notifier: notifier, logger: logger}
}

// SetNotifier binds the coordinator after construction. The applier and the
// coordinator reference each other, so one side has to attach late. Call it
// before any ingestion source starts.
func (a *Applier) SetNotifier(n Notifier) {
	a.notifier = n
}

// ApplyCatalogRecord applies one record from the catalog platform. The row
// lands dirty so the next cycle mirrors it to the cloud. Returns false when
// a newer local version won.
func (a *Applier) ApplyCatalogRecord(ctx context.Context, rec catalog.Record) (bool, error) {
	incoming := recordToProduct(rec)
	return a.apply(ctx, incoming, true, false)
}

// ApplyProducts applies a batch pulled from the cloud store. Rows land
// synced: they are already where a push would put them. Image variants were
// derived by whichever terminal first saw the source, so they ride along
// untouched.
func (a *Applier) ApplyProducts(ctx context.Context, remote []model.Product) (int, int, error) {
	applied, skipped := 0, 0
	for i := range remote {
		ok, err := a.apply(ctx, &remote[i], false, true)
		if err != nil {
			return applied, skipped, err
		}
		if ok {
			applied++
		} else {
			skipped++
		}
	}
	return applied, skipped, nil
}

func (a *Applier) apply(ctx context.Context, incoming *model.Product, deriveImages, synced bool) (bool, error) {
	local, err := a.local.GetProductAny(incoming.ID)
	exists := true
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return false, err
		}
		exists = false
	}

	localVer := sync.Version{}
	if exists {
		localVer = sync.Version{UpdatedAt: local.UpdatedAt, Deleted: local.Deleted()}
	}
	remoteVer := sync.Version{UpdatedAt: incoming.UpdatedAt, Deleted: incoming.Deleted()}
	if sync.Resolve(localVer, remoteVer) == sync.LocalWins {
		a.logger.Debug("kept newer local version",
			zap.String("id", incoming.ID.String()),
			zap.Time("local", local.UpdatedAt),
			zap.Time("remote", incoming.UpdatedAt))
		return false, nil
	}

	// Re-seeing the version we already store (full walks do this nightly)
	// must not move the row in or out of the push queue.
	if exists && incoming.UpdatedAt.Equal(local.UpdatedAt) {
		synced = local.Synced
	}

	// deletion notices can arrive as sparse bodies (id + timestamp only);
	// a tombstone must not blank out what we know about the product
	if incoming.Deleted() && incoming.SKU == "" {
		if !exists {
			return false, nil
		}
		incoming.SKU = local.SKU
		incoming.Name = local.Name
		incoming.Price = local.Price
		incoming.Stock = local.Stock
		incoming.StockStatus = local.StockStatus
		incoming.Category = local.Category
		incoming.Unit = local.Unit
		incoming.ImageOriginal = local.ImageOriginal
	}

	if exists {
		if incoming.CreatedAt.IsZero() {
			incoming.CreatedAt = local.CreatedAt
		}
		// applying a remote version is not a push; the push ack owns this column
		incoming.LastSyncedAt = local.LastSyncedAt
	}
	if deriveImages {
		if exists && local.ImageOriginal == incoming.ImageOriginal && local.ImageThumb != "" {
			// same source, keep the variants we already derived
			incoming.ImageThumb = local.ImageThumb
			incoming.ImageMedium = local.ImageMedium
			incoming.ImageLarge = local.ImageLarge
		} else if incoming.ImageOriginal != "" {
			v := a.images.Derive(ctx, incoming.ImageOriginal)
			incoming.ImageThumb = v.Thumb
			incoming.ImageMedium = v.Medium
			incoming.ImageLarge = v.Large
		}
	}

	if err := a.local.ApplyRemoteProduct(incoming, synced); err != nil {
		return false, err
	}
	if !synced && a.notifier != nil {
		a.notifier.NotifyLocalChange()
	}
	return true, nil
}

func recordToProduct(rec catalog.Record) *model.Product {
	p := &model.Product{
		SyncBase: model.SyncBase{
			ID:        rec.ID,
			UpdatedAt: rec.UpdatedAt,
		},
		SKU:           rec.SKU,
		Name:          rec.Name,
		Price:         rec.Price,
		Stock:         rec.Stock,
		StockStatus:   model.StockStatus(rec.StockStatus),
		Category:      rec.Category,
		Unit:          rec.Unit,
		ImageOriginal: rec.ImageURL,
	}
	if p.StockStatus == "" {
		if p.Stock > 0 {
			p.StockStatus = model.StockInStock
		} else {
			p.StockStatus = model.StockOutOfStock
		}
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	if rec.Deleted {
		p.DeletedAt = gorm.DeletedAt{Time: p.UpdatedAt, Valid: true}
	}
	return p
}
