package sync

import (
	"context"
	"time"

	"go-pos-sync/internal/model"
)

// CloudStore is the slice of the cloud the coordinator talks to.
// *store.Cloud implements it; tests substitute a fake.
type CloudStore interface {
	Ensure(ctx context.Context) error
	UpsertProduct(ctx context.Context, p *model.Product) error
	UpsertSale(ctx context.Context, s *model.Sale) (string, error)
	UpsertCartItem(ctx context.Context, item *model.CartItem) error
	GetModifiedSince(ctx context.Context, since time.Time) ([]model.Product, error)
}

// RemoteApplier lands pulled products in the local store after conflict
// resolution. Implemented by the ingest applier; an interface here keeps
// the coordinator free of ingest's catalog types.
type RemoteApplier interface {
	ApplyProducts(ctx context.Context, remote []model.Product) (applied, skipped int, err error)
}

// Events receives status changes for fan-out to connected terminals. May
// be nil.
type Events interface {
	SyncStatus(Status)
}
