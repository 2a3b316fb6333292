package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-pos-sync/internal/model"
)

// Cloud is the remote Postgres store shared by every terminal. All writes
// are idempotent upserts guarded by updated_at, so replaying a push after a
// mid-cycle crash converges instead of corrupting.
//
// Connecting is lazy: the handle is built offline and the schema is ensured
// on the first cycle that reaches the network.
type Cloud struct {
	db *gorm.DB

	mu    sync.Mutex
	ready bool
}

func NewCloud(db *gorm.DB) *Cloud {
	return &Cloud{db: db}
}

// Ping reports whether the cloud store is reachable right now.
func (c *Cloud) Ping(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Ensure migrates the cloud schema once per process. Safe to call every
// cycle; it retries until a cycle finally reaches the database.
func (c *Cloud) Ensure(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ready {
		return nil
	}
	if err := c.Ping(ctx); err != nil {
		return err
	}
	db := c.db.WithContext(ctx)
	if err := db.AutoMigrate(
		&model.Product{},
		&model.Sale{},
		&model.SaleItem{},
		&model.CartItem{},
	); err != nil {
		return fmt.Errorf("cloud migrate: %w", err)
	}
	// Order references come from a shared sequence so every terminal's
	// sales land in one human-readable series.
	if err := db.Exec("CREATE SEQUENCE IF NOT EXISTS order_refs").Error; err != nil {
		return fmt.Errorf("order_refs sequence: %w", err)
	}
	c.ready = true
	return nil
}

var productColumns = []string{
	"sku", "name", "price", "stock", "stock_status", "category", "unit",
	"image_original", "image_thumb", "image_medium", "image_large",
	"updated_at", "deleted_at",
}

// UpsertProduct pushes one local product. The guard keeps an older version
// from clobbering a newer concurrent edit by another terminal; when it
// loses, the newer row comes back on the next pull.
func (c *Cloud) UpsertProduct(ctx context.Context, p *model.Product) error {
	return c.db.WithContext(ctx).
		Omit("synced", "last_synced_at").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(productColumns),
			Where: clause.Where{Exprs: []clause.Expression{
				gorm.Expr("excluded.updated_at >= products.updated_at"),
			}},
		}).Create(p).Error
}

// UpsertSale pushes a sale with its items and returns the order reference,
// assigning one from the shared sequence on first arrival.
func (c *Cloud) UpsertSale(ctx context.Context, sale *model.Sale) (string, error) {
	var ref string
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations, "synced", "last_synced_at", "remote_order_ref").
			Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"session_id", "total", "item_count", "status",
					"payment_method", "updated_at", "deleted_at",
				}),
				Where: clause.Where{Exprs: []clause.Expression{
					gorm.Expr("excluded.updated_at >= sales.updated_at"),
				}},
			}).Create(sale).Error; err != nil {
			return err
		}
		for i := range sale.Items {
			if err := tx.Omit("synced", "last_synced_at").
				Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "id"}},
					DoNothing: true,
				}).Create(&sale.Items[i]).Error; err != nil {
				return err
			}
		}

		var row struct{ RemoteOrderRef *string }
		if err := tx.Model(&model.Sale{}).Unscoped().
			Select("remote_order_ref").Where("id = ?", sale.ID).
			Scan(&row).Error; err != nil {
			return err
		}
		if row.RemoteOrderRef != nil && *row.RemoteOrderRef != "" {
			ref = *row.RemoteOrderRef
			return nil
		}
		var seq int64
		if err := tx.Raw("SELECT nextval('order_refs')").Scan(&seq).Error; err != nil {
			return err
		}
		ref = fmt.Sprintf("SO-%08d", seq)
		return tx.Model(&model.Sale{}).Unscoped().Where("id = ?", sale.ID).
			UpdateColumn("remote_order_ref", ref).Error
	})
	return ref, err
}

// UpsertCartItem pushes a cart line, mostly for session continuity across
// terminal restarts.
func (c *Cloud) UpsertCartItem(ctx context.Context, item *model.CartItem) error {
	return c.db.WithContext(ctx).
		Omit("synced", "last_synced_at").
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"session_id", "product_id", "product_name", "quantity",
				"unit_price", "updated_at", "deleted_at",
			}),
			Where: clause.Where{Exprs: []clause.Expression{
				gorm.Expr("excluded.updated_at >= cart_items.updated_at"),
			}},
		}).Create(item).Error
}

// GetModifiedSince returns every product another terminal changed after the
// given checkpoint, tombstones included, oldest first.
func (c *Cloud) GetModifiedSince(ctx context.Context, since time.Time) ([]model.Product, error) {
	var ps []model.Product
	err := c.db.WithContext(ctx).Unscoped().
		Where("updated_at > ?", since).
		Order("updated_at asc").
		Find(&ps).Error
	return ps, err
}

// GetAllProductIDs returns every product id the cloud knows, tombstones
// included. The reconciler diffs this against the local set to repair drift;
// counting tombstones as present keeps it from resurrecting rows another
// terminal deleted on purpose.
func (c *Cloud) GetAllProductIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := c.db.WithContext(ctx).Unscoped().Model(&model.Product{}).Pluck("id", &ids).Error
	return ids, err
}
