package store

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-pos-sync/internal/model"
)

func (s *Local) CreateProduct(p *model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.Synced = false
	return s.db.Create(p).Error
}

// UpdateProduct saves a locally edited product. Save writes every column in
// one statement, so the dirty flag lands with the data.
func (s *Local) UpdateProduct(p *model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.Synced = false
	p.UpdatedAt = time.Time{} // let gorm restamp
	return s.db.Save(p).Error
}

// SoftDeleteProduct tombstones a product. One UPDATE sets deleted_at,
// updated_at and synced together so the tombstone propagates like any other
// change.
func (s *Local) SoftDeleteProduct(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	res := s.db.Model(&model.Product{}).Where("id = ? AND deleted_at IS NULL", id).
		UpdateColumns(map[string]interface{}{
			"deleted_at": now,
			"updated_at": now,
			"synced":     false,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *Local) GetProduct(id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := s.db.First(&p, "id = ?", id).Error
	return &p, err
}

func (s *Local) GetProductBySKU(sku string) (*model.Product, error) {
	var p model.Product
	err := s.db.First(&p, "sku = ?", sku).Error
	return &p, err
}

// GetProductAny looks a product up including tombstones. The sync applier
// needs the stored version even when the row is soft-deleted.
func (s *Local) GetProductAny(id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := s.db.Unscoped().First(&p, "id = ?", id).Error
	return &p, err
}

func (s *Local) ListProducts() ([]model.Product, error) {
	var ps []model.Product
	err := s.db.Order("name asc").Find(&ps).Error
	return ps, err
}

// SyncedProductIDs returns the ids of live products whose latest change has
// been pushed. Reconciliation diffs only this set, so a row still waiting to
// push is never swept or re-queued.
func (s *Local) SyncedProductIDs() ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.Model(&model.Product{}).Where("synced = ?", true).Pluck("id", &ids).Error
	return ids, err
}

// DirtyProducts returns unsynced products, tombstones included, oldest
// change first.
func (s *Local) DirtyProducts() ([]model.Product, error) {
	var ps []model.Product
	err := s.db.Unscoped().Where("synced = ?", false).Order("updated_at asc").Find(&ps).Error
	return ps, err
}

// MarkProductsSynced acknowledges a successful push. UpdateColumns leaves
// updated_at alone: bumping it here would make the ack look like a newer
// edit and corrupt conflict resolution.
func (s *Local) MarkProductsSynced(ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Model(&model.Product{}).Unscoped().Where("id IN ?", ids).
		UpdateColumns(map[string]interface{}{
			"synced":         true,
			"last_synced_at": at,
		}).Error
}

// MarkProductsDirty forces a re-push without faking an edit. The reconciler
// uses it for rows the cloud turned out to be missing.
func (s *Local) MarkProductsDirty(ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Model(&model.Product{}).Unscoped().Where("id IN ?", ids).
		UpdateColumn("synced", false).Error
}

// ApplyRemoteProduct upserts a remote version verbatim: timestamps and
// tombstone state come from the winner. Callers resolve conflicts first;
// this only writes. synced=true means "already on the cloud" (pull path),
// false queues the row for push (catalog path).
func (s *Local) ApplyRemoteProduct(p *model.Product, synced bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.Synced = synced
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(p).Error
}

// AdjustStockTx decrements (or restores) stock inside the caller's
// transaction. Updates restamps updated_at, and synced rides along in the
// same statement.
func AdjustStockTx(tx *gorm.DB, id uuid.UUID, delta int) error {
	res := tx.Model(&model.Product{}).Where("id = ? AND stock + ? >= 0", id, delta).
		Updates(map[string]interface{}{
			"stock":  gorm.Expr("stock + ?", delta),
			"synced": false,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}
