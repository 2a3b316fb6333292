package store

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-pos-sync/internal/model"
)

// CreateSaleTx inserts a sale with its line items inside the caller's
// transaction. Items snapshot name and price at sale time, so later product
// edits never rewrite history.
func CreateSaleTx(tx *gorm.DB, sale *model.Sale) error {
	sale.Synced = false
	for i := range sale.Items {
		sale.Items[i].Synced = false
	}
	return tx.Create(sale).Error
}

func (s *Local) GetSale(id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	err := s.db.Preload("Items").First(&sale, "id = ?", id).Error
	return &sale, err
}

func (s *Local) ListSales(since time.Time, limit int) ([]model.Sale, error) {
	q := s.db.Preload("Items").Order("created_at desc")
	if !since.IsZero() {
		q = q.Where("created_at >= ?", since)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var sales []model.Sale
	err := q.Find(&sales).Error
	return sales, err
}

// CancelSale flips a completed or pending sale to cancelled and restores
// stock, as one local transaction. The status change is a tracked mutation
// and will push on the next cycle.
func (s *Local) CancelSale(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Transaction(func(tx *gorm.DB) error {
		var sale model.Sale
		if err := tx.Preload("Items").First(&sale, "id = ?", id).Error; err != nil {
			return err
		}
		if sale.Status == model.SaleCancelled {
			return ErrSaleFinal
		}
		for _, item := range sale.Items {
			if err := AdjustStockTx(tx, item.ProductID, item.Quantity); err != nil {
				// restoring is always non-negative, so a zero-row update can
				// only mean the product was delisted since the sale
				if errors.Is(err, ErrInsufficientStock) {
					continue
				}
				return err
			}
		}
		return tx.Model(&sale).Updates(map[string]interface{}{
			"status": model.SaleCancelled,
			"synced": false,
		}).Error
	})
}

// DirtySales returns unsynced sales with their items, oldest first.
func (s *Local) DirtySales() ([]model.Sale, error) {
	var sales []model.Sale
	err := s.db.Unscoped().Preload("Items").Where("synced = ?", false).
		Order("updated_at asc").Find(&sales).Error
	return sales, err
}

// MarkSaleSynced records a successful push. The remote order reference is
// sync bookkeeping, not a business edit, so nothing here touches updated_at
// or the dirty flag of other columns.
func (s *Local) MarkSaleSynced(id uuid.UUID, remoteRef string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cols := map[string]interface{}{
		"synced":         true,
		"last_synced_at": at,
	}
	if remoteRef != "" {
		cols["remote_order_ref"] = remoteRef
	}
	if err := s.db.Model(&model.Sale{}).Unscoped().Where("id = ?", id).
		UpdateColumns(cols).Error; err != nil {
		return err
	}
	return s.db.Model(&model.SaleItem{}).Unscoped().Where("sale_id = ?", id).
		UpdateColumns(map[string]interface{}{
			"synced":         true,
			"last_synced_at": at,
		}).Error
}
