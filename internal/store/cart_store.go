package store

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-pos-sync/internal/model"
)

// AddCartItem adds a product to a session's cart, folding repeats into the
// existing line.
func (s *Local) AddCartItem(item *model.CartItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Transaction(func(tx *gorm.DB) error {
		var existing model.CartItem
		err := tx.Where("session_id = ? AND product_id = ?", item.SessionID, item.ProductID).
			First(&existing).Error
		if err == nil {
			return tx.Model(&existing).Updates(map[string]interface{}{
				"quantity": existing.Quantity + item.Quantity,
				"synced":   false,
			}).Error
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		item.Synced = false
		return tx.Create(item).Error
	})
}

func (s *Local) UpdateCartQuantity(id uuid.UUID, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := s.db.Model(&model.CartItem{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"quantity": quantity,
			"synced":   false,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *Local) RemoveCartItem(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	res := s.db.Model(&model.CartItem{}).Where("id = ? AND deleted_at IS NULL", id).
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

func (s *Local) ListCart(sessionID string) ([]model.CartItem, error) {
	var items []model.CartItem
	err := s.db.Where("session_id = ?", sessionID).Order("created_at asc").Find(&items).Error
	return items, err
}

// ClearCartTx tombstones every line of a session inside the caller's
// transaction. Checkout uses this so the cart empties atomically with the
// sale insert.
func ClearCartTx(tx *gorm.DB, sessionID string) error {
	now := time.Now()
	return tx.Model(&model.CartItem{}).
		Where("session_id = ? AND deleted_at IS NULL", sessionID).
		UpdateColumns(map[string]interface{}{
			"deleted_at": now,
			"updated_at": now,
			"synced":     false,
		}).Error
}

// DirtyCartItems returns unsynced cart lines, tombstones included.
func (s *Local) DirtyCartItems() ([]model.CartItem, error) {
	var items []model.CartItem
	err := s.db.Unscoped().Where("synced = ?", false).Order("updated_at asc").Find(&items).Error
	return items, err
}

func (s *Local) MarkCartItemsSynced(ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Model(&model.CartItem{}).Unscoped().Where("id IN ?", ids).
		UpdateColumns(map[string]interface{}{
			"synced":         true,
			"last_synced_at": at,
		}).Error
}
