package store

import (
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-pos-sync/internal/model"
)

// Local is the embedded on-device store. Every business mutation goes
// through it (or through Transaction with the Tx helpers below) so that the
// change-tracking rule holds: a write stamps updated_at and clears the
// synced flag in the same statement as the data it changes.
//
// A single mutex serializes writers; sqlite allows one writer at a time and
// queueing in-process beats retrying on SQLITE_BUSY.
type Local struct {
	db *gorm.DB
	mu sync.Mutex
}

func NewLocal(db *gorm.DB) (*Local, error) {
	if err := db.AutoMigrate(
		&model.Product{},
		&model.Sale{},
		&model.SaleItem{},
		&model.CartItem{},
		&model.SyncCheckpoint{},
		&model.Terminal{},
	); err != nil {
		return nil, err
	}
	return &Local{db: db}, nil
}

// DB exposes the raw handle for read-only queries in handlers and tests.
func (s *Local) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn in a single write transaction while holding the write
// lock. Multi-entity mutations (checkout) use this with the Tx helpers.
func (s *Local) Transaction(fn func(tx *gorm.DB) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Transaction(fn)
}

// CountDirty totals the records still waiting to push, across entities.
func (s *Local) CountDirty() (int64, error) {
	var total int64
	for _, m := range []interface{}{&model.Product{}, &model.Sale{}, &model.CartItem{}} {
		var n int64
		if err := s.db.Model(m).Unscoped().Where("synced = ?", false).Count(&n).Error; err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// Checkpoint returns the persisted timestamp under name, zero when the
// checkpoint has never been written.
func (s *Local) Checkpoint(name string) (time.Time, error) {
	var cp model.SyncCheckpoint
	err := s.db.First(&cp, "name = ?", name).Error
	if err == gorm.ErrRecordNotFound {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return cp.Value, nil
}

func (s *Local) SetCheckpoint(name string, value time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&model.SyncCheckpoint{Name: name, Value: value, UpdatedAt: time.Now()}).Error
}
