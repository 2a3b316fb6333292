package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SyncBase handles ID (UUID) and the change-tracking columns every replicated
// entity carries. UpdatedAt is authoritative for conflict resolution; DeletedAt
// marks a soft delete (rows are never physically removed, so tombstones can
// propagate to the cloud store). Synced is the sole authority for "this record
// still needs to be pushed": false after every local mutation, true only once
// the cloud store has acknowledged the write.
type SyncBase struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`

	Synced       bool       `gorm:"index;default:false" json:"synced"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
}

// BeforeCreate generates a UUID unless the record already carries one
// (records applied from the remote side keep their original id).
func (base *SyncBase) BeforeCreate(tx *gorm.DB) (err error) {
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	return
}

// Deleted reports whether the record is a tombstone.
func (base *SyncBase) Deleted() bool {
	return base.DeletedAt.Valid
}
