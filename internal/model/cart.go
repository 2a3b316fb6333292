package model

import "github.com/google/uuid"

// CartItem belongs to a shopping session. Sessions are opaque ids handed out
// per terminal tab, not authenticated users, so concurrent terminals on one
// login never collide. Cart rows are cleared (soft-deleted) on checkout or
// explicit abandonment.
type CartItem struct {
	SyncBase
	SessionID   string    `gorm:"type:varchar(64);index;not null" json:"session_id" validate:"required"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id" validate:"uuid_required"`
	ProductName string    `gorm:"type:varchar(255)" json:"product_name"`
	Quantity    int       `gorm:"not null;default:1" json:"quantity" validate:"required,gt=0"`
	UnitPrice   int64     `gorm:"not null" json:"unit_price"` // display price at add time
}
