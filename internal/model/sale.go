package model

import "github.com/google/uuid"

type SaleStatus string

const (
	SaleCompleted SaleStatus = "completed"
	SalePending   SaleStatus = "pending"
	SaleCancelled SaleStatus = "cancelled"
)

type PaymentMethod string

const (
	PayCash     PaymentMethod = "cash"
	PayCard     PaymentMethod = "card"
	PayTransfer PaymentMethod = "transfer"
	PayMixed    PaymentMethod = "mixed"
)

// Sale is created atomically at checkout together with its items and never
// structurally mutated afterward; only Status may transition. The embedded
// Synced flag is the sale's synced-to-remote marker.
type Sale struct {
	SyncBase
	SessionID     string        `gorm:"type:varchar(64);index;not null" json:"session_id" validate:"required"`
	Total         int64         `gorm:"not null" json:"total"` // snapshot, never recomputed
	ItemCount     int           `gorm:"not null" json:"item_count"`
	Status        SaleStatus    `gorm:"type:varchar(20);not null;default:'completed'" json:"status" validate:"required,oneof=completed pending cancelled"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(20);not null" json:"payment_method" validate:"required,oneof=cash card transfer mixed"`

	// RemoteOrderRef is assigned by the cloud store on first successful push.
	RemoteOrderRef *string `gorm:"type:varchar(64)" json:"remote_order_ref,omitempty"`

	Items []SaleItem `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"items,omitempty" validate:"-"`
}

// SaleItem belongs to exactly one Sale. ProductID is a weak reference: the
// product may have changed or been deleted since, so the item keeps its own
// price snapshot.
type SaleItem struct {
	SyncBase
	SaleID      uuid.UUID `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id" validate:"uuid_required"`
	ProductName string    `gorm:"type:varchar(255)" json:"product_name"`
	Quantity    int       `gorm:"not null" json:"quantity" validate:"required,gt=0"`
	UnitPrice   int64     `gorm:"not null" json:"unit_price"`
	Subtotal    int64     `gorm:"not null" json:"subtotal"`
}
