package model

// StockStatus mirrors the catalog platform's availability states.
type StockStatus string

const (
	StockInStock     StockStatus = "in_stock"
	StockOutOfStock  StockStatus = "out_of_stock"
	StockOnBackorder StockStatus = "on_backorder"
)

type Product struct {
	SyncBase
	// SKU is unique among live rows; the service enforces it so a tombstoned
	// product does not block the catalog re-issuing its SKU under a new id.
	SKU         string      `gorm:"type:varchar(50);index;not null" json:"sku" validate:"required"`
	Name        string      `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Price       int64       `gorm:"not null;default:0" json:"price" validate:"gte=0"` // minor currency units
	Stock       int         `gorm:"default:0" json:"stock"`
	StockStatus StockStatus `gorm:"type:varchar(20);default:'in_stock'" json:"stock_status" validate:"omitempty,oneof=in_stock out_of_stock on_backorder"`
	Category    string      `gorm:"type:varchar(100)" json:"category"`
	Unit        string      `gorm:"type:varchar(20)" json:"unit"`

	// ImageOriginal is the catalog-side source URL; the three variants come out
	// of the image pipeline. Ingestion reuses the stored variants when the
	// source URL is unchanged.
	ImageOriginal string `gorm:"type:text" json:"image_original"`
	ImageThumb    string `gorm:"type:text" json:"image_thumb"`
	ImageMedium   string `gorm:"type:text" json:"image_medium"`
	ImageLarge    string `gorm:"type:text" json:"image_large"`
}
