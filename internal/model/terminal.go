package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Terminal is a registered point-of-sale device. Terminals are device-local
// credentials and are never replicated to the cloud store.
type Terminal struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	Name       string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"name" validate:"required"`
	AccessKey  string     `gorm:"type:varchar(255);not null" json:"-"` // bcrypt hash
	IsActive   bool       `gorm:"default:true" json:"is_active"`
	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`
}

func (t *Terminal) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}

// SetAccessKey hashes and sets the terminal's access key.
func (t *Terminal) SetAccessKey(key string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	t.AccessKey = string(hashed)
	return nil
}

// CheckAccessKey verifies the provided key against the stored hash.
func (t *Terminal) CheckAccessKey(key string) bool {
	return bcrypt.CompareHashAndPassword([]byte(t.AccessKey), []byte(key)) == nil
}
