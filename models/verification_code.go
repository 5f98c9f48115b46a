package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PurposeRegistration  = "registration"
	PurposePasswordReset = "password_reset"
)

// VerificationCode is a single-use code mailed to an address to gate
// registration or a password reset. It is deleted the moment it verifies.
type VerificationCode struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"size:150;index;not null" json:"email"`
	Code      string    `gorm:"size:10;not null" json:"code"`
	Purpose   string    `gorm:"size:30;not null" json:"purpose"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (v *VerificationCode) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
