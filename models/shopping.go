package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Shopping item status values
const (
	ShoppingStatusPending   = "pending"
	ShoppingStatusPurchased = "purchased"
)

type ShoppingListItem struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	HouseholdID uuid.UUID  `gorm:"type:uuid;index" json:"household_id"`
	Household   Household  `gorm:"foreignKey:HouseholdID" json:"-"`
	Name        string     `gorm:"not null;size:255" json:"name"`
	Category    string     `gorm:"size:50" json:"category,omitempty"` // produce, dairy, pantry, household, other
	RequestedBy uuid.UUID  `gorm:"type:uuid" json:"requested_by"`
	Requester   User       `gorm:"foreignKey:RequestedBy" json:"requester,omitempty"`
	BountyCents int64      `gorm:"default:0" json:"bounty_cents"`
	Status      string     `gorm:"default:pending;size:20;index" json:"status"`
	PurchasedBy *uuid.UUID `gorm:"type:uuid" json:"purchased_by,omitempty"`
	PurchasedAt *time.Time `json:"purchased_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (s *ShoppingListItem) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Request structs
type CreateShoppingItemRequest struct {
	Name        string `json:"name" binding:"required"`
	Category    string `json:"category"`
	BountyCents int64  `json:"bounty_cents" binding:"gte=0"`
}

type UpdateShoppingItemRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	BountyCents *int64 `json:"bounty_cents"`
}

type UpdateShoppingStatusRequest struct {
	Status         string `json:"status" binding:"required,oneof=pending purchased"`
	ExpectedStatus string `json:"expected_status" binding:"required,oneof=pending purchased"`
}
