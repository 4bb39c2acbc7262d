package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Activity struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	HouseholdID   uuid.UUID `gorm:"type:uuid;index" json:"household_id"`
	HouseholdName string    `gorm:"-" json:"household_name,omitempty"`
	UserID        uuid.UUID `gorm:"type:uuid" json:"user_id"`
	User          User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Type          string    `gorm:"not null;size:30" json:"type"` // transaction_posted, bounty_claimed, item_added, item_purchased, debt_settled, member_joined, member_left
	ReferenceID   uuid.UUID `gorm:"type:uuid" json:"reference_id,omitempty"`
	Description   string    `json:"description"`
	CreatedAt     time.Time `json:"created_at"`
}

func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
