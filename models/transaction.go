package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Transaction is a posted grocery receipt. Immutable once created.
type Transaction struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	HouseholdID     uuid.UUID         `gorm:"type:uuid;index" json:"household_id"`
	Household       Household         `gorm:"foreignKey:HouseholdID" json:"-"`
	PaidBy          uuid.UUID         `gorm:"type:uuid" json:"paid_by"`
	Payer           User              `gorm:"foreignKey:PaidBy" json:"payer,omitempty"`
	FinalTotalCents int64             `gorm:"not null" json:"final_total_cents"`
	Items           []TransactionItem `gorm:"foreignKey:TransactionID" json:"items,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type TransactionItem struct {
	ID            uuid.UUID              `gorm:"type:uuid;primaryKey" json:"id"`
	TransactionID uuid.UUID              `gorm:"type:uuid;index" json:"transaction_id"`
	Name          string                 `gorm:"not null;size:255" json:"name"`
	PriceCents    int64                  `gorm:"not null" json:"price_cents"`
	SplitKind     string                 `gorm:"not null;size:20" json:"split_kind"` // individual, even_split, custom_split
	Shares        []TransactionItemShare `gorm:"foreignKey:ItemID" json:"shares,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

func (ti *TransactionItem) BeforeCreate(tx *gorm.DB) error {
	if ti.ID == uuid.Nil {
		ti.ID = uuid.New()
	}
	return nil
}

// TransactionItemShare is one member's cut of one item, as the split
// calculator produced it at post time.
type TransactionItemShare struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ItemID     uuid.UUID `gorm:"type:uuid;index" json:"item_id"`
	UserID     uuid.UUID `gorm:"type:uuid" json:"user_id"`
	ShareCents int64     `gorm:"not null" json:"share_cents"`
	CreatedAt  time.Time `json:"created_at"`
}

func (ts *TransactionItemShare) BeforeCreate(tx *gorm.DB) error {
	if ts.ID == uuid.Nil {
		ts.ID = uuid.New()
	}
	return nil
}

// Response structs
type TransactionResponse struct {
	ID              uuid.UUID                 `json:"id"`
	HouseholdID     uuid.UUID                 `json:"household_id"`
	PaidBy          uuid.UUID                 `json:"paid_by"`
	PayerName       string                    `json:"payer_name"`
	FinalTotalCents int64                     `json:"final_total_cents"`
	Items           []TransactionItemResponse `json:"items"`
	CreatedAt       time.Time                 `json:"created_at"`
}

type TransactionItemResponse struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	PriceCents int64           `json:"price_cents"`
	SplitKind  string          `json:"split_kind"`
	Shares     []ShareResponse `json:"shares"`
}

type ShareResponse struct {
	UserID     uuid.UUID `json:"user_id"`
	UserName   string    `json:"user_name"`
	ShareCents int64     `json:"share_cents"`
}
