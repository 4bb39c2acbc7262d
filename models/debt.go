package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DebtLedgerEntry is one pairwise IOU created when a transaction posts.
// Entries are append-only; settling marks IsSettled, never a partial amount.
type DebtLedgerEntry struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	HouseholdID   uuid.UUID `gorm:"type:uuid;index" json:"household_id"`
	BorrowerID    uuid.UUID `gorm:"type:uuid;index" json:"borrower_id"`
	Borrower      User      `gorm:"foreignKey:BorrowerID" json:"borrower,omitempty"`
	LenderID      uuid.UUID `gorm:"type:uuid;index" json:"lender_id"`
	Lender        User      `gorm:"foreignKey:LenderID" json:"lender,omitempty"`
	AmountCents   int64     `gorm:"not null" json:"amount_cents"`
	IsSettled     bool      `gorm:"default:false;index" json:"is_settled"`
	TransactionID uuid.UUID `gorm:"type:uuid" json:"transaction_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (d *DebtLedgerEntry) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// Balance represents the netted position between two members
type Balance struct {
	From     uuid.UUID `json:"from"`
	FromName string    `json:"from_name"`
	To       uuid.UUID `json:"to"`
	ToName   string    `json:"to_name"`
	NetCents int64     `json:"net_cents"`
	Currency string    `json:"currency"`
}

// FriendBalance represents the overall balance with a single housemate
type FriendBalance struct {
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	NetCents  int64     `json:"net_cents"` // positive = they owe you, negative = you owe them
	Currency  string    `json:"currency"`
}

// HouseholdBalanceSummary is returned for GET /api/households/:id/balances
type HouseholdBalanceSummary struct {
	HouseholdID     uuid.UUID `json:"household_id"`
	HouseholdName   string    `json:"household_name"`
	Balances        []Balance `json:"balances"`
	TotalSpentCents int64     `json:"total_spent_cents"`
}

// OverallBalanceSummary is returned for GET /api/balances
type OverallBalanceSummary struct {
	TotalOwedCents  int64           `json:"total_owed_cents"`  // total others owe you
	TotalOwingCents int64           `json:"total_owing_cents"` // total you owe others
	Friends         []FriendBalance `json:"friends"`
}
