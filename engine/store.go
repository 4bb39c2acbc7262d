package engine

import (
	"context"
	"time"
)

// ItemStatus is the lifecycle state of a shopping-list item.
type ItemStatus string

const (
	ItemPending   ItemStatus = "pending"
	ItemPurchased ItemStatus = "purchased"
)

// ReceiptLineItem is one line of the in-progress receipt. It lives only inside
// an expense-entry session and is never persisted until the session posts.
type ReceiptLineItem struct {
	ID           string
	RawName      string
	PriceCents   int64
	DisplayPrice string
	Assignment   Assignment
}

// ShoppingItem is the engine's view of an open shopping-list entry.
type ShoppingItem struct {
	ID          string
	HouseholdID string
	Name        string
	RequestedBy string
	BountyCents int64
	Status      ItemStatus
	CreatedAt   time.Time
}

// Transaction is a posted receipt.
type Transaction struct {
	ID              string
	HouseholdID     string
	PayerID         string
	FinalTotalCents int64
	CreatedAt       time.Time
}

// TransactionItem is one persisted line of a posted transaction, with the
// per-member shares the split calculator produced for it.
type TransactionItem struct {
	Name       string
	PriceCents int64
	SplitKind  AssignmentKind
	Shares     map[string]int64
}

// DebtEntry is one pairwise IOU created by a posted transaction.
type DebtEntry struct {
	ID            string
	BorrowerID    string
	LenderID      string
	AmountCents   int64
	IsSettled     bool
	TransactionID string
}

// Store is the record store the posting workflow writes through. Each call may
// fail with a network or authorization error; the engine does not retry.
// UpdateShoppingItemStatus takes the status the caller last observed and fails
// if the row has moved on, so a concurrent claim loses loudly instead of being
// silently overwritten.
type Store interface {
	ListOpenShoppingItems(ctx context.Context, householdID string) ([]ShoppingItem, error)
	CreateTransaction(ctx context.Context, payerID, householdID string, finalTotalCents int64) (Transaction, error)
	CreateTransactionItems(ctx context.Context, transactionID string, items []TransactionItem) error
	UpdateShoppingItemStatus(ctx context.Context, id string, expected, next ItemStatus, purchasedBy string) (ShoppingItem, error)
	CreateDebtLedgerEntries(ctx context.Context, entries []DebtEntry) ([]DebtEntry, error)
	ListUnsettledDebts(ctx context.Context, memberID string) ([]DebtEntry, error)
}
