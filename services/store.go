package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"housetab-backend/database"
	"housetab-backend/engine"
	"housetab-backend/models"

	"github.com/google/uuid"
)

// ErrStatusConflict means the expected-status guard failed: the row moved on
// between the caller's read and its update.
var ErrStatusConflict = errors.New("shopping item status changed")

// LedgerStore backs the posting workflow with the gorm database. It is the
// record store the engine writes through; the engine never sees gorm.
type LedgerStore struct{}

func NewLedgerStore() *LedgerStore {
	return &LedgerStore{}
}

func (s *LedgerStore) ListOpenShoppingItems(ctx context.Context, householdID string) ([]engine.ShoppingItem, error) {
	hid, err := uuid.Parse(householdID)
	if err != nil {
		return nil, fmt.Errorf("invalid household id: %w", err)
	}

	var rows []models.ShoppingListItem
	err = database.DB.WithContext(ctx).
		Where("household_id = ? AND status = ?", hid, models.ShoppingStatusPending).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	items := make([]engine.ShoppingItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, toEngineShoppingItem(row))
	}
	return items, nil
}

func (s *LedgerStore) CreateTransaction(ctx context.Context, payerID, householdID string, finalTotalCents int64) (engine.Transaction, error) {
	payer, err := uuid.Parse(payerID)
	if err != nil {
		return engine.Transaction{}, fmt.Errorf("invalid payer id: %w", err)
	}
	hid, err := uuid.Parse(householdID)
	if err != nil {
		return engine.Transaction{}, fmt.Errorf("invalid household id: %w", err)
	}

	tx := models.Transaction{
		HouseholdID:     hid,
		PaidBy:          payer,
		FinalTotalCents: finalTotalCents,
	}
	if err := database.DB.WithContext(ctx).Create(&tx).Error; err != nil {
		return engine.Transaction{}, err
	}

	return engine.Transaction{
		ID:              tx.ID.String(),
		HouseholdID:     householdID,
		PayerID:         payerID,
		FinalTotalCents: tx.FinalTotalCents,
		CreatedAt:       tx.CreatedAt,
	}, nil
}

func (s *LedgerStore) CreateTransactionItems(ctx context.Context, transactionID string, items []engine.TransactionItem) error {
	txID, err := uuid.Parse(transactionID)
	if err != nil {
		return fmt.Errorf("invalid transaction id: %w", err)
	}

	for _, item := range items {
		row := models.TransactionItem{
			TransactionID: txID,
			Name:          item.Name,
			PriceCents:    item.PriceCents,
			SplitKind:     item.SplitKind.String(),
		}
		if err := database.DB.WithContext(ctx).Create(&row).Error; err != nil {
			return err
		}
		for member, cents := range item.Shares {
			if cents == 0 {
				continue
			}
			memberID, err := uuid.Parse(member)
			if err != nil {
				return fmt.Errorf("invalid member id in shares: %w", err)
			}
			share := models.TransactionItemShare{
				ItemID:     row.ID,
				UserID:     memberID,
				ShareCents: cents,
			}
			if err := database.DB.WithContext(ctx).Create(&share).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// UpdateShoppingItemStatus is a compare-and-swap on the status column: the
// update only lands if the row still has the status the caller observed, so a
// concurrent claim by another member fails loudly instead of being overwritten.
func (s *LedgerStore) UpdateShoppingItemStatus(ctx context.Context, id string, expected, next engine.ItemStatus, purchasedBy string) (engine.ShoppingItem, error) {
	itemID, err := uuid.Parse(id)
	if err != nil {
		return engine.ShoppingItem{}, fmt.Errorf("invalid shopping item id: %w", err)
	}

	updates := map[string]interface{}{"status": string(next)}
	if next == engine.ItemPurchased {
		buyer, err := uuid.Parse(purchasedBy)
		if err != nil {
			return engine.ShoppingItem{}, fmt.Errorf("invalid purchaser id: %w", err)
		}
		now := time.Now()
		updates["purchased_by"] = buyer
		updates["purchased_at"] = now
	} else {
		updates["purchased_by"] = nil
		updates["purchased_at"] = nil
	}

	result := database.DB.WithContext(ctx).
		Model(&models.ShoppingListItem{}).
		Where("id = ? AND status = ?", itemID, string(expected)).
		Updates(updates)
	if result.Error != nil {
		return engine.ShoppingItem{}, result.Error
	}
	if result.RowsAffected == 0 {
		return engine.ShoppingItem{}, fmt.Errorf("%w: item %s is no longer %s", ErrStatusConflict, id, expected)
	}

	var row models.ShoppingListItem
	if err := database.DB.WithContext(ctx).First(&row, itemID).Error; err != nil {
		return engine.ShoppingItem{}, err
	}
	return toEngineShoppingItem(row), nil
}

func (s *LedgerStore) CreateDebtLedgerEntries(ctx context.Context, entries []engine.DebtEntry) ([]engine.DebtEntry, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	txID, err := uuid.Parse(entries[0].TransactionID)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction id: %w", err)
	}
	var tx models.Transaction
	if err := database.DB.WithContext(ctx).First(&tx, txID).Error; err != nil {
		return nil, err
	}

	created := make([]engine.DebtEntry, 0, len(entries))
	for _, e := range entries {
		borrower, err := uuid.Parse(e.BorrowerID)
		if err != nil {
			return nil, fmt.Errorf("invalid borrower id: %w", err)
		}
		lender, err := uuid.Parse(e.LenderID)
		if err != nil {
			return nil, fmt.Errorf("invalid lender id: %w", err)
		}

		row := models.DebtLedgerEntry{
			HouseholdID:   tx.HouseholdID,
			BorrowerID:    borrower,
			LenderID:      lender,
			AmountCents:   e.AmountCents,
			TransactionID: txID,
		}
		if err := database.DB.WithContext(ctx).Create(&row).Error; err != nil {
			return nil, err
		}
		e.ID = row.ID.String()
		created = append(created, e)
	}
	return created, nil
}

func (s *LedgerStore) ListUnsettledDebts(ctx context.Context, memberID string) ([]engine.DebtEntry, error) {
	member, err := uuid.Parse(memberID)
	if err != nil {
		return nil, fmt.Errorf("invalid member id: %w", err)
	}

	var rows []models.DebtLedgerEntry
	err = database.DB.WithContext(ctx).
		Where("(borrower_id = ? OR lender_id = ?) AND is_settled = ?", member, member, false).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]engine.DebtEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, engine.DebtEntry{
			ID:            row.ID.String(),
			BorrowerID:    row.BorrowerID.String(),
			LenderID:      row.LenderID.String(),
			AmountCents:   row.AmountCents,
			IsSettled:     row.IsSettled,
			TransactionID: row.TransactionID.String(),
		})
	}
	return entries, nil
}

func toEngineShoppingItem(row models.ShoppingListItem) engine.ShoppingItem {
	return engine.ShoppingItem{
		ID:          row.ID.String(),
		HouseholdID: row.HouseholdID.String(),
		Name:        row.Name,
		RequestedBy: row.RequestedBy.String(),
		BountyCents: row.BountyCents,
		Status:      engine.ItemStatus(row.Status),
		CreatedAt:   row.CreatedAt,
	}
}
