package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusUpdate struct {
	id          string
	expected    ItemStatus
	next        ItemStatus
	purchasedBy string
}

// fakeStore is an in-memory Store with per-operation failure injection.
type fakeStore struct {
	open          []ShoppingItem
	transactions  []Transaction
	txItems       map[string][]TransactionItem
	entries       []DebtEntry
	statusUpdates []statusUpdate
	failOn        string
}

var errStore = errors.New("store unavailable")

func newFakeStore(open ...ShoppingItem) *fakeStore {
	return &fakeStore{open: open, txItems: make(map[string][]TransactionItem)}
}

func (f *fakeStore) ListOpenShoppingItems(_ context.Context, _ string) ([]ShoppingItem, error) {
	if f.failOn == "list" {
		return nil, errStore
	}
	return f.open, nil
}

func (f *fakeStore) CreateTransaction(_ context.Context, payerID, householdID string, totalCents int64) (Transaction, error) {
	if f.failOn == "transaction" {
		return Transaction{}, errStore
	}
	tx := Transaction{
		ID:              fmt.Sprintf("tx-%d", len(f.transactions)+1),
		HouseholdID:     householdID,
		PayerID:         payerID,
		FinalTotalCents: totalCents,
		CreatedAt:       time.Now(),
	}
	f.transactions = append(f.transactions, tx)
	return tx, nil
}

func (f *fakeStore) CreateTransactionItems(_ context.Context, transactionID string, items []TransactionItem) error {
	if f.failOn == "items" {
		return errStore
	}
	f.txItems[transactionID] = items
	return nil
}

func (f *fakeStore) UpdateShoppingItemStatus(_ context.Context, id string, expected, next ItemStatus, purchasedBy string) (ShoppingItem, error) {
	if f.failOn == "status" {
		return ShoppingItem{}, errStore
	}
	f.statusUpdates = append(f.statusUpdates, statusUpdate{id, expected, next, purchasedBy})
	for i := range f.open {
		if f.open[i].ID == id {
			if f.open[i].Status != expected {
				return ShoppingItem{}, fmt.Errorf("status moved from %s", expected)
			}
			f.open[i].Status = next
			return f.open[i], nil
		}
	}
	return ShoppingItem{}, errors.New("no such item")
}

func (f *fakeStore) CreateDebtLedgerEntries(_ context.Context, entries []DebtEntry) ([]DebtEntry, error) {
	if f.failOn == "entries" {
		return nil, errStore
	}
	for i := range entries {
		entries[i].ID = fmt.Sprintf("debt-%d", len(f.entries)+i+1)
	}
	f.entries = append(f.entries, entries...)
	return entries, nil
}

func (f *fakeStore) ListUnsettledDebts(_ context.Context, _ string) ([]DebtEntry, error) {
	if f.failOn == "debts" {
		return nil, errStore
	}
	return f.entries, nil
}

func milkItem(bountyCents int64) ShoppingItem {
	return ShoppingItem{
		ID:          "s1",
		HouseholdID: "h1",
		Name:        "milk",
		RequestedBy: m2,
		BountyCents: bountyCents,
		Status:      ItemPending,
		CreatedAt:   time.Unix(1000, 0),
	}
}

func groceryLines(t *testing.T) []ReceiptLineItem {
	t.Helper()
	return []ReceiptLineItem{
		{ID: "r1", RawName: "Milk", PriceCents: 450, Assignment: evenSplit(t, payer, m2)},
		{ID: "r2", RawName: "Eggs", PriceCents: 320, Assignment: evenSplit(t, payer, m2)},
	}
}

func TestSessionGroceryRunEndToEnd(t *testing.T) {
	store := newFakeStore(milkItem(200))
	s := NewSession("sess1", "h1", payer, []string{payer, m2})
	assert.Equal(t, StateScanning, s.State())

	require.NoError(t, s.BeginItemizing(groceryLines(t), store.open))
	assert.Equal(t, StateItemizing, s.State())

	candidates := s.Candidates()
	require.Len(t, candidates, 1)
	assert.Equal(t, MatchExact, candidates[0].Kind)
	assert.Equal(t, "r1", candidates[0].ReceiptItemID)
	assert.Equal(t, "s1", candidates[0].ShoppingItemID)
	assert.Equal(t, ConfirmUnknown, candidates[0].Confirmed)

	require.NoError(t, s.Resolve(candidates[0].ID, true))

	result, err := s.Post(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, StatePosted, s.State())

	assert.Equal(t, int64(770), result.Transaction.FinalTotalCents)
	assert.Equal(t, int64(385), result.Settlement.PerMember[m2])
	assert.Equal(t, int64(200), result.Settlement.TotalBountyCents)
	assert.Equal(t, int64(185), result.Settlement.PayerNetPositionCents)

	require.Len(t, result.Entries, 1)
	assert.Equal(t, m2, result.Entries[0].BorrowerID)
	assert.Equal(t, payer, result.Entries[0].LenderID)
	assert.Equal(t, int64(385), result.Entries[0].AmountCents)

	require.Len(t, store.statusUpdates, 1)
	assert.Equal(t, statusUpdate{"s1", ItemPending, ItemPurchased, payer}, store.statusUpdates[0])
	require.Len(t, store.transactions, 1)
	assert.Len(t, store.txItems[result.Transaction.ID], 2)
}

func TestPostRejectsUnassignedItem(t *testing.T) {
	store := newFakeStore()
	s := NewSession("sess1", "h1", payer, []string{payer, m2})
	items := groceryLines(t)
	items[1].Assignment = Unassigned()
	require.NoError(t, s.BeginItemizing(items, nil))

	_, err := s.Post(context.Background(), store)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, StateItemizing, s.State())
	assert.Empty(t, store.transactions, "nothing may be persisted")
}

func TestPostBlocksOnUnresolvedFuzzyCandidates(t *testing.T) {
	store := newFakeStore(milkItem(150))
	s := NewSession("sess1", "h1", payer, []string{payer, m2})
	items := []ReceiptLineItem{
		{ID: "r1", RawName: "Whole Milk", PriceCents: 450, Assignment: evenSplit(t, payer, m2)},
	}
	require.NoError(t, s.BeginItemizing(items, store.open))

	candidates := s.Candidates()
	require.Len(t, candidates, 1)
	require.Equal(t, MatchFuzzy, candidates[0].Kind)

	_, err := s.Post(context.Background(), store)
	var pending *PendingConfirmationError
	require.ErrorAs(t, err, &pending)
	assert.Len(t, pending.Pending, 1)
	assert.Equal(t, StateAwaiting, s.State())

	// Rejecting discards the candidate without side effects; post proceeds.
	require.NoError(t, s.Resolve(candidates[0].ID, false))
	result, err := s.Post(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, StatePosted, s.State())
	assert.Zero(t, result.Settlement.TotalBountyCents)
	assert.Empty(t, store.statusUpdates)
}

func TestUnresolvedExactCandidateDoesNotBlockPost(t *testing.T) {
	store := newFakeStore(milkItem(200))
	s := NewSession("sess1", "h1", payer, []string{payer, m2})
	require.NoError(t, s.BeginItemizing(groceryLines(t), store.open))

	result, err := s.Post(context.Background(), store)
	require.NoError(t, err)
	assert.Zero(t, result.Settlement.TotalBountyCents, "no bounty without an explicit yes")
	assert.Empty(t, store.statusUpdates)
}

func TestConfirmedClaimRemovesRivalCandidates(t *testing.T) {
	shopping := ShoppingItem{
		ID: "s1", HouseholdID: "h1", Name: "milk chocolate",
		BountyCents: 100, Status: ItemPending, CreatedAt: time.Unix(1000, 0),
	}
	store := newFakeStore(shopping)
	s := NewSession("sess1", "h1", payer, []string{payer, m2})
	items := []ReceiptLineItem{
		{ID: "r1", RawName: "Milk Chocolate Bar", PriceCents: 300, Assignment: individual(t, payer)},
		{ID: "r2", RawName: "Milk Chocolate Drink", PriceCents: 250, Assignment: individual(t, payer)},
	}
	require.NoError(t, s.BeginItemizing(items, store.open))

	candidates := s.Candidates()
	require.Len(t, candidates, 2)

	require.NoError(t, s.Resolve(candidates[0].ID, true))

	remaining := s.Candidates()
	require.Len(t, remaining, 1, "the rival candidate must disappear")
	assert.Equal(t, candidates[0].ID, remaining[0].ID)
	assert.Equal(t, ConfirmYes, remaining[0].Confirmed)
}

func TestStoreFailureLeavesSessionRetryable(t *testing.T) {
	store := newFakeStore(milkItem(0))
	store.failOn = "entries"
	s := NewSession("sess1", "h1", payer, []string{payer, m2})
	require.NoError(t, s.BeginItemizing(groceryLines(t), store.open))

	_, err := s.Post(context.Background(), store)
	var ioErr *ExternalIOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, StateItemizing, s.State())

	// The transaction write already committed; that window is accepted and
	// the caller may retry the whole post.
	assert.Len(t, store.transactions, 1)

	store.failOn = ""
	_, err = s.Post(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, StatePosted, s.State())
}

func TestEditsRegenerateCandidates(t *testing.T) {
	store := newFakeStore(milkItem(200))
	s := NewSession("sess1", "h1", payer, []string{payer, m2})
	items := []ReceiptLineItem{
		{ID: "r1", RawName: "Paper Towels", PriceCents: 899, Assignment: individual(t, payer)},
	}
	require.NoError(t, s.BeginItemizing(items, store.open))
	assert.Empty(t, s.Candidates())

	items[0].RawName = "Milk"
	require.NoError(t, s.UpdateItem(items[0]))

	candidates := s.Candidates()
	require.Len(t, candidates, 1)
	assert.Equal(t, MatchExact, candidates[0].Kind)
}

func TestBeginItemizingOnlyFromScanning(t *testing.T) {
	s := NewSession("sess1", "h1", payer, []string{payer})
	require.NoError(t, s.BeginItemizing(nil, nil))
	assert.Error(t, s.BeginItemizing(nil, nil))
}

func TestPostAfterPostedIsRejected(t *testing.T) {
	store := newFakeStore()
	s := NewSession("sess1", "h1", payer, []string{payer, m2})
	require.NoError(t, s.BeginItemizing(groceryLines(t), nil))

	_, err := s.Post(context.Background(), store)
	require.NoError(t, err)

	_, err = s.Post(context.Background(), store)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}
