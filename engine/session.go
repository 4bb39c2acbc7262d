package engine

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// SessionState is the workflow position of one expense-entry session.
type SessionState string

const (
	StateScanning  SessionState = "scanning"
	StateItemizing SessionState = "itemizing"
	StateAwaiting  SessionState = "awaiting_match_confirmation"
	StatePosting   SessionState = "posting"
	StatePosted    SessionState = "posted"
)

// Confirmation is the tri-state user decision on a match candidate.
type Confirmation string

const (
	ConfirmUnknown Confirmation = "unknown"
	ConfirmYes     Confirmation = "yes"
	ConfirmNo      Confirmation = "no"
)

// MatchCandidate is a proposed correspondence between a receipt line and an
// open bounty shopping-list item, pending user confirmation. Ephemeral: it
// lives only for the duration of one session.
type MatchCandidate struct {
	ID             string
	ReceiptItemID  string
	ShoppingItemID string
	Kind           MatchKind
	Confidence     float64
	Confirmed      Confirmation
}

// PendingConfirmationError is returned by Post when fuzzy candidates are still
// unresolved. The session moves to AwaitingMatchConfirmation; the user must
// accept or reject each pending candidate, then post again.
type PendingConfirmationError struct {
	Pending []MatchCandidate
}

func (e *PendingConfirmationError) Error() string {
	return fmt.Sprintf("%d fuzzy match candidates awaiting confirmation", len(e.Pending))
}

// PostResult is everything a successful post produced.
type PostResult struct {
	Transaction Transaction
	Settlement  *Settlement
	Entries     []DebtEntry
	Claimed     []ShoppingItem
}

// Session is one expense-entry flow: scan a receipt, itemize and assign it,
// resolve bounty matches, post. A session is driven by a single actor and is
// not safe for concurrent use; callers serialize access to it. Abandoning a
// session needs no cleanup since nothing is persisted before Post succeeds.
type Session struct {
	ID          string
	HouseholdID string
	PayerID     string

	roster     []string
	state      SessionState
	items      []ReceiptLineItem
	shopping   []ShoppingItem
	candidates []MatchCandidate

	// decisions survive candidate regeneration across itemizing edits,
	// keyed by receipt item id + shopping item id.
	decisions map[[2]string]Confirmation

	posting bool
	result  *PostResult
}

// NewSession starts a session in the Scanning state. The roster is the
// household member set (including the payer) that assignments may reference.
func NewSession(id, householdID, payerID string, roster []string) *Session {
	return &Session{
		ID:          id,
		HouseholdID: householdID,
		PayerID:     payerID,
		roster:      append([]string(nil), roster...),
		state:       StateScanning,
		decisions:   make(map[[2]string]Confirmation),
	}
}

// State returns the current workflow state.
func (s *Session) State() SessionState { return s.state }

// Roster returns the member ids assignments may reference.
func (s *Session) Roster() []string {
	return append([]string(nil), s.roster...)
}

// Items returns a copy of the current receipt lines.
func (s *Session) Items() []ReceiptLineItem {
	return append([]ReceiptLineItem(nil), s.items...)
}

// ShoppingItems returns the open shopping-list snapshot the session was
// started with.
func (s *Session) ShoppingItems() []ShoppingItem {
	return append([]ShoppingItem(nil), s.shopping...)
}

// Result returns the post outcome once the session is Posted, else nil.
func (s *Session) Result() *PostResult { return s.result }

// BeginItemizing moves Scanning to Itemizing once line items are available
// from capture or manual entry. Always succeeds, possibly with zero items.
// openItems is the household's open shopping list, scored for candidates.
func (s *Session) BeginItemizing(items []ReceiptLineItem, openItems []ShoppingItem) error {
	if s.state != StateScanning {
		return &ValidationError{Reason: "session is already itemizing"}
	}
	s.items = append([]ReceiptLineItem(nil), items...)
	s.shopping = append([]ShoppingItem(nil), openItems...)
	s.state = StateItemizing
	s.regenerateCandidates()
	return nil
}

// AddItem appends a manually entered line and rescores candidates.
func (s *Session) AddItem(item ReceiptLineItem) error {
	if err := s.editable(); err != nil {
		return err
	}
	s.items = append(s.items, item)
	s.state = StateItemizing
	s.regenerateCandidates()
	return nil
}

// UpdateItem replaces the named line (name/price edits) and rescores.
func (s *Session) UpdateItem(item ReceiptLineItem) error {
	if err := s.editable(); err != nil {
		return err
	}
	for i := range s.items {
		if s.items[i].ID == item.ID {
			s.items[i] = item
			s.state = StateItemizing
			s.regenerateCandidates()
			return nil
		}
	}
	return &ValidationError{Reason: "no such receipt item"}
}

// RemoveItem deletes a line from the working set.
func (s *Session) RemoveItem(itemID string) error {
	if err := s.editable(); err != nil {
		return err
	}
	for i := range s.items {
		if s.items[i].ID == itemID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.state = StateItemizing
			s.regenerateCandidates()
			return nil
		}
	}
	return &ValidationError{Reason: "no such receipt item"}
}

// Assign sets who pays for a line.
func (s *Session) Assign(itemID string, a Assignment) error {
	if err := s.editable(); err != nil {
		return err
	}
	for i := range s.items {
		if s.items[i].ID == itemID {
			s.items[i].Assignment = a
			return nil
		}
	}
	return &ValidationError{Reason: "no such receipt item"}
}

// Candidates returns the current match candidates in display order.
func (s *Session) Candidates() []MatchCandidate {
	return append([]MatchCandidate(nil), s.candidates...)
}

// Resolve records the user's yes/no on a candidate. Confirming a candidate
// claims its shopping item: every other candidate against the same item is
// dropped, and the item is excluded from future candidate generation.
func (s *Session) Resolve(candidateID string, accept bool) error {
	if err := s.editable(); err != nil {
		return err
	}
	for _, c := range s.candidates {
		if c.ID != candidateID {
			continue
		}
		key := [2]string{c.ReceiptItemID, c.ShoppingItemID}
		if accept {
			s.decisions[key] = ConfirmYes
		} else {
			s.decisions[key] = ConfirmNo
		}
		s.regenerateCandidates()
		return nil
	}
	return &ValidationError{Reason: "no such match candidate"}
}

// Post drives the session through Posting. It surfaces unresolved fuzzy
// candidates first (moving to AwaitingMatchConfirmation), then validates that
// every line is assigned, computes the settlement, and performs the store
// writes. Any store failure leaves the session where it was, with calls that
// already completed left committed; the caller may retry. Re-entrant posts are
// rejected while one is outstanding.
func (s *Session) Post(ctx context.Context, store Store) (*PostResult, error) {
	if s.posting {
		return nil, &ValidationError{Reason: "a post is already in progress"}
	}
	if s.state != StateItemizing && s.state != StateAwaiting {
		return nil, &ValidationError{Reason: fmt.Sprintf("cannot post from state %s", s.state)}
	}
	if len(s.items) == 0 {
		return nil, &ValidationError{Reason: "receipt has no items"}
	}

	// Exact matches never block posting, only unresolved fuzzy ones do.
	var pending []MatchCandidate
	for _, c := range s.candidates {
		if c.Kind == MatchFuzzy && c.Confirmed == ConfirmUnknown {
			pending = append(pending, c)
		}
	}
	if len(pending) > 0 {
		s.state = StateAwaiting
		return nil, &PendingConfirmationError{Pending: pending}
	}

	for _, item := range s.items {
		if !item.Assignment.IsAssigned() {
			return nil, &ValidationError{Reason: fmt.Sprintf("item %q has no assignment", item.RawName)}
		}
	}

	claimed := s.claimedItems()
	var claims []BountyClaim
	for _, item := range claimed {
		if item.BountyCents > 0 {
			claims = append(claims, BountyClaim{ShoppingItemID: item.ID, BountyCents: item.BountyCents})
		}
	}

	settlement, err := ComputeSettlement(s.items, claims, s.PayerID, s.roster)
	if err != nil {
		return nil, err
	}

	resume := s.state
	s.state = StatePosting
	s.posting = true
	defer func() { s.posting = false }()

	tx, err := store.CreateTransaction(ctx, s.PayerID, s.HouseholdID, settlement.TotalCents)
	if err != nil {
		s.state = resume
		return nil, &ExternalIOError{Op: "create transaction", Err: err}
	}

	txItems := make([]TransactionItem, 0, len(s.items))
	for _, item := range s.items {
		shares, err := ItemShares(item, s.PayerID)
		if err != nil {
			s.state = resume
			return nil, err
		}
		txItems = append(txItems, TransactionItem{
			Name:       item.RawName,
			PriceCents: item.PriceCents,
			SplitKind:  item.Assignment.Kind(),
			Shares:     shares,
		})
	}
	if err := store.CreateTransactionItems(ctx, tx.ID, txItems); err != nil {
		s.state = resume
		return nil, &ExternalIOError{Op: "create transaction items", Err: err}
	}

	entries := settlement.DebtEntries(tx.ID)
	if len(entries) > 0 {
		entries, err = store.CreateDebtLedgerEntries(ctx, entries)
		if err != nil {
			s.state = resume
			return nil, &ExternalIOError{Op: "create debt ledger entries", Err: err}
		}
	}

	for i, item := range claimed {
		updated, err := store.UpdateShoppingItemStatus(ctx, item.ID, ItemPending, ItemPurchased, s.PayerID)
		if err != nil {
			s.state = resume
			return nil, &ExternalIOError{Op: "update shopping item status", Err: err}
		}
		claimed[i] = updated
	}

	s.state = StatePosted
	s.result = &PostResult{
		Transaction: tx,
		Settlement:  settlement,
		Entries:     entries,
		Claimed:     claimed,
	}
	return s.result, nil
}

func (s *Session) editable() error {
	switch s.state {
	case StateItemizing, StateAwaiting:
		if s.posting {
			return &ValidationError{Reason: "a post is in progress"}
		}
		return nil
	case StateScanning:
		return &ValidationError{Reason: "session has no items yet"}
	default:
		return &ValidationError{Reason: fmt.Sprintf("session is %s", s.state)}
	}
}

// claimedItems returns shopping items with a confirmed-yes candidate, in
// shopping-list order.
func (s *Session) claimedItems() []ShoppingItem {
	claimed := make(map[string]bool)
	for key, d := range s.decisions {
		if d == ConfirmYes {
			claimed[key[1]] = true
		}
	}
	var items []ShoppingItem
	for _, item := range s.shopping {
		if claimed[item.ID] {
			items = append(items, item)
		}
	}
	return items
}

// regenerateCandidates rescores every receipt line against every open shopping
// item, carrying prior decisions forward. A shopping item already claimed by a
// confirmed-yes decision only keeps that one candidate: no double-claiming a
// bounty within a session.
func (s *Session) regenerateCandidates() {
	claimedBy := make(map[string][2]string)
	for key, d := range s.decisions {
		if d == ConfirmYes {
			claimedBy[key[1]] = key
		}
	}

	s.candidates = s.candidates[:0]
	for _, item := range s.items {
		var lineCandidates []MatchCandidate
		for _, shop := range s.shopping {
			key := [2]string{item.ID, shop.ID}
			if winner, taken := claimedBy[shop.ID]; taken && winner != key {
				continue
			}
			score := Score(item.RawName, shop.Name)
			if score.Kind == MatchNone {
				continue
			}
			confirmed := s.decisions[key]
			if confirmed == "" {
				confirmed = ConfirmUnknown
			}
			lineCandidates = append(lineCandidates, MatchCandidate{
				ID:             item.ID + ":" + shop.ID,
				ReceiptItemID:  item.ID,
				ShoppingItemID: shop.ID,
				Kind:           score.Kind,
				Confidence:     score.Confidence,
				Confirmed:      confirmed,
			})
		}
		// Deterministic order: exact before fuzzy, then confidence, then the
		// earliest-created shopping item.
		sort.SliceStable(lineCandidates, func(i, j int) bool {
			a, b := lineCandidates[i], lineCandidates[j]
			if a.Kind != b.Kind {
				return a.Kind > b.Kind
			}
			if a.Confidence != b.Confidence {
				return a.Confidence > b.Confidence
			}
			return s.shoppingCreatedAt(a.ShoppingItemID).Before(s.shoppingCreatedAt(b.ShoppingItemID))
		})
		s.candidates = append(s.candidates, lineCandidates...)
	}
}

func (s *Session) shoppingCreatedAt(id string) time.Time {
	for _, item := range s.shopping {
		if item.ID == id {
			return item.CreatedAt
		}
	}
	return time.Time{}
}
