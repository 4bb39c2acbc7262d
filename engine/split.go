package engine

import "fmt"

// BountyClaim is a confirmed bounty on a purchased shopping item. The credit
// goes to the purchaser (the payer in this flow), never the requester.
type BountyClaim struct {
	ShoppingItemID string
	BountyCents    int64
}

// Settlement is the outcome of splitting one posted receipt.
type Settlement struct {
	PayerID string

	// PerMember maps each non-payer member to what they owe the payer, in cents.
	PerMember map[string]int64

	PayerShareCents       int64
	TotalBountyCents      int64
	PayerNetPositionCents int64
	TotalCents            int64
}

// ComputeSettlement folds finalized item assignments and confirmed bounty
// claims into per-member shares. All arithmetic is integer cents; any even or
// weighted split remainder goes to the payer so shares always sum exactly to
// the item price.
func ComputeSettlement(items []ReceiptLineItem, bounties []BountyClaim, payerID string, roster []string) (*Settlement, error) {
	known := make(map[string]bool, len(roster))
	for _, m := range roster {
		known[m] = true
	}
	if !known[payerID] {
		return nil, &ValidationError{Reason: "payer is not in the household roster"}
	}

	shares := make(map[string]int64)
	var total int64

	for _, item := range items {
		for _, m := range item.Assignment.Members() {
			if !known[m] {
				return nil, &ValidationError{Reason: fmt.Sprintf("item %q is assigned to unknown member %s", item.RawName, m)}
			}
		}
		itemShares, err := ItemShares(item, payerID)
		if err != nil {
			return nil, err
		}
		total += item.PriceCents
		for m, s := range itemShares {
			shares[m] += s
		}
	}

	var check int64
	for _, s := range shares {
		check += s
	}
	if check != total {
		return nil, &InvariantError{Detail: fmt.Sprintf("shares sum to %d cents, receipt total is %d", check, total)}
	}

	settlement := &Settlement{
		PayerID:         payerID,
		PerMember:       make(map[string]int64),
		PayerShareCents: shares[payerID],
		TotalCents:      total,
	}
	for member, owed := range shares {
		if member == payerID || owed == 0 {
			continue
		}
		settlement.PerMember[member] = owed
		settlement.PayerNetPositionCents += owed
	}
	for _, b := range bounties {
		settlement.TotalBountyCents += b.BountyCents
	}
	settlement.PayerNetPositionCents -= settlement.TotalBountyCents

	return settlement, nil
}

// ItemShares computes one line item's contribution to each member's share.
// The returned amounts always sum exactly to the item price: even and weighted
// splits credit the integer-division remainder to the payer, whether or not
// the payer is in the split set.
func ItemShares(item ReceiptLineItem, payerID string) (map[string]int64, error) {
	if !item.Assignment.IsAssigned() {
		return nil, &ValidationError{Reason: fmt.Sprintf("item %q has no assignment", item.RawName)}
	}
	if item.PriceCents < 0 {
		return nil, &ValidationError{Reason: fmt.Sprintf("item %q has a negative price", item.RawName)}
	}

	members := item.Assignment.Members()
	shares := make(map[string]int64, len(members)+1)

	switch item.Assignment.Kind() {
	case AssignIndividual:
		shares[members[0]] = item.PriceCents

	case AssignEvenSplit:
		splitEvenly(shares, item.PriceCents, members, payerID)

	case AssignCustomSplit:
		var totalWeight int64
		for _, m := range members {
			totalWeight += item.Assignment.Weight(m)
		}
		if totalWeight == int64(len(members)) {
			// All weights are 1: identical to an even split.
			splitEvenly(shares, item.PriceCents, members, payerID)
			break
		}
		var distributed int64
		for _, m := range members {
			cut := item.PriceCents * item.Assignment.Weight(m) / totalWeight
			shares[m] += cut
			distributed += cut
		}
		shares[payerID] += item.PriceCents - distributed
	}

	return shares, nil
}

// splitEvenly credits price/n to each member and the division remainder to the
// payer.
func splitEvenly(shares map[string]int64, priceCents int64, members []string, payerID string) {
	n := int64(len(members))
	per := priceCents / n
	for _, m := range members {
		shares[m] += per
	}
	shares[payerID] += priceCents - per*n
}

// DebtEntries emits one ledger entry per member owing the payer. The entries
// exactly balance the settlement: nothing is created or destroyed.
func (s *Settlement) DebtEntries(transactionID string) []DebtEntry {
	var entries []DebtEntry
	for member, owed := range s.PerMember {
		if owed <= 0 {
			continue
		}
		entries = append(entries, DebtEntry{
			BorrowerID:    member,
			LenderID:      s.PayerID,
			AmountCents:   owed,
			TransactionID: transactionID,
		})
	}
	return entries
}
