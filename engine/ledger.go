package engine

// PairBalance is the netted position between two members, computed at read
// time from unsettled ledger entries. Members are ordered lexicographically so
// the same pair always produces the same orientation; NetCents > 0 means
// MemberA owes MemberB.
type PairBalance struct {
	MemberA  string
	MemberB  string
	NetCents int64
}

// NetBalances folds unsettled entries into one net amount per unordered pair.
// Settled entries are skipped. The fold is a plain sum, so it is idempotent
// over the same input and independent of entry order.
func NetBalances(entries []DebtEntry) []PairBalance {
	nets := make(map[[2]string]int64)
	for _, e := range entries {
		if e.IsSettled {
			continue
		}
		a, b := e.BorrowerID, e.LenderID
		sign := int64(1)
		if b < a {
			a, b = b, a
			sign = -1
		}
		nets[[2]string{a, b}] += sign * e.AmountCents
	}

	var balances []PairBalance
	for pair, net := range nets {
		if net == 0 {
			continue
		}
		balances = append(balances, PairBalance{MemberA: pair[0], MemberB: pair[1], NetCents: net})
	}
	return balances
}

// Net returns what member a owes member b net of counter-debts. Negative means
// b owes a. Net(entries, a, b) == -Net(entries, b, a) for any entry set.
func Net(entries []DebtEntry, a, b string) int64 {
	var net int64
	for _, e := range entries {
		if e.IsSettled {
			continue
		}
		switch {
		case e.BorrowerID == a && e.LenderID == b:
			net += e.AmountCents
		case e.BorrowerID == b && e.LenderID == a:
			net -= e.AmountCents
		}
	}
	return net
}

// MemberPosition sums a member's unsettled debts in both directions.
type MemberPosition struct {
	OwedCents  int64 // what others owe the member
	OwingCents int64 // what the member owes others
}

// Positions aggregates net pair balances into per-member totals, the shape the
// profile and balance views render.
func Positions(entries []DebtEntry) map[string]MemberPosition {
	positions := make(map[string]MemberPosition)
	for _, pb := range NetBalances(entries) {
		debtor, creditor, amount := pb.MemberA, pb.MemberB, pb.NetCents
		if amount < 0 {
			debtor, creditor, amount = pb.MemberB, pb.MemberA, -amount
		}
		d := positions[debtor]
		d.OwingCents += amount
		positions[debtor] = d

		c := positions[creditor]
		c.OwedCents += amount
		positions[creditor] = c
	}
	return positions
}
