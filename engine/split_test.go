package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	payer = "payer"
	m2    = "m2"
	m3    = "m3"
)

var roster = []string{payer, m2, m3}

func evenSplit(t *testing.T, members ...string) Assignment {
	t.Helper()
	a, err := EvenSplit(members)
	require.NoError(t, err)
	return a
}

func individual(t *testing.T, member string) Assignment {
	t.Helper()
	a, err := Individual(member)
	require.NoError(t, err)
	return a
}

func TestComputeSettlementGroceryRun(t *testing.T) {
	// Milk 4.50 + Eggs 3.20, both split between payer and m2, milk carries a
	// confirmed 2.00 bounty.
	items := []ReceiptLineItem{
		{ID: "r1", RawName: "Milk", PriceCents: 450, Assignment: evenSplit(t, payer, m2)},
		{ID: "r2", RawName: "Eggs", PriceCents: 320, Assignment: evenSplit(t, payer, m2)},
	}
	claims := []BountyClaim{{ShoppingItemID: "s1", BountyCents: 200}}

	s, err := ComputeSettlement(items, claims, payer, roster)
	require.NoError(t, err)

	assert.Equal(t, int64(770), s.TotalCents)
	assert.Equal(t, int64(385), s.PerMember[m2])
	assert.Equal(t, int64(385), s.PayerShareCents)
	assert.Equal(t, int64(200), s.TotalBountyCents)
	assert.Equal(t, int64(185), s.PayerNetPositionCents)

	// Ledger balances the transaction exactly.
	var owed int64
	for _, v := range s.PerMember {
		owed += v
	}
	assert.Equal(t, s.TotalCents, owed+s.PayerShareCents)
}

func TestEvenSplitRemainderGoesToPayer(t *testing.T) {
	items := []ReceiptLineItem{
		{ID: "r1", RawName: "Pizza", PriceCents: 1001, Assignment: evenSplit(t, payer, m2, m3)},
	}
	s, err := ComputeSettlement(items, nil, payer, roster)
	require.NoError(t, err)

	assert.Equal(t, int64(333), s.PerMember[m2])
	assert.Equal(t, int64(333), s.PerMember[m3])
	assert.Equal(t, int64(335), s.PayerShareCents)
}

func TestEvenSplitWithoutPayerStillBalances(t *testing.T) {
	items := []ReceiptLineItem{
		{ID: "r1", RawName: "Snacks", PriceCents: 101, Assignment: evenSplit(t, m2, m3)},
	}
	s, err := ComputeSettlement(items, nil, payer, roster)
	require.NoError(t, err)

	assert.Equal(t, int64(50), s.PerMember[m2])
	assert.Equal(t, int64(50), s.PerMember[m3])
	assert.Equal(t, int64(1), s.PayerShareCents, "odd cent lands on the payer")
}

func TestIndividualAssignment(t *testing.T) {
	items := []ReceiptLineItem{
		{ID: "r1", RawName: "Shampoo", PriceCents: 799, Assignment: individual(t, m2)},
	}
	s, err := ComputeSettlement(items, nil, payer, roster)
	require.NoError(t, err)

	assert.Equal(t, int64(799), s.PerMember[m2])
	assert.Equal(t, int64(0), s.PayerShareCents)
	assert.Equal(t, int64(799), s.PayerNetPositionCents)
}

func TestCustomSplitWeighted(t *testing.T) {
	a, err := CustomSplit([]string{m2, m3}, map[string]int64{m2: 1, m3: 3})
	require.NoError(t, err)

	items := []ReceiptLineItem{
		{ID: "r1", RawName: "Wine", PriceCents: 1000, Assignment: a},
	}
	s, err := ComputeSettlement(items, nil, payer, roster)
	require.NoError(t, err)

	assert.Equal(t, int64(250), s.PerMember[m2])
	assert.Equal(t, int64(750), s.PerMember[m3])
}

func TestCustomSplitWeightedRemainderToPayer(t *testing.T) {
	a, err := CustomSplit([]string{m2, m3}, map[string]int64{m2: 1, m3: 2})
	require.NoError(t, err)

	items := []ReceiptLineItem{
		{ID: "r1", RawName: "Cheese", PriceCents: 100, Assignment: a},
	}
	s, err := ComputeSettlement(items, nil, payer, roster)
	require.NoError(t, err)

	assert.Equal(t, int64(33), s.PerMember[m2])
	assert.Equal(t, int64(66), s.PerMember[m3])
	assert.Equal(t, int64(1), s.PayerShareCents)
}

func TestCustomSplitWithoutWeightsMatchesEvenSplit(t *testing.T) {
	custom, err := CustomSplit([]string{payer, m2}, nil)
	require.NoError(t, err)

	even := []ReceiptLineItem{{ID: "r1", RawName: "Bread", PriceCents: 451, Assignment: evenSplit(t, payer, m2)}}
	cust := []ReceiptLineItem{{ID: "r1", RawName: "Bread", PriceCents: 451, Assignment: custom}}

	se, err := ComputeSettlement(even, nil, payer, roster)
	require.NoError(t, err)
	sc, err := ComputeSettlement(cust, nil, payer, roster)
	require.NoError(t, err)

	assert.Equal(t, se.PerMember, sc.PerMember)
	assert.Equal(t, se.PayerShareCents, sc.PayerShareCents)
}

func TestComputeSettlementRejectsUnassigned(t *testing.T) {
	items := []ReceiptLineItem{
		{ID: "r1", RawName: "Milk", PriceCents: 450, Assignment: Unassigned()},
	}
	_, err := ComputeSettlement(items, nil, payer, roster)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestComputeSettlementRejectsUnknownMember(t *testing.T) {
	items := []ReceiptLineItem{
		{ID: "r1", RawName: "Milk", PriceCents: 450, Assignment: individual(t, "stranger")},
	}
	_, err := ComputeSettlement(items, nil, payer, roster)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestComputeSettlementRejectsUnknownPayer(t *testing.T) {
	_, err := ComputeSettlement(nil, nil, "stranger", roster)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestDebtEntriesBalanceSettlement(t *testing.T) {
	items := []ReceiptLineItem{
		{ID: "r1", RawName: "Milk", PriceCents: 450, Assignment: evenSplit(t, payer, m2, m3)},
		{ID: "r2", RawName: "Soap", PriceCents: 325, Assignment: individual(t, m3)},
	}
	s, err := ComputeSettlement(items, nil, payer, roster)
	require.NoError(t, err)

	entries := s.DebtEntries("tx1")
	var total int64
	for _, e := range entries {
		assert.Equal(t, payer, e.LenderID)
		assert.Equal(t, "tx1", e.TransactionID)
		assert.Positive(t, e.AmountCents)
		total += e.AmountCents
	}
	var owed int64
	for _, v := range s.PerMember {
		owed += v
	}
	assert.Equal(t, owed, total, "ledger entries must exactly balance the settlement")
}
