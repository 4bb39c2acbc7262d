package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func entry(borrower, lender string, cents int64) DebtEntry {
	return DebtEntry{BorrowerID: borrower, LenderID: lender, AmountCents: cents}
}

func TestNetIsAntisymmetric(t *testing.T) {
	entries := []DebtEntry{
		entry("a", "b", 500),
		entry("b", "a", 200),
		entry("a", "b", 125),
	}
	assert.Equal(t, int64(425), Net(entries, "a", "b"))
	assert.Equal(t, int64(-425), Net(entries, "b", "a"))
	assert.Equal(t, -Net(entries, "a", "b"), Net(entries, "b", "a"))
}

func TestNetBalancesOrderIndependent(t *testing.T) {
	entries := []DebtEntry{
		entry("a", "b", 500),
		entry("b", "a", 200),
		entry("c", "a", 1000),
		entry("a", "b", 300),
	}
	reversed := make([]DebtEntry, len(entries))
	for i, e := range entries {
		reversed[len(entries)-1-i] = e
	}

	assert.ElementsMatch(t, NetBalances(entries), NetBalances(reversed))
}

func TestNetBalancesSkipsSettled(t *testing.T) {
	entries := []DebtEntry{
		entry("a", "b", 500),
		{BorrowerID: "a", LenderID: "b", AmountCents: 300, IsSettled: true},
	}
	balances := NetBalances(entries)
	assert.Len(t, balances, 1)
	assert.Equal(t, int64(500), balances[0].NetCents)
}

func TestNetBalancesDropsZeroPairs(t *testing.T) {
	entries := []DebtEntry{
		entry("a", "b", 500),
		entry("b", "a", 500),
	}
	assert.Empty(t, NetBalances(entries))
}

func TestNetBalancesAggregatesPairs(t *testing.T) {
	entries := []DebtEntry{
		entry("b", "a", 700),
		entry("a", "b", 200),
	}
	balances := NetBalances(entries)
	assert.Len(t, balances, 1)
	// Oriented lexicographically: a-b with b owing means a negative net.
	assert.Equal(t, "a", balances[0].MemberA)
	assert.Equal(t, "b", balances[0].MemberB)
	assert.Equal(t, int64(-500), balances[0].NetCents)
}

func TestPositions(t *testing.T) {
	entries := []DebtEntry{
		entry("a", "b", 500),
		entry("c", "b", 250),
		entry("b", "a", 100),
	}
	positions := Positions(entries)

	assert.Equal(t, int64(400), positions["a"].OwingCents)
	assert.Equal(t, int64(0), positions["a"].OwedCents)
	assert.Equal(t, int64(650), positions["b"].OwedCents)
	assert.Equal(t, int64(0), positions["b"].OwingCents)
	assert.Equal(t, int64(250), positions["c"].OwingCents)
}
