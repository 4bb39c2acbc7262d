package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignmentZeroValueIsUnassigned(t *testing.T) {
	var a Assignment
	assert.Equal(t, AssignUnassigned, a.Kind())
	assert.False(t, a.IsAssigned())
	assert.Empty(t, a.Members())
}

func TestIndividual(t *testing.T) {
	a, err := Individual("m1")
	require.NoError(t, err)
	assert.Equal(t, AssignIndividual, a.Kind())
	assert.Equal(t, []string{"m1"}, a.Members())

	_, err = Individual("")
	assert.Error(t, err)
}

func TestEvenSplitRequiresMembers(t *testing.T) {
	_, err := EvenSplit(nil)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = EvenSplit([]string{"", ""})
	assert.Error(t, err)
}

func TestEvenSplitDedupes(t *testing.T) {
	a, err := EvenSplit([]string{"m1", "m2", "m1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, a.Members())
}

func TestCustomSplitWeights(t *testing.T) {
	_, err := CustomSplit([]string{"m1", "m2"}, map[string]int64{"m1": 1})
	assert.Error(t, err, "every member needs a positive weight")

	a, err := CustomSplit([]string{"m1", "m2"}, map[string]int64{"m1": 1, "m2": 3})
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.Weight("m1"))
	assert.Equal(t, int64(3), a.Weight("m2"))

	// Without weights every member counts once.
	a, err = CustomSplit([]string{"m1", "m2"}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.Weight("m1"))
}
