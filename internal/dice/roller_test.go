package dice_test

import (
	"testing"

	"github.com/infinite-realms/combat-engine/internal/dice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomRoller_Bounds(t *testing.T) {
	roller := dice.NewRandomRoller()

	for i := 0; i < 100; i++ {
		result, err := roller.Roll(1, 20, 0)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, result.Total, 1)
		assert.LessOrEqual(t, result.Total, 20)
	}
}

func TestRandomRoller_BonusApplied(t *testing.T) {
	roller := dice.NewRandomRoller()

	result, err := roller.Roll(2, 6, 3)
	require.NoError(t, err)
	assert.Equal(t, result.RawTotal+3, result.Total)
	assert.Len(t, result.Rolls, 2)
}

func TestRandomRoller_InvalidInput(t *testing.T) {
	roller := dice.NewRandomRoller()

	_, err := roller.Roll(0, 20, 0)
	assert.Error(t, err)

	_, err = roller.Roll(1, 0, 0)
	assert.Error(t, err)
}

func TestMockRoller_Sequence(t *testing.T) {
	roller := dice.NewMockRoller()
	roller.SetRolls([]int{18, 3})

	result, err := roller.Roll(1, 20, 2)
	require.NoError(t, err)
	assert.Equal(t, 20, result.Total)
	assert.False(t, result.IsCrit)

	result, err = roller.Roll(1, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)

	_, err = roller.Roll(1, 20, 0)
	assert.Error(t, err, "sequence exhausted")
}

func TestMockRoller_Advantage(t *testing.T) {
	roller := dice.NewMockRoller()
	roller.SetRolls([]int{8, 15})

	result, err := roller.RollWithAdvantage(20, 1)
	require.NoError(t, err)
	assert.Equal(t, 16, result.Total)
	assert.Equal(t, []int{8, 15}, result.Rolls)
}

func TestMockRoller_Disadvantage(t *testing.T) {
	roller := dice.NewMockRoller()
	roller.SetRolls([]int{8, 15})

	result, err := roller.RollWithDisadvantage(20, 1)
	require.NoError(t, err)
	assert.Equal(t, 9, result.Total)
}

func TestMockRoller_NaturalTwenty(t *testing.T) {
	roller := dice.NewMockRoller()
	roller.SetRolls([]int{20})

	result, err := roller.Roll(1, 20, 5)
	require.NoError(t, err)
	assert.True(t, result.IsCrit)
	assert.False(t, result.IsFumble)
	assert.Equal(t, 25, result.Total)
}

func TestMockRoller_NaturalOne(t *testing.T) {
	roller := dice.NewMockRoller()
	roller.SetRolls([]int{1})

	result, err := roller.Roll(1, 20, 5)
	require.NoError(t, err)
	assert.True(t, result.IsFumble)
}
