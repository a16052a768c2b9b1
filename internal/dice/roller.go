package dice

// Roller provides an interface for rolling dice.
// The engine only generates rolls the caller chose not to supply; injecting
// a deterministic implementation keeps audit and replay reproducible.
type Roller interface {
	// Roll rolls a number of dice with the given sides and adds a bonus
	Roll(count, sides, bonus int) (*RollResult, error)

	// RollWithAdvantage rolls twice and keeps the higher die
	RollWithAdvantage(sides, bonus int) (*RollResult, error)

	// RollWithDisadvantage rolls twice and keeps the lower die
	RollWithDisadvantage(sides, bonus int) (*RollResult, error)
}

// RollResult holds the outcome of a dice roll
type RollResult struct {
	Total    int   // RawTotal + Bonus
	Rolls    []int // individual dice, both dice for advantage/disadvantage
	Bonus    int
	Count    int
	Sides    int
	RawTotal int // dice only, before the bonus
	IsCrit   bool
	IsFumble bool
}
