package dnd5e

//go:generate mockgen -destination=mock/mock_client.go -package=mockdnd5e . Client

// CreatureTemplate is the slice of reference-data stats the combat engine
// cares about. Resistances and immunities are not exposed by the upstream
// API, so callers supply those per participant.
type CreatureTemplate struct {
	Key             string
	Name            string
	Type            string
	ArmorClass      int
	HitPoints       int
	HitDice         string
	ChallengeRating float64
	Actions         []*CreatureAction
}

// CreatureAction is one attack option from a creature's stat block
type CreatureAction struct {
	Name        string
	Description string
	AttackBonus int
	Damage      []*DamageRoll
}

// DamageRoll is a parsed damage dice expression, e.g. 2d6+3
type DamageRoll struct {
	DiceCount int
	DiceSize  int
	Bonus     int
}

type Client interface {
	GetCreature(key string) (*CreatureTemplate, error)
	ListCreaturesByCR(minCR, maxCR float64) ([]*CreatureTemplate, error)
}
