package conditions

// EffectKind discriminates the mechanical effect variants. Modeling effects
// as a closed enum instead of a free-form key/value map lets callers switch
// exhaustively over every kind the library can produce.
type EffectKind string

const (
	// KindRollModifier grants advantage or disadvantage on a roll kind
	KindRollModifier EffectKind = "roll_modifier"

	// KindAutoFailSave makes the creature automatically fail saves for an ability
	KindAutoFailSave EffectKind = "auto_fail_save"

	// KindNoActions prevents taking actions
	KindNoActions EffectKind = "no_actions"

	// KindNoReactions prevents taking reactions
	KindNoReactions EffectKind = "no_reactions"

	// KindNoMovement reduces speed to zero
	KindNoMovement EffectKind = "no_movement"
)

// RollKind identifies which rolls a modifier applies to
type RollKind string

const (
	AttackRolls    RollKind = "attack_rolls"
	AbilityChecks  RollKind = "ability_checks"
	SavingThrows   RollKind = "saving_throws"
	AttacksAgainst RollKind = "attacks_against"
)

// RollEffect is the direction of a roll modifier
type RollEffect string

const (
	Advantage    RollEffect = "advantage"
	Disadvantage RollEffect = "disadvantage"
)

// Effect is one mechanical effect of a condition. Only the fields relevant
// to Kind are set: Roll and Modifier for KindRollModifier, Ability for
// KindAutoFailSave.
type Effect struct {
	Kind     EffectKind `json:"kind"`
	Roll     RollKind   `json:"roll,omitempty"`
	Modifier RollEffect `json:"modifier,omitempty"`
	Ability  Ability    `json:"ability,omitempty"`
}

// Definition is the reference entry for a condition
type Definition struct {
	Type        Type     `json:"type"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Effects     []Effect `json:"effects"`
}

func rollMod(roll RollKind, effect RollEffect) Effect {
	return Effect{Kind: KindRollModifier, Roll: roll, Modifier: effect}
}

func autoFail(ability Ability) Effect {
	return Effect{Kind: KindAutoFailSave, Ability: ability}
}

// library holds the reference data for every condition the engine understands
var library = map[Type]*Definition{
	Blinded: {
		Type:        Blinded,
		Name:        "Blinded",
		Description: "Can't see; automatically fails ability checks that require sight.",
		Effects: []Effect{
			rollMod(AttackRolls, Disadvantage),
			rollMod(AttacksAgainst, Advantage),
		},
	},
	Charmed: {
		Type:        Charmed,
		Name:        "Charmed",
		Description: "Can't attack the charmer; the charmer has advantage on social checks.",
	},
	Deafened: {
		Type:        Deafened,
		Name:        "Deafened",
		Description: "Can't hear; automatically fails ability checks that require hearing.",
	},
	Frightened: {
		Type:        Frightened,
		Name:        "Frightened",
		Description: "Disadvantage on checks and attacks while the source of fear is in sight.",
		Effects: []Effect{
			rollMod(AttackRolls, Disadvantage),
			rollMod(AbilityChecks, Disadvantage),
		},
	},
	Grappled: {
		Type:        Grappled,
		Name:        "Grappled",
		Description: "Speed becomes 0.",
		Effects: []Effect{
			{Kind: KindNoMovement},
		},
	},
	Incapacitated: {
		Type:        Incapacitated,
		Name:        "Incapacitated",
		Description: "Can't take actions or reactions.",
		Effects: []Effect{
			{Kind: KindNoActions},
			{Kind: KindNoReactions},
		},
	},
	Invisible: {
		Type:        Invisible,
		Name:        "Invisible",
		Description: "Can't be seen without special senses.",
		Effects: []Effect{
			rollMod(AttackRolls, Advantage),
			rollMod(AttacksAgainst, Disadvantage),
		},
	},
	Paralyzed: {
		Type:        Paralyzed,
		Name:        "Paralyzed",
		Description: "Incapacitated and can't move or speak.",
		Effects: []Effect{
			{Kind: KindNoActions},
			{Kind: KindNoReactions},
			{Kind: KindNoMovement},
			autoFail(Strength),
			autoFail(Dexterity),
			rollMod(AttacksAgainst, Advantage),
		},
	},
	Petrified: {
		Type:        Petrified,
		Name:        "Petrified",
		Description: "Transformed into an inanimate substance; incapacitated.",
		Effects: []Effect{
			{Kind: KindNoActions},
			{Kind: KindNoReactions},
			{Kind: KindNoMovement},
			autoFail(Strength),
			autoFail(Dexterity),
			rollMod(AttacksAgainst, Advantage),
		},
	},
	Poisoned: {
		Type:        Poisoned,
		Name:        "Poisoned",
		Description: "Disadvantage on attack rolls and ability checks.",
		Effects: []Effect{
			rollMod(AttackRolls, Disadvantage),
			rollMod(AbilityChecks, Disadvantage),
		},
	},
	Prone: {
		Type:        Prone,
		Name:        "Prone",
		Description: "Can only crawl until standing up.",
		Effects: []Effect{
			rollMod(AttackRolls, Disadvantage),
			rollMod(AttacksAgainst, Advantage),
		},
	},
	Restrained: {
		Type:        Restrained,
		Name:        "Restrained",
		Description: "Speed becomes 0; attacks suffer and attackers benefit.",
		Effects: []Effect{
			{Kind: KindNoMovement},
			rollMod(AttackRolls, Disadvantage),
			rollMod(AttacksAgainst, Advantage),
			rollMod(SavingThrows, Disadvantage),
		},
	},
	Stunned: {
		Type:        Stunned,
		Name:        "Stunned",
		Description: "Incapacitated, can't move, speaks falteringly.",
		Effects: []Effect{
			{Kind: KindNoActions},
			{Kind: KindNoReactions},
			{Kind: KindNoMovement},
			autoFail(Strength),
			autoFail(Dexterity),
			rollMod(AttacksAgainst, Advantage),
		},
	},
	Unconscious: {
		Type:        Unconscious,
		Name:        "Unconscious",
		Description: "Incapacitated, prone, unaware of surroundings.",
		Effects: []Effect{
			{Kind: KindNoActions},
			{Kind: KindNoReactions},
			{Kind: KindNoMovement},
			autoFail(Strength),
			autoFail(Dexterity),
			rollMod(AttacksAgainst, Advantage),
		},
	},
	Exhaustion: {
		Type:        Exhaustion,
		Name:        "Exhaustion",
		Description: "Disadvantage on ability checks (level 1 effect).",
		Effects: []Effect{
			rollMod(AbilityChecks, Disadvantage),
		},
	},
}

// Get returns the definition for a condition type
func Get(t Type) (*Definition, bool) {
	def, ok := library[t]
	return def, ok
}

// Known reports whether t is a condition the library understands
func Known(t Type) bool {
	_, ok := library[t]
	return ok
}

// All returns every condition definition, for the reference endpoint
func All() []*Definition {
	defs := make([]*Definition, 0, len(library))
	for _, def := range library {
		defs = append(defs, def)
	}
	return defs
}

// MechanicalEffects is the aggregate of every active condition on a
// participant, with advantage/disadvantage already cancelled per roll kind.
type MechanicalEffects struct {
	RollModifiers map[RollKind]RollEffect `json:"roll_modifiers"`
	AutoFailSaves []Ability               `json:"auto_fail_saves,omitempty"`
	CantAct       bool                    `json:"cant_act"`
	CantReact     bool                    `json:"cant_react"`
	CantMove      bool                    `json:"cant_move"`
}

// Aggregate unions effect lists from active conditions. When a roll kind
// accumulates both advantage and disadvantage the two cancel to a flat roll
// and the kind is omitted from RollModifiers.
func Aggregate(effectSets ...[]Effect) *MechanicalEffects {
	out := &MechanicalEffects{
		RollModifiers: make(map[RollKind]RollEffect),
	}

	hasAdv := make(map[RollKind]bool)
	hasDis := make(map[RollKind]bool)
	failSeen := make(map[Ability]bool)

	for _, effects := range effectSets {
		for _, effect := range effects {
			switch effect.Kind {
			case KindRollModifier:
				if effect.Modifier == Advantage {
					hasAdv[effect.Roll] = true
				} else {
					hasDis[effect.Roll] = true
				}
			case KindAutoFailSave:
				if !failSeen[effect.Ability] {
					failSeen[effect.Ability] = true
					out.AutoFailSaves = append(out.AutoFailSaves, effect.Ability)
				}
			case KindNoActions:
				out.CantAct = true
			case KindNoReactions:
				out.CantReact = true
			case KindNoMovement:
				out.CantMove = true
			}
		}
	}

	for kind := range hasAdv {
		if !hasDis[kind] {
			out.RollModifiers[kind] = Advantage
		}
	}
	for kind := range hasDis {
		if !hasAdv[kind] {
			out.RollModifiers[kind] = Disadvantage
		}
	}

	return out
}
