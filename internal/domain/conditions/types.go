package conditions

// Type identifies a condition
type Type string

// Standard D&D 5e conditions
const (
	Blinded       Type = "blinded"
	Charmed       Type = "charmed"
	Deafened      Type = "deafened"
	Frightened    Type = "frightened"
	Grappled      Type = "grappled"
	Incapacitated Type = "incapacitated"
	Invisible     Type = "invisible"
	Paralyzed     Type = "paralyzed"
	Petrified     Type = "petrified"
	Poisoned      Type = "poisoned"
	Prone         Type = "prone"
	Restrained    Type = "restrained"
	Stunned       Type = "stunned"
	Unconscious   Type = "unconscious"
	Exhaustion    Type = "exhaustion"
)

// Ability names a saving-throw ability
type Ability string

const (
	Strength     Ability = "str"
	Dexterity    Ability = "dex"
	Constitution Ability = "con"
	Intelligence Ability = "int"
	Wisdom       Ability = "wis"
	Charisma     Ability = "cha"
)

// DurationType defines how long an applied condition lasts
type DurationType string

const (
	// DurationRounds expires once the encounter round passes the computed bound
	DurationRounds DurationType = "rounds"

	// DurationUntilSave lasts until the target passes its saving throw
	DurationUntilSave DurationType = "until_save"

	// DurationPermanent lasts until explicitly removed
	DurationPermanent DurationType = "permanent"
)

// ValidAbility reports whether s names a known saving-throw ability
func ValidAbility(s Ability) bool {
	switch s {
	case Strength, Dexterity, Constitution, Intelligence, Wisdom, Charisma:
		return true
	}
	return false
}

// ValidDurationType reports whether d is a known duration policy
func ValidDurationType(d DurationType) bool {
	switch d {
	case DurationRounds, DurationUntilSave, DurationPermanent:
		return true
	}
	return false
}
