package combat

import (
	"fmt"

	"github.com/infinite-realms/combat-engine/internal/domain/conditions"
)

// IdentityKind discriminates what a participant refers to
type IdentityKind string

const (
	IdentityCharacter IdentityKind = "character"
	IdentityCreature  IdentityKind = "creature"
	IdentityAdHoc     IdentityKind = "adhoc"
)

// IdentityRef is the sum type behind a participant's identity: a character
// sheet, a creature from the reference data, or a free-text name. Exactly one
// of the payload fields is populated, selected by Kind.
type IdentityRef struct {
	Kind        IdentityKind `json:"kind"`
	CharacterID string       `json:"character_id,omitempty"`
	CreatureKey string       `json:"creature_key,omitempty"`
	Name        string       `json:"name,omitempty"`
}

// CharacterRef builds an identity pointing at a character sheet
func CharacterRef(characterID string) IdentityRef {
	return IdentityRef{Kind: IdentityCharacter, CharacterID: characterID}
}

// CreatureRef builds an identity pointing at a reference creature
func CreatureRef(creatureKey string) IdentityRef {
	return IdentityRef{Kind: IdentityCreature, CreatureKey: creatureKey}
}

// AdHocRef builds an identity for a named one-off participant
func AdHocRef(name string) IdentityRef {
	return IdentityRef{Kind: IdentityAdHoc, Name: name}
}

// Validate checks that exactly the field selected by Kind is set
func (r IdentityRef) Validate() error {
	switch r.Kind {
	case IdentityCharacter:
		if r.CharacterID == "" || r.CreatureKey != "" || r.Name != "" {
			return fmt.Errorf("character identity requires only character_id")
		}
	case IdentityCreature:
		if r.CreatureKey == "" || r.CharacterID != "" || r.Name != "" {
			return fmt.Errorf("creature identity requires only creature_key")
		}
	case IdentityAdHoc:
		if r.Name == "" || r.CharacterID != "" || r.CreatureKey != "" {
			return fmt.Errorf("adhoc identity requires only name")
		}
	default:
		return fmt.Errorf("unknown identity kind %q", r.Kind)
	}
	return nil
}

// Label returns a display string for logs and narration
func (r IdentityRef) Label() string {
	switch r.Kind {
	case IdentityCharacter:
		return "character:" + r.CharacterID
	case IdentityCreature:
		return "creature:" + r.CreatureKey
	default:
		return r.Name
	}
}

// CreatureStats is the read-only base-stat input owned by the
// character/creature subsystem. The engine never mutates it.
type CreatureStats struct {
	ArmorClass          int               `json:"armor_class"`
	Resistances         []DamageType      `json:"resistances,omitempty"`
	Vulnerabilities     []DamageType      `json:"vulnerabilities,omitempty"`
	Immunities          []DamageType      `json:"immunities,omitempty"`
	ConditionImmunities []conditions.Type `json:"condition_immunities,omitempty"`
}

// IsResistant reports whether the creature resists the damage type
func (s CreatureStats) IsResistant(t DamageType) bool {
	return containsDamageType(s.Resistances, t)
}

// IsVulnerable reports whether the creature is vulnerable to the damage type
func (s CreatureStats) IsVulnerable(t DamageType) bool {
	return containsDamageType(s.Vulnerabilities, t)
}

// IsImmune reports whether the creature is immune to the damage type
func (s CreatureStats) IsImmune(t DamageType) bool {
	return containsDamageType(s.Immunities, t)
}

// IsImmuneToCondition reports whether the creature is immune to a condition
func (s CreatureStats) IsImmuneToCondition(c conditions.Type) bool {
	for _, immune := range s.ConditionImmunities {
		if immune == c {
			return true
		}
	}
	return false
}

func containsDamageType(types []DamageType, t DamageType) bool {
	for _, dt := range types {
		if dt == t {
			return true
		}
	}
	return false
}

// ParticipantStatus tracks a participant's hit points and death-save state.
// Invariants: CurrentHP stays within [0, MaxHP], TempHP is never negative,
// and IsConscious tracks CurrentHP > 0 except while stabilized at 0.
type ParticipantStatus struct {
	CurrentHP          int  `json:"current_hp"`
	MaxHP              int  `json:"max_hp"`
	TempHP             int  `json:"temp_hp"`
	IsConscious        bool `json:"is_conscious"`
	IsStable           bool `json:"is_stable"`
	IsDead             bool `json:"is_dead"`
	DeathSaveSuccesses int  `json:"death_save_successes"`
	DeathSaveFailures  int  `json:"death_save_failures"`
}

// Participant is one combatant in an encounter, owned exclusively by it
type Participant struct {
	ID          string      `json:"id"`
	EncounterID string      `json:"encounter_id"`
	Identity    IdentityRef `json:"identity"`

	Initiative         *int `json:"initiative"` // nil until rolled
	InitiativeModifier int  `json:"initiative_modifier"`
	TurnOrder          int  `json:"turn_order"`
	AddedOrder         int  `json:"added_order"` // insertion sequence, final tie-break

	IsActive bool `json:"is_active"` // false once removed mid-combat

	Stats      CreatureStats      `json:"stats"`
	Status     ParticipantStatus  `json:"status"`
	Conditions []*ActiveCondition `json:"conditions,omitempty"`
}

// CanTakeTurn reports whether the turn pointer may stop on this participant.
// Unconscious participants still take turns (to roll death saves); removed or
// dead ones do not.
func (p *Participant) CanTakeTurn() bool {
	return p.IsActive && !p.Status.IsDead
}

// ActiveConditions returns the participant's currently active conditions
func (p *Participant) ActiveConditions() []*ActiveCondition {
	active := make([]*ActiveCondition, 0, len(p.Conditions))
	for _, c := range p.Conditions {
		if c.IsActive {
			active = append(active, c)
		}
	}
	return active
}

// FindCondition returns the condition with the given ID, active or not.
// Callers distinguish ended conditions from unknown IDs.
func (p *Participant) FindCondition(conditionID string) *ActiveCondition {
	for _, c := range p.Conditions {
		if c.ID == conditionID {
			return c
		}
	}
	return nil
}

// Clone returns a deep copy so readers never observe a part-written participant
func (p *Participant) Clone() *Participant {
	clone := *p
	if p.Initiative != nil {
		v := *p.Initiative
		clone.Initiative = &v
	}
	clone.Stats.Resistances = append([]DamageType(nil), p.Stats.Resistances...)
	clone.Stats.Vulnerabilities = append([]DamageType(nil), p.Stats.Vulnerabilities...)
	clone.Stats.Immunities = append([]DamageType(nil), p.Stats.Immunities...)
	clone.Stats.ConditionImmunities = append([]conditions.Type(nil), p.Stats.ConditionImmunities...)
	clone.Conditions = make([]*ActiveCondition, len(p.Conditions))
	for i, c := range p.Conditions {
		cc := *c
		if c.ExpiresAtRound != nil {
			v := *c.ExpiresAtRound
			cc.ExpiresAtRound = &v
		}
		clone.Conditions[i] = &cc
	}
	return &clone
}
