package combat

import (
	"github.com/infinite-realms/combat-engine/internal/domain/conditions"
)

// ActiveCondition is a condition instance applied to a participant
type ActiveCondition struct {
	ID            string                  `json:"id"`
	ParticipantID string                  `json:"participant_id"`
	Condition     conditions.Type         `json:"condition"`
	DurationType  conditions.DurationType `json:"duration_type"`
	DurationValue int                     `json:"duration_value,omitempty"` // rounds only
	SaveDC        int                     `json:"save_dc,omitempty"`        // until_save only
	SaveAbility   conditions.Ability      `json:"save_ability,omitempty"`   // until_save only

	AppliedAtRound int  `json:"applied_at_round"`
	ExpiresAtRound *int `json:"expires_at_round,omitempty"` // rounds only
	IsActive       bool `json:"is_active"`
}

// NewActiveCondition builds a condition instance, computing the expiry round
// for rounds-based durations. A duration of 1 applied at round 3 is active
// through round 3 and expires once the round counter passes it.
func NewActiveCondition(id, participantID string, cond conditions.Type, durationType conditions.DurationType, durationValue, saveDC int, saveAbility conditions.Ability, currentRound int) *ActiveCondition {
	ac := &ActiveCondition{
		ID:             id,
		ParticipantID:  participantID,
		Condition:      cond,
		DurationType:   durationType,
		AppliedAtRound: currentRound,
		IsActive:       true,
	}

	switch durationType {
	case conditions.DurationRounds:
		ac.DurationValue = durationValue
		expires := currentRound + durationValue - 1
		ac.ExpiresAtRound = &expires
	case conditions.DurationUntilSave:
		ac.SaveDC = saveDC
		ac.SaveAbility = saveAbility
	}

	return ac
}

// ExpiredAt reports whether a rounds-based condition has lapsed at the given
// round. Other duration types never expire on their own.
func (c *ActiveCondition) ExpiredAt(round int) bool {
	return c.DurationType == conditions.DurationRounds &&
		c.ExpiresAtRound != nil &&
		round > *c.ExpiresAtRound
}

// durationRank orders duration policies for the replace-if-longer rule.
// Permanent outlasts until_save, which outlasts any finite rounds duration.
func (c *ActiveCondition) durationRank() int {
	switch c.DurationType {
	case conditions.DurationPermanent:
		return 2
	case conditions.DurationUntilSave:
		return 1
	default:
		return 0
	}
}

// OutlastedBy reports whether candidate has a strictly longer duration than
// the receiver. Two rounds-based conditions compare by expiry round; equal
// or shorter durations never replace.
func (c *ActiveCondition) OutlastedBy(candidate *ActiveCondition) bool {
	if candidate.durationRank() != c.durationRank() {
		return candidate.durationRank() > c.durationRank()
	}
	if c.DurationType == conditions.DurationRounds && candidate.DurationType == conditions.DurationRounds {
		return *candidate.ExpiresAtRound > *c.ExpiresAtRound
	}
	return false
}

// ApplyCondition adds a condition to the participant. Re-applying a condition
// that is already active replaces its duration only when the new duration is
// strictly longer; effects never stack. Returns the condition now in force
// and whether the candidate was applied.
func (p *Participant) ApplyCondition(candidate *ActiveCondition) (*ActiveCondition, bool) {
	for _, existing := range p.Conditions {
		if !existing.IsActive || existing.Condition != candidate.Condition {
			continue
		}
		if existing.OutlastedBy(candidate) {
			existing.IsActive = false
			p.Conditions = append(p.Conditions, candidate)
			return candidate, true
		}
		return existing, false
	}

	p.Conditions = append(p.Conditions, candidate)
	return candidate, true
}

// ExpireConditions deactivates every rounds-based condition that has lapsed
// at the given round and returns the expired instances.
func (p *Participant) ExpireConditions(round int) []*ActiveCondition {
	var expired []*ActiveCondition
	for _, c := range p.Conditions {
		if c.IsActive && c.ExpiredAt(round) {
			c.IsActive = false
			expired = append(expired, c)
		}
	}
	return expired
}

// SavesDue returns the active until_save conditions awaiting a saving throw
func (p *Participant) SavesDue() []*ActiveCondition {
	var due []*ActiveCondition
	for _, c := range p.Conditions {
		if c.IsActive && c.DurationType == conditions.DurationUntilSave {
			due = append(due, c)
		}
	}
	return due
}

// MechanicalEffects aggregates the effect descriptors of every active
// condition, with advantage/disadvantage cancellation already applied.
func (p *Participant) MechanicalEffects() *conditions.MechanicalEffects {
	var sets [][]conditions.Effect
	for _, c := range p.ActiveConditions() {
		if def, ok := conditions.Get(c.Condition); ok {
			sets = append(sets, def.Effects)
		}
	}
	return conditions.Aggregate(sets...)
}
