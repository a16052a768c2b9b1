package encounter

import (
	"context"

	"github.com/infinite-realms/combat-engine/internal/domain/combat"
	"github.com/infinite-realms/combat-engine/internal/domain/conditions"
	dnderr "github.com/infinite-realms/combat-engine/internal/errors"
	"github.com/infinite-realms/combat-engine/internal/events"
)

// ApplyCondition applies a condition to a participant. Condition-immune
// targets are rejected; re-applying an active condition replaces its
// duration only when the new one is strictly longer.
func (s *service) ApplyCondition(ctx context.Context, encounterID string, input *ApplyConditionInput) (*combat.ActiveCondition, error) {
	if input == nil {
		return nil, dnderr.Validation("input cannot be nil")
	}
	if err := validateConditionInput(input); err != nil {
		return nil, err
	}

	var inForce *combat.ActiveCondition
	err := s.mutate(ctx, encounterID, func(enc *combat.Encounter) (*events.Event, error) {
		target, err := activeParticipant(enc, input.ParticipantID)
		if err != nil {
			return nil, err
		}
		if target.Stats.IsImmuneToCondition(input.Condition) {
			return nil, dnderr.InvalidStatef("participant %s is immune to %s", input.ParticipantID, input.Condition)
		}

		candidate := combat.NewActiveCondition(
			s.uuidGenerator.New(),
			target.ID,
			input.Condition,
			input.DurationType,
			input.DurationValue,
			input.SaveDC,
			input.SaveAbility,
			enc.Round,
		)

		result, applied := target.ApplyCondition(candidate)
		inForce = result
		if !applied {
			// Existing instance outlasts the candidate; nothing changed
			return nil, nil
		}

		return &events.Event{
			Type:         events.ConditionApplied,
			Participants: []*combat.Participant{target.Clone()},
			Detail:       result,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return inForce, nil
}

func validateConditionInput(input *ApplyConditionInput) error {
	if !conditions.Known(input.Condition) {
		return dnderr.Validationf("unknown condition: %s", input.Condition)
	}
	if !conditions.ValidDurationType(input.DurationType) {
		return dnderr.Validationf("unknown duration type: %s", input.DurationType)
	}

	switch input.DurationType {
	case conditions.DurationRounds:
		if input.DurationValue < 1 {
			return dnderr.Validation("duration_value must be at least 1 for rounds durations")
		}
	case conditions.DurationUntilSave:
		if input.SaveDC < 1 {
			return dnderr.Validation("save_dc is required for until_save durations")
		}
		if !conditions.ValidAbility(input.SaveAbility) {
			return dnderr.Validationf("unknown save ability: %s", input.SaveAbility)
		}
	}

	return nil
}

// RemoveCondition explicitly deactivates one condition instance
func (s *service) RemoveCondition(ctx context.Context, encounterID, participantID, conditionID string) error {
	return s.mutate(ctx, encounterID, func(enc *combat.Encounter) (*events.Event, error) {
		target, err := activeParticipant(enc, participantID)
		if err != nil {
			return nil, err
		}

		condition := target.FindCondition(conditionID)
		if condition == nil {
			return nil, dnderr.NotFoundf("condition not found: %s", conditionID)
		}
		if !condition.IsActive {
			return nil, dnderr.InvalidStatef("condition %s is no longer active", conditionID)
		}

		condition.IsActive = false

		return &events.Event{
			Type:         events.ConditionRemoved,
			Participants: []*combat.Participant{target.Clone()},
			Detail:       condition,
		}, nil
	})
}

// AttemptSave resolves a saving throw against an until_save condition. A
// total meeting the DC ends the condition; a failure leaves it active for
// the next qualifying turn.
func (s *service) AttemptSave(ctx context.Context, encounterID string, input *AttemptSaveInput) (*SaveResult, error) {
	if input == nil {
		return nil, dnderr.Validation("input cannot be nil")
	}

	var result *SaveResult
	err := s.mutate(ctx, encounterID, func(enc *combat.Encounter) (*events.Event, error) {
		target, err := activeParticipant(enc, input.ParticipantID)
		if err != nil {
			return nil, err
		}

		condition := target.FindCondition(input.ConditionID)
		if condition == nil {
			return nil, dnderr.NotFoundf("condition not found: %s", input.ConditionID)
		}
		if !condition.IsActive {
			return nil, dnderr.InvalidStatef("condition %s is no longer active", input.ConditionID)
		}
		if condition.DurationType != conditions.DurationUntilSave {
			return nil, dnderr.InvalidStatef("condition %s does not allow saving throws", input.ConditionID)
		}

		saved := input.SaveRollTotal >= condition.SaveDC
		if saved {
			condition.IsActive = false
		}
		result = &SaveResult{Saved: saved, Condition: condition}

		if !saved {
			// Condition persists; no state change to broadcast
			return nil, nil
		}

		return &events.Event{
			Type:         events.ConditionSaved,
			Participants: []*combat.Participant{target.Clone()},
			Detail:       result,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// GetMechanicalEffects returns the aggregate effect descriptors for a
// participant's active conditions. Advantage and disadvantage on the same
// roll kind cancel to a flat roll here, not in callers.
func (s *service) GetMechanicalEffects(ctx context.Context, encounterID, participantID string) (*conditions.MechanicalEffects, error) {
	encounter, err := s.GetEncounter(ctx, encounterID)
	if err != nil {
		return nil, err
	}

	participant := encounter.Participant(participantID)
	if participant == nil {
		return nil, dnderr.NotFoundf("participant not found: %s", participantID)
	}

	return participant.MechanicalEffects(), nil
}
