package encounter

import (
	"context"
	"time"

	"github.com/infinite-realms/combat-engine/internal/domain/combat"
	dnderr "github.com/infinite-realms/combat-engine/internal/errors"
	"github.com/infinite-realms/combat-engine/internal/events"
)

// ApplyDamage applies typed damage to a participant: resistance math, temp
// HP absorption, unconsciousness, and massive-damage instant death. Every
// application appends one damage log entry, even when immunity zeroes it.
func (s *service) ApplyDamage(ctx context.Context, encounterID string, input *ApplyDamageInput) (*combat.DamageOutcome, error) {
	if input == nil {
		return nil, dnderr.Validation("input cannot be nil")
	}

	var outcome *combat.DamageOutcome
	err := s.mutate(ctx, encounterID, func(enc *combat.Encounter) (*events.Event, error) {
		target, err := s.validateDamageInput(enc, input)
		if err != nil {
			return nil, err
		}

		outcome = s.damage(enc, target, input, false)

		return &events.Event{
			Type:         events.DamageApplied,
			Participants: []*combat.Participant{target.Clone()},
			Detail:       outcome,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return outcome, nil
}

func (s *service) validateDamageInput(enc *combat.Encounter, input *ApplyDamageInput) (*combat.Participant, error) {
	if input.Amount < 0 {
		return nil, dnderr.Validation("damage amount cannot be negative")
	}
	if !combat.ValidDamageType(input.DamageType) {
		return nil, dnderr.Validationf("unknown damage type: %s", input.DamageType)
	}

	target, err := activeParticipant(enc, input.ParticipantID)
	if err != nil {
		return nil, err
	}
	if target.Status.IsDead {
		return nil, dnderr.InvalidStatef("participant %s is dead", input.ParticipantID)
	}

	return target, nil
}

// damage runs the resolved damage against the target and appends the audit
// entry. Callers have already validated the input.
func (s *service) damage(enc *combat.Encounter, target *combat.Participant, input *ApplyDamageInput, critical bool) *combat.DamageOutcome {
	outcome := target.ApplyDamage(input.Amount, input.DamageType)

	enc.AppendDamageLog(&combat.DamageLogEntry{
		ID:                  s.uuidGenerator.New(),
		ParticipantID:       target.ID,
		Amount:              input.Amount,
		EffectiveAmount:     outcome.EffectiveAmount,
		DamageType:          input.DamageType,
		SourceParticipantID: input.SourceParticipantID,
		SourceDescription:   input.SourceDescription,
		IsCritical:          critical,
		Round:               enc.Round,
		CreatedAt:           time.Now().UTC(),
	})

	return outcome
}

// Heal restores hit points. Healing an unconscious participant brings them
// back up; healing a dead one is rejected.
func (s *service) Heal(ctx context.Context, encounterID string, input *HealInput) (*combat.HealOutcome, error) {
	if input == nil {
		return nil, dnderr.Validation("input cannot be nil")
	}

	var outcome *combat.HealOutcome
	err := s.mutate(ctx, encounterID, func(enc *combat.Encounter) (*events.Event, error) {
		if input.Amount < 0 {
			return nil, dnderr.Validation("heal amount cannot be negative")
		}

		target, err := activeParticipant(enc, input.ParticipantID)
		if err != nil {
			return nil, err
		}
		if target.Status.IsDead {
			return nil, dnderr.InvalidStatef("participant %s is dead", input.ParticipantID)
		}

		outcome = target.Heal(input.Amount)

		return &events.Event{
			Type:         events.HealingApplied,
			Participants: []*combat.Participant{target.Clone()},
			Detail:       outcome,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return outcome, nil
}

// SetTempHP grants temporary hit points; a lower value never replaces a
// higher one
func (s *service) SetTempHP(ctx context.Context, encounterID, participantID string, amount int) (*combat.Participant, error) {
	var updated *combat.Participant
	err := s.mutate(ctx, encounterID, func(enc *combat.Encounter) (*events.Event, error) {
		if amount < 0 {
			return nil, dnderr.Validation("temp HP cannot be negative")
		}

		target, err := activeParticipant(enc, participantID)
		if err != nil {
			return nil, err
		}
		if target.Status.IsDead {
			return nil, dnderr.InvalidStatef("participant %s is dead", participantID)
		}

		target.SetTempHP(amount)
		updated = target.Clone()

		return &events.Event{
			Type:         events.TempHPSet,
			Participants: []*combat.Participant{target.Clone()},
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// RollDeathSave resolves one death saving throw. Only participants who are
// down, not stable, and not dead roll.
func (s *service) RollDeathSave(ctx context.Context, encounterID string, input *DeathSaveInput) (*combat.DeathSaveOutcome, error) {
	if input == nil {
		return nil, dnderr.Validation("input cannot be nil")
	}
	if input.Roll != nil && (*input.Roll < 1 || *input.Roll > 20) {
		return nil, dnderr.Validation("death save roll must be within [1, 20]")
	}

	var outcome *combat.DeathSaveOutcome
	err := s.mutate(ctx, encounterID, func(enc *combat.Encounter) (*events.Event, error) {
		target, err := activeParticipant(enc, input.ParticipantID)
		if err != nil {
			return nil, err
		}
		if err := s.checkTurn(enc, input.ParticipantID); err != nil {
			return nil, err
		}
		if target.Status.IsDead {
			return nil, dnderr.InvalidStatef("participant %s is dead", input.ParticipantID)
		}
		if target.Status.IsConscious {
			return nil, dnderr.InvalidStatef("participant %s is conscious", input.ParticipantID)
		}
		if target.Status.IsStable {
			return nil, dnderr.InvalidStatef("participant %s is stable", input.ParticipantID)
		}

		roll, err := s.resolveDeathSaveRoll(input)
		if err != nil {
			return nil, err
		}
		outcome = target.RollDeathSave(roll)

		return &events.Event{
			Type:         events.DeathSaveRolled,
			Participants: []*combat.Participant{target.Clone()},
			Detail:       outcome,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return outcome, nil
}

func (s *service) resolveDeathSaveRoll(input *DeathSaveInput) (int, error) {
	if input.Roll != nil {
		return *input.Roll, nil
	}

	result, err := s.diceRoller.Roll(1, 20, 0)
	if err != nil {
		return 0, dnderr.Wrap(err, "failed to roll death save")
	}
	return result.Total, nil
}

// ResolveAttack resolves a single-target attack. A natural 20 always hits
// and is critical, a natural 1 always misses; otherwise the total is
// compared against the target's armor class. On a critical the caller
// supplies already-doubled damage dice; the engine records but never
// re-doubles. A miss changes no state.
func (s *service) ResolveAttack(ctx context.Context, encounterID string, input *AttackInput) (*AttackResult, error) {
	if input == nil {
		return nil, dnderr.Validation("input cannot be nil")
	}
	if input.Natural20 && input.Natural1 {
		return nil, dnderr.Validation("natural 20 and natural 1 are mutually exclusive")
	}

	var result *AttackResult
	err := s.mutate(ctx, encounterID, func(enc *combat.Encounter) (*events.Event, error) {
		attacker, err := activeParticipant(enc, input.AttackerID)
		if err != nil {
			return nil, err
		}
		if err := s.checkTurn(enc, input.AttackerID); err != nil {
			return nil, err
		}

		damageInput := &ApplyDamageInput{
			ParticipantID:       input.TargetID,
			Amount:              input.DamageRoll,
			DamageType:          input.DamageType,
			SourceParticipantID: attacker.ID,
			SourceDescription:   "attack by " + attacker.Identity.Label(),
		}
		target, err := s.validateDamageInput(enc, damageInput)
		if err != nil {
			return nil, err
		}

		evaluation := combat.EvaluateAttack(input.AttackRollTotal, target.Stats.ArmorClass, input.Natural20, input.Natural1)
		result = &AttackResult{
			AttackerID: attacker.ID,
			TargetID:   target.ID,
			Hit:        evaluation.Hit,
			Critical:   evaluation.Critical,
		}

		if evaluation.Hit {
			result.Damage = s.damage(enc, target, damageInput, evaluation.Critical)
		}

		return &events.Event{
			Type:         events.AttackResolved,
			Participants: []*combat.Participant{target.Clone()},
			Detail:       result,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ResolveAoeAttack resolves a save-based multi-target attack: each target
// saves against the DC and takes full or (by caller policy) half damage.
// Target validation happens up front so the operation mutates all targets
// or none.
func (s *service) ResolveAoeAttack(ctx context.Context, encounterID string, input *AoeAttackInput) ([]*AoeTargetResult, error) {
	if input == nil {
		return nil, dnderr.Validation("input cannot be nil")
	}
	if len(input.Targets) == 0 {
		return nil, dnderr.Validation("at least one target is required")
	}
	if input.DamageRoll < 0 {
		return nil, dnderr.Validation("damage amount cannot be negative")
	}
	if !combat.ValidDamageType(input.DamageType) {
		return nil, dnderr.Validationf("unknown damage type: %s", input.DamageType)
	}

	var results []*AoeTargetResult
	err := s.mutate(ctx, encounterID, func(enc *combat.Encounter) (*events.Event, error) {
		caster, err := activeParticipant(enc, input.CasterID)
		if err != nil {
			return nil, err
		}
		if err := s.checkTurn(enc, input.CasterID); err != nil {
			return nil, err
		}

		targets := make([]*combat.Participant, len(input.Targets))
		for i, t := range input.Targets {
			target, err := activeParticipant(enc, t.ParticipantID)
			if err != nil {
				return nil, err
			}
			if target.Status.IsDead {
				return nil, dnderr.InvalidStatef("participant %s is dead", t.ParticipantID)
			}
			targets[i] = target
		}

		results = make([]*AoeTargetResult, len(targets))
		touched := make([]*combat.Participant, len(targets))
		for i, target := range targets {
			saved := input.Targets[i].SaveRoll >= input.SaveDC
			amount := combat.SaveDamage(input.DamageRoll, saved, input.HalfOnSave)

			outcome := s.damage(enc, target, &ApplyDamageInput{
				ParticipantID:       target.ID,
				Amount:              amount,
				DamageType:          input.DamageType,
				SourceParticipantID: caster.ID,
				SourceDescription:   "area attack by " + caster.Identity.Label(),
			}, false)

			results[i] = &AoeTargetResult{
				ParticipantID: target.ID,
				Saved:         saved,
				Damage:        outcome,
			}
			touched[i] = target.Clone()
		}

		return &events.Event{
			Type:         events.AttackResolved,
			Participants: touched,
			Detail:       results,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return results, nil
}
