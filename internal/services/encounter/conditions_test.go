package encounter_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infinite-realms/combat-engine/internal/domain/conditions"
	dnderr "github.com/infinite-realms/combat-engine/internal/errors"
	"github.com/infinite-realms/combat-engine/internal/services/encounter"
)

func TestApplyCondition(t *testing.T) {
	ctx := context.Background()

	t.Run("applies and reports mechanical effects", func(t *testing.T) {
		svc, _ := newTestService(t, false)
		encID, aID, _ := setupActiveEncounter(t, svc)

		applied, err := svc.ApplyCondition(ctx, encID, &encounter.ApplyConditionInput{
			ParticipantID: aID,
			Condition:     conditions.Poisoned,
			DurationType:  conditions.DurationPermanent,
		})
		require.NoError(t, err)
		assert.True(t, applied.IsActive)

		effects, err := svc.GetMechanicalEffects(ctx, encID, aID)
		require.NoError(t, err)
		assert.Equal(t, conditions.Disadvantage, effects.RollModifiers[conditions.AttackRolls])
		assert.Equal(t, conditions.Disadvantage, effects.RollModifiers[conditions.AbilityChecks])
	})

	t.Run("condition-immune targets rejected", func(t *testing.T) {
		svc, _ := newTestService(t, false)
		enc, err := svc.CreateEncounter(ctx, &encounter.CreateEncounterInput{
			SessionID: "session-1",
			Participants: []*encounter.AddParticipantInput{
				{
					Name: "Construct", MaxHP: 30,
					ConditionImmunities: []conditions.Type{conditions.Poisoned},
				},
			},
		})
		require.NoError(t, err)
		var pID string
		for id := range enc.Participants {
			pID = id
		}
		_, err = svc.RollInitiative(ctx, enc.ID, &encounter.RollInitiativeInput{ParticipantID: pID, Roll: intPtr(10)})
		require.NoError(t, err)
		_, err = svc.StartEncounter(ctx, enc.ID)
		require.NoError(t, err)

		_, err = svc.ApplyCondition(ctx, enc.ID, &encounter.ApplyConditionInput{
			ParticipantID: pID,
			Condition:     conditions.Poisoned,
			DurationType:  conditions.DurationPermanent,
		})
		assert.True(t, dnderr.IsInvalidState(err))
	})

	t.Run("reapply replaces only a strictly longer duration", func(t *testing.T) {
		svc, _ := newTestService(t, false)
		encID, aID, _ := setupActiveEncounter(t, svc)

		short, err := svc.ApplyCondition(ctx, encID, &encounter.ApplyConditionInput{
			ParticipantID: aID,
			Condition:     conditions.Frightened,
			DurationType:  conditions.DurationRounds,
			DurationValue: 2,
		})
		require.NoError(t, err)

		// Shorter candidate: the existing instance stays in force
		inForce, err := svc.ApplyCondition(ctx, encID, &encounter.ApplyConditionInput{
			ParticipantID: aID,
			Condition:     conditions.Frightened,
			DurationType:  conditions.DurationRounds,
			DurationValue: 1,
		})
		require.NoError(t, err)
		assert.Equal(t, short.ID, inForce.ID)

		// Longer candidate replaces
		longer, err := svc.ApplyCondition(ctx, encID, &encounter.ApplyConditionInput{
			ParticipantID: aID,
			Condition:     conditions.Frightened,
			DurationType:  conditions.DurationRounds,
			DurationValue: 5,
		})
		require.NoError(t, err)
		assert.NotEqual(t, short.ID, longer.ID)

		enc, err := svc.GetEncounter(ctx, encID)
		require.NoError(t, err)
		active := enc.Participants[aID].ActiveConditions()
		require.Len(t, active, 1)
		assert.Equal(t, longer.ID, active[0].ID)
	})

	t.Run("validation of duration parameters", func(t *testing.T) {
		svc, _ := newTestService(t, false)

		_, err := svc.ApplyCondition(ctx, "enc", &encounter.ApplyConditionInput{
			ParticipantID: "p", Condition: "confusion", DurationType: conditions.DurationPermanent,
		})
		assert.True(t, dnderr.IsValidation(err))

		_, err = svc.ApplyCondition(ctx, "enc", &encounter.ApplyConditionInput{
			ParticipantID: "p", Condition: conditions.Poisoned, DurationType: conditions.DurationRounds,
		})
		assert.True(t, dnderr.IsValidation(err))

		_, err = svc.ApplyCondition(ctx, "enc", &encounter.ApplyConditionInput{
			ParticipantID: "p", Condition: conditions.Poisoned,
			DurationType: conditions.DurationUntilSave, SaveDC: 13, SaveAbility: "luck",
		})
		assert.True(t, dnderr.IsValidation(err))
	})
}

func TestRemoveCondition(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, false)
	encID, aID, _ := setupActiveEncounter(t, svc)

	applied, err := svc.ApplyCondition(ctx, encID, &encounter.ApplyConditionInput{
		ParticipantID: aID,
		Condition:     conditions.Prone,
		DurationType:  conditions.DurationPermanent,
	})
	require.NoError(t, err)

	require.NoError(t, svc.RemoveCondition(ctx, encID, aID, applied.ID))

	enc, err := svc.GetEncounter(ctx, encID)
	require.NoError(t, err)
	assert.Empty(t, enc.Participants[aID].ActiveConditions())

	// Already inactive
	err = svc.RemoveCondition(ctx, encID, aID, applied.ID)
	assert.True(t, dnderr.IsInvalidState(err))

	err = svc.RemoveCondition(ctx, encID, aID, "nothing")
	assert.True(t, dnderr.IsNotFound(err))
}

func TestAttemptSave(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, false)
	encID, aID, _ := setupActiveEncounter(t, svc)

	applied, err := svc.ApplyCondition(ctx, encID, &encounter.ApplyConditionInput{
		ParticipantID: aID,
		Condition:     conditions.Restrained,
		DurationType:  conditions.DurationUntilSave,
		SaveDC:        14,
		SaveAbility:   conditions.Strength,
	})
	require.NoError(t, err)

	// Failure keeps the condition active
	result, err := svc.AttemptSave(ctx, encID, &encounter.AttemptSaveInput{
		ParticipantID: aID, ConditionID: applied.ID, SaveRollTotal: 9,
	})
	require.NoError(t, err)
	assert.False(t, result.Saved)
	assert.True(t, result.Condition.IsActive)

	// Meeting the DC ends it
	result, err = svc.AttemptSave(ctx, encID, &encounter.AttemptSaveInput{
		ParticipantID: aID, ConditionID: applied.ID, SaveRollTotal: 14,
	})
	require.NoError(t, err)
	assert.True(t, result.Saved)
	assert.False(t, result.Condition.IsActive)

	// No re-saving an ended condition
	_, err = svc.AttemptSave(ctx, encID, &encounter.AttemptSaveInput{
		ParticipantID: aID, ConditionID: applied.ID, SaveRollTotal: 14,
	})
	assert.True(t, dnderr.IsInvalidState(err))
}

func TestAttemptSaveOnlyUntilSave(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, false)
	encID, aID, _ := setupActiveEncounter(t, svc)

	applied, err := svc.ApplyCondition(ctx, encID, &encounter.ApplyConditionInput{
		ParticipantID: aID,
		Condition:     conditions.Blinded,
		DurationType:  conditions.DurationRounds,
		DurationValue: 3,
	})
	require.NoError(t, err)

	_, err = svc.AttemptSave(ctx, encID, &encounter.AttemptSaveInput{
		ParticipantID: aID, ConditionID: applied.ID, SaveRollTotal: 20,
	})
	assert.True(t, dnderr.IsInvalidState(err))
}

func TestAdvantageDisadvantageCancellation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, false)
	encID, aID, _ := setupActiveEncounter(t, svc)

	// Invisible grants advantage on attack rolls; poisoned imposes
	// disadvantage. Together they cancel to a flat roll.
	_, err := svc.ApplyCondition(ctx, encID, &encounter.ApplyConditionInput{
		ParticipantID: aID, Condition: conditions.Invisible, DurationType: conditions.DurationPermanent,
	})
	require.NoError(t, err)
	_, err = svc.ApplyCondition(ctx, encID, &encounter.ApplyConditionInput{
		ParticipantID: aID, Condition: conditions.Poisoned, DurationType: conditions.DurationPermanent,
	})
	require.NoError(t, err)

	effects, err := svc.GetMechanicalEffects(ctx, encID, aID)
	require.NoError(t, err)
	_, hasAttackModifier := effects.RollModifiers[conditions.AttackRolls]
	assert.False(t, hasAttackModifier)
	// Ability checks keep the poisoned disadvantage
	assert.Equal(t, conditions.Disadvantage, effects.RollModifiers[conditions.AbilityChecks])
}
