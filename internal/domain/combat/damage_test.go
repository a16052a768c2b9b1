package combat_test

import (
	"testing"

	"github.com/infinite-realms/combat-engine/internal/domain/combat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParticipant(currentHP, maxHP int) *combat.Participant {
	return &combat.Participant{
		ID:          "p1",
		EncounterID: "enc1",
		Identity:    combat.AdHocRef("Test Fighter"),
		IsActive:    true,
		Status: combat.ParticipantStatus{
			CurrentHP:   currentHP,
			MaxHP:       maxHP,
			IsConscious: currentHP > 0,
		},
	}
}

func TestEffectiveDamage(t *testing.T) {
	stats := combat.CreatureStats{
		Resistances:     []combat.DamageType{combat.DamageSlashing},
		Vulnerabilities: []combat.DamageType{combat.DamageFire},
		Immunities:      []combat.DamageType{combat.DamagePoison},
	}

	tests := []struct {
		name       string
		amount     int
		damageType combat.DamageType
		want       int
		modifier   combat.DamageModifier
	}{
		{"immune zeroes", 15, combat.DamagePoison, 0, combat.ModifierImmune},
		{"vulnerable doubles", 7, combat.DamageFire, 14, combat.ModifierVulnerable},
		{"resistant halves rounding down", 9, combat.DamageSlashing, 4, combat.ModifierResisted},
		{"plain damage passes through", 11, combat.DamageCold, 11, combat.ModifierNone},
		{"zero stays zero", 0, combat.DamageFire, 0, combat.ModifierVulnerable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, modifier := combat.EffectiveDamage(tt.amount, tt.damageType, stats)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.modifier, modifier)
		})
	}
}

func TestApplyDamage_TempHPAbsorbsFirst(t *testing.T) {
	p := newTestParticipant(20, 20)
	p.Status.TempHP = 5

	outcome := p.ApplyDamage(8, combat.DamageBludgeoning)

	assert.Equal(t, 5, outcome.TempHPAbsorbed)
	assert.Equal(t, 3, outcome.HPDamage)
	assert.Equal(t, 0, p.Status.TempHP)
	assert.Equal(t, 17, p.Status.CurrentHP)
}

func TestApplyDamage_TempHPCoversEverything(t *testing.T) {
	p := newTestParticipant(20, 20)
	p.Status.TempHP = 10

	outcome := p.ApplyDamage(6, combat.DamageFire)

	assert.Equal(t, 6, outcome.TempHPAbsorbed)
	assert.Equal(t, 0, outcome.HPDamage)
	assert.Equal(t, 4, p.Status.TempHP)
	assert.Equal(t, 20, p.Status.CurrentHP)
}

func TestApplyDamage_DropsToZeroAndFallsUnconscious(t *testing.T) {
	p := newTestParticipant(5, 20)
	p.Status.DeathSaveSuccesses = 2 // stale counters from an earlier fall

	outcome := p.ApplyDamage(9, combat.DamageSlashing)

	assert.True(t, outcome.FellUnconscious)
	assert.False(t, outcome.InstantDeath)
	assert.Equal(t, 0, p.Status.CurrentHP)
	assert.False(t, p.Status.IsConscious)
	assert.Equal(t, 0, p.Status.DeathSaveSuccesses)
	assert.Equal(t, 0, p.Status.DeathSaveFailures)
}

func TestApplyDamage_MassiveDamageInstantDeath(t *testing.T) {
	// Overflow beyond 0 at least equal to max HP kills outright
	p := newTestParticipant(5, 20)

	outcome := p.ApplyDamage(25, combat.DamageForce)

	assert.True(t, outcome.InstantDeath)
	assert.True(t, outcome.Died)
	assert.True(t, p.Status.IsDead)
	assert.Equal(t, 0, p.Status.CurrentHP)
}

func TestApplyDamage_OverflowJustUnderMassiveThreshold(t *testing.T) {
	p := newTestParticipant(5, 20)

	outcome := p.ApplyDamage(24, combat.DamageForce) // overflow 19 < maxHP 20

	assert.True(t, outcome.FellUnconscious)
	assert.False(t, outcome.InstantDeath)
	assert.False(t, p.Status.IsDead)
}

func TestApplyDamage_WhileDownCausesDeathSaveFailure(t *testing.T) {
	p := newTestParticipant(0, 20)
	p.Status.IsConscious = false

	outcome := p.ApplyDamage(4, combat.DamageSlashing)

	assert.True(t, outcome.DeathSaveFailed)
	assert.Equal(t, 0, outcome.HPDamage)
	assert.Equal(t, 1, p.Status.DeathSaveFailures)
	assert.False(t, p.Status.IsDead)
}

func TestApplyDamage_WhileDownBreaksStabilization(t *testing.T) {
	p := newTestParticipant(0, 20)
	p.Status.IsConscious = false
	p.Status.IsStable = true
	p.Status.DeathSaveSuccesses = 3

	outcome := p.ApplyDamage(4, combat.DamageSlashing)

	assert.True(t, outcome.DeathSaveFailed)
	assert.False(t, p.Status.IsStable)
}

func TestApplyDamage_WhileDownThirdFailureKills(t *testing.T) {
	p := newTestParticipant(0, 20)
	p.Status.IsConscious = false
	p.Status.DeathSaveFailures = 2

	outcome := p.ApplyDamage(4, combat.DamageSlashing)

	assert.True(t, outcome.Died)
	assert.True(t, p.Status.IsDead)
}

func TestApplyDamage_ImmuneWhileDownIsHarmless(t *testing.T) {
	p := newTestParticipant(0, 20)
	p.Status.IsConscious = false
	p.Stats.Immunities = []combat.DamageType{combat.DamagePoison}

	outcome := p.ApplyDamage(10, combat.DamagePoison)

	assert.False(t, outcome.DeathSaveFailed)
	assert.Equal(t, 0, p.Status.DeathSaveFailures)
}

func TestHeal_ClampsAtMax(t *testing.T) {
	p := newTestParticipant(15, 20)

	outcome := p.Heal(10)

	assert.Equal(t, 5, outcome.Healed)
	assert.Equal(t, 20, p.Status.CurrentHP)
}

func TestHeal_RevivesUnconscious(t *testing.T) {
	p := newTestParticipant(0, 20)
	p.Status.IsConscious = false
	p.Status.DeathSaveSuccesses = 1
	p.Status.DeathSaveFailures = 2

	outcome := p.Heal(3)

	assert.True(t, outcome.RegainedConsciousness)
	assert.True(t, p.Status.IsConscious)
	assert.Equal(t, 3, p.Status.CurrentHP)
	assert.Equal(t, 0, p.Status.DeathSaveSuccesses)
	assert.Equal(t, 0, p.Status.DeathSaveFailures)
}

func TestHeal_RevivesStabilized(t *testing.T) {
	p := newTestParticipant(0, 20)
	p.Status.IsConscious = false
	p.Status.IsStable = true
	p.Status.DeathSaveSuccesses = 3

	outcome := p.Heal(1)

	assert.True(t, outcome.RegainedConsciousness)
	assert.False(t, p.Status.IsStable)
	assert.Equal(t, 0, p.Status.DeathSaveSuccesses)
}

func TestSetTempHP_NeverDecreases(t *testing.T) {
	p := newTestParticipant(20, 20)
	p.Status.TempHP = 10

	p.SetTempHP(4)
	assert.Equal(t, 10, p.Status.TempHP, "lower value must not replace existing temp HP")

	p.SetTempHP(12)
	assert.Equal(t, 12, p.Status.TempHP, "higher value takes over")
}

func TestRollDeathSave_MixedSequence(t *testing.T) {
	// Rolls [12, 1, 15]: one success, then two failures, then another success.
	// The participant is neither dead nor stable afterwards.
	p := newTestParticipant(0, 20)
	p.Status.IsConscious = false

	outcome := p.RollDeathSave(12)
	assert.True(t, outcome.Success)
	assert.Equal(t, 1, outcome.Successes)
	assert.Equal(t, 0, outcome.Failures)

	outcome = p.RollDeathSave(1)
	assert.False(t, outcome.Success)
	assert.Equal(t, 2, outcome.Failures, "natural 1 counts as two failures")

	outcome = p.RollDeathSave(15)
	assert.True(t, outcome.Success)
	assert.Equal(t, 2, outcome.Successes)
	assert.Equal(t, 2, outcome.Failures)
	assert.False(t, outcome.Died)
	assert.False(t, outcome.Stabilized)
	assert.False(t, p.Status.IsConscious)
}

func TestRollDeathSave_NaturalTwentyRevives(t *testing.T) {
	p := newTestParticipant(0, 20)
	p.Status.IsConscious = false
	p.Status.DeathSaveFailures = 2

	outcome := p.RollDeathSave(20)

	assert.True(t, outcome.Revived)
	assert.Equal(t, 1, p.Status.CurrentHP)
	assert.True(t, p.Status.IsConscious)
	assert.Equal(t, 0, p.Status.DeathSaveFailures)
}

func TestRollDeathSave_NaturalOneAtTwoFailuresClampsToThree(t *testing.T) {
	p := newTestParticipant(0, 20)
	p.Status.IsConscious = false
	p.Status.DeathSaveFailures = 2

	outcome := p.RollDeathSave(1)

	assert.True(t, outcome.Died)
	assert.Equal(t, 3, outcome.Failures)
	assert.Equal(t, 3, p.Status.DeathSaveFailures)
}

func TestRollDeathSave_ThreeFailuresIsDeath(t *testing.T) {
	p := newTestParticipant(0, 20)
	p.Status.IsConscious = false

	p.RollDeathSave(5)
	p.RollDeathSave(9)
	outcome := p.RollDeathSave(3)

	assert.True(t, outcome.Died)
	assert.True(t, p.Status.IsDead)
}

func TestRollDeathSave_ThreeSuccessesStabilizes(t *testing.T) {
	p := newTestParticipant(0, 20)
	p.Status.IsConscious = false

	p.RollDeathSave(10)
	p.RollDeathSave(14)
	outcome := p.RollDeathSave(19)

	assert.True(t, outcome.Stabilized)
	assert.True(t, p.Status.IsStable)
	assert.False(t, p.Status.IsConscious, "stable participants stay unconscious until healed")
	assert.Equal(t, 0, p.Status.CurrentHP)
}

func TestRollDeathSave_BoundaryTen(t *testing.T) {
	p := newTestParticipant(0, 20)
	p.Status.IsConscious = false

	outcome := p.RollDeathSave(10)
	require.True(t, outcome.Success, "10 is a success")

	outcome = p.RollDeathSave(9)
	require.False(t, outcome.Success, "9 is a failure")
}
