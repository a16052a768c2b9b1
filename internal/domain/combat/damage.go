package combat

// DamageType identifies a damage type
type DamageType string

const (
	DamageAcid        DamageType = "acid"
	DamageBludgeoning DamageType = "bludgeoning"
	DamageCold        DamageType = "cold"
	DamageFire        DamageType = "fire"
	DamageForce       DamageType = "force"
	DamageLightning   DamageType = "lightning"
	DamageNecrotic    DamageType = "necrotic"
	DamagePiercing    DamageType = "piercing"
	DamagePoison      DamageType = "poison"
	DamagePsychic     DamageType = "psychic"
	DamageRadiant     DamageType = "radiant"
	DamageSlashing    DamageType = "slashing"
	DamageThunder     DamageType = "thunder"
)

// ValidDamageType reports whether t is a known damage type
func ValidDamageType(t DamageType) bool {
	switch t {
	case DamageAcid, DamageBludgeoning, DamageCold, DamageFire, DamageForce,
		DamageLightning, DamageNecrotic, DamagePiercing, DamagePoison,
		DamagePsychic, DamageRadiant, DamageSlashing, DamageThunder:
		return true
	}
	return false
}

// DamageModifier records which base-stat rule adjusted the damage amount
type DamageModifier string

const (
	ModifierNone       DamageModifier = "none"
	ModifierResisted   DamageModifier = "resisted"
	ModifierVulnerable DamageModifier = "vulnerable"
	ModifierImmune     DamageModifier = "immune"
)

// EffectiveDamage applies immunity, vulnerability, and resistance in that
// order. Immunity zeroes, vulnerability doubles, resistance halves rounding
// down.
func EffectiveDamage(amount int, damageType DamageType, stats CreatureStats) (int, DamageModifier) {
	switch {
	case stats.IsImmune(damageType):
		return 0, ModifierImmune
	case stats.IsVulnerable(damageType):
		return amount * 2, ModifierVulnerable
	case stats.IsResistant(damageType):
		return amount / 2, ModifierResisted
	default:
		return amount, ModifierNone
	}
}

// DamageOutcome describes everything a single ApplyDamage did
type DamageOutcome struct {
	RawAmount       int            `json:"raw_amount"`
	EffectiveAmount int            `json:"effective_amount"`
	Modifier        DamageModifier `json:"modifier"`
	TempHPAbsorbed  int            `json:"temp_hp_absorbed"`
	HPDamage        int            `json:"hp_damage"`
	FellUnconscious bool           `json:"fell_unconscious"`
	DeathSaveFailed bool           `json:"death_save_failed"` // damage taken while already down
	InstantDeath    bool           `json:"instant_death"`
	Died            bool           `json:"died"`
}

// ApplyDamage resolves damage against the participant: resistance math,
// temp HP absorption, HP clamped at 0, unconsciousness, and the massive
// damage rule (overflow past 0 of at least MaxHP kills outright).
//
// Damage dealt to a participant already at 0 HP inflicts a death-save
// failure and breaks stabilization; any damage that reaches the massive
// threshold is instantly fatal.
func (p *Participant) ApplyDamage(amount int, damageType DamageType) *DamageOutcome {
	effective, modifier := EffectiveDamage(amount, damageType, p.Stats)

	outcome := &DamageOutcome{
		RawAmount:       amount,
		EffectiveAmount: effective,
		Modifier:        modifier,
	}

	absorbed := effective
	if p.Status.TempHP < absorbed {
		absorbed = p.Status.TempHP
	}
	p.Status.TempHP -= absorbed
	remaining := effective - absorbed
	outcome.TempHPAbsorbed = absorbed

	if remaining == 0 {
		return outcome
	}

	wasConscious := p.Status.IsConscious

	if !wasConscious && p.Status.CurrentHP == 0 {
		// Already down: the hit causes a death-save failure rather than HP loss
		outcome.DeathSaveFailed = true
		p.Status.IsStable = false
		p.Status.DeathSaveFailures++
		if remaining >= p.Status.MaxHP {
			outcome.InstantDeath = true
		}
		if outcome.InstantDeath || p.Status.DeathSaveFailures >= 3 {
			p.markDead()
			outcome.Died = true
		}
		return outcome
	}

	overflow := remaining - p.Status.CurrentHP
	outcome.HPDamage = remaining
	if overflow > 0 {
		outcome.HPDamage = p.Status.CurrentHP
	}
	p.Status.CurrentHP -= outcome.HPDamage

	if p.Status.CurrentHP == 0 && wasConscious {
		outcome.FellUnconscious = true
		p.Status.IsConscious = false
		p.Status.IsStable = false
		p.Status.DeathSaveSuccesses = 0
		p.Status.DeathSaveFailures = 0

		if overflow >= p.Status.MaxHP {
			outcome.InstantDeath = true
			outcome.Died = true
			p.markDead()
		}
	}

	return outcome
}

// HealOutcome describes what a Heal call did
type HealOutcome struct {
	Amount                int  `json:"amount"`
	Healed                int  `json:"healed"`
	RegainedConsciousness bool `json:"regained_consciousness"`
}

// Heal restores hit points, clamped at MaxHP. Any healing brings an
// unconscious participant back up and resets the death-save counters.
func (p *Participant) Heal(amount int) *HealOutcome {
	outcome := &HealOutcome{Amount: amount}

	before := p.Status.CurrentHP
	p.Status.CurrentHP += amount
	if p.Status.CurrentHP > p.Status.MaxHP {
		p.Status.CurrentHP = p.Status.MaxHP
	}
	outcome.Healed = p.Status.CurrentHP - before

	if !p.Status.IsConscious && amount > 0 && p.Status.CurrentHP > 0 {
		outcome.RegainedConsciousness = true
		p.Status.IsConscious = true
		p.Status.IsStable = false
		p.Status.DeathSaveSuccesses = 0
		p.Status.DeathSaveFailures = 0
	}

	return outcome
}

// SetTempHP applies temporary hit points. Temp HP never stacks: the new
// value only takes effect when it exceeds what is already there.
func (p *Participant) SetTempHP(amount int) {
	if amount > p.Status.TempHP {
		p.Status.TempHP = amount
	}
}

// DeathSaveOutcome describes one death saving throw
type DeathSaveOutcome struct {
	Roll       int  `json:"roll"`
	Success    bool `json:"success"`
	Critical   bool `json:"critical"` // natural 20: back up at 1 HP
	Successes  int  `json:"successes"`
	Failures   int  `json:"failures"`
	Stabilized bool `json:"stabilized"`
	Died       bool `json:"died"`
	Revived    bool `json:"revived"`
}

// RollDeathSave resolves one death saving throw. A natural 20 restores 1 HP
// immediately, a natural 1 counts as two failures, 10+ is a success. Three
// failures kill; three successes stabilize at 0 HP.
func (p *Participant) RollDeathSave(roll int) *DeathSaveOutcome {
	outcome := &DeathSaveOutcome{Roll: roll}

	switch {
	case roll == 20:
		outcome.Critical = true
		outcome.Success = true
		outcome.Revived = true
		p.Status.CurrentHP = 1
		p.Status.IsConscious = true
		p.Status.IsStable = false
		p.Status.DeathSaveSuccesses = 0
		p.Status.DeathSaveFailures = 0
	case roll == 1:
		// Two failures, clamped so the counter stays within 0..3
		p.Status.DeathSaveFailures = min(p.Status.DeathSaveFailures+2, 3)
	case roll >= 10:
		outcome.Success = true
		p.Status.DeathSaveSuccesses++
	default:
		p.Status.DeathSaveFailures++
	}

	if p.Status.DeathSaveFailures >= 3 {
		p.markDead()
		outcome.Died = true
	} else if p.Status.DeathSaveSuccesses >= 3 {
		// Stable at 0 HP: no further saves, still unconscious until healed
		p.Status.IsStable = true
	}

	outcome.Successes = p.Status.DeathSaveSuccesses
	outcome.Failures = p.Status.DeathSaveFailures
	outcome.Stabilized = p.Status.IsStable

	return outcome
}

func (p *Participant) markDead() {
	p.Status.IsDead = true
	p.Status.IsConscious = false
	p.Status.IsStable = false
}
