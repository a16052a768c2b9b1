package combat

// AttackOutcome is the to-hit half of an attack resolution
type AttackOutcome struct {
	Hit      bool `json:"hit"`
	Critical bool `json:"critical"`
}

// EvaluateAttack resolves to-hit and critical determination. A natural 20
// (supplied by the caller as a flag, since the total already includes
// modifiers) always hits and is critical; a natural 1 always misses
// regardless of total. Otherwise the attack hits when the total meets the
// target's armor class.
func EvaluateAttack(attackRollTotal, targetAC int, natural20, natural1 bool) AttackOutcome {
	switch {
	case natural20:
		return AttackOutcome{Hit: true, Critical: true}
	case natural1:
		return AttackOutcome{Hit: false}
	default:
		return AttackOutcome{Hit: attackRollTotal >= targetAC}
	}
}

// SaveDamage applies the save outcome to an AoE damage roll: failed saves
// take the full roll, passed saves take half (rounded down) when the spell
// allows half damage, nothing otherwise. Resistance math runs afterwards,
// when the result is applied to the target.
func SaveDamage(damageRoll int, saved, halfOnSave bool) int {
	if !saved {
		return damageRoll
	}
	if halfOnSave {
		return damageRoll / 2
	}
	return 0
}
