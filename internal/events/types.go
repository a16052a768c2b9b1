package events

import (
	"time"

	"github.com/infinite-realms/combat-engine/internal/domain/combat"
)

// Type identifies the operation that produced a state-change event
type Type string

const (
	EncounterCreated    Type = "encounter.created"
	EncounterStarted    Type = "encounter.started"
	EncounterPaused     Type = "encounter.paused"
	EncounterResumed    Type = "encounter.resumed"
	EncounterCompleted  Type = "encounter.completed"
	ParticipantAdded    Type = "participant.added"
	ParticipantRemoved  Type = "participant.removed"
	InitiativeRolled    Type = "initiative.rolled"
	InitiativeReordered Type = "initiative.reordered"
	TurnAdvanced        Type = "turn.advanced"
	DamageApplied       Type = "damage.applied"
	HealingApplied      Type = "healing.applied"
	TempHPSet           Type = "temp_hp.set"
	DeathSaveRolled     Type = "death_save.rolled"
	AttackResolved      Type = "attack.resolved"
	ConditionApplied    Type = "condition.applied"
	ConditionRemoved    Type = "condition.removed"
	ConditionSaved      Type = "condition.saved"
)

// Event is one state-change notification. Participants carries a snapshot of
// every participant touched by the operation so subscribers can broadcast a
// delta without reading back through the engine.
type Event struct {
	Type         Type                  `json:"type"`
	EncounterID  string                `json:"encounter_id"`
	SessionID    string                `json:"session_id"`
	Round        int                   `json:"round"`
	Status       combat.Status         `json:"status"`
	Participants []*combat.Participant `json:"participants,omitempty"`
	Detail       any                   `json:"detail,omitempty"`
	OccurredAt   time.Time             `json:"occurred_at"`
}
