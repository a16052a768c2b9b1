package combat

import "time"

// DamageLogEntry is one append-only audit record per damage application.
// Entries are never mutated or deleted.
type DamageLogEntry struct {
	ID                  string     `json:"id"`
	ParticipantID       string     `json:"participant_id"`
	Amount              int        `json:"amount"`           // amount as submitted
	EffectiveAmount     int        `json:"effective_amount"` // after resistance math
	DamageType          DamageType `json:"damage_type"`
	SourceParticipantID string     `json:"source_participant_id,omitempty"`
	SourceDescription   string     `json:"source_description,omitempty"`
	IsCritical          bool       `json:"is_critical,omitempty"`
	Round               int        `json:"round"`
	CreatedAt           time.Time  `json:"created_at"`
}
