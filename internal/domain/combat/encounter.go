package combat

import (
	"fmt"
	"sort"
	"time"
)

// Status represents the encounter state machine position
type Status string

const (
	StatusSetup     Status = "setup"
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

// Encounter is the aggregate root for one combat: participants, turn order,
// round counter, and the append-only damage log. Every encounter is fully
// independent; there is no shared mutable state between encounters.
type Encounter struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`

	Status    Status `json:"status"`
	Round     int    `json:"round"`      // starts at 1 when combat begins
	TurnIndex int    `json:"turn_index"` // 0-based pointer into TurnOrder

	Participants map[string]*Participant `json:"participants"`
	TurnOrder    []string                `json:"turn_order"` // participant IDs, initiative order
	DamageLog    []*DamageLogEntry       `json:"damage_log"`

	CreatedAt time.Time  `json:"created_at"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// NewEncounter creates an encounter in setup
func NewEncounter(id, sessionID string) *Encounter {
	return &Encounter{
		ID:           id,
		SessionID:    sessionID,
		Status:       StatusSetup,
		Round:        0,
		TurnIndex:    0,
		Participants: make(map[string]*Participant),
		TurnOrder:    []string{},
		DamageLog:    []*DamageLogEntry{},
		CreatedAt:    time.Now().UTC(),
	}
}

// AddParticipant registers a participant and records its insertion order,
// which is the final initiative tie-break. The order counter survives a
// serialization round-trip because it is derived from participants already
// present.
func (e *Encounter) AddParticipant(p *Participant) {
	next := 0
	for _, existing := range e.Participants {
		if existing.AddedOrder >= next {
			next = existing.AddedOrder + 1
		}
	}
	p.AddedOrder = next
	e.Participants[p.ID] = p
}

// Participant returns the participant with the given ID, nil if unknown
func (e *Encounter) Participant(id string) *Participant {
	return e.Participants[id]
}

// AllInitiativesRolled reports whether every active participant has initiative
func (e *Encounter) AllInitiativesRolled() bool {
	for _, p := range e.Participants {
		if p.IsActive && p.Initiative == nil {
			return false
		}
	}
	return len(e.Participants) > 0
}

// ComputeTurnOrder sorts participants with rolled initiative into turn order:
// initiative descending, then initiative modifier descending, then insertion
// order. The sort is fully deterministic; only the rolls themselves are random.
func (e *Encounter) ComputeTurnOrder() {
	ids := make([]string, 0, len(e.Participants))
	for id, p := range e.Participants {
		if p.Initiative != nil {
			ids = append(ids, id)
		}
	}

	sort.Slice(ids, func(i, j int) bool {
		a, b := e.Participants[ids[i]], e.Participants[ids[j]]
		if *a.Initiative != *b.Initiative {
			return *a.Initiative > *b.Initiative
		}
		if a.InitiativeModifier != b.InitiativeModifier {
			return a.InitiativeModifier > b.InitiativeModifier
		}
		return a.AddedOrder < b.AddedOrder
	})

	e.TurnOrder = ids
	for i, id := range ids {
		e.Participants[id].TurnOrder = i
	}
}

// Start transitions setup → active. Requires at least one participant and
// every initiative resolved.
func (e *Encounter) Start() error {
	if e.Status != StatusSetup {
		return fmt.Errorf("encounter is %s, not setup", e.Status)
	}
	if len(e.Participants) == 0 {
		return fmt.Errorf("encounter has no participants")
	}
	if !e.AllInitiativesRolled() {
		return fmt.Errorf("not all initiatives have been rolled")
	}

	e.ComputeTurnOrder()

	now := time.Now().UTC()
	e.Status = StatusActive
	e.StartedAt = &now
	e.Round = 1
	e.TurnIndex = 0

	// Don't open on a participant who can't act
	if cur := e.CurrentParticipant(); cur != nil && !cur.CanTakeTurn() {
		if next := e.nextTurnIndex(); next >= 0 {
			e.TurnIndex = next
		}
	}

	return nil
}

// Pause transitions active → paused
func (e *Encounter) Pause() error {
	if e.Status != StatusActive {
		return fmt.Errorf("encounter is %s, not active", e.Status)
	}
	e.Status = StatusPaused
	return nil
}

// Resume transitions paused → active
func (e *Encounter) Resume() error {
	if e.Status != StatusPaused {
		return fmt.Errorf("encounter is %s, not paused", e.Status)
	}
	e.Status = StatusActive
	return nil
}

// Complete transitions active or paused → completed. Terminal.
func (e *Encounter) Complete() error {
	if e.Status != StatusActive && e.Status != StatusPaused {
		return fmt.Errorf("encounter is %s, cannot complete", e.Status)
	}
	now := time.Now().UTC()
	e.Status = StatusCompleted
	e.EndedAt = &now
	return nil
}

// CurrentParticipant returns the participant whose turn it is
func (e *Encounter) CurrentParticipant() *Participant {
	if e.TurnIndex < len(e.TurnOrder) {
		return e.Participants[e.TurnOrder[e.TurnIndex]]
	}
	return nil
}

// nextTurnIndex finds the next index at or after TurnIndex+1 holding a
// participant who can act, wrapping once. Returns -1 when nobody can act.
func (e *Encounter) nextTurnIndex() int {
	n := len(e.TurnOrder)
	for offset := 1; offset <= n; offset++ {
		idx := (e.TurnIndex + offset) % n
		if p := e.Participants[e.TurnOrder[idx]]; p != nil && p.CanTakeTurn() {
			return idx
		}
	}
	return -1
}

// TurnAdvance reports the result of advancing the turn pointer
type TurnAdvance struct {
	Participant       *Participant       `json:"participant"`
	Round             int                `json:"round"`
	NewRound          bool               `json:"new_round"`
	ExpiredConditions []*ActiveCondition `json:"expired_conditions,omitempty"`
	SavesDue          []*ActiveCondition `json:"saves_due,omitempty"`
}

// AdvanceTurn moves the turn pointer to the next participant who can act.
// Wrapping past the end of the order increments the round and expires
// rounds-based conditions across all participants. The returned SavesDue
// lists the until_save conditions awaiting a save at the start of the new
// current participant's turn.
func (e *Encounter) AdvanceTurn() (*TurnAdvance, error) {
	if e.Status != StatusActive {
		return nil, fmt.Errorf("encounter is %s, not active", e.Status)
	}
	if len(e.TurnOrder) == 0 {
		return nil, fmt.Errorf("turn order is empty")
	}

	next := e.nextTurnIndex()
	if next < 0 {
		return nil, fmt.Errorf("no participant can take a turn")
	}

	advance := &TurnAdvance{}

	if next <= e.TurnIndex {
		// Wrapped: new round; evaluate rounds-based durations everywhere
		e.Round++
		advance.NewRound = true
		for _, p := range e.Participants {
			advance.ExpiredConditions = append(advance.ExpiredConditions, p.ExpireConditions(e.Round)...)
		}
	}

	e.TurnIndex = next
	current := e.CurrentParticipant()
	advance.Participant = current
	advance.Round = e.Round
	advance.SavesDue = current.SavesDue()

	return advance, nil
}

// AppendDamageLog appends one audit entry. The log is append-only.
func (e *Encounter) AppendDamageLog(entry *DamageLogEntry) {
	e.DamageLog = append(e.DamageLog, entry)
}

// Clone returns a deep copy for snapshot reads
func (e *Encounter) Clone() *Encounter {
	clone := *e
	clone.Participants = make(map[string]*Participant, len(e.Participants))
	for id, p := range e.Participants {
		clone.Participants[id] = p.Clone()
	}
	clone.TurnOrder = append([]string(nil), e.TurnOrder...)
	clone.DamageLog = make([]*DamageLogEntry, len(e.DamageLog))
	for i, entry := range e.DamageLog {
		copied := *entry
		clone.DamageLog[i] = &copied
	}
	if e.StartedAt != nil {
		v := *e.StartedAt
		clone.StartedAt = &v
	}
	if e.EndedAt != nil {
		v := *e.EndedAt
		clone.EndedAt = &v
	}
	return &clone
}
