package encounter

//go:generate mockgen -destination=mock/mock_service.go -package=mockencounter -source=service.go

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/infinite-realms/combat-engine/internal/clients/dnd5e"
	"github.com/infinite-realms/combat-engine/internal/dice"
	"github.com/infinite-realms/combat-engine/internal/domain/combat"
	"github.com/infinite-realms/combat-engine/internal/domain/conditions"
	dnderr "github.com/infinite-realms/combat-engine/internal/errors"
	"github.com/infinite-realms/combat-engine/internal/events"
	"github.com/infinite-realms/combat-engine/internal/repositories/encounters"
	"github.com/infinite-realms/combat-engine/internal/uuid"
)

// Service is the combat engine facade. It owns the encounter state machine,
// serializes mutating calls per encounter, and emits one state-change event
// per successful mutation.
type Service interface {
	// CreateEncounter creates a new encounter in a session, optionally with
	// an initial participant roster
	CreateEncounter(ctx context.Context, input *CreateEncounterInput) (*combat.Encounter, error)

	// GetEncounter retrieves an encounter snapshot by ID
	GetEncounter(ctx context.Context, encounterID string) (*combat.Encounter, error)

	// GetActiveEncounter retrieves the non-completed encounter for a session,
	// nil if the session has none
	GetActiveEncounter(ctx context.Context, sessionID string) (*combat.Encounter, error)

	// ListEncounters retrieves all encounters for a session
	ListEncounters(ctx context.Context, sessionID string) ([]*combat.Encounter, error)

	// GetDamageLog retrieves the append-only damage audit trail
	GetDamageLog(ctx context.Context, encounterID string) ([]*combat.DamageLogEntry, error)

	// ListCreatureTemplates looks up creature templates in a challenge
	// rating range, for building encounter rosters
	ListCreatureTemplates(ctx context.Context, minCR, maxCR float64) ([]*dnd5e.CreatureTemplate, error)

	// AddParticipant adds a participant to an encounter that has not completed
	AddParticipant(ctx context.Context, encounterID string, input *AddParticipantInput) (*combat.Participant, error)

	// RemoveParticipant marks a participant inactive (fled, dismissed)
	RemoveParticipant(ctx context.Context, encounterID, participantID string) error

	// RollInitiative resolves one participant's initiative, rolling 1d20 when
	// the caller did not supply a roll
	RollInitiative(ctx context.Context, encounterID string, input *RollInitiativeInput) (*combat.Participant, error)

	// Reorder overrides a participant's initiative; setup or paused only
	Reorder(ctx context.Context, encounterID, participantID string, newInitiative int) (*combat.Encounter, error)

	// StartEncounter transitions setup → active
	StartEncounter(ctx context.Context, encounterID string) (*combat.Encounter, error)

	// NextTurn advances the turn pointer, wrapping into a new round
	NextTurn(ctx context.Context, encounterID string) (*combat.TurnAdvance, error)

	// PauseEncounter transitions active → paused
	PauseEncounter(ctx context.Context, encounterID string) (*combat.Encounter, error)

	// ResumeEncounter transitions paused → active
	ResumeEncounter(ctx context.Context, encounterID string) (*combat.Encounter, error)

	// EndEncounter transitions active or paused → completed; terminal
	EndEncounter(ctx context.Context, encounterID string) (*combat.Encounter, error)

	// ApplyDamage applies typed damage to a participant
	ApplyDamage(ctx context.Context, encounterID string, input *ApplyDamageInput) (*combat.DamageOutcome, error)

	// Heal restores hit points, clamped at the participant's maximum
	Heal(ctx context.Context, encounterID string, input *HealInput) (*combat.HealOutcome, error)

	// SetTempHP grants temporary hit points; a lower value never replaces a
	// higher one
	SetTempHP(ctx context.Context, encounterID, participantID string, amount int) (*combat.Participant, error)

	// RollDeathSave resolves one death saving throw for a downed participant
	RollDeathSave(ctx context.Context, encounterID string, input *DeathSaveInput) (*combat.DeathSaveOutcome, error)

	// ResolveAttack resolves a single-target attack and applies its damage
	ResolveAttack(ctx context.Context, encounterID string, input *AttackInput) (*AttackResult, error)

	// ResolveAoeAttack resolves a save-based multi-target attack
	ResolveAoeAttack(ctx context.Context, encounterID string, input *AoeAttackInput) ([]*AoeTargetResult, error)

	// ApplyCondition applies a condition, honoring immunities and the
	// replace-if-longer duration rule
	ApplyCondition(ctx context.Context, encounterID string, input *ApplyConditionInput) (*combat.ActiveCondition, error)

	// RemoveCondition explicitly deactivates a condition instance
	RemoveCondition(ctx context.Context, encounterID, participantID, conditionID string) error

	// AttemptSave resolves a saving throw against an until_save condition
	AttemptSave(ctx context.Context, encounterID string, input *AttemptSaveInput) (*SaveResult, error)

	// GetMechanicalEffects returns the aggregate effect descriptors of a
	// participant's active conditions, with advantage/disadvantage
	// cancellation already applied
	GetMechanicalEffects(ctx context.Context, encounterID, participantID string) (*conditions.MechanicalEffects, error)
}

// CreateEncounterInput contains data for creating an encounter
type CreateEncounterInput struct {
	SessionID    string
	Participants []*AddParticipantInput
}

// AddParticipantInput describes one participant to add. Exactly one of
// CharacterID, CreatureKey, or Name selects the identity. For creature
// identities, zero MaxHP or ArmorClass is filled from the reference data.
type AddParticipantInput struct {
	CharacterID string
	CreatureKey string
	Name        string

	MaxHP              int
	CurrentHP          int // defaults to MaxHP
	ArmorClass         int
	InitiativeModifier int

	Resistances         []combat.DamageType
	Vulnerabilities     []combat.DamageType
	Immunities          []combat.DamageType
	ConditionImmunities []conditions.Type
}

// RollInitiativeInput resolves one participant's initiative. A nil Roll asks
// the engine to roll 1d20; advantage and disadvantage apply only to
// engine-generated rolls.
type RollInitiativeInput struct {
	ParticipantID string
	Roll          *int
	Advantage     bool
	Disadvantage  bool
}

// ApplyDamageInput contains data for a damage application
type ApplyDamageInput struct {
	ParticipantID       string
	Amount              int
	DamageType          combat.DamageType
	SourceParticipantID string
	SourceDescription   string
}

// HealInput contains data for a heal
type HealInput struct {
	ParticipantID string
	Amount        int
	Source        string
}

// DeathSaveInput resolves one death saving throw. A nil Roll asks the engine
// to roll 1d20.
type DeathSaveInput struct {
	ParticipantID string
	Roll          *int
}

// AttackInput contains data for a single-target attack. Natural20/Natural1
// are caller-supplied flags because the total already includes modifiers.
// On a critical the DamageRoll must carry already-doubled dice; the engine
// never re-doubles.
type AttackInput struct {
	AttackerID      string
	TargetID        string
	AttackRollTotal int
	Natural20       bool
	Natural1        bool
	DamageRoll      int
	DamageType      combat.DamageType
}

// AttackResult is the structured outcome of a single-target attack
type AttackResult struct {
	AttackerID string                `json:"attacker_id"`
	TargetID   string                `json:"target_id"`
	Hit        bool                  `json:"hit"`
	Critical   bool                  `json:"critical"`
	Damage     *combat.DamageOutcome `json:"damage,omitempty"`
}

// AoeTarget is one target of an area attack with its save roll
type AoeTarget struct {
	ParticipantID string
	SaveRoll      int
}

// AoeAttackInput contains data for a save-based multi-target attack.
// HalfOnSave is per-spell caller policy, never hardcoded.
type AoeAttackInput struct {
	CasterID   string
	Targets    []AoeTarget
	SaveDC     int
	HalfOnSave bool
	DamageRoll int
	DamageType combat.DamageType
}

// AoeTargetResult is the per-target outcome of an area attack
type AoeTargetResult struct {
	ParticipantID string                `json:"participant_id"`
	Saved         bool                  `json:"saved"`
	Damage        *combat.DamageOutcome `json:"damage"`
}

// ApplyConditionInput contains data for applying a condition
type ApplyConditionInput struct {
	ParticipantID string
	Condition     conditions.Type
	DurationType  conditions.DurationType
	DurationValue int                // rounds only
	SaveDC        int                // until_save only
	SaveAbility   conditions.Ability // until_save only
}

// AttemptSaveInput resolves a saving throw against an until_save condition
type AttemptSaveInput struct {
	ParticipantID string
	ConditionID   string
	SaveRollTotal int
}

// SaveResult is the outcome of a condition saving throw
type SaveResult struct {
	Saved     bool                    `json:"saved"`
	Condition *combat.ActiveCondition `json:"condition"`
}

type service struct {
	repository    encounters.Repository
	dndClient     dnd5e.Client
	diceRoller    dice.Roller
	uuidGenerator uuid.Generator
	eventBus      *events.Bus

	// strictTurnOrder rejects out-of-turn attacks and death saves instead of
	// merely recording them
	strictTurnOrder bool

	// eventCh feeds the single dispatch goroutine, so subscribers see
	// events in commit order
	eventCh chan events.Event

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Repository      encounters.Repository
	Dnd5eClient     dnd5e.Client // optional; creature refs then require inline stats
	DiceRoller      dice.Roller
	UUIDGenerator   uuid.Generator
	EventBus        *events.Bus
	StrictTurnOrder bool
}

// NewService creates a new encounter service
func NewService(cfg *ServiceConfig) Service {
	if cfg.Repository == nil {
		panic("repository is required")
	}

	svc := &service{
		repository:      cfg.Repository,
		dndClient:       cfg.Dnd5eClient,
		diceRoller:      cfg.DiceRoller,
		uuidGenerator:   cfg.UUIDGenerator,
		eventBus:        cfg.EventBus,
		strictTurnOrder: cfg.StrictTurnOrder,
		locks:           make(map[string]*sync.Mutex),
	}

	if svc.diceRoller == nil {
		svc.diceRoller = dice.NewRandomRoller()
	}
	if svc.uuidGenerator == nil {
		svc.uuidGenerator = uuid.NewGoogleUUIDGenerator()
	}
	if svc.eventBus == nil {
		svc.eventBus = events.NewBus()
	}

	svc.eventCh = make(chan events.Event, 64)
	go svc.dispatchEvents()

	return svc
}

func (s *service) dispatchEvents() {
	for event := range s.eventCh {
		s.eventBus.Emit(event)
	}
}

// encounterLock returns the mutex serializing writes to one encounter.
// Encounters are fully independent; there is no global write lock.
func (s *service) encounterLock(encounterID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	lock, ok := s.locks[encounterID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[encounterID] = lock
	}
	return lock
}

// mutate runs one serialized write against an encounter: lock, load, apply,
// persist, then emit the event asynchronously after the commit. The loaded
// encounter is a private copy, so a failing fn leaves no partial state.
func (s *service) mutate(ctx context.Context, encounterID string, fn func(enc *combat.Encounter) (*events.Event, error)) error {
	if strings.TrimSpace(encounterID) == "" {
		return dnderr.Validation("encounter ID is required")
	}

	lock := s.encounterLock(encounterID)
	lock.Lock()
	defer lock.Unlock()

	encounter, err := s.repository.Get(ctx, encounterID)
	if err != nil {
		return err
	}

	event, err := fn(encounter)
	if err != nil {
		return err
	}

	if err := s.repository.Update(ctx, encounter); err != nil {
		return dnderr.Wrapf(err, "failed to persist encounter %s", encounterID)
	}

	if event != nil {
		s.emit(encounter, event)
	}

	return nil
}

// emit fills the envelope fields from the committed encounter and hands the
// event to the dispatch goroutine, keeping delivery async but in commit order
func (s *service) emit(encounter *combat.Encounter, event *events.Event) {
	event.EncounterID = encounter.ID
	event.SessionID = encounter.SessionID
	event.Round = encounter.Round
	event.Status = encounter.Status
	event.OccurredAt = time.Now().UTC()
	s.eventCh <- *event
}

// CreateEncounter creates a new encounter in a session
func (s *service) CreateEncounter(ctx context.Context, input *CreateEncounterInput) (*combat.Encounter, error) {
	if input == nil {
		return nil, dnderr.Validation("input cannot be nil")
	}
	if strings.TrimSpace(input.SessionID) == "" {
		return nil, dnderr.Validation("session ID is required")
	}

	active, err := s.repository.GetActiveBySession(ctx, input.SessionID)
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to check for active encounter")
	}
	if active != nil {
		return nil, dnderr.Newf(dnderr.CodeConflict, "session %s already has an active encounter", input.SessionID)
	}

	encounter := combat.NewEncounter(s.uuidGenerator.New(), input.SessionID)
	for _, pInput := range input.Participants {
		participant, err := s.buildParticipant(encounter.ID, pInput)
		if err != nil {
			return nil, err
		}
		encounter.AddParticipant(participant)
	}

	if err := s.repository.Create(ctx, encounter); err != nil {
		return nil, dnderr.Wrap(err, "failed to create encounter")
	}

	s.emit(encounter, &events.Event{Type: events.EncounterCreated})

	return encounter, nil
}

// GetEncounter retrieves an encounter snapshot by ID
func (s *service) GetEncounter(ctx context.Context, encounterID string) (*combat.Encounter, error) {
	if strings.TrimSpace(encounterID) == "" {
		return nil, dnderr.Validation("encounter ID is required")
	}

	return s.repository.Get(ctx, encounterID)
}

// GetActiveEncounter retrieves the non-completed encounter for a session
func (s *service) GetActiveEncounter(ctx context.Context, sessionID string) (*combat.Encounter, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, dnderr.Validation("session ID is required")
	}

	return s.repository.GetActiveBySession(ctx, sessionID)
}

// ListEncounters retrieves all encounters for a session
func (s *service) ListEncounters(ctx context.Context, sessionID string) ([]*combat.Encounter, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, dnderr.Validation("session ID is required")
	}

	return s.repository.GetBySession(ctx, sessionID)
}

// GetDamageLog retrieves the append-only damage audit trail
func (s *service) GetDamageLog(ctx context.Context, encounterID string) ([]*combat.DamageLogEntry, error) {
	encounter, err := s.GetEncounter(ctx, encounterID)
	if err != nil {
		return nil, err
	}

	return encounter.DamageLog, nil
}

// ListCreatureTemplates looks up creature templates in a challenge rating
// range, for building encounter rosters
func (s *service) ListCreatureTemplates(ctx context.Context, minCR, maxCR float64) ([]*dnd5e.CreatureTemplate, error) {
	if s.dndClient == nil {
		return nil, dnderr.Validation("creature lookup requires a D&D 5e API client")
	}
	if minCR < 0 || maxCR < minCR {
		return nil, dnderr.Validationf("invalid challenge rating range %v..%v", minCR, maxCR)
	}

	templates, err := s.dndClient.ListCreaturesByCR(minCR, maxCR)
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to list creatures")
	}

	return templates, nil
}

// AddParticipant adds a participant to an encounter that has not completed
func (s *service) AddParticipant(ctx context.Context, encounterID string, input *AddParticipantInput) (*combat.Participant, error) {
	if input == nil {
		return nil, dnderr.Validation("input cannot be nil")
	}

	var added *combat.Participant
	err := s.mutate(ctx, encounterID, func(enc *combat.Encounter) (*events.Event, error) {
		if enc.Status == combat.StatusCompleted {
			return nil, dnderr.InvalidState("cannot add participants to a completed encounter")
		}

		participant, err := s.buildParticipant(enc.ID, input)
		if err != nil {
			return nil, err
		}
		enc.AddParticipant(participant)
		added = participant

		return &events.Event{
			Type:         events.ParticipantAdded,
			Participants: []*combat.Participant{participant.Clone()},
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return added, nil
}

// RemoveParticipant marks a participant inactive. The record stays on the
// encounter so the damage log and any turn-order history remain resolvable.
func (s *service) RemoveParticipant(ctx context.Context, encounterID, participantID string) error {
	return s.mutate(ctx, encounterID, func(enc *combat.Encounter) (*events.Event, error) {
		if enc.Status == combat.StatusCompleted {
			return nil, dnderr.InvalidState("encounter is completed")
		}

		participant := enc.Participant(participantID)
		if participant == nil {
			return nil, dnderr.NotFoundf("participant not found: %s", participantID)
		}
		if !participant.IsActive {
			return nil, dnderr.InvalidStatef("participant %s is already removed", participantID)
		}

		participant.IsActive = false

		// If it was their turn, hand it to the next participant who can act
		if enc.Status == combat.StatusActive {
			if cur := enc.CurrentParticipant(); cur != nil && cur.ID == participantID {
				if _, err := enc.AdvanceTurn(); err != nil {
					return nil, dnderr.InvalidState(err.Error())
				}
			}
		}

		return &events.Event{
			Type:         events.ParticipantRemoved,
			Participants: []*combat.Participant{participant.Clone()},
		}, nil
	})
}

// StartEncounter transitions setup → active
func (s *service) StartEncounter(ctx context.Context, encounterID string) (*combat.Encounter, error) {
	var started *combat.Encounter
	err := s.mutate(ctx, encounterID, func(enc *combat.Encounter) (*events.Event, error) {
		if err := enc.Start(); err != nil {
			return nil, dnderr.InvalidState(err.Error())
		}
		started = enc.Clone()
		return &events.Event{Type: events.EncounterStarted}, nil
	})
	if err != nil {
		return nil, err
	}

	return started, nil
}

// PauseEncounter transitions active → paused
func (s *service) PauseEncounter(ctx context.Context, encounterID string) (*combat.Encounter, error) {
	return s.transition(ctx, encounterID, events.EncounterPaused, (*combat.Encounter).Pause)
}

// ResumeEncounter transitions paused → active
func (s *service) ResumeEncounter(ctx context.Context, encounterID string) (*combat.Encounter, error) {
	return s.transition(ctx, encounterID, events.EncounterResumed, (*combat.Encounter).Resume)
}

// EndEncounter transitions active or paused → completed
func (s *service) EndEncounter(ctx context.Context, encounterID string) (*combat.Encounter, error) {
	return s.transition(ctx, encounterID, events.EncounterCompleted, (*combat.Encounter).Complete)
}

func (s *service) transition(ctx context.Context, encounterID string, eventType events.Type, apply func(*combat.Encounter) error) (*combat.Encounter, error) {
	var result *combat.Encounter
	err := s.mutate(ctx, encounterID, func(enc *combat.Encounter) (*events.Event, error) {
		if err := apply(enc); err != nil {
			return nil, dnderr.InvalidState(err.Error())
		}
		result = enc.Clone()
		return &events.Event{Type: eventType}, nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// buildParticipant validates an AddParticipantInput and assembles the
// participant record, pulling creature base stats from the reference data
// when the caller did not inline them
func (s *service) buildParticipant(encounterID string, input *AddParticipantInput) (*combat.Participant, error) {
	identity, err := s.resolveIdentity(input)
	if err != nil {
		return nil, err
	}

	maxHP := input.MaxHP
	armorClass := input.ArmorClass

	if identity.Kind == combat.IdentityCreature && (maxHP == 0 || armorClass == 0) {
		if s.dndClient == nil {
			return nil, dnderr.Validationf("creature %s requires inline max_hp and armor_class: no reference data client configured", identity.CreatureKey)
		}
		template, err := s.dndClient.GetCreature(identity.CreatureKey)
		if err != nil {
			return nil, dnderr.Wrapf(err, "failed to resolve creature %s", identity.CreatureKey)
		}
		if maxHP == 0 {
			maxHP = template.HitPoints
		}
		if armorClass == 0 {
			armorClass = template.ArmorClass
		}
	}

	if maxHP < 1 {
		return nil, dnderr.Validation("max_hp must be at least 1")
	}
	for _, t := range input.Resistances {
		if !combat.ValidDamageType(t) {
			return nil, dnderr.Validationf("unknown damage type in resistances: %s", t)
		}
	}
	for _, t := range input.Vulnerabilities {
		if !combat.ValidDamageType(t) {
			return nil, dnderr.Validationf("unknown damage type in vulnerabilities: %s", t)
		}
	}
	for _, t := range input.Immunities {
		if !combat.ValidDamageType(t) {
			return nil, dnderr.Validationf("unknown damage type in immunities: %s", t)
		}
	}
	for _, c := range input.ConditionImmunities {
		if !conditions.Known(c) {
			return nil, dnderr.Validationf("unknown condition in immunities: %s", c)
		}
	}

	currentHP := input.CurrentHP
	if currentHP == 0 {
		currentHP = maxHP
	}
	if currentHP < 0 || currentHP > maxHP {
		return nil, dnderr.Validation("current_hp must be within [0, max_hp]")
	}

	return &combat.Participant{
		ID:                 s.uuidGenerator.New(),
		EncounterID:        encounterID,
		Identity:           identity,
		InitiativeModifier: input.InitiativeModifier,
		IsActive:           true,
		Stats: combat.CreatureStats{
			ArmorClass:          armorClass,
			Resistances:         input.Resistances,
			Vulnerabilities:     input.Vulnerabilities,
			Immunities:          input.Immunities,
			ConditionImmunities: input.ConditionImmunities,
		},
		Status: combat.ParticipantStatus{
			CurrentHP:   currentHP,
			MaxHP:       maxHP,
			IsConscious: currentHP > 0,
		},
	}, nil
}

func (s *service) resolveIdentity(input *AddParticipantInput) (combat.IdentityRef, error) {
	var identity combat.IdentityRef
	switch {
	case input.CharacterID != "":
		identity = combat.CharacterRef(input.CharacterID)
	case input.CreatureKey != "":
		identity = combat.CreatureRef(input.CreatureKey)
	case input.Name != "":
		identity = combat.AdHocRef(input.Name)
	default:
		return identity, dnderr.Validation("one of character_id, creature_key, or name is required")
	}

	if err := identity.Validate(); err != nil {
		return identity, dnderr.Validation(err.Error())
	}

	return identity, nil
}

// activeParticipant looks up a participant who can be acted upon: present,
// not removed, on an active encounter
func activeParticipant(enc *combat.Encounter, participantID string) (*combat.Participant, error) {
	if enc.Status != combat.StatusActive {
		return nil, dnderr.InvalidStatef("encounter is %s, not active", enc.Status)
	}

	participant := enc.Participant(participantID)
	if participant == nil {
		return nil, dnderr.NotFoundf("participant not found: %s", participantID)
	}
	if !participant.IsActive {
		return nil, dnderr.InvalidStatef("participant %s has been removed", participantID)
	}

	return participant, nil
}

// checkTurn enforces strict turn order when enabled. The default is
// advisory: out-of-turn actions are allowed and merely recorded.
func (s *service) checkTurn(enc *combat.Encounter, participantID string) error {
	if !s.strictTurnOrder {
		return nil
	}

	cur := enc.CurrentParticipant()
	if cur == nil || cur.ID != participantID {
		return dnderr.InvalidStatef("not %s's turn", participantID)
	}

	return nil
}
