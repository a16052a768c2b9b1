package encounter

import (
	"context"

	"github.com/infinite-realms/combat-engine/internal/dice"
	"github.com/infinite-realms/combat-engine/internal/domain/combat"
	dnderr "github.com/infinite-realms/combat-engine/internal/errors"
	"github.com/infinite-realms/combat-engine/internal/events"
)

// RollInitiative resolves one participant's initiative. The caller may
// supply the d20 result; otherwise the engine rolls, honoring advantage or
// disadvantage. Initiative is the roll plus the participant's modifier.
func (s *service) RollInitiative(ctx context.Context, encounterID string, input *RollInitiativeInput) (*combat.Participant, error) {
	if input == nil {
		return nil, dnderr.Validation("input cannot be nil")
	}
	if input.Advantage && input.Disadvantage {
		return nil, dnderr.Validation("advantage and disadvantage are mutually exclusive")
	}

	var rolled *combat.Participant
	err := s.mutate(ctx, encounterID, func(enc *combat.Encounter) (*events.Event, error) {
		if enc.Status == combat.StatusCompleted {
			return nil, dnderr.InvalidState("encounter is completed")
		}

		participant := enc.Participant(input.ParticipantID)
		if participant == nil {
			return nil, dnderr.NotFoundf("participant not found: %s", input.ParticipantID)
		}
		if !participant.IsActive {
			return nil, dnderr.InvalidStatef("participant %s has been removed", input.ParticipantID)
		}

		initiative, err := s.resolveInitiative(participant, input)
		if err != nil {
			return nil, err
		}
		participant.Initiative = &initiative

		s.recomputeOrder(enc)
		rolled = participant.Clone()

		return &events.Event{
			Type:         events.InitiativeRolled,
			Participants: []*combat.Participant{participant.Clone()},
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return rolled, nil
}

func (s *service) resolveInitiative(p *combat.Participant, input *RollInitiativeInput) (int, error) {
	if input.Roll != nil {
		return *input.Roll + p.InitiativeModifier, nil
	}

	var (
		result *dice.RollResult
		err    error
	)
	switch {
	case input.Advantage:
		result, err = s.diceRoller.RollWithAdvantage(20, p.InitiativeModifier)
	case input.Disadvantage:
		result, err = s.diceRoller.RollWithDisadvantage(20, p.InitiativeModifier)
	default:
		result, err = s.diceRoller.Roll(1, 20, p.InitiativeModifier)
	}
	if err != nil {
		return 0, dnderr.Wrap(err, "failed to roll initiative")
	}

	return result.Total, nil
}

// recomputeOrder re-sorts the turn order while keeping the turn pointer on
// the same participant when combat is already running
func (s *service) recomputeOrder(enc *combat.Encounter) {
	var currentID string
	if enc.Status != combat.StatusSetup {
		if cur := enc.CurrentParticipant(); cur != nil {
			currentID = cur.ID
		}
	}

	enc.ComputeTurnOrder()

	if currentID != "" {
		for i, id := range enc.TurnOrder {
			if id == currentID {
				enc.TurnIndex = i
				break
			}
		}
	}
}

// Reorder overrides a participant's initiative and recomputes the order.
// Allowed only while the encounter is in setup or paused.
func (s *service) Reorder(ctx context.Context, encounterID, participantID string, newInitiative int) (*combat.Encounter, error) {
	var result *combat.Encounter
	err := s.mutate(ctx, encounterID, func(enc *combat.Encounter) (*events.Event, error) {
		if enc.Status != combat.StatusSetup && enc.Status != combat.StatusPaused {
			return nil, dnderr.InvalidStatef("initiative can only be overridden during setup or pause, encounter is %s", enc.Status)
		}

		participant := enc.Participant(participantID)
		if participant == nil {
			return nil, dnderr.NotFoundf("participant not found: %s", participantID)
		}

		participant.Initiative = &newInitiative
		s.recomputeOrder(enc)
		result = enc.Clone()

		return &events.Event{
			Type:         events.InitiativeReordered,
			Participants: []*combat.Participant{participant.Clone()},
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// NextTurn advances the turn pointer to the next participant who can act.
// A wrap past the end of the order begins a new round, expiring lapsed
// rounds-based conditions and surfacing any saves now due.
func (s *service) NextTurn(ctx context.Context, encounterID string) (*combat.TurnAdvance, error) {
	var advance *combat.TurnAdvance
	err := s.mutate(ctx, encounterID, func(enc *combat.Encounter) (*events.Event, error) {
		result, err := enc.AdvanceTurn()
		if err != nil {
			return nil, dnderr.InvalidState(err.Error())
		}

		advance = &combat.TurnAdvance{
			Participant:       result.Participant.Clone(),
			Round:             result.Round,
			NewRound:          result.NewRound,
			ExpiredConditions: result.ExpiredConditions,
			SavesDue:          result.SavesDue,
		}

		return &events.Event{
			Type:         events.TurnAdvanced,
			Participants: []*combat.Participant{result.Participant.Clone()},
			Detail:       advance,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return advance, nil
}
