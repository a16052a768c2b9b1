package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/infinite-realms/combat-engine/internal/domain/combat"
	"github.com/infinite-realms/combat-engine/internal/domain/conditions"
	dnderr "github.com/infinite-realms/combat-engine/internal/errors"
	"github.com/infinite-realms/combat-engine/internal/services/encounter"
)

type participantRequest struct {
	CharacterID         string              `json:"character_id,omitempty"`
	CreatureKey         string              `json:"creature_key,omitempty"`
	Name                string              `json:"name,omitempty"`
	MaxHP               int                 `json:"max_hp,omitempty"`
	CurrentHP           int                 `json:"current_hp,omitempty"`
	ArmorClass          int                 `json:"armor_class,omitempty"`
	InitiativeModifier  int                 `json:"initiative_modifier,omitempty"`
	Resistances         []combat.DamageType `json:"resistances,omitempty"`
	Vulnerabilities     []combat.DamageType `json:"vulnerabilities,omitempty"`
	Immunities          []combat.DamageType `json:"immunities,omitempty"`
	ConditionImmunities []conditions.Type   `json:"condition_immunities,omitempty"`
}

func (p *participantRequest) toInput() *encounter.AddParticipantInput {
	return &encounter.AddParticipantInput{
		CharacterID:         p.CharacterID,
		CreatureKey:         p.CreatureKey,
		Name:                p.Name,
		MaxHP:               p.MaxHP,
		CurrentHP:           p.CurrentHP,
		ArmorClass:          p.ArmorClass,
		InitiativeModifier:  p.InitiativeModifier,
		Resistances:         p.Resistances,
		Vulnerabilities:     p.Vulnerabilities,
		Immunities:          p.Immunities,
		ConditionImmunities: p.ConditionImmunities,
	}
}

func (h *Handler) createEncounter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID    string                `json:"session_id"`
		Participants []*participantRequest `json:"participants,omitempty"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	input := &encounter.CreateEncounterInput{SessionID: req.SessionID}
	for _, p := range req.Participants {
		input.Participants = append(input.Participants, p.toInput())
	}

	enc, err := h.service.CreateEncounter(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, enc)
}

func (h *Handler) getEncounter(w http.ResponseWriter, r *http.Request) {
	enc, err := h.service.GetEncounter(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, enc)
}

func (h *Handler) getDamageLog(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.GetDamageLog(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) listEncounters(w http.ResponseWriter, r *http.Request) {
	encs, err := h.service.ListEncounters(r.Context(), r.PathValue("sessionId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, encs)
}

func (h *Handler) getActiveEncounter(w http.ResponseWriter, r *http.Request) {
	enc, err := h.service.GetActiveEncounter(r.Context(), r.PathValue("sessionId"))
	if err != nil {
		writeError(w, err)
		return
	}
	if enc == nil {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error": map[string]any{"code": "not_found", "message": "no active encounter"},
		})
		return
	}
	writeJSON(w, http.StatusOK, enc)
}

func (h *Handler) listCreatures(w http.ResponseWriter, r *http.Request) {
	minCR, err := crQueryParam(r, "min_cr", 0)
	if err != nil {
		writeError(w, err)
		return
	}
	maxCR, err := crQueryParam(r, "max_cr", 30)
	if err != nil {
		writeError(w, err)
		return
	}

	templates, err := h.service.ListCreatureTemplates(r.Context(), minCR, maxCR)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

func crQueryParam(r *http.Request, name string, defaultValue float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, dnderr.Validationf("invalid %s: %q", name, raw)
	}
	return value, nil
}

func (h *Handler) addParticipant(w http.ResponseWriter, r *http.Request) {
	var req participantRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	participant, err := h.service.AddParticipant(r.Context(), r.PathValue("id"), req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, participant)
}

func (h *Handler) removeParticipant(w http.ResponseWriter, r *http.Request) {
	err := h.service.RemoveParticipant(r.Context(), r.PathValue("id"), r.PathValue("participantId"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getMechanicalEffects(w http.ResponseWriter, r *http.Request) {
	effects, err := h.service.GetMechanicalEffects(r.Context(), r.PathValue("id"), r.PathValue("participantId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, effects)
}

func (h *Handler) rollInitiative(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ParticipantID string `json:"participant_id"`
		Roll          *int   `json:"roll,omitempty"`
		Advantage     bool   `json:"advantage,omitempty"`
		Disadvantage  bool   `json:"disadvantage,omitempty"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	participant, err := h.service.RollInitiative(r.Context(), r.PathValue("id"), &encounter.RollInitiativeInput{
		ParticipantID: req.ParticipantID,
		Roll:          req.Roll,
		Advantage:     req.Advantage,
		Disadvantage:  req.Disadvantage,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, participant)
}

func (h *Handler) reorder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ParticipantID string `json:"participant_id"`
		NewInitiative int    `json:"new_initiative"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	enc, err := h.service.Reorder(r.Context(), r.PathValue("id"), req.ParticipantID, req.NewInitiative)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, enc)
}

func (h *Handler) start(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.service.StartEncounter)
}

func (h *Handler) pause(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.service.PauseEncounter)
}

func (h *Handler) resume(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.service.ResumeEncounter)
}

func (h *Handler) end(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.service.EndEncounter)
}

func (h *Handler) lifecycle(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, encounterID string) (*combat.Encounter, error)) {
	enc, err := op(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, enc)
}

func (h *Handler) nextTurn(w http.ResponseWriter, r *http.Request) {
	advance, err := h.service.NextTurn(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, advance)
}

func (h *Handler) attack(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AttackerID      string            `json:"attacker_id"`
		TargetID        string            `json:"target_id"`
		AttackRollTotal int               `json:"attack_roll_total"`
		IsNatural20     bool              `json:"is_natural_20,omitempty"`
		IsNatural1      bool              `json:"is_natural_1,omitempty"`
		DamageRoll      int               `json:"damage_roll"`
		DamageType      combat.DamageType `json:"damage_type"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.service.ResolveAttack(r.Context(), r.PathValue("id"), &encounter.AttackInput{
		AttackerID:      req.AttackerID,
		TargetID:        req.TargetID,
		AttackRollTotal: req.AttackRollTotal,
		Natural20:       req.IsNatural20,
		Natural1:        req.IsNatural1,
		DamageRoll:      req.DamageRoll,
		DamageType:      req.DamageType,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) aoeAttack(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CasterID string `json:"caster_id"`
		Targets  []struct {
			ParticipantID string `json:"participant_id"`
			SaveRoll      int    `json:"save_roll"`
		} `json:"targets"`
		SaveDC     int               `json:"save_dc"`
		HalfOnSave bool              `json:"half_on_save,omitempty"`
		DamageRoll int               `json:"damage_roll"`
		DamageType combat.DamageType `json:"damage_type"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	input := &encounter.AoeAttackInput{
		CasterID:   req.CasterID,
		SaveDC:     req.SaveDC,
		HalfOnSave: req.HalfOnSave,
		DamageRoll: req.DamageRoll,
		DamageType: req.DamageType,
	}
	for _, t := range req.Targets {
		input.Targets = append(input.Targets, encounter.AoeTarget{
			ParticipantID: t.ParticipantID,
			SaveRoll:      t.SaveRoll,
		})
	}

	results, err := h.service.ResolveAoeAttack(r.Context(), r.PathValue("id"), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *Handler) damage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ParticipantID       string            `json:"participant_id"`
		Amount              int               `json:"amount"`
		DamageType          combat.DamageType `json:"damage_type"`
		SourceParticipantID string            `json:"source_participant_id,omitempty"`
		SourceDescription   string            `json:"source_description,omitempty"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	outcome, err := h.service.ApplyDamage(r.Context(), r.PathValue("id"), &encounter.ApplyDamageInput{
		ParticipantID:       req.ParticipantID,
		Amount:              req.Amount,
		DamageType:          req.DamageType,
		SourceParticipantID: req.SourceParticipantID,
		SourceDescription:   req.SourceDescription,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (h *Handler) heal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ParticipantID string `json:"participant_id"`
		Amount        int    `json:"amount"`
		Source        string `json:"source,omitempty"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	outcome, err := h.service.Heal(r.Context(), r.PathValue("id"), &encounter.HealInput{
		ParticipantID: req.ParticipantID,
		Amount:        req.Amount,
		Source:        req.Source,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (h *Handler) tempHP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ParticipantID string `json:"participant_id"`
		Amount        int    `json:"amount"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	participant, err := h.service.SetTempHP(r.Context(), r.PathValue("id"), req.ParticipantID, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, participant)
}

func (h *Handler) deathSave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ParticipantID string `json:"participant_id"`
		Roll          *int   `json:"roll,omitempty"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	outcome, err := h.service.RollDeathSave(r.Context(), r.PathValue("id"), &encounter.DeathSaveInput{
		ParticipantID: req.ParticipantID,
		Roll:          req.Roll,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (h *Handler) applyCondition(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ParticipantID string                  `json:"participant_id"`
		Condition     conditions.Type         `json:"condition"`
		DurationType  conditions.DurationType `json:"duration_type"`
		DurationValue int                     `json:"duration_value,omitempty"`
		SaveDC        int                     `json:"save_dc,omitempty"`
		SaveAbility   conditions.Ability      `json:"save_ability,omitempty"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	applied, err := h.service.ApplyCondition(r.Context(), r.PathValue("id"), &encounter.ApplyConditionInput{
		ParticipantID: req.ParticipantID,
		Condition:     req.Condition,
		DurationType:  req.DurationType,
		DurationValue: req.DurationValue,
		SaveDC:        req.SaveDC,
		SaveAbility:   req.SaveAbility,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, applied)
}

func (h *Handler) attemptSave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ParticipantID string `json:"participant_id"`
		ConditionID   string `json:"condition_id"`
		SaveRollTotal int    `json:"save_roll_total"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.service.AttemptSave(r.Context(), r.PathValue("id"), &encounter.AttemptSaveInput{
		ParticipantID: req.ParticipantID,
		ConditionID:   req.ConditionID,
		SaveRollTotal: req.SaveRollTotal,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) removeCondition(w http.ResponseWriter, r *http.Request) {
	err := h.service.RemoveCondition(r.Context(), r.PathValue("id"), r.PathValue("participantId"), r.PathValue("conditionId"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
