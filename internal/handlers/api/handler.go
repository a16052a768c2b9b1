// Package api exposes the combat engine over JSON HTTP. Handlers decode,
// delegate to the encounter service, and encode; no game logic lives here.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	dnderr "github.com/infinite-realms/combat-engine/internal/errors"
	"github.com/infinite-realms/combat-engine/internal/services/encounter"
)

type Handler struct {
	service encounter.Service
}

func NewHandler(service encounter.Service) *Handler {
	return &Handler{service: service}
}

// Register mounts every route on the mux
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /encounters", h.createEncounter)
	mux.HandleFunc("GET /encounters/{id}", h.getEncounter)
	mux.HandleFunc("GET /encounters/{id}/status", h.getEncounter)
	mux.HandleFunc("GET /encounters/{id}/damage-log", h.getDamageLog)
	mux.HandleFunc("GET /sessions/{sessionId}/encounters", h.listEncounters)
	mux.HandleFunc("GET /sessions/{sessionId}/encounters/active", h.getActiveEncounter)
	mux.HandleFunc("GET /creatures", h.listCreatures)

	mux.HandleFunc("POST /encounters/{id}/participants", h.addParticipant)
	mux.HandleFunc("DELETE /encounters/{id}/participants/{participantId}", h.removeParticipant)
	mux.HandleFunc("GET /encounters/{id}/participants/{participantId}/effects", h.getMechanicalEffects)

	mux.HandleFunc("POST /encounters/{id}/roll-initiative", h.rollInitiative)
	mux.HandleFunc("POST /encounters/{id}/reorder", h.reorder)
	mux.HandleFunc("POST /encounters/{id}/start", h.start)
	mux.HandleFunc("POST /encounters/{id}/pause", h.pause)
	mux.HandleFunc("POST /encounters/{id}/resume", h.resume)
	mux.HandleFunc("POST /encounters/{id}/end", h.end)
	mux.HandleFunc("POST /encounters/{id}/next-turn", h.nextTurn)

	mux.HandleFunc("POST /encounters/{id}/attack", h.attack)
	mux.HandleFunc("POST /encounters/{id}/aoe-attack", h.aoeAttack)
	mux.HandleFunc("POST /encounters/{id}/damage", h.damage)
	mux.HandleFunc("POST /encounters/{id}/heal", h.heal)
	mux.HandleFunc("POST /encounters/{id}/temp-hp", h.tempHP)
	mux.HandleFunc("POST /encounters/{id}/death-save", h.deathSave)

	mux.HandleFunc("POST /encounters/{id}/conditions/apply", h.applyCondition)
	mux.HandleFunc("POST /encounters/{id}/conditions/save", h.attemptSave)
	mux.HandleFunc("DELETE /encounters/{id}/participants/{participantId}/conditions/{conditionId}", h.removeCondition)
}

// writeError maps the error taxonomy onto HTTP status codes
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch dnderr.GetCode(err) {
	case dnderr.CodeNotFound:
		status = http.StatusNotFound
	case dnderr.CodeValidation:
		status = http.StatusBadRequest
	case dnderr.CodeInvalidState, dnderr.CodeConflict:
		status = http.StatusConflict
	}

	var coded *dnderr.Error
	code := dnderr.CodeInternal
	if errors.As(err, &coded) {
		code = coded.Code
	}

	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": err.Error(),
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("api: failed to encode response: %v", err)
	}
}

func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return dnderr.Validation("invalid request body: " + err.Error())
	}
	return nil
}
