package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infinite-realms/combat-engine/internal/domain/combat"
	"github.com/infinite-realms/combat-engine/internal/handlers/api"
	"github.com/infinite-realms/combat-engine/internal/repositories/encounters"
	"github.com/infinite-realms/combat-engine/internal/services/encounter"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	svc := encounter.NewService(&encounter.ServiceConfig{
		Repository: encounters.NewInMemoryRepository(),
	})

	mux := http.NewServeMux()
	api.NewHandler(svc).Register(mux)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded map[string]any
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	}
	return resp, decoded
}

func createStartedEncounter(t *testing.T, server *httptest.Server) (encID, aID, bID string) {
	t.Helper()

	resp, body := doJSON(t, http.MethodPost, server.URL+"/encounters", map[string]any{
		"session_id": "session-1",
		"participants": []map[string]any{
			{"name": "Aldric", "max_hp": 20, "armor_class": 15, "initiative_modifier": 3},
			{"name": "Brakk", "max_hp": 12, "armor_class": 12, "initiative_modifier": 1, "resistances": []string{"slashing"}},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	encID = body["id"].(string)

	participants := body["participants"].(map[string]any)
	for id, raw := range participants {
		identity := raw.(map[string]any)["identity"].(map[string]any)
		switch identity["name"] {
		case "Aldric":
			aID = id
		case "Brakk":
			bID = id
		}
	}
	require.NotEmpty(t, aID)
	require.NotEmpty(t, bID)

	for id, roll := range map[string]int{aID: 18, bID: 10} {
		resp, _ = doJSON(t, http.MethodPost, server.URL+"/encounters/"+encID+"/roll-initiative", map[string]any{
			"participant_id": id,
			"roll":           roll,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPost, server.URL+"/encounters/"+encID+"/start", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	return encID, aID, bID
}

func TestEncounterLifecycleOverHTTP(t *testing.T) {
	server := newTestServer(t)
	encID, aID, bID := createStartedEncounter(t, server)

	// Status snapshot
	resp, body := doJSON(t, http.MethodGet, server.URL+"/encounters/"+encID+"/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(combat.StatusActive), body["status"])
	assert.Equal(t, float64(1), body["round"])

	// Attack: 16 vs AC 12 hits, slashing resisted to 5
	resp, body = doJSON(t, http.MethodPost, server.URL+"/encounters/"+encID+"/attack", map[string]any{
		"attacker_id":       aID,
		"target_id":         bID,
		"attack_roll_total": 16,
		"damage_roll":       10,
		"damage_type":       "slashing",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["hit"])
	damage := body["damage"].(map[string]any)
	assert.Equal(t, float64(5), damage["effective_amount"])

	// Damage log has the entry
	logResp, err := http.Get(server.URL + "/encounters/" + encID + "/damage-log")
	require.NoError(t, err)
	defer func() { _ = logResp.Body.Close() }()
	require.Equal(t, http.StatusOK, logResp.StatusCode)

	var entries []map[string]any
	require.NoError(t, json.NewDecoder(logResp.Body).Decode(&entries))
	require.Len(t, entries, 1)
	assert.Equal(t, float64(5), entries[0]["effective_amount"])

	// Next turn hands over to B
	resp, body = doJSON(t, http.MethodPost, server.URL+"/encounters/"+encID+"/next-turn", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	participant := body["participant"].(map[string]any)
	assert.Equal(t, bID, participant["id"])

	// End
	resp, body = doJSON(t, http.MethodPost, server.URL+"/encounters/"+encID+"/end", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(combat.StatusCompleted), body["status"])
}

func TestErrorStatusMapping(t *testing.T) {
	server := newTestServer(t)

	// Unknown encounter → 404
	resp, body := doJSON(t, http.MethodGet, server.URL+"/encounters/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "not_found", errBody["code"])

	// Missing session ID → 400
	resp, body = doJSON(t, http.MethodPost, server.URL+"/encounters", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errBody = body["error"].(map[string]any)
	assert.Equal(t, "validation", errBody["code"])

	// Malformed JSON → 400
	req, err := http.NewRequest(http.MethodPost, server.URL+"/encounters", bytes.NewBufferString("{"))
	require.NoError(t, err)
	rawResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = rawResp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, rawResp.StatusCode)

	// Illegal transition → 409
	encID, _, _ := createStartedEncounter(t, server)
	resp, body = doJSON(t, http.MethodPost, server.URL+"/encounters/"+encID+"/resume", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	errBody = body["error"].(map[string]any)
	assert.Equal(t, "invalid_state", errBody["code"])

	// Second active encounter in the session → 409 conflict
	resp, body = doJSON(t, http.MethodPost, server.URL+"/encounters", map[string]any{"session_id": "session-1"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	errBody = body["error"].(map[string]any)
	assert.Equal(t, "conflict", errBody["code"])

	// No active encounter for an unknown session → 404
	resp, _ = doJSON(t, http.MethodGet, server.URL+"/sessions/ghost/encounters/active", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Creature listing without a configured client → 400
	resp, body = doJSON(t, http.MethodGet, server.URL+"/creatures?min_cr=0&max_cr=1", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errBody = body["error"].(map[string]any)
	assert.Equal(t, "validation", errBody["code"])

	// Unparseable challenge rating → 400
	resp, _ = doJSON(t, http.MethodGet, server.URL+"/creatures?min_cr=tough", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestConditionsOverHTTP(t *testing.T) {
	server := newTestServer(t)
	encID, aID, _ := createStartedEncounter(t, server)

	resp, body := doJSON(t, http.MethodPost, server.URL+"/encounters/"+encID+"/conditions/apply", map[string]any{
		"participant_id": aID,
		"condition":      "restrained",
		"duration_type":  "until_save",
		"save_dc":        13,
		"save_ability":   "str",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	conditionID := body["id"].(string)

	// Effects reflect the restraint
	resp, body = doJSON(t, http.MethodGet, server.URL+"/encounters/"+encID+"/participants/"+aID+"/effects", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	modifiers := body["roll_modifiers"].(map[string]any)
	assert.Equal(t, "disadvantage", modifiers["attack_rolls"])

	// Save ends it
	resp, body = doJSON(t, http.MethodPost, server.URL+"/encounters/"+encID+"/conditions/save", map[string]any{
		"participant_id":  aID,
		"condition_id":    conditionID,
		"save_roll_total": 15,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["saved"])

	// Apply again, then remove explicitly
	resp, body = doJSON(t, http.MethodPost, server.URL+"/encounters/"+encID+"/conditions/apply", map[string]any{
		"participant_id": aID,
		"condition":      "prone",
		"duration_type":  "permanent",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	proneID := body["id"].(string)

	resp, _ = doJSON(t, http.MethodDelete, server.URL+"/encounters/"+encID+"/participants/"+aID+"/conditions/"+proneID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
