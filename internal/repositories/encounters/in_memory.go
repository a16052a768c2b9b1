package encounters

import (
	"context"
	"sync"

	"github.com/infinite-realms/combat-engine/internal/domain/combat"
	dnderr "github.com/infinite-realms/combat-engine/internal/errors"
)

type inMemoryRepository struct {
	mu         sync.RWMutex
	encounters map[string]*combat.Encounter
	bySession  map[string][]string // sessionID -> encounter IDs
}

// NewInMemoryRepository creates a new in-memory encounter repository.
// Stored and returned encounters are deep copies, so callers can never
// mutate repository state outside Update.
func NewInMemoryRepository() Repository {
	return &inMemoryRepository{
		encounters: make(map[string]*combat.Encounter),
		bySession:  make(map[string][]string),
	}
}

// Create stores a new encounter
func (r *inMemoryRepository) Create(ctx context.Context, encounter *combat.Encounter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.encounters[encounter.ID]; exists {
		return dnderr.Newf(dnderr.CodeConflict, "encounter %s already exists", encounter.ID)
	}

	r.encounters[encounter.ID] = encounter.Clone()
	r.bySession[encounter.SessionID] = append(r.bySession[encounter.SessionID], encounter.ID)

	return nil
}

// Get retrieves an encounter by ID
func (r *inMemoryRepository) Get(ctx context.Context, id string) (*combat.Encounter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	encounter, exists := r.encounters[id]
	if !exists {
		return nil, dnderr.NotFoundf("encounter not found: %s", id)
	}

	return encounter.Clone(), nil
}

// Update replaces the stored state of an existing encounter
func (r *inMemoryRepository) Update(ctx context.Context, encounter *combat.Encounter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.encounters[encounter.ID]; !exists {
		return dnderr.NotFoundf("encounter not found: %s", encounter.ID)
	}

	r.encounters[encounter.ID] = encounter.Clone()
	return nil
}

// Delete removes an encounter
func (r *inMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	encounter, exists := r.encounters[id]
	if !exists {
		return dnderr.NotFoundf("encounter not found: %s", id)
	}

	delete(r.encounters, id)

	sessionEncounters := r.bySession[encounter.SessionID]
	for i, eid := range sessionEncounters {
		if eid == id {
			r.bySession[encounter.SessionID] = append(sessionEncounters[:i], sessionEncounters[i+1:]...)
			break
		}
	}

	return nil
}

// GetBySession retrieves all encounters for a session
func (r *inMemoryRepository) GetBySession(ctx context.Context, sessionID string) ([]*combat.Encounter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	encounterIDs := r.bySession[sessionID]
	encounters := make([]*combat.Encounter, 0, len(encounterIDs))

	for _, id := range encounterIDs {
		if encounter, exists := r.encounters[id]; exists {
			encounters = append(encounters, encounter.Clone())
		}
	}

	return encounters, nil
}

// GetActiveBySession retrieves the non-completed encounter for a session
func (r *inMemoryRepository) GetActiveBySession(ctx context.Context, sessionID string) (*combat.Encounter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.bySession[sessionID] {
		if encounter, exists := r.encounters[id]; exists {
			if encounter.Status != combat.StatusCompleted {
				return encounter.Clone(), nil
			}
		}
	}

	return nil, nil
}
