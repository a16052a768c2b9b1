package encounters

//go:generate mockgen -destination=mock/mock_repository.go -package=mockencrepo -source=repository.go

import (
	"context"

	"github.com/infinite-realms/combat-engine/internal/domain/combat"
)

// Repository defines the interface for encounter storage operations
type Repository interface {
	// Create stores a new encounter
	Create(ctx context.Context, encounter *combat.Encounter) error

	// Get retrieves an encounter by ID
	Get(ctx context.Context, id string) (*combat.Encounter, error)

	// Update replaces the stored state of an existing encounter
	Update(ctx context.Context, encounter *combat.Encounter) error

	// Delete removes an encounter
	Delete(ctx context.Context, id string) error

	// GetBySession retrieves all encounters for a session
	GetBySession(ctx context.Context, sessionID string) ([]*combat.Encounter, error)

	// GetActiveBySession retrieves the non-completed encounter for a session,
	// nil if the session has none
	GetActiveBySession(ctx context.Context, sessionID string) (*combat.Encounter, error)
}
