package encounters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/infinite-realms/combat-engine/internal/domain/combat"
	dnderr "github.com/infinite-realms/combat-engine/internal/errors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

type redisRepository struct {
	client redis.UniversalClient
}

// NewRedisRepository creates a Redis-backed encounter repository. Each
// encounter is stored as one JSON blob under encounter:<id>, with a
// session:<id>:encounters set as the session index.
func NewRedisRepository(client redis.UniversalClient) Repository {
	return &redisRepository{client: client}
}

func encounterKey(id string) string {
	return fmt.Sprintf("encounter:%s", id)
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s:encounters", sessionID)
}

// Create stores a new encounter
func (r *redisRepository) Create(ctx context.Context, encounter *combat.Encounter) error {
	exists, err := r.client.Exists(ctx, encounterKey(encounter.ID)).Result()
	if err != nil {
		return dnderr.Wrap(err, "failed to check encounter existence")
	}
	if exists > 0 {
		return dnderr.Newf(dnderr.CodeConflict, "encounter %s already exists", encounter.ID)
	}

	return r.write(ctx, encounter)
}

// Get retrieves an encounter by ID
func (r *redisRepository) Get(ctx context.Context, id string) (*combat.Encounter, error) {
	data, err := r.client.Get(ctx, encounterKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, dnderr.NotFoundf("encounter not found: %s", id)
		}
		return nil, dnderr.Wrapf(err, "failed to get encounter %s", id)
	}

	var encounter combat.Encounter
	if err := json.Unmarshal([]byte(data), &encounter); err != nil {
		return nil, dnderr.Wrapf(err, "failed to unmarshal encounter %s", id)
	}

	return &encounter, nil
}

// Update replaces the stored state of an existing encounter
func (r *redisRepository) Update(ctx context.Context, encounter *combat.Encounter) error {
	exists, err := r.client.Exists(ctx, encounterKey(encounter.ID)).Result()
	if err != nil {
		return dnderr.Wrap(err, "failed to check encounter existence")
	}
	if exists == 0 {
		return dnderr.NotFoundf("encounter not found: %s", encounter.ID)
	}

	return r.write(ctx, encounter)
}

// Delete removes an encounter
func (r *redisRepository) Delete(ctx context.Context, id string) error {
	encounter, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	pipe.Del(ctx, encounterKey(id))
	pipe.SRem(ctx, sessionKey(encounter.SessionID), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return dnderr.Wrapf(err, "failed to delete encounter %s", id)
	}

	return nil
}

// GetBySession retrieves all encounters for a session
func (r *redisRepository) GetBySession(ctx context.Context, sessionID string) ([]*combat.Encounter, error) {
	ids, err := r.client.SMembers(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to list encounters for session %s", sessionID)
	}

	encounters := make([]*combat.Encounter, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			encounter, err := r.Get(ctx, id)
			if err != nil {
				return err
			}
			encounters[i] = encounter
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return encounters, nil
}

// GetActiveBySession retrieves the non-completed encounter for a session
func (r *redisRepository) GetActiveBySession(ctx context.Context, sessionID string) (*combat.Encounter, error) {
	encounters, err := r.GetBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	for _, encounter := range encounters {
		if encounter.Status != combat.StatusCompleted {
			return encounter, nil
		}
	}

	return nil, nil
}

func (r *redisRepository) write(ctx context.Context, encounter *combat.Encounter) error {
	data, err := json.Marshal(encounter)
	if err != nil {
		return dnderr.Wrapf(err, "failed to marshal encounter %s", encounter.ID)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, encounterKey(encounter.ID), string(data), 0)
	pipe.SAdd(ctx, sessionKey(encounter.SessionID), encounter.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return dnderr.Wrapf(err, "failed to store encounter %s", encounter.ID)
	}

	return nil
}
