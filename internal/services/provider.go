package services

import (
	"github.com/infinite-realms/combat-engine/internal/clients/dnd5e"
	"github.com/infinite-realms/combat-engine/internal/events"
	"github.com/infinite-realms/combat-engine/internal/repositories/encounters"
	encounterService "github.com/infinite-realms/combat-engine/internal/services/encounter"
)

// Provider holds all service instances
type Provider struct {
	EncounterService encounterService.Service
	EventBus         *events.Bus
}

// ProviderConfig holds configuration for creating services
type ProviderConfig struct {
	DNDClient           dnd5e.Client
	EncounterRepository encounters.Repository
	EventBus            *events.Bus
	StrictTurnOrder     bool
}

// NewProvider creates a new service provider with all services initialized
func NewProvider(cfg *ProviderConfig) *Provider {
	// Use in-memory repository if none provided
	encRepo := cfg.EncounterRepository
	if encRepo == nil {
		encRepo = encounters.NewInMemoryRepository()
	}

	bus := cfg.EventBus
	if bus == nil {
		bus = events.NewBus()
	}

	encService := encounterService.NewService(&encounterService.ServiceConfig{
		Repository:      encRepo,
		Dnd5eClient:     cfg.DNDClient,
		EventBus:        bus,
		StrictTurnOrder: cfg.StrictTurnOrder,
	})

	return &Provider{
		EncounterService: encService,
		EventBus:         bus,
	}
}
