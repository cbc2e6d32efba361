package planner

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voyago/voyago/internal/app/models"
)

const (
	generateTemperature   = 0.7
	regenerateTemperature = 0.9
)

var _ Service = (*ServiceImpl)(nil)

// Completer issues one chat completion with the caller's credentials.
type Completer interface {
	Complete(ctx context.Context, userID uuid.UUID, prompt string, temperature float64) (string, error)
}

// Enricher resolves missing activity coordinates in place.
type Enricher interface {
	EnrichPlan(ctx context.Context, key, destination string, days []models.ItineraryDay)
}

// MapCredentialSource resolves the map provider key for a user.
type MapCredentialSource interface {
	MapCredentials(ctx context.Context, userID uuid.UUID) (key, securityCode string, err error)
}

// PlanStore persists generated plans.
type PlanStore interface {
	CreatePlan(ctx context.Context, plan *models.TravelPlan) (*models.TravelPlan, error)
	GetPlan(ctx context.Context, userID, planID uuid.UUID) (*models.TravelPlan, error)
	ReplacePlan(ctx context.Context, plan *models.TravelPlan) (*models.TravelPlan, error)
}

// Service generates travel plans from structured or spoken input.
type Service interface {
	GenerateFromRequest(ctx context.Context, userID uuid.UUID, req models.TripRequest) (*models.TravelPlan, error)
	GenerateFromVoice(ctx context.Context, userID uuid.UUID, transcript string) (*models.TravelPlan, error)
	Regenerate(ctx context.Context, userID, planID uuid.UUID, feedback string) (*models.TravelPlan, error)
}

type ServiceImpl struct {
	logger   *zap.Logger
	llm      Completer
	enricher Enricher
	mapCreds MapCredentialSource
	store    PlanStore
}

func NewServiceImpl(llm Completer, enricher Enricher, mapCreds MapCredentialSource, store PlanStore, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:   logger,
		llm:      llm,
		enricher: enricher,
		mapCreds: mapCreds,
		store:    store,
	}
}

func (s *ServiceImpl) GenerateFromRequest(ctx context.Context, userID uuid.UUID, req models.TripRequest) (*models.TravelPlan, error) {
	l := s.logger.With(zap.String("method", "GenerateFromRequest"),
		zap.String("userID", userID.String()),
		zap.String("destination", req.Destination),
	)

	if req.Destination == "" {
		return nil, fmt.Errorf("destination cannot be empty: %w", models.ErrValidation)
	}
	if req.Days() == 0 {
		return nil, fmt.Errorf("invalid date range %s..%s: %w", req.StartDate, req.EndDate, models.ErrValidation)
	}

	plan, err := s.generate(ctx, userID, BuildTripPrompt(req), generateTemperature)
	if err != nil {
		return nil, err
	}

	// The request is authoritative for what the user actually asked.
	plan.Destination = req.Destination
	plan.StartDate = req.StartDate
	plan.EndDate = req.EndDate
	plan.Budget = req.Budget
	if req.TravelerCount > 0 {
		plan.TravelerCount = req.TravelerCount
	}

	created, err := s.persist(ctx, userID, plan)
	if err != nil {
		return nil, err
	}
	l.Info("Plan generated", zap.String("planID", created.ID.String()), zap.Int("days", len(created.Itinerary)))
	return created, nil
}

func (s *ServiceImpl) GenerateFromVoice(ctx context.Context, userID uuid.UUID, transcript string) (*models.TravelPlan, error) {
	l := s.logger.With(zap.String("method", "GenerateFromVoice"), zap.String("userID", userID.String()))

	if transcript == "" {
		return nil, fmt.Errorf("empty transcript: %w", models.ErrBadRequest)
	}

	plan, err := s.generate(ctx, userID, BuildVoicePrompt(transcript), generateTemperature)
	if err != nil {
		return nil, err
	}

	created, err := s.persist(ctx, userID, plan)
	if err != nil {
		return nil, err
	}
	l.Info("Voice plan generated", zap.String("planID", created.ID.String()))
	return created, nil
}

// Regenerate rebuilds an existing plan's itinerary, steering the model with
// the user's feedback and a looser temperature.
func (s *ServiceImpl) Regenerate(ctx context.Context, userID, planID uuid.UUID, feedback string) (*models.TravelPlan, error) {
	l := s.logger.With(zap.String("method", "Regenerate"), zap.String("planID", planID.String()))

	existing, err := s.store.GetPlan(ctx, userID, planID)
	if err != nil {
		return nil, err
	}

	req := models.TripRequest{
		Destination:   existing.Destination,
		StartDate:     existing.StartDate,
		EndDate:       existing.EndDate,
		Budget:        existing.Budget,
		TravelerCount: existing.TravelerCount,
	}

	plan, err := s.generate(ctx, userID, BuildRegeneratePrompt(req, feedback), regenerateTemperature)
	if err != nil {
		return nil, err
	}

	plan.ID = existing.ID
	plan.UserID = existing.UserID
	plan.Destination = existing.Destination
	plan.StartDate = existing.StartDate
	plan.EndDate = existing.EndDate
	plan.Budget = existing.Budget
	plan.TravelerCount = existing.TravelerCount
	plan.Status = existing.Status

	updated, err := s.store.ReplacePlan(ctx, plan)
	if err != nil {
		return nil, err
	}
	l.Info("Plan regenerated", zap.Int("days", len(updated.Itinerary)))
	return updated, nil
}

func (s *ServiceImpl) generate(ctx context.Context, userID uuid.UUID, prompt string, temperature float64) (*models.TravelPlan, error) {
	raw, err := s.llm.Complete(ctx, userID, prompt, temperature)
	if err != nil {
		return nil, err
	}

	plan, err := ParsePlanResponse(raw)
	if err != nil {
		s.logger.Warn("Plan response unusable", zap.Error(err))
		return nil, err
	}

	s.enrich(ctx, userID, plan)
	return plan, nil
}

// enrich fills in coordinates when the user has map credentials. A missing
// map configuration degrades to sentinel coordinates rather than blocking
// the generation.
func (s *ServiceImpl) enrich(ctx context.Context, userID uuid.UUID, plan *models.TravelPlan) {
	key, _, err := s.mapCreds.MapCredentials(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotConfigured) {
			s.logger.Debug("Map not configured, skipping geocoding", zap.String("userID", userID.String()))
			return
		}
		s.logger.Warn("Map credential lookup failed, skipping geocoding", zap.Error(err))
		return
	}
	s.enricher.EnrichPlan(ctx, key, plan.Destination, plan.Itinerary)
}

func (s *ServiceImpl) persist(ctx context.Context, userID uuid.UUID, plan *models.TravelPlan) (*models.TravelPlan, error) {
	plan.UserID = userID
	created, err := s.store.CreatePlan(ctx, plan)
	if err != nil {
		s.logger.Error("Failed to persist generated plan", zap.Error(err))
		return nil, err
	}
	return created, nil
}
