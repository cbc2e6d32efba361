package trips

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voyago/voyago/internal/app/domain/itinerary"
	"github.com/voyago/voyago/internal/app/models"
)

var _ Service = (*ServiceImpl)(nil)

// Service exposes plan CRUD and itinerary editing. Activity-level edits run
// through an itinerary editor so ordering and cost invariants hold before
// anything reaches storage.
type Service interface {
	GetPlan(ctx context.Context, userID, planID uuid.UUID) (*models.TravelPlan, error)
	ListPlans(ctx context.Context, userID uuid.UUID) ([]models.TravelPlan, error)
	UpdatePlan(ctx context.Context, userID, planID uuid.UUID, params UpdatePlanParams) (*models.TravelPlan, error)
	DeletePlan(ctx context.Context, userID, planID uuid.UUID) error

	ReplaceItinerary(ctx context.Context, userID, planID uuid.UUID, days []models.ItineraryDay) (*models.TravelPlan, error)
	AddActivity(ctx context.Context, userID, planID uuid.UUID, day int, a models.Activity) (*models.TravelPlan, error)
	UpdateActivity(ctx context.Context, userID, planID uuid.UUID, sourceDay, idx, targetDay int, a models.Activity) (*models.TravelPlan, error)
	DeleteActivity(ctx context.Context, userID, planID uuid.UUID, day, idx int) (*models.TravelPlan, error)
}

type ServiceImpl struct {
	logger *zap.Logger
	repo   Repository
}

func NewServiceImpl(repo Repository, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger, repo: repo}
}

func (s *ServiceImpl) GetPlan(ctx context.Context, userID, planID uuid.UUID) (*models.TravelPlan, error) {
	return s.repo.GetPlan(ctx, userID, planID)
}

func (s *ServiceImpl) ListPlans(ctx context.Context, userID uuid.UUID) ([]models.TravelPlan, error) {
	return s.repo.ListPlans(ctx, userID)
}

func (s *ServiceImpl) UpdatePlan(ctx context.Context, userID, planID uuid.UUID, params UpdatePlanParams) (*models.TravelPlan, error) {
	if err := s.repo.UpdatePlan(ctx, userID, planID, params); err != nil {
		return nil, err
	}
	return s.repo.GetPlan(ctx, userID, planID)
}

func (s *ServiceImpl) DeletePlan(ctx context.Context, userID, planID uuid.UUID) error {
	return s.repo.DeletePlan(ctx, userID, planID)
}

// ReplaceItinerary swaps in a full day set. Day numbers must be unique and
// positive; each day's activities are re-sorted and costs recomputed before
// the set is stored.
func (s *ServiceImpl) ReplaceItinerary(ctx context.Context, userID, planID uuid.UUID, days []models.ItineraryDay) (*models.TravelPlan, error) {
	l := s.logger.With(zap.String("method", "ReplaceItinerary"), zap.String("planID", planID.String()))

	seen := make(map[int]bool, len(days))
	for i := range days {
		if days[i].Day < 1 {
			return nil, fmt.Errorf("day number %d must be positive: %w", days[i].Day, models.ErrValidation)
		}
		if seen[days[i].Day] {
			return nil, fmt.Errorf("duplicate day %d: %w", days[i].Day, models.ErrValidation)
		}
		seen[days[i].Day] = true
		days[i].RecalculateTotal()
	}

	// Rebuild the set through an editor so bad payloads are rejected with the
	// same errors as incremental edits, and ordering holds.
	stubs := make([]models.ItineraryDay, len(days))
	copy(stubs, days)
	for i := range stubs {
		stubs[i].Activities = nil
	}
	ed := itinerary.NewEditor(userID, planID, stubs, s.repo, s.logger)
	for _, d := range days {
		for _, a := range d.Activities {
			if err := ed.AddActivity(d.Day, a); err != nil {
				return nil, err
			}
		}
	}

	if err := ed.Save(ctx); err != nil {
		l.Error("Failed to save itinerary", zap.Error(err))
		return nil, err
	}

	l.Info("Itinerary replaced", zap.Int("days", len(days)))
	return s.repo.GetPlan(ctx, userID, planID)
}

func (s *ServiceImpl) AddActivity(ctx context.Context, userID, planID uuid.UUID, day int, a models.Activity) (*models.TravelPlan, error) {
	return s.edit(ctx, userID, planID, func(ed *itinerary.Editor) error {
		return ed.AddActivity(day, a)
	})
}

func (s *ServiceImpl) UpdateActivity(ctx context.Context, userID, planID uuid.UUID, sourceDay, idx, targetDay int, a models.Activity) (*models.TravelPlan, error) {
	return s.edit(ctx, userID, planID, func(ed *itinerary.Editor) error {
		return ed.EditActivity(sourceDay, idx, targetDay, a)
	})
}

func (s *ServiceImpl) DeleteActivity(ctx context.Context, userID, planID uuid.UUID, day, idx int) (*models.TravelPlan, error) {
	return s.edit(ctx, userID, planID, func(ed *itinerary.Editor) error {
		return ed.DeleteActivity(day, idx)
	})
}

// edit loads the stored itinerary into an editor, applies one mutation and
// saves. The stored state never changes when the mutation or the save fails.
func (s *ServiceImpl) edit(ctx context.Context, userID, planID uuid.UUID, apply func(*itinerary.Editor) error) (*models.TravelPlan, error) {
	plan, err := s.repo.GetPlan(ctx, userID, planID)
	if err != nil {
		return nil, err
	}

	ed := itinerary.NewEditor(userID, planID, plan.Itinerary, s.repo, s.logger)
	if err := apply(ed); err != nil {
		return nil, err
	}
	if err := ed.Save(ctx); err != nil {
		return nil, err
	}

	plan.Itinerary = ed.Days()
	return plan, nil
}
