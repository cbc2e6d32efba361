package expense

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voyago/voyago/internal/app/models"
)

var _ Service = (*ServiceImpl)(nil)

// PlanSource resolves a plan owned by a user, for budget lookup and
// ownership checks.
type PlanSource interface {
	GetPlan(ctx context.Context, userID, planID uuid.UUID) (*models.TravelPlan, error)
}

// ChatCompleter issues one chat completion with the caller's credentials.
type ChatCompleter interface {
	Complete(ctx context.Context, userID uuid.UUID, prompt string, temperature float64) (string, error)
}

// Service covers expense recording, aggregation and voice capture.
type Service interface {
	Add(ctx context.Context, userID, planID uuid.UUID, e models.Expense) (*models.Expense, error)
	List(ctx context.Context, userID, planID uuid.UUID) ([]models.Expense, error)
	Delete(ctx context.Context, userID, planID, expenseID uuid.UUID) error
	Summary(ctx context.Context, userID, planID uuid.UUID) (*models.ExpenseSummary, error)
	ParseVoice(ctx context.Context, userID uuid.UUID, transcript string) (*models.ParsedExpense, error)
}

type ServiceImpl struct {
	logger *zap.Logger
	repo   Repository
	plans  PlanSource
	llm    ChatCompleter
	now    func() time.Time
}

func NewServiceImpl(repo Repository, plans PlanSource, llm ChatCompleter, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
		plans:  plans,
		llm:    llm,
		now:    time.Now,
	}
}

func (s *ServiceImpl) Add(ctx context.Context, userID, planID uuid.UUID, e models.Expense) (*models.Expense, error) {
	if _, err := s.plans.GetPlan(ctx, userID, planID); err != nil {
		return nil, err
	}
	e.PlanID = planID
	if e.Date == "" {
		e.Date = s.now().Format("2006-01-02")
	}
	return s.repo.Create(ctx, e)
}

func (s *ServiceImpl) List(ctx context.Context, userID, planID uuid.UUID) ([]models.Expense, error) {
	if _, err := s.plans.GetPlan(ctx, userID, planID); err != nil {
		return nil, err
	}
	return s.repo.ListByPlan(ctx, planID)
}

func (s *ServiceImpl) Delete(ctx context.Context, userID, planID, expenseID uuid.UUID) error {
	if _, err := s.plans.GetPlan(ctx, userID, planID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, planID, expenseID)
}

// Summary aggregates recorded spending against the plan's budget.
func (s *ServiceImpl) Summary(ctx context.Context, userID, planID uuid.UUID) (*models.ExpenseSummary, error) {
	plan, err := s.plans.GetPlan(ctx, userID, planID)
	if err != nil {
		return nil, err
	}

	expenses, err := s.repo.ListByPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	summary := Summarize(expenses, plan.Budget)
	return &summary, nil
}

// ParseVoice turns a spoken note into a structured expense via the LLM.
func (s *ServiceImpl) ParseVoice(ctx context.Context, userID uuid.UUID, transcript string) (*models.ParsedExpense, error) {
	l := s.logger.With(zap.String("method", "ParseVoice"), zap.String("userID", userID.String()))

	if transcript == "" {
		return nil, fmt.Errorf("empty transcript: %w", models.ErrBadRequest)
	}

	today := s.now()
	raw, err := s.llm.Complete(ctx, userID, ExpensePrompt(transcript, today), 0.2)
	if err != nil {
		l.Error("Expense extraction call failed", zap.Error(err))
		return nil, err
	}

	parsed, err := ParseExpenseResponse(raw, today)
	if err != nil {
		l.Warn("Expense extraction returned unusable payload", zap.Error(err))
		return nil, err
	}

	l.Info("Voice expense parsed",
		zap.String("category", string(parsed.Category)),
		zap.Float64("amount", parsed.Amount),
	)
	return parsed, nil
}
