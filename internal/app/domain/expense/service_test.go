package expense

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/voyago/voyago/internal/app/models"
)

type MockExpenseRepo struct {
	mock.Mock
}

func (m *MockExpenseRepo) Create(ctx context.Context, e models.Expense) (*models.Expense, error) {
	args := m.Called(ctx, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Expense), args.Error(1)
}

func (m *MockExpenseRepo) ListByPlan(ctx context.Context, planID uuid.UUID) ([]models.Expense, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Expense), args.Error(1)
}

func (m *MockExpenseRepo) Delete(ctx context.Context, planID, expenseID uuid.UUID) error {
	args := m.Called(ctx, planID, expenseID)
	return args.Error(0)
}

type MockPlanSource struct {
	mock.Mock
}

func (m *MockPlanSource) GetPlan(ctx context.Context, userID, planID uuid.UUID) (*models.TravelPlan, error) {
	args := m.Called(ctx, userID, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TravelPlan), args.Error(1)
}

type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, userID uuid.UUID, prompt string, temperature float64) (string, error) {
	args := m.Called(ctx, userID, prompt, temperature)
	return args.String(0), args.Error(1)
}

func TestSummary(t *testing.T) {
	userID := uuid.New()
	planID := uuid.New()

	tests := []struct {
		name      string
		setupMock func(repo *MockExpenseRepo, plans *MockPlanSource)
		wantErr   error
		check     func(t *testing.T, s *models.ExpenseSummary)
	}{
		{
			name: "aggregates against plan budget",
			setupMock: func(repo *MockExpenseRepo, plans *MockPlanSource) {
				plans.On("GetPlan", mock.Anything, userID, planID).
					Return(&models.TravelPlan{ID: planID, Budget: 2000}, nil)
				repo.On("ListByPlan", mock.Anything, planID).
					Return([]models.Expense{{Category: models.ExpenseFood, Amount: 500}}, nil)
			},
			check: func(t *testing.T, s *models.ExpenseSummary) {
				assert.Equal(t, 500.0, s.Total)
				assert.InDelta(t, 25.0, s.UsagePercent, 0.001)
			},
		},
		{
			name: "plan not found",
			setupMock: func(repo *MockExpenseRepo, plans *MockPlanSource) {
				plans.On("GetPlan", mock.Anything, userID, planID).
					Return(nil, models.ErrNotFound)
			},
			wantErr: models.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockExpenseRepo)
			plans := new(MockPlanSource)
			tt.setupMock(repo, plans)

			svc := NewServiceImpl(repo, plans, new(MockCompleter), zap.NewNop())
			got, err := svc.Summary(context.Background(), userID, planID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, got)
			repo.AssertExpectations(t)
			plans.AssertExpectations(t)
		})
	}
}

func TestParseVoice(t *testing.T) {
	userID := uuid.New()
	fixedNow := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		reply    string
		replyErr error
		wantErr  error
		wantDate string
		wantCat  models.ExpenseCategory
	}{
		{
			name:     "fenced payload with explicit date",
			reply:    "```json\n{\"category\":\"food\",\"amount\":45,\"description\":\"lunch\",\"date\":\"2026-08-30\"}\n```",
			wantCat:  models.ExpenseFood,
			wantDate: "2026-08-30",
		},
		{
			name:     "missing date defaults to today",
			reply:    `{"category":"transport","amount":12,"description":"taxi"}`,
			wantCat:  models.ExpenseTransport,
			wantDate: "2026-08-31",
		},
		{
			name:    "invalid category",
			reply:   `{"category":"bribes","amount":12}`,
			wantErr: models.ErrMalformedPlan,
		},
		{
			name:    "not json",
			reply:   "sorry, I could not help with that",
			wantErr: models.ErrParseRetry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := new(MockCompleter)
			llm.On("Complete", mock.Anything, userID, mock.Anything, 0.2).
				Return(tt.reply, tt.replyErr)

			svc := NewServiceImpl(new(MockExpenseRepo), new(MockPlanSource), llm, zap.NewNop())
			svc.now = func() time.Time { return fixedNow }

			got, err := svc.ParseVoice(context.Background(), userID, "spent money")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCat, got.Category)
			assert.Equal(t, tt.wantDate, got.Date)
		})
	}
}

func TestParseVoice_EmptyTranscript(t *testing.T) {
	svc := NewServiceImpl(new(MockExpenseRepo), new(MockPlanSource), new(MockCompleter), zap.NewNop())
	_, err := svc.ParseVoice(context.Background(), uuid.New(), "")
	assert.ErrorIs(t, err, models.ErrBadRequest)
}
