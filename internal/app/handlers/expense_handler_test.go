package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/voyago/voyago/internal/app/models"
)

type MockExpenseService struct {
	mock.Mock
}

func (m *MockExpenseService) Add(ctx context.Context, userID, planID uuid.UUID, e models.Expense) (*models.Expense, error) {
	args := m.Called(ctx, userID, planID, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Expense), args.Error(1)
}

func (m *MockExpenseService) List(ctx context.Context, userID, planID uuid.UUID) ([]models.Expense, error) {
	args := m.Called(ctx, userID, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Expense), args.Error(1)
}

func (m *MockExpenseService) Delete(ctx context.Context, userID, planID, expenseID uuid.UUID) error {
	args := m.Called(ctx, userID, planID, expenseID)
	return args.Error(0)
}

func (m *MockExpenseService) Summary(ctx context.Context, userID, planID uuid.UUID) (*models.ExpenseSummary, error) {
	args := m.Called(ctx, userID, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ExpenseSummary), args.Error(1)
}

func (m *MockExpenseService) ParseVoice(ctx context.Context, userID uuid.UUID, transcript string) (*models.ParsedExpense, error) {
	args := m.Called(ctx, userID, transcript)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ParsedExpense), args.Error(1)
}

func expenseTestRouter(userID uuid.UUID, h *ExpenseHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api", asUser(userID))
	api.POST("/expenses/parse", h.Parse)
	api.POST("/plans/:id/expenses", h.Add)
	api.GET("/plans/:id/expenses/summary", h.Summary)
	api.GET("/plans/:id/expenses/alerts", h.Alerts)
	return r
}

func TestAddExpense_RejectsUnknownCategory(t *testing.T) {
	h := NewExpenseHandler(new(MockExpenseService), zap.NewNop())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/plans/"+uuid.NewString()+"/expenses",
		bytes.NewBufferString(`{"category":"gambling","amount":100}`))
	req.Header.Set("Content-Type", "application/json")
	expenseTestRouter(uuid.New(), h).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddExpense_RejectsNonPositiveAmount(t *testing.T) {
	h := NewExpenseHandler(new(MockExpenseService), zap.NewNop())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/plans/"+uuid.NewString()+"/expenses",
		bytes.NewBufferString(`{"category":"food","amount":-5}`))
	req.Header.Set("Content-Type", "application/json")
	expenseTestRouter(uuid.New(), h).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddExpense_Created(t *testing.T) {
	userID := uuid.New()
	planID := uuid.New()
	svc := new(MockExpenseService)
	svc.On("Add", mock.Anything, userID, planID, mock.MatchedBy(func(e models.Expense) bool {
		return e.Category == models.ExpenseFood && e.Amount == 68
	})).Return(&models.Expense{ID: uuid.New(), Category: models.ExpenseFood, Amount: 68}, nil)

	h := NewExpenseHandler(svc, zap.NewNop())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/plans/"+planID.String()+"/expenses",
		bytes.NewBufferString(`{"category":"food","amount":68,"description":"roast duck"}`))
	req.Header.Set("Content-Type", "application/json")
	expenseTestRouter(userID, h).ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestAddExpense_CarriesImageURL(t *testing.T) {
	userID := uuid.New()
	planID := uuid.New()
	svc := new(MockExpenseService)
	svc.On("Add", mock.Anything, userID, planID, mock.MatchedBy(func(e models.Expense) bool {
		return e.ImageURL == "https://img.example.com/receipt.jpg"
	})).Return(&models.Expense{
		ID:       uuid.New(),
		Category: models.ExpenseFood,
		Amount:   42,
		ImageURL: "https://img.example.com/receipt.jpg",
	}, nil)

	h := NewExpenseHandler(svc, zap.NewNop())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/plans/"+planID.String()+"/expenses",
		bytes.NewBufferString(`{"category":"food","amount":42,"image_url":"https://img.example.com/receipt.jpg"}`))
	req.Header.Set("Content-Type", "application/json")
	expenseTestRouter(userID, h).ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "receipt.jpg")
	svc.AssertExpectations(t)
}

func TestSummary_ReturnsAggregates(t *testing.T) {
	userID := uuid.New()
	planID := uuid.New()
	svc := new(MockExpenseService)
	svc.On("Summary", mock.Anything, userID, planID).Return(&models.ExpenseSummary{
		Total:        1200,
		Budget:       5000,
		UsagePercent: 24,
		Alert:        models.BudgetAlert{Severity: models.AlertOK, UsagePercent: 24},
	}, nil)

	h := NewExpenseHandler(svc, zap.NewNop())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/plans/"+planID.String()+"/expenses/summary", nil)
	expenseTestRouter(userID, h).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"usage_percent":24`)
}

func TestAlerts_StripsBreakdown(t *testing.T) {
	userID := uuid.New()
	planID := uuid.New()
	svc := new(MockExpenseService)
	svc.On("Summary", mock.Anything, userID, planID).Return(&models.ExpenseSummary{
		Total:  4900,
		Budget: 5000,
		ByCategory: map[models.ExpenseCategory]float64{
			models.ExpenseFood: 4900,
		},
		Alert: models.BudgetAlert{Severity: models.AlertWarning, Message: "budget nearly used"},
	}, nil)

	h := NewExpenseHandler(svc, zap.NewNop())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/plans/"+planID.String()+"/expenses/alerts", nil)
	expenseTestRouter(userID, h).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "warning")
	assert.NotContains(t, w.Body.String(), "by_category")
}

func TestParseExpense_ReturnsStructured(t *testing.T) {
	userID := uuid.New()
	svc := new(MockExpenseService)
	svc.On("ParseVoice", mock.Anything, userID, "午饭花了五十块").Return(&models.ParsedExpense{
		Category: models.ExpenseFood,
		Amount:   50,
		Date:     "2026-08-31",
	}, nil)

	h := NewExpenseHandler(svc, zap.NewNop())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/expenses/parse",
		bytes.NewBufferString(`{"transcript":"午饭花了五十块"}`))
	req.Header.Set("Content-Type", "application/json")
	expenseTestRouter(userID, h).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"amount":50`)
	svc.AssertExpectations(t)
}

func TestParseExpense_UnusableReplyMapsTo422(t *testing.T) {
	userID := uuid.New()
	svc := new(MockExpenseService)
	svc.On("ParseVoice", mock.Anything, userID, "嗯嗯嗯").Return(nil, models.ErrParseRetry)

	h := NewExpenseHandler(svc, zap.NewNop())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/expenses/parse",
		bytes.NewBufferString(`{"transcript":"嗯嗯嗯"}`))
	req.Header.Set("Content-Type", "application/json")
	expenseTestRouter(userID, h).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
