package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voyago/voyago/internal/app/domain/expense"
	"github.com/voyago/voyago/internal/app/models"
)

// ExpenseHandler covers expense recording, aggregation and voice capture.
type ExpenseHandler struct {
	logger   *zap.Logger
	expenses expense.Service
}

func NewExpenseHandler(expenseSvc expense.Service, logger *zap.Logger) *ExpenseHandler {
	return &ExpenseHandler{logger: logger, expenses: expenseSvc}
}

type addExpenseRequest struct {
	Category    models.ExpenseCategory `json:"category" binding:"required"`
	Amount      float64                `json:"amount" binding:"required"`
	Description string                 `json:"description"`
	Date        string                 `json:"date"`
	ImageURL    string                 `json:"image_url"`
}

func (h *ExpenseHandler) Add(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	planID, ok := planIDParam(c)
	if !ok {
		return
	}

	var req addExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category and amount are required"})
		return
	}
	if !req.Category.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown expense category"})
		return
	}
	if req.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		return
	}

	created, err := h.expenses.Add(c.Request.Context(), userID, planID, models.Expense{
		Category:    req.Category,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        req.Date,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *ExpenseHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	planID, ok := planIDParam(c)
	if !ok {
		return
	}

	expenses, err := h.expenses.List(c.Request.Context(), userID, planID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expenses": expenses})
}

func (h *ExpenseHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	planID, ok := planIDParam(c)
	if !ok {
		return
	}
	expenseID, err := uuid.Parse(c.Param("expenseID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid expense id"})
		return
	}

	if err := h.expenses.Delete(c.Request.Context(), userID, planID, expenseID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Summary reports totals, category breakdown and budget insights.
func (h *ExpenseHandler) Summary(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	planID, ok := planIDParam(c)
	if !ok {
		return
	}

	summary, err := h.expenses.Summary(c.Request.Context(), userID, planID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Alerts returns just the budget alert and overspend insights, for the
// lightweight badge poll.
func (h *ExpenseHandler) Alerts(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	planID, ok := planIDParam(c)
	if !ok {
		return
	}

	summary, err := h.expenses.Summary(c.Request.Context(), userID, planID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"alert":    summary.Alert,
		"insights": summary.Insights,
	})
}

type parseExpenseRequest struct {
	Transcript string `json:"transcript" binding:"required"`
}

// Parse extracts a structured expense from a spoken note.
func (h *ExpenseHandler) Parse(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req parseExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "transcript is required"})
		return
	}

	parsed, err := h.expenses.ParseVoice(c.Request.Context(), userID, req.Transcript)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, parsed)
}
