package models

import (
	"time"

	"github.com/google/uuid"
)

// ExpenseCategory is the fixed six-way spending vocabulary.
type ExpenseCategory string

const (
	ExpenseTransport     ExpenseCategory = "transport"
	ExpenseAccommodation ExpenseCategory = "accommodation"
	ExpenseFood          ExpenseCategory = "food"
	ExpenseAttraction    ExpenseCategory = "attraction"
	ExpenseShopping      ExpenseCategory = "shopping"
	ExpenseOther         ExpenseCategory = "other"
)

// ExpenseCategories lists every category in display order.
var ExpenseCategories = []ExpenseCategory{
	ExpenseTransport,
	ExpenseAccommodation,
	ExpenseFood,
	ExpenseAttraction,
	ExpenseShopping,
	ExpenseOther,
}

func (c ExpenseCategory) Valid() bool {
	switch c {
	case ExpenseTransport, ExpenseAccommodation, ExpenseFood,
		ExpenseAttraction, ExpenseShopping, ExpenseOther:
		return true
	}
	return false
}

type Expense struct {
	ID          uuid.UUID       `json:"id"`
	PlanID      uuid.UUID       `json:"plan_id"`
	Category    ExpenseCategory `json:"category"`
	Amount      float64         `json:"amount"`
	Description string          `json:"description,omitempty"`
	Date        string          `json:"date"` // "2006-01-02"
	ImageURL    string          `json:"image_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ParsedExpense is the result of extracting an expense from a voice
// transcript, before it becomes a stored Expense.
type ParsedExpense struct {
	Category    ExpenseCategory `json:"category"`
	Amount      float64         `json:"amount"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
}

// AlertSeverity grades budget consumption.
type AlertSeverity string

const (
	AlertOK       AlertSeverity = "ok"
	AlertInfo     AlertSeverity = "info"
	AlertNotice   AlertSeverity = "notice"
	AlertWarning  AlertSeverity = "warning"
	AlertExceeded AlertSeverity = "exceeded"
)

type BudgetAlert struct {
	Severity     AlertSeverity `json:"severity"`
	Message      string        `json:"message"`
	UsagePercent float64       `json:"usage_percent"`
}

// CategoryInsight flags a category whose share of actual spend exceeds its
// ideal share.
type CategoryInsight struct {
	Category    ExpenseCategory `json:"category"`
	ActualShare float64         `json:"actual_share"`
	IdealShare  float64         `json:"ideal_share"`
	Message     string          `json:"message"`
}

type ExpenseSummary struct {
	Total        float64                     `json:"total"`
	Budget       float64                     `json:"budget"`
	UsagePercent float64                     `json:"usage_percent"`
	ByCategory   map[ExpenseCategory]float64 `json:"by_category"`
	Alert        BudgetAlert                 `json:"alert"`
	Insights     []CategoryInsight           `json:"insights"`
}
