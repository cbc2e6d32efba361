package expense

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/voyago/voyago/internal/app/models"
)

// idealShares is the reference spending split used for category insights.
var idealShares = map[models.ExpenseCategory]float64{
	models.ExpenseTransport:     0.20,
	models.ExpenseAccommodation: 0.30,
	models.ExpenseFood:          0.25,
	models.ExpenseAttraction:    0.15,
	models.ExpenseShopping:      0.08,
	models.ExpenseOther:         0.02,
}

var categoryLabels = map[models.ExpenseCategory]string{
	models.ExpenseTransport:     "transport",
	models.ExpenseAccommodation: "accommodation",
	models.ExpenseFood:          "food",
	models.ExpenseAttraction:    "attractions",
	models.ExpenseShopping:      "shopping",
	models.ExpenseOther:         "other spending",
}

// Summarize derives the full spending picture for a plan. Pure; callers pass
// the recorded expenses and the plan budget.
func Summarize(expenses []models.Expense, budget float64) models.ExpenseSummary {
	byCategory := make(map[models.ExpenseCategory]float64, len(models.ExpenseCategories))
	for _, c := range models.ExpenseCategories {
		byCategory[c] = 0
	}
	for _, e := range expenses {
		c := e.Category
		if !c.Valid() {
			c = models.ExpenseOther
		}
		byCategory[c] += e.Amount
	}

	total := lo.SumBy(expenses, func(e models.Expense) float64 { return e.Amount })

	usage := 0.0
	if budget > 0 {
		usage = total / budget * 100
	}

	return models.ExpenseSummary{
		Total:        total,
		Budget:       budget,
		UsagePercent: usage,
		ByCategory:   byCategory,
		Alert:        alertFor(usage),
		Insights:     insights(byCategory, total),
	}
}

func alertFor(usagePercent float64) models.BudgetAlert {
	a := models.BudgetAlert{UsagePercent: usagePercent}
	switch {
	case usagePercent < 50:
		a.Severity = models.AlertOK
		a.Message = "Spending is well within budget"
	case usagePercent < 70:
		a.Severity = models.AlertInfo
		a.Message = "Over half the budget has been used"
	case usagePercent < 90:
		a.Severity = models.AlertNotice
		a.Message = "Budget usage is getting high, keep an eye on spending"
	case usagePercent < 100:
		a.Severity = models.AlertWarning
		a.Message = "Budget is nearly exhausted"
	default:
		a.Severity = models.AlertExceeded
		a.Message = "Budget exceeded"
	}
	return a
}

// insights flags categories whose share of what was actually spent exceeds
// the ideal split. With no spend there is nothing to flag.
func insights(byCategory map[models.ExpenseCategory]float64, total float64) []models.CategoryInsight {
	if total <= 0 {
		return nil
	}

	var out []models.CategoryInsight
	for _, c := range models.ExpenseCategories {
		actual := byCategory[c] / total
		ideal := idealShares[c]
		if actual <= ideal {
			continue
		}
		out = append(out, models.CategoryInsight{
			Category:    c,
			ActualShare: actual,
			IdealShare:  ideal,
			Message: fmt.Sprintf("Spending on %s is %.0f%% of the total, above the suggested %.0f%%",
				categoryLabels[c], actual*100, ideal*100),
		})
	}
	return out
}
