package expense

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/voyago/voyago/internal/app/models"
)

// ExpensePrompt renders the extraction instruction for a spoken expense note.
func ExpensePrompt(transcript string, today time.Time) string {
	var b strings.Builder
	b.WriteString("Extract a single expense record from the following spoken note.\n\n")
	b.WriteString("Note: ")
	b.WriteString(transcript)
	b.WriteString("\n\nRespond with ONLY a JSON object inside a ```json code fence, no other text:\n")
	b.WriteString("```json\n")
	b.WriteString(`{"category": "transport|accommodation|food|attraction|shopping|other", "amount": 0, "description": "", "date": "YYYY-MM-DD"}`)
	b.WriteString("\n```\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- category must be exactly one of the six listed values\n")
	b.WriteString("- amount is the numeric amount spent, without currency symbols\n")
	b.WriteString("- description is a short summary of what the money was spent on\n")
	fmt.Fprintf(&b, "- if no date is mentioned, use today's date: %s\n", today.Format("2006-01-02"))
	return b.String()
}

// ParseExpenseResponse turns the model's reply into a validated ParsedExpense.
func ParseExpenseResponse(raw string, today time.Time) (*models.ParsedExpense, error) {
	cleaned := stripFences(raw)
	if cleaned == "" {
		return nil, models.ErrParseRetry
	}

	var parsed models.ParsedExpense
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrParseRetry, err)
	}

	if !parsed.Category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", models.ErrMalformedPlan, parsed.Category)
	}
	if parsed.Amount < 0 {
		return nil, fmt.Errorf("%w: negative amount", models.ErrMalformedPlan)
	}
	if parsed.Date == "" {
		parsed.Date = today.Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", parsed.Date); err != nil {
		parsed.Date = today.Format("2006-01-02")
	}

	return &parsed, nil
}

func stripFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}
