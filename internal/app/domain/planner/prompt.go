package planner

import (
	"fmt"
	"strings"

	"github.com/voyago/voyago/internal/app/models"
)

// planSchema is the exact output contract embedded in every generation
// prompt. The model must return this and nothing else.
const planSchema = `{
  "plan": {
    "title": "trip title",
    "destination": "city",
    "startDate": "YYYY-MM-DD",
    "endDate": "YYYY-MM-DD",
    "days": 3,
    "budget": 3000,
    "travelerCount": 1,
    "status": "draft",
    "description": "one sentence summary"
  },
  "itinerary": [
    {
      "day": 1,
      "date": "YYYY-MM-DD",
      "title": "day theme",
      "activities": [
        {
          "time": "09:00-11:00",
          "type": "sightseeing|dining|activity|transport",
          "name": "place name",
          "location": "area",
          "address": "full street address",
          "coordinates": {"latitude": 0, "longitude": 0},
          "description": "what to do there",
          "cost": 0,
          "tips": "practical tip"
        }
      ],
      "accommodation": {"name": "", "address": "", "cost": 0, "tips": ""},
      "transportation": {"method": "", "cost": 0, "tips": ""},
      "meals": {
        "breakfast": {"location": "", "cost": 0, "recommendation": ""},
        "lunch": {"location": "", "cost": 0, "recommendation": ""},
        "dinner": {"location": "", "cost": 0, "recommendation": ""}
      },
      "totalCost": 0,
      "notes": ""
    }
  ]
}`

const budgetGuidance = `Budget allocation guidance (instructions only, do not echo):
- transportation 30-40% of budget
- accommodation 25-35%
- food 20-30%
- attraction tickets 15-20%
- keep a ~10% reserve; planned total should stay within 90% of the budget`

// BuildTripPrompt renders the structured-request generation prompt.
func BuildTripPrompt(req models.TripRequest) string {
	var b strings.Builder

	b.WriteString("You are a professional travel planner. Create a detailed, realistic travel plan.\n\n")
	fmt.Fprintf(&b, "Destination: %s\n", req.Destination)
	fmt.Fprintf(&b, "Dates: %s to %s (%d days)\n", req.StartDate, req.EndDate, req.Days())
	fmt.Fprintf(&b, "Travelers: %d\n", req.TravelerCount)
	if req.Budget > 0 {
		fmt.Fprintf(&b, "Total budget: %.0f\n", req.Budget)
	}
	if req.Preferences != "" {
		fmt.Fprintf(&b, "Preferences: %s\n", req.Preferences)
	}

	b.WriteString("\n")
	b.WriteString(budgetGuidance)
	b.WriteString("\n\n")
	writeOutputContract(&b)

	return b.String()
}

// BuildVoicePrompt renders the free-text generation prompt used for spoken
// requests. Missing details are inferred: 3-5 days, 1 traveler by default.
func BuildVoicePrompt(transcript string) string {
	var b strings.Builder

	b.WriteString("You are a professional travel planner. The user described a trip verbally:\n\n")
	fmt.Fprintf(&b, "\"%s\"\n\n", transcript)
	b.WriteString("Infer destination, dates, duration, budget and headcount from the description.\n")
	b.WriteString("When the description does not say, assume a 3-5 day trip for 1 traveler starting within the next month.\n\n")
	b.WriteString(budgetGuidance)
	b.WriteString("\n\n")
	writeOutputContract(&b)

	return b.String()
}

// BuildRegeneratePrompt re-issues a trip prompt with the user's feedback on
// the previous plan appended.
func BuildRegeneratePrompt(req models.TripRequest, feedback string) string {
	var b strings.Builder
	b.WriteString(BuildTripPrompt(req))
	b.WriteString("\n\nThe user was not satisfied with the previous plan. Their feedback:\n")
	fmt.Fprintf(&b, "\"%s\"\n", feedback)
	b.WriteString("Produce a revised plan that addresses the feedback.\n")
	return b.String()
}

func writeOutputContract(b *strings.Builder) {
	b.WriteString("Respond with ONLY a JSON document inside a ```json code fence, no prose before or after:\n")
	b.WriteString("```json\n")
	b.WriteString(planSchema)
	b.WriteString("\n```\n")
	b.WriteString("Every day of the trip must appear in the itinerary array. Leave coordinates as 0 when unknown.\n")
}
