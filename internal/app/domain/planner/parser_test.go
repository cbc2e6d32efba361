package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyago/voyago/internal/app/models"
)

const validResponse = "```json\n" + `{
  "plan": {
    "title": "北京三日游",
    "destination": "北京",
    "startDate": "2026-09-01",
    "endDate": "2026-09-03",
    "days": 3,
    "budget": 3000,
    "travelerCount": 2,
    "status": "draft",
    "description": "经典路线"
  },
  "itinerary": [
    {
      "day": 1,
      "date": "2026-09-01",
      "title": "老城区",
      "activities": [
        {"time": "09:00-12:00", "type": "sightseeing", "name": "故宫",
         "address": "北京市东城区景山前街4号",
         "coordinates": {"latitude": 39.916, "longitude": 116.397},
         "cost": 60},
        {"time": "12:30-13:30", "type": "dining", "name": "午餐", "cost": 80}
      ],
      "accommodation": {"name": "胡同酒店", "cost": 400},
      "totalCost": 540
    }
  ]
}` + "\n```"

func TestParsePlanResponse_Valid(t *testing.T) {
	plan, err := ParsePlanResponse(validResponse)

	require.NoError(t, err)
	assert.Equal(t, "北京三日游", plan.Title)
	assert.Equal(t, "2026-09-01", plan.StartDate)
	assert.Equal(t, 2, plan.TravelerCount)
	assert.Equal(t, models.PlanStatusDraft, plan.Status)

	require.Len(t, plan.Itinerary, 1)
	day := plan.Itinerary[0]
	require.Len(t, day.Activities, 2)
	assert.Equal(t, models.ActivitySightseeing, day.Activities[0].Type)
	assert.Equal(t, 39.916, day.Activities[0].Coordinates.Latitude)
	assert.Equal(t, models.ActivityDining, day.Activities[1].Type)
	assert.Equal(t, 540.0, day.TotalCost)
}

func TestParsePlanResponse_SnakeCaseAliases(t *testing.T) {
	raw := `{
	  "plan": {"title": "t", "destination": "d", "start_date": "2026-09-01",
	           "end_date": "2026-09-02", "budget": 100, "traveler_count": 3},
	  "itinerary": [{"day": 1, "date": "2026-09-01",
	    "activities": [{"time": "09:00-10:00", "type": "activity", "name": "x", "cost": 10}],
	    "total_cost": 10}]
	}`

	plan, err := ParsePlanResponse(raw)

	require.NoError(t, err)
	assert.Equal(t, "2026-09-01", plan.StartDate)
	assert.Equal(t, "2026-09-02", plan.EndDate)
	assert.Equal(t, 3, plan.TravelerCount)
	assert.Equal(t, 10.0, plan.Itinerary[0].TotalCost)
}

func TestParsePlanResponse_FenceVariants(t *testing.T) {
	tests := []struct {
		name string
		wrap func(string) string
	}{
		{"no fence", func(s string) string { return s }},
		{"json fence", func(s string) string { return "```json\n" + s + "\n```" }},
		{"bare fence", func(s string) string { return "```\n" + s + "\n```" }},
		{"surrounding whitespace", func(s string) string { return "\n\n  ```json\n" + s + "\n```  \n" }},
	}

	body := `{"plan": {"title": "t", "destination": "d"},
	  "itinerary": [{"day": 1, "activities": []}]}`

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := ParsePlanResponse(tt.wrap(body))
			require.NoError(t, err)
			assert.Equal(t, "t", plan.Title)
		})
	}
}

func TestParsePlanResponse_Failures(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"empty", "", models.ErrParseRetry},
		{"prose only", "I'm sorry, I cannot plan this trip.", models.ErrParseRetry},
		{"truncated json", `{"plan": {"title": "t"`, models.ErrParseRetry},
		{"missing plan", `{"itinerary": [{"day": 1}]}`, models.ErrMalformedPlan},
		{"missing itinerary", `{"plan": {"title": "t"}}`, models.ErrMalformedPlan},
		{"empty itinerary", `{"plan": {"title": "t"}, "itinerary": []}`, models.ErrMalformedPlan},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePlanResponse(tt.raw)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParsePlanResponse_UnknownActivityType(t *testing.T) {
	raw := `{"plan": {"title": "t", "destination": "d"},
	  "itinerary": [{"day": 1, "activities": [
	    {"time": "09:00-10:00", "type": "spelunking", "name": "cave", "cost": 5}]}]}`

	plan, err := ParsePlanResponse(raw)

	require.NoError(t, err)
	assert.Equal(t, models.ActivityGeneric, plan.Itinerary[0].Activities[0].Type)
}

func TestParsePlanResponse_MissingTotalRecalculated(t *testing.T) {
	raw := `{"plan": {"title": "t", "destination": "d"},
	  "itinerary": [{"day": 1,
	    "activities": [{"time": "09:00-10:00", "type": "activity", "name": "x", "cost": 25}],
	    "accommodation": {"name": "inn", "cost": 100}}]}`

	plan, err := ParsePlanResponse(raw)

	require.NoError(t, err)
	assert.Equal(t, 125.0, plan.Itinerary[0].TotalCost)
}

func TestParsePlanResponse_InvalidStatusDefaultsToDraft(t *testing.T) {
	raw := `{"plan": {"title": "t", "destination": "d", "status": "amazing"},
	  "itinerary": [{"day": 1, "activities": []}]}`

	plan, err := ParsePlanResponse(raw)

	require.NoError(t, err)
	assert.Equal(t, models.PlanStatusDraft, plan.Status)
}
