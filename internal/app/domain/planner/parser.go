package planner

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/voyago/voyago/internal/app/models"
)

// Wire types accept both the camelCase the prompt asks for and the
// snake_case some models emit anyway. Alias handling stops here; everything
// past the parser is the canonical model.

type wireCoordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
}

func (w wireCoordinate) canonical() models.Coordinate {
	if w.Latitude != 0 || w.Longitude != 0 {
		return models.Coordinate{Latitude: w.Latitude, Longitude: w.Longitude}
	}
	return models.Coordinate{Latitude: w.Lat, Longitude: w.Lng}
}

type wirePlanHeader struct {
	Title        string  `json:"title"`
	Destination  string  `json:"destination"`
	StartDate    string  `json:"startDate"`
	StartDateAlt string  `json:"start_date"`
	EndDate      string  `json:"endDate"`
	EndDateAlt   string  `json:"end_date"`
	Days         int     `json:"days"`
	Budget       float64 `json:"budget"`
	Travelers    int     `json:"travelerCount"`
	TravelersAlt int     `json:"traveler_count"`
	Status       string  `json:"status"`
	Description  string  `json:"description"`
}

type wireActivity struct {
	Time        string         `json:"time"`
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Location    string         `json:"location"`
	Address     string         `json:"address"`
	Coordinates wireCoordinate `json:"coordinates"`
	Description string         `json:"description"`
	Cost        float64        `json:"cost"`
	Tips        string         `json:"tips"`
}

type wireDay struct {
	Day            int                    `json:"day"`
	Date           string                 `json:"date"`
	Title          string                 `json:"title"`
	Activities     []wireActivity         `json:"activities"`
	Accommodation  *models.Accommodation  `json:"accommodation"`
	Transportation *models.Transportation `json:"transportation"`
	Meals          *models.Meals          `json:"meals"`
	TotalCost      float64                `json:"totalCost"`
	TotalCostAlt   float64                `json:"total_cost"`
	Notes          string                 `json:"notes"`
}

type wireResponse struct {
	Plan      *wirePlanHeader `json:"plan"`
	Itinerary []wireDay       `json:"itinerary"`
}

// ParsePlanResponse turns the model's reply into a plan plus itinerary.
// Both the plan header and a non-empty itinerary are mandatory; a reply
// missing either is malformed, never defaulted.
func ParsePlanResponse(raw string) (*models.TravelPlan, error) {
	cleaned := cleanJSONResponse(raw)
	if cleaned == "" {
		return nil, models.ErrParseRetry
	}

	var resp wireResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrParseRetry, err)
	}

	if resp.Plan == nil {
		return nil, fmt.Errorf("%w: missing plan header", models.ErrMalformedPlan)
	}
	if len(resp.Itinerary) == 0 {
		return nil, fmt.Errorf("%w: empty itinerary", models.ErrMalformedPlan)
	}

	h := resp.Plan
	plan := &models.TravelPlan{
		Title:         h.Title,
		Destination:   h.Destination,
		StartDate:     firstNonEmpty(h.StartDate, h.StartDateAlt),
		EndDate:       firstNonEmpty(h.EndDate, h.EndDateAlt),
		Days:          h.Days,
		Budget:        h.Budget,
		TravelerCount: firstPositive(h.Travelers, h.TravelersAlt),
		Status:        models.PlanStatus(h.Status),
		Description:   h.Description,
	}
	if !plan.Status.Valid() {
		plan.Status = models.PlanStatusDraft
	}
	if plan.TravelerCount == 0 {
		plan.TravelerCount = 1
	}

	for _, wd := range resp.Itinerary {
		day := models.ItineraryDay{
			Day:            wd.Day,
			Date:           wd.Date,
			Title:          wd.Title,
			Accommodation:  wd.Accommodation,
			Transportation: wd.Transportation,
			Meals:          wd.Meals,
			Notes:          wd.Notes,
		}
		for _, wa := range wd.Activities {
			day.Activities = append(day.Activities, models.Activity{
				Time:        wa.Time,
				Type:        canonicalType(wa.Type),
				Name:        wa.Name,
				Location:    wa.Location,
				Address:     wa.Address,
				Coordinates: wa.Coordinates.canonical(),
				Description: wa.Description,
				Cost:        wa.Cost,
				Tips:        wa.Tips,
			})
		}
		if wd.TotalCost > 0 {
			day.TotalCost = wd.TotalCost
		} else if wd.TotalCostAlt > 0 {
			day.TotalCost = wd.TotalCostAlt
		} else {
			day.RecalculateTotal()
		}
		plan.Itinerary = append(plan.Itinerary, day)
	}

	if plan.Days == 0 {
		plan.Days = len(plan.Itinerary)
	}

	return plan, nil
}

func cleanJSONResponse(response string) string {
	cleaned := strings.TrimSpace(response)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}

func canonicalType(t string) models.ActivityType {
	switch models.ActivityType(strings.ToLower(strings.TrimSpace(t))) {
	case models.ActivitySightseeing:
		return models.ActivitySightseeing
	case models.ActivityDining:
		return models.ActivityDining
	case models.ActivityTransport:
		return models.ActivityTransport
	default:
		return models.ActivityGeneric
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
