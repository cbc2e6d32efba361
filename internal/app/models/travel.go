package models

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PlanStatus is the lifecycle state of a travel plan. InProgress exists for
// rows written by older clients and is never produced by this service.
type PlanStatus string

const (
	PlanStatusDraft      PlanStatus = "draft"
	PlanStatusConfirmed  PlanStatus = "confirmed"
	PlanStatusInProgress PlanStatus = "in_progress"
	PlanStatusCompleted  PlanStatus = "completed"
	PlanStatusCancelled  PlanStatus = "cancelled"
)

func (s PlanStatus) Valid() bool {
	switch s {
	case PlanStatusDraft, PlanStatusConfirmed, PlanStatusInProgress,
		PlanStatusCompleted, PlanStatusCancelled:
		return true
	}
	return false
}

// Settable reports whether clients may write this status. InProgress is
// read-only: existing rows keep it, updates cannot set it.
func (s PlanStatus) Settable() bool {
	return s.Valid() && s != PlanStatusInProgress
}

// ActivityType is the canonical activity vocabulary.
type ActivityType string

const (
	ActivitySightseeing ActivityType = "sightseeing"
	ActivityDining      ActivityType = "dining"
	ActivityGeneric     ActivityType = "activity"
	ActivityTransport   ActivityType = "transport"
)

// MarkerKind maps the activity vocabulary onto the narrower icon set the map
// surface understands.
func (t ActivityType) MarkerKind() string {
	switch t {
	case ActivityDining:
		return "meal"
	case ActivityTransport:
		return "transportation"
	default:
		return "activity"
	}
}

// Coordinate is a WGS84-ish point. The zero value (0,0) is the sentinel for
// "lookup failed or not yet resolved" and is never treated as a real location.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the coordinate is a usable point: finite, inside
// latitude/longitude bounds and not the (0,0) sentinel.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Latitude) || math.IsInf(c.Latitude, 0) ||
		math.IsNaN(c.Longitude) || math.IsInf(c.Longitude, 0) {
		return false
	}
	if c.Latitude == 0 && c.Longitude == 0 {
		return false
	}
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// TripRequest is the structured planning input.
type TripRequest struct {
	Destination   string  `json:"destination" binding:"required"`
	StartDate     string  `json:"start_date" binding:"required"`
	EndDate       string  `json:"end_date" binding:"required"`
	Budget        float64 `json:"budget"`
	TravelerCount int     `json:"traveler_count"`
	Preferences   string  `json:"preferences"`
}

// Days returns the inclusive day count of the request's date range, or 0 when
// the dates do not parse or are inverted.
func (r TripRequest) Days() int {
	start, err := time.Parse("2006-01-02", r.StartDate)
	if err != nil {
		return 0
	}
	end, err := time.Parse("2006-01-02", r.EndDate)
	if err != nil {
		return 0
	}
	d := int(end.Sub(start).Hours()/24) + 1
	if d < 1 {
		return 0
	}
	return d
}

type Activity struct {
	ID          string       `json:"id,omitempty"`
	Time        string       `json:"time"` // "HH:MM-HH:MM"
	Type        ActivityType `json:"type"`
	Name        string       `json:"name"`
	Location    string       `json:"location,omitempty"`
	Address     string       `json:"address,omitempty"`
	Coordinates Coordinate   `json:"coordinates"`
	Description string       `json:"description,omitempty"`
	Cost        float64      `json:"cost"`
	Tips        string       `json:"tips,omitempty"`
}

// StartToken returns the "HH:MM" start portion of the time range. Activities
// within a day sort lexicographically by this token.
func (a Activity) StartToken() string {
	if i := strings.Index(a.Time, "-"); i >= 0 {
		return strings.TrimSpace(a.Time[:i])
	}
	return strings.TrimSpace(a.Time)
}

type Accommodation struct {
	Name    string  `json:"name"`
	Address string  `json:"address,omitempty"`
	Cost    float64 `json:"cost"`
	Tips    string  `json:"tips,omitempty"`
}

type Transportation struct {
	Method string  `json:"method"`
	Cost   float64 `json:"cost"`
	Tips   string  `json:"tips,omitempty"`
}

type Meal struct {
	Location       string  `json:"location"`
	Cost           float64 `json:"cost"`
	Recommendation string  `json:"recommendation,omitempty"`
}

type Meals struct {
	Breakfast *Meal `json:"breakfast,omitempty"`
	Lunch     *Meal `json:"lunch,omitempty"`
	Dinner    *Meal `json:"dinner,omitempty"`
}

type ItineraryDay struct {
	Day            int             `json:"day"` // 1-based, unique per plan
	Date           string          `json:"date"`
	Title          string          `json:"title"`
	Activities     []Activity      `json:"activities"`
	Accommodation  *Accommodation  `json:"accommodation,omitempty"`
	Transportation *Transportation `json:"transportation,omitempty"`
	Meals          *Meals          `json:"meals,omitempty"`
	TotalCost      float64         `json:"total_cost"`
	Notes          string          `json:"notes,omitempty"`
}

// RecalculateTotal recomputes the day's cost from its components.
func (d *ItineraryDay) RecalculateTotal() {
	total := 0.0
	for _, a := range d.Activities {
		total += a.Cost
	}
	if d.Accommodation != nil {
		total += d.Accommodation.Cost
	}
	if d.Transportation != nil {
		total += d.Transportation.Cost
	}
	if d.Meals != nil {
		for _, m := range []*Meal{d.Meals.Breakfast, d.Meals.Lunch, d.Meals.Dinner} {
			if m != nil {
				total += m.Cost
			}
		}
	}
	d.TotalCost = total
}

type TravelPlan struct {
	ID            uuid.UUID      `json:"id"`
	UserID        uuid.UUID      `json:"user_id"`
	Title         string         `json:"title"`
	Destination   string         `json:"destination"`
	StartDate     string         `json:"start_date"`
	EndDate       string         `json:"end_date"`
	Days          int            `json:"days"`
	Budget        float64        `json:"budget"`
	TravelerCount int            `json:"traveler_count"`
	Status        PlanStatus     `json:"status"`
	Description   string         `json:"description,omitempty"`
	Itinerary     []ItineraryDay `json:"itinerary,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
