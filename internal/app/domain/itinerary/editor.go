package itinerary

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voyago/voyago/internal/app/models"
)

// Persister stores the full day set of a plan in one operation.
type Persister interface {
	SaveItinerary(ctx context.Context, userID, planID uuid.UUID, days []models.ItineraryDay) error
}

// Editor holds a mutable working copy of a plan's itinerary. All edits apply
// to the copy; nothing reaches storage until Save. A failed Save keeps the
// working copy so the user can retry.
type Editor struct {
	logger  *zap.Logger
	store   Persister
	userID  uuid.UUID
	planID  uuid.UUID
	clean   []models.ItineraryDay
	working []models.ItineraryDay
}

func NewEditor(userID, planID uuid.UUID, days []models.ItineraryDay, store Persister, logger *zap.Logger) *Editor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Editor{
		logger:  logger,
		store:   store,
		userID:  userID,
		planID:  planID,
		clean:   cloneDays(days),
		working: cloneDays(days),
	}
}

// Days returns the current working copy.
func (e *Editor) Days() []models.ItineraryDay {
	return e.working
}

// Dirty reports whether the working copy has unsaved edits.
func (e *Editor) Dirty() bool {
	return len(e.working) != len(e.clean) || !daysEqual(e.working, e.clean)
}

// AddActivity appends an activity to a day and restores the day's time order.
func (e *Editor) AddActivity(day int, a models.Activity) error {
	if err := validateActivity(a); err != nil {
		return err
	}
	d := e.findDay(day)
	if d == nil {
		return fmt.Errorf("day %d: %w", day, models.ErrNotFound)
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	d.Activities = append(d.Activities, a)
	sortByStartTime(d.Activities)
	d.RecalculateTotal()
	return nil
}

// EditActivity replaces the activity at position idx of sourceDay. When
// targetDay differs, the activity moves: spliced out of the source day and
// appended to the target day, which is then re-sorted.
func (e *Editor) EditActivity(sourceDay, idx, targetDay int, a models.Activity) error {
	if err := validateActivity(a); err != nil {
		return err
	}
	src := e.findDay(sourceDay)
	if src == nil {
		return fmt.Errorf("day %d: %w", sourceDay, models.ErrNotFound)
	}
	if idx < 0 || idx >= len(src.Activities) {
		return fmt.Errorf("activity index %d out of range: %w", idx, models.ErrBadRequest)
	}
	if a.ID == "" {
		a.ID = src.Activities[idx].ID
	}

	if targetDay == sourceDay {
		src.Activities[idx] = a
		sortByStartTime(src.Activities)
		src.RecalculateTotal()
		return nil
	}

	dst := e.findDay(targetDay)
	if dst == nil {
		return fmt.Errorf("day %d: %w", targetDay, models.ErrNotFound)
	}

	src.Activities = append(src.Activities[:idx], src.Activities[idx+1:]...)
	dst.Activities = append(dst.Activities, a)
	sortByStartTime(dst.Activities)
	src.RecalculateTotal()
	dst.RecalculateTotal()
	return nil
}

// DeleteActivity removes the activity at position idx. Remaining order is
// untouched.
func (e *Editor) DeleteActivity(day, idx int) error {
	d := e.findDay(day)
	if d == nil {
		return fmt.Errorf("day %d: %w", day, models.ErrNotFound)
	}
	if idx < 0 || idx >= len(d.Activities) {
		return fmt.Errorf("activity index %d out of range: %w", idx, models.ErrBadRequest)
	}
	d.Activities = append(d.Activities[:idx], d.Activities[idx+1:]...)
	d.RecalculateTotal()
	return nil
}

// Save hands the whole working copy to storage. On success it becomes the new
// clean state; on failure the working copy survives untouched.
func (e *Editor) Save(ctx context.Context) error {
	l := e.logger.With(zap.String("method", "Save"), zap.String("planID", e.planID.String()))

	if err := e.store.SaveItinerary(ctx, e.userID, e.planID, e.working); err != nil {
		l.Error("Itinerary save failed, keeping working copy", zap.Error(err))
		return err
	}

	e.clean = cloneDays(e.working)
	l.Info("Itinerary saved", zap.Int("days", len(e.working)))
	return nil
}

func (e *Editor) findDay(day int) *models.ItineraryDay {
	for i := range e.working {
		if e.working[i].Day == day {
			return &e.working[i]
		}
	}
	return nil
}

func validateActivity(a models.Activity) error {
	if a.Name == "" {
		return fmt.Errorf("activity name cannot be empty: %w", models.ErrValidation)
	}
	start, end, ok := splitTimeRange(a.Time)
	if !ok {
		return fmt.Errorf("activity time %q is not HH:MM-HH:MM: %w", a.Time, models.ErrValidation)
	}
	if end < start {
		return fmt.Errorf("activity ends before it starts: %w", models.ErrValidation)
	}
	return nil
}

func splitTimeRange(t string) (start, end string, ok bool) {
	parts := strings.SplitN(t, "-", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	start = strings.TrimSpace(parts[0])
	end = strings.TrimSpace(parts[1])
	if len(start) != 5 || len(end) != 5 || start[2] != ':' || end[2] != ':' {
		return "", "", false
	}
	return start, end, true
}

// sortByStartTime orders activities by their "HH:MM" start token. The
// zero-padded format makes plain string comparison equivalent to time order.
func sortByStartTime(activities []models.Activity) {
	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].StartToken() < activities[j].StartToken()
	})
}

func cloneDays(days []models.ItineraryDay) []models.ItineraryDay {
	out := make([]models.ItineraryDay, len(days))
	for i, d := range days {
		c := d
		c.Activities = append([]models.Activity(nil), d.Activities...)
		if d.Accommodation != nil {
			a := *d.Accommodation
			c.Accommodation = &a
		}
		if d.Transportation != nil {
			tr := *d.Transportation
			c.Transportation = &tr
		}
		if d.Meals != nil {
			m := models.Meals{}
			if d.Meals.Breakfast != nil {
				b := *d.Meals.Breakfast
				m.Breakfast = &b
			}
			if d.Meals.Lunch != nil {
				lu := *d.Meals.Lunch
				m.Lunch = &lu
			}
			if d.Meals.Dinner != nil {
				di := *d.Meals.Dinner
				m.Dinner = &di
			}
			c.Meals = &m
		}
		out[i] = c
	}
	return out
}

func daysEqual(a, b []models.ItineraryDay) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Day != b[i].Day || a[i].TotalCost != b[i].TotalCost ||
			len(a[i].Activities) != len(b[i].Activities) {
			return false
		}
		for j := range a[i].Activities {
			if a[i].Activities[j] != b[i].Activities[j] {
				return false
			}
		}
	}
	return true
}
