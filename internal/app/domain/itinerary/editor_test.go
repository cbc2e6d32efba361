package itinerary

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/voyago/voyago/internal/app/models"
)

type MockPersister struct {
	mock.Mock
}

func (m *MockPersister) SaveItinerary(ctx context.Context, userID, planID uuid.UUID, days []models.ItineraryDay) error {
	args := m.Called(ctx, userID, planID, days)
	return args.Error(0)
}

func act(name, timeRange string, cost float64) models.Activity {
	return models.Activity{
		ID:   uuid.NewString(),
		Name: name,
		Time: timeRange,
		Type: models.ActivitySightseeing,
		Cost: cost,
	}
}

func twoDayPlan() []models.ItineraryDay {
	return []models.ItineraryDay{
		{Day: 1, Date: "2026-09-01", Activities: []models.Activity{
			act("Forbidden City", "09:00-12:00", 60),
			act("Hutong walk", "14:00-16:00", 0),
		}},
		{Day: 2, Date: "2026-09-02", Activities: []models.Activity{
			act("Great Wall", "08:00-15:00", 120),
		}},
	}
}

func newTestEditor(t *testing.T, store Persister) *Editor {
	t.Helper()
	return NewEditor(uuid.New(), uuid.New(), twoDayPlan(), store, zap.NewNop())
}

func TestAddActivity_KeepsTimeOrder(t *testing.T) {
	e := newTestEditor(t, new(MockPersister))

	require.NoError(t, e.AddActivity(1, act("Early market", "07:30-08:30", 20)))

	names := []string{}
	for _, a := range e.Days()[0].Activities {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"Early market", "Forbidden City", "Hutong walk"}, names)
	assert.Equal(t, 80.0, e.Days()[0].TotalCost)
}

func TestAddActivity_RejectsInvertedRange(t *testing.T) {
	e := newTestEditor(t, new(MockPersister))
	err := e.AddActivity(1, act("Backwards", "15:00-09:00", 0))
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestAddActivity_UnknownDay(t *testing.T) {
	e := newTestEditor(t, new(MockPersister))
	err := e.AddActivity(9, act("Nowhere", "09:00-10:00", 0))
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestEditActivity_SameDayResorts(t *testing.T) {
	e := newTestEditor(t, new(MockPersister))

	// Move the morning slot to the evening; it should sink below the walk.
	edited := e.Days()[0].Activities[0]
	edited.Time = "18:00-20:00"
	require.NoError(t, e.EditActivity(1, 0, 1, edited))

	acts := e.Days()[0].Activities
	require.Len(t, acts, 2)
	assert.Equal(t, "Hutong walk", acts[0].Name)
	assert.Equal(t, "Forbidden City", acts[1].Name)
}

func TestEditActivity_MoveBetweenDays(t *testing.T) {
	e := newTestEditor(t, new(MockPersister))

	moved := e.Days()[0].Activities[1]
	moved.Time = "07:00-09:00"
	require.NoError(t, e.EditActivity(1, 1, 2, moved))

	assert.Len(t, e.Days()[0].Activities, 1)

	day2 := e.Days()[1].Activities
	require.Len(t, day2, 2)
	assert.Equal(t, "Hutong walk", day2[0].Name)
	assert.Equal(t, "Great Wall", day2[1].Name)
}

func TestDeleteActivity_NoResort(t *testing.T) {
	e := newTestEditor(t, new(MockPersister))

	require.NoError(t, e.DeleteActivity(1, 0))

	acts := e.Days()[0].Activities
	require.Len(t, acts, 1)
	assert.Equal(t, "Hutong walk", acts[0].Name)
	assert.Equal(t, 0.0, e.Days()[0].TotalCost)
}

func TestSave_SuccessPromotesCleanCopy(t *testing.T) {
	store := new(MockPersister)
	store.On("SaveItinerary", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	e := newTestEditor(t, store)
	require.NoError(t, e.AddActivity(2, act("Dinner", "19:00-20:30", 80)))
	assert.True(t, e.Dirty())

	require.NoError(t, e.Save(context.Background()))
	assert.False(t, e.Dirty())
	store.AssertExpectations(t)
}

func TestSave_FailureKeepsWorkingCopy(t *testing.T) {
	store := new(MockPersister)
	store.On("SaveItinerary", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("connection reset"))

	e := newTestEditor(t, store)
	require.NoError(t, e.AddActivity(2, act("Dinner", "19:00-20:30", 80)))

	err := e.Save(context.Background())
	require.Error(t, err)
	assert.True(t, e.Dirty())
	assert.Len(t, e.Days()[1].Activities, 2)
}

func TestEditsDoNotTouchOriginalSlice(t *testing.T) {
	original := twoDayPlan()
	e := NewEditor(uuid.New(), uuid.New(), original, new(MockPersister), zap.NewNop())

	require.NoError(t, e.AddActivity(1, act("Extra", "20:00-21:00", 10)))

	assert.Len(t, original[0].Activities, 2)
}
