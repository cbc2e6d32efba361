package mapview

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/voyago/voyago/internal/app/models"
)

type fakeSurface struct {
	markers   map[string]Marker
	polylines map[string][]models.Coordinate
	fitCalls  int
	destroyed bool
	nextID    int
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		markers:   map[string]Marker{},
		polylines: map[string][]models.Coordinate{},
	}
}

func (f *fakeSurface) AddMarker(m Marker) string {
	f.nextID++
	id := fmt.Sprintf("m%d", f.nextID)
	f.markers[id] = m
	return id
}

func (f *fakeSurface) RemoveMarker(id string) { delete(f.markers, id) }

func (f *fakeSurface) AddPolyline(points []models.Coordinate, dashed bool) string {
	f.nextID++
	id := fmt.Sprintf("p%d", f.nextID)
	f.polylines[id] = points
	return id
}

func (f *fakeSurface) RemovePolyline(id string) { delete(f.polylines, id) }
func (f *fakeSurface) FitView()                 { f.fitCalls++ }
func (f *fakeSurface) Destroy()                 { f.destroyed = true }

func stops() []Stop {
	return []Stop{
		{Name: "故宫", Type: models.ActivitySightseeing, Coordinate: models.Coordinate{Latitude: 39.916, Longitude: 116.397}},
		{Name: "全聚德", Type: models.ActivityDining, Coordinate: models.Coordinate{Latitude: 39.899, Longitude: 116.398}},
		{Name: "未定位", Type: models.ActivityGeneric, Coordinate: models.Coordinate{}},
	}
}

func TestSetStops_NumbersValidStopsInOrder(t *testing.T) {
	surface := newFakeSurface()
	c := NewController(surface, nil, zap.NewNop())

	c.SetStops(stops())

	require.Len(t, surface.markers, 2)
	seqs := map[int]string{}
	for _, m := range surface.markers {
		seqs[m.Sequence] = m.Title
	}
	assert.Equal(t, "故宫", seqs[1])
	assert.Equal(t, "全聚德", seqs[2])
	assert.Equal(t, 1, surface.fitCalls)
}

func TestSetStops_MarkerKinds(t *testing.T) {
	surface := newFakeSurface()
	c := NewController(surface, nil, zap.NewNop())

	c.SetStops(stops())

	kinds := map[string]string{}
	for _, m := range surface.markers {
		kinds[m.Title] = m.Kind
	}
	assert.Equal(t, "activity", kinds["故宫"])
	assert.Equal(t, "meal", kinds["全聚德"])
}

func TestSetStops_EmptyListRendersNothing(t *testing.T) {
	surface := newFakeSurface()
	c := NewController(surface, nil, zap.NewNop())

	c.SetStops(nil)

	assert.Empty(t, surface.markers)
	assert.Zero(t, surface.fitCalls)
}

func TestSetStops_ReplacesPreviousMarkers(t *testing.T) {
	surface := newFakeSurface()
	c := NewController(surface, nil, zap.NewNop())

	c.SetStops(stops())
	c.SetStops(stops()[:1])

	assert.Len(t, surface.markers, 1)
}

func TestRouteChanged(t *testing.T) {
	surface := newFakeSurface()
	c := NewController(surface, nil, zap.NewNop())
	s := stops()

	assert.True(t, c.RouteChanged(s))

	c.SetRoute(s, &models.RoutePlan{Segments: []models.RouteSegment{{}}})

	// Same geometry: toggling display must not look like a change.
	assert.False(t, c.RouteChanged(s))

	moved := stops()
	moved[0].Coordinate.Latitude = 40.0
	assert.True(t, c.RouteChanged(moved))
}

func TestSetRoute_FallbackRendersDashed(t *testing.T) {
	surface := newFakeSurface()
	c := NewController(surface, nil, zap.NewNop())

	c.SetRoute(stops(), &models.RoutePlan{
		Fallback: true,
		Segments: []models.RouteSegment{{Polyline: []models.Coordinate{{Latitude: 1, Longitude: 1}}}},
	})

	assert.Len(t, surface.polylines, 1)
}

func TestNavigate_UsesInjectedCapability(t *testing.T) {
	var opened string
	c := NewController(newFakeSurface(), func(u string) { opened = u }, zap.NewNop())

	c.Navigate(models.Coordinate{Latitude: 39.916, Longitude: 116.397}, "故宫")

	assert.Contains(t, opened, "uri.amap.com/navigation")
	assert.Contains(t, opened, "116.397000,39.916000")
}

func TestDestroy(t *testing.T) {
	surface := newFakeSurface()
	c := NewController(surface, nil, zap.NewNop())
	c.SetStops(stops())
	c.SetRoute(stops(), &models.RoutePlan{Segments: []models.RouteSegment{{}}})

	c.Destroy()

	assert.True(t, surface.destroyed)
	assert.True(t, c.RouteChanged(stops()))
}
