package mapview

import (
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/voyago/voyago/internal/app/domain/geo"
	"github.com/voyago/voyago/internal/app/models"
)

// Surface is the minimal rendering contract a map provider adapter must
// satisfy. IDs returned by the add calls are opaque handles for removal.
type Surface interface {
	AddMarker(m Marker) string
	RemoveMarker(id string)
	AddPolyline(points []models.Coordinate, dashed bool) string
	RemovePolyline(id string)
	FitView()
	Destroy()
}

// Marker is one numbered stop rendered on the surface.
type Marker struct {
	Sequence    int
	Kind        string // per ActivityType.MarkerKind
	Title       string
	Address     string
	Info        string
	Coordinate  models.Coordinate
	NavigateURL string
}

// NavigateFunc opens an external navigation target. Passed in at
// construction; the controller never reaches for a global.
type NavigateFunc func(url string)

// Controller reconciles an ordered stop list and an optional route plan onto
// a Surface. It owns the handles it created and nothing else.
type Controller struct {
	logger    *zap.Logger
	surface   Surface
	navigate  NavigateFunc
	markers   []string
	polylines []string
	lastFP    string
}

func NewController(surface Surface, navigate NavigateFunc, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		logger:   logger,
		surface:  surface,
		navigate: navigate,
	}
}

// SetStops redraws the markers for an ordered stop list. An empty list simply
// clears the surface.
func (c *Controller) SetStops(stops []Stop) {
	c.clearMarkers()

	seq := 0
	for _, s := range stops {
		if !s.Coordinate.Valid() {
			continue
		}
		seq++
		id := c.surface.AddMarker(Marker{
			Sequence:    seq,
			Kind:        s.Type.MarkerKind(),
			Title:       s.Name,
			Address:     s.Address,
			Info:        s.Description,
			Coordinate:  s.Coordinate,
			NavigateURL: NavigationURL(s.Coordinate, s.Name),
		})
		c.markers = append(c.markers, id)
	}

	if seq > 0 {
		c.surface.FitView()
	}
	c.logger.Debug("Map stops rendered", zap.Int("markers", seq))
}

// Stop is one itinerary location in visiting order.
type Stop struct {
	Name        string
	Address     string
	Description string
	Type        models.ActivityType
	Coordinate  models.Coordinate
}

// RouteChanged reports whether the stop geometry differs from the last
// rendered route. Display toggles with unchanged stops return false, so
// callers can skip re-planning.
func (c *Controller) RouteChanged(stops []Stop) bool {
	return c.fingerprint(stops) != c.lastFP
}

// SetRoute draws the plan's segments, replacing any previous ones. Fallback
// plans render dashed.
func (c *Controller) SetRoute(stops []Stop, plan *models.RoutePlan) {
	c.clearPolylines()
	if plan == nil {
		c.lastFP = ""
		return
	}

	for _, seg := range plan.Segments {
		id := c.surface.AddPolyline(seg.Polyline, plan.Fallback)
		c.polylines = append(c.polylines, id)
	}
	c.lastFP = c.fingerprint(stops)
	c.logger.Debug("Route rendered",
		zap.Int("segments", len(plan.Segments)),
		zap.Bool("fallback", plan.Fallback),
	)
}

// ClearRoute removes the drawn segments without touching markers.
func (c *Controller) ClearRoute() {
	c.clearPolylines()
}

// Navigate hands a marker's target to the external navigation capability.
func (c *Controller) Navigate(coord models.Coordinate, name string) {
	if c.navigate == nil {
		return
	}
	c.navigate(NavigationURL(coord, name))
}

// Destroy tears the surface down and drops all handles.
func (c *Controller) Destroy() {
	c.markers = nil
	c.polylines = nil
	c.lastFP = ""
	c.surface.Destroy()
}

func (c *Controller) clearMarkers() {
	for _, id := range c.markers {
		c.surface.RemoveMarker(id)
	}
	c.markers = nil
}

func (c *Controller) clearPolylines() {
	for _, id := range c.polylines {
		c.surface.RemovePolyline(id)
	}
	c.polylines = nil
}

func (c *Controller) fingerprint(stops []Stop) string {
	points := make([]models.RoutePoint, 0, len(stops))
	for _, s := range stops {
		if s.Coordinate.Valid() {
			points = append(points, models.RoutePoint{Coordinate: s.Coordinate})
		}
	}
	return geo.Fingerprint(points)
}

// NavigationURL builds the provider deep link for turn-by-turn directions to
// a named point.
func NavigationURL(coord models.Coordinate, name string) string {
	return fmt.Sprintf("https://uri.amap.com/navigation?to=%.6f,%.6f,%s&mode=car&src=voyago",
		coord.Longitude, coord.Latitude, url.QueryEscape(name))
}
