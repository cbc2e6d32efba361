package models

// RoutePoint is one ordered stop handed to the route planner.
type RoutePoint struct {
	Name       string     `json:"name,omitempty"`
	Coordinate Coordinate `json:"coordinate"`
}

// RouteSegment is the driven leg between two consecutive stops.
type RouteSegment struct {
	From     Coordinate   `json:"from"`
	To       Coordinate   `json:"to"`
	Polyline []Coordinate `json:"polyline"`
}

// RoutePlan is the planner's output. Fallback plans carry straight-line
// segments, no distance or duration, and a user-facing warning.
type RoutePlan struct {
	Segments       []RouteSegment `json:"segments"`
	DistanceMeters float64        `json:"distance_meters,omitempty"`
	DurationSecs   float64        `json:"duration_secs,omitempty"`
	Fallback       bool           `json:"fallback"`
	Warning        string         `json:"warning,omitempty"`
}
