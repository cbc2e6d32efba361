package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/voyago/voyago/internal/app/models"
	"github.com/voyago/voyago/internal/app/observability/metrics"
)

const defaultAMapBaseURL = "https://restapi.amap.com"

// Client is the routing/geocoding provider surface.
type Client interface {
	Geocode(ctx context.Context, key, address string) (models.Coordinate, error)
	DrivingRoute(ctx context.Context, key string, origin, destination models.Coordinate, waypoints []models.Coordinate) (*DrivingResult, error)
}

// DrivingResult is one driving leg or multi-waypoint path.
type DrivingResult struct {
	DistanceMeters float64
	DurationSecs   float64
	Polyline       []models.Coordinate
}

var _ Client = (*AMapClient)(nil)

// AMapClient talks to the AMap web service REST API.
type AMapClient struct {
	logger     *zap.Logger
	httpClient *http.Client
	baseURL    string
	geocodes   *gocache.Cache
}

type AMapOption func(*AMapClient)

func WithBaseURL(base string) AMapOption {
	return func(c *AMapClient) { c.baseURL = strings.TrimRight(base, "/") }
}

func WithHTTPClient(hc *http.Client) AMapOption {
	return func(c *AMapClient) { c.httpClient = hc }
}

func NewAMapClient(logger *zap.Logger, opts ...AMapOption) *AMapClient {
	c := &AMapClient{
		logger:     logger,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultAMapBaseURL,
		geocodes:   gocache.New(30*time.Minute, 10*time.Minute),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type geocodeResponse struct {
	Status   string `json:"status"`
	Info     string `json:"info"`
	Geocodes []struct {
		Location string `json:"location"` // "lng,lat"
	} `json:"geocodes"`
}

// Geocode resolves an address to a coordinate. Results are cached per
// address for the life of the process entry.
func (c *AMapClient) Geocode(ctx context.Context, key, address string) (models.Coordinate, error) {
	l := c.logger.With(zap.String("method", "Geocode"), zap.String("address", address))

	if cached, found := c.geocodes.Get(address); found {
		return cached.(models.Coordinate), nil
	}

	q := url.Values{}
	q.Set("key", key)
	q.Set("address", address)

	var resp geocodeResponse
	if err := c.getJSON(ctx, "/v3/geocode/geo", q, &resp); err != nil {
		metrics.GeocodeRequestsTotal.WithLabelValues("error").Inc()
		l.Warn("Geocode request failed", zap.Error(err))
		return models.Coordinate{}, fmt.Errorf("%w: %v", models.ErrGeocodingFailed, err)
	}
	if resp.Status != "1" || len(resp.Geocodes) == 0 {
		metrics.GeocodeRequestsTotal.WithLabelValues("miss").Inc()
		l.Debug("Geocode returned no result", zap.String("info", resp.Info))
		return models.Coordinate{}, fmt.Errorf("%w: no result for %q", models.ErrGeocodingFailed, address)
	}

	coord, err := parseLocation(resp.Geocodes[0].Location)
	if err != nil {
		metrics.GeocodeRequestsTotal.WithLabelValues("miss").Inc()
		return models.Coordinate{}, fmt.Errorf("%w: %v", models.ErrGeocodingFailed, err)
	}

	metrics.GeocodeRequestsTotal.WithLabelValues("ok").Inc()
	c.geocodes.Set(address, coord, gocache.DefaultExpiration)
	return coord, nil
}

type drivingResponse struct {
	Status string `json:"status"`
	Info   string `json:"info"`
	Route  struct {
		Paths []struct {
			Distance string `json:"distance"`
			Duration string `json:"duration"`
			Steps    []struct {
				Polyline string `json:"polyline"`
			} `json:"steps"`
		} `json:"paths"`
	} `json:"route"`
}

// DrivingRoute requests a driving path through up to 16 interior waypoints.
func (c *AMapClient) DrivingRoute(ctx context.Context, key string, origin, destination models.Coordinate, waypoints []models.Coordinate) (*DrivingResult, error) {
	l := c.logger.With(zap.String("method", "DrivingRoute"), zap.Int("waypoints", len(waypoints)))

	if len(waypoints) > 16 {
		return nil, fmt.Errorf("%w: too many waypoints (%d)", models.ErrRoutingFailed, len(waypoints))
	}

	q := url.Values{}
	q.Set("key", key)
	q.Set("origin", formatLocation(origin))
	q.Set("destination", formatLocation(destination))
	q.Set("extensions", "all")
	if len(waypoints) > 0 {
		parts := make([]string, len(waypoints))
		for i, w := range waypoints {
			parts[i] = formatLocation(w)
		}
		q.Set("waypoints", strings.Join(parts, ";"))
	}

	var resp drivingResponse
	if err := c.getJSON(ctx, "/v3/direction/driving", q, &resp); err != nil {
		l.Warn("Driving route request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", models.ErrRoutingFailed, err)
	}
	if resp.Status != "1" || len(resp.Route.Paths) == 0 {
		l.Debug("Driving route returned no path", zap.String("info", resp.Info))
		return nil, fmt.Errorf("%w: %s", models.ErrRoutingFailed, resp.Info)
	}

	path := resp.Route.Paths[0]
	distance, _ := strconv.ParseFloat(path.Distance, 64)
	duration, _ := strconv.ParseFloat(path.Duration, 64)

	var polyline []models.Coordinate
	for _, step := range path.Steps {
		for _, pair := range strings.Split(step.Polyline, ";") {
			if pair == "" {
				continue
			}
			coord, err := parseLocation(pair)
			if err != nil {
				continue
			}
			polyline = append(polyline, coord)
		}
	}

	return &DrivingResult{
		DistanceMeters: distance,
		DurationSecs:   duration,
		Polyline:       polyline,
	}, nil
}

func (c *AMapClient) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider returned status %d", resp.StatusCode)
	}
	return json.Unmarshal(body, out)
}

// parseLocation decodes AMap's "lng,lat" pair format.
func parseLocation(s string) (models.Coordinate, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return models.Coordinate{}, fmt.Errorf("malformed location %q", s)
	}
	lng, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("malformed longitude %q", parts[0])
	}
	lat, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("malformed latitude %q", parts[1])
	}
	return models.Coordinate{Latitude: lat, Longitude: lng}, nil
}

func formatLocation(c models.Coordinate) string {
	return fmt.Sprintf("%.6f,%.6f", c.Longitude, c.Latitude)
}
