package geo

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/voyago/voyago/internal/app/models"
)

type fakeGeocoder struct {
	mu      sync.Mutex
	queries []string
	results map[string]models.Coordinate
}

func (f *fakeGeocoder) Geocode(ctx context.Context, key, address string) (models.Coordinate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, address)
	if c, ok := f.results[address]; ok {
		return c, nil
	}
	return models.Coordinate{}, models.ErrGeocodingFailed
}

func (f *fakeGeocoder) DrivingRoute(ctx context.Context, key string, origin, destination models.Coordinate, waypoints []models.Coordinate) (*DrivingResult, error) {
	panic("not used")
}

func TestEnrichPlan(t *testing.T) {
	geocoder := &fakeGeocoder{results: map[string]models.Coordinate{
		"北京市东城区景山前街4号": {Latitude: 39.916, Longitude: 116.397},
		"北京王府井":        {Latitude: 39.909, Longitude: 116.41},
	}}
	enricher := NewEnricher(geocoder, zap.NewNop())

	days := []models.ItineraryDay{{
		Day: 1,
		Activities: []models.Activity{
			{Name: "故宫", Address: "北京市东城区景山前街4号"}, // qualified address, used as-is
			{Name: "王府井"}, // no address: destination + name
			{Name: "已定位", Coordinates: models.Coordinate{Latitude: 39.9, Longitude: 116.4}}, // already valid, skipped
			{Name: "无处可寻", Address: "不存在的路1号"},                                              // lookup fails: sentinel
		},
	}}

	enricher.EnrichPlan(context.Background(), "k", "北京", days)

	acts := days[0].Activities
	assert.Equal(t, 39.916, acts[0].Coordinates.Latitude)
	assert.Equal(t, 39.909, acts[1].Coordinates.Latitude)
	assert.Equal(t, 39.9, acts[2].Coordinates.Latitude)
	assert.Equal(t, models.Coordinate{}, acts[3].Coordinates)

	assert.Len(t, geocoder.queries, 3)
	assert.NotContains(t, geocoder.queries, "已定位")
}

func TestSearchQuery(t *testing.T) {
	tests := []struct {
		name        string
		destination string
		actName     string
		address     string
		want        string
	}{
		{"qualified address used directly", "北京", "故宫", "北京市东城区景山前街4号", "北京市东城区景山前街4号"},
		{"bare address gets destination", "北京", "某餐厅", "东直门内大街100号", "北京东直门内大街100号"},
		{"address containing destination", "杭州", "茶馆", "杭州西湖边", "杭州西湖边"},
		{"no address at all", "北京", "王府井", "", "北京王府井"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, searchQuery(tt.destination, tt.actName, tt.address))
		})
	}
}
