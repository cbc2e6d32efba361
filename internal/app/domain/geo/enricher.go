package geo

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/voyago/voyago/internal/app/models"
)

const enrichConcurrency = 5

// Enricher fills in missing activity coordinates by geocoding their
// addresses. Lookups run concurrently; a failed lookup stores the (0,0)
// sentinel and never fails the batch.
type Enricher struct {
	logger *zap.Logger
	client Client
}

func NewEnricher(client Client, logger *zap.Logger) *Enricher {
	return &Enricher{logger: logger, client: client}
}

// EnrichPlan resolves coordinates for every activity of every day in place.
func (e *Enricher) EnrichPlan(ctx context.Context, key, destination string, days []models.ItineraryDay) {
	l := e.logger.With(zap.String("method", "EnrichPlan"), zap.String("destination", destination))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)

	attempted, skipped := 0, 0
	for di := range days {
		for ai := range days[di].Activities {
			a := &days[di].Activities[ai]
			if a.Coordinates.Valid() {
				skipped++
				continue
			}
			attempted++

			g.Go(func() error {
				query := searchQuery(destination, a.Name, a.Address)
				coord, err := e.client.Geocode(gctx, key, query)
				if err != nil {
					l.Debug("Geocode miss, storing sentinel",
						zap.String("activity", a.Name),
						zap.String("query", query),
						zap.Error(err),
					)
					a.Coordinates = models.Coordinate{}
					return nil
				}
				a.Coordinates = coord
				return nil
			})
		}
	}

	// Goroutines never return errors; Wait only observes context cancellation.
	_ = g.Wait()

	l.Info("Itinerary geocoding finished",
		zap.Int("attempted", attempted),
		zap.Int("skipped", skipped),
	)
}

// searchQuery builds the geocoder input. An address that already carries a
// region qualifier is used as-is; a bare address gets the destination
// prepended; with no address at all the destination plus the activity name
// has to do.
func searchQuery(destination, name, address string) string {
	if address == "" {
		return destination + name
	}
	if hasRegionQualifier(address, destination) {
		return address
	}
	return destination + address
}

func hasRegionQualifier(address, destination string) bool {
	if destination != "" && strings.Contains(address, destination) {
		return true
	}
	for _, marker := range []string{"市", "省", "自治区"} {
		if strings.Contains(address, marker) {
			return true
		}
	}
	return false
}
