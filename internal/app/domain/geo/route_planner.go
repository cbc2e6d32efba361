package geo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/voyago/voyago/internal/app/models"
	"github.com/voyago/voyago/internal/pkg/cache"
)

const (
	// maxSinglePoints is the largest stop count a single driving request can
	// carry: origin + destination + 16 interior waypoints.
	maxSinglePoints = 18

	// pairwiseDelay throttles the sequential per-leg requests so a long
	// itinerary does not trip the provider's rate limit.
	pairwiseDelay = 500 * time.Millisecond
)

// RoutePlanner turns an ordered stop list into driving segments. Plans are
// memoized by coordinate fingerprint so redrawing the same stops costs
// nothing.
type RoutePlanner struct {
	logger *zap.Logger
	client Client
	memo   *cache.UnifiedCache[*models.RoutePlan]
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewRoutePlanner(client Client, logger *zap.Logger) *RoutePlanner {
	return &RoutePlanner{
		logger: logger,
		client: client,
		memo:   cache.NewUnifiedCache[*models.RoutePlan](30*time.Minute, "route_plans", logger),
		sleep:  sleepCtx,
	}
}

// Plan routes through the given stops in order. Invalid coordinates are
// dropped up front; fewer than two usable stops is an error. Total routing
// failure degrades to straight-line segments with a warning instead of
// failing the caller.
func (p *RoutePlanner) Plan(ctx context.Context, key string, points []models.RoutePoint) (*models.RoutePlan, error) {
	l := p.logger.With(zap.String("method", "Plan"), zap.Int("points", len(points)))

	valid := FilterValid(points)
	if len(valid) < 2 {
		return nil, fmt.Errorf("%w: %d usable of %d", models.ErrInsufficientPoints, len(valid), len(points))
	}

	cacheKey := cache.NewCacheKeyBuilder(p.logger).AddFingerprint(Fingerprint(valid)).BuildOrDefault()
	if cacheKey != "" {
		if plan, found := p.memo.Get(cacheKey); found {
			l.Debug("Route plan served from memo")
			return plan, nil
		}
	}

	var plan *models.RoutePlan
	var err error
	if len(valid) <= maxSinglePoints {
		plan, err = p.planSingle(ctx, key, valid)
	} else {
		plan, err = p.planPairwise(ctx, key, valid)
	}
	if err != nil {
		// Cancellation is the caller giving up, not the provider failing.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		l.Warn("Routing failed, falling back to straight lines", zap.Error(err))
		plan = straightLineFallback(valid)
	}

	// Only successful computations are memoized, so a retry after a provider
	// outage gets a fresh attempt instead of the pinned fallback.
	if cacheKey != "" && !plan.Fallback {
		p.memo.Set(cacheKey, plan)
	}
	return plan, nil
}

func (p *RoutePlanner) planSingle(ctx context.Context, key string, points []models.RoutePoint) (*models.RoutePlan, error) {
	origin := points[0].Coordinate
	destination := points[len(points)-1].Coordinate

	waypoints := make([]models.Coordinate, 0, len(points)-2)
	for _, pt := range points[1 : len(points)-1] {
		waypoints = append(waypoints, pt.Coordinate)
	}

	result, err := p.client.DrivingRoute(ctx, key, origin, destination, waypoints)
	if err != nil {
		return nil, err
	}

	return &models.RoutePlan{
		Segments: []models.RouteSegment{{
			From:     origin,
			To:       destination,
			Polyline: result.Polyline,
		}},
		DistanceMeters: result.DistanceMeters,
		DurationSecs:   result.DurationSecs,
	}, nil
}

// planPairwise issues one request per consecutive leg, sequentially, pausing
// between requests. Failed legs are skipped; the plan fails only when every
// leg does.
func (p *RoutePlanner) planPairwise(ctx context.Context, key string, points []models.RoutePoint) (*models.RoutePlan, error) {
	l := p.logger.With(zap.String("method", "planPairwise"), zap.Int("legs", len(points)-1))

	plan := &models.RoutePlan{}
	succeeded := 0

	for i := 0; i < len(points)-1; i++ {
		if i > 0 {
			if err := p.sleep(ctx, pairwiseDelay); err != nil {
				return nil, err
			}
		}

		from := points[i].Coordinate
		to := points[i+1].Coordinate
		result, err := p.client.DrivingRoute(ctx, key, from, to, nil)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			l.Warn("Leg routing failed, skipping",
				zap.Int("leg", i),
				zap.String("from", points[i].Name),
				zap.String("to", points[i+1].Name),
				zap.Error(err),
			)
			continue
		}

		plan.Segments = append(plan.Segments, models.RouteSegment{
			From:     from,
			To:       to,
			Polyline: result.Polyline,
		})
		plan.DistanceMeters += result.DistanceMeters
		plan.DurationSecs += result.DurationSecs
		succeeded++
	}

	if succeeded == 0 {
		return nil, fmt.Errorf("%w: all %d legs failed", models.ErrRoutingFailed, len(points)-1)
	}
	return plan, nil
}

// straightLineFallback connects the stops directly. Distances and durations
// are left unset: a ruler line is not a drive.
func straightLineFallback(points []models.RoutePoint) *models.RoutePlan {
	plan := &models.RoutePlan{
		Fallback: true,
		Warning:  "Route planning is unavailable, showing straight-line connections",
	}
	for i := 0; i < len(points)-1; i++ {
		from := points[i].Coordinate
		to := points[i+1].Coordinate
		plan.Segments = append(plan.Segments, models.RouteSegment{
			From:     from,
			To:       to,
			Polyline: []models.Coordinate{from, to},
		})
	}
	return plan
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
