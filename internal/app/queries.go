package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/twpayne/go-geom/encoding/geojson"

	"culture_hotspots/internal/domain"
	"culture_hotspots/internal/geo"
)

const (
	keyAll      = "hotspots:all"
	keyIDPrefix = "hotspot:"
)

type QueryService struct {
	repo     domain.HotspotStore
	cache    domain.Cache
	cacheTTL time.Duration
}

// NewQueryService wires the read side. c may be nil to disable caching.
func NewQueryService(r domain.HotspotStore, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

// All returns the current snapshot of every hotspot, in store order.
func (s *QueryService) All(ctx context.Context) ([]domain.Hotspot, error) {
	var hs []domain.Hotspot
	if s.cacheGet(ctx, keyAll, &hs) {
		return hs, nil
	}
	hs, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, keyAll, hs)
	return hs, nil
}

// GetByID reports found=false, with no error, when nothing matches.
func (s *QueryService) GetByID(ctx context.Context, id string) (domain.Hotspot, bool, error) {
	key := keyIDPrefix + id
	var h domain.Hotspot
	if s.cacheGet(ctx, key, &h) {
		return h, true, nil
	}
	h, found, err := s.repo.FindByID(ctx, id)
	if err != nil || !found {
		return domain.Hotspot{}, false, err
	}
	s.cacheSet(ctx, key, h)
	return h, true, nil
}

// FindBy is an exact match on f.
func (s *QueryService) FindBy(ctx context.Context, f domain.Field, value string) ([]domain.Hotspot, error) {
	if !f.Valid() {
		return nil, domain.ErrUnknownField
	}
	return s.repo.FindByField(ctx, f, value)
}

// Search is a case-insensitive substring match on f.
func (s *QueryService) Search(ctx context.Context, f domain.Field, substr string) ([]domain.Hotspot, error) {
	if !f.Valid() {
		return nil, domain.ErrUnknownField
	}
	return s.repo.FindByFieldContaining(ctx, f, substr, true)
}

func (s *QueryService) SearchByName(ctx context.Context, q string) ([]domain.Hotspot, error) {
	return s.Search(ctx, domain.FieldName, q)
}

func (s *QueryService) ByInterest(ctx context.Context, interest string) ([]domain.Hotspot, error) {
	return s.Search(ctx, domain.FieldInterests, interest)
}

func (s *QueryService) ByType(ctx context.Context, t string) ([]domain.Hotspot, error) {
	return s.FindBy(ctx, domain.FieldType, t)
}

func (s *QueryService) ByNeighbourhood(ctx context.Context, n string) ([]domain.Hotspot, error) {
	return s.FindBy(ctx, domain.FieldNeighbourhood, n)
}

func (s *QueryService) ByLoop(ctx context.Context, loop string) ([]domain.Hotspot, error) {
	return s.FindBy(ctx, domain.FieldLoop, loop)
}

// MapPoints projects every coordinate-bearing hotspot.
func (s *QueryService) MapPoints(ctx context.Context) ([]geo.MapPoint, error) {
	hs, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	return geo.ToMapPoints(geo.WithCoordinates(hs)), nil
}

func (s *QueryService) InBounds(ctx context.Context, b domain.Bounds) ([]geo.MapPoint, error) {
	hs, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	return geo.ToMapPoints(geo.WithinBoundingBox(hs, b)), nil
}

func (s *QueryService) Nearby(ctx context.Context, lat, lon, radiusKm float64) ([]geo.MapPoint, error) {
	hs, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	return geo.NearbyToMapPoints(geo.WithinRadius(hs, lat, lon, radiusKm)), nil
}

func (s *QueryService) GeoJSON(ctx context.Context) (*geojson.FeatureCollection, error) {
	hs, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	return geo.ToFeatureCollection(hs), nil
}

// Invalidate drops the cached snapshot and every per-id entry.
func (s *QueryService) Invalidate(ctx context.Context) { invalidateCache(ctx, s.cache) }

func invalidateCache(ctx context.Context, c domain.Cache) {
	if c == nil {
		return
	}
	if err := c.Del(ctx, keyAll); err != nil {
		log.Warn().Err(err).Msg("cache invalidation failed")
	}
	if err := c.DelPrefix(ctx, keyIDPrefix); err != nil {
		log.Warn().Err(err).Msg("cache invalidation failed")
	}
}

func (s *QueryService) cacheGet(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	ok, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache get failed")
		return false
	}
	return ok
}

func (s *QueryService) cacheSet(ctx context.Context, key string, v any) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	if err := s.cache.Set(ctx, key, v, int(s.cacheTTL.Seconds())); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}
