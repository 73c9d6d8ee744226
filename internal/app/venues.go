package app

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"booking_bot/internal/domain"
)

// sharedLookupTimeout bounds a deduplicated lookup, which no longer follows
// the deadline of the request that started it.
const sharedLookupTimeout = 30 * time.Second

// Miss reasons stored in the miss log.
const (
	MissNotFound        = "not_found"
	MissInvalidLocation = "invalid_location"
)

// VenueService resolves a venue name to its first search result. Cache and
// miss log are optional.
type VenueService struct {
	places  domain.PlacesClient
	cache   domain.Cache
	misses  domain.MissLog
	hitTTL  time.Duration
	missTTL time.Duration
	group   singleflight.Group
}

func NewVenueService(p domain.PlacesClient, c domain.Cache, m domain.MissLog, hitTTL, missTTL time.Duration) *VenueService {
	return &VenueService{places: p, cache: c, misses: m, hitTTL: hitTTL, missTTL: missTTL}
}

// venueRecord is the cached form; misses are cached too.
type venueRecord struct {
	Found bool             `json:"found"`
	Venue domain.VenueInfo `json:"venue"`
}

func venueKey(name string) string {
	return "venue:" + strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// SearchLocation returns the first matching venue. found=false is a normal
// outcome; err is always a *domain.UpstreamError.
func (s *VenueService) SearchLocation(ctx context.Context, name string) (domain.VenueInfo, bool, error) {
	key := venueKey(name)

	// the shared lookup must outlive any single caller; each caller waits on its own ctx
	ch := s.group.DoChan(key, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLookupTimeout)
		defer cancel()
		return s.lookup(lctx, key, name)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return domain.VenueInfo{}, false, domain.Upstream("maps", ctx.Err())
	}
	if res.Err != nil {
		return domain.VenueInfo{}, false, res.Err
	}
	rec := res.Val.(venueRecord)
	if res.Shared {
		zerolog.Ctx(ctx).Debug().Str("location", name).Msg("venue lookup shared with concurrent request")
	}

	if !rec.Found {
		s.RecordMiss(ctx, name, MissNotFound)
	}
	return rec.Venue, rec.Found, nil
}

func (s *VenueService) lookup(ctx context.Context, key, name string) (venueRecord, error) {
	l := zerolog.Ctx(ctx)

	var rec venueRecord
	if s.cache != nil {
		ok, err := s.cache.Get(ctx, key, &rec)
		if err != nil {
			// cache trouble must not fail the booking; a partial decode is discarded
			rec = venueRecord{}
			l.Warn().Err(err).Str("key", key).Msg("venue cache get failed")
		} else if ok {
			return rec, nil
		}
	}

	features, err := s.places.Search(ctx, name)
	if err != nil {
		return venueRecord{}, domain.Upstream("maps", err)
	}
	if len(features) > 0 {
		rec = venueRecord{Found: true, Venue: mapVenue(features[0])}
	}

	if s.cache != nil {
		ttl := s.hitTTL
		if !rec.Found {
			ttl = s.missTTL
		}
		if ttl > 0 {
			if err := s.cache.Set(ctx, key, rec, int(ttl.Seconds())); err != nil {
				l.Warn().Err(err).Str("key", key).Msg("venue cache set failed")
			}
		}
	}
	return rec, nil
}

// Forget drops the cached entry for name so the next lookup hits the maps API.
func (s *VenueService) Forget(ctx context.Context, name string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Del(ctx, venueKey(name))
}

// RecordMiss writes to the miss log, if any. Failures are only logged.
func (s *VenueService) RecordMiss(ctx context.Context, query, reason string) {
	if s.misses == nil {
		return
	}
	if err := s.misses.LogMiss(ctx, query, reason); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("query", query).Msg("log lookup miss failed")
	}
}

// TopMisses lists the most frequent unresolved names; domain.ErrNotFound
// when no miss log is configured.
func (s *VenueService) TopMisses(ctx context.Context, limit int) ([]domain.Miss, error) {
	if s.misses == nil {
		return nil, domain.ErrNotFound
	}
	return s.misses.TopMisses(ctx, limit)
}
