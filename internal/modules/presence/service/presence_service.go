package service

import (
	"context"
	"errors"
	"sync"

	"worktime/internal/modules/presence/domain"
	presenceout "worktime/internal/modules/presence/port/out"
	"worktime/internal/platform/clock"
	apperrors "worktime/internal/platform/errors"
	"worktime/internal/platform/log"
)

// PresenceService owns the latest verdict. Every Refresh gets a fresh generation and
// the highest finished generation wins, whatever order samples complete in. Address
// resolutions only land on the verdict of the newest issued generation.
type PresenceService struct {
	clock   clock.Clock
	site    domain.OfficeSite
	sampler presenceout.LocationSampler
	lookup  presenceout.AddressLookup
	opts    presenceout.SampleOptions

	mu          sync.Mutex
	issued      uint64
	latest      domain.Verdict
	hasLatest   bool
	lastFix     domain.GeoFix
	fixGen      uint64
	hasFix      bool
	lastAddress string
}

func NewPresenceService(clock clock.Clock, site domain.OfficeSite, sampler presenceout.LocationSampler, lookup presenceout.AddressLookup, opts presenceout.SampleOptions) *PresenceService {
	return &PresenceService{clock: clock, site: site, sampler: sampler, lookup: lookup, opts: opts}
}

func (s *PresenceService) Site() domain.OfficeSite {
	return s.site
}

func (s *PresenceService) Refresh(ctx context.Context) domain.Verdict {
	s.mu.Lock()
	s.issued++
	generation := s.issued
	s.mu.Unlock()

	var verdict domain.Verdict
	if s.sampler == nil {
		verdict = domain.Unsupported(s.clock.Now())
	} else {
		fix, err := s.sampler.Sample(ctx, s.opts)
		switch {
		case errors.Is(err, apperrors.ErrUnsupported):
			verdict = domain.Unsupported(s.clock.Now())
		case err != nil:
			log.Warn(log.Fields{"generation": generation, "error": err.Error()}, "[presence.Refresh] location sample failed")
			verdict = domain.Unavailable(s.clock.Now())
		default:
			verdict = domain.Evaluate(s.site, fix, s.clock.Now())
		}
	}
	verdict.Generation = generation

	s.mu.Lock()
	if verdict.HasFix() && generation > s.fixGen {
		if s.hasFix && s.lastFix.Coordinate != verdict.Fix.Coordinate {
			s.lastAddress = ""
		}
		s.lastFix = verdict.Fix
		s.fixGen = generation
		s.hasFix = true
	}
	if s.hasLatest && s.latest.Generation > generation {
		newer := s.latest
		s.mu.Unlock()
		log.Debug(log.Fields{"generation": generation, "latest": newer.Generation}, "[presence.Refresh] superseded verdict discarded")
		return newer
	}
	s.latest = verdict
	s.hasLatest = true
	s.mu.Unlock()

	log.Debug(log.Fields{
		"generation": generation,
		"kind":       verdict.Kind,
		"allowed":    verdict.Allowed,
		"reason":     verdict.Reason,
	}, "[presence.Refresh] verdict stored")
	return verdict
}

// ResolveAddress looks up the address for the verdict of generation. The bool reports
// whether the result was attached; it is false once a newer refresh has been issued.
func (s *PresenceService) ResolveAddress(ctx context.Context, generation uint64) (domain.Verdict, bool) {
	s.mu.Lock()
	current := s.latest
	if !s.hasLatest || generation != s.issued || current.Generation != generation || !current.HasFix() {
		s.mu.Unlock()
		return current, false
	}
	at := current.Fix.Coordinate
	s.mu.Unlock()

	address := domain.AddressUnavailable
	if s.lookup != nil {
		place, err := s.lookup.Lookup(ctx, at)
		if err != nil {
			log.Warn(log.Fields{"generation": generation, "error": err.Error()}, "[presence.ResolveAddress] lookup failed")
		} else {
			address = domain.FormatAddress(place)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.issued || s.latest.Generation != generation {
		log.Debug(log.Fields{"generation": generation, "issued": s.issued}, "[presence.ResolveAddress] stale address discarded")
		return s.latest, false
	}
	s.latest.Address = address
	s.latest.AddressResolved = true
	s.lastAddress = address
	return s.latest, true
}

func (s *PresenceService) Latest() (domain.Verdict, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.hasLatest
}

// LatestFix returns the most recent successful fix, even when a later refresh failed,
// together with the last resolved address.
func (s *PresenceService) LatestFix() (domain.GeoFix, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastFix, s.lastAddress, s.hasFix
}
