package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"worktime/internal/modules/shellcache/domain"
	shellout "worktime/internal/modules/shellcache/port/out"
	"worktime/internal/platform/clock"
	apperrors "worktime/internal/platform/errors"
	"worktime/internal/platform/log"
)

type InstallReport struct {
	Stored  []string
	Skipped map[string]string
}

type ShellService struct {
	clock  clock.Clock
	store  shellout.AssetStore
	origin shellout.Origin
	base   string
	cache  string
	assets []string
}

func NewShellService(clock clock.Clock, store shellout.AssetStore, origin shellout.Origin, base string) *ShellService {
	return &ShellService{clock: clock, store: store, origin: origin, base: base, cache: domain.CacheName, assets: domain.Assets}
}

func (s *ShellService) CacheName() string {
	return s.cache
}

func (s *ShellService) Origin() string {
	return s.base
}

func (s *ShellService) AssetCount() int {
	return len(s.assets)
}

// Install fetches every asset concurrently, bypassing caches. Failed or non-2xx
// fetches are skipped; only a store failure aborts.
func (s *ShellService) Install(ctx context.Context) (InstallReport, error) {
	type outcome struct {
		asset string
		key   string
		resp  domain.Response
		err   error
	}
	results := make([]outcome, len(s.assets))
	var wg sync.WaitGroup
	for i, asset := range s.assets {
		wg.Add(1)
		go func(i int, asset string) {
			defer wg.Done()
			key, err := domain.Resolve(s.base, asset)
			if err != nil {
				results[i] = outcome{asset: asset, err: err}
				return
			}
			resp, err := s.origin.Fetch(ctx, domain.Request{Method: "GET", URL: key}, true)
			results[i] = outcome{asset: asset, key: key, resp: resp, err: err}
		}(i, asset)
	}
	wg.Wait()

	report := InstallReport{Skipped: map[string]string{}}
	for _, r := range results {
		switch {
		case r.err != nil:
			report.Skipped[r.asset] = r.err.Error()
		case !r.resp.OK():
			report.Skipped[r.asset] = fmt.Sprintf("status %d", r.resp.Status)
		default:
			if err := s.put(ctx, r.key, r.resp); err != nil {
				return InstallReport{}, err
			}
			report.Stored = append(report.Stored, r.asset)
		}
	}
	log.Info(log.Fields{"cache": s.cache, "stored": len(report.Stored), "skipped": len(report.Skipped)}, "[shellcache.Install] precache finished")
	return report, nil
}

// Activate deletes every cache other than the current one.
func (s *ShellService) Activate(ctx context.Context) ([]string, error) {
	names, err := s.store.CacheNames(ctx)
	if err != nil {
		return nil, err
	}
	deleted := []string{}
	for _, name := range names {
		if name == s.cache {
			continue
		}
		if err := s.store.DeleteCache(ctx, name); err != nil {
			return deleted, err
		}
		deleted = append(deleted, name)
	}
	return deleted, nil
}

// Fetch serves from the cache first and falls back to the network, storing 2xx GET responses.
func (s *ShellService) Fetch(ctx context.Context, req domain.Request) (domain.Response, error) {
	if req.Cacheable() {
		entry, err := s.store.Get(ctx, s.cache, req.URL)
		if err == nil {
			return entry.Response(), nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			log.Warn(log.Fields{"url": req.URL, "error": err.Error()}, "[shellcache.Fetch] cache read failed")
		}
	}

	resp, err := s.origin.Fetch(ctx, req, false)
	if err != nil {
		return domain.Response{}, err
	}
	if req.Cacheable() && resp.OK() {
		if err := s.put(ctx, req.URL, resp); err != nil {
			log.Warn(log.Fields{"url": req.URL, "error": err.Error()}, "[shellcache.Fetch] cache write failed")
		}
	}
	return resp, nil
}

func (s *ShellService) Entries(ctx context.Context) (int, error) {
	return s.store.Count(ctx, s.cache)
}

func (s *ShellService) put(ctx context.Context, key string, resp domain.Response) error {
	return s.store.Put(ctx, domain.Entry{
		Cache:       s.cache,
		Key:         key,
		Status:      resp.Status,
		ContentType: resp.ContentType,
		Body:        resp.Body,
		StoredAt:    s.clock.Now(),
	})
}
