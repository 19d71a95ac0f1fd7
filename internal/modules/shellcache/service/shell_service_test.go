package service_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"worktime/internal/modules/shellcache/domain"
	"worktime/internal/modules/shellcache/service"
	"worktime/internal/platform/clock"
	apperrors "worktime/internal/platform/errors"
)

var installedAt = clock.Fixed(time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC))

type memoryStore struct {
	mu      sync.Mutex
	entries map[string]map[string]domain.Entry
}

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: map[string]map[string]domain.Entry{}}
}

func (m *memoryStore) Get(_ context.Context, cache, key string) (domain.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[cache][key]
	if !ok {
		return domain.Entry{}, apperrors.ErrNotFound
	}
	return entry, nil
}

func (m *memoryStore) Put(_ context.Context, entry domain.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries[entry.Cache] == nil {
		m.entries[entry.Cache] = map[string]domain.Entry{}
	}
	m.entries[entry.Cache][entry.Key] = entry
	return nil
}

func (m *memoryStore) CacheNames(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := []string{}
	for name := range m.entries {
		names = append(names, name)
	}
	return names, nil
}

func (m *memoryStore) DeleteCache(_ context.Context, cache string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, cache)
	return nil
}

func (m *memoryStore) Count(_ context.Context, cache string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries[cache]), nil
}

type fakeOrigin struct {
	mu      sync.Mutex
	calls   []domain.Request
	reloads int
	respond func(domain.Request) (domain.Response, error)
}

func (f *fakeOrigin) Fetch(_ context.Context, req domain.Request, reload bool) (domain.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	if reload {
		f.reloads++
	}
	f.mu.Unlock()
	return f.respond(req)
}

const origin = "http://localhost:8000"

func TestInstallSkipsFailedAssets(t *testing.T) {
	t.Parallel()
	store := newMemoryStore()
	fetcher := &fakeOrigin{respond: func(req domain.Request) (domain.Response, error) {
		switch {
		case strings.HasSuffix(req.URL, "riwayat.html"):
			return domain.Response{Status: http.StatusNotFound}, nil
		case strings.HasSuffix(req.URL, "favicon.ico"):
			return domain.Response{}, apperrors.ErrUnavailable
		default:
			return domain.Response{Status: http.StatusOK, ContentType: "text/plain", Body: []byte(req.URL)}, nil
		}
	}}
	svc := service.NewShellService(installedAt, store, fetcher, origin)

	report, err := svc.Install(context.Background())
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	if len(report.Stored) != len(domain.Assets)-2 || len(report.Skipped) != 2 {
		t.Fatalf("unexpected report %+v", report)
	}
	if _, ok := report.Skipped["riwayat.html"]; !ok {
		t.Fatalf("non-2xx asset should be skipped: %+v", report.Skipped)
	}
	if fetcher.reloads != len(domain.Assets) {
		t.Fatalf("install must bypass caches for every asset, got %d reloads", fetcher.reloads)
	}
	if _, err := store.Get(context.Background(), domain.CacheName, origin+"/icons/icon-192.png"); err != nil {
		t.Fatalf("asset not stored under its absolute url: %v", err)
	}
}

func TestActivatePurgesOldCaches(t *testing.T) {
	t.Parallel()
	store := newMemoryStore()
	for _, cache := range []string{"worktime-pwa-v0", domain.CacheName, "other"} {
		_ = store.Put(context.Background(), domain.Entry{Cache: cache, Key: origin + "/index.html", Status: 200})
	}
	svc := service.NewShellService(installedAt, store, &fakeOrigin{}, origin)

	deleted, err := svc.Activate(context.Background())
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if len(deleted) != 2 {
		t.Fatalf("expected two purged caches, got %v", deleted)
	}
	names, _ := store.CacheNames(context.Background())
	if len(names) != 1 || names[0] != domain.CacheName {
		t.Fatalf("only the current cache may survive, got %v", names)
	}
}

func TestFetchIsCacheFirst(t *testing.T) {
	t.Parallel()
	store := newMemoryStore()
	fetcher := &fakeOrigin{respond: func(req domain.Request) (domain.Response, error) {
		if strings.HasSuffix(req.URL, "/missing") {
			return domain.Response{Status: http.StatusNotFound, Body: []byte("nope")}, nil
		}
		return domain.Response{Status: http.StatusOK, Body: []byte("fresh")}, nil
	}}
	svc := service.NewShellService(installedAt, store, fetcher, origin)
	ctx := context.Background()

	first, err := svc.Fetch(ctx, domain.Request{Method: "GET", URL: origin + "/app.js"})
	if err != nil || first.FromCache || string(first.Body) != "fresh" {
		t.Fatalf("first fetch should hit the network: %+v %v", first, err)
	}
	second, err := svc.Fetch(ctx, domain.Request{Method: "GET", URL: origin + "/app.js"})
	if err != nil || !second.FromCache {
		t.Fatalf("second fetch should be served from cache: %+v %v", second, err)
	}
	if len(fetcher.calls) != 1 {
		t.Fatalf("expected one network call, got %d", len(fetcher.calls))
	}

	_, _ = svc.Fetch(ctx, domain.Request{Method: "GET", URL: origin + "/missing"})
	_, _ = svc.Fetch(ctx, domain.Request{Method: "GET", URL: origin + "/missing"})
	if len(fetcher.calls) != 3 {
		t.Fatalf("non-2xx responses must not be cached, calls=%d", len(fetcher.calls))
	}

	_, _ = svc.Fetch(ctx, domain.Request{Method: "POST", URL: origin + "/absen/checkin"})
	_, _ = svc.Fetch(ctx, domain.Request{Method: "POST", URL: origin + "/absen/checkin"})
	if len(fetcher.calls) != 5 {
		t.Fatalf("non-GET requests always pass through, calls=%d", len(fetcher.calls))
	}
}

func TestFetchPropagatesNetworkFailure(t *testing.T) {
	t.Parallel()
	fetcher := &fakeOrigin{respond: func(domain.Request) (domain.Response, error) {
		return domain.Response{}, apperrors.ErrUnavailable
	}}
	svc := service.NewShellService(installedAt, newMemoryStore(), fetcher, origin)
	if _, err := svc.Fetch(context.Background(), domain.Request{URL: origin + "/dashboard.html"}); !errors.Is(err, apperrors.ErrUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}
