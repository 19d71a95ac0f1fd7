package out_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	shelladapter "worktime/internal/modules/shellcache/adapter/out"
	"worktime/internal/modules/shellcache/domain"
	apperrors "worktime/internal/platform/errors"
	"worktime/internal/platform/sqlite"
)

func TestSQLiteAssetStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "shell.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	store, err := shelladapter.NewSQLiteAssetStore(ctx, db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if _, err := store.Get(ctx, domain.CacheName, "http://x/index.html"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	stored := time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC)
	for _, cache := range []string{"worktime-pwa-v0", domain.CacheName} {
		entry := domain.Entry{Cache: cache, Key: "http://x/index.html", Status: 200, ContentType: "text/html", Body: []byte("<html>"), StoredAt: stored}
		if err := store.Put(ctx, entry); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	got, err := store.Get(ctx, domain.CacheName, "http://x/index.html")
	if err != nil || string(got.Body) != "<html>" || got.ContentType != "text/html" || !got.StoredAt.Equal(stored) {
		t.Fatalf("unexpected entry %+v err=%v", got, err)
	}

	names, err := store.CacheNames(ctx)
	if err != nil || len(names) != 2 {
		t.Fatalf("unexpected caches %v err=%v", names, err)
	}
	if err := store.DeleteCache(ctx, "worktime-pwa-v0"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n, _ := store.Count(ctx, "worktime-pwa-v0"); n != 0 {
		t.Fatalf("old cache not purged")
	}
	if n, _ := store.Count(ctx, domain.CacheName); n != 1 {
		t.Fatalf("current cache damaged")
	}
}
