package out

import (
	"context"

	"worktime/internal/modules/shellcache/domain"
)

// AssetStore returns apperrors.ErrNotFound for a missing key.
type AssetStore interface {
	Get(ctx context.Context, cache, key string) (domain.Entry, error)
	Put(ctx context.Context, entry domain.Entry) error
	CacheNames(ctx context.Context) ([]string, error)
	DeleteCache(ctx context.Context, cache string) error
	Count(ctx context.Context, cache string) (int, error)
}

// Origin fetches from the network. reload asks intermediaries to skip their caches.
type Origin interface {
	Fetch(ctx context.Context, req domain.Request, reload bool) (domain.Response, error)
}
