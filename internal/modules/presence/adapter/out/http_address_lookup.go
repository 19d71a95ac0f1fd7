package out

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/time/rate"

	"worktime/internal/modules/presence/domain"
	apperrors "worktime/internal/platform/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// HTTPAddressLookup calls a Nominatim-compatible reverse endpoint, usually the
// attendance backend's /api/reverse-geocode proxy.
type HTTPAddressLookup struct {
	endpoint  string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
}

func NewHTTPAddressLookup(endpoint, userAgent string, perSecond float64, timeout time.Duration) *HTTPAddressLookup {
	if perSecond <= 0 {
		perSecond = 1
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPAddressLookup{
		endpoint:  endpoint,
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
		limiter:   rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

func (l *HTTPAddressLookup) Lookup(ctx context.Context, at domain.Coordinate) (domain.Place, error) {
	if l.endpoint == "" {
		return domain.Place{}, fmt.Errorf("reverse geocode endpoint: %w", apperrors.ErrUnavailable)
	}
	if err := l.limiter.Wait(ctx); err != nil {
		return domain.Place{}, fmt.Errorf("reverse geocode rate limit: %w", err)
	}

	u, err := url.Parse(l.endpoint)
	if err != nil {
		return domain.Place{}, fmt.Errorf("parse reverse geocode url: %w", err)
	}
	q := u.Query()
	q.Set("lat", strconv.FormatFloat(at.Lat, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(at.Lng, 'f', -1, 64))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return domain.Place{}, fmt.Errorf("build reverse geocode request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if l.userAgent != "" {
		req.Header.Set("User-Agent", l.userAgent)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return domain.Place{}, fmt.Errorf("reverse geocode request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.Place{}, fmt.Errorf("reverse geocode status %d: %w", resp.StatusCode, apperrors.ErrUnavailable)
	}

	var place domain.Place
	if err := json.NewDecoder(resp.Body).Decode(&place); err != nil {
		return domain.Place{}, fmt.Errorf("decode reverse geocode response: %w", err)
	}
	return place, nil
}
