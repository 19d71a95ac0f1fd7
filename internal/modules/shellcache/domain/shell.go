package domain

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const CacheName = "worktime-pwa-v1"

// Assets is the static shell precached on install, relative to the origin.
var Assets = []string{
	"index.html",
	"dashboard.html",
	"absen.html",
	"riwayat.html",
	"styles.css",
	"app.js",
	"sw-register.js",
	"manifest.webmanifest",
	"icons/icon-192.png",
	"icons/icon-512.png",
	"icons/apple-touch-icon.png",
	"favicon.ico",
}

type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Cacheable reports whether a network response to r may be looked up in or stored to the cache.
func (r Request) Cacheable() bool {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	return method == http.MethodGet && (strings.HasPrefix(r.URL, "http://") || strings.HasPrefix(r.URL, "https://"))
}

type Response struct {
	Status      int
	ContentType string
	Header      http.Header
	Body        []byte
	FromCache   bool
}

func (r Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

type Entry struct {
	Cache       string
	Key         string
	Status      int
	ContentType string
	Body        []byte
	StoredAt    time.Time
}

func (e Entry) Response() Response {
	return Response{Status: e.Status, ContentType: e.ContentType, Body: e.Body, FromCache: true}
}

// hopHeaders are connection-scoped and never forwarded in either direction.
// Content-Length is recomputed on write. Accept-Encoding stays with the HTTP
// client, which then hands back decoded bodies.
var hopHeaders = map[string]bool{
	"Connection":          true,
	"Keep-Alive":          true,
	"Proxy-Authenticate":  true,
	"Proxy-Authorization": true,
	"Te":                  true,
	"Trailer":             true,
	"Transfer-Encoding":   true,
	"Upgrade":             true,
	"Host":                true,
	"Content-Length":      true,
	"Accept-Encoding":     true,
}

// Forwardable reports whether a header may be relayed between the client and origin.
func Forwardable(name string) bool {
	return !hopHeaders[http.CanonicalHeaderKey(name)]
}

// Resolve turns an asset path into the absolute URL used as its cache key.
func Resolve(origin, asset string) (string, error) {
	base, err := url.Parse(strings.TrimRight(origin, "/") + "/")
	if err != nil {
		return "", fmt.Errorf("parse origin %q: %w", origin, err)
	}
	ref, err := url.Parse(asset)
	if err != nil {
		return "", fmt.Errorf("parse asset %q: %w", asset, err)
	}
	return base.ResolveReference(ref).String(), nil
}
