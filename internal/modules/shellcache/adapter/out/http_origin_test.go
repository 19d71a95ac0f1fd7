package out_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	shelladapter "worktime/internal/modules/shellcache/adapter/out"
	"worktime/internal/modules/shellcache/domain"
	apperrors "worktime/internal/platform/errors"
)

func TestHTTPOriginReload(t *testing.T) {
	t.Parallel()
	var cacheControl string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cacheControl = r.Header.Get("Cache-Control")
		w.Header().Set("Content-Type", "text/css")
		_, _ = w.Write([]byte("body{}"))
	}))
	defer server.Close()

	resp, err := shelladapter.NewHTTPOrigin(time.Second).Fetch(context.Background(), domain.Request{URL: server.URL + "/styles.css"}, true)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if cacheControl != "no-cache" || resp.Status != 200 || resp.ContentType != "text/css" || string(resp.Body) != "body{}" {
		t.Fatalf("unexpected response %+v cache-control=%q", resp, cacheControl)
	}
}

func TestHTTPOriginForwardsBodyAndHeaders(t *testing.T) {
	t.Parallel()
	var method, body, csrf string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		method, body = r.Method, string(raw)
		csrf = r.Header.Get("X-CSRF-TOKEN")
		w.Header().Add("Set-Cookie", "a=1")
		w.Header().Add("Set-Cookie", "b=2")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	req := domain.Request{
		Method: http.MethodPost,
		URL:    server.URL + "/absen/checkin",
		Header: http.Header{
			"X-Csrf-Token": {"tok"},
			"Content-Type": {"application/json"},
		},
		Body: []byte(`{"lat":-6.14}`),
	}
	resp, err := shelladapter.NewHTTPOrigin(time.Second).Fetch(context.Background(), req, false)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if method != http.MethodPost || body != `{"lat":-6.14}` || csrf != "tok" {
		t.Fatalf("origin saw method=%s body=%q csrf=%q", method, body, csrf)
	}
	if resp.Status != http.StatusCreated || len(resp.Header.Values("Set-Cookie")) != 2 {
		t.Fatalf("unexpected response %d %v", resp.Status, resp.Header)
	}
	if resp.Header.Get("Content-Length") != "" {
		t.Fatalf("content-length should not be relayed: %v", resp.Header)
	}
}

func TestHTTPOriginRejectsOversizedBody(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(bytes.Repeat([]byte("x"), 16<<20+1))
	}))
	defer server.Close()

	_, err := shelladapter.NewHTTPOrigin(5*time.Second).Fetch(context.Background(), domain.Request{URL: server.URL + "/big.js"}, false)
	if !errors.Is(err, apperrors.ErrUnavailable) {
		t.Fatalf("expected oversized body to fail, got %v", err)
	}
}
