package in_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	shelladapter "worktime/internal/modules/shellcache/adapter/in"
	shellout "worktime/internal/modules/shellcache/adapter/out"
	"worktime/internal/modules/shellcache/dto"
	shellin "worktime/internal/modules/shellcache/port/in"
	"worktime/internal/modules/shellcache/service"
	"worktime/internal/modules/shellcache/usecase"
	"worktime/internal/platform/clock"
	"worktime/internal/platform/sqlite"
)

type stubUsecase struct {
	shellin.Usecase
	fetched []dto.FetchInput
}

func (s *stubUsecase) Fetch(_ context.Context, input dto.FetchInput) (dto.FetchOutput, error) {
	s.fetched = append(s.fetched, input)
	return dto.FetchOutput{Status: http.StatusOK, ContentType: "text/html", Body: []byte("<h1>absen</h1>"), FromCache: true}, nil
}

func (s *stubUsecase) Status(context.Context) (dto.StatusOutput, error) {
	return dto.StatusOutput{Cache: "worktime-pwa-v1", Entries: 3, Assets: 12}, nil
}

func TestFiberAppServesThroughCache(t *testing.T) {
	t.Parallel()
	uc := &stubUsecase{}
	app := shelladapter.NewFiberApp(uc, "http://origin.test/")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/absen.html?x=1", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "<h1>absen</h1>" || resp.Header.Get("X-Worktime-Cache") != "hit" {
		t.Fatalf("unexpected response %d %q %v", resp.StatusCode, body, resp.Header)
	}
	if len(uc.fetched) != 1 || uc.fetched[0].URL != "http://origin.test/absen.html?x=1" || uc.fetched[0].Method != http.MethodGet {
		t.Fatalf("unexpected fetch %+v", uc.fetched)
	}

	if _, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil)); err != nil {
		t.Fatalf("root request: %v", err)
	}
	if uc.fetched[1].URL != "http://origin.test/index.html" {
		t.Fatalf("root should map to index.html, got %s", uc.fetched[1].URL)
	}
}

func TestFiberAppStatusEndpoint(t *testing.T) {
	t.Parallel()
	app := shelladapter.NewFiberApp(&stubUsecase{}, "http://origin.test")
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/_shell/status", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != `{"Cache":"worktime-pwa-v1","Origin":"","Entries":3,"Assets":12}` {
		t.Fatalf("unexpected status body %d %s", resp.StatusCode, body)
	}
}

func TestFiberAppPassesPostsThroughToOrigin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	var method, body, csrf, contentType string
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		method, body = r.Method, string(raw)
		csrf = r.Header.Get("X-CSRF-TOKEN")
		contentType = r.Header.Get("Content-Type")
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Request-Id", "req-1")
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	}))
	defer origin.Close()

	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "shell.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	assets, err := shellout.NewSQLiteAssetStore(ctx, db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	clk := clock.Fixed(time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC))
	uc := usecase.NewInteractor(service.NewShellService(clk, assets, shellout.NewHTTPOrigin(time.Second), origin.URL))
	app := shelladapter.NewFiberApp(uc, origin.URL)

	req := httptest.NewRequest(http.MethodPost, "/absen/checkin", strings.NewReader(`{"lat":-6.14}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-CSRF-TOKEN", "tok")
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	got, _ := io.ReadAll(resp.Body)
	if method != http.MethodPost || body != `{"lat":-6.14}` || csrf != "tok" || contentType != "application/json" {
		t.Fatalf("origin saw method=%s body=%q csrf=%q content-type=%q", method, body, csrf, contentType)
	}
	if resp.StatusCode != http.StatusOK || string(got) != `{"message":"ok"}` || resp.Header.Get("X-Request-Id") != "req-1" {
		t.Fatalf("unexpected response %d %q %v", resp.StatusCode, got, resp.Header)
	}
	if n, _ := assets.Count(ctx, "worktime-pwa-v1"); n != 0 {
		t.Fatalf("POST responses must not be cached, found %d entries", n)
	}
}
