package domain_test

import (
	"math"
	"strings"
	"testing"
	"time"

	"worktime/internal/modules/presence/domain"
)

var office = domain.DefaultOfficeSite()

func TestDistanceSymmetricAndZero(t *testing.T) {
	t.Parallel()
	a := domain.Coordinate{Lat: -6.1421841, Lng: 106.8164501}
	b := domain.Coordinate{Lat: -6.2, Lng: 106.9}
	if d := domain.Distance(a, a); d != 0 {
		t.Fatalf("expected zero distance, got %v", d)
	}
	if ab, ba := domain.Distance(a, b), domain.Distance(b, a); math.Abs(ab-ba) > 1e-9 {
		t.Fatalf("expected symmetric distance, got %v vs %v", ab, ba)
	}
}

func TestDistanceKnownValue(t *testing.T) {
	t.Parallel()
	// One degree of latitude on a 6371 km sphere.
	d := domain.Distance(domain.Coordinate{Lat: 0, Lng: 0}, domain.Coordinate{Lat: 1, Lng: 0})
	if math.Abs(d-111194.93) > 0.1 {
		t.Fatalf("unexpected distance %v", d)
	}
}

func TestEvaluateAllowedAtOffice(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	v := domain.Evaluate(office, domain.GeoFix{Coordinate: office.Center, Accuracy: 10, Timestamp: now}, now)
	if !v.Allowed || !v.WithinRadius || !v.AccuracyAcceptable || !v.FreshEnough {
		t.Fatalf("expected allowed verdict, got %+v", v)
	}
	if v.Explanation != "Dalam radius kantor (200m). Akurasi ±10m." {
		t.Fatalf("unexpected explanation %q", v.Explanation)
	}
}

func TestEvaluateOutsideRadius(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	// ~500 m north of the office.
	far := domain.Coordinate{Lat: office.Center.Lat + 0.0045, Lng: office.Center.Lng}
	v := domain.Evaluate(office, domain.GeoFix{Coordinate: far, Accuracy: 10, Timestamp: now}, now)
	if v.Allowed || v.WithinRadius {
		t.Fatalf("expected outside radius, got %+v", v)
	}
	if v.Reason != domain.ReasonRadius {
		t.Fatalf("expected radius reason, got %q", v.Reason)
	}
	if !strings.Contains(v.Explanation, "500m dari titik") {
		t.Fatalf("expected distance in explanation, got %q", v.Explanation)
	}
}

func TestEvaluateRadiusCheckedBeforeAccuracy(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	near := domain.Coordinate{Lat: office.Center.Lat + 0.0005, Lng: office.Center.Lng}
	v := domain.Evaluate(office, domain.GeoFix{Coordinate: near, Accuracy: 150, Timestamp: now}, now)
	if v.Allowed || !v.WithinRadius || v.AccuracyAcceptable {
		t.Fatalf("unexpected predicates %+v", v)
	}
	if v.Explanation != "Akurasi GPS terlalu rendah (maks 80m). Akurasi ±150m." {
		t.Fatalf("unexpected explanation %q", v.Explanation)
	}

	far := domain.Coordinate{Lat: office.Center.Lat + 0.01, Lng: office.Center.Lng}
	v = domain.Evaluate(office, domain.GeoFix{Coordinate: far, Accuracy: 150, Timestamp: now}, now)
	if v.Reason != domain.ReasonRadius {
		t.Fatalf("expected radius to win over accuracy, got %q", v.Reason)
	}
}

func TestEvaluateStaleFix(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	fix := domain.GeoFix{Coordinate: office.Center, Accuracy: 10, Timestamp: now.Add(-130 * time.Second)}
	v := domain.Evaluate(office, fix, now)
	if v.Allowed || v.FreshEnough {
		t.Fatalf("expected stale verdict, got %+v", v)
	}
	if v.Explanation != "Lokasi sudah terlalu lama. Lokasi terlalu lama (130 detik)." {
		t.Fatalf("unexpected explanation %q", v.Explanation)
	}
}

func TestEvaluateFutureTimestampClampsAge(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	v := domain.Evaluate(office, domain.GeoFix{Coordinate: office.Center, Accuracy: 5, Timestamp: now.Add(time.Minute)}, now)
	if v.Age != 0 || !v.FreshEnough {
		t.Fatalf("expected clamped age, got %v", v.Age)
	}
}

func TestEvaluateZeroAccuracyRejected(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	v := domain.Evaluate(office, domain.GeoFix{Coordinate: office.Center, Accuracy: 0.4, Timestamp: now}, now)
	if v.AccuracyAcceptable || v.Allowed {
		t.Fatalf("expected rounded zero accuracy to be rejected")
	}
	if v.Explanation != "Akurasi GPS terlalu rendah (maks 80m)." {
		t.Fatalf("unexpected explanation %q", v.Explanation)
	}
}

func TestTerminalVerdicts(t *testing.T) {
	t.Parallel()
	now := time.Now()
	u := domain.Unsupported(now)
	if u.Allowed || u.Explanation != domain.MessageUnsupported || u.Address != domain.AddressNoLocation {
		t.Fatalf("unexpected unsupported verdict %+v", u)
	}
	f := domain.Unavailable(now)
	if f.Allowed || f.HasFix() || f.Explanation != "Lokasi tidak tersedia. Aktifkan GPS." {
		t.Fatalf("unexpected unavailable verdict %+v", f)
	}
}

func TestCoordinateString(t *testing.T) {
	t.Parallel()
	if got := office.Center.String(); got != "-6.142184, 106.816450" {
		t.Fatalf("unexpected coordinate text %q", got)
	}
}
