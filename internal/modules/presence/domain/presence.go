package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const EarthRadiusMeters = 6371000.0

const (
	MessageUnsupported = "Perangkat tidak mendukung GPS."
	MessageUnavailable = "Lokasi tidak tersedia. Aktifkan GPS."
	AddressNoLocation  = "Lokasi tidak tersedia."
)

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f, %.6f", c.Lat, c.Lng)
}

// GeoFix is a single location reading. Timestamp comes from the device clock.
type GeoFix struct {
	Coordinate
	Accuracy  float64
	Timestamp time.Time
}

type OfficeSite struct {
	Center            Coordinate
	RadiusMeters      float64
	MaxAccuracyMeters float64
	MaxFixAge         time.Duration
}

func DefaultOfficeSite() OfficeSite {
	return OfficeSite{
		Center:            Coordinate{Lat: -6.1421841, Lng: 106.8164501},
		RadiusMeters:      200,
		MaxAccuracyMeters: 80,
		MaxFixAge:         120 * time.Second,
	}
}

// Distance is the haversine great-circle distance in meters.
func Distance(a, b Coordinate) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusMeters * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

type VerdictKind string

const (
	VerdictPending     VerdictKind = "pending"
	VerdictEvaluated   VerdictKind = "evaluated"
	VerdictUnsupported VerdictKind = "unsupported"
	VerdictUnavailable VerdictKind = "unavailable"
)

// Reason names the first failing predicate, in radius, accuracy, freshness order.
type Reason string

const (
	ReasonNone        Reason = ""
	ReasonRadius      Reason = "radius"
	ReasonAccuracy    Reason = "accuracy"
	ReasonFreshness   Reason = "freshness"
	ReasonUnsupported Reason = "unsupported"
	ReasonUnavailable Reason = "unavailable"
)

type Verdict struct {
	Generation         uint64
	Kind               VerdictKind
	Fix                GeoFix
	DistanceMeters     float64
	AccuracyMeters     int
	Age                time.Duration
	WithinRadius       bool
	AccuracyAcceptable bool
	FreshEnough        bool
	Allowed            bool
	Reason             Reason
	Explanation        string
	Address            string
	AddressResolved    bool
	EvaluatedAt        time.Time
}

func (v Verdict) HasFix() bool {
	return v.Kind == VerdictEvaluated
}

func Unsupported(now time.Time) Verdict {
	return Verdict{
		Kind:            VerdictUnsupported,
		Reason:          ReasonUnsupported,
		Explanation:     MessageUnsupported,
		Address:         AddressNoLocation,
		AddressResolved: true,
		EvaluatedAt:     now,
	}
}

func Unavailable(now time.Time) Verdict {
	return Verdict{
		Kind:            VerdictUnavailable,
		Reason:          ReasonUnavailable,
		Explanation:     MessageUnavailable,
		Address:         AddressNoLocation,
		AddressResolved: true,
		EvaluatedAt:     now,
	}
}

// Evaluate classifies fix against site. Accuracy is rounded to whole meters and must be positive.
func Evaluate(site OfficeSite, fix GeoFix, now time.Time) Verdict {
	age := now.Sub(fix.Timestamp)
	if age < 0 {
		age = 0
	}
	accuracy := RoundAccuracy(fix.Accuracy)
	distance := Distance(fix.Coordinate, site.Center)

	v := Verdict{
		Kind:               VerdictEvaluated,
		Fix:                fix,
		DistanceMeters:     distance,
		AccuracyMeters:     accuracy,
		Age:                age,
		WithinRadius:       distance <= site.RadiusMeters,
		AccuracyAcceptable: accuracy > 0 && float64(accuracy) <= site.MaxAccuracyMeters,
		FreshEnough:        age <= site.MaxFixAge,
		EvaluatedAt:        now,
	}
	v.Allowed = v.WithinRadius && v.AccuracyAcceptable && v.FreshEnough

	accuracyText := ""
	if accuracy > 0 {
		accuracyText = fmt.Sprintf("Akurasi ±%dm.", accuracy)
	}
	switch {
	case !v.WithinRadius:
		v.Reason = ReasonRadius
		v.Explanation = fmt.Sprintf("Di luar radius kantor (%dm dari titik). %s", int(math.Round(distance)), accuracyText)
	case !v.AccuracyAcceptable:
		v.Reason = ReasonAccuracy
		v.Explanation = fmt.Sprintf("Akurasi GPS terlalu rendah (maks %sm). %s", trimFloat(site.MaxAccuracyMeters), accuracyText)
	case !v.FreshEnough:
		v.Reason = ReasonFreshness
		v.Explanation = fmt.Sprintf("Lokasi sudah terlalu lama. Lokasi terlalu lama (%d detik).", int(math.Round(age.Seconds())))
	default:
		v.Explanation = fmt.Sprintf("Dalam radius kantor (%sm). %s", trimFloat(site.RadiusMeters), accuracyText)
	}
	v.Explanation = strings.TrimSpace(v.Explanation)
	return v
}

// RoundAccuracy rounds a reported accuracy to whole meters.
func RoundAccuracy(meters float64) int {
	return int(math.Round(meters))
}

func trimFloat(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}
