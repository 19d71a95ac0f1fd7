package dto

import "time"

type VerdictOutput struct {
	Generation         uint64
	Kind               string
	Allowed            bool
	WithinRadius       bool
	AccuracyAcceptable bool
	FreshEnough        bool
	Reason             string
	Explanation        string
	HasFix             bool
	Lat                float64
	Lng                float64
	CoordinateText     string
	AccuracyMeters     int
	DistanceMeters     float64
	Age                time.Duration
	FixTimestamp       time.Time
	Address            string
	AddressResolved    bool
	EvaluatedAt        time.Time
}

// FixOutput is the latest usable fix with the last address known for it.
type FixOutput struct {
	Lat            float64
	Lng            float64
	AccuracyMeters int
	Timestamp      time.Time
	Age            time.Duration
	Address        string
}

type GateInput struct {
	HasCheckedIn  bool
	HasCheckedOut bool
}

// GateOutput says which presence-gated actions are enabled against the latest verdict.
type GateOutput struct {
	CheckIn     bool
	CheckOut    bool
	Allowed     bool
	Explanation string
}
