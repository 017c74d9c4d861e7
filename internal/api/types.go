package api

import "cuesynth/internal/track"

// Version is reported by /health.
const Version = "0.1.0"

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptimeS"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"requestId,omitempty"`
}

// KindResponse describes one supported kind.
type KindResponse struct {
	Kind            string  `json:"kind"`
	Style           string  `json:"style"`
	TimeDriftMs     uint64  `json:"timeDriftMs"`
	TimelineDriftMs uint64  `json:"timelineDriftMs"`
	PositionDrift   float64 `json:"positionDrift"`
	MinConfidence   float64 `json:"minConfidence"`
}

// KindsResponse is returned by GET /v1/kinds.
type KindsResponse struct {
	Kinds []KindResponse `json:"kinds"`
}

// TrackRequest is the body of POST /v1/tracks/{kind}. When Keys is empty the
// objects under Prefix are listed.
type TrackRequest struct {
	Bucket     string   `json:"bucket"`
	Prefix     string   `json:"prefix"`
	Keys       []string `json:"keys"`
	DestBucket string   `json:"destBucket"`
	DestPrefix string   `json:"destPrefix"`
}

// FromParams converts a kind's parameter record.
func FromParams(kind string, params track.Params) KindResponse {
	return KindResponse{
		Kind:            kind,
		Style:           params.Style.String(),
		TimeDriftMs:     params.TimeDriftMs,
		TimelineDriftMs: params.TimelineDriftMs,
		PositionDrift:   params.PositionDrift,
		MinConfidence:   params.MinConfidence,
	}
}
