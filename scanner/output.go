package scanner

import (
	"encoding/base64"
	"errors"
)

// RadarOutput is the flat record emitted per target, shaped from a
// Detection or a terminal ScanError. Field names and presence match
// spec.md §4.7/§6 exactly so downstream consumers can rely on the wire
// contract regardless of which branch produced the record.
type RadarOutput struct {
	Target    Target `json:"target"`
	Timestamp int64  `json:"timestamp"`
	TLS       bool   `json:"tls"`

	Response     string `json:"response,omitempty"`
	ServiceMatch *Match `json:"service_match,omitempty"`
	Error        string `json:"error,omitempty"`

	TLSResponse     string `json:"tls_response,omitempty"`
	TLSServiceMatch *Match `json:"tls_service_match,omitempty"`
	TLSError        string `json:"tls_error,omitempty"`
}

// ShapeOutput flattens a target's scan result into a RadarOutput ready
// for serialization. now is a Unix timestamp supplied by the caller so
// this function stays free of wall-clock side effects.
func ShapeOutput(target Target, detection Detection, scanErr ScanError, now int64) RadarOutput {
	out := RadarOutput{Target: target, Timestamp: now}

	if scanErr != nil {
		out.Error = scanErr.Error()
		var noDetection *NoDetectionError
		if errors.As(scanErr, &noDetection) {
			out.Response = base64.StdEncoding.EncodeToString(noDetection.Response)
		}
		return out
	}

	out.Response = base64.StdEncoding.EncodeToString(detection.Outer.Response)
	match := detection.Outer.ServiceMatch
	out.ServiceMatch = &match

	if !detection.WithTLS {
		return out
	}

	out.TLS = true
	if detection.InnerErr != nil {
		out.TLSError = detection.InnerErr.Error()
		var noDetection *NoDetectionError
		if errors.As(detection.InnerErr, &noDetection) {
			out.TLSResponse = base64.StdEncoding.EncodeToString(noDetection.Response)
		}
		return out
	}

	out.TLSResponse = base64.StdEncoding.EncodeToString(detection.Inner.Response)
	tlsMatch := detection.Inner.ServiceMatch
	out.TLSServiceMatch = &tlsMatch
	return out
}
