package scanner

import (
	"encoding/base64"
	"testing"
)

func TestShapeOutputPlaintextMatch(t *testing.T) {
	target := Target{IP: "192.0.2.1", Port: 80}
	detection := Detection{Outer: DetectionInner{
		Response:     []byte("HTTP/1.1 200 OK\r\n"),
		ServiceMatch: Match{Service: "http"},
	}}

	out := ShapeOutput(target, detection, nil, 1700000000)

	if out.TLS {
		t.Errorf("TLS = true, want false")
	}
	if out.Error != "" {
		t.Errorf("Error = %q, want empty", out.Error)
	}
	if out.Response == "" {
		t.Errorf("Response is empty, want base64 of the banner")
	}
	if out.ServiceMatch == nil || out.ServiceMatch.Service != "http" {
		t.Errorf("ServiceMatch = %+v, want service http", out.ServiceMatch)
	}
}

func TestShapeOutputScanError(t *testing.T) {
	target := Target{IP: "192.0.2.1", Port: 80}
	out := ShapeOutput(target, Detection{}, &TimeoutError{}, 1700000000)

	if out.Error != "deadline has elapsed" {
		t.Errorf("Error = %q, want %q", out.Error, "deadline has elapsed")
	}
	if out.Response != "" || out.ServiceMatch != nil {
		t.Errorf("expected no response/match fields set on a terminal error")
	}
}

func TestShapeOutputNoDetectionError(t *testing.T) {
	target := Target{IP: "192.0.2.1", Port: 80}
	out := ShapeOutput(target, Detection{}, &NoDetectionError{Response: []byte("probe-a-bytes")}, 1700000000)

	if out.Error != "No Detection" {
		t.Errorf("Error = %q, want %q", out.Error, "No Detection")
	}
	if out.Response == "" {
		t.Fatalf("Response is empty, want base64 of the carried-forward response")
	}
	want := base64.StdEncoding.EncodeToString([]byte("probe-a-bytes"))
	if out.Response != want {
		t.Errorf("Response = %q, want %q", out.Response, want)
	}
}

func TestShapeOutputTLSRescanNoDetectionError(t *testing.T) {
	target := Target{IP: "192.0.2.1", Port: 443}
	detection := Detection{
		Outer:    DetectionInner{Response: []byte("banner"), ServiceMatch: Match{Service: "sslwrapped"}},
		WithTLS:  true,
		InnerErr: &NoDetectionError{Response: []byte("inner-probe-bytes")},
	}

	out := ShapeOutput(target, detection, nil, 1700000000)

	if !out.TLS {
		t.Errorf("TLS = false, want true")
	}
	if out.TLSError != "No Detection" {
		t.Errorf("TLSError = %q, want %q", out.TLSError, "No Detection")
	}
	want := base64.StdEncoding.EncodeToString([]byte("inner-probe-bytes"))
	if out.TLSResponse != want {
		t.Errorf("TLSResponse = %q, want %q", out.TLSResponse, want)
	}
	if out.TLSServiceMatch != nil {
		t.Errorf("expected no tls service match set when the rescan failed")
	}
}

func TestShapeOutputTLSRescanFailure(t *testing.T) {
	target := Target{IP: "192.0.2.1", Port: 443}
	detection := Detection{
		Outer:    DetectionInner{Response: []byte("banner"), ServiceMatch: Match{Service: "sslwrapped"}},
		WithTLS:  true,
		InnerErr: &TLSError{Err: errTest{"handshake failure"}},
	}

	out := ShapeOutput(target, detection, nil, 1700000000)

	if !out.TLS {
		t.Errorf("TLS = false, want true")
	}
	if out.TLSError == "" {
		t.Errorf("TLSError is empty, want the handshake failure message")
	}
	if out.TLSResponse != "" || out.TLSServiceMatch != nil {
		t.Errorf("expected no tls response/match fields set when the rescan failed")
	}
}

type errTest struct{ msg string }

func (e errTest) Error() string { return e.msg }
