package scanner

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net"
	"strings"
	"time"
)

// ConnectTimeout and ReadTimeout bound, respectively, how long a TCP/UDP
// connect and a single probe's read may take. They are package-level
// vars rather than constants so tests can shrink them instead of
// waiting out the production timeout.
var (
	ConnectTimeout = 5 * time.Second
	ReadTimeout    = 5 * time.Second
)

const readBufferSize = 1600

// nullProbeName is the conventional zero-byte probe used to elicit a
// banner from services that greet on connect; a read timeout on it is
// expected and tolerated rather than treated as a scan failure.
const nullProbeName = "NULL"

// NewTLSConnectorConfig builds the shared TLS client configuration used
// when rescanning an ssl*-classified service. It accepts invalid
// certificates and invalid hostnames and disables SNI, since the goal is
// fingerprinting whatever is behind the handshake, not establishing trust.
func NewTLSConnectorConfig() *tls.Config {
	return &tls.Config{
		InsecureSkipVerify: true,
		ServerName:         "",
	}
}

// Scan drives a single target through its full probe sequence, TLS
// rescan included. It is the entry point scan pipelines call per target.
// probes is ordered the same way the catalog was read; callers pick
// catalog.TCPProbes or catalog.UDPProbes depending on which transport
// they're scanning. TLS rescan only ever re-runs over TCP, since a TLS
// handshake over a connectionless socket isn't meaningful.
func Scan(ctx context.Context, target Target, probes []ServiceProbe, tlsConfig *tls.Config, logger *slog.Logger) (Detection, ScanError) {
	if logger == nil {
		logger = slog.Default()
	}

	outer, err := scanSequence(ctx, target, probes, false, tlsConfig, logger)
	if err != nil {
		return Detection{}, err
	}

	if !strings.HasPrefix(outer.ServiceMatch.Service, "ssl") || len(probes) == 0 || probes[0].Probe.Transport != TCP {
		return Detection{Outer: outer}, nil
	}

	logger.Info("plaintext match classified as ssl-wrapped, rescanning over tls",
		"target", target.Address(), "service", outer.ServiceMatch.Service)

	inner, innerErr := scanSequence(ctx, target, probes, true, tlsConfig, logger)
	if innerErr != nil {
		return Detection{Outer: outer, WithTLS: true, InnerErr: innerErr}, nil
	}
	return Detection{Outer: outer, WithTLS: true, Inner: inner}, nil
}

// scanSequence attempts each probe, in catalog order, against a fresh
// connection until one matches. The last non-matching response is
// carried across probes: a subsequent connect failure after a partial
// response is reported as NoDetection(previous response) rather than as
// a raw I/O error, per spec.md §4.5 step 1.
func scanSequence(ctx context.Context, target Target, probes []ServiceProbe, useTLS bool, tlsConfig *tls.Config, logger *slog.Logger) (DetectionInner, ScanError) {
	addr := target.Address()
	buf := make([]byte, readBufferSize)
	var lastResponse []byte

	dialer := net.Dialer{Timeout: ConnectTimeout}

	for _, sp := range probes {
		network := strings.ToLower(sp.Probe.Transport.String())
		conn, err := dialer.DialContext(ctx, network, addr)
		if err != nil {
			if lastResponse != nil {
				return DetectionInner{}, &NoDetectionError{Response: lastResponse}
			}
			return DetectionInner{}, classifyNetErr(err)
		}

		stream, err := negotiateStream(ctx, conn, useTLS, tlsConfig)
		if err != nil {
			conn.Close()
			return DetectionInner{}, err
		}

		detection, scanErr := runProbe(stream, sp, buf)
		stream.Close()

		if scanErr == nil {
			logger.Debug("probe matched", "target", addr, "probe", sp.Probe.Name, "service", detection.ServiceMatch.Service)
			return detection, nil
		}

		var noDetection *NoDetectionError
		if errors.As(scanErr, &noDetection) {
			lastResponse = noDetection.Response
			logger.Debug("probe did not match", "target", addr, "probe", sp.Probe.Name)
			continue
		}

		var timeoutErr *TimeoutError
		if errors.As(scanErr, &timeoutErr) {
			if sp.Probe.Name == nullProbeName {
				logger.Debug("null probe timed out, continuing", "target", addr)
				continue
			}
			return DetectionInner{}, scanErr
		}

		return DetectionInner{}, scanErr
	}

	return DetectionInner{}, &NoDetectionError{Response: lastResponse}
}

func negotiateStream(ctx context.Context, conn net.Conn, useTLS bool, tlsConfig *tls.Config) (net.Conn, ScanError) {
	if !useTLS {
		return conn, nil
	}

	tlsConn := tls.Client(conn, tlsConfig)
	hsCtx, cancel := context.WithTimeout(ctx, ConnectTimeout)
	defer cancel()
	if err := tlsConn.HandshakeContext(hsCtx); err != nil {
		return nil, &TLSError{Err: err}
	}
	return tlsConn, nil
}

// runProbe writes a probe's payload (if any) and reads up to
// readBufferSize bytes, then matches the response against the probe's
// directives.
func runProbe(stream net.Conn, sp ServiceProbe, buf []byte) (DetectionInner, ScanError) {
	if len(sp.Probe.Data) > 0 {
		if err := stream.SetWriteDeadline(time.Now().Add(ReadTimeout)); err != nil {
			return DetectionInner{}, &IoError{Err: err}
		}
		if _, err := stream.Write(sp.Probe.Data); err != nil {
			return DetectionInner{}, classifyNetErr(err)
		}
	}

	if err := stream.SetReadDeadline(time.Now().Add(ReadTimeout)); err != nil {
		return DetectionInner{}, &IoError{Err: err}
	}

	n, err := stream.Read(buf)
	if err != nil && n == 0 {
		return DetectionInner{}, classifyNetErr(err)
	}

	response := append([]byte(nil), buf[:n]...)
	if match := checkMatch(sp.Directives, response); match != nil {
		return DetectionInner{Response: response, ServiceMatch: *match}, nil
	}
	return DetectionInner{}, &NoDetectionError{Response: response}
}

func classifyNetErr(err error) ScanError {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{}
	}
	return &IoError{Err: err}
}
