// Package scanner implements the probe catalog parser, the match engine,
// and the concurrent scan engine that together detect services behind
// TCP endpoints using the nmap-service-probes fingerprint format.
package scanner

import (
	"fmt"

	"github.com/dlclark/regexp2"
)

// TransportProtocol is the transport a Probe is sent over.
type TransportProtocol int

const (
	TCP TransportProtocol = iota
	UDP
)

func (t TransportProtocol) String() string {
	if t == UDP {
		return "UDP"
	}
	return "TCP"
}

// Target is a single scan endpoint read from the input stream.
type Target struct {
	IP     string `json:"ip"`
	Domain string `json:"domain,omitempty"`
	Port   uint16 `json:"port"`
}

func (t Target) Address() string {
	return fmt.Sprintf("%s:%d", t.IP, t.Port)
}

// Probe is a named payload/transport pair sent to a target.
type Probe struct {
	Transport TransportProtocol
	Name      string
	Data      []byte
	NoPayload bool
}

// Match is a regex-plus-service-label fingerprinting rule.
type Match struct {
	Service        string         `json:"service"`
	Pattern        string         `json:"pattern"`
	PatternOptions string         `json:"pattern_options,omitempty"`
	VersionInfo    string         `json:"version_info,omitempty"`
	Regex          *regexp2.Regexp `json:"-"`
}

// ProbeDirectives holds the non-payload directives that follow a Probe
// line in the catalog, up to (but not including) the next Probe line.
type ProbeDirectives struct {
	Matches      []Match
	SoftMatches  []Match
	Ports        []uint16
	SSLPorts     []uint16
	TotalWaitMs  *uint32
	TCPWrappedMs *uint32
	Rarity       *uint32
	Fallback     []string
}

// ServiceProbe pairs a Probe with the directives that govern it.
type ServiceProbe struct {
	Probe      Probe
	Directives ProbeDirectives
}

// ServiceProbes is the catalog assembled from a probe file. Order of
// insertion within each slice equals order of appearance in the source.
type ServiceProbes struct {
	TCPProbes []ServiceProbe
	UDPProbes []ServiceProbe
}
