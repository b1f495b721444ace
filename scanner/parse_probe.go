package scanner

import (
	"fmt"
	"strings"
)

// parseProbeLine parses a line of the form:
//
//	Probe <TCP|UDP> <name> <q><DELIM><escaped-bytes><DELIM> [no-payload]
//
// The first three whitespace-separated fields are the literal "Probe",
// the transport, and the probe name. The remaining fields are rejoined
// with a single space to form the payload region, since the payload
// itself may contain spaces. The second character of that region is the
// delimiter, reused to close the payload.
func parseProbeLine(line string) (Probe, error) {
	fields := strings.Fields(line)
	if len(fields) < 4 || fields[0] != "Probe" {
		return Probe{}, fmt.Errorf("not a probe line: %q", line)
	}

	var transport TransportProtocol
	switch fields[1] {
	case "TCP":
		transport = TCP
	case "UDP":
		transport = UDP
	default:
		return Probe{}, fmt.Errorf("unknown transport %q", fields[1])
	}
	name := fields[2]

	payloadRegion := strings.Join(fields[3:], " ")
	if len(payloadRegion) < 2 {
		return Probe{}, fmt.Errorf("missing payload delimiter in probe %q", name)
	}

	delim := payloadRegion[1]
	openIdx := strings.IndexByte(payloadRegion, delim)
	if openIdx == -1 {
		return Probe{}, fmt.Errorf("missing opening delimiter %q in probe %q", delim, name)
	}
	afterOpen := payloadRegion[openIdx+1:]
	closeIdx := strings.IndexByte(afterOpen, delim)
	if closeIdx == -1 {
		return Probe{}, fmt.Errorf("missing closing delimiter %q in probe %q", delim, name)
	}

	data, err := unescape(afterOpen[:closeIdx])
	if err != nil {
		return Probe{}, fmt.Errorf("cannot unescape payload of probe %q: %w", name, err)
	}

	noPayload := false
	if trailer := strings.TrimSpace(afterOpen[closeIdx+1:]); trailer != "" {
		if flag := strings.Fields(trailer); len(flag) > 0 && flag[0] == "no-payload" {
			noPayload = true
		}
	}

	return Probe{
		Transport: transport,
		Name:      name,
		Data:      data,
		NoPayload: noPayload,
	}, nil
}
