package scanner

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// catalogParser drives a single peekable pass over the probe catalog's
// lines. The two parsing phases — reading a probe's non-match directives,
// then collecting its match/softmatch lines — are methods on this struct
// rather than functions threading a borrowed iterator between themselves,
// per the design notes: there is exactly one mutable cursor over the file.
type catalogParser struct {
	scanner *bufio.Scanner
	lineNo  int
	pending *string
	logger  *slog.Logger
}

// ReadServiceProbesFile opens path and parses it as an nmap-service-probes
// catalog. Any parse failure (malformed directive, pattern that fails to
// compile) is a fatal, non-recoverable error.
func ReadServiceProbesFile(path string, logger *slog.Logger) (ServiceProbes, error) {
	f, err := os.Open(path)
	if err != nil {
		return ServiceProbes{}, fmt.Errorf("cannot open probe catalog %s: %w", path, err)
	}
	defer f.Close()

	return ReadServiceProbes(f, logger)
}

// ReadServiceProbes parses a catalog from an arbitrary reader.
func ReadServiceProbes(r io.Reader, logger *slog.Logger) (ServiceProbes, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p := &catalogParser{scanner: bufio.NewScanner(r), logger: logger}
	p.scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var catalog ServiceProbes
	for {
		line, ok, err := p.nextSignificantLine()
		if err != nil {
			return ServiceProbes{}, err
		}
		if !ok {
			break
		}

		if !strings.HasPrefix(line, "Probe") {
			logger.Warn("ignoring directive outside of any probe", "line", p.lineNo)
			continue
		}

		probe, err := parseProbeLine(line)
		if err != nil {
			return ServiceProbes{}, fmt.Errorf("line %d: %w", p.lineNo, err)
		}

		directives, err := p.readDirectives()
		if err != nil {
			return ServiceProbes{}, err
		}

		sp := ServiceProbe{Probe: probe, Directives: directives}
		switch probe.Transport {
		case TCP:
			catalog.TCPProbes = append(catalog.TCPProbes, sp)
		case UDP:
			catalog.UDPProbes = append(catalog.UDPProbes, sp)
		}
	}

	if err := p.scanner.Err(); err != nil {
		return ServiceProbes{}, fmt.Errorf("error reading probe catalog: %w", err)
	}
	return catalog, nil
}

func (p *catalogParser) nextRawLine() (string, bool, error) {
	if p.pending != nil {
		line := *p.pending
		p.pending = nil
		return line, true, nil
	}
	if !p.scanner.Scan() {
		return "", false, p.scanner.Err()
	}
	p.lineNo++
	return p.scanner.Text(), true, nil
}

func (p *catalogParser) pushBack(line string) {
	p.pending = &line
}

// nextSignificantLine returns the next line that is neither blank nor a
// '#'-comment.
func (p *catalogParser) nextSignificantLine() (string, bool, error) {
	for {
		line, ok, err := p.nextRawLine()
		if err != nil || !ok {
			return "", ok, err
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		return trimmed, true, nil
	}
}

// readDirectives consumes directive and match lines belonging to the
// probe just parsed, stopping at (and pushing back) the next Probe line
// or EOF. Once the first match/softmatch line is seen, only further
// match/softmatch lines are collected (spec.md §4.3 step 3).
func (p *catalogParser) readDirectives() (ProbeDirectives, error) {
	var d ProbeDirectives
	inMatches := false

	for {
		line, ok, err := p.nextSignificantLine()
		if err != nil {
			return d, err
		}
		if !ok {
			break
		}
		if strings.HasPrefix(line, "Probe") {
			p.pushBack(line)
			break
		}

		isSoft := strings.HasPrefix(line, "softmatch")
		isHard := !isSoft && strings.HasPrefix(line, "match")
		if isHard || isSoft {
			inMatches = true
			m, soft, err := parseMatchLine(line)
			if err != nil {
				return d, fmt.Errorf("line %d: %w", p.lineNo, err)
			}
			if soft {
				d.SoftMatches = append(d.SoftMatches, m)
			} else {
				d.Matches = append(d.Matches, m)
			}
			continue
		}

		if inMatches {
			continue
		}

		if err := p.applyDirective(&d, line); err != nil {
			return d, fmt.Errorf("line %d: %w", p.lineNo, err)
		}
	}

	return d, nil
}

func (p *catalogParser) applyDirective(d *ProbeDirectives, line string) error {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return nil
	}

	switch fields[0] {
	case "ports":
		ports, err := parsePortList(fields[1])
		if err != nil {
			return fmt.Errorf("ports: %w", err)
		}
		d.Ports = ports
	case "sslports":
		ports, err := parsePortList(fields[1])
		if err != nil {
			return fmt.Errorf("sslports: %w", err)
		}
		d.SSLPorts = ports
	case "totalwaitms":
		v, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return fmt.Errorf("totalwaitms: %w", err)
		}
		v32 := uint32(v)
		d.TotalWaitMs = &v32
	case "tcpwrappedms":
		v, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return fmt.Errorf("tcpwrappedms: %w", err)
		}
		v32 := uint32(v)
		d.TCPWrappedMs = &v32
	case "rarity":
		v, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return fmt.Errorf("rarity: %w", err)
		}
		v32 := uint32(v)
		d.Rarity = &v32
	case "fallback":
		d.Fallback = strings.Split(fields[1], ",")
	default:
		p.logger.Debug("ignoring unrecognized directive", "directive", fields[0], "line", p.lineNo)
	}
	return nil
}

// parsePortList parses a comma-separated list of ports and port ranges
// ("N" or "M-N").
func parsePortList(s string) ([]uint16, error) {
	var out []uint16
	for _, part := range strings.Split(s, ",") {
		if idx := strings.IndexByte(part, '-'); idx != -1 {
			start, err := strconv.ParseUint(part[:idx], 10, 16)
			if err != nil {
				return nil, fmt.Errorf("invalid port range %q: %w", part, err)
			}
			end, err := strconv.ParseUint(part[idx+1:], 10, 16)
			if err != nil {
				return nil, fmt.Errorf("invalid port range %q: %w", part, err)
			}
			for v := start; v <= end; v++ {
				out = append(out, uint16(v))
			}
			continue
		}
		v, err := strconv.ParseUint(part, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid port %q: %w", part, err)
		}
		out = append(out, uint16(v))
	}
	return out, nil
}
