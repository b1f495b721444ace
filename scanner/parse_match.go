package scanner

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/dlclark/regexp2"
)

// matchRegexTimeout bounds a single regex evaluation so a pathological
// catalog pattern cannot hang a scan; regexp2's backtracking engine has no
// RE2-style linear-time guarantee.
const matchRegexTimeout = 2 * time.Second

// parseMatchLine parses a line of the form:
//
//	<match|softmatch> <service> <m><DELIM><pattern><DELIM>[options] [version-info…]
//
// Returns the parsed Match and whether it was a softmatch. A pattern that
// fails to compile is returned as an error, which callers must treat as a
// fatal catalog load error per spec.
func parseMatchLine(line string) (Match, bool, error) {
	var soft bool
	var rest string
	switch {
	case strings.HasPrefix(line, "softmatch "):
		soft = true
		rest = strings.TrimPrefix(line, "softmatch ")
	case strings.HasPrefix(line, "match "):
		rest = strings.TrimPrefix(line, "match ")
	default:
		return Match{}, false, fmt.Errorf("not a match line: %q", line)
	}

	fields := strings.Fields(rest)
	if len(fields) < 2 {
		return Match{}, soft, fmt.Errorf("invalid match line: %q", line)
	}
	service := fields[0]
	patternRegion := strings.Join(fields[1:], " ")
	if len(patternRegion) < 2 {
		return Match{}, soft, fmt.Errorf("missing pattern delimiter for service %q", service)
	}

	delim := patternRegion[1]
	openIdx := strings.IndexByte(patternRegion, delim)
	if openIdx == -1 {
		return Match{}, soft, fmt.Errorf("missing opening pattern delimiter for service %q", service)
	}
	afterOpen := patternRegion[openIdx+1:]
	closeIdx := strings.IndexByte(afterOpen, delim)
	if closeIdx == -1 {
		return Match{}, soft, fmt.Errorf("missing closing pattern delimiter for service %q", service)
	}

	pattern := afterOpen[:closeIdx]
	remainder := afterOpen[closeIdx+1:]

	var options, versionInfo string
	if len(remainder) > 0 && !unicode.IsSpace(rune(remainder[0])) {
		if end := strings.IndexFunc(remainder, unicode.IsSpace); end == -1 {
			options = remainder
		} else {
			options = remainder[:end]
			versionInfo = remainder[end:]
		}
	} else {
		versionInfo = remainder
	}
	versionInfo = strings.TrimSpace(versionInfo)

	regex, err := compileMatchPattern(pattern, options)
	if err != nil {
		return Match{}, soft, fmt.Errorf("failed to compile pattern for service %q: %w", service, err)
	}

	return Match{
		Service:        service,
		Pattern:        pattern,
		PatternOptions: options,
		VersionInfo:    versionInfo,
		Regex:          regex,
	}, soft, nil
}

// compileMatchPattern compiles pattern with regexp2, which (unlike Go's
// stdlib RE2 engine) supports the lookaround and backreference constructs
// nmap-service-probes patterns rely on.
func compileMatchPattern(pattern, options string) (*regexp2.Regexp, error) {
	opts := regexp2.RegexOptions(0)
	if strings.Contains(options, "i") {
		opts |= regexp2.IgnoreCase
	}
	if strings.Contains(options, "s") {
		opts |= regexp2.Singleline
	}

	re, err := regexp2.Compile(pattern, opts)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = matchRegexTimeout
	return re, nil
}
