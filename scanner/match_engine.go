package scanner

// checkMatch evaluates response against a probe's ordered hard and soft
// match lists, returning the first hit. Hard matches are tried first and
// always win over a soft match at the same or later position.
func checkMatch(directives ProbeDirectives, response []byte) *Match {
	input := bytesToMatchInput(response)

	for i := range directives.Matches {
		if ok, err := directives.Matches[i].Regex.MatchString(input); err == nil && ok {
			m := directives.Matches[i]
			return &m
		}
	}
	for i := range directives.SoftMatches {
		if ok, err := directives.SoftMatches[i].Regex.MatchString(input); err == nil && ok {
			m := directives.SoftMatches[i]
			return &m
		}
	}
	return nil
}

// bytesToMatchInput maps raw response bytes 1:1 onto Go runes (byte value
// == rune value) rather than decoding them as UTF-8. nmap-service-probes
// patterns are written against arbitrary 8-bit response data, and
// regexp2 matches over a rune stream; decoding as UTF-8 would corrupt any
// byte >= 0x80 that isn't part of a valid UTF-8 sequence. Mapping byte
// values directly to runes (the classic Latin-1 trick) keeps every byte
// individually addressable to the regex engine, matching the raw-byte
// semantics spec.md requires without needing a byte-oriented backtracking
// engine.
func bytesToMatchInput(b []byte) string {
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}
