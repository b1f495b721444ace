package scanner

import "testing"

func mustMatch(t *testing.T, pattern, options string) Match {
	t.Helper()
	re, err := compileMatchPattern(pattern, options)
	if err != nil {
		t.Fatalf("compileMatchPattern(%q) failed: %v", pattern, err)
	}
	return Match{Service: pattern, Regex: re}
}

func TestCheckMatchHardBeatsSoft(t *testing.T) {
	d := ProbeDirectives{
		SoftMatches: []Match{func() Match { m := mustMatch(t, `^SSH`, ""); m.Service = "soft"; return m }()},
		Matches:     []Match{func() Match { m := mustMatch(t, `^SSH-2\.0`, ""); m.Service = "hard"; return m }()},
	}

	got := checkMatch(d, []byte("SSH-2.0-OpenSSH_9.0\r\n"))
	if got == nil {
		t.Fatal("expected a match, got nil")
	}
	if got.Service != "hard" {
		t.Fatalf("Service = %q, want %q (hard match must win)", got.Service, "hard")
	}
}

func TestCheckMatchFallsBackToSoft(t *testing.T) {
	d := ProbeDirectives{
		Matches:     []Match{func() Match { m := mustMatch(t, `^nonesuch`, ""); m.Service = "hard"; return m }()},
		SoftMatches: []Match{func() Match { m := mustMatch(t, `^HTTP`, ""); m.Service = "soft"; return m }()},
	}

	got := checkMatch(d, []byte("HTTP/1.1 200 OK\r\n"))
	if got == nil || got.Service != "soft" {
		t.Fatalf("checkMatch = %+v, want soft match", got)
	}
}

func TestCheckMatchNoMatch(t *testing.T) {
	d := ProbeDirectives{Matches: []Match{mustMatch(t, `^nope`, "")}}
	if got := checkMatch(d, []byte("anything")); got != nil {
		t.Fatalf("checkMatch = %+v, want nil", got)
	}
}

func TestBytesToMatchInputPreservesRawBytes(t *testing.T) {
	raw := []byte{0x00, 0xff, 0x80, 'A'}
	// \xHH here is the regex engine's own hex escape, not a Go string
	// escape, so the pattern text handed to regexp2 stays pure ASCII
	// while still matching the non-UTF8 response bytes above.
	d := ProbeDirectives{Matches: []Match{mustMatch(t, `\x00\xff\x80A`, "s")}}
	if got := checkMatch(d, raw); got == nil {
		t.Fatalf("expected raw non-UTF8 bytes to match their literal rune mapping")
	}
}
