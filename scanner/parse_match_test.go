package scanner

import "testing"

func TestParseMatchLine(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		wantService string
		wantSoft    bool
		wantVersion string
		wantErr     bool
	}{
		{
			name:        "hard match with version info",
			line:        `match ftp m/^220.*FileZilla Server/ p/FileZilla ftpd/`,
			wantService: "ftp",
			wantVersion: "p/FileZilla ftpd/",
		},
		{
			name:        "softmatch no version info",
			line:        `softmatch ssh m/^SSH-/`,
			wantService: "ssh",
			wantSoft:    true,
		},
		{
			name:        "case insensitive option",
			line:        `match http m|^HTTP/1\.[01] \d\d\d|i p/generic http/`,
			wantService: "http",
			wantVersion: "p/generic http/",
		},
		{name: "not a match line", line: `ports 80,443`, wantErr: true},
		{name: "bad pattern fails to compile", line: `match x m/(/`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, soft, err := parseMatchLine(tt.line)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseMatchLine(%q) = %+v, nil; want error", tt.line, m)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseMatchLine(%q) returned error: %v", tt.line, err)
			}
			if m.Service != tt.wantService {
				t.Errorf("Service = %q, want %q", m.Service, tt.wantService)
			}
			if soft != tt.wantSoft {
				t.Errorf("soft = %v, want %v", soft, tt.wantSoft)
			}
			if m.VersionInfo != tt.wantVersion {
				t.Errorf("VersionInfo = %q, want %q", m.VersionInfo, tt.wantVersion)
			}
			if m.Regex == nil {
				t.Errorf("Regex is nil")
			}
		})
	}
}
