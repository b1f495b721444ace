package scanner

import (
	"bytes"
	"testing"
)

func TestUnescape(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []byte
		wantErr bool
	}{
		{name: "plain text", in: "GET / HTTP/1.0", want: []byte("GET / HTTP/1.0")},
		{name: "crlf", in: `GET / HTTP/1.0\r\n\r\n`, want: []byte("GET / HTTP/1.0\r\n\r\n")},
		{name: "null byte", in: `\0\0\0`, want: []byte{0, 0, 0}},
		{name: "hex escape", in: `\x41\x42`, want: []byte("AB")},
		{name: "escaped backslash", in: `a\\b`, want: []byte(`a\b`)},
		{name: "escaped delimiter", in: `a\|b`, want: []byte("a|b")},
		{name: "trailing backslash", in: `abc\`, wantErr: true},
		{name: "bad hex digit", in: `\xzz`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := unescape(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("unescape(%q) = %q, nil; want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unescape(%q) returned error: %v", tt.in, err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Fatalf("unescape(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
