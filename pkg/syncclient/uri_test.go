package syncclient

import (
	"errors"
	"runtime"
	"testing"
)

type uriCase struct {
	name    string
	raw     string
	scheme  string
	address string
	err     error
}

func TestParseDaemonURI(t *testing.T) {
	tests := []uriCase{
		{"empty", "  ", "", "", ErrEmptyURI},
		{"no scheme", "/tmp/sycd.sock", "", "", ErrUnsupportedScheme},
		{"http", "http://localhost", "", "", ErrUnsupportedScheme},
		{"tcp with port", "tcp://127.0.0.1:4000", SchemeTCP, "127.0.0.1:4000", nil},
		{"tcp default port", "tcp://localhost", SchemeTCP, "localhost:9337", nil},
		{"tcp ipv6", "tcp://[::1]:4000", SchemeTCP, "[::1]:4000", nil},
		{"tcp ipv6 default port", "tcp://[::1]", SchemeTCP, "[::1]:9337", nil},
		{"tcp bad port", "tcp://localhost:99999", "", "", ErrInvalidPath},
		{"tcp no host", "tcp://", "", "", ErrInvalidPath},
		{"uppercase scheme", "TCP://localhost:1", SchemeTCP, "localhost:1", nil},
	}
	if runtime.GOOS == "windows" {
		tests = append(tests,
			uriCase{"pipe", "pipe://sycd", SchemePipe, `\\.\pipe\sycd`, nil},
			uriCase{"unix on windows", "unix:///tmp/s.sock", "", "", ErrUnixNotSupported},
		)
	} else {
		tests = append(tests,
			uriCase{"unix", "unix:///tmp/sycd.sock", SchemeUnix, "/tmp/sycd.sock", nil},
			uriCase{"unix relative", "unix://tmp/sycd.sock", "", "", ErrInvalidPath},
			uriCase{"pipe off windows", "pipe://sycd", "", "", ErrPipeNotSupported},
		)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDaemonURI(tt.raw)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("err = %v, want %v", err, tt.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDaemonURI: %v", err)
			}
			if got.Scheme != tt.scheme || got.Address != tt.address {
				t.Fatalf("got %+v, want %s %s", got, tt.scheme, tt.address)
			}
		})
	}
}

func TestDialURIUnsupported(t *testing.T) {
	if _, err := dialURI(&DaemonURI{Scheme: "ftp"}); !errors.Is(err, ErrUnsupportedScheme) {
		t.Fatalf("expected ErrUnsupportedScheme, got %v", err)
	}
}
