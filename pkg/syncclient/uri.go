package syncclient

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"runtime"
	"strconv"
	"strings"

	"github.com/Filatest/sync-your-cookie/common"
)

// DaemonURI is a parsed daemon address.
type DaemonURI struct {
	Scheme  string
	Address string
}

const (
	SchemeUnix = "unix"
	SchemeTCP  = "tcp"
	SchemePipe = "pipe"
)

var (
	ErrEmptyURI          = errors.New("daemon URI cannot be empty")
	ErrUnsupportedScheme = errors.New("unsupported URI scheme")
	ErrInvalidPath       = errors.New("invalid path in URI")
	ErrPipeNotSupported  = errors.New("pipe:// scheme only supported on Windows")
	ErrUnixNotSupported  = errors.New("unix:// scheme not supported on Windows")
)

// ParseDaemonURI parses unix:///abs/path, tcp://host[:port] and
// pipe://name. A tcp URI without port gets the default fallback port.
func ParseDaemonURI(raw string) (*DaemonURI, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrEmptyURI
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	switch strings.ToLower(u.Scheme) {
	case SchemeUnix:
		if runtime.GOOS == "windows" {
			return nil, ErrUnixNotSupported
		}
		// unix://relative/path puts "relative" in Host.
		if u.Host != "" || !strings.HasPrefix(u.Path, "/") {
			return nil, ErrInvalidPath
		}
		return &DaemonURI{Scheme: SchemeUnix, Address: u.Path}, nil
	case SchemeTCP:
		return parseTCP(u.Host)
	case SchemePipe:
		if runtime.GOOS != "windows" {
			return nil, ErrPipeNotSupported
		}
		if u.Host == "" {
			return nil, ErrInvalidPath
		}
		if strings.HasPrefix(u.Host, `\\.\pipe\`) {
			return &DaemonURI{Scheme: SchemePipe, Address: u.Host}, nil
		}
		return &DaemonURI{Scheme: SchemePipe, Address: `\\.\pipe\` + u.Host}, nil
	default:
		return nil, ErrUnsupportedScheme
	}
}

func parseTCP(hostport string) (*DaemonURI, error) {
	if hostport == "" {
		return nil, ErrInvalidPath
	}
	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		// No port given.
		host = strings.Trim(hostport, "[]")
		return &DaemonURI{
			Scheme:  SchemeTCP,
			Address: net.JoinHostPort(host, strconv.Itoa(common.DefaultTCPPort)),
		}, nil
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return nil, fmt.Errorf("%w: invalid port %q", ErrInvalidPath, port)
	}
	if host == "" {
		return nil, ErrInvalidPath
	}
	return &DaemonURI{Scheme: SchemeTCP, Address: net.JoinHostPort(host, port)}, nil
}

// dialURI connects to the daemon at uri.
func dialURI(uri *DaemonURI) (net.Conn, error) {
	switch uri.Scheme {
	case SchemeUnix:
		conn, err := dialFunc("unix", uri.Address)
		if err != nil {
			return nil, fmt.Errorf("unix socket connection failed: %w", err)
		}
		return conn, nil
	case SchemeTCP:
		conn, err := dialFunc("tcp", uri.Address)
		if err != nil {
			return nil, fmt.Errorf("tcp connection failed: %w", err)
		}
		return conn, nil
	case SchemePipe:
		conn, err := dialPipe(uri.Address)
		if err != nil {
			return nil, fmt.Errorf("named pipe connection failed: %w", err)
		}
		return conn, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, uri.Scheme)
	}
}
