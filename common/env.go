// Package common provides the wire types, method names and environment
// settings shared by the sync daemon and its clients.
package common

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Environment variable names for configuration.
const (
	// ConfigDirEnv overrides the configuration directory.
	ConfigDirEnv = "SYC_CONFIG_DIR"

	// SocketPathEnv is the environment variable for custom socket path.
	SocketPathEnv = "SYC_SOCKET_PATH"

	// PipeNameEnv overrides the Windows named pipe name.
	PipeNameEnv = "SYC_PIPE_NAME"

	// RPCSecretEnv holds the bearer token for the WebSocket endpoint.
	RPCSecretEnv = "SYC_RPC_SECRET"

	// RPCPortEnv overrides the WebSocket/metrics HTTP port.
	RPCPortEnv = "SYC_RPC_PORT"

	// CDPURLEnv points the CDP browser backend at a running browser.
	CDPURLEnv = "SYC_CDP_URL"

	// KVEndpointEnv overrides the remote store API root.
	KVEndpointEnv = "SYC_KV_ENDPOINT"

	// DebugEnv is the environment variable to enable debug logging.
	DebugEnv = "SYC_DEBUG"

	// TCPPortEnv overrides the port of the local TCP fallback transport.
	TCPPortEnv = "SYC_TCP_PORT"

	// ForceTCPEnv set to "1" skips the unix socket / named pipe.
	ForceTCPEnv = "SYC_FORCE_TCP"

	// LogLevelEnv sets the lowest severity the daemon logs.
	LogLevelEnv = "SYC_LOG_LEVEL"
)

const (
	// AppName names the config directory and the keyring service.
	AppName = "sync-your-cookie"

	// DefaultRPCPort is the default HTTP port of the WebSocket endpoint.
	DefaultRPCPort = 9338

	// DefaultTCPPort is used when the local socket cannot be created.
	DefaultTCPPort = 9337

	// TCPHost is the only interface the daemon listens on.
	TCPHost = "127.0.0.1"

	// DefaultDialTimeout bounds connecting to the daemon socket.
	DefaultDialTimeout = 3 * time.Second
)

// ConfigDir returns the directory holding settings, mirror and vault.
func ConfigDir() string {
	if d := os.Getenv(ConfigDirEnv); d != "" {
		return d
	}
	base, err := os.UserConfigDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, AppName)
}

// SocketPath returns the daemon's unix socket path.
func SocketPath() string {
	if p := os.Getenv(SocketPathEnv); p != "" {
		return p
	}
	return filepath.Join(os.TempDir(), "sycd.sock")
}

// Debug reports whether debug logging was requested.
func Debug() bool {
	v := os.Getenv(DebugEnv)
	return v != "" && v != "0" && v != "false"
}

// TCPPort returns the local TCP fallback port, honoring SYC_TCP_PORT when
// it holds a valid port number.
func TCPPort() int {
	if v := os.Getenv(TCPPortEnv); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p >= 1 && p <= 65535 {
			return p
		}
	}
	return DefaultTCPPort
}

// RPCPort returns the HTTP port of the WebSocket and metrics endpoint.
func RPCPort() int {
	if v := os.Getenv(RPCPortEnv); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p >= 1 && p <= 65535 {
			return p
		}
	}
	return DefaultRPCPort
}

// ForceTCP reports whether SYC_FORCE_TCP=1.
func ForceTCP() bool {
	return os.Getenv(ForceTCPEnv) == "1"
}
