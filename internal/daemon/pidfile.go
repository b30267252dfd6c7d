package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// PidFileName is written to the config directory while the daemon runs.
	PidFileName = "daemon.pid"
	// LockFileName is held locked while the daemon runs.
	LockFileName = "daemon.lock"
)

// PidFilePath returns the pid file in configDir.
func PidFilePath(configDir string) string {
	return filepath.Join(configDir, PidFileName)
}

// WritePidFile records the current process ID.
func WritePidFile(configDir string) error {
	return os.WriteFile(PidFilePath(configDir), []byte(strconv.Itoa(os.Getpid())), 0o600)
}

// ReadPidFile returns the recorded process ID. A missing file returns an
// error satisfying os.IsNotExist.
func ReadPidFile(configDir string) (int, error) {
	data, err := os.ReadFile(PidFilePath(configDir))
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid pid file content: %w", err)
	}
	return pid, nil
}

// RemovePidFile removes the pid file, ignoring errors.
func RemovePidFile(configDir string) {
	_ = os.Remove(PidFilePath(configDir))
}

// Stale reports whether the pid file names a process that no longer
// exists. Stale pid files are left behind by a killed daemon.
func Stale(configDir string) bool {
	pid, err := ReadPidFile(configDir)
	if err != nil {
		return !os.IsNotExist(err)
	}
	return !IsProcessRunning(pid)
}
