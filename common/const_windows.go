//go:build windows

package common

import (
	"os"
	"strings"
)

const pipePrefix = `\\.\pipe\`

// PipePath returns the named pipe the daemon listens on. SYC_PIPE_NAME may
// hold a bare name or a full \\.\pipe\ path; it defaults to "sycd".
func PipePath() string {
	name := os.Getenv(PipeNameEnv)
	switch {
	case name == "":
		name = "sycd"
	case strings.HasPrefix(name, pipePrefix):
		return name
	}
	return pipePrefix + name
}
