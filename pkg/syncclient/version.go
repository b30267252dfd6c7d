package syncclient

import (
	"context"
	"fmt"
	"io"
	"os"
)

// VersionCheckEnv set to any value suppresses version mismatch warnings.
const VersionCheckEnv = "SYC_SUPPRESS_VERSION_CHECK"

// CheckVersionMismatch warns on w when the daemon runs a different version
// than expected. It never fails.
func (c *Client) CheckVersionMismatch(ctx context.Context, expected string, w io.Writer) {
	if expected == "" || os.Getenv(VersionCheckEnv) != "" {
		return
	}
	v, err := c.Version(ctx)
	if err != nil {
		fmt.Fprintf(w, "Warning: could not verify daemon version: %v\n", err)
		return
	}
	if v.Version != expected {
		fmt.Fprintf(w, "Warning: CLI version (%s) differs from daemon version (%s)\n", expected, v.Version)
		fmt.Fprintf(w, "Run 'sycd stop' to restart the daemon with the new version.\n")
	}
}
