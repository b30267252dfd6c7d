package api

import (
	"context"

	"github.com/Filatest/sync-your-cookie/common"
)

// daemonVersion returns the version, commit hash and build type the
// daemon was built with.
func (s *Api) daemonVersion(_ context.Context) (*common.VersionResult, error) {
	return &common.VersionResult{
		Version:   s.version,
		Commit:    s.commit,
		BuildType: s.buildType,
	}, nil
}

// daemonStop asks the runner to shut down after the reply is sent.
func (s *Api) daemonStop(_ context.Context) (*common.Empty, error) {
	if s.stop != nil {
		go s.stop()
	}
	return &common.Empty{}, nil
}
