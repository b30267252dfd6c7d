package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Filatest/sync-your-cookie/common"
	"github.com/Filatest/sync-your-cookie/internal/incognito"
	"github.com/Filatest/sync-your-cookie/pkg/syncerr"
)

var errNoEngine = errors.New("incognito sync is not available")

// incognitoSync materializes the incognito plane on demand.
func (s *Api) incognitoSync(ctx context.Context) (*common.SendResponse, error) {
	return s.do(common.MethodIncSync, func() (*common.SendResponse, error) {
		rep, err := s.syncIncognito(ctx)
		if err != nil {
			return nil, err
		}
		if !rep.Ran {
			return &common.SendResponse{IsOk: false, Msg: "Failed to sync cookies to incognito mode", Result: rep}, nil
		}
		return common.OK("Successfully synced cookies to incognito mode", rep), nil
	}), nil
}

// SyncIncognito is the scheduler's entry point, run when a private
// window opens.
func (s *Api) SyncIncognito(ctx context.Context) error {
	_, err := s.syncIncognito(ctx)
	return err
}

func (s *Api) syncIncognito(ctx context.Context) (incognito.Report, error) {
	if s.engine == nil {
		return incognito.Report{}, errNoEngine
	}
	t, st, err := s.target(true)
	if err != nil {
		return incognito.Report{}, err
	}
	return s.engine.Sync(ctx, incognito.SyncOptions{
		Enabled: st.EnableIncognitoSync,
		Force:   st.ForceIncognitoSync,
		Target:  t,
	})
}

// incognitoClear empties the private browsing cookie store.
func (s *Api) incognitoClear(ctx context.Context) (*common.SendResponse, error) {
	return s.do(common.MethodIncClear, func() (*common.SendResponse, error) {
		if s.engine == nil {
			return nil, errNoEngine
		}
		n, err := s.engine.Clear(ctx)
		if err != nil {
			return nil, err
		}
		return common.OK("Successfully cleared incognito cookies", n), nil
	}), nil
}

// incognitoCopy copies the normal remote map to the incognito key.
func (s *Api) incognitoCopy(ctx context.Context) (*common.SendResponse, error) {
	return s.do(common.MethodIncCopy, func() (*common.SendResponse, error) {
		if s.engine == nil {
			return nil, errNoEngine
		}
		t, _, err := s.target(false)
		if err != nil {
			return nil, err
		}
		if !t.Account.Configured() {
			return nil, syncerr.New(syncerr.AccountCheck, "Cloudflare not configured")
		}
		n, err := s.engine.CopyNormal(ctx, t)
		if err != nil {
			return nil, err
		}
		return common.OK(fmt.Sprintf("Successfully copied %d domains to incognito storage", n), n), nil
	}), nil
}

// incognitoRemove removes a domain, or one cookie of it, from the
// incognito plane.
func (s *Api) incognitoRemove(ctx context.Context, p *common.RemoveItemParams) (*common.SendResponse, error) {
	domain := strings.TrimSpace(p.Domain)
	if domain == "" {
		return nil, invalidParams("missing required param: domain")
	}
	return s.do(common.MethodIncRemove, func() (*common.SendResponse, error) {
		if s.engine == nil {
			return nil, errNoEngine
		}
		t, _, err := s.target(true)
		if err != nil {
			return nil, err
		}
		if err := t.Account.Check(); err != nil {
			return nil, err
		}
		if _, err := s.engine.Remove(ctx, t, domain, p.ID); err != nil {
			return nil, err
		}
		return common.OK("Removed success", nil), nil
	}), nil
}
