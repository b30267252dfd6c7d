package api

import (
	"context"
	"sort"
	"strings"

	"github.com/Filatest/sync-your-cookie/common"
	"github.com/Filatest/sync-your-cookie/internal/cookiemap"
	"github.com/Filatest/sync-your-cookie/internal/settings"
	"github.com/Filatest/sync-your-cookie/pkg/syncerr"
)

// list summarizes the domains of one plane. It answers from the mirror
// unless the caller asks for the remote copy or the mirror is empty.
func (s *Api) list(ctx context.Context, p *common.ListParams) (*common.SendResponse, error) {
	return s.do(common.MethodList, func() (*common.SendResponse, error) {
		t, st, err := s.target(p.IsIncognito)
		if err != nil {
			return nil, err
		}
		var m *cookiemap.CookiesMap
		if !p.Remote {
			if m, err = s.mirror.Load(ctx, t.Plane); err != nil {
				s.log.Warning("api: %v", err)
			}
		}
		if m.Len() == 0 && t.Account.Configured() {
			if m, err = s.repo.ReadWithStatus(ctx, t); err != nil {
				return nil, err
			}
		}
		return common.OK("", summarize(m, st)), nil
	}), nil
}

func summarize(m *cookiemap.CookiesMap, st settings.Settings) []common.DomainSummary {
	out := make([]common.DomainSummary, 0, m.Len())
	if m == nil {
		return out
	}
	for domain, e := range m.DomainCookieMap {
		if e == nil {
			continue
		}
		dc, _ := st.Domain(domain)
		out = append(out, common.DomainSummary{
			Domain:       domain,
			Cookies:      len(e.Cookies),
			StorageItems: len(e.LocalStorageItems),
			UpdateTime:   e.UpdateTime,
			CreateTime:   e.CreateTime,
			AutoPush:     dc.AutoPush,
			AutoPull:     dc.AutoPull,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Domain < out[j].Domain })
	return out
}

// get returns the stored entry of one domain.
func (s *Api) get(ctx context.Context, p *common.GetParams) (*common.SendResponse, error) {
	domain := strings.TrimSpace(p.Domain)
	if domain == "" {
		return nil, invalidParams("missing required param: domain")
	}
	return s.do(common.MethodGet, func() (*common.SendResponse, error) {
		t, _, err := s.target(p.IsIncognito)
		if err != nil {
			return nil, err
		}
		m, err := s.repo.ReadWithStatus(ctx, t)
		if err != nil {
			return nil, err
		}
		entry := m.Entry(domain)
		if entry == nil {
			return nil, syncerr.Errorf(syncerr.ItemNotFound, "no cookies found for %s", domain)
		}
		return common.OK("", entry), nil
	}), nil
}
