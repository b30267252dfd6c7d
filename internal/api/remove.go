package api

import (
	"context"
	"strings"

	"github.com/Filatest/sync-your-cookie/common"
)

// remove drops every cookie of a domain from the remote map.
func (s *Api) remove(ctx context.Context, p *common.RemoveParams) (*common.SendResponse, error) {
	domain := strings.TrimSpace(p.Domain)
	if domain == "" {
		return nil, invalidParams("missing required param: domain")
	}
	return s.do(common.MethodRemove, func() (*common.SendResponse, error) {
		t, _, err := s.target(p.IsIncognito)
		if err != nil {
			return nil, err
		}
		if err := t.Account.Check(); err != nil {
			return nil, err
		}
		if _, err := s.repo.RemoveDomain(ctx, t, domain); err != nil {
			return nil, err
		}
		return common.OK("Removed success", nil), nil
	}), nil
}

// removeItem drops one cookie, addressed by its "domain_name" id.
func (s *Api) removeItem(ctx context.Context, p *common.RemoveItemParams) (*common.SendResponse, error) {
	if p.Domain == "" || p.ID == "" {
		return nil, invalidParams("missing required params: domain, id")
	}
	return s.do(common.MethodRemoveItem, func() (*common.SendResponse, error) {
		t, _, err := s.target(p.IsIncognito)
		if err != nil {
			return nil, err
		}
		if err := t.Account.Check(); err != nil {
			return nil, err
		}
		if _, err := s.repo.RemoveCookieItem(ctx, t, p.Domain, p.ID); err != nil {
			return nil, err
		}
		return common.OK("Deleted success", nil), nil
	}), nil
}
