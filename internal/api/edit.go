package api

import (
	"context"

	"github.com/Filatest/sync-your-cookie/common"
)

// editItem replaces the fields of one stored cookie.
func (s *Api) editItem(ctx context.Context, p *common.EditItemParams) (*common.SendResponse, error) {
	if p.Domain == "" {
		return nil, invalidParams("missing required param: domain")
	}
	return s.do(common.MethodEditItem, func() (*common.SendResponse, error) {
		t, _, err := s.target(p.IsIncognito)
		if err != nil {
			return nil, err
		}
		if err := t.Account.Check(); err != nil {
			return nil, err
		}
		if _, err := s.repo.EditCookieItem(ctx, t, p.Domain, p.OldItem, p.NewItem); err != nil {
			return nil, err
		}
		return common.OK("Edited success", nil), nil
	}), nil
}
