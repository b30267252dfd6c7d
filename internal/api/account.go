package api

import (
	"context"

	"github.com/Filatest/sync-your-cookie/common"
)

// accountSet validates and stores the remote store credentials.
func (s *Api) accountSet(_ context.Context, p *common.AccountParams) (*common.SendResponse, error) {
	return s.do(common.MethodAccountSet, func() (*common.SendResponse, error) {
		acct := *p
		if err := acct.Check(); err != nil {
			return nil, err
		}
		if err := s.accounts.SetAccount(acct); err != nil {
			return nil, err
		}
		s.log.Info("api: account %s saved", acct.AccountID)
		return common.OK("Account saved", acct.Redacted()), nil
	}), nil
}

// accountGet returns the stored credentials with the token redacted.
func (s *Api) accountGet(_ context.Context) (*common.SendResponse, error) {
	return s.do(common.MethodAccountGet, func() (*common.SendResponse, error) {
		acct, err := s.accounts.Account()
		if err != nil {
			return nil, err
		}
		if err := acct.Check(); err != nil {
			resp := common.Fail(err)
			resp.Result = acct.Redacted()
			return resp, nil
		}
		return common.OK("", acct.Redacted()), nil
	}), nil
}

func (s *Api) accountClear(_ context.Context) (*common.SendResponse, error) {
	return s.do(common.MethodAccountDel, func() (*common.SendResponse, error) {
		if err := s.accounts.ClearAccount(); err != nil {
			return nil, err
		}
		return common.OK("Account cleared", nil), nil
	}), nil
}
