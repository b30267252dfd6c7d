package api

import (
	"context"

	"github.com/Filatest/sync-your-cookie/common"
)

// The event.* methods are usually sent as notifications by the extension.
// Without an attached scheduler they are accepted and ignored.

func (s *Api) cookieChanged(_ context.Context, p *common.CookieChangedParams) (*common.Empty, error) {
	if s.events != nil {
		s.events.OnCookieChanged(p.Cookie.Domain)
	}
	return &common.Empty{}, nil
}

func (s *Api) tabUpdated(_ context.Context, p *common.TabUpdatedParams) (*common.Empty, error) {
	if s.events != nil {
		s.events.OnTabUpdated(p.TabID, p.URL, p.Status)
	}
	return &common.Empty{}, nil
}

func (s *Api) tabActivated(_ context.Context) (*common.Empty, error) {
	if s.events != nil {
		s.events.OnTabActivated()
	}
	return &common.Empty{}, nil
}

func (s *Api) incognitoWindowOpened(_ context.Context, _ *common.IncognitoWindowParams) (*common.Empty, error) {
	if s.events != nil {
		s.events.OnIncognitoWindowOpened()
	}
	return &common.Empty{}, nil
}
