package api

import (
	"context"

	"github.com/Filatest/sync-your-cookie/common"
	"github.com/Filatest/sync-your-cookie/internal/settings"
)

func (s *Api) settingsGet(_ context.Context) (*common.SendResponse, error) {
	return common.OK("", s.settings.Get()), nil
}

// settingsUpdate replaces the settings document. The stored key lists
// are maintained by the store, not by the caller.
func (s *Api) settingsUpdate(_ context.Context, p *settings.Settings) (*common.SendResponse, error) {
	return s.do(common.MethodSettingsSet, func() (*common.SendResponse, error) {
		next, err := s.settings.Update(func(st *settings.Settings) {
			lists := [2][]string{st.StorageKeyList, st.IncognitoStorageKeyList}
			*st = p.Clone()
			st.StorageKeyList, st.IncognitoStorageKeyList = lists[0], lists[1]
		})
		if err != nil {
			return nil, err
		}
		return common.OK("Settings saved", next), nil
	}), nil
}
