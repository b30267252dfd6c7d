package common

import (
	"github.com/Filatest/sync-your-cookie/internal/cookiemap"
	"github.com/Filatest/sync-your-cookie/internal/kv"
	"github.com/Filatest/sync-your-cookie/pkg/syncerr"
)

// SendResponse is the envelope every cookie operation answers with.
type SendResponse struct {
	IsOk   bool         `json:"isOk"`
	Msg    string       `json:"msg,omitempty"`
	Code   syncerr.Code `json:"code,omitempty"`
	Result any          `json:"result,omitempty"`
}

// OK builds a successful response.
func OK(msg string, result any) *SendResponse {
	return &SendResponse{IsOk: true, Msg: msg, Result: result}
}

// Fail builds a failed response from err.
func Fail(err error) *SendResponse {
	return &SendResponse{IsOk: false, Msg: err.Error(), Code: syncerr.CodeOf(err)}
}

// LogType tags a broadcast with the plane it concerns.
type LogType string

const (
	NormalLog    LogType = "NORMAL_LOG"
	IncognitoLog LogType = "INC_LOG"
)

// LogTypeOf returns the LogType for plane.
func LogTypeOf(p cookiemap.Plane) LogType {
	if p == cookiemap.Incognito {
		return IncognitoLog
	}
	return NormalLog
}

// LogPayload is the body of a LogEvent.
type LogPayload struct {
	Msg    string `json:"msg"`
	Domain string `json:"domain,omitempty"`
	ID     string `json:"id,omitempty"`
	Count  int    `json:"count,omitempty"`
	TS     int64  `json:"ts"`
}

// LogEvent is broadcast to every connected surface after a mutation.
type LogEvent struct {
	EventID string     `json:"eventId,omitempty"`
	Type    LogType    `json:"type"`
	Payload LogPayload `json:"payload"`
}

// PushParams is the input of cookie.push. When Cookies is nil the daemon
// reads the domain's cookies from the browser.
type PushParams struct {
	Domain            string                       `json:"domain"`
	SourceURL         string                       `json:"sourceUrl,omitempty"`
	FavIconURL        string                       `json:"favIconUrl,omitempty"`
	IsIncognito       bool                         `json:"isIncognito,omitempty"`
	Cookies           []cookiemap.Cookie           `json:"cookies,omitempty"`
	LocalStorageItems []cookiemap.LocalStorageItem `json:"localStorageItems,omitempty"`
}

// PullParams is the input of cookie.pull.
type PullParams struct {
	ActiveTabURL string `json:"activeTabUrl"`
	Domain       string `json:"domain"`
	Reload       bool   `json:"reload,omitempty"`
	IsIncognito  bool   `json:"isIncognito,omitempty"`
}

// RemoveParams is the input of cookie.remove.
type RemoveParams struct {
	Domain      string `json:"domain"`
	IsIncognito bool   `json:"isIncognito,omitempty"`
}

// GetParams is the input of cookie.get.
type GetParams struct {
	Domain      string `json:"domain"`
	IsIncognito bool   `json:"isIncognito,omitempty"`
}

// RemoveItemParams is the input of cookie.removeItem.
type RemoveItemParams struct {
	Domain      string `json:"domain"`
	ID          string `json:"id"`
	IsIncognito bool   `json:"isIncognito,omitempty"`
}

// EditItemParams is the input of cookie.editItem.
type EditItemParams struct {
	Domain      string                `json:"domain"`
	OldItem     cookiemap.Cookie      `json:"oldItem"`
	NewItem     cookiemap.CookiePatch `json:"newItem"`
	IsIncognito bool                  `json:"isIncognito,omitempty"`
}

// ListParams is the input of cookie.list.
type ListParams struct {
	IsIncognito bool `json:"isIncognito,omitempty"`
	// Remote forces a read from the remote store instead of the mirror.
	Remote bool `json:"remote,omitempty"`
}

// DomainSummary is one row of a cookie.list result.
type DomainSummary struct {
	Domain       string `json:"domain"`
	Cookies      int    `json:"cookies"`
	StorageItems int    `json:"storageItems"`
	UpdateTime   int64  `json:"updateTime"`
	CreateTime   int64  `json:"createTime"`
	AutoPush     bool   `json:"autoPush"`
	AutoPull     bool   `json:"autoPull"`
}

// CookieChangedParams is the input of event.cookieChanged.
type CookieChangedParams struct {
	Cookie  cookiemap.Cookie `json:"cookie"`
	Removed bool             `json:"removed"`
	Cause   string           `json:"cause,omitempty"`
}

// TabUpdatedParams is the input of event.tabUpdated.
type TabUpdatedParams struct {
	TabID  string `json:"tabId"`
	URL    string `json:"url"`
	Status string `json:"status"`
}

// IncognitoWindowParams is the input of event.incognitoWindowOpened.
type IncognitoWindowParams struct {
	WindowID string `json:"windowId"`
}

// AccountParams is the input of account.set.
type AccountParams = kv.Account

// VersionResult is the result of daemon.version.
type VersionResult struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildType string `json:"buildType,omitempty"`
}

// Empty is the result of methods that return nothing.
type Empty struct{}
