package common

// RPC methods served by the daemon.
const (
	MethodPush        = "cookie.push"
	MethodPull        = "cookie.pull"
	MethodRemove      = "cookie.remove"
	MethodRemoveItem  = "cookie.removeItem"
	MethodEditItem    = "cookie.editItem"
	MethodList        = "cookie.list"
	MethodGet         = "cookie.get"
	MethodIncSync     = "incognito.sync"
	MethodIncClear    = "incognito.clear"
	MethodIncCopy     = "incognito.copyNormal"
	MethodIncRemove   = "incognito.remove"
	MethodCookieEvent = "event.cookieChanged"
	MethodTabEvent    = "event.tabUpdated"
	MethodIncWindow   = "event.incognitoWindowOpened"
	MethodTabActive   = "event.tabActivated"
	MethodAccountSet  = "account.set"
	MethodAccountGet  = "account.get"
	MethodAccountDel  = "account.clear"
	MethodSettingsGet = "settings.get"
	MethodSettingsSet = "settings.update"
	MethodStop        = "daemon.stop"
	MethodVersion     = "daemon.version"

	// MethodBrowserAttach registers the calling connection as the browser.
	MethodBrowserAttach = "browser.attach"
)

// NotifyLog is the notification carrying a LogEvent.
const NotifyLog = "log"

// Callbacks the daemon sends to a connected browser extension.
const (
	CallbackGetCookies   = "browser.cookies.getAll"
	CallbackSetCookie    = "browser.cookies.set"
	CallbackRemoveCookie = "browser.cookies.remove"
	CallbackCookieStores = "browser.cookies.getAllCookieStores"
	CallbackQueryTabs    = "browser.tabs.query"
	CallbackReloadTab    = "browser.tabs.reload"
	CallbackReadStorage  = "browser.storage.read"
	CallbackWriteStorage = "browser.storage.write"
)
