//go:build windows

package nativehost

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

func registryKey(browser Browser) (string, error) {
	var base string
	switch browser {
	case BrowserChrome:
		base = `Software\Google\Chrome\NativeMessagingHosts`
	case BrowserChromium:
		base = `Software\Chromium\NativeMessagingHosts`
	case BrowserEdge:
		base = `Software\Microsoft\Edge\NativeMessagingHosts`
	case BrowserBrave:
		base = `Software\BraveSoftware\Brave-Browser\NativeMessagingHosts`
	case BrowserFirefox:
		base = `Software\Mozilla\NativeMessagingHosts`
	default:
		return "", fmt.Errorf("unsupported browser: %s", browser)
	}
	return base + `\` + HostName, nil
}

// registerManifest points the browser at manifestPath through the
// per-user registry.
func registerManifest(browser Browser, manifestPath string) error {
	path, err := registryKey(browser)
	if err != nil {
		return err
	}
	k, _, err := registry.CreateKey(registry.CURRENT_USER, path, registry.SET_VALUE)
	if err != nil {
		return err
	}
	defer k.Close()
	return k.SetStringValue("", manifestPath)
}

func unregisterManifest(browser Browser) error {
	path, err := registryKey(browser)
	if err != nil {
		return err
	}
	if err := registry.DeleteKey(registry.CURRENT_USER, path); err != nil && !errors.Is(err, registry.ErrNotExist) {
		return err
	}
	return nil
}
