//go:build !windows

package nativehost

// Outside Windows the manifest location alone registers the host.
func registerManifest(Browser, string) error { return nil }

func unregisterManifest(Browser) error { return nil }
