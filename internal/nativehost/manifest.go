package nativehost

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/afero"
)

// HostName is the name the extension passes to runtime.connectNative.
const HostName = "com.syncyourcookie.host"

// Browser names a browser the host manifest can be installed for.
type Browser string

const (
	BrowserChrome   Browser = "chrome"
	BrowserFirefox  Browser = "firefox"
	BrowserChromium Browser = "chromium"
	BrowserEdge     Browser = "edge"
	BrowserBrave    Browser = "brave"
)

// ErrMissingExtensionID is returned by Install when the extension ID for
// the browser family was not configured.
var ErrMissingExtensionID = errors.New("extension ID is required")

// browserDirs lists, per browser, the manifest directory on macOS (under
// ~/Library/Application Support) and on Linux (under ~).
var browserDirs = map[Browser]struct{ darwin, linux string }{
	BrowserChrome:   {"Google/Chrome/NativeMessagingHosts", ".config/google-chrome/NativeMessagingHosts"},
	BrowserChromium: {"Chromium/NativeMessagingHosts", ".config/chromium/NativeMessagingHosts"},
	BrowserFirefox:  {"Mozilla/NativeMessagingHosts", ".mozilla/native-messaging-hosts"},
	BrowserEdge:     {"Microsoft Edge/NativeMessagingHosts", ".config/microsoft-edge/NativeMessagingHosts"},
	BrowserBrave:    {"BraveSoftware/Brave-Browser/NativeMessagingHosts", ".config/BraveSoftware/Brave-Browser/NativeMessagingHosts"},
}

// SupportedBrowsers returns the browsers in install order.
func SupportedBrowsers() []Browser {
	return []Browser{BrowserChrome, BrowserFirefox, BrowserChromium, BrowserEdge, BrowserBrave}
}

// Manifest is a native messaging host manifest. Chromium browsers read
// AllowedOrigins, Firefox reads AllowedExtensions.
type Manifest struct {
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Path              string   `json:"path"`
	Type              string   `json:"type"`
	AllowedOrigins    []string `json:"allowed_origins,omitempty"`
	AllowedExtensions []string `json:"allowed_extensions,omitempty"`
}

// NewManifest builds the manifest of browser allowing extensionID to start
// the host at hostPath.
func NewManifest(browser Browser, hostPath, extensionID string) Manifest {
	m := Manifest{
		Name:        HostName,
		Description: "Sync Your Cookie native host",
		Path:        hostPath,
		Type:        "stdio",
	}
	if browser == BrowserFirefox {
		m.AllowedExtensions = []string{extensionID}
	} else {
		m.AllowedOrigins = []string{"chrome-extension://" + extensionID + "/"}
	}
	return m
}

// ManifestPath returns the manifest file of browser on platform, or ""
// when the pair is unsupported. On Windows the registry points at the
// file, so any per-user location works.
func ManifestPath(browser Browser, platform, homeDir string) string {
	dirs, ok := browserDirs[browser]
	if !ok {
		return ""
	}
	var dir string
	switch platform {
	case "darwin":
		dir = filepath.Join(homeDir, "Library", "Application Support", filepath.FromSlash(dirs.darwin))
	case "linux":
		dir = filepath.Join(homeDir, filepath.FromSlash(dirs.linux))
	case "windows":
		dir = filepath.Join(homeDir, "AppData", "Local", "sync-your-cookie", "NativeMessagingHosts", string(browser))
	default:
		return ""
	}
	return filepath.Join(dir, HostName+".json")
}

// ManifestInstaller writes and removes host manifests. The zero Fs,
// BaseDir and Platform mean the OS filesystem, the user's home directory
// and runtime.GOOS.
type ManifestInstaller struct {
	Fs                 afero.Fs
	HostPath           string
	ChromeExtensionID  string
	FirefoxExtensionID string
	BaseDir            string
	Platform           string
}

func (m *ManifestInstaller) fs() afero.Fs {
	if m.Fs != nil {
		return m.Fs
	}
	return afero.NewOsFs()
}

func (m *ManifestInstaller) platform() string {
	if m.Platform != "" {
		return m.Platform
	}
	return runtime.GOOS
}

// native reports whether manifests are installed for the running OS and
// so need registering.
func (m *ManifestInstaller) native() bool {
	return m.platform() == runtime.GOOS
}

// Path returns where the manifest of browser is installed.
func (m *ManifestInstaller) Path(browser Browser) string {
	home := m.BaseDir
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	return ManifestPath(browser, m.platform(), home)
}

func (m *ManifestInstaller) extensionID(browser Browser) string {
	if browser == BrowserFirefox {
		return m.FirefoxExtensionID
	}
	return m.ChromeExtensionID
}

// Install writes the manifest of browser and returns its path.
func (m *ManifestInstaller) Install(browser Browser) (string, error) {
	if m.HostPath == "" {
		return "", errors.New("host path is required")
	}
	id := m.extensionID(browser)
	if id == "" {
		return "", fmt.Errorf("%s: %w", browser, ErrMissingExtensionID)
	}
	path := m.Path(browser)
	if path == "" {
		return "", fmt.Errorf("unsupported browser/platform: %s/%s", browser, m.platform())
	}

	data, err := json.MarshalIndent(NewManifest(browser, m.HostPath, id), "", "  ")
	if err != nil {
		return "", err
	}
	fs := m.fs()
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create manifest directory: %w", err)
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}
	if m.native() {
		if err := registerManifest(browser, path); err != nil {
			return "", fmt.Errorf("failed to register manifest: %w", err)
		}
	}
	return path, nil
}

// Uninstall removes the manifest of browser and its registration. Nothing
// installed is not an error.
func (m *ManifestInstaller) Uninstall(browser Browser) error {
	path := m.Path(browser)
	if path == "" {
		return nil
	}
	if m.native() {
		if err := unregisterManifest(browser); err != nil {
			return err
		}
	}
	if err := m.fs().Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Installed reports whether the manifest of browser exists.
func (m *ManifestInstaller) Installed(browser Browser) bool {
	path := m.Path(browser)
	if path == "" {
		return false
	}
	ok, _ := afero.Exists(m.fs(), path)
	return ok
}
