package nativehost

import (
	"errors"
	"fmt"
	"os"

	nh "github.com/Filatest/sync-your-cookie/internal/nativehost"
	"github.com/urfave/cli"
)

// newInstaller is replaced in tests to install into a memory filesystem.
var newInstaller = func(hostPath, chromeID, firefoxID string) *nh.ManifestInstaller {
	return &nh.ManifestInstaller{
		HostPath:           hostPath,
		ChromeExtensionID:  chromeID,
		FirefoxExtensionID: firefoxID,
	}
}

// selectBrowsers maps the --browser flag to the browsers it names.
func selectBrowsers(name string) ([]nh.Browser, error) {
	if name == "all" {
		return nh.SupportedBrowsers(), nil
	}
	for _, b := range nh.SupportedBrowsers() {
		if string(b) == name {
			return []nh.Browser{b}, nil
		}
	}
	return nil, fmt.Errorf("unknown browser: %s", name)
}

func install(c *cli.Context) error {
	chromeID := c.String("chrome-extension-id")
	firefoxID := c.String("firefox-extension-id")
	if chromeID == "" {
		return cli.NewExitError("--chrome-extension-id is required", 1)
	}
	browsers, err := selectBrowsers(c.String("browser"))
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	hostPath, err := os.Executable()
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("failed to get executable path: %v", err), 1)
	}
	installer := newInstaller(hostPath, chromeID, firefoxID)

	var installed, failed []string
	for _, b := range browsers {
		path, err := installer.Install(b)
		switch {
		case errors.Is(err, nh.ErrMissingExtensionID):
			// Only Firefox can get here; "all" skips it when no ID was given.
			if len(browsers) == 1 {
				failed = append(failed, "firefox: --firefox-extension-id is required")
			}
		case err != nil:
			failed = append(failed, fmt.Sprintf("%s: %v", b, err))
		default:
			installed = append(installed, fmt.Sprintf("%s: %s", b, path))
		}
	}

	printList("Installed manifests:", installed)
	if len(failed) > 0 {
		printList("\nErrors:", failed)
		if len(installed) == 0 {
			return cli.NewExitError("installation failed", 1)
		}
	}
	return nil
}

func printList(title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Println(title)
	for _, it := range items {
		fmt.Printf("  %s\n", it)
	}
}
