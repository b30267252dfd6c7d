package nativehost

import (
	"fmt"

	"github.com/urfave/cli"
)

func uninstall(c *cli.Context) error {
	browsers, err := selectBrowsers(c.String("browser"))
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	installer := newInstaller("", "", "")

	var removed, failed []string
	for _, b := range browsers {
		if !installer.Installed(b) {
			continue
		}
		if err := installer.Uninstall(b); err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", b, err))
			continue
		}
		removed = append(removed, fmt.Sprintf("%s: %s", b, installer.Path(b)))
	}

	if len(removed) == 0 && len(failed) == 0 {
		fmt.Println("No manifests installed")
		return nil
	}
	printList("Uninstalled manifests:", removed)
	if len(failed) > 0 {
		printList("\nErrors:", failed)
		return cli.NewExitError("uninstall failed", 1)
	}
	return nil
}
