package nativehost

import (
	"fmt"

	nh "github.com/Filatest/sync-your-cookie/internal/nativehost"
	"github.com/urfave/cli"
)

func status(c *cli.Context) error {
	installer := newInstaller("", "", "")

	fmt.Println("Native Messaging Host Status")
	fmt.Println("============================")
	fmt.Printf("Host Name: %s\n\n", nh.HostName)

	for _, b := range nh.SupportedBrowsers() {
		if installer.Installed(b) {
			fmt.Printf("%s: Installed\n", b)
			fmt.Printf("  Path: %s\n", installer.Path(b))
			continue
		}
		fmt.Printf("%s: Not installed\n", b)
	}
	return nil
}
