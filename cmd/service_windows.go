//go:build windows

package cmd

import (
	"errors"
	"fmt"
	"os"

	daemonpkg "github.com/Filatest/sync-your-cookie/internal/daemon"
	"github.com/Filatest/sync-your-cookie/internal/service"
	"github.com/urfave/cli"
	"golang.org/x/sys/windows"
)

// ErrRequiresAdmin is returned when an operation requires administrator privileges.
var ErrRequiresAdmin = errors.New("this operation requires administrator privileges")

// Replaced in tests.
var (
	isAdminFunc         = isAdmin
	openSCManager       = service.OpenSCManager
	registerEventSource = service.RegisterEventSource
	removeEventSource   = service.RemoveEventSource
)

// isAdmin reports whether the process token is a member of
// BUILTIN\Administrators.
func isAdmin() bool {
	var sid *windows.SID
	err := windows.AllocateAndInitializeSid(
		&windows.SECURITY_NT_AUTHORITY,
		2,
		windows.SECURITY_BUILTIN_DOMAIN_RID,
		windows.DOMAIN_ALIAS_RID_ADMINS,
		0, 0, 0, 0, 0, 0,
		&sid,
	)
	if err != nil {
		return false
	}
	defer windows.FreeSid(sid)

	isMember, err := windows.Token(0).IsMember(sid)
	if err != nil {
		return false
	}
	return isMember
}

func serviceCommand() cli.Command {
	return cli.Command{
		Name:  "service",
		Usage: "manage the sycd Windows service",
		Subcommands: []cli.Command{
			{
				Name:   "install",
				Usage:  "install the daemon as a Windows service",
				Action: serviceInstall,
				Flags: []cli.Flag{
					cli.BoolFlag{Name: "manual", Usage: "do not start the service at boot"},
				},
			},
			{
				Name:   "uninstall",
				Usage:  "remove the Windows service",
				Action: serviceUninstall,
			},
			{
				Name:   "start",
				Usage:  "start the Windows service",
				Action: serviceStart,
			},
			{
				Name:   "stop",
				Usage:  "stop the Windows service",
				Action: serviceStop,
			},
			{
				Name:   "status",
				Usage:  "show the state of the Windows service",
				Action: serviceStatus,
			},
		},
	}
}

func requireAdmin() error {
	if !isAdminFunc() {
		return ErrRequiresAdmin
	}
	return nil
}

// withServiceManager opens the SCM for the duration of fn.
func withServiceManager(fn func(*service.ServiceManager) error) error {
	scm, err := openSCManager()
	if err != nil {
		return fmt.Errorf("failed to connect to service control manager: %w", err)
	}
	defer scm.Close()
	return fn(service.NewServiceManager(scm))
}

// serviceErr rewrites the manager's sentinel errors for the user.
func serviceErr(action string, err error) error {
	name := daemonpkg.DefaultServiceName
	switch {
	case errors.Is(err, service.ErrServiceExists):
		return fmt.Errorf("service '%s' is already installed", name)
	case errors.Is(err, service.ErrServiceNotFound):
		return fmt.Errorf("service '%s' is not installed", name)
	case errors.Is(err, service.ErrServiceAlreadyRunning):
		return fmt.Errorf("service '%s' is already running", name)
	case errors.Is(err, service.ErrServiceNotRunning):
		return fmt.Errorf("service '%s' is not running", name)
	}
	return fmt.Errorf("failed to %s service: %w", action, err)
}

func serviceInstall(ctx *cli.Context) error {
	if err := requireAdmin(); err != nil {
		return err
	}
	exePath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}
	startType := uint32(service.StartTypeAutomatic)
	if ctx.Bool("manual") {
		startType = service.StartTypeManual
	}
	return withServiceManager(func(mgr *service.ServiceManager) error {
		err := mgr.Install(daemonpkg.DefaultServiceName, exePath, service.ServiceConfig{
			DisplayName: daemonpkg.DefaultDisplayName,
			Description: daemonpkg.DefaultDescription,
			StartType:   startType,
			Args:        []string{"daemon"},
		})
		if err != nil {
			return serviceErr("install", err)
		}
		if err := registerEventSource(daemonpkg.DefaultServiceName); err != nil {
			_ = mgr.Uninstall(daemonpkg.DefaultServiceName)
			return fmt.Errorf("failed to register event source: %w", err)
		}
		fmt.Printf("Service '%s' installed successfully\n", daemonpkg.DefaultServiceName)
		return nil
	})
}

func serviceUninstall(ctx *cli.Context) error {
	if err := requireAdmin(); err != nil {
		return err
	}
	return withServiceManager(func(mgr *service.ServiceManager) error {
		if err := mgr.Uninstall(daemonpkg.DefaultServiceName); err != nil {
			return serviceErr("uninstall", err)
		}
		_ = removeEventSource(daemonpkg.DefaultServiceName)
		fmt.Printf("Service '%s' uninstalled successfully\n", daemonpkg.DefaultServiceName)
		return nil
	})
}

func serviceStart(ctx *cli.Context) error {
	if err := requireAdmin(); err != nil {
		return err
	}
	return withServiceManager(func(mgr *service.ServiceManager) error {
		if err := mgr.Start(daemonpkg.DefaultServiceName); err != nil {
			return serviceErr("start", err)
		}
		fmt.Printf("Service '%s' started successfully\n", daemonpkg.DefaultServiceName)
		return nil
	})
}

func serviceStop(ctx *cli.Context) error {
	if err := requireAdmin(); err != nil {
		return err
	}
	return withServiceManager(func(mgr *service.ServiceManager) error {
		if err := mgr.Stop(daemonpkg.DefaultServiceName); err != nil {
			return serviceErr("stop", err)
		}
		fmt.Printf("Service '%s' stopped successfully\n", daemonpkg.DefaultServiceName)
		return nil
	})
}

// serviceStatus does not need administrator privileges.
func serviceStatus(ctx *cli.Context) error {
	return withServiceManager(func(mgr *service.ServiceManager) error {
		status, err := mgr.Status(daemonpkg.DefaultServiceName)
		if err != nil {
			return serviceErr("query", err)
		}
		fmt.Printf("Service '%s': %s\n", daemonpkg.DefaultServiceName, status)
		return nil
	})
}
