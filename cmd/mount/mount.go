package mount

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/safestic/safestic/cfg"
	"github.com/safestic/safestic/cmd"
)

var (
	Command = &cli.Command{
		Name:        "mount",
		Description: "Mount the repository as a read-only filesystem until interrupted",
		Action:      mountMain,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "mount-point",
				Usage:   "directory to mount the repository on",
				EnvVars: []string{"MOUNT_POINT"},
			},
		},
	}

	UnmountCommand = &cli.Command{
		Name:        "unmount",
		Description: "Unmount a repository left mounted by a previous run",
		Action:      unmountMain,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "mount-point",
				Usage:   "directory the repository is mounted on",
				EnvVars: []string{"MOUNT_POINT"},
			},
		},
	}
)

func mountMain(c *cli.Context) error {
	app, err := cmd.Setup(c, "mount")
	if err != nil {
		return cmd.Fatal(err)
	}
	defer app.Close()

	mountPoint := c.String("mount-point")
	if mountPoint == "" {
		mountPoint = app.Config.MountPoint
	}
	if mountPoint == "" {
		return app.Fail(fmt.Errorf("no mount point configured, set MOUNT_POINT or pass --mount-point"))
	}

	if !app.Restic.SupportsMount(c.Context) {
		return app.Fail(fmt.Errorf("this restic build does not support mount, a FUSE-enabled build is required"))
	}

	if err := os.MkdirAll(mountPoint, 0o755); err != nil {
		return app.Fail(fmt.Errorf("cannot create mount point: %w", err))
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app.Log.Info("mounting repository, press ctrl-c to unmount", "mountPoint", mountPoint)
	if err := app.Restic.Mount(ctx, mountPoint, nil); err != nil && ctx.Err() == nil {
		return app.Fail(err)
	}
	app.Log.Info("unmounted", "mountPoint", mountPoint)
	return nil
}

func unmountMain(c *cli.Context) error {
	log := cmd.Logger(c, "unmount")

	mountPoint := c.String("mount-point")
	if mountPoint == "" {
		mountPoint = cfg.Config.MountPoint
	}
	if mountPoint == "" {
		return cli.Exit("no mount point configured, set MOUNT_POINT or pass --mount-point", 1)
	}

	// fusermount is the Linux FUSE unmounter; umount covers the rest.
	var out []byte
	var err error
	if path, lookErr := exec.LookPath("fusermount"); lookErr == nil {
		out, err = exec.CommandContext(c.Context, path, "-u", mountPoint).CombinedOutput()
	} else {
		out, err = exec.CommandContext(c.Context, "umount", mountPoint).CombinedOutput()
	}
	if err != nil {
		log.Error(err, "unmount failed", "mountPoint", mountPoint, "output", strings.TrimSpace(string(out)))
		return cli.Exit(fmt.Sprintf("cannot unmount %s: %v", mountPoint, err), 1)
	}
	log.Info("unmounted", "mountPoint", mountPoint)
	return nil
}
