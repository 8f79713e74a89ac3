package main

import (
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/urfave/cli/v2"

	"github.com/safestic/safestic/cfg"
	"github.com/safestic/safestic/cmd"
	"github.com/safestic/safestic/cmd/backup"
	"github.com/safestic/safestic/cmd/credentials"
	"github.com/safestic/safestic/cmd/mount"
	"github.com/safestic/safestic/cmd/repo"
	"github.com/safestic/safestic/cmd/restore"
	"github.com/safestic/safestic/cmd/retention"
	"github.com/safestic/safestic/cmd/schedule"
	"github.com/safestic/safestic/cmd/snapshots"
	"github.com/safestic/safestic/cmd/validate"
)

// Strings are populated by Goreleaser
var (
	version = "snapshot"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	err := app().Run(os.Args)
	if err != nil {
		log.Fatalf("unable to start safestic: %v", err)
	}
}

func before(c *cli.Context) error {
	logger := cmd.NewConsoleLogger(c.Bool("debug"))
	cmd.SetAppLogger(c, logger)

	logger.WithName("safestic").WithValues(
		"version", version,
		"date", date,
		"commit", commit,
		"go_os", runtime.GOOS,
		"go_arch", runtime.GOARCH,
		"go_version", runtime.Version(),
	).V(1).Info("starting safestic")

	if _, err := cfg.Load(); err != nil {
		return err
	}
	return nil
}

func app() *cli.App {
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Printf("version=%s revision=%s date=%s\n", c.App.Version, commit, date)
	}

	return &cli.App{
		Name:                 "safestic",
		Usage:                "automated restic backups with pluggable credential sources",
		Version:              version,
		EnableBashCompletion: true,
		Before:               before,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "debug",
				Aliases:     []string{"verbose", "d"},
				Usage:       "sets the log level to debug",
				EnvVars:     []string{"SAFESTIC_DEBUG"},
				DefaultText: "false",
			},
		},
		Commands: []*cli.Command{
			backup.Command,
			restore.Command,
			snapshots.Command,
			retention.Command,
			repo.Command,
			mount.Command,
			mount.UnmountCommand,
			credentials.Command,
			validate.Command,
			schedule.Command,
		},
	}
}
