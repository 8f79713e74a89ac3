package repo

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/safestic/safestic/cmd"
)

var (
	Command = &cli.Command{
		Name:        "repo",
		Description: "Repository maintenance: init, check, unlock, stats and repair",
		Subcommands: []*cli.Command{
			{
				Name:        "init",
				Description: "Initialize the repository; succeeds if it already exists",
				Action:      initMain,
			},
			{
				Name:        "check",
				Description: "Check the repository for errors",
				Action:      checkMain,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "read-data-subset",
						Usage: "also read a subset of the pack data, e.g. '10%' or '1/5'",
					},
				},
			},
			{
				Name:        "unlock",
				Description: "Remove stale locks from the repository",
				Action:      unlockMain,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "also remove non-stale locks",
					},
				},
			},
			{
				Name:        "stats",
				Description: "Print repository statistics",
				Action:      statsMain,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "mode",
						Usage: "counting mode: restore-size, files-by-contents, blobs-per-file or raw-data",
						Value: "raw-data",
					},
				},
			},
			{
				Name:        "rebuild-index",
				Description: "Rebuild the repository index",
				Action:      rebuildIndexMain,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "read-all-packs",
						Usage: "read all pack files instead of trusting the existing index",
					},
				},
			},
			{
				Name:        "repair",
				Description: "Repair the index, snapshots or packs",
				Action:      repairMain,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "what",
						Usage:    "what to repair: index, snapshots or packs",
						Required: true,
					},
				},
			},
		},
	}
)

func initMain(c *cli.Context) error {
	app, err := cmd.Setup(c, "repo_init")
	if err != nil {
		return cmd.Fatal(err)
	}
	defer app.Close()

	if err := app.Restic.Init(c.Context); err != nil {
		return app.Fail(err)
	}
	app.Log.Info("repository ready", "repository", app.Repository)
	return nil
}

func checkMain(c *cli.Context) error {
	app, err := cmd.Setup(c, "repo_check")
	if err != nil {
		return cmd.Fatal(err)
	}
	defer app.Close()

	if err := app.Restic.Check(c.Context, c.String("read-data-subset")); err != nil {
		return app.Fail(err)
	}
	app.Log.Info("repository check passed")
	return nil
}

func unlockMain(c *cli.Context) error {
	app, err := cmd.Setup(c, "repo_unlock")
	if err != nil {
		return cmd.Fatal(err)
	}
	defer app.Close()

	if err := app.Restic.Unlock(c.Context, c.Bool("all")); err != nil {
		return app.Fail(err)
	}
	return nil
}

func statsMain(c *cli.Context) error {
	app, err := cmd.Setup(c, "repo_stats")
	if err != nil {
		return cmd.Fatal(err)
	}
	defer app.Close()

	stats, err := app.Restic.Stats(c.Context, c.String("mode"))
	if err != nil {
		return app.Fail(err)
	}
	fmt.Printf("total size:      %d bytes\n", stats.TotalSize)
	fmt.Printf("total files:     %d\n", stats.TotalFileCount)
	fmt.Printf("snapshots:       %d\n", stats.SnapshotsCount)
	return nil
}

func rebuildIndexMain(c *cli.Context) error {
	app, err := cmd.Setup(c, "repo_rebuild_index")
	if err != nil {
		return cmd.Fatal(err)
	}
	defer app.Close()

	if err := app.Restic.RebuildIndex(c.Context, c.Bool("read-all-packs")); err != nil {
		return app.Fail(err)
	}
	return nil
}

func repairMain(c *cli.Context) error {
	app, err := cmd.Setup(c, "repo_repair")
	if err != nil {
		return cmd.Fatal(err)
	}
	defer app.Close()

	if err := app.Restic.Repair(c.Context, c.String("what")); err != nil {
		return app.Fail(err)
	}
	return nil
}
