package restore

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/safestic/safestic/cmd"
	resticCli "github.com/safestic/safestic/restic/cli"
)

var (
	Command = &cli.Command{
		Name:        "restore",
		Description: "Restore a snapshot into a timestamped directory",
		Action:      restoreMain,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "snapshot",
				Usage:   "full or short snapshot ID; defaults to the latest snapshot",
				EnvVars: []string{"RESTORE_SNAPSHOT"},
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "restrict the restore to matching paths; repeatable",
			},
			&cli.StringFlag{
				Name:  "original-path",
				Usage: "append this backed-up path to the restore target, with drive letters stripped",
			},
			&cli.BoolFlag{
				Name:  "verify",
				Usage: "verify restored files against the repository",
			},
		},
	}
)

func restoreMain(c *cli.Context) error {
	app, err := cmd.Setup(c, "restore")
	if err != nil {
		return cmd.Fatal(err)
	}
	defer app.Close()

	baseDir := app.Config.RestoreTargetDir
	if baseDir == "" {
		return app.Fail(fmt.Errorf("no restore target configured, set RESTORE_TARGET_DIR"))
	}

	snapshot, err := app.Restic.SnapshotInfo(c.Context, c.String("snapshot"))
	if err != nil {
		return app.Fail(err)
	}
	app.Log.Info("restoring snapshot", "snapshot", snapshot.ShortID, "time", snapshot.Time, "paths", snapshot.Paths)

	var targetDir string
	if original := c.String("original-path"); original != "" {
		targetDir, err = resticCli.TimestampedDirForPath(baseDir, snapshot.Time, original)
	} else {
		targetDir, err = resticCli.TimestampedDir(baseDir, snapshot.Time)
	}
	if err != nil {
		return app.Fail(err)
	}

	err = app.Restic.Restore(c.Context, resticCli.RestoreOptions{
		SnapshotID: snapshot.ShortID,
		TargetDir:  targetDir,
		Includes:   resticCli.ArrayOpts(c.StringSlice("include")),
		Verify:     c.Bool("verify"),
	})
	if err != nil {
		return app.Fail(err)
	}

	app.Transcript.Printf("restored snapshot %s to %s", snapshot.ShortID, targetDir)
	app.Log.Info("restore finished", "target", targetDir)
	fmt.Println(targetDir)
	return nil
}
