package backup

import (
	"fmt"
	"sync"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/safestic/safestic/cmd"
	"github.com/safestic/safestic/monitoring"
	resticCli "github.com/safestic/safestic/restic/cli"
)

var (
	Command = &cli.Command{
		Name:        "backup",
		Description: "Back up the configured source directories into the repository",
		Action:      backupMain,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "path",
				Usage:   "directory to back up; repeatable, overrides BACKUP_SOURCE_DIRS",
				EnvVars: []string{"BACKUP_PATH"},
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "hostname to record in the snapshot, defaults to the local hostname",
			},
			&cli.BoolFlag{
				Name:  "skip-retention",
				Usage: "do not apply the retention policy after the backup",
			},
		},
	}
)

func backupMain(c *cli.Context) error {
	app, err := cmd.Setup(c, "backup")
	if err != nil {
		return cmd.Fatal(err)
	}
	defer app.Close()

	paths := c.StringSlice("path")
	if len(paths) == 0 {
		paths = app.Config.SourceDirs()
	}
	if len(paths) == 0 {
		return app.Fail(fmt.Errorf("no backup paths configured, set BACKUP_SOURCE_DIRS or pass --path"))
	}

	host := c.String("host")
	if host == "" {
		host = cmd.Hostname()
	}

	metrics := monitoring.NewBackupMetrics(app.Config.PromURL, host)
	metrics.StartTimestamp.SetToCurrentTime()

	if err := app.Restic.CheckAccess(c.Context); err != nil {
		return app.Fail(err)
	}

	// Each path becomes its own snapshot, so a broken source directory does
	// not abort the remaining ones.
	var mu sync.Mutex
	snapshots := make(map[string]string, len(paths))
	failures := 0

	g, groupCtx := errgroup.WithContext(c.Context)
	g.SetLimit(2)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			id, err := app.Restic.Backup(groupCtx, resticCli.BackupOptions{
				Paths:    []string{path},
				Excludes: resticCli.ArrayOpts(app.Config.Excludes()),
				Tags:     resticCli.ArrayOpts(app.Config.Tags()),
				Host:     host,
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures++
				app.Log.Error(err, "backup of path failed", "path", path)
				app.Transcript.Printf("backup failed for %s", path)
				return nil
			}
			snapshots[path] = id
			app.Transcript.Printf("snapshot %s saved for %s", id, path)
			return nil
		})
	}
	_ = g.Wait()

	if !c.Bool("skip-retention") && app.Config.RetentionEnabled && failures == 0 {
		err := app.Restic.ApplyRetention(c.Context, resticCli.RetentionPolicy{
			KeepHourly:  app.Config.KeepHourly,
			KeepDaily:   app.Config.KeepDaily,
			KeepWeekly:  app.Config.KeepWeekly,
			KeepMonthly: app.Config.KeepMonthly,
			Prune:       true,
			Tags:        resticCli.ArrayOpts(app.Config.Tags()),
		})
		if err != nil {
			app.Log.Error(err, "retention failed after backup")
			failures++
		}
	}

	metrics.EndTimestamp.SetToCurrentTime()
	metrics.Errors.Set(float64(failures))
	if list, err := app.Restic.Snapshots(c.Context, nil); err == nil {
		metrics.AvailableSnapshots.Set(float64(len(list)))
	}
	if err := metrics.Push(); err != nil {
		app.Log.Error(err, "cannot push metrics", "url", app.Config.PromURL)
	}

	if failures > 0 {
		return app.Fail(fmt.Errorf("%d of %d backup paths failed", failures, len(paths)))
	}
	app.Log.Info("backup finished", "snapshots", len(snapshots))
	return nil
}
