package schedule

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/safestic/safestic/cmd"
	"github.com/safestic/safestic/monitoring"
	resticCli "github.com/safestic/safestic/restic/cli"
)

var (
	Command = &cli.Command{
		Name:        "schedule",
		Description: "Run backups on a cron schedule until interrupted",
		Action:      scheduleMain,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "cron",
				Usage:   "cron expression for the backup, e.g. '0 2 * * *'",
				Value:   "0 2 * * *",
				EnvVars: []string{"BACKUP_SCHEDULE"},
			},
			&cli.BoolFlag{
				Name:  "run-on-start",
				Usage: "run one backup immediately before waiting for the schedule",
			},
		},
	}
)

func scheduleMain(c *cli.Context) error {
	app, err := cmd.Setup(c, "schedule")
	if err != nil {
		return cmd.Fatal(err)
	}
	defer app.Close()

	paths := app.Config.SourceDirs()
	if len(paths) == 0 {
		return app.Fail(fmt.Errorf("no backup paths configured, set BACKUP_SOURCE_DIRS"))
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	run := func() {
		if err := runBackup(c, app, paths); err != nil {
			app.Log.Error(err, "scheduled backup failed")
		}
	}

	scheduler := cron.New()
	entryID, err := scheduler.AddFunc(c.String("cron"), run)
	if err != nil {
		return app.Fail(fmt.Errorf("invalid cron expression %q: %w", c.String("cron"), err))
	}

	if c.Bool("run-on-start") {
		run()
	}

	scheduler.Start()
	app.Log.Info("scheduler started", "cron", c.String("cron"),
		"next", scheduler.Entry(entryID).Next)

	<-ctx.Done()
	app.Log.Info("shutting down, waiting for a running backup to finish")
	<-scheduler.Stop().Done()
	return nil
}

func runBackup(c *cli.Context, app *cmd.AppContext, paths []string) error {
	host := cmd.Hostname()
	metrics := monitoring.NewBackupMetrics(app.Config.PromURL, host)
	metrics.StartTimestamp.SetToCurrentTime()

	var mu sync.Mutex
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
				return nil
			}
			app.Transcript.Printf("snapshot %s saved for %s", id, path)
			return nil
		})
	}
	_ = g.Wait()

	if app.Config.RetentionEnabled && failures == 0 {
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
	if err := metrics.Push(); err != nil {
		app.Log.Error(err, "cannot push metrics", "url", app.Config.PromURL)
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d backup paths failed", failures, len(paths))
	}
	return nil
}
