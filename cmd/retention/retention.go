package retention

import (
	"github.com/urfave/cli/v2"

	"github.com/safestic/safestic/cmd"
	resticCli "github.com/safestic/safestic/restic/cli"
)

var (
	Command = &cli.Command{
		Name:        "retention",
		Description: "Forget snapshots outside the retention policy and prune the repository",
		Action:      retentionMain,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-prune",
				Usage: "forget snapshots but do not reclaim storage",
			},
		},
	}
)

func retentionMain(c *cli.Context) error {
	app, err := cmd.Setup(c, "retention")
	if err != nil {
		return cmd.Fatal(err)
	}
	defer app.Close()

	if !app.Config.RetentionEnabled {
		app.Log.Info("retention is disabled, set RETENTION_ENABLED=true to apply the policy")
		return nil
	}

	policy := resticCli.RetentionPolicy{
		KeepHourly:  app.Config.KeepHourly,
		KeepDaily:   app.Config.KeepDaily,
		KeepWeekly:  app.Config.KeepWeekly,
		KeepMonthly: app.Config.KeepMonthly,
		Prune:       !c.Bool("no-prune"),
		Tags:        resticCli.ArrayOpts(app.Config.Tags()),
	}
	app.Log.Info("applying retention policy",
		"hourly", policy.KeepHourly, "daily", policy.KeepDaily,
		"weekly", policy.KeepWeekly, "monthly", policy.KeepMonthly,
		"prune", policy.Prune)

	if err := app.Restic.ApplyRetention(c.Context, policy); err != nil {
		return app.Fail(err)
	}
	app.Transcript.Printf("retention policy applied")
	return nil
}
