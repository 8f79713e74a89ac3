package cli

import (
	"context"
	"strconv"

	"github.com/safestic/safestic/restic/logging"
)

// RetentionPolicy describes how many snapshots to keep per time granularity.
// A zero value is valid and means "keep none of this granularity".
type RetentionPolicy struct {
	KeepHourly  int
	KeepDaily   int
	KeepWeekly  int
	KeepMonthly int
	// Prune physically reclaims storage after forgetting.
	Prune bool
	// Tags restricts the policy to snapshots carrying all given tags.
	Tags ArrayOpts
}

// ApplyRetention forgets snapshots outside the policy and optionally prunes
// the repository. All four --keep flags are always emitted so that the
// executed policy is explicit.
func (r *Restic) ApplyRetention(ctx context.Context, policy RetentionPolicy) error {
	if policy.KeepHourly < 0 || policy.KeepDaily < 0 || policy.KeepWeekly < 0 || policy.KeepMonthly < 0 {
		return newValidationError("retention keep values must not be negative")
	}

	log := r.logger.WithName("retention")
	log.Info("applying retention policy",
		"hourly", policy.KeepHourly, "daily", policy.KeepDaily,
		"weekly", policy.KeepWeekly, "monthly", policy.KeepMonthly,
		"prune", policy.Prune)

	args := []string{
		"--keep-hourly", strconv.Itoa(policy.KeepHourly),
		"--keep-daily", strconv.Itoa(policy.KeepDaily),
		"--keep-weekly", strconv.Itoa(policy.KeepWeekly),
		"--keep-monthly", strconv.Itoa(policy.KeepMonthly),
	}
	args = append(args, policy.Tags.BuildArgs("--tag")...)
	if policy.Prune {
		args = append(args, "--prune")
	}

	return r.retry.Run(ctx, log, func() error {
		cmd := NewCommand(ctx, log, r.transcript, CommandOptions{
			Path:    r.resticPath,
			Args:    r.globalFlags.ApplyToCommand("forget", args...),
			Env:     r.env,
			Timeout: r.timeout,
			StdOut:  logging.NewInfoWriter(log),
			StdErr:  logging.NewErrorWriter(log),
		})
		_, err := cmd.Run()
		return err
	})
}
