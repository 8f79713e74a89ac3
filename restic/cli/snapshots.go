package cli

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/safestic/safestic/restic/dto"
)

// Snapshots lists all snapshots in the repository, optionally filtered by
// tags.
func (r *Restic) Snapshots(ctx context.Context, tags ArrayOpts) ([]dto.Snapshot, error) {
	log := r.logger.WithName("snapshots")
	log.Info("listing snapshots")

	args := tags.BuildArgs("--tag")
	args = append(args, "--json")

	return retry(ctx, r.retry, log, func() ([]dto.Snapshot, error) {
		cmd := NewCommand(ctx, log, r.transcript, r.commandOptions(r.globalFlags.ApplyToCommand("snapshots", args...)))
		result, err := cmd.Run()
		if err != nil {
			return nil, err
		}

		snaps := []dto.Snapshot{}
		if err := json.Unmarshal([]byte(result.Stdout), &snaps); err != nil {
			return nil, &Error{
				Kind:    KindCommand,
				Message: "cannot decode snapshot list: " + err.Error(),
				Stdout:  result.Stdout,
			}
		}
		return snaps, nil
	})
}

// SnapshotInfo returns one snapshot identified by its (possibly short) ID or
// the literal "latest".
func (r *Restic) SnapshotInfo(ctx context.Context, snapshotID string) (dto.Snapshot, error) {
	if snapshotID == "" {
		snapshotID = "latest"
	}

	log := r.logger.WithName("snapshots")
	log.Info("fetching snapshot", "snapshot", snapshotID)

	return retry(ctx, r.retry, log, func() (dto.Snapshot, error) {
		cmd := NewCommand(ctx, log, r.transcript, r.commandOptions(r.globalFlags.ApplyToCommand("snapshots", snapshotID, "--json")))
		result, err := cmd.Run()
		if err != nil {
			return dto.Snapshot{}, err
		}

		snaps := []dto.Snapshot{}
		if err := json.Unmarshal([]byte(result.Stdout), &snaps); err != nil {
			return dto.Snapshot{}, &Error{
				Kind:    KindCommand,
				Message: "cannot decode snapshot list: " + err.Error(),
				Stdout:  result.Stdout,
			}
		}
		if len(snaps) == 0 {
			return dto.Snapshot{}, &Error{
				Kind:    KindCommand,
				Message: "snapshot " + snapshotID + " not found in repository",
				Stdout:  result.Stdout,
			}
		}
		return snaps[0], nil
	})
}

// ListFiles lists the paths contained in a snapshot.
func (r *Restic) ListFiles(ctx context.Context, snapshotID string) ([]string, error) {
	if snapshotID == "" {
		snapshotID = "latest"
	}

	log := r.logger.WithName("ls")
	log.Info("listing snapshot contents", "snapshot", snapshotID)

	return retry(ctx, r.retry, log, func() ([]string, error) {
		cmd := NewCommand(ctx, log, r.transcript, r.commandOptions(r.globalFlags.ApplyToCommand("ls", snapshotID)))
		result, err := cmd.Run()
		if err != nil {
			return nil, err
		}

		files := make([]string, 0)
		for _, line := range strings.Split(result.Stdout, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				files = append(files, line)
			}
		}
		return files, nil
	})
}
