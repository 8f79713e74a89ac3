package cli

import (
	"context"
	"os"
	"os/exec"
	"time"

	"github.com/safestic/safestic/restic/logging"
)

// mountGracePeriod bounds how long a mount process gets to unmount cleanly
// after an interrupt before it is killed.
const mountGracePeriod = 10 * time.Second

// Mount mounts the repository as a browsable filesystem at mountPoint and
// blocks until the process exits or the context is cancelled. On
// cancellation (typically an interrupt signal) the subprocess receives
// SIGINT so the FUSE mount is released cleanly, with a bounded grace period
// before force-kill. Mount is never retried.
func (r *Restic) Mount(ctx context.Context, mountPoint string, extraArgs []string) error {
	if mountPoint == "" {
		return newValidationError("a mount point must be specified")
	}
	if err := os.MkdirAll(mountPoint, 0o755); err != nil {
		return &Error{Kind: KindPermission, Message: "cannot create mount point: " + err.Error()}
	}

	log := r.logger.WithName("mount")
	log.Info("mounting repository", "mountPoint", mountPoint)
	log.Info("press ctrl-c to unmount")

	args := append([]string{mountPoint}, extraArgs...)
	argv := r.globalFlags.ApplyToCommand("mount", args...)

	cmd := exec.Command(r.resticPath, argv...)
	cmd.Env = r.env
	cmd.Stdout = logging.NewInfoWriter(log)
	cmd.Stderr = logging.NewErrorWriter(log)

	r.transcript.Command(append([]string{r.resticPath}, argv...))

	if err := cmd.Start(); err != nil {
		return &Error{Kind: KindCommand, Message: "cannot start mount: " + err.Error()}
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			if exitErr, ok := err.(*exec.ExitError); ok {
				return classify(append([]string{r.resticPath}, argv...), exitErr.ExitCode(), "", "")
			}
			return &Error{Kind: KindCommand, Message: err.Error()}
		}
		return nil

	case <-ctx.Done():
		log.Info("unmounting repository", "mountPoint", mountPoint)
		_ = cmd.Process.Signal(os.Interrupt)

		select {
		case <-done:
		case <-time.After(mountGracePeriod):
			log.Info("mount process did not exit in time, killing it")
			_ = cmd.Process.Kill()
			<-done
		}
		return nil
	}
}
