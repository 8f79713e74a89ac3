package cli

import (
	"fmt"
	"strings"

	"github.com/safestic/safestic/restic/logging"
)

// ErrorKind is the closed set of failure categories for restic invocations.
type ErrorKind int

const (
	// KindCommand is the fallback for failures that match no other category.
	KindCommand ErrorKind = iota
	// KindNetwork covers connectivity failures towards the repository backend.
	KindNetwork
	// KindRepository covers missing, invalid or corrupted repositories.
	KindRepository
	// KindAuthentication covers wrong passwords and rejected credentials.
	KindAuthentication
	// KindPermission covers filesystem and object-store permission failures.
	KindPermission
	// KindTimeout is raised when a wall-clock limit expired and the process
	// was terminated.
	KindTimeout
	// KindValidation covers caller-supplied invalid input, such as an empty
	// backup path list or an unknown storage provider.
	KindValidation
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindRepository:
		return "repository"
	case KindAuthentication:
		return "authentication"
	case KindPermission:
		return "permission"
	case KindTimeout:
		return "timeout"
	case KindValidation:
		return "validation"
	default:
		return "command"
	}
}

// Error is the failure of one restic invocation (or of its input
// validation). Command is stored redacted; Stdout and Stderr hold the raw
// process output for caller inspection and must never reach a log sink.
type Error struct {
	Kind     ErrorKind
	Message  string
	Command  []string
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s error: %s", e.Kind, e.Message)
	if len(e.Command) > 0 {
		msg += fmt.Sprintf(" (command: %s, exit code: %d)", strings.Join(e.Command, " "), e.ExitCode)
	}
	return msg
}

// newValidationError reports invalid caller input without an underlying
// process invocation.
func newValidationError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// The classification is an ordered substring heuristic over the tool's
// output text; the first matching category wins. Output wording can change
// between restic versions, so a cross-category message may classify wrongly.
// That is an accepted limitation, not something to guess stricter rules for.
var classifications = []struct {
	kind    ErrorKind
	message string
	needles []string
}{
	{KindNetwork, "network failure while accessing the repository",
		[]string{"network", "connection", "timeout", "dial tcp"}},
	{KindRepository, "repository failure",
		[]string{"repository not found", "invalid repository", "corrupted"}},
	{KindAuthentication, "authentication failure",
		[]string{"authentication", "access denied", "wrong password"}},
	{KindPermission, "permission failure",
		[]string{"permission", "access is denied", "not permitted"}},
}

// classify maps a failed invocation to a typed error. Only called for
// non-zero exit codes.
func classify(command []string, exitCode int, stdout, stderr string) *Error {
	combined := strings.ToLower(stdout + "\n" + stderr)

	err := &Error{
		Kind:     KindCommand,
		Message:  fmt.Sprintf("restic exited with code %d", exitCode),
		Command:  logging.RedactAll(command),
		ExitCode: exitCode,
		Stdout:   stdout,
		Stderr:   stderr,
	}

	for _, c := range classifications {
		for _, needle := range c.needles {
			if strings.Contains(combined, needle) {
				err.Kind = c.kind
				err.Message = c.message
				return err
			}
		}
	}
	return err
}
