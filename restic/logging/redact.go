package logging

import "regexp"

// Redacted is the placeholder that replaces secret values in anything that
// reaches a log sink or the terminal.
const Redacted = "***"

type redactRule struct {
	pattern     *regexp.Regexp
	replacement string
}

// The rules cover KEY=value assignments of password- and key-bearing
// environment variables as well as password arguments on restic command
// lines. Order matters only for readability; the rules are disjoint.
var redactRules = []redactRule{
	{regexp.MustCompile(`(RESTIC_PASSWORD=)[^\s,]+`), "${1}" + Redacted},
	{regexp.MustCompile(`(AWS_[A-Z_]+=)[^\s,]+`), "${1}" + Redacted},
	{regexp.MustCompile(`(AZURE_[A-Z_]+=)[^\s,]+`), "${1}" + Redacted},
	{regexp.MustCompile(`(GOOGLE_[A-Z_]+=)[^\s,]+`), "${1}" + Redacted},
	{regexp.MustCompile(`((?:-p|--password|--password-file)[ =])[^\s]+`), "${1}" + Redacted},
}

// Redact scrubs secret values from the given text. It never fails, text
// without a match is returned unchanged, and the function is idempotent:
// Redact(Redact(s)) == Redact(s).
func Redact(text string) string {
	for _, rule := range redactRules {
		text = rule.pattern.ReplaceAllString(text, rule.replacement)
	}
	return text
}

// passwordFlags take their secret in the next argv element when flag and
// value are split, which the per-element rules cannot see.
var passwordFlags = map[string]bool{
	"-p":              true,
	"--password":      true,
	"--password-file": true,
}

// RedactAll scrubs every element of a command line and returns the result as
// a new slice, leaving the original untouched. Besides the per-element
// rules, the element following a bare password flag is replaced wholesale.
func RedactAll(args []string) []string {
	redacted := make([]string, len(args))
	for i, arg := range args {
		redacted[i] = Redact(arg)
	}
	for i, arg := range args {
		if passwordFlags[arg] && i+1 < len(redacted) {
			redacted[i+1] = Redacted
		}
	}
	return redacted
}
