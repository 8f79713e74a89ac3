package cli

import (
	"sort"
	"strings"
)

// Flags collects arguments to pass to restic, keyed by flag name. A key with
// several values is repeated once per value, a key with no values is emitted
// bare.
type Flags map[string][]string

// AddFlag appends the given values to the flag identified by key, creating
// the flag if it does not exist yet.
func (f Flags) AddFlag(key string, values ...string) {
	current, found := f[key]
	if found {
		f[key] = append(current, values...)
		return
	}
	f[key] = values
}

// Combine returns a new Flags instance containing the flags and values of
// both arguments.
func Combine(first, second Flags) Flags {
	combined := Flags{}
	for k, v := range first {
		combined[k] = v
	}
	for k, v := range second {
		if firstV, inFirst := first[k]; inFirst {
			combined[k] = append(append([]string{}, firstV...), v...)
		} else {
			combined[k] = v
		}
	}
	return combined
}

// ApplyToCommand builds the final argument vector
// `[command, flags..., commandArgs...]`. Flags are emitted in sorted key
// order so identical inputs always produce the identical argv.
func (f Flags) ApplyToCommand(command string, commandArgs ...string) []string {
	args := make([]string, 0)
	if command != "" {
		args = append(args, command)
	}

	keys := make([]string, 0, len(f))
	for key := range f {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		args = append(args, expand(key, f[key])...)
	}
	return append(args, commandArgs...)
}

func expand(flag string, values []string) []string {
	if len(values) == 0 {
		return []string{flag}
	}
	args := make([]string, 0, 2*len(values))
	for _, value := range values {
		args = append(args, flag, value)
	}
	return args
}

// ArrayOpts is a repeatable string option, used for tags and excludes.
type ArrayOpts []string

func (a *ArrayOpts) String() string {
	return strings.Join(*a, ", ")
}

// Set appends a value; it implements the flag.Value contract.
func (a *ArrayOpts) Set(value string) error {
	*a = append(*a, value)
	return nil
}

// BuildArgs repeats the given flag once per non-blank element.
func (a ArrayOpts) BuildArgs(flag string) []string {
	args := make([]string, 0, 2*len(a))
	for _, elem := range a {
		if strings.TrimSpace(elem) == "" {
			continue
		}
		args = append(args, flag, strings.TrimSpace(elem))
	}
	return args
}
