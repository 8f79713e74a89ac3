package credentials

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// resticPasswordKey is the one credential every operation requires.
const resticPasswordKey = "RESTIC_PASSWORD"

// providerCredentialKeys are resolved opportunistically: a provider setup
// that keeps them in the plain environment works without any secret store.
var providerCredentialKeys = []string{
	"AWS_ACCESS_KEY_ID",
	"AWS_SECRET_ACCESS_KEY",
	"AZURE_ACCOUNT_NAME",
	"AZURE_ACCOUNT_KEY",
	"GOOGLE_APPLICATION_CREDENTIALS",
	"GOOGLE_PROJECT_ID",
}

// BuildProcessEnv assembles the environment for a restic subprocess: the
// parent environment, the repository address, the repository password and
// whatever provider credentials the resolver can supply. The repository
// password is the only credential that is required; its absence is a hard
// failure here, after the resolver's graceful degradation has run its
// course.
func (r *Resolver) BuildProcessEnv(ctx context.Context, repository string) ([]string, error) {
	password, ok := r.Get(ctx, resticPasswordKey)
	if !ok {
		return nil, fmt.Errorf("required credential %s was not found in source %q", resticPasswordKey, r.source)
	}

	env := setEnv(os.Environ(), "RESTIC_REPOSITORY", repository)
	env = setEnv(env, resticPasswordKey, password)

	for _, key := range providerCredentialKeys {
		if value, ok := r.Get(ctx, key); ok {
			env = setEnv(env, key, value)
		}
	}
	return env, nil
}

// PasswordKey names the repository password credential.
const PasswordKey = resticPasswordKey

// ProviderKeys returns the optional provider credential key names.
func ProviderKeys() []string {
	return append([]string(nil), providerCredentialKeys...)
}

// setEnv replaces or appends one KEY=value entry.
func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, entry := range env {
		if strings.HasPrefix(entry, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}
