package credentials

import (
	"context"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/zalando/go-keyring"
)

// DefaultNamespace scopes keys in the OS keyring and the cloud secret
// managers. Independent deployments sharing this default namespace will
// collide on the same secrets; that is a documented operational hazard, not
// something the resolver mitigates.
const DefaultNamespace = "safestic"

// Resolver looks up secrets from a configured primary source, optionally
// falling back to environment variables.
//
// Lookups never fail the caller: any backend failure (missing SDK
// configuration, network failure, decryption failure) is logged and degrades
// to "absent". Only explicit required-credential checks downstream should
// fail the process.
type Resolver struct {
	namespace     string
	source        Source
	fallbackToEnv bool
	sopsFile      string
	logger        logr.Logger
}

// ResolverOptions configures a Resolver.
type ResolverOptions struct {
	// Namespace scopes keyring and cloud lookups; defaults to
	// DefaultNamespace.
	Namespace string
	// Source is the primary credential source.
	Source Source
	// FallbackToEnv enables falling back to environment variables when the
	// primary source yields nothing.
	FallbackToEnv bool
	// SopsFile is the encrypted .env file for SourceSops.
	SopsFile string
}

// NewResolver returns a new Resolver.
func NewResolver(logger logr.Logger, opts ResolverOptions) *Resolver {
	if opts.Namespace == "" {
		opts.Namespace = DefaultNamespace
	}
	return &Resolver{
		namespace:     opts.Namespace,
		source:        opts.Source,
		fallbackToEnv: opts.FallbackToEnv,
		sopsFile:      opts.SopsFile,
		logger:        logger.WithName("credentials"),
	}
}

// Get resolves a credential by key. The second return value reports whether
// a non-empty value was found.
func (r *Resolver) Get(ctx context.Context, key string) (string, bool) {
	if r.source == SourceEnv {
		return lookupEnv(key)
	}

	value, err := r.lookup(ctx, key)
	if err != nil {
		r.logger.Info("credential lookup failed, treating as absent",
			"key", key, "source", r.source.String(), "error", err.Error())
	}
	if value != "" {
		return value, true
	}

	if r.fallbackToEnv {
		if value, ok := lookupEnv(key); ok {
			r.logger.V(1).Info("using environment fallback", "key", key)
			return value, true
		}
	}
	return "", false
}

// Set stores a credential. Only the environment (process-local, not
// persisted) and the OS keyring (persisted) support writes; the cloud
// sources report that explicitly instead of silently doing nothing.
func (r *Resolver) Set(key, value string) error {
	switch r.source {
	case SourceEnv:
		r.logger.Info("setting credential in the process environment only, it will not persist", "key", key)
		return os.Setenv(key, value)
	case SourceKeyring:
		if err := keyring.Set(r.namespace, key, value); err != nil {
			return fmt.Errorf("cannot store %q in the keyring: %w", key, err)
		}
		return nil
	default:
		return fmt.Errorf("storing credentials is not implemented for source %q", r.source)
	}
}

func (r *Resolver) lookup(ctx context.Context, key string) (string, error) {
	switch r.source {
	case SourceKeyring:
		return r.fromKeyring(key)
	case SourceAWSSecrets:
		return r.fromAWSSecrets(ctx, key)
	case SourceAzureKeyVault:
		return r.fromAzureKeyVault(ctx, key)
	case SourceGCPSecrets:
		return r.fromGCPSecrets(ctx, key)
	case SourceSops:
		return r.fromSops(ctx, key)
	default:
		return "", nil
	}
}

func (r *Resolver) fromKeyring(key string) (string, error) {
	value, err := keyring.Get(r.namespace, key)
	if err == keyring.ErrNotFound {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("keyring lookup: %w", err)
	}
	return value, nil
}

func lookupEnv(key string) (string, bool) {
	value := os.Getenv(key)
	return value, value != ""
}
