package validate

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/safestic/safestic/cfg"
	"github.com/safestic/safestic/cmd"
	"github.com/safestic/safestic/credentials"
	"github.com/safestic/safestic/s3"
)

// awsEndpoint is probed when the storage provider is aws.
const awsEndpoint = "https://s3.amazonaws.com"

var (
	Command = &cli.Command{
		Name:        "validate",
		Description: "Validate the configuration, credentials and repository reachability",
		Action:      validateMain,
	}
)

// report collects validation results. Critical failures make the setup
// unusable; warnings indicate a setup that works but is incomplete.
type report struct {
	critical []string
	warnings []string
}

func (r *report) fail(format string, args ...interface{}) {
	r.critical = append(r.critical, fmt.Sprintf(format, args...))
}

func (r *report) warn(format string, args ...interface{}) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

func validateMain(c *cli.Context) error {
	log := cmd.Logger(c, "validate")
	config := cfg.Config
	r := &report{}

	if err := config.Validate(); err != nil {
		r.fail("configuration: %s", err)
	}

	if _, err := exec.LookPath(config.ResticBin); err != nil {
		r.fail("restic binary %q not found on PATH", config.ResticBin)
	}

	resolver, resolverErr := cmd.NewResolver(c)
	if resolverErr != nil {
		r.fail("credential source: %s", resolverErr)
	} else {
		if _, ok := resolver.Get(c.Context, credentials.PasswordKey); !ok {
			r.fail("required credential %s does not resolve", credentials.PasswordKey)
		}
		for _, key := range providerKeysFor(config.StorageProvider) {
			if _, ok := resolver.Get(c.Context, key); !ok {
				r.warn("provider credential %s does not resolve", key)
			}
		}
	}

	if len(r.critical) == 0 {
		checkRepository(c, r)
	}

	for _, msg := range r.critical {
		fmt.Printf("FAIL  %s\n", msg)
	}
	for _, msg := range r.warnings {
		fmt.Printf("WARN  %s\n", msg)
	}

	switch {
	case len(r.critical) > 0:
		log.Info("validation failed", "critical", len(r.critical), "warnings", len(r.warnings))
		return cli.Exit("configuration is invalid", 1)
	case len(r.warnings) > 0:
		log.Info("validation passed with warnings", "warnings", len(r.warnings))
		return cli.Exit("configuration is partially valid", 2)
	default:
		fmt.Println("OK    configuration is valid")
		return nil
	}
}

// checkRepository probes the backend. For aws the bucket is probed directly
// over the S3 API, which distinguishes a missing bucket from an
// uninitialized repository. All providers then get a repository access
// check through restic itself.
func checkRepository(c *cli.Context, r *report) {
	app, err := cmd.Setup(c, "validate")
	if err != nil {
		r.fail("setup: %s", err)
		return
	}
	defer app.Close()

	if strings.EqualFold(app.Config.StorageProvider, cfg.ProviderAWS) {
		accessKey, _ := app.Resolver.Get(c.Context, "AWS_ACCESS_KEY_ID")
		secretKey, _ := app.Resolver.Get(c.Context, "AWS_SECRET_ACCESS_KEY")
		client := s3.New(awsEndpoint, accessKey, secretKey)
		if err := client.Connect(); err != nil {
			r.warn("cannot connect to S3: %s", err)
		} else if exists, err := client.BucketExists(c.Context, app.Config.StorageBucket); err != nil {
			r.warn("cannot probe bucket %s: %s", app.Config.StorageBucket, err)
		} else if !exists {
			r.warn("bucket %s does not exist or is not accessible", app.Config.StorageBucket)
		}
	}

	if err := app.Restic.CheckAccess(c.Context); err != nil {
		r.warn("repository %s is not accessible: %s", app.Repository, err)
	}
}

func providerKeysFor(provider string) []string {
	switch strings.ToLower(provider) {
	case cfg.ProviderAWS:
		return []string{"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY"}
	case cfg.ProviderAzure:
		return []string{"AZURE_ACCOUNT_NAME", "AZURE_ACCOUNT_KEY"}
	case cfg.ProviderGCP:
		return []string{"GOOGLE_APPLICATION_CREDENTIALS"}
	default:
		return nil
	}
}
