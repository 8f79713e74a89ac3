package cfg

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/env"
)

// listSeparator splits BACKUP_SOURCE_DIRS, RESTIC_EXCLUDES and RESTIC_TAGS.
const listSeparator = ";"

// Config contains the user-provided configuration, combined with the
// defaults from NewDefaultConfig. It is populated once by Load at startup
// and treated as read-only afterwards.
var Config = NewDefaultConfig()

// Configuration holds a strongly-typed tree of the configuration.
type Configuration struct {
	StorageProvider  string `koanf:"storage_provider"`
	StorageBucket    string `koanf:"storage_bucket"`
	CredentialSource string `koanf:"credential_source"`
	SopsFile         string `koanf:"sops_file"`

	BackupSourceDirs string `koanf:"backup_source_dirs"`
	ResticExcludes   string `koanf:"restic_excludes"`
	ResticTags       string `koanf:"restic_tags"`

	RetentionEnabled bool `koanf:"retention_enabled"`
	KeepHourly       int  `koanf:"keep_hourly"`
	KeepDaily        int  `koanf:"keep_daily"`
	KeepWeekly       int  `koanf:"keep_weekly"`
	KeepMonthly      int  `koanf:"keep_monthly"`

	LogDir           string `koanf:"log_dir"`
	RestoreTargetDir string `koanf:"restore_target_dir"`
	MountPoint       string `koanf:"mount_point"`

	ResticBin     string `koanf:"restic_bin"`
	ResticOptions string `koanf:"restic_options"`

	MaxAttempts    int           `koanf:"max_attempts"`
	InitialBackoff time.Duration `koanf:"initial_backoff"`
	MaxBackoff     time.Duration `koanf:"max_backoff"`
	CommandTimeout time.Duration `koanf:"command_timeout"`

	PromURL string `koanf:"prom_url"`
}

// NewDefaultConfig retrieves the config with sane defaults.
func NewDefaultConfig() *Configuration {
	return &Configuration{
		CredentialSource: "env",
		KeepHourly:       0,
		KeepDaily:        7,
		KeepWeekly:       4,
		KeepMonthly:      6,
		LogDir:           "logs",
		ResticBin:        "restic",
		MaxAttempts:      3,
		InitialBackoff:   time.Second,
		MaxBackoff:       30 * time.Second,
	}
}

// Load reads an optional .env file and the process environment into a new
// Configuration, which is also stored in Config. Values already present in
// the environment win over the .env file. The environment is unmarshalled
// over a Configuration that already carries the defaults, so only keys
// actually present in the environment are overwritten; an explicit
// KEEP_DAILY=0 stays 0 instead of falling back to the default. Load is
// called exactly once at startup; all components receive the resulting
// values explicitly at construction.
func Load() (*Configuration, error) {
	// A missing .env file is fine, the environment alone may be complete.
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("cannot load environment variables: %w", err)
	}

	loaded := NewDefaultConfig()
	if err := k.UnmarshalWithConf("", loaded, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return nil, fmt.Errorf("cannot unmarshal configuration: %w", err)
	}

	*Config = *loaded
	return Config, nil
}

// SourceDirs returns the configured backup source directories.
func (c *Configuration) SourceDirs() []string {
	return splitList(c.BackupSourceDirs)
}

// Excludes returns the configured exclude patterns.
func (c *Configuration) Excludes() []string {
	return splitList(c.ResticExcludes)
}

// Tags returns the configured snapshot tags.
func (c *Configuration) Tags() []string {
	return splitList(c.ResticTags)
}

// Validate ensures a consistent configuration and returns an error should
// that not be the case.
func (c *Configuration) Validate() error {
	if _, err := BuildRepository(c.StorageProvider, c.StorageBucket); err != nil {
		return err
	}

	keep := map[string]int{
		"KEEP_HOURLY":  c.KeepHourly,
		"KEEP_DAILY":   c.KeepDaily,
		"KEEP_WEEKLY":  c.KeepWeekly,
		"KEEP_MONTHLY": c.KeepMonthly,
	}
	for name, value := range keep {
		if value < 0 {
			return fmt.Errorf("%s must not be negative, but was set to %d", name, value)
		}
	}

	if c.MaxAttempts < 1 {
		return fmt.Errorf("MAX_ATTEMPTS must be at least 1, but was set to %d", c.MaxAttempts)
	}
	return nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := make([]string, 0)
	for _, part := range strings.Split(raw, listSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
