package cfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Configuration {
	c := NewDefaultConfig()
	c.StorageProvider = "aws"
	c.StorageBucket = "my-backups"
	return c
}

func TestConfiguration_Validate(t *testing.T) {
	t.Run("GivenValidConfig", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})
	t.Run("GivenUnknownProvider", func(t *testing.T) {
		c := validConfig()
		c.StorageProvider = "ftp"
		assert.Error(t, c.Validate())
	})
	t.Run("GivenMissingBucket", func(t *testing.T) {
		c := validConfig()
		c.StorageBucket = ""
		assert.Error(t, c.Validate())
	})
	t.Run("GivenNegativeKeepValue", func(t *testing.T) {
		c := validConfig()
		c.KeepWeekly = -1
		err := c.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "KEEP_WEEKLY")
	})
	t.Run("GivenZeroMaxAttempts", func(t *testing.T) {
		c := validConfig()
		c.MaxAttempts = 0
		assert.Error(t, c.Validate())
	})
	t.Run("GivenZeroKeepValuesAreValid", func(t *testing.T) {
		c := validConfig()
		c.KeepHourly, c.KeepDaily, c.KeepWeekly, c.KeepMonthly = 0, 0, 0, 0
		assert.NoError(t, c.Validate())
	})
}

func TestConfiguration_ListHelpers(t *testing.T) {
	tests := map[string]struct {
		givenRaw     string
		expectedList []string
	}{
		"GivenEmptyValue": {
			givenRaw:     "",
			expectedList: nil,
		},
		"GivenSingleEntry": {
			givenRaw:     "/home/user/documents",
			expectedList: []string{"/home/user/documents"},
		},
		"GivenSeveralEntries": {
			givenRaw:     "/home/user/documents;/etc;/var/lib",
			expectedList: []string{"/home/user/documents", "/etc", "/var/lib"},
		},
		"GivenBlankEntriesAreSkipped": {
			givenRaw:     "/etc;;  ;/var/lib",
			expectedList: []string{"/etc", "/var/lib"},
		},
		"GivenEntriesAreTrimmed": {
			givenRaw:     " /etc ; /var/lib ",
			expectedList: []string{"/etc", "/var/lib"},
		},
	}

	for name, params := range tests {
		t.Run(name, func(t *testing.T) {
			c := Configuration{BackupSourceDirs: params.givenRaw}
			assert.Equal(t, params.expectedList, c.SourceDirs())
		})
	}
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("STORAGE_PROVIDER", "gcp")
	t.Setenv("STORAGE_BUCKET", "my-bucket")
	t.Setenv("KEEP_DAILY", "14")

	loaded, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "gcp", loaded.StorageProvider)
	assert.Equal(t, "my-bucket", loaded.StorageBucket)
	assert.Equal(t, 14, loaded.KeepDaily)
	// Unset values keep their defaults.
	assert.Equal(t, 4, loaded.KeepWeekly)
	assert.Equal(t, "restic", loaded.ResticBin)
}

func TestLoad_ExplicitZeroOverridesDefault(t *testing.T) {
	t.Setenv("KEEP_DAILY", "0")
	t.Setenv("KEEP_WEEKLY", "0")
	t.Setenv("KEEP_MONTHLY", "0")

	loaded, err := Load()

	require.NoError(t, err)
	// 0 means "keep none of this granularity" and must survive loading.
	assert.Equal(t, 0, loaded.KeepDaily)
	assert.Equal(t, 0, loaded.KeepWeekly)
	assert.Equal(t, 0, loaded.KeepMonthly)
	// Keys absent from the environment still get their defaults.
	assert.Equal(t, 3, loaded.MaxAttempts)
}
