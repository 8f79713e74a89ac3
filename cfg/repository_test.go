package cfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRepository(t *testing.T) {
	tests := map[string]struct {
		givenProvider      string
		givenBucket        string
		expectedRepository string
		expectError        bool
	}{
		"GivenAWSProvider": {
			givenProvider:      "aws",
			givenBucket:        "my-backups",
			expectedRepository: "s3:s3.amazonaws.com/my-backups",
		},
		"GivenAzureProvider": {
			givenProvider:      "azure",
			givenBucket:        "my-container",
			expectedRepository: "azure:my-container:restic",
		},
		"GivenGCPProvider": {
			givenProvider:      "gcp",
			givenBucket:        "my-bucket",
			expectedRepository: "gs:my-bucket",
		},
		"GivenUppercaseProvider": {
			givenProvider:      "AWS",
			givenBucket:        "my-backups",
			expectedRepository: "s3:s3.amazonaws.com/my-backups",
		},
		"GivenUnknownProvider": {
			givenProvider: "local",
			givenBucket:   "my-backups",
			expectError:   true,
		},
		"GivenEmptyProvider": {
			givenProvider: "",
			givenBucket:   "my-backups",
			expectError:   true,
		},
		"GivenEmptyBucket": {
			givenProvider: "aws",
			givenBucket:   "",
			expectError:   true,
		},
	}

	for name, params := range tests {
		t.Run(name, func(t *testing.T) {
			repository, err := BuildRepository(params.givenProvider, params.givenBucket)

			if params.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, params.expectedRepository, repository)
		})
	}
}

func TestBuildRepository_UnknownProviderNamesTheProvider(t *testing.T) {
	_, err := BuildRepository("local", "bucket")

	require.ErrorIs(t, err, ErrInvalidProvider)
	assert.Contains(t, err.Error(), "local")
}
