package credentials

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envResolver() *Resolver {
	return NewResolver(logr.Discard(), ResolverOptions{Source: SourceEnv})
}

func TestResolver_Get_FromEnvironment(t *testing.T) {
	t.Setenv("RESTIC_PASSWORD", "hunter2")

	value, ok := envResolver().Get(context.Background(), "RESTIC_PASSWORD")

	assert.True(t, ok)
	assert.Equal(t, "hunter2", value)
}

func TestResolver_Get_AbsentKey(t *testing.T) {
	_, ok := envResolver().Get(context.Background(), "SAFESTIC_TEST_DOES_NOT_EXIST")

	assert.False(t, ok)
}

func TestResolver_Get_EmptyValueCountsAsAbsent(t *testing.T) {
	t.Setenv("SAFESTIC_TEST_EMPTY", "")

	_, ok := envResolver().Get(context.Background(), "SAFESTIC_TEST_EMPTY")

	assert.False(t, ok)
}

func TestResolver_Get_SopsFailureFallsBackToEnv(t *testing.T) {
	t.Setenv("RESTIC_PASSWORD", "from-env")

	resolver := NewResolver(logr.Discard(), ResolverOptions{
		Source:        SourceSops,
		FallbackToEnv: true,
		SopsFile:      "/does/not/exist.env",
	})
	value, ok := resolver.Get(context.Background(), "RESTIC_PASSWORD")

	assert.True(t, ok)
	assert.Equal(t, "from-env", value)
}

func TestResolver_Set_RejectsCloudSources(t *testing.T) {
	resolver := NewResolver(logr.Discard(), ResolverOptions{Source: SourceAWSSecrets})

	err := resolver.Set("RESTIC_PASSWORD", "hunter2")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not implemented")
}

func TestResolver_Set_EnvironmentIsProcessLocal(t *testing.T) {
	t.Setenv("SAFESTIC_TEST_SET", "old")

	require.NoError(t, envResolver().Set("SAFESTIC_TEST_SET", "new"))

	value, ok := envResolver().Get(context.Background(), "SAFESTIC_TEST_SET")
	assert.True(t, ok)
	assert.Equal(t, "new", value)
}

func TestParseSource(t *testing.T) {
	tests := map[string]struct {
		givenRaw       string
		expectedSource Source
		expectError    bool
	}{
		"GivenEnv":           {givenRaw: "env", expectedSource: SourceEnv},
		"GivenKeyring":       {givenRaw: "keyring", expectedSource: SourceKeyring},
		"GivenAWSSecrets":    {givenRaw: "aws_secrets", expectedSource: SourceAWSSecrets},
		"GivenAzureKeyVault": {givenRaw: "azure_keyvault", expectedSource: SourceAzureKeyVault},
		"GivenGCPSecrets":    {givenRaw: "gcp_secrets", expectedSource: SourceGCPSecrets},
		"GivenSops":          {givenRaw: "sops", expectedSource: SourceSops},
		"GivenUnknown":       {givenRaw: "vault", expectError: true},
		"GivenEmpty":         {givenRaw: "", expectError: true},
	}

	for name, params := range tests {
		t.Run(name, func(t *testing.T) {
			source, err := ParseSource(params.givenRaw)

			if params.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, params.expectedSource, source)
		})
	}
}

func TestScanDotenv(t *testing.T) {
	content := strings.Join([]string{
		"# credentials",
		"",
		"RESTIC_PASSWORD=hunter2",
		"AWS_ACCESS_KEY_ID = AKIAEXAMPLE ",
		"MALFORMED LINE",
	}, "\n")

	tests := map[string]struct {
		givenKey      string
		expectedValue string
	}{
		"GivenPlainKey":     {givenKey: "RESTIC_PASSWORD", expectedValue: "hunter2"},
		"GivenPaddedKey":    {givenKey: "AWS_ACCESS_KEY_ID", expectedValue: "AKIAEXAMPLE"},
		"GivenAbsentKey":    {givenKey: "AZURE_ACCOUNT_KEY", expectedValue: ""},
		"GivenCommentedKey": {givenKey: "# credentials", expectedValue: ""},
	}

	for name, params := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, params.expectedValue, scanDotenv(bytes.NewBufferString(content), params.givenKey))
		})
	}
}

func TestKeyVaultSecretName(t *testing.T) {
	assert.Equal(t, "RESTIC-PASSWORD", keyVaultSecretName("RESTIC_PASSWORD"))
	assert.Equal(t, "AWS-SECRET-ACCESS-KEY", keyVaultSecretName("AWS_SECRET_ACCESS_KEY"))
}

func TestExtractJSONField(t *testing.T) {
	t.Run("GivenJSONObject", func(t *testing.T) {
		assert.Equal(t, "hunter2", extractJSONField(`{"RESTIC_PASSWORD":"hunter2"}`, "RESTIC_PASSWORD"))
	})
	t.Run("GivenRawSecret", func(t *testing.T) {
		assert.Equal(t, "hunter2", extractJSONField("hunter2", "RESTIC_PASSWORD"))
	})
	t.Run("GivenJSONObjectWithoutTheField", func(t *testing.T) {
		assert.Equal(t, "", extractJSONField(`{"OTHER":"x"}`, "RESTIC_PASSWORD"))
	})
}

func TestBuildProcessEnv(t *testing.T) {
	t.Setenv("RESTIC_PASSWORD", "hunter2")
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIAEXAMPLE")

	env, err := envResolver().BuildProcessEnv(context.Background(), "s3:s3.amazonaws.com/bucket")

	require.NoError(t, err)
	assert.Contains(t, env, "RESTIC_REPOSITORY=s3:s3.amazonaws.com/bucket")
	assert.Contains(t, env, "RESTIC_PASSWORD=hunter2")
	assert.Contains(t, env, "AWS_ACCESS_KEY_ID=AKIAEXAMPLE")
}

func TestBuildProcessEnv_RequiresPassword(t *testing.T) {
	t.Setenv("RESTIC_PASSWORD", "")

	_, err := envResolver().BuildProcessEnv(context.Background(), "gs:bucket")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "RESTIC_PASSWORD")
}
