package credentials

import (
	"context"
	"encoding/json"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// fromAWSSecrets reads `{namespace}/{key}` from AWS Secrets Manager. If the
// secret value parses as a JSON object, the field named after the key is
// extracted; otherwise the whole value is the credential.
func (r *Resolver) fromAWSSecrets(ctx context.Context, key string) (string, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return "", fmt.Errorf("cannot load AWS configuration: %w", err)
	}

	client := secretsmanager.NewFromConfig(awsCfg)
	secretID := fmt.Sprintf("%s/%s", r.namespace, key)

	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: &secretID,
	})
	if err != nil {
		return "", fmt.Errorf("cannot read secret %q: %w", secretID, err)
	}
	if out.SecretString == nil {
		return "", nil
	}

	return extractJSONField(*out.SecretString, key), nil
}

// extractJSONField returns the named field if the secret is a JSON object,
// the raw secret otherwise.
func extractJSONField(secret, key string) string {
	fields := map[string]string{}
	if err := json.Unmarshal([]byte(secret), &fields); err != nil {
		return secret
	}
	return fields[key]
}
