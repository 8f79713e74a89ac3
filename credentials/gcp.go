package credentials

import (
	"context"
	"errors"
	"fmt"
	"os"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// fromGCPSecrets reads the latest version of the secret named after the key
// from Google Cloud Secret Manager in the project given by GCP_PROJECT_ID.
func (r *Resolver) fromGCPSecrets(ctx context.Context, key string) (string, error) {
	projectID := os.Getenv("GCP_PROJECT_ID")
	if projectID == "" {
		return "", errors.New("GCP_PROJECT_ID is not set")
	}

	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("cannot create Secret Manager client: %w", err)
	}
	defer client.Close()

	name := fmt.Sprintf("projects/%s/secrets/%s/versions/latest", projectID, key)
	resp, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: name,
	})
	if err != nil {
		return "", fmt.Errorf("cannot read secret %q: %w", name, err)
	}
	return string(resp.Payload.Data), nil
}
