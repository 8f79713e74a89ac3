package credentials

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
)

// fromAzureKeyVault reads the secret named after the key from the vault
// given by AZURE_KEYVAULT_URL, authenticated via the default Azure
// credential chain.
func (r *Resolver) fromAzureKeyVault(ctx context.Context, key string) (string, error) {
	vaultURL := os.Getenv("AZURE_KEYVAULT_URL")
	if vaultURL == "" {
		return "", errors.New("AZURE_KEYVAULT_URL is not set")
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return "", fmt.Errorf("cannot build Azure credential: %w", err)
	}

	client, err := azsecrets.NewClient(vaultURL, cred, nil)
	if err != nil {
		return "", fmt.Errorf("cannot create Key Vault client: %w", err)
	}

	// Key Vault names use dashes; environment-style keys use underscores.
	resp, err := client.GetSecret(ctx, keyVaultSecretName(key), "", nil)
	if err != nil {
		return "", fmt.Errorf("cannot read secret %q: %w", key, err)
	}
	if resp.Value == nil {
		return "", nil
	}
	return *resp.Value, nil
}

func keyVaultSecretName(key string) string {
	name := make([]byte, len(key))
	for i := 0; i < len(key); i++ {
		if key[i] == '_' {
			name[i] = '-'
		} else {
			name[i] = key[i]
		}
	}
	return string(name)
}
