package credentials

import "fmt"

// Source identifies the backend from which secret values are resolved. It is
// a closed set: unknown strings are rejected at parse time instead of being
// silently mapped to a default.
type Source int

const (
	// SourceEnv reads process environment variables (including those loaded
	// from a .env file at startup).
	SourceEnv Source = iota
	// SourceKeyring uses the operating system's secret storage facility.
	SourceKeyring
	// SourceAWSSecrets uses AWS Secrets Manager.
	SourceAWSSecrets
	// SourceAzureKeyVault uses Azure Key Vault.
	SourceAzureKeyVault
	// SourceGCPSecrets uses Google Cloud Secret Manager.
	SourceGCPSecrets
	// SourceSops reads a SOPS-encrypted .env file, decrypted on demand by
	// the external sops binary.
	SourceSops
)

var sourceNames = map[Source]string{
	SourceEnv:           "env",
	SourceKeyring:       "keyring",
	SourceAWSSecrets:    "aws_secrets",
	SourceAzureKeyVault: "azure_keyvault",
	SourceGCPSecrets:    "gcp_secrets",
	SourceSops:          "sops",
}

func (s Source) String() string {
	if name, ok := sourceNames[s]; ok {
		return name
	}
	return fmt.Sprintf("source(%d)", int(s))
}

// ParseSource converts a configuration string into a Source.
func ParseSource(raw string) (Source, error) {
	for source, name := range sourceNames {
		if name == raw {
			return source, nil
		}
	}
	return SourceEnv, fmt.Errorf("unknown credential source %q, use env, keyring, aws_secrets, azure_keyvault, gcp_secrets or sops", raw)
}
