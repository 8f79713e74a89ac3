package cfg

import (
	"errors"
	"fmt"
	"strings"
)

// Supported storage providers.
const (
	ProviderAWS   = "aws"
	ProviderAzure = "azure"
	ProviderGCP   = "gcp"
)

// ErrInvalidProvider is returned for any storage provider outside the
// supported set. There is deliberately no fallback: silently picking a
// provider could route backups to the wrong backend.
var ErrInvalidProvider = errors.New("invalid storage provider")

// BuildRepository constructs the restic repository address for the given
// provider and bucket. The mapping is a pure function: identical inputs
// always produce the identical address.
func BuildRepository(provider, bucket string) (string, error) {
	if bucket == "" {
		return "", errors.New("STORAGE_BUCKET must not be empty")
	}

	switch strings.ToLower(provider) {
	case ProviderAWS:
		return fmt.Sprintf("s3:s3.amazonaws.com/%s", bucket), nil
	case ProviderAzure:
		return fmt.Sprintf("azure:%s:restic", bucket), nil
	case ProviderGCP:
		return fmt.Sprintf("gs:%s", bucket), nil
	default:
		return "", fmt.Errorf("%w: %q, use aws, azure or gcp", ErrInvalidProvider, provider)
	}
}
