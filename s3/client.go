// Package s3 provides a small reachability probe for S3-compatible storage,
// used by configuration validation to tell "bucket missing" apart from
// "restic failed" before any backup runs.
package s3

import (
	"context"
	"fmt"
	"net/url"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Client wraps the minio S3 client.
type Client struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	minioClient     *minio.Client
}

// New returns a new Client for the given endpoint URL.
func New(endpoint, accessKeyID, secretAccessKey string) *Client {
	return &Client{
		Endpoint:        endpoint,
		AccessKeyID:     accessKeyID,
		SecretAccessKey: secretAccessKey,
	}
}

// Connect creates the underlying minio client.
func (c *Client) Connect() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("cannot parse S3 endpoint URL: %w", err)
	}

	var ssl bool
	switch u.Scheme {
	case "https":
		ssl = true
	case "http":
		ssl = false
	default:
		return fmt.Errorf("endpoint %q has scheme %q, expected http or https", c.Endpoint, u.Scheme)
	}

	mc, err := minio.New(u.Host, &minio.Options{
		Creds:  credentials.NewStaticV4(c.AccessKeyID, c.SecretAccessKey, ""),
		Secure: ssl,
	})
	if err != nil {
		return fmt.Errorf("cannot create S3 client: %w", err)
	}
	c.minioClient = mc
	return nil
}

// BucketExists reports whether the named bucket exists and is reachable with
// the configured credentials.
func (c *Client) BucketExists(ctx context.Context, bucket string) (bool, error) {
	exists, err := c.minioClient.BucketExists(ctx, bucket)
	if err != nil {
		return false, fmt.Errorf("cannot query bucket %q: %w", bucket, err)
	}
	return exists, nil
}
