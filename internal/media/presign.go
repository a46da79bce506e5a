// Package media hands out presigned S3 URLs for player photos. The service
// never proxies image bytes; clients upload and download straight to the
// bucket with short-lived URLs.
package media

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// DefaultURLExpiry bounds how long an issued URL stays usable.
const DefaultURLExpiry = 15 * time.Minute

// Presigner issues upload and download URLs against one bucket.
type Presigner struct {
	presign *s3.PresignClient
	bucket  string
	expiry  time.Duration
}

// New builds a presigner with static credentials, matching the rest of the
// AWS client setup. An empty expiry falls back to DefaultURLExpiry.
func New(ctx context.Context, accessKeyID, secretAccessKey, region, bucket string, expiry time.Duration) (*Presigner, error) {
	if region == "" {
		return nil, fmt.Errorf("aws region is required")
	}
	if bucket == "" {
		return nil, fmt.Errorf("media bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if accessKeyID != "" && secretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	if expiry <= 0 {
		expiry = DefaultURLExpiry
	}
	return &Presigner{
		presign: s3.NewPresignClient(s3.NewFromConfig(awsCfg)),
		bucket:  bucket,
		expiry:  expiry,
	}, nil
}

// NewKey mints an object key for a fresh upload.
func NewKey() string {
	return "players/" + uuid.New().String() + ".jpg"
}

// UploadURL returns a presigned PUT URL for the object key.
func (p *Presigner) UploadURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("object key is required")
	}
	req, err := p.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(p.expiry))
	if err != nil {
		return "", fmt.Errorf("presign upload for %s: %w", key, err)
	}
	return req.URL, nil
}

// DownloadURL returns a presigned GET URL for the object key.
func (p *Presigner) DownloadURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("object key is required")
	}
	req, err := p.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(p.expiry))
	if err != nil {
		return "", fmt.Errorf("presign download for %s: %w", key, err)
	}
	return req.URL, nil
}
