// Package archive keeps a copy of relayed payloads in S3-compatible object
// storage. Archiving is best effort: a failed upload is logged and never
// fails the relay, and each upload is bounded by a short timeout.
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/insightdesk/internal/server/config"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// Item is one payload to store.
type Item struct {
	Kind        string
	AccountID   string
	ContentType string
	Body        []byte
}

// Archiver stores items and returns the object key.
type Archiver interface {
	Archive(ctx context.Context, item Item) (string, error)
}

// Nop discards everything. Used when no bucket is configured.
type Nop struct{}

func (Nop) Archive(context.Context, Item) (string, error) { return "", nil }

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 writes items to a bucket under StorageKey.
type S3 struct {
	client objectPutter
	bucket string
	now    func() time.Time
}

// NewS3 builds an S3 archiver from server config. Static credentials are
// used when S3AccessKey is set; otherwise the default AWS chain applies.
func NewS3(ctx context.Context, cfg *config.Config) (*S3, error) {
	if cfg.S3Bucket == "" {
		return nil, errors.New("s3 bucket is not configured")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &S3{client: client, bucket: cfg.S3Bucket, now: time.Now}, nil
}

// StorageKey lays objects out by kind, account and day.
func StorageKey(kind, accountID string, d time.Time) string {
	if accountID == "" {
		accountID = "anonymous"
	}
	return fmt.Sprintf("relay/%s/%s/%d/%d/%d/%v", kind, accountID, d.Year(), d.Month(), d.Day(), uuid.New())
}

func (a *S3) Archive(ctx context.Context, item Item) (string, error) {
	key := StorageKey(item.Kind, item.AccountID, a.now())

	contentType := item.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(item.Body),
		ContentLength: aws.Int64(int64(len(item.Body))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	return key, nil
}
