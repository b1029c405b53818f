package archive

import (
	"context"
	"errors"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/insightdesk/internal/server/config"
)

type fakePutter struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakePutter) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	f.body, _ = io.ReadAll(in.Body)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestStorageKey(t *testing.T) {
	d := time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)

	k := StorageKey("image", "acc-1", d)
	assert.Regexp(t, regexp.MustCompile(`^relay/image/acc-1/2025/3/7/[0-9a-f-]{36}$`), k)

	assert.Contains(t, StorageKey("document", "", d), "/anonymous/")
	assert.NotEqual(t, k, StorageKey("image", "acc-1", d))
}

func TestS3_Archive(t *testing.T) {
	fp := &fakePutter{}
	a := &S3{client: fp, bucket: "relay", now: func() time.Time { return time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC) }}

	key, err := a.Archive(context.Background(), Item{Kind: "image", AccountID: "acc-1", ContentType: "image/png", Body: []byte("png")})
	require.NoError(t, err)

	assert.Equal(t, "relay", aws.ToString(fp.in.Bucket))
	assert.Equal(t, key, aws.ToString(fp.in.Key))
	assert.Equal(t, "image/png", aws.ToString(fp.in.ContentType))
	assert.Equal(t, int64(3), aws.ToInt64(fp.in.ContentLength))
	assert.Equal(t, []byte("png"), fp.body)
	assert.Contains(t, key, "relay/image/acc-1/2025/1/2/")
}

func TestS3_Archive_DefaultContentTypeAndError(t *testing.T) {
	fp := &fakePutter{err: errors.New("access denied")}
	a := &S3{client: fp, bucket: "relay", now: time.Now}

	_, err := a.Archive(context.Background(), Item{Kind: "document", Body: []byte("text")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
	assert.Equal(t, "application/octet-stream", aws.ToString(fp.in.ContentType))
}

func TestNewS3_RequiresBucket(t *testing.T) {
	_, err := NewS3(context.Background(), &config.Config{})
	require.Error(t, err)
}

func TestNewS3_LoadConfigError(t *testing.T) {
	orig := loadDefaultAWSConfig
	defer func() { loadDefaultAWSConfig = orig }()
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}

	_, err := NewS3(context.Background(), &config.Config{S3Bucket: "b"})
	if err == nil || err.Error() != "load-fail" {
		t.Fatalf("want load-fail, got %v", err)
	}
}

func TestNewS3_UsesEndpointAndPathStyle(t *testing.T) {
	origLoad, origNew := loadDefaultAWSConfig, newS3ClientFromConfig
	defer func() { loadDefaultAWSConfig, newS3ClientFromConfig = origLoad, origNew }()

	var nOpts int
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		nOpts = len(optFns)
		return aws.Config{Region: "us-east-1"}, nil
	}
	var got s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&got)
		}
		return s3.NewFromConfig(cfg, optFns...)
	}

	a, err := NewS3(context.Background(), &config.Config{
		S3Bucket: "b", S3Region: "us-east-1", S3AccessKey: "ak", S3SecretKey: "sk", S3BaseEndpoint: "http://minio:9000",
	})
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, 2, nOpts, "region and static credentials")
	assert.Equal(t, "http://minio:9000", aws.ToString(got.BaseEndpoint))
	assert.True(t, got.UsePathStyle)
}

func TestNop(t *testing.T) {
	key, err := Nop{}.Archive(context.Background(), Item{})
	require.NoError(t, err)
	assert.Empty(t, key)
}
