package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"socialgraph/internal/config"
)

const snapshotContentType = "text/plain; charset=utf-8"

// ErrSnapshotConfig is returned when snapshots are requested without a bucket.
var ErrSnapshotConfig = errors.New("missing snapshot bucket configuration")

// ObjectPutter is the part of the S3 client the uploader needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// SnapshotUploader copies the compacted journal to an S3-compatible bucket.
type SnapshotUploader struct {
	client ObjectPutter
	bucket string
	prefix string
	now    func() time.Time
	log    *zap.Logger
}

// NewSnapshotUploader builds an S3 client from cfg. A custom endpoint switches
// to path-style addressing, which R2 and MinIO expect.
func NewSnapshotUploader(ctx context.Context, cfg *config.Config, log *zap.Logger) (*SnapshotUploader, error) {
	if cfg.SnapshotBucket == "" {
		return nil, ErrSnapshotConfig
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.SnapshotRegion)}
	if cfg.SnapshotAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.SnapshotAccessKeyID, cfg.SnapshotSecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.SnapshotEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.SnapshotEndpoint)
			o.UsePathStyle = true
		}
	})

	return NewSnapshotUploaderWithClient(client, cfg.SnapshotBucket, cfg.SnapshotPrefix, log), nil
}

func NewSnapshotUploaderWithClient(client ObjectPutter, bucket, prefix string, log *zap.Logger) *SnapshotUploader {
	return &SnapshotUploader{
		client: client,
		bucket: bucket,
		prefix: prefix,
		now:    time.Now,
		log:    log.Named("snapshot"),
	}
}

// Upload stores the file at localPath under a new key and returns the key.
// Keys sort chronologically: <prefix>/<UTC timestamp>-<uuid>.db
func (u *SnapshotUploader) Upload(ctx context.Context, localPath string) (string, error) {
	body, err := os.ReadFile(localPath)
	if err != nil {
		return "", fmt.Errorf("read snapshot source: %w", err)
	}

	key := u.objectKey()
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(snapshotContentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}

	u.log.Info("snapshot uploaded",
		zap.String("bucket", u.bucket),
		zap.String("key", key),
		zap.Int("bytes", len(body)))
	return key, nil
}

func (u *SnapshotUploader) objectKey() string {
	name := fmt.Sprintf("%s-%s.db", u.now().UTC().Format("20060102T150405Z"), uuid.NewString())
	if u.prefix == "" {
		return name
	}
	return path.Join(u.prefix, name)
}
