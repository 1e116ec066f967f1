// Package images uploads incident photos to S3-compatible storage and
// returns the URL stored as the incident's image_url.
package images

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/citywatch/internal/netx"
	"github.com/google/uuid"
)

var ErrUploadsDisabled = errors.New("image uploads are not configured")

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}

	putObject = netx.PutPresigned
)

// Uploader stores a local image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, path string) (string, error)
}

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

type S3Uploader struct {
	cfg S3Config
	now func() time.Time
}

// NewS3Uploader returns nil when no endpoint is configured.
func NewS3Uploader(cfg S3Config) *S3Uploader {
	if cfg.Endpoint == "" {
		return nil
	}
	return &S3Uploader{cfg: cfg, now: time.Now}
}

// ObjectKey builds the storage key for a new image uploaded at t.
func ObjectKey(t time.Time, ext string) string {
	t = t.UTC()
	return fmt.Sprintf("incidents/%04d/%02d/%02d/%s%s", t.Year(), t.Month(), t.Day(), uuid.New(), strings.ToLower(ext))
}

// ObjectURL is the path-style URL of key in the configured bucket.
func (u *S3Uploader) ObjectURL(key string) string {
	return strings.TrimRight(u.cfg.Endpoint, "/") + "/" + u.cfg.Bucket + "/" + key
}

func (u *S3Uploader) presignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(u.cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			u.cfg.AccessKey,
			u.cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(u.cfg.Endpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// Upload reads the file at path, PUTs it through a presigned URL and
// returns the object URL.
func (u *S3Uploader) Upload(ctx context.Context, path string) (string, error) {
	if u == nil {
		return "", ErrUploadsDisabled
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}

	ext := filepath.Ext(path)
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	pc, err := u.presignClient(ctx)
	if err != nil {
		return "", fmt.Errorf("s3 config: %w", err)
	}

	bucket := u.cfg.Bucket
	key := ObjectKey(u.now(), ext)

	// Presigned PUT
	req, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: &contentType,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", fmt.Errorf("presign: %w", err)
	}

	if err := putObject(ctx, req.URL, contentType, data); err != nil {
		return "", err
	}

	return u.ObjectURL(key), nil
}
