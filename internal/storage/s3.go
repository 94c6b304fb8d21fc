package storage

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/rowjay/insights-synth/internal/config"
)

// S3 writes archives to an S3-compatible bucket.
type S3 struct {
	Client *minio.Client
	Bucket string
}

func NewS3(cfg config.S3Store) (*S3, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 endpoint and bucket are required")
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.TLSInsecureSkip {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	lookup := minio.BucketLookupDNS
	if cfg.ForcePathStyle {
		lookup = minio.BucketLookupPath
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, cfg.SessionToken),
		Secure:       cfg.UseSSL,
		Region:       cfg.Region,
		Transport:    transport,
		BucketLookup: lookup,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	return &S3{Client: client, Bucket: cfg.Bucket}, nil
}

func (s *S3) Location(key string) string {
	return "s3://" + path.Join(s.Bucket, key)
}

// Put uploads reader. Unknown sizes (-1) are sent as a multipart stream, so
// the object only becomes visible once the upload completes.
func (s *S3) Put(ctx context.Context, key string, reader io.Reader, size int64, metadata map[string]string) error {
	ok, err := s.Client.BucketExists(ctx, s.Bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.Bucket, err)
	}
	if !ok {
		return fmt.Errorf("bucket %s does not exist", s.Bucket)
	}
	opts := minio.PutObjectOptions{UserMetadata: metadata, ContentType: "application/gzip"}
	if path.Ext(key) == ".zst" {
		opts.ContentType = "application/zstd"
	}
	if _, err := s.Client.PutObject(ctx, s.Bucket, key, reader, size, opts); err != nil {
		return fmt.Errorf("upload %s: %w", s.Location(key), err)
	}
	return nil
}

func (s *S3) Stat(ctx context.Context, key string) (ObjectInfo, error) {
	stat, err := s.Client.StatObject(ctx, s.Bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("stat %s: %w", s.Location(key), err)
	}
	return ObjectInfo{
		Key:      key,
		Location: s.Location(key),
		Size:     stat.Size,
		Modified: stat.LastModified,
		ETag:     stat.ETag,
		Metadata: stat.UserMetadata,
	}, nil
}

func (s *S3) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.Client.StatObject(ctx, s.Bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return false, nil
	}
	return false, err
}
