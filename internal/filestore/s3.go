package filestore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/tenxer/handnav/internal/config"
	hnerr "github.com/tenxer/handnav/internal/errors"
)

const s3Prefix = "sketches/"

// S3Store keeps sketches as objects in an S3-compatible bucket. The
// bucket is created on first use.
type S3Store struct {
	client   *minio.Client
	bucket   string
	region   string
	initOnce sync.Once
	initErr  error
}

// NewS3Store validates cfg and builds the client. No request is made.
func NewS3Store(cfg config.S3Config) (*S3Store, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, hnerr.ConfigInvalid("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, hnerr.ConfigInvalid("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, hnerr.ConfigInvalid("s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return &S3Store{client: client, bucket: bucket, region: region}, nil
}

func (s *S3Store) ensureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.initErr = err
			return
		}
		if exists {
			return
		}
		s.initErr = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region})
	})
	return s.initErr
}

func (s *S3Store) Save(ctx context.Context, name, code string) (string, error) {
	safe, err := NormalizeName(name)
	if err != nil {
		return "", err
	}
	if err := s.ensureBucket(ctx); err != nil {
		return "", hnerr.StoreFailed("ensure bucket", s.bucket, err)
	}
	_, err = s.client.PutObject(ctx, s.bucket, objectKey(safe), strings.NewReader(code), int64(len(code)), minio.PutObjectOptions{
		ContentType: "text/x-arduino",
	})
	if err != nil {
		return "", hnerr.StoreFailed("save", safe, err)
	}
	return safe, nil
}

func (s *S3Store) List(ctx context.Context) ([]File, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return nil, hnerr.StoreFailed("ensure bucket", s.bucket, err)
	}
	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: s3Prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, hnerr.StoreFailed("list", s.bucket, obj.Err)
		}
		name := strings.TrimPrefix(obj.Key, s3Prefix)
		if strings.HasSuffix(name, Extension) && !strings.Contains(name, "/") {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	files := make([]File, 0, len(names))
	for _, name := range names {
		code, err := s.Load(ctx, name)
		if err != nil {
			return nil, err
		}
		files = append(files, File{Name: name, Code: code})
	}
	return files, nil
}

func (s *S3Store) Load(ctx context.Context, name string) (string, error) {
	safe, err := NormalizeName(name)
	if err != nil {
		return "", err
	}
	if err := s.ensureBucket(ctx); err != nil {
		return "", hnerr.StoreFailed("ensure bucket", s.bucket, err)
	}
	obj, err := s.client.GetObject(ctx, s.bucket, objectKey(safe), minio.GetObjectOptions{})
	if err != nil {
		return "", hnerr.StoreFailed("load", safe, err)
	}
	defer func() { _ = obj.Close() }()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, obj); err != nil {
		if code := minio.ToErrorResponse(err).Code; code == "NoSuchKey" || code == "NoSuchBucket" {
			return "", ErrNotFound
		}
		return "", hnerr.StoreFailed("load", safe, err)
	}
	return buf.String(), nil
}

func objectKey(name string) string {
	return s3Prefix + name
}
