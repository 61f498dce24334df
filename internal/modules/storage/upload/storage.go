package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appcfg "github.com/penline/core/internal/config"
)

// Storage persists uploaded files under a generated name.
type Storage interface {
	Name() string
	Save(ctx context.Context, name, contentType string, body io.Reader, size int64) error
	// URL is where clients fetch the stored file.
	URL(name string) string
}

// LocalStorage writes files into a directory served at /uploads.
type LocalStorage struct {
	dir string
}

func NewLocalStorage(dir string) *LocalStorage {
	return &LocalStorage{dir: dir}
}

func (l *LocalStorage) Name() string { return appcfg.UploadLocal }

func (l *LocalStorage) Dir() string { return l.dir }

func (l *LocalStorage) Save(_ context.Context, name, _ string, body io.Reader, _ int64) error {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	dst := filepath.Join(l.dir, name)
	f, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("write %s: %w", name, err)
	}
	return f.Close()
}

func (l *LocalStorage) URL(name string) string { return "/uploads/" + name }

// S3Storage puts files into a bucket through the AWS SDK. Any S3 compatible
// endpoint works when Endpoint is set.
type S3Storage struct {
	client    *s3.Client
	bucket    string
	prefix    string
	publicURL string
}

func NewS3Storage(cfg appcfg.S3Config) (*S3Storage, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	opts := s3.Options{
		Region:       cfg.Region,
		UsePathStyle: cfg.PathStyle,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(strings.TrimRight(cfg.Endpoint, "/"))
	}
	if cfg.AccessKeyID != "" {
		opts.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}

	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		switch {
		case cfg.Endpoint != "":
			publicURL = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
		default:
			publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}

	return &S3Storage{
		client:    s3.New(opts),
		bucket:    cfg.Bucket,
		prefix:    strings.Trim(cfg.Prefix, "/"),
		publicURL: publicURL,
	}, nil
}

func (s *S3Storage) Name() string { return appcfg.UploadS3 }

func (s *S3Storage) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

func (s *S3Storage) Save(ctx context.Context, name, contentType string, body io.Reader, size int64) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key(name)),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3 upload %s/%s: %w", s.bucket, s.key(name), err)
	}
	return nil
}

func (s *S3Storage) URL(name string) string { return s.publicURL + "/" + s.key(name) }

// NewStorage builds the backend selected by cfg.
func NewStorage(cfg *appcfg.AppConfig) (Storage, error) {
	if cfg.Upload.Driver == appcfg.UploadS3 {
		return NewS3Storage(cfg.Upload.S3)
	}
	return NewLocalStorage(cfg.UploadDir()), nil
}
