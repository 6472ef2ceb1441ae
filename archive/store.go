package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Driver names a blob store backend.
type Driver string

const (
	DriverNone       Driver = "none"
	DriverFilesystem Driver = "fs"
	DriverS3         Driver = "s3"
)

// S3Config holds the parameters of an S3 compatible store (AWS S3, MinIO).
// Credentials come from the default AWS chain.
type S3Config struct {
	Bucket        string        `yaml:"bucket"`
	Region        string        `yaml:"region"`
	Endpoint      string        `yaml:"endpoint"`
	PathStyle     bool          `yaml:"path_style"`
	PresignExpiry time.Duration `yaml:"presign_expiry"`
}

// Config selects and configures the archive store.
type Config struct {
	Driver Driver   `yaml:"driver"`
	Dir    string   `yaml:"dir"`
	Prefix string   `yaml:"prefix"`
	S3     S3Config `yaml:"s3"`
}

// DefaultConfig disables uploads.
func DefaultConfig() Config {
	return Config{
		Driver: DriverNone,
		Dir:    "archives",
		Prefix: "protocols",
		S3:     S3Config{Region: "us-east-1", PresignExpiry: 24 * time.Hour},
	}
}

// Validate checks the selected driver's settings.
func (c Config) Validate() error {
	switch c.Driver {
	case DriverNone:
	case DriverFilesystem:
		if c.Dir == "" {
			return fmt.Errorf("archive dir required for %s driver", c.Driver)
		}
	case DriverS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("s3 bucket required for %s driver", c.Driver)
		}
	default:
		return fmt.Errorf("unknown archive driver %q", c.Driver)
	}
	return nil
}

// Store keeps uploaded archives. Put returns where the object can be fetched:
// a file path or a URL.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader) (string, error)
}

// NewStore returns the store selected by cfg, or nil for DriverNone.
func NewStore(ctx context.Context, cfg Config) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Driver {
	case DriverFilesystem:
		return NewFSStore(cfg.Dir)
	case DriverS3:
		return NewS3Store(ctx, cfg.S3)
	}
	return nil, nil
}

// ObjectKey builds a unique key for the archive of application number.
func ObjectKey(prefix, number string) string {
	name := fmt.Sprintf("%s-%s.zip", strings.NewReplacer("/", "_", `\`, "_").Replace(number), uuid.NewString())
	return path.Join(prefix, name)
}

// FSStore keeps archives below a local directory.
type FSStore struct {
	root string
}

// NewFSStore returns a store rooted at root, creating it if needed.
func NewFSStore(root string) (*FSStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &FSStore{root: root}, nil
}

// sanitizeKey ensures key doesn't escape root.
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty key")
	}
	if strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.FromSlash(path.Clean(key)), nil
}

func (s *FSStore) Put(ctx context.Context, key string, r io.Reader) (string, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	dest := filepath.Join(s.root, k)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", err
	}
	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dest)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return dest, nil
}

// S3Store uploads archives to a single bucket and hands out presigned
// download URLs.
type S3Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	expiry  time.Duration
}

// NewS3Store creates an S3 store from cfg.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newS3Store(client, cfg), nil
}

func newS3Store(client *s3.Client, cfg S3Config) *S3Store {
	expiry := cfg.PresignExpiry
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &S3Store{client: client, presign: s3.NewPresignClient(client), bucket: cfg.Bucket, expiry: expiry}
}

func (s *S3Store) Put(ctx context.Context, key string, r io.Reader) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String("application/zip"),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)},
		func(o *s3.PresignOptions) { o.Expires = s.expiry })
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return req.URL, nil
}
