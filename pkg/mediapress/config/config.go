// Package config loads server configuration from the environment and builds
// the service's store handles. Selection is URL-scheme driven:
//
//	DATABASE_URL: "memory" | "postgres://..." | "sqlite:///path/to.db"
//	STORAGE_URL:  "memory://" | "file:///path/to/data" | "s3://bucket?region=..."
package config

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mediapress/mediapress/pkg/mediapress"
	memoryrepo "github.com/mediapress/mediapress/pkg/mediapress/repo/memory"
	postgresrepo "github.com/mediapress/mediapress/pkg/mediapress/repo/postgres"
	sqliterepo "github.com/mediapress/mediapress/pkg/mediapress/repo/sqlite"
	fsstorage "github.com/mediapress/mediapress/pkg/mediapress/storage/fs"
	memorystorage "github.com/mediapress/mediapress/pkg/mediapress/storage/memory"
	s3storage "github.com/mediapress/mediapress/pkg/mediapress/storage/s3"
)

// ServerConfig represents server configuration for the mediapress service
type ServerConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`

	DatabaseURL string `env:"DATABASE_URL" env-default:"memory"`
	StorageURL  string `env:"STORAGE_URL" env-default:"memory://"`

	JWTSecret string `env:"JWT_SECRET" env-default:"dev-secret-change-me"`

	// S3 credentials, used when STORAGE_URL has the s3 scheme.
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" env-default:""`
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" env-default:""`

	StrictBlobDeletes bool `env:"STRICT_BLOB_DELETES" env-default:"false"`
}

// Load reads the server configuration from the environment.
func Load() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	return &cfg, nil
}

// BuildRepository constructs the record store selected by DATABASE_URL. The
// returned cleanup releases any underlying pool or file handle.
func (c *ServerConfig) BuildRepository(ctx context.Context) (mediapress.Repository, func(), error) {
	switch {
	case c.DatabaseURL == "" || c.DatabaseURL == "memory":
		return memoryrepo.New(), func() {}, nil

	case strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://"):
		pool, err := pgxpool.New(ctx, c.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := postgresrepo.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate postgres schema: %w", err)
		}
		return postgresrepo.NewWithPool(pool), pool.Close, nil

	case strings.HasPrefix(c.DatabaseURL, "sqlite://"):
		path := strings.TrimPrefix(c.DatabaseURL, "sqlite://")
		if path == "" {
			return nil, nil, fmt.Errorf("sqlite path cannot be empty in DATABASE_URL")
		}
		repo, err := sqliterepo.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { repo.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported DATABASE_URL format: %s (use 'memory', 'postgres://...' or 'sqlite://...')", c.DatabaseURL)
	}
}

// BuildBlobStore constructs the image store selected by STORAGE_URL.
func (c *ServerConfig) BuildBlobStore() (mediapress.BlobStore, error) {
	switch {
	case c.StorageURL == "" || c.StorageURL == "memory" || c.StorageURL == "memory://":
		return memorystorage.New(), nil

	case strings.HasPrefix(c.StorageURL, "file://"):
		path := strings.TrimPrefix(c.StorageURL, "file://")
		if path == "" {
			return nil, fmt.Errorf("filesystem path cannot be empty in STORAGE_URL")
		}
		return fsstorage.New(fsstorage.Config{BaseDir: path})

	case strings.HasPrefix(c.StorageURL, "s3://"):
		return c.buildS3Store()

	default:
		return nil, fmt.Errorf("unsupported STORAGE_URL format: %s (use 'memory://', 'file://...' or 's3://...')", c.StorageURL)
	}
}

// buildS3Store parses s3://bucket?region=...&endpoint=...&path_style=true
func (c *ServerConfig) buildS3Store() (mediapress.BlobStore, error) {
	u, err := url.Parse(c.StorageURL)
	if err != nil {
		return nil, fmt.Errorf("parse STORAGE_URL: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("s3 bucket cannot be empty in STORAGE_URL")
	}

	q := u.Query()
	return s3storage.New(s3storage.Config{
		Bucket:                 u.Host,
		Region:                 q.Get("region"),
		Endpoint:               q.Get("endpoint"),
		UsePathStyle:           q.Get("path_style") == "true",
		AccessKeyID:            c.AWSAccessKeyID,
		SecretAccessKey:        c.AWSSecretAccessKey,
		CreateBucketIfNotExist: q.Get("create_bucket") == "true",
	})
}

// BuildService wires the configured stores into a Service.
func (c *ServerConfig) BuildService(ctx context.Context) (mediapress.Service, func(), error) {
	repo, cleanup, err := c.BuildRepository(ctx)
	if err != nil {
		return nil, nil, err
	}

	blobs, err := c.BuildBlobStore()
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	opts := []mediapress.Option{
		mediapress.WithRepository(repo),
		mediapress.WithBlobStore(blobs),
	}
	if c.StrictBlobDeletes {
		opts = append(opts, mediapress.WithStrictBlobDeletes())
	}

	svc, err := mediapress.New(opts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc, cleanup, nil
}
