// Package storage uploads product images to S3-compatible object storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ghuser/showcase/pkg/config"
)

// KeyPrefix is the folder every product image is stored under.
const KeyPrefix = "products/"

// publicReadPolicy lets anonymous clients GET objects under KeyPrefix.
const publicReadPolicy = `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/products/*"]}]}`

// Object identifies a stored image.
type Object struct {
	Key string
	URL string
}

// ObjectStore wraps minio.Client bound to a single bucket.
type ObjectStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// New creates an ObjectStore from config. It does not contact the server;
// call EnsureBucket on startup.
func New(cfg *config.Config) (*ObjectStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioRootUser, cfg.MinioRootPassword, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return &ObjectStore{
		client:  client,
		bucket:  cfg.MinioBucket,
		baseURL: PublicBaseURL(cfg),
	}, nil
}

// PublicBaseURL returns the URL prefix objects are served from.
func PublicBaseURL(cfg *config.Config) string {
	if cfg.MinioPublicURL != "" {
		return strings.TrimRight(cfg.MinioPublicURL, "/")
	}
	scheme := "http"
	if cfg.MinioUseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, cfg.MinioEndpoint, cfg.MinioBucket)
}

// EnsureBucket creates the bucket when missing and makes product images publicly readable.
func (s *ObjectStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.bucket, err)
		}
	}
	if err := s.client.SetBucketPolicy(ctx, s.bucket, fmt.Sprintf(publicReadPolicy, s.bucket)); err != nil {
		return fmt.Errorf("set bucket policy %s: %w", s.bucket, err)
	}
	return nil
}

// Upload stores r under a fresh random key ending in ext (".png", ".jpg", ...).
func (s *ObjectStore) Upload(ctx context.Context, r io.Reader, size int64, contentType, ext string) (Object, error) {
	key, err := NewKey(ext)
	if err != nil {
		return Object{}, err
	}
	if _, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return Object{}, fmt.Errorf("put object %s: %w", key, err)
	}
	return Object{Key: key, URL: s.URLFor(key)}, nil
}

// Delete removes the object with the given key. Missing objects are not an error.
func (s *ObjectStore) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", key, err)
	}
	return nil
}

// Ping checks that the bucket is reachable.
func (s *ObjectStore) Ping(ctx context.Context) error {
	if _, err := s.client.BucketExists(ctx, s.bucket); err != nil {
		return fmt.Errorf("storage ping: %w", err)
	}
	return nil
}

// URLFor returns the public URL of key.
func (s *ObjectStore) URLFor(key string) string {
	return s.baseURL + "/" + key
}

// KeyFromURL recovers the object key from a URL produced by URLFor.
// Returns false for URLs outside this store.
func (s *ObjectStore) KeyFromURL(raw string) (string, bool) {
	return KeyFromURL(s.baseURL, raw)
}

// KeyFromURL is the config-free form of ObjectStore.KeyFromURL.
func KeyFromURL(baseURL, raw string) (string, bool) {
	prefix := strings.TrimRight(baseURL, "/") + "/"
	if !strings.HasPrefix(raw, prefix) {
		return "", false
	}
	key, err := url.PathUnescape(strings.TrimPrefix(raw, prefix))
	if err != nil || !strings.HasPrefix(key, KeyPrefix) {
		return "", false
	}
	return key, true
}

// NewKey returns "products/<nanoid><ext>".
func NewKey(ext string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate object key: %w", err)
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return KeyPrefix + id + ext, nil
}
