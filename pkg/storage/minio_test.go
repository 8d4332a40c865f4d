package storage

import (
	"context"
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/showcase/pkg/config"
)

func TestNewKey(t *testing.T) {
	keyRe := regexp.MustCompile(`^products/[A-Za-z0-9_-]{21}\.png$`)

	a, err := NewKey(".png")
	require.NoError(t, err)
	b, err := NewKey("png")
	require.NoError(t, err)

	assert.Regexp(t, keyRe, a)
	assert.Regexp(t, keyRe, b)
	assert.NotEqual(t, a, b)
}

func TestPublicBaseURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{"derived http", config.Config{MinioEndpoint: "localhost:9000", MinioBucket: "imgs"}, "http://localhost:9000/imgs"},
		{"derived https", config.Config{MinioEndpoint: "s3.example.com", MinioBucket: "imgs", MinioUseSSL: true}, "https://s3.example.com/imgs"},
		{"explicit cdn", config.Config{MinioPublicURL: "https://cdn.example.com/"}, "https://cdn.example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PublicBaseURL(&tt.cfg))
		})
	}
}

func TestKeyFromURL(t *testing.T) {
	base := "http://localhost:9000/imgs"
	tests := []struct {
		name   string
		raw    string
		want   string
		wantOK bool
	}{
		{"own object", base + "/products/abc.png", "products/abc.png", true},
		{"foreign host", "https://elsewhere.example.com/products/abc.png", "", false},
		{"outside prefix", base + "/other/abc.png", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := KeyFromURL(base, tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_URLFor(t *testing.T) {
	s, err := New(&config.Config{MinioEndpoint: "localhost:9000", MinioBucket: "imgs", MinioRootUser: "u", MinioRootPassword: "p"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/imgs/products/x.webp", s.URLFor("products/x.webp"))

	key, ok := s.KeyFromURL(s.URLFor("products/x.webp"))
	assert.True(t, ok)
	assert.Equal(t, "products/x.webp", key)
}

// Integration test, skipped unless MINIO_ENDPOINT is set.
func TestObjectStoreIntegration(t *testing.T) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("MINIO_ENDPOINT not set; skipping integration tests")
	}
	cfg := &config.Config{
		MinioEndpoint:     endpoint,
		MinioBucket:       "showcase-test",
		MinioRootUser:     envOr("MINIO_ROOT_USER", "minioadmin"),
		MinioRootPassword: envOr("MINIO_ROOT_PASSWORD", "minioadmin"),
	}
	s, err := New(cfg)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.EnsureBucket(ctx))
	require.NoError(t, s.EnsureBucket(ctx), "EnsureBucket should be idempotent")
	require.NoError(t, s.Ping(ctx))

	body := "\x89PNG\r\n\x1a\n"
	obj, err := s.Upload(ctx, strings.NewReader(body), int64(len(body)), "image/png", ".png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(obj.Key, KeyPrefix))
	assert.Equal(t, s.URLFor(obj.Key), obj.URL)

	require.NoError(t, s.Delete(ctx, obj.Key))
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
