package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/showcase/pkg/config"
)

func baseConfig() *config.Config {
	return &config.Config{
		ServiceName:    "showcase-test",
		ServiceVersion: "test",
		Environment:    config.EnvTesting,
	}
}

func setup(t *testing.T) *Provider {
	t.Helper()
	p, err := Setup(context.Background(), baseConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })
	return p
}

func scrape(t *testing.T, p *Provider) string {
	t.Helper()
	rr := httptest.NewRecorder()
	p.Metrics.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/plain")
	return rr.Body.String()
}

func TestSetup_ProductCountersReachScrape(t *testing.T) {
	p := setup(t)
	require.NotNil(t, p.Products)

	ctx := context.Background()
	p.Products.Vote(ctx, "up")
	p.Products.Submission(ctx, "ok")

	body := scrape(t, p)
	assert.Regexp(t, `showcase[._]product[._]votes`, body)
	assert.Regexp(t, `showcase[._]product[._]submissions`, body)
	assert.Contains(t, body, "go_goroutines", "runtime collector should be registered")
}

func TestSetup_RegistriesAreIndependent(t *testing.T) {
	first := setup(t)
	second := setup(t)

	first.Products.Vote(context.Background(), "down")

	assert.Regexp(t, `showcase[._]product[._]votes`, scrape(t, first))
	assert.NotRegexp(t, `showcase[._]product[._]votes`, scrape(t, second))
}

func TestProvider_Shutdown(t *testing.T) {
	p, err := Setup(context.Background(), baseConfig())
	require.NoError(t, err)
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestScrubEvent(t *testing.T) {
	event := &sentry.Event{Request: &sentry.Request{
		URL:     "https://showcase.example.com/api/products",
		Cookies: "showcase_session=secret",
		Headers: map[string]string{
			"cookie":        "showcase_session=secret",
			"Authorization": "Bearer secret",
			"User-Agent":    "curl/8",
		},
	}}

	got := scrubEvent(event)
	require.NotNil(t, got)
	assert.Empty(t, got.Request.Cookies)
	assert.Equal(t, map[string]string{"User-Agent": "curl/8"}, got.Request.Headers)
	assert.Equal(t, "https://showcase.example.com/api/products", got.Request.URL)
}

func TestScrubEvent_NoRequest(t *testing.T) {
	event := &sentry.Event{Message: "boom"}
	assert.Same(t, event, scrubEvent(event))
	assert.Nil(t, scrubEvent(nil))
}

func TestCaptureError_UsesRequestHub(t *testing.T) {
	var captured []*sentry.Event
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn: "https://key@sentry.example.com/1",
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			captured = append(captured, event)
			return nil
		},
	})
	require.NoError(t, err)
	hub := sentry.NewHub(client, sentry.NewScope())
	ctx := sentry.SetHubOnContext(context.Background(), hub)

	CaptureError(ctx, errors.New("database unreachable"))

	require.Len(t, captured, 1)
	require.NotEmpty(t, captured[0].Exception)
	assert.Equal(t, "database unreachable", captured[0].Exception[len(captured[0].Exception)-1].Value)
}

func TestCaptureError_WithoutSentryIsNoop(t *testing.T) {
	CaptureError(context.Background(), errors.New("ignored"))
}
