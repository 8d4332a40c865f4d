package errhttp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/getsentry/sentry-go"

	"github.com/ghuser/showcase/pkg/config"
	"github.com/ghuser/showcase/pkg/httpx"
	"github.com/ghuser/showcase/pkg/logger"
	productdomain "github.com/ghuser/showcase/services/product/domain"
)

func TestWriteError_StatusCodes(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"ErrProductNotFound", productdomain.ErrProductNotFound, http.StatusNotFound, "Product not found"},
		{"ErrSlugTaken", productdomain.ErrSlugTaken, http.StatusConflict, "Slug is already taken"},
		{"ErrInvalidStatus", productdomain.ErrInvalidStatus, http.StatusUnprocessableEntity, "Invalid status"},
		{"ErrUnauthenticated", productdomain.ErrUnauthenticated, http.StatusUnauthorized, "You must be signed in"},
		{"ErrNoOrganization", productdomain.ErrNoOrganization, http.StatusForbidden, "You must belong to an organization to submit"},
		{"ErrForbidden", productdomain.ErrForbidden, http.StatusForbidden, "Unauthorized"},
		{"ErrImageUpload", fmt.Errorf("%w: bucket gone", productdomain.ErrImageUpload), http.StatusBadGateway, "Failed to upload image"},
		{"wrapped ErrProductNotFound", fmt.Errorf("upvote: %w", productdomain.ErrProductNotFound), http.StatusNotFound, "Product not found"},
		{"unknown error", errors.New("something unexpected"), http.StatusInternalServerError, GenericMessage},
		{"generic wrapped error", fmt.Errorf("context: %w", errors.New("db down")), http.StatusInternalServerError, GenericMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/products", nil)
			WriteError(w, r, logger.Discard(), tt.err)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			var body httpx.ActionResult
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("response body is not valid JSON: %v", err)
			}
			if body.Success {
				t.Fatal("expected success=false")
			}
			if body.Message != tt.wantMessage {
				t.Fatalf("expected message %q, got %q", tt.wantMessage, body.Message)
			}
		})
	}
}

func TestWriteError_ValidationFields(t *testing.T) {
	verr := &productdomain.ValidationError{
		Message: "Name must be at least 3 characters",
		Fields: map[string]string{
			"name": "Name must be at least 3 characters",
			"tags": "At least one tag is required",
		},
	}
	w := httptest.NewRecorder()
	WriteError(w, httptest.NewRequest(http.MethodPost, "/api/products", nil), logger.Discard(), fmt.Errorf("submit: %w", verr))

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	var body httpx.ActionResult
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body is not valid JSON: %v", err)
	}
	if body.Message != verr.Message {
		t.Fatalf("expected first violation message, got %q", body.Message)
	}
	if len(body.Errors) != 2 || body.Errors["tags"] == "" {
		t.Fatalf("expected both field errors, got %v", body.Errors)
	}
}

func TestWriteError_SlugTakenFieldError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, httptest.NewRequest(http.MethodPost, "/api/products", nil), logger.Discard(), productdomain.ErrSlugTaken)

	var body httpx.ActionResult
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body is not valid JSON: %v", err)
	}
	if body.Errors["slug"] != productdomain.ErrSlugTaken.Error() {
		t.Fatalf("expected slug field error, got %v", body.Errors)
	}
}

func TestWriteError_UnknownErrorIsLoggedNotLeaked(t *testing.T) {
	var logs bytes.Buffer
	log := logger.NewWithWriter(&config.Config{LogLevel: "info"}, &logs)

	w := httptest.NewRecorder()
	WriteError(w, httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil), log, errors.New("pq: connection refused"))

	if strings.Contains(w.Body.String(), "connection refused") {
		t.Fatalf("internal error leaked to client: %s", w.Body.String())
	}
	if !strings.Contains(logs.String(), "connection refused") {
		t.Fatalf("expected underlying error to be logged, got %s", logs.String())
	}
}

func TestWriteError_ContentType(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, httptest.NewRequest(http.MethodGet, "/", nil), logger.Discard(), productdomain.ErrProductNotFound)

	ct := w.Header().Get("Content-Type")
	if ct == "" {
		t.Fatal("Content-Type header not set")
	}
}

func TestWriteError_ReportsServerErrorsToSentry(t *testing.T) {
	var reported []string
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn: "https://key@sentry.example.com/1",
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			for _, ex := range event.Exception {
				reported = append(reported, ex.Value)
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("sentry client: %v", err)
	}
	hub := sentry.NewHub(client, sentry.NewScope())

	for _, e := range []error{
		productdomain.ErrProductNotFound,
		errors.New("db down"),
		fmt.Errorf("%w: bucket gone", productdomain.ErrImageUpload),
	} {
		r := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		r = r.WithContext(sentry.SetHubOnContext(r.Context(), hub))
		WriteError(httptest.NewRecorder(), r, logger.Discard(), e)
	}

	joined := strings.Join(reported, "\n")
	if strings.Contains(joined, "Product not found") {
		t.Fatalf("4xx must not be reported, got %q", joined)
	}
	if !strings.Contains(joined, "db down") || !strings.Contains(joined, "bucket gone") {
		t.Fatalf("expected both 5xx errors reported, got %q", joined)
	}
}
