package validator_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"

	pkgvalidator "github.com/ghuser/showcase/pkg/validator"
)

type sampleStruct struct {
	OrgID string `validate:"required,uuid"`
	Name  string `validate:"required,min=1,max=10"`
	Email string `validate:"omitempty,email"`
}

func TestValidate_valid(t *testing.T) {
	s := sampleStruct{
		OrgID: "550e8400-e29b-41d4-a716-446655440000",
		Name:  "hello",
	}
	if err := pkgvalidator.Validate(&s); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestValidate_missingRequired(t *testing.T) {
	s := sampleStruct{}
	if err := pkgvalidator.Validate(&s); err == nil {
		t.Fatal("expected validation error for empty struct")
	}
}

func TestFormatValidationErrors_required(t *testing.T) {
	s := sampleStruct{}
	err := pkgvalidator.Validate(&s)
	m := pkgvalidator.FormatValidationErrors(err)
	if m["OrgID"] != "This field is required" {
		t.Errorf("unexpected OrgID message: %q", m["OrgID"])
	}
	if m["Name"] != "This field is required" {
		t.Errorf("unexpected Name message: %q", m["Name"])
	}
}

func TestFormatValidationErrors_uuid(t *testing.T) {
	s := sampleStruct{OrgID: "not-a-uuid", Name: "ok"}
	err := pkgvalidator.Validate(&s)
	m := pkgvalidator.FormatValidationErrors(err)
	if m["OrgID"] != "Must be a valid UUID" {
		t.Errorf("unexpected OrgID message: %q", m["OrgID"])
	}
}

func TestFormatValidationErrors_max(t *testing.T) {
	s := sampleStruct{OrgID: "550e8400-e29b-41d4-a716-446655440000", Name: "12345678901"} // 11 chars > max=10
	err := pkgvalidator.Validate(&s)
	m := pkgvalidator.FormatValidationErrors(err)
	if m["Name"] != "Maximum length is 10" {
		t.Errorf("unexpected Name message: %q", m["Name"])
	}
}

func TestFormatValidationErrors_nonValidationError(t *testing.T) {
	m := pkgvalidator.FormatValidationErrors(http.ErrNoCookie)
	if len(m) != 0 {
		t.Errorf("expected empty map for non-validation error, got %v", m)
	}
}

// --- slug tag ---

type slugStruct struct {
	Slug string `json:"slug" validate:"required,slug,min=3"`
}

func TestValidate_slug(t *testing.T) {
	tests := []struct {
		slug string
		ok   bool
	}{
		{"my-product-2", true},
		{"abc", true},
		{"My-Product", false},
		{"with space", false},
		{"under_score", false},
		{"ab", false},
	}
	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			err := pkgvalidator.Validate(&slugStruct{Slug: tt.slug})
			if (err == nil) != tt.ok {
				t.Fatalf("slug %q: got err=%v, want ok=%v", tt.slug, err, tt.ok)
			}
		})
	}
}

// --- Violations ---

type orderedStruct struct {
	Name string   `json:"name" validate:"required,min=3"`
	Slug string   `json:"slug" validate:"required,slug"`
	Tags []string `json:"tags" validate:"min=1,max=5,dive,required"`
}

func TestViolations_followsOrder(t *testing.T) {
	err := pkgvalidator.Validate(&orderedStruct{Name: "ab", Slug: "BAD", Tags: []string{"x"}})
	first, fields := pkgvalidator.Violations(err, []string{"name", "slug", "tags"}, func(e validator.FieldError) string {
		return fmt.Sprintf("%s/%s", e.Field(), e.Tag())
	})
	if first != "name/min" {
		t.Fatalf("first: got %q, want name/min", first)
	}
	if fields["slug"] != "slug/slug" {
		t.Fatalf("slug: got %q", fields["slug"])
	}
	if len(fields) != 2 {
		t.Fatalf("expected 2 field errors, got %v", fields)
	}
}

func TestViolations_diveReportsParentField(t *testing.T) {
	err := pkgvalidator.Validate(&orderedStruct{Name: "abc", Slug: "abc", Tags: []string{"ok", ""}})
	first, fields := pkgvalidator.Violations(err, []string{"name", "slug", "tags"}, nil)
	if _, ok := fields["tags"]; !ok {
		t.Fatalf("expected tags error, got %v", fields)
	}
	if first != fields["tags"] {
		t.Fatalf("first: got %q, want %q", first, fields["tags"])
	}
}

func TestViolations_fallbackMessage(t *testing.T) {
	err := pkgvalidator.Validate(&orderedStruct{Name: "abc", Slug: "abc"})
	first, _ := pkgvalidator.Violations(err, nil, func(validator.FieldError) string { return "" })
	if first != "Minimum length is 1" {
		t.Fatalf("unexpected fallback: %q", first)
	}
}

// --- ValidateRequest ---

type statusReq struct {
	OrgID  string `json:"org_id" validate:"required,uuid"`
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
}

func TestValidateRequest_valid(t *testing.T) {
	body := `{"org_id":"550e8400-e29b-41d4-a716-446655440000","status":"approved"}`
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	req, ok := pkgvalidator.ValidateRequest[statusReq](w, r)
	if !ok {
		t.Fatalf("expected ok=true, got false. Response: %s", w.Body.String())
	}
	if req.Status != "approved" {
		t.Errorf("unexpected Status: %q", req.Status)
	}
}

func TestValidateRequest_invalidJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{bad json"))
	w := httptest.NewRecorder()

	_, ok := pkgvalidator.ValidateRequest[statusReq](w, r)
	if ok {
		t.Fatal("expected ok=false for malformed JSON")
	}
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Invalid JSON") {
		t.Errorf("expected 'Invalid JSON' in body, got: %s", w.Body.String())
	}
}

func TestValidateRequest_invalidStatus(t *testing.T) {
	body := `{"org_id":"550e8400-e29b-41d4-a716-446655440000","status":"archived"}`
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	w := httptest.NewRecorder()

	_, ok := pkgvalidator.ValidateRequest[statusReq](w, r)
	if ok {
		t.Fatal("expected ok=false for unknown status")
	}
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"Must be one of: pending approved rejected"`) {
		t.Errorf("expected status field error in body, got: %s", w.Body.String())
	}
}
