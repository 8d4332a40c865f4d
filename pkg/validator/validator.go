package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ghuser/showcase/pkg/httpx"
)

var validate *validator.Validate

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]

		// ignore unexported or explicitly ignored
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// slug: lowercase letters, digits and hyphens only.
	_ = validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
}

// MessageFunc renders a user-facing message for one failed rule. Returning ""
// falls back to the generic message for the tag.
type MessageFunc func(e validator.FieldError) string

// Validate runs struct-level validation using go-playground/validator tags.
func Validate(s any) error {
	return validate.Struct(s)
}

// FormatValidationErrors converts validator.ValidationErrors into a map of
// field name → human-readable message.
func FormatValidationErrors(err error) map[string]string {
	_, fields := Violations(err, nil, nil)
	return fields
}

// Violations converts validator.ValidationErrors into a field → message map and
// picks the first violation following order (fields outside order come last).
// Element errors from `dive` ("tags[2]") are reported under their parent field.
// The validator only reports the first failing tag per field, so tags must be
// listed in the order their messages should win.
func Violations(err error, order []string, msg MessageFunc) (first string, fields map[string]string) {
	fields = make(map[string]string)
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return "", fields
	}
	for _, e := range ve {
		field := e.Field()
		if i := strings.IndexByte(field, '['); i >= 0 {
			field = field[:i]
		}
		if _, seen := fields[field]; seen {
			continue
		}
		text := ""
		if msg != nil {
			text = msg(e)
		}
		if text == "" {
			text = formatFieldError(e)
		}
		fields[field] = text
	}
	for _, f := range order {
		if m, ok := fields[f]; ok {
			return m, fields
		}
	}
	for _, e := range ve {
		field := e.Field()
		if i := strings.IndexByte(field, '['); i >= 0 {
			field = field[:i]
		}
		return fields[field], fields
	}
	return "", fields
}

func formatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "uuid", "uuid4":
		return "Must be a valid UUID"
	case "min":
		return fmt.Sprintf("Minimum length is %s", e.Param())
	case "max":
		return fmt.Sprintf("Maximum length is %s", e.Param())
	case "email":
		return "Must be a valid email address"
	case "url", "http_url":
		return "Must be a valid URL"
	case "slug":
		return "Must contain only lowercase letters, numbers, and hyphens"
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", e.Param())
	case "numeric":
		return "Must be a numeric value"
	case "alpha":
		return "Must contain only letters"
	case "alphanum":
		return "Must contain only letters and numbers"
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s", e.Param())
	case "lte":
		return fmt.Sprintf("Must be less than or equal to %s", e.Param())
	default:
		return fmt.Sprintf("Validation failed on '%s'", e.Tag())
	}
}

// ValidateRequest decodes the JSON request body into T, validates it, and
// writes a failed ActionResult if either step fails.
// Returns (parsedStruct, true) on success or (nil, false) on failure.
func ValidateRequest[T any](w http.ResponseWriter, r *http.Request) (*T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "Invalid JSON")
		return nil, false
	}
	if err := Validate(&req); err != nil {
		first, fields := Violations(err, nil, nil)
		httpx.JSONFail(w, http.StatusUnprocessableEntity, "Validation failed: "+first, fields)
		return nil, false
	}
	return &req, true
}
