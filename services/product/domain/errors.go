package domain

import "errors"

// Sentinel errors for the product domain. Use errors.Is() to check these.
// The messages are shown to callers as-is.
var (
	// ErrProductNotFound indicates the requested product does not exist.
	ErrProductNotFound = errors.New("Product not found")

	// ErrSlugTaken indicates another product already owns the slug.
	ErrSlugTaken = errors.New("Slug is already taken")

	// ErrInvalidProduct indicates submitted product data violates domain constraints.
	ErrInvalidProduct = errors.New("Invalid product")

	// ErrInvalidStatus indicates a status outside pending/approved/rejected.
	ErrInvalidStatus = errors.New("Invalid status")

	// ErrUnauthenticated indicates the caller has no identity.
	ErrUnauthenticated = errors.New("You must be signed in")

	// ErrNoOrganization indicates the caller is signed in but not affiliated with an organization.
	ErrNoOrganization = errors.New("You must belong to an organization to submit")

	// ErrForbidden indicates the caller lacks the admin capability.
	ErrForbidden = errors.New("Unauthorized")

	// ErrImageUpload indicates object storage rejected the image.
	ErrImageUpload = errors.New("Failed to upload image")
)

// ValidationError carries the first violated rule plus every failing field.
// It unwraps to ErrInvalidProduct.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrInvalidProduct }

// NewFieldError builds a ValidationError for a single field.
func NewFieldError(field, message string) *ValidationError {
	return &ValidationError{Message: message, Fields: map[string]string{field: message}}
}
