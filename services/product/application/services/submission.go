package services

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"

	pkgvalidator "github.com/ghuser/showcase/pkg/validator"
	productdomain "github.com/ghuser/showcase/services/product/domain"
	domainsvcs "github.com/ghuser/showcase/services/product/domain/services"
)

// SubmitInput is a product submission as received from the form.
type SubmitInput struct {
	Name        string       `json:"name"        validate:"required,min=3,max=50"`
	Slug        string       `json:"slug"        validate:"required,slug,min=3,max=60"`
	Tagline     string       `json:"tagline"     validate:"required,min=5,max=100"`
	Description string       `json:"description" validate:"required,min=10,max=1000"`
	WebURL      string       `json:"web_url"     validate:"required,http_url"`
	Tags        []string     `json:"tags"        validate:"min=1,max=5,dive,required"`
	Image       *ImageUpload `json:"-"           validate:"-"`
}

// ImageUpload is the raw image attached to a submission. Data holds the whole
// file; handlers read at most MaxImageSize+1 bytes so oversize files are still detected.
type ImageUpload struct {
	Filename     string
	DeclaredType string
	Data         []byte
	// Size is the size the client reported. Zero means len(Data).
	Size int64
}

// fieldOrder is the order in which violations are reported.
var fieldOrder = []string{"name", "slug", "tagline", "description", "web_url", "tags", "image"}

var submitMessages = map[string]map[string]string{
	"name": {
		"required": "Project name is required",
		"min":      "Project name must contain at least 3 characters",
		"max":      "Project name must not exceed 50 characters",
	},
	"slug": {
		"required": "Slug is required",
		"slug":     "Slug may contain only lowercase letters, numbers, and hyphens",
		"min":      "Slug must contain at least 3 characters",
		"max":      "Slug must not exceed 60 characters",
	},
	"tagline": {
		"required": "Tagline is required",
		"min":      "Tagline must contain at least 5 characters",
		"max":      "Tagline must not exceed 100 characters",
	},
	"description": {
		"required": "Description is required",
		"min":      "Description must contain at least 10 characters",
		"max":      "Description must not exceed 1000 characters",
	},
	"web_url": {
		"required": "Website URL is required",
		"http_url": "Please enter a valid website URL",
	},
	"tags": {
		"min":      "Please add at least one tag",
		"max":      "You can add up to 5 tags only",
		"required": "Tags must not be empty",
	},
}

func submitMessage(e validator.FieldError) string {
	field := e.Field()
	if i := strings.IndexByte(field, '['); i >= 0 {
		field = field[:i]
	}
	return submitMessages[field][e.Tag()]
}

// validateSubmission checks every field and the image. It returns a
// *domain.ValidationError holding the first violation in field order plus the
// full field map, or nil. sniffed is the detected image type.
func validateSubmission(in SubmitInput) (sniffed string, verr *productdomain.ValidationError) {
	fields := map[string]string{}
	first := ""
	if err := pkgvalidator.Validate(&in); err != nil {
		first, fields = pkgvalidator.Violations(err, fieldOrder, submitMessage)
	}

	meta := domainsvcs.ImageMeta{}
	if in.Image != nil {
		size := in.Image.Size
		if size == 0 || int64(len(in.Image.Data)) > size {
			size = int64(len(in.Image.Data))
		}
		sniffed = mimetype.Detect(in.Image.Data).String()
		meta = domainsvcs.ImageMeta{
			Present:      len(in.Image.Data) > 0,
			Size:         size,
			DeclaredType: in.Image.DeclaredType,
			SniffedType:  sniffed,
		}
	}
	if msg := domainsvcs.CheckImage(meta); msg != "" {
		fields["image"] = msg
		if first == "" {
			first = msg
		}
	}

	if len(fields) == 0 {
		return sniffed, nil
	}
	return sniffed, &productdomain.ValidationError{Message: first, Fields: fields}
}

// submittedBy is the public label of a submitter.
func submittedBy(email string) string {
	if email == "" {
		return "anonymous"
	}
	return email
}

func imageExt(sniffed string) string {
	return domainsvcs.ImageExtension(sniffed)
}
