// Package services contains stateless domain services for the product bounded context.
// Domain services enforce business rules that operate purely on domain types
// and have zero external dependencies beyond stdlib and the domain layer.
package services

import (
	"slices"
	"strings"
)

// MaxImageSize is the largest accepted product image, in bytes.
const MaxImageSize = 5 << 20

// AcceptedImageTypes are the MIME types a product image may have.
var AcceptedImageTypes = []string{"image/png", "image/jpeg", "image/webp"}

// Messages shown for image rule violations.
const (
	MsgImageMissing = "Please upload an image file"
	MsgImageTooBig  = "Image size must be 5 MB or smaller"
	MsgImageType    = "Only PNG, JPEG, or WebP images are allowed"
)

// ImageMeta describes an uploaded image before it is stored. SniffedType is
// derived from the file content; DeclaredType is what the client claimed.
type ImageMeta struct {
	Present      bool
	Size         int64
	DeclaredType string
	SniffedType  string
}

// CheckImage returns the first violated image rule, or "" when the image is acceptable.
// Both the declared and the sniffed type must be accepted.
func CheckImage(img ImageMeta) string {
	if !img.Present || img.Size == 0 {
		return MsgImageMissing
	}
	if img.Size > MaxImageSize {
		return MsgImageTooBig
	}
	if !IsAcceptedImageType(img.DeclaredType) || !IsAcceptedImageType(img.SniffedType) {
		return MsgImageType
	}
	return ""
}

// IsAcceptedImageType reports whether mime (parameters ignored) is an accepted image type.
func IsAcceptedImageType(mime string) bool {
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return slices.Contains(AcceptedImageTypes, strings.ToLower(strings.TrimSpace(mime)))
}

// ImageExtension maps an accepted MIME type to the file extension used for storage keys.
func ImageExtension(mime string) string {
	switch {
	case strings.HasPrefix(mime, "image/png"):
		return ".png"
	case strings.HasPrefix(mime, "image/webp"):
		return ".webp"
	default:
		return ".jpg"
	}
}
