// Package errhttp maps domain sentinel errors to HTTP status codes and the
// failed-action response body.
// Add a case to classify for each new domain sentinel error.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/ghuser/showcase/pkg/httpx"
	"github.com/ghuser/showcase/pkg/logger"
	"github.com/ghuser/showcase/pkg/telemetry"
	productdomain "github.com/ghuser/showcase/services/product/domain"
)

// GenericMessage is what callers see for any failure that is not a known domain error.
const GenericMessage = "Something went wrong"

// WriteError maps err to an HTTP status code and writes a failed ActionResult.
// Uses errors.Is() so wrapped sentinel errors are matched correctly; the body
// carries the sentinel's message, never the wrapping context.
// Unrecognized errors become 500 with GenericMessage; every 5xx is logged
// and reported to Sentry.
func WriteError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	var verr *productdomain.ValidationError
	if errors.As(err, &verr) {
		httpx.JSONFail(w, http.StatusUnprocessableEntity, verr.Message, verr.Fields)
		return
	}

	status, sentinel := classify(err)
	switch {
	case sentinel == nil:
		log.ErrorContext(r.Context(), "request failed", "error", err, "path", r.URL.Path)
		telemetry.CaptureError(r.Context(), err)
		httpx.JSONError(w, status, GenericMessage)
	case errors.Is(sentinel, productdomain.ErrSlugTaken):
		httpx.JSONFail(w, status, sentinel.Error(), map[string]string{"slug": sentinel.Error()})
	default:
		if status >= http.StatusInternalServerError {
			log.ErrorContext(r.Context(), "dependent service failed", "error", err, "path", r.URL.Path)
			telemetry.CaptureError(r.Context(), err)
		}
		httpx.JSONError(w, status, sentinel.Error())
	}
}

func classify(err error) (int, error) {
	switch {
	case errors.Is(err, productdomain.ErrProductNotFound):
		return http.StatusNotFound, productdomain.ErrProductNotFound // 404
	case errors.Is(err, productdomain.ErrSlugTaken):
		return http.StatusConflict, productdomain.ErrSlugTaken // 409
	case errors.Is(err, productdomain.ErrInvalidProduct):
		return http.StatusUnprocessableEntity, productdomain.ErrInvalidProduct // 422
	case errors.Is(err, productdomain.ErrInvalidStatus):
		return http.StatusUnprocessableEntity, productdomain.ErrInvalidStatus // 422
	case errors.Is(err, productdomain.ErrUnauthenticated):
		return http.StatusUnauthorized, productdomain.ErrUnauthenticated // 401
	case errors.Is(err, productdomain.ErrNoOrganization):
		return http.StatusForbidden, productdomain.ErrNoOrganization // 403
	case errors.Is(err, productdomain.ErrForbidden):
		return http.StatusForbidden, productdomain.ErrForbidden // 403
	case errors.Is(err, productdomain.ErrImageUpload):
		return http.StatusBadGateway, productdomain.ErrImageUpload // 502
	default:
		return http.StatusInternalServerError, nil // 500
	}
}
