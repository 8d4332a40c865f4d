package auth

import (
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/ghuser/showcase/pkg/httpx"
	"github.com/ghuser/showcase/pkg/logger"
	pkgvalidator "github.com/ghuser/showcase/pkg/validator"
)

// DevSessionRequest is the body of POST /api/session.
type DevSessionRequest struct {
	UserID string `json:"user_id" validate:"required,max=255" example:"user_2abc"`
	OrgID  string `json:"org_id"  validate:"omitempty,max=255" example:"org_2xyz"`
} // @name DevSessionRequest

// DevSessionHandler mints a session for any user id. The identity provider
// normally does this; the route is only mounted in development so the API can
// be exercised locally without it.
func DevSessionHandler(store sessions.Store, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := pkgvalidator.ValidateRequest[DevSessionRequest](w, r)
		if !ok {
			return
		}
		if err := StartSession(w, r, store, Principal{UserID: req.UserID, OrgID: req.OrgID}); err != nil {
			log.ErrorContext(r.Context(), "start session failed", "error", err)
			httpx.JSONError(w, http.StatusInternalServerError, msgLookupFailed)
			return
		}
		httpx.JSON(w, http.StatusOK, httpx.Succeeded("Signed in"))
	}
}

// SignOutHandler ends the current session.
func SignOutHandler(store sessions.Store, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := EndSession(w, r, store); err != nil {
			log.ErrorContext(r.Context(), "end session failed", "error", err)
			httpx.JSONError(w, http.StatusInternalServerError, msgLookupFailed)
			return
		}
		httpx.JSON(w, http.StatusOK, httpx.Succeeded("Signed out"))
	}
}
