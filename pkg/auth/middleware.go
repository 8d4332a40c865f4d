package auth

import (
	"errors"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/ghuser/showcase/pkg/httpx"
	"github.com/ghuser/showcase/pkg/identity"
	"github.com/ghuser/showcase/pkg/logger"
)

// Messages returned by the guards. They match the mutation layer's wording.
const (
	msgSignInRequired = "You must be signed in"
	msgUnauthorized   = "Unauthorized"
	msgLookupFailed   = "Something went wrong"
)

// Authenticate is a chi middleware that resolves the Caller of every request.
// It reads the session principal and fetches the caller's profile from dir on
// each request, so admin grants and revocations apply immediately. Anonymous
// requests continue with the zero Caller; a directory failure ends the request
// with a generic 500.
//
// After this middleware, handlers call auth.CallerFromCtx(r.Context()).
func Authenticate(store sessions.Store, dir identity.Directory, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := store.Get(r, SessionName)
			if err != nil {
				log.WarnContext(r.Context(), "invalid session cookie", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			principal, ok := principalFromSession(session)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			caller := Caller{UserID: principal.UserID, OrgID: principal.OrgID}
			profile, err := dir.Profile(r.Context(), principal.UserID)
			switch {
			case err == nil:
				caller.Email = profile.PrimaryEmail
				caller.IsAdmin = profile.IsAdmin
			case errors.Is(err, identity.ErrProfileNotFound):
				log.DebugContext(r.Context(), "no profile for signed-in user", "user_id", principal.UserID)
			default:
				log.ErrorContext(r.Context(), "profile lookup failed", "user_id", principal.UserID, "error", err)
				httpx.JSONError(w, http.StatusInternalServerError, msgLookupFailed)
				return
			}

			ctx := WithPrincipal(r.Context(), principal)
			ctx = WithCaller(ctx, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects anonymous callers with 401. Mount after Authenticate.
func RequireAuth(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !CallerFromCtx(r.Context()).Authenticated() {
				log.WarnContext(r.Context(), "unauthenticated request", "path", r.URL.Path)
				httpx.JSONError(w, http.StatusUnauthorized, msgSignInRequired)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin rejects anonymous callers with 401 and non-admins with 403.
// Mount after Authenticate.
func RequireAdmin(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := CallerFromCtx(r.Context())
			if !caller.Authenticated() {
				httpx.JSONError(w, http.StatusUnauthorized, msgSignInRequired)
				return
			}
			if !caller.IsAdmin {
				log.WarnContext(r.Context(), "admin route denied", "user_id", caller.UserID, "path", r.URL.Path)
				httpx.JSONError(w, http.StatusForbidden, msgUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
