package testutil

import (
	"net/http"

	"kafkaportal/pkg/domain"
	"kafkaportal/pkg/requestcontext"
)

// WithPrincipal attaches an authenticated caller to the request context,
// standing in for the auth middleware.
func WithPrincipal(req *http.Request, userID domain.UserID, username string, isAdmin bool) *http.Request {
	ctx := requestcontext.WithPrincipal(req.Context(), requestcontext.Principal{
		UserID:   userID,
		Username: username,
		IsAdmin:  isAdmin,
	})
	return req.WithContext(ctx)
}

// WithUser attaches a regular user.
func WithUser(req *http.Request, userID domain.UserID, username string) *http.Request {
	return WithPrincipal(req, userID, username, false)
}

// WithAdmin attaches an administrator.
func WithAdmin(req *http.Request, userID domain.UserID, username string) *http.Request {
	return WithPrincipal(req, userID, username, true)
}
