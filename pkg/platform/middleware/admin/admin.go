package admin

import (
	"log/slog"
	"net/http"

	dErrors "kafkaportal/pkg/domain-errors"
	"kafkaportal/pkg/platform/httputil"
	"kafkaportal/pkg/requestcontext"
)

// RequireAdmin rejects callers without the admin role. Mount it after
// auth.RequireAuth.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			p, ok := requestcontext.PrincipalFrom(ctx)
			if !ok {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Not authenticated"))
				return
			}
			if !p.IsAdmin {
				logger.WarnContext(ctx, "admin route denied",
					"user_id", p.UserID,
					"path", r.URL.Path,
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "Admin privileges required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
