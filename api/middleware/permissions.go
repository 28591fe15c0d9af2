package middleware

import (
	"context"
	"net/http"

	"github.com/dinesync/backend/api/responses"
	"github.com/dinesync/backend/pkg/enums"
	pkgerrors "github.com/dinesync/backend/pkg/errors"
	"github.com/dinesync/backend/pkg/logger"
)

// PermissionChecker resolves whether a role may access a back-office section.
type PermissionChecker interface {
	HasPermission(ctx context.Context, roleName string, section enums.Permission) (bool, error)
}

// RequirePermission gates a route on the actor's role matrix. Auth must run
// first so the role is present in the request context.
func RequirePermission(section enums.Permission, checker PermissionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFromContext(r.Context())
			if role == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}
			allowed, err := checker.HasPermission(r.Context(), role, section)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve permissions"))
				return
			}
			if !allowed {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "section access denied"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
