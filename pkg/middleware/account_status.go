package middleware

import (
	"context"
	"net/http"

	"github.com/pawsafety/pawsafety-backend/pkg/logger"
)

// AccountChecker reports whether a user may use social features.
type AccountChecker interface {
	IsAccountActive(ctx context.Context, userID string) (bool, error)
}

// RequireActiveAccount blocks deactivated and banned accounts. Use after AuthMiddleware.
func RequireActiveAccount(checker AccountChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserFromContext(r.Context())
			if claims == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			active, err := checker.IsAccountActive(r.Context(), claims.UserID)
			if err != nil {
				logger.Log.WithError(err).WithField("userID", claims.UserID).Warn("Account status check failed")
				http.Error(w, "Account not found", http.StatusForbidden)
				return
			}
			if !active {
				http.Error(w, "Account is deactivated or banned", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
