package auth

import (
	"context"
	"errors"
	"net/http"

	"ms-schedule/internal/logger"
)

type contextKey string

const userIDKey contextKey = "user_id"

// Middleware resolves the viewer. Requests without a valid token continue
// anonymously; pages decide for themselves whether that is enough.
func Middleware(v Verifier, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if v == nil {
				next.ServeHTTP(w, r)
				return
			}

			rawToken, err := ExtractTokenFromRequest(r)
			if err != nil {
				if !errors.Is(err, ErrNoToken) {
					log.Debug("AUTH", err.Error())
				}
				next.ServeHTTP(w, r)
				return
			}

			sub, err := v.Verify(r.Context(), rawToken)
			if err != nil {
				log.Debug("AUTH", err.Error())
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), sub)))
		})
	}
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserID returns the authenticated viewer, or "" when anonymous.
func UserID(ctx context.Context) string {
	if uid, ok := ctx.Value(userIDKey).(string); ok {
		return uid
	}
	return ""
}
