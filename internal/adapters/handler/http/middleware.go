package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vncsmyrnk/polls/internal/core/ports"
)

type contextKey string

const AdminSubjectKey contextKey = "admin_subject"

// AdminOnly accepts a bearer token or an access_token cookie carrying the
// admin role.
func AdminOnly(auth ports.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "missing token")
				return
			}

			subject, err := auth.VerifyAdminToken(token)
			if err != nil {
				slog.Warn("rejected admin token", "path", r.URL.Path, "error", err)
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), AdminSubjectKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := r.Cookie("access_token"); err == nil {
		return cookie.Value
	}
	return ""
}
