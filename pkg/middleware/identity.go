package middleware

import (
	"net/http"

	"dira/pkg/auth"
)

// Identity lifts the upstream-verified caller identity from request headers
// into the request context. Requests without identity pass through; the
// services decide which operations require a caller.
func Identity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get(auth.HeaderUserID)
			if userID != "" {
				principal := auth.Principal{
					UserID: userID,
					Role:   r.Header.Get(auth.HeaderUserRole),
				}
				r = r.WithContext(auth.WithPrincipal(r.Context(), principal))
			}

			next.ServeHTTP(w, r)
		})
	}
}
