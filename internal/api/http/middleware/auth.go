package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// BearerAuth проверяет токен из заголовка "Authorization: Bearer <token>".
// Ожидаемый токен хранится в конфиге в виде bcrypt-хэша.
// Пустой tokenHash отключает проверку
func BearerAuth(tokenHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if tokenHash == "" {
			return next
		}

		hash := []byte(tokenHash)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")

			// Проверяем формат токена (должен начинаться с "Bearer ")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				unauthorized(w, r, "authorization header not provided or malformed")
				return
			}

			if err := bcrypt.CompareHashAndPassword(hash, []byte(token)); err != nil {
				unauthorized(w, r, "invalid token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request, reason string) {
	zerolog.Ctx(r.Context()).Warn().Str("reason", reason).Msg("unauthenticated request")
	w.Header().Set("WWW-Authenticate", "Bearer")
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}
