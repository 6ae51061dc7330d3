package middleware

import (
	"net/http"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	inErrors "github.com/pradiptha/bookstore/internal/errors"
	inHttp "github.com/pradiptha/bookstore/internal/http"
	"github.com/pradiptha/bookstore/internal/log"
)

// AdminKey guards content mutation endpoints. The configured value is a
// bcrypt hash of the admin key, never the key itself.
func AdminKey(adminKeyHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := zerolog.Ctx(r.Context()).
				With().
				Str(log.KEY_TAG, "middleware AdminKey").
				Logger()
			c := r.Context()

			key := r.Header.Get(inHttp.KEY_HEADER_ADMIN_KEY)
			if key == "" {
				logger.Error().Err(inErrors.ErrEmptyAuth).Msg(inErrors.ErrEmptyAuth.Error())
				inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
					"status":     "failed",
					"statusCode": http.StatusUnauthorized,
					"message":    inErrors.ErrEmptyAuth.Error(),
				})
				return
			}

			err := bcrypt.CompareHashAndPassword([]byte(adminKeyHash), []byte(key))
			if err != nil {
				logger.Error().Err(inErrors.ErrAdminForbidden).Msg(inErrors.ErrAdminForbidden.Error())
				inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
					"status":     "failed",
					"statusCode": http.StatusForbidden,
					"message":    inErrors.ErrAdminForbidden.Error(),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
