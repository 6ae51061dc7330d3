package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	inHttp "github.com/pradiptha/bookstore/internal/http"
	"github.com/pradiptha/bookstore/internal/log"
	"github.com/pradiptha/bookstore/internal/session"
)

// GuestSession attaches a guest session id to the request context. A request
// without a valid session token gets a fresh session; the signed token is
// returned in the response header so the client carries it on the next call.
func GuestSession(secretKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := zerolog.Ctx(r.Context()).
				With().
				Str(log.KEY_TAG, "middleware GuestSession").
				Logger()
			c := r.Context()

			token := r.Header.Get(inHttp.KEY_HEADER_SESSION_TOKEN)
			if token != "" {
				sessionID, err := session.Verify(c, secretKey, token)
				if err == nil {
					c = session.AttachToContext(c, sessionID)
					next.ServeHTTP(w, r.WithContext(c))
					return
				}
				logger.Warn().Err(err).Msg("session token rejected, issuing a new session")
			}

			sessionID := uuid.New()
			signed, err := session.NewToken(secretKey, sessionID)
			if err != nil {
				logger.Error().Err(err).Msg(err.Error())
				inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
					"status":     "failed",
					"statusCode": http.StatusInternalServerError,
					"message":    "failed issuing guest session",
				})
				return
			}
			logger.Info().Str(log.KEY_SESSION_ID, sessionID.String()).Msg("issued guest session")

			w.Header().Set(inHttp.KEY_HEADER_SESSION_TOKEN, signed)
			c = session.AttachToContext(c, sessionID)
			next.ServeHTTP(w, r.WithContext(c))
		})
	}
}
