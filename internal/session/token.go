package session

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	inErrors "github.com/pradiptha/bookstore/internal/errors"
	"github.com/pradiptha/bookstore/internal/log"
	"github.com/pradiptha/bookstore/internal/otel"
)

const (
	issuer   = "bookstore-storefront"
	audience = "audience-guest"
	lifetime = 30 * 24 * time.Hour
)

// NewToken issues a signed guest session token. The subject is the session id
// that keys the persisted cart blob.
func NewToken(secretKey string, sessionID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Audience:  jwt.ClaimStrings{audience},
		Subject:   sessionID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", fmt.Errorf("failed signing session token with error=%w", err)
	}
	return signed, nil
}

// Verify parses a guest session token and returns the session id it carries.
func Verify(c context.Context, secretKey string, token string) (uuid.UUID, error) {
	c, span := otel.Tracer.Start(c, "session Verify")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "session Verify").
		Logger()

	logger = logger.With().Str(log.KEY_PROCESS, "parsing claims").Logger()
	logger.Trace().Msg("parsing claims")
	jwtToken, err := jwt.ParseWithClaims(token,
		&jwt.RegisteredClaims{},
		func(t *jwt.Token) (interface{}, error) {
			return []byte(secretKey), nil
		},
		jwt.WithAudience(audience),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		err = fmt.Errorf("failed parsing claims with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return uuid.Nil, err
	}
	if !jwtToken.Valid {
		otel.RecordError(inErrors.ErrTokenInvalid, span)
		logger.Error().Err(inErrors.ErrTokenInvalid).Msg(inErrors.ErrTokenInvalid.Error())
		return uuid.Nil, inErrors.ErrTokenInvalid
	}
	logger.Trace().Msg("parsed claims")

	logger = logger.With().Str(log.KEY_PROCESS, "parsing subject").Logger()
	subject, err := jwtToken.Claims.GetSubject()
	if err != nil {
		err = fmt.Errorf("failed getting subject from session token with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return uuid.Nil, err
	}
	sessionID, err := uuid.Parse(subject)
	if err != nil {
		err = fmt.Errorf("failed parsing subject=%s with error=%w", subject, err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return uuid.Nil, err
	}
	logger = logger.With().Str(log.KEY_SESSION_ID, sessionID.String()).Logger()
	logger.Trace().Msg("parsed subject as sessionId")

	return sessionID, nil
}

type sessionId struct{}

func AttachToContext(c context.Context, id uuid.UUID) context.Context {
	return context.WithValue(c, sessionId{}, id)
}

func FromContext(c context.Context) (uuid.UUID, bool) {
	id, ok := c.Value(sessionId{}).(uuid.UUID)
	return id, ok
}
