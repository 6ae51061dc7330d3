package session

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTokenRoundTrip(t *testing.T) {
	c := context.Background()
	sessionID := uuid.New()

	token, err := NewToken("secret", sessionID)
	assert.NoError(t, err)

	parsed, err := Verify(c, "secret", token)
	assert.NoError(t, err)
	assert.Equal(t, sessionID, parsed)
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	c := context.Background()

	token, err := NewToken("secret", uuid.New())
	assert.NoError(t, err)

	_, err = Verify(c, "another-secret", token)
	assert.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := Verify(context.Background(), "secret", "not-a-jwt")
	assert.Error(t, err)
}

func TestContextRoundTrip(t *testing.T) {
	sessionID := uuid.New()
	c := AttachToContext(context.Background(), sessionID)

	parsed, ok := FromContext(c)
	assert.True(t, ok)
	assert.Equal(t, sessionID, parsed)

	_, ok = FromContext(context.Background())
	assert.False(t, ok)
}
