package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/classfund/treasury-server/internal/config"
	"github.com/classfund/treasury-server/internal/models"
)

func newTokenService(secret string) *DefaultService {
	return &DefaultService{
		auth: config.AuthConfig{
			JWTSecret:       secret,
			AccessTokenTTL:  30 * time.Minute,
			RefreshTokenTTL: 7 * 24 * time.Hour,
		},
	}
}

func TestIssueAndVerifyTokens(t *testing.T) {
	svc := newTokenService("test-secret")
	user := &models.User{ID: 42, Username: "treasurer"}

	tokens, err := svc.issueTokens(user)
	assert.NoError(t, err)
	assert.Equal(t, "bearer", tokens.TokenType)
	assert.Equal(t, int((30 * time.Minute).Seconds()), tokens.ExpiresIn)
	assert.NotEqual(t, tokens.AccessToken, tokens.RefreshToken)

	userID, err := svc.verifyToken(tokens.AccessToken, tokenTypeAccess)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), userID)

	userID, err = svc.verifyToken(tokens.RefreshToken, tokenTypeRefresh)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestVerifyTokenTypeMismatch(t *testing.T) {
	svc := newTokenService("test-secret")
	tokens, err := svc.issueTokens(&models.User{ID: 7, Username: "treasurer"})
	assert.NoError(t, err)

	_, err = svc.verifyToken(tokens.AccessToken, tokenTypeRefresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.verifyToken(tokens.RefreshToken, tokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	tokens, err := newTokenService("secret-one").issueTokens(&models.User{ID: 1, Username: "a"})
	assert.NoError(t, err)

	_, err = newTokenService("secret-two").verifyToken(tokens.AccessToken, tokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenExpired(t *testing.T) {
	svc := newTokenService("test-secret")
	svc.auth.AccessTokenTTL = -time.Minute

	tokens, err := svc.issueTokens(&models.User{ID: 3, Username: "treasurer"})
	assert.NoError(t, err)

	_, err = svc.verifyToken(tokens.AccessToken, tokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenGarbage(t *testing.T) {
	svc := newTokenService("test-secret")

	for _, tokenString := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := svc.verifyToken(tokenString, tokenTypeAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}
