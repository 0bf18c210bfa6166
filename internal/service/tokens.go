package service

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/classfund/treasury-server/internal/models"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// issueTokens signs a fresh access/refresh pair for the user
func (s *DefaultService) issueTokens(user *models.User) (*models.TokenResponse, error) {
	accessToken, err := s.signToken(user, tokenTypeAccess, s.auth.AccessTokenTTL)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.signToken(user, tokenTypeRefresh, s.auth.RefreshTokenTTL)
	if err != nil {
		return nil, err
	}

	return &models.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int(s.auth.AccessTokenTTL.Seconds()),
		User:         user,
	}, nil
}

func (s *DefaultService) signToken(user *models.User, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"sub":      strconv.FormatInt(user.ID, 10),
		"username": user.Username,
		"type":     tokenType,
		"jti":      uuid.New().String(),
		"iat":      now.Unix(),
		"exp":      now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.auth.JWTSecret))
}

// verifyToken validates the signature, expiry and token type, and returns
// the subject user id.
func (s *DefaultService) verifyToken(tokenString, wantType string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.auth.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}

	if tokenType, _ := claims["type"].(string); tokenType != wantType {
		return 0, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}

	return userID, nil
}
