package service

import (
	"errors"
	"time"

	apperrors "coin-rewards-backend/internal/common/errors"
	"coin-rewards-backend/internal/features/auth/models"

	"github.com/golang-jwt/jwt/v5"
)

// SessionIssuer mints and validates stateless bearer tokens. There is no
// server-side session registry: a token stays valid until its natural
// expiry and cannot be revoked earlier.
type SessionIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionIssuer(secret string, ttl time.Duration) *SessionIssuer {
	return &SessionIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Sign issues an HS256 token with the identity id as subject.
func (i *SessionIssuer) Sign(identity *models.Identity) (string, error) {
	now := i.now()
	claims := jwt.RegisteredClaims{
		Subject:   identity.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to sign session token")
	}
	return token, nil
}

// Verify returns the subject id of a valid token.
func (i *SessionIssuer) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (interface{}, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return i.now() }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperrors.New(apperrors.ErrCodeAuthExpired, "session token expired")
		}
		return "", apperrors.Wrap(err, apperrors.ErrCodeAuthInvalidToken, "invalid session token")
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", apperrors.New(apperrors.ErrCodeAuthInvalidToken, "session token has no subject")
	}
	return claims.Subject, nil
}
