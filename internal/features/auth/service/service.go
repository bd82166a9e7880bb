package service

import (
	"coin-rewards-backend/internal/common/logger"
	"coin-rewards-backend/internal/features/auth/models"

	"github.com/rs/zerolog"
)

type AuthService interface {
	// Authenticate verifies the init data payload and, on success, mints
	// a session token bound to the extracted identity.
	Authenticate(initData string) (*models.Identity, string, error)

	// VerifyToken returns the subject id of a valid bearer token.
	VerifyToken(token string) (string, error)
}

type authService struct {
	verifier *IdentityVerifier
	issuer   *SessionIssuer
	log      zerolog.Logger
}

func NewAuthService(verifier *IdentityVerifier, issuer *SessionIssuer) AuthService {
	return &authService{
		verifier: verifier,
		issuer:   issuer,
		log:      logger.With("auth"),
	}
}

func (s *authService) Authenticate(initData string) (*models.Identity, string, error) {
	identity, err := s.verifier.Verify(initData)
	if err != nil {
		s.log.Debug().Err(err).Msg("init data verification failed")
		return nil, "", err
	}

	token, err := s.issuer.Sign(identity)
	if err != nil {
		return nil, "", err
	}

	s.log.Info().Str("user_id", identity.ID).Msg("session issued")
	return identity, token, nil
}

func (s *authService) VerifyToken(token string) (string, error) {
	return s.issuer.Verify(token)
}
