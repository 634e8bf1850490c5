package service

import (
	"context"
	"fmt"
	"time"

	"ethereum-wallet/internal/core/ports"
	"ethereum-wallet/pkg/apperror"

	"github.com/rs/zerolog"
)

// OperatorSubject is the token subject issued to holders of the API key.
const OperatorSubject = "operator"

// AuthServiceImpl implements ports.AuthService.
type AuthServiceImpl struct {
	apiKeyHash string
	hashSvc    ports.HashService
	tokenSvc   ports.TokenService
	log        zerolog.Logger
}

// NewAuthService creates a new AuthServiceImpl. apiKeyHash is the Argon2id
// hash of the operator API key; when empty every request is refused.
func NewAuthService(
	apiKeyHash string,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
	log zerolog.Logger,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		apiKeyHash: apiKeyHash,
		hashSvc:    hashSvc,
		tokenSvc:   tokenSvc,
		log:        log,
	}
}

// IssueToken checks apiKey against the configured hash and returns a JWT.
func (s *AuthServiceImpl) IssueToken(_ context.Context, apiKey string) (string, time.Time, error) {
	if s.apiKeyHash == "" || apiKey == "" {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	valid, err := s.hashSvc.Verify(apiKey, s.apiKeyHash)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("verify api key: %w", err))
	}
	if !valid {
		s.log.Warn().Msg("token request with invalid api key")
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	token, expiry, err := s.tokenSvc.Generate(OperatorSubject)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	s.log.Info().Time("expires_at", expiry).Msg("access token issued")
	return token, expiry, nil
}
