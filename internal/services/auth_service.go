package services

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/djnacci/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// TokenGenerator is the interface that wraps access token issuing
type TokenGenerator interface {
	// Method GenerateAccessToken issue a signed access token for "subject".
	GenerateAccessToken(subject string) (string, error)
	// Method AccessTokenExpiry return the lifetime of issued tokens.
	AccessTokenExpiry() time.Duration
}

type authService struct {
	username     string
	passwordHash []byte
	tokens       TokenGenerator
	logger       *zap.Logger
}

// NewAuthService creates a new auth service for the single site administrator.
// An empty password hash disables password login.
func NewAuthService(username, passwordHash string, tokens TokenGenerator, logger *zap.Logger) *authService {
	return &authService{
		username:     username,
		passwordHash: []byte(passwordHash),
		tokens:       tokens,
		logger:       logger,
	}
}

// Login verifies the admin credentials and issues an access token
func (s *authService) Login(req *models.LoginRequest) (*models.LoginResponse, error) {
	if len(s.passwordHash) == 0 {
		return nil, ErrLoginDisabled
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.username)) == 1
	// the hash is always checked so both failures take the same time
	passErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(req.Password))
	if !userOK || passErr != nil {
		s.logger.Warn("failed admin login attempt", zap.String("username", req.Username))
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateAccessToken(s.username)
	if err != nil {
		s.logger.Error("failed to generate access token", zap.Error(err))
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.tokens.AccessTokenExpiry().Seconds()),
	}, nil
}
