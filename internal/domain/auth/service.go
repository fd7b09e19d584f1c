package auth

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/core/id"
	"tillpoint/pkg/logger"
)

const (
	maxFailedAttempts = 5
	lockDuration      = 15 * time.Minute
	minPasswordLength = 8
)

// Service handles registration, login and token validation.
type Service struct {
	users UserRepository
	jwt   *JWTService
}

// NewService creates an auth service.
func NewService(users UserRepository, jwt *JWTService) *Service {
	return &Service{users: users, jwt: jwt}
}

// Register creates a new user with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, apperror.NewValidation("email is required").WithDetail("field", "email")
	}
	if len(req.Password) < minPasswordLength {
		return nil, apperror.NewValidation("password is too short").
			WithDetail("field", "password").
			WithDetail("min_length", minPasswordLength)
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.NewDuplicate("user", "email", email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	user := NewUser(email, string(hash), req.StoreID)
	user.Name = req.Name
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Info(ctx, "user registered", "user_id", user.ID, "email", email)
	return user, nil
}

// Login verifies credentials and issues an access token. Failed attempts
// count toward a temporary lockout.
func (s *Service) Login(ctx context.Context, creds Credentials) (*Token, *User, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil, apperror.NewUnauthorized("invalid email or password")
		}
		return nil, nil, err
	}

	if err := user.CanLogin(); err != nil {
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		user.RecordFailedLogin(maxFailedAttempts, lockDuration)
		if updateErr := s.users.Update(ctx, user); updateErr != nil {
			logger.Error(ctx, "failed to record login failure", "user_id", user.ID, "error", updateErr)
		}
		return nil, nil, apperror.NewUnauthorized("invalid email or password")
	}

	user.RecordSuccessfulLogin()
	if err := s.users.Update(ctx, user); err != nil {
		logger.Error(ctx, "failed to record login", "user_id", user.ID, "error", err)
	}

	tokenString, expiresAt, err := s.jwt.GenerateAccessToken(user.ID.String(), user.StoreID, user.Email, user.IsAdmin)
	if err != nil {
		return nil, nil, apperror.NewInternal(err)
	}

	return &Token{
		AccessToken: tokenString,
		ExpiresAt:   expiresAt,
		TokenType:   "Bearer",
	}, user, nil
}

// ValidateToken verifies an access token and returns its user context.
func (s *Service) ValidateToken(tokenString string) (*User, error) {
	userCtx, err := s.jwt.ValidateToken(tokenString)
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid or expired token")
	}
	return &User{
		Email:   userCtx.Email,
		StoreID: userCtx.StoreID,
		IsAdmin: userCtx.IsAdmin,
	}, nil
}

// GetUserByID loads a user profile.
func (s *Service) GetUserByID(ctx context.Context, userID id.ID) (*User, error) {
	return s.users.GetByID(ctx, userID)
}

// JWT exposes the token service for middleware.
func (s *Service) JWT() *JWTService {
	return s.jwt
}
