package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/content-service/internal/auth"
	"github.com/spec-kit/content-service/internal/config"
	"github.com/spec-kit/content-service/internal/domain"
	"github.com/spec-kit/content-service/internal/events"
	"github.com/spec-kit/content-service/internal/repository"
	apperrors "github.com/spec-kit/content-service/pkg/util"
)

const (
	minPasswordLength = 6
	// bcrypt ignores input past this length
	maxPasswordLength = 72
)

// Identity authenticates callers and manages their session tokens.
type Identity interface {
	Authenticate(ctx context.Context, email, password string) (domain.Actor, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	IssueToken(actor domain.Actor) (domain.SessionToken, error)
	VerifyToken(token string) (domain.Actor, error)
	RefreshToken(token string) (domain.SessionToken, error)
	Logout(ctx context.Context, token string) error
	GetProfile(ctx context.Context, userID string) (domain.UserProfile, error)
	UpdateProfile(ctx context.Context, userID string, input ProfileInput) (domain.UserProfile, error)
}

// RegisterInput describes a new account.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// ProfileInput lists the editable profile fields; nil leaves a field unchanged.
type ProfileInput struct {
	FirstName *string
	LastName  *string
}

// AuthResult pairs the sanitized account with a fresh session token.
type AuthResult struct {
	User  domain.UserProfile
	Token domain.SessionToken
}

// AuthService coordinates registration, login and token flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	dummyHash  string
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Tokens     *auth.TokenManager
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

var _ Identity = (*AuthService)(nil)

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	tokens := deps.Tokens
	if tokens == nil {
		tokens = auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL())
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	// compared against when the email is unknown so both failure paths cost one bcrypt run
	dummyHash, err := auth.HashPassword(uuid.NewString(), cfg.BcryptCost)
	if err != nil {
		logger.Warn("unable to prepare dummy password hash", zap.Error(err))
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   tokens,
		bcryptCost: cfg.BcryptCost,
		dummyHash:  dummyHash,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Register creates a new account with the default user role.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	if err := validateRegistration(input); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewDuplicateAccount(input.Email)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewUpstreamFailure("credential store", err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.NewDuplicateAccount(input.Email)
		}
		return nil, apperrors.NewUpstreamFailure("credential store", err)
	}

	actor := domain.Actor{ID: user.ID, Role: user.Role}
	token, err := s.IssueToken(actor)
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:       events.EventUserRegistered,
		ResourceID: user.ID,
		Actor:      eventActor(actor),
		Payload: events.UserRegisteredPayload{
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
		},
	})
	return &AuthResult{User: user.Profile(), Token: token}, nil
}

// Authenticate verifies credentials and returns the account's actor identity.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (domain.Actor, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		return domain.Actor{}, err
	}
	return domain.Actor{ID: user.ID, Role: user.Role}, nil
}

// Login authenticates and issues a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	token, err := s.IssueToken(domain.Actor{ID: user.ID, Role: user.Role})
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user.Profile(), Token: token}, nil
}

func (s *AuthService) authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if s.dummyHash != "" {
				_ = auth.ComparePassword(s.dummyHash, password)
			}
			return nil, apperrors.NewInvalidCredentials()
		}
		return nil, apperrors.NewUpstreamFailure("credential store", err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewInvalidCredentials()
	}
	return user, nil
}

// IssueToken signs a session token embedding the actor's identity and role.
func (s *AuthService) IssueToken(actor domain.Actor) (domain.SessionToken, error) {
	token, err := s.tokenMgr.Sign(actor)
	if err != nil {
		return domain.SessionToken{}, apperrors.NewInternalError(err)
	}
	return token, nil
}

// VerifyToken validates a bearer token.
func (s *AuthService) VerifyToken(token string) (domain.Actor, error) {
	actor, err := s.tokenMgr.Parse(token)
	if err != nil {
		return domain.Actor{}, apperrors.NewInvalidOrExpiredToken(err)
	}
	return actor, nil
}

// RefreshToken re-issues a still-valid token with a fresh expiry.
// The role claim is carried over as is; the account is not consulted.
func (s *AuthService) RefreshToken(token string) (domain.SessionToken, error) {
	actor, err := s.VerifyToken(token)
	if err != nil {
		return domain.SessionToken{}, err
	}
	return s.IssueToken(actor)
}

// Logout currently no-ops for stateless JWT approach.
func (s *AuthService) Logout(_ context.Context, _ string) error {
	return nil
}

// GetProfile returns the sanitized account of the caller.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (domain.UserProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UserProfile{}, apperrors.NewNotFound("user", nil)
		}
		return domain.UserProfile{}, apperrors.NewUpstreamFailure("credential store", err)
	}
	return user.Profile(), nil
}

// UpdateProfile changes the caller's names.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, input ProfileInput) (domain.UserProfile, error) {
	update := repository.ProfileUpdate{}
	details := map[string]any{}
	if input.FirstName != nil {
		name := strings.TrimSpace(*input.FirstName)
		if name == "" {
			details["first_name"] = "required"
		}
		update.FirstName = &name
	}
	if input.LastName != nil {
		name := strings.TrimSpace(*input.LastName)
		if name == "" {
			details["last_name"] = "required"
		}
		update.LastName = &name
	}
	if len(details) > 0 {
		return domain.UserProfile{}, apperrors.NewValidationError("validation failed", details)
	}

	user, err := s.users.UpdateProfile(ctx, userID, update)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UserProfile{}, apperrors.NewNotFound("user", nil)
		}
		return domain.UserProfile{}, apperrors.NewUpstreamFailure("credential store", err)
	}
	return user.Profile(), nil
}

// TokenManager exposes the underlying token manager.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func validateRegistration(input RegisterInput) error {
	details := map[string]any{}
	if input.Email == "" {
		details["email"] = "required"
	} else if addr, err := mail.ParseAddress(input.Email); err != nil || addr.Address != input.Email {
		details["email"] = "must be a valid email address"
	}
	if len(input.Password) < minPasswordLength {
		details["password"] = "must be at least 6 characters"
	} else if len(input.Password) > maxPasswordLength {
		details["password"] = "must be at most 72 bytes"
	}
	if input.FirstName == "" {
		details["first_name"] = "required"
	}
	if input.LastName == "" {
		details["last_name"] = "required"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details)
	}
	return nil
}
