package service

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Avdeevkonst/oauth2-chat/internal/auth"
	"github.com/Avdeevkonst/oauth2-chat/internal/config"
	"github.com/Avdeevkonst/oauth2-chat/internal/domain"
	"github.com/Avdeevkonst/oauth2-chat/internal/events"
	"github.com/Avdeevkonst/oauth2-chat/internal/repository"
	apperrors "github.com/Avdeevkonst/oauth2-chat/pkg/util"
)

// AuthService coordinates registration, login, and token flows.
type AuthService struct {
	users      repository.UserRepository
	profiles   repository.ProfileRepository
	resets     repository.PasswordResetRepository
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	bcryptCost int
	resetTTL   time.Duration
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo          repository.UserRepository
	ProfileRepo       repository.ProfileRepository
	PasswordResetRepo repository.PasswordResetRepository
	Dispatcher        events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		profiles:   deps.ProfileRepo,
		resets:     deps.PasswordResetRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL(), cfg.Auth.RefreshTokenTTL()),
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.Auth.BcryptCost,
		resetTTL:   time.Duration(cfg.Auth.PasswordResetTTLMinutes) * time.Minute,
	}
}

// RegisterInput describes the registration payload.
type RegisterInput struct {
	Username string
	Password string
	Role     domain.Role
	Phone    string
	Email    string
}

// Register creates a new account with its personal profile row.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, *domain.Personal, error) {
	if err := validateEmail(input.Email); err != nil {
		return nil, nil, err
	}
	if err := validatePhone(input.Phone); err != nil {
		return nil, nil, err
	}

	if _, err := s.users.GetByUsername(ctx, input.Username); err == nil {
		return nil, nil, apperrors.NewConflict("username already registered", nil)
	} else if err != pgx.ErrNoRows {
		return nil, nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, nil, err
	}

	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}

	user := &domain.User{
		Username:     input.Username,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	personal := &domain.Personal{
		UserID: user.ID,
		Phone:  input.Phone,
		Email:  input.Email,
	}
	if err := s.profiles.Create(ctx, personal); err != nil {
		return nil, nil, err
	}

	s.publish(ctx, events.EventUserRegistered, user.ID, events.UserRegisteredPayload{
		Username: user.Username,
		Email:    personal.Email,
		Role:     user.Role,
	})
	return user, personal, nil
}

// Login authenticates a user and issues an access/refresh pair.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, domain.TokenPair, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.TokenPair{}, apperrors.NewUnauthorized("wrong credentials")
		}
		return nil, domain.TokenPair{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, domain.TokenPair{}, apperrors.NewUnauthorized("wrong password")
	}

	email := ""
	if personal, err := s.profiles.GetByUserID(ctx, user.ID); err == nil {
		email = personal.Email
	}

	pair, err := s.tokenMgr.IssuePair(auth.IssueInput{
		UserID:      strconv.FormatInt(user.ID, 10),
		Role:        user.Role,
		IsSuperuser: user.IsSuperuser,
		Email:       email,
	})
	if err != nil {
		return nil, domain.TokenPair{}, err
	}
	return user, pair, nil
}

// Refresh decodes a refresh token and reissues a fresh pair. The decode
// needs no role input; it only requires that id, role, and the superuser
// flag were all present in the submitted token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	claims, err := s.tokenMgr.Decode(refreshToken)
	if err != nil {
		return domain.TokenPair{}, err
	}

	if claims.UserID == "" || claims.Role == "" || !claims.HasSuperuserFlag() {
		return domain.TokenPair{}, apperrors.NewMalformedToken("unexpected decryption result")
	}
	role, ok := domain.ParseRole(claims.Role)
	if !ok {
		return domain.TokenPair{}, apperrors.NewMalformedToken("unexpected decryption result")
	}

	return s.tokenMgr.IssuePair(auth.IssueInput{
		UserID:      claims.UserID,
		Role:        role,
		IsSuperuser: claims.Superuser(),
		Email:       claims.Email,
	})
}

// ChangePassword verifies current credentials before storing the new hash
// and notifies the account's mail address.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, email, username, currentPassword, newPassword string) error {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewUnauthorized("wrong credentials")
		}
		return err
	}
	if user.ID != userID {
		return apperrors.NewValidationError("provided credentials not correct", nil)
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("wrong password")
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}

	s.publish(ctx, events.EventPasswordChanged, user.ID, events.PasswordChangedPayload{
		Email:       email,
		NewPassword: newPassword,
	})
	return nil
}

// RequestPasswordReset persists a single-use reset token for the account.
func (s *AuthService) RequestPasswordReset(ctx context.Context, username string) (*repository.PasswordResetToken, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}

	token := &repository.PasswordResetToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// ConfirmPasswordReset validates the reset token and updates the password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	token, err := s.resets.GetByToken(ctx, tokenStr)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("reset token", nil)
		}
		return err
	}
	if token.UsedAt != nil || time.Now().After(token.ExpiresAt) {
		return apperrors.NewValidationError("token expired or used", nil)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, token.UserID, hash); err != nil {
		return err
	}
	return s.resets.MarkUsed(ctx, token.ID)
}

// Me loads the authenticated account with its profile.
func (s *AuthService) Me(ctx context.Context, userID int64) (*domain.User, *domain.Personal, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil, apperrors.NewNotFound("user", nil)
		}
		return nil, nil, err
	}
	personal, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil && err != pgx.ErrNoRows {
		return nil, nil, err
	}
	return user, personal, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, userID int64, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
