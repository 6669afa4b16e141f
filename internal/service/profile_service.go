package service

import (
	"context"
	"regexp"

	"github.com/jackc/pgx/v5"

	"github.com/Avdeevkonst/oauth2-chat/internal/domain"
	"github.com/Avdeevkonst/oauth2-chat/internal/repository"
	apperrors "github.com/Avdeevkonst/oauth2-chat/pkg/util"
)

var (
	phonePattern = regexp.MustCompile(`^(\+)[1-9][0-9\-\(\)\.]{9,15}$`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

func validatePhone(phone string) error {
	if phone == "" {
		return nil
	}
	if !phonePattern.MatchString(phone) {
		return apperrors.NewValidationError("expected phone format is +79005001010", nil)
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return nil
	}
	if !emailPattern.MatchString(email) {
		return apperrors.NewValidationError("expected email format is 'mail@x.y'", nil)
	}
	return nil
}

// ProfileService serves profile reads and updates.
type ProfileService struct {
	users    repository.UserRepository
	profiles repository.ProfileRepository
}

// NewProfileService builds the service.
func NewProfileService(users repository.UserRepository, profiles repository.ProfileRepository) *ProfileService {
	return &ProfileService{users: users, profiles: profiles}
}

// Get loads a user with profile data. Redacted reports whether the caller
// asked about somebody else, so the handler can strip private fields.
func (s *ProfileService) Get(ctx context.Context, requesterID, userID int64) (*domain.User, *domain.Personal, bool, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil, false, apperrors.NewNotFound("user", nil)
		}
		return nil, nil, false, err
	}
	personal, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil, false, apperrors.NewNotFound("profile", nil)
		}
		return nil, nil, false, err
	}
	return user, personal, requesterID != userID, nil
}

// Update changes phone and/or email after format validation. Nil fields
// keep their stored value.
func (s *ProfileService) Update(ctx context.Context, userID int64, phone, email *string) (*domain.Personal, error) {
	if phone != nil {
		if err := validatePhone(*phone); err != nil {
			return nil, err
		}
	}
	if email != nil {
		if err := validateEmail(*email); err != nil {
			return nil, err
		}
	}

	personal, err := s.profiles.Update(ctx, userID, phone, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("profile", nil)
		}
		return nil, err
	}
	return personal, nil
}
