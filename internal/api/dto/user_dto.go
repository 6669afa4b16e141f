package dto

import (
	"time"

	"github.com/Avdeevkonst/oauth2-chat/internal/domain"
)

// RegisterRequest payload for new users.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

// CredentialsRequest payload for login.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshTokenRequest payload for token refresh.
type RefreshTokenRequest struct {
	Token string `json:"token"`
}

// ChangePasswordRequest extends credentials with the replacement password.
type ChangePasswordRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	NewPassword string `json:"new_password"`
}

// PasswordResetRequest asks for a reset token.
type PasswordResetRequest struct {
	Username string `json:"username"`
}

// PasswordResetConfirmRequest consumes a reset token.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// UpdateProfileRequest payload for profile mutation; nil fields are kept.
type UpdateProfileRequest struct {
	Phone *string `json:"phone"`
	Email *string `json:"email"`
}

// TokenPairResponse is the issued access/refresh pair.
type TokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// NewTokenPairResponse converts the domain pair.
func NewTokenPairResponse(pair domain.TokenPair) TokenPairResponse {
	return TokenPairResponse{Access: pair.Access, Refresh: pair.Refresh}
}

// UserView is the public account representation.
type UserView struct {
	ID          int64      `json:"id"`
	Username    string     `json:"username"`
	Role        string     `json:"role,omitempty"`
	IsActive    bool       `json:"is_active"`
	IsSuperuser bool       `json:"is_superuser"`
	Phone       string     `json:"phone,omitempty"`
	Email       string     `json:"email,omitempty"`
	CreatedAt   time.Time  `json:"creation_date"`
	UpdatedAt   *time.Time `json:"modified_date"`
}

// NewUserView builds a view; redacted strips private profile fields for
// callers other than the account owner.
func NewUserView(user *domain.User, personal *domain.Personal, redacted bool) UserView {
	view := UserView{
		ID:          user.ID,
		Username:    user.Username,
		IsActive:    user.IsActive,
		IsSuperuser: user.IsSuperuser,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
	if redacted {
		return view
	}
	view.Role = string(user.Role)
	if personal != nil {
		view.Phone = personal.Phone
		view.Email = personal.Email
	}
	return view
}
