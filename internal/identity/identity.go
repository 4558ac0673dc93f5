// Package identity defines the authentication provider port consumed by the
// navigation guard and the session-scoped stores.
package identity

import (
	"context"
	"strings"

	apperrors "github.com/campus-eats/appkit/pkg/errors"
)

// GuestKey is the identity key used when nobody is signed in.
const GuestKey = "guest"

// User is the locally cached authenticated identity.
type User struct {
	Email         string
	EmailVerified bool
	DisplayName   string
}

// SignUpInput carries the registration form fields.
type SignUpInput struct {
	Email    string
	Password string
	UserID   string
	Name     string
	Phone    string
}

// Provider is the authentication capability. CurrentUser is synchronous and
// reflects only locally cached state, never a server round-trip.
type Provider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*User, error)
	SignInPopup(ctx context.Context) (*User, error)
	SignUp(ctx context.Context, in SignUpInput) (*User, error)
	SignOut(ctx context.Context) error
	CurrentUser() *User
	SendVerificationEmail(ctx context.Context, u *User) error
}

// KeyFunc derives the session identity key from a provider: the signed-in
// email, or GuestKey.
func KeyFunc(p Provider) func() string {
	return func() string {
		if u := p.CurrentUser(); u != nil && u.Email != "" {
			return u.Email
		}
		return GuestKey
	}
}

// ValidateCredentials checks the shared email and password rules.
func ValidateCredentials(email, password string) error {
	if email == "" || password == "" {
		return apperrors.InvalidInput("이메일과 비밀번호를 모두 입력해 주세요.")
	}
	if len(password) < 6 {
		return apperrors.InvalidInput("비밀번호는 6자 이상이어야 합니다.")
	}
	return nil
}

// Validate checks the sign-up form rules. It trims the profile fields in
// place.
func (in *SignUpInput) Validate() error {
	if err := ValidateCredentials(in.Email, in.Password); err != nil {
		return err
	}

	in.UserID = strings.TrimSpace(in.UserID)
	if in.UserID == "" {
		return apperrors.InvalidInput("아이디를 입력해 주세요.")
	}

	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return apperrors.InvalidInput("이름을 입력해 주세요.")
	}

	in.Phone = strings.TrimSpace(in.Phone)
	if in.Phone == "" {
		return apperrors.InvalidInput("전화번호를 입력해 주세요.")
	}

	return nil
}
