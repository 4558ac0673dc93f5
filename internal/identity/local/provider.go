// Package local is an in-process identity provider for development and
// tests: bcrypt-hashed users in memory, HS256 token pair in the token store.
package local

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/campus-eats/appkit/internal/identity"
	"github.com/campus-eats/appkit/internal/token"
	apperrors "github.com/campus-eats/appkit/pkg/errors"
)

type account struct {
	email        string
	passwordHash []byte
	displayName  string
	userID       string
	phone        string
	verified     bool
}

// Provider implements identity.Provider against an in-memory user table.
type Provider struct {
	tokens *token.Store
	jwt    *JWTManager
	logger *slog.Logger

	mu        sync.RWMutex
	accounts  map[string]*account
	current   *identity.User
	popupUser *identity.User
}

// Option configures the provider.
type Option func(*Provider)

// WithPopupUser sets the identity returned by SignInPopup, standing in for a
// federated login flow.
func WithPopupUser(u identity.User) Option {
	return func(p *Provider) { p.popupUser = &u }
}

// NewProvider creates a local provider issuing tokens through the given
// manager into the given token store.
func NewProvider(tokens *token.Store, jwtManager *JWTManager, logger *slog.Logger, opts ...Option) *Provider {
	p := &Provider{
		tokens:   tokens,
		jwt:      jwtManager,
		logger:   logger,
		accounts: make(map[string]*account),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SignUp registers a new account. The account starts unverified and a
// verification email is sent before the user can sign in.
func (p *Provider) SignUp(ctx context.Context, in identity.SignUpInput) (*identity.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	p.mu.Lock()
	if _, exists := p.accounts[in.Email]; exists {
		p.mu.Unlock()
		return nil, &apperrors.AppError{
			Code:    apperrors.CodeDuplicateResource,
			Message: apperrors.UserMessage(apperrors.CodeDuplicateResource, ""),
			Status:  409,
		}
	}
	p.accounts[in.Email] = &account{
		email:        in.Email,
		passwordHash: hash,
		displayName:  in.Name,
		userID:       in.UserID,
		phone:        in.Phone,
		verified:     false,
	}
	p.mu.Unlock()

	u := &identity.User{Email: in.Email, EmailVerified: false, DisplayName: in.Name}
	if err := p.SendVerificationEmail(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// SignInWithPassword authenticates an account and stores a fresh token pair.
// Unverified accounts are rejected.
func (p *Provider) SignInWithPassword(ctx context.Context, email, password string) (*identity.User, error) {
	if err := identity.ValidateCredentials(email, password); err != nil {
		return nil, err
	}

	p.mu.RLock()
	acct, ok := p.accounts[email]
	p.mu.RUnlock()
	if !ok {
		return nil, &apperrors.AppError{
			Code:    apperrors.CodeUserNotFound,
			Message: apperrors.UserMessage(apperrors.CodeUserNotFound, ""),
			Status:  404,
		}
	}

	if err := bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(password)); err != nil {
		return nil, apperrors.Unauthorized()
	}

	if !acct.verified {
		return nil, apperrors.InvalidInput("이메일 인증 후 로그인해 주세요. 메일함을 확인해 주세요.")
	}

	u := &identity.User{Email: acct.email, EmailVerified: true, DisplayName: acct.displayName}
	if err := p.establishSession(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// SignInPopup signs in the configured federated user.
func (p *Provider) SignInPopup(ctx context.Context) (*identity.User, error) {
	if p.popupUser == nil {
		return nil, apperrors.InvalidInput("팝업 로그인이 설정되어 있지 않습니다.")
	}

	u := *p.popupUser
	if err := p.establishSession(ctx, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// SignOut drops the token pair and the cached identity.
func (p *Provider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	p.current = nil
	p.mu.Unlock()

	if err := p.tokens.ClearAll(ctx); err != nil {
		return apperrors.Wrap(err, "clear tokens on sign-out")
	}
	return nil
}

// CurrentUser returns the cached signed-in identity, or nil.
func (p *Provider) CurrentUser() *identity.User {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.current == nil {
		return nil
	}
	u := *p.current
	return &u
}

// SendVerificationEmail logs the verification request. There is no real mail
// transport in the dev provider; tests call MarkVerified instead.
func (p *Provider) SendVerificationEmail(ctx context.Context, u *identity.User) error {
	p.logger.InfoContext(ctx, "verification email requested", slog.String("email", u.Email))
	return nil
}

// MarkVerified flips an account to verified. Dev and test hook.
func (p *Provider) MarkVerified(email string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	acct, ok := p.accounts[email]
	if !ok {
		return false
	}
	acct.verified = true
	return true
}

// RefreshPair validates a refresh token and mints a new pair. The dev API
// server uses it to back the refresh endpoint.
func (p *Provider) RefreshPair(refreshToken string) (access, refresh string, err error) {
	claims, err := p.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", "", apperrors.Unauthorized()
	}

	p.mu.RLock()
	acct, ok := p.accounts[claims.Email]
	p.mu.RUnlock()

	displayName := ""
	verified := true
	if ok {
		displayName = acct.displayName
		verified = acct.verified
	}

	access, err = p.jwt.GenerateAccessToken(claims.Email, displayName, verified)
	if err != nil {
		return "", "", apperrors.Internal(err)
	}
	refresh, err = p.jwt.GenerateRefreshToken(claims.Email)
	if err != nil {
		return "", "", apperrors.Internal(err)
	}
	return access, refresh, nil
}

func (p *Provider) establishSession(ctx context.Context, u *identity.User) error {
	access, err := p.jwt.GenerateAccessToken(u.Email, u.DisplayName, u.EmailVerified)
	if err != nil {
		return apperrors.Internal(err)
	}
	refresh, err := p.jwt.GenerateRefreshToken(u.Email)
	if err != nil {
		return apperrors.Internal(err)
	}

	if err := p.tokens.SetAccess(ctx, access); err != nil {
		return err
	}
	if err := p.tokens.SetRefresh(ctx, refresh); err != nil {
		return err
	}

	p.mu.Lock()
	p.current = u
	p.mu.Unlock()

	p.logger.InfoContext(ctx, "signed in", slog.String("email", u.Email))
	return nil
}
