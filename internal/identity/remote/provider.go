// Package remote implements identity.Provider against the backend auth API
// through the request pipeline.
package remote

import (
	"context"
	"log/slog"
	"sync"

	"github.com/campus-eats/appkit/internal/api"
	"github.com/campus-eats/appkit/internal/identity"
	"github.com/campus-eats/appkit/internal/token"
	apperrors "github.com/campus-eats/appkit/pkg/errors"
)

// Provider speaks the auth endpoints of the backend API. Login and signup go
// out with SkipAuth since no session exists yet; the returned token pair is
// written to the token store.
type Provider struct {
	api    *api.Client
	tokens *token.Store
	logger *slog.Logger

	mu      sync.RWMutex
	current *identity.User
}

// NewProvider creates a remote provider over the given pipeline and token
// store.
func NewProvider(client *api.Client, tokens *token.Store, logger *slog.Logger) *Provider {
	return &Provider{api: client, tokens: tokens, logger: logger}
}

type authUser struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
	DisplayName   string `json:"displayName"`
}

type authResponse struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	User         authUser `json:"user"`
}

// SignInWithPassword authenticates against POST /api/auth/login.
func (p *Provider) SignInWithPassword(ctx context.Context, email, password string) (*identity.User, error) {
	if err := identity.ValidateCredentials(email, password); err != nil {
		return nil, err
	}

	body := map[string]string{"email": email, "password": password}
	res, err := p.api.Post(ctx, "/api/auth/login", body, api.SkipAuth())
	if err != nil {
		return nil, err
	}

	return p.adoptSession(ctx, res)
}

// SignUp registers against POST /api/auth/signup. The account comes back
// unverified and the server sends the verification email.
func (p *Provider) SignUp(ctx context.Context, in identity.SignUpInput) (*identity.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	body := map[string]string{
		"email":    in.Email,
		"password": in.Password,
		"userId":   in.UserID,
		"name":     in.Name,
		"phone":    in.Phone,
	}
	res, err := p.api.Post(ctx, "/api/auth/signup", body, api.SkipAuth())
	if err != nil {
		return nil, err
	}

	var ar authResponse
	if err := res.Decode(&ar); err != nil {
		return nil, err
	}
	return &identity.User{
		Email:         ar.User.Email,
		EmailVerified: ar.User.EmailVerified,
		DisplayName:   ar.User.DisplayName,
	}, nil
}

// SignInPopup is not available outside a browser context.
func (p *Provider) SignInPopup(_ context.Context) (*identity.User, error) {
	return nil, apperrors.InvalidInput("팝업 로그인은 이 환경에서 지원되지 않습니다.")
}

// SignOut notifies the server best-effort and always drops local state.
func (p *Provider) SignOut(ctx context.Context) error {
	if _, err := p.api.Post(ctx, "/api/auth/logout", nil); err != nil {
		p.logger.WarnContext(ctx, "server logout failed", slog.String("error", err.Error()))
	}

	p.mu.Lock()
	p.current = nil
	p.mu.Unlock()

	return p.tokens.ClearAll(ctx)
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

// SendVerificationEmail asks the server to resend the verification mail.
func (p *Provider) SendVerificationEmail(ctx context.Context, u *identity.User) error {
	body := map[string]string{"email": u.Email}
	_, err := p.api.Post(ctx, "/api/auth/verify-email", body, api.SkipAuth())
	return err
}

func (p *Provider) adoptSession(ctx context.Context, res *api.Result) (*identity.User, error) {
	var ar authResponse
	if err := res.Decode(&ar); err != nil {
		return nil, err
	}
	if ar.AccessToken == "" {
		return nil, apperrors.Unauthorized()
	}

	u := &identity.User{
		Email:         ar.User.Email,
		EmailVerified: ar.User.EmailVerified,
		DisplayName:   ar.User.DisplayName,
	}
	if !u.EmailVerified {
		return nil, apperrors.InvalidInput("이메일 인증 후 로그인해 주세요. 메일함을 확인해 주세요.")
	}

	if err := p.tokens.SetAccess(ctx, ar.AccessToken); err != nil {
		return nil, err
	}
	if err := p.tokens.SetRefresh(ctx, ar.RefreshToken); err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.current = u
	p.mu.Unlock()

	return u, nil
}
