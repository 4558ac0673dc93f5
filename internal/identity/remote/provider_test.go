package remote

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-eats/appkit/internal/api"
	"github.com/campus-eats/appkit/internal/identity"
	"github.com/campus-eats/appkit/internal/kvstore"
	"github.com/campus-eats/appkit/internal/token"
	apperrors "github.com/campus-eats/appkit/pkg/errors"
	"github.com/campus-eats/appkit/pkg/httpclient"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newProvider(t *testing.T, handler http.Handler) (*Provider, *token.Store) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	tokens := token.NewStore(kvstore.NewMemory())
	client := api.NewClient(server.URL, httpclient.New(httpclient.DefaultConfig()), tokens, testLogger())
	return NewProvider(client, tokens, testLogger()), tokens
}

func TestProvider_SignIn_Success(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice@campus.ac.kr", body["email"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"accessToken":  "acc-1",
			"refreshToken": "ref-1",
			"user": map[string]any{
				"email":         "alice@campus.ac.kr",
				"emailVerified": true,
				"displayName":   "Alice",
			},
		})
	})

	p, tokens := newProvider(t, mux)
	ctx := context.Background()

	u, err := p.SignInWithPassword(ctx, "alice@campus.ac.kr", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.DisplayName)

	acc, ok, err := tokens.Access(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "acc-1", acc)

	cur := p.CurrentUser()
	require.NotNil(t, cur)
	assert.Equal(t, "alice@campus.ac.kr", cur.Email)
}

func TestProvider_SignIn_UnverifiedRejected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"accessToken":  "acc-1",
			"refreshToken": "ref-1",
			"user": map[string]any{
				"email":         "alice@campus.ac.kr",
				"emailVerified": false,
			},
		})
	})

	p, tokens := newProvider(t, mux)
	ctx := context.Background()

	_, err := p.SignInWithPassword(ctx, "alice@campus.ac.kr", "secret1")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Nil(t, p.CurrentUser())

	// No token pair is adopted for an unverified account.
	_, ok, err := tokens.Access(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProvider_SignIn_ServerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"UNAUTHORIZED","message":"bad credentials"}`))
	})

	p, _ := newProvider(t, mux)

	_, err := p.SignInWithPassword(context.Background(), "alice@campus.ac.kr", "secret1")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeUnauthorized, appErr.Code)
}

func TestProvider_SignIn_LocalValidationSkipsNetwork(t *testing.T) {
	called := false
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) { called = true })

	p, _ := newProvider(t, mux)

	_, err := p.SignInWithPassword(context.Background(), "alice@campus.ac.kr", "123")
	require.Error(t, err)
	assert.False(t, called)
}

func TestProvider_SignUp(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/signup", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice01", body["userId"])
		assert.Equal(t, "010-1234-5678", body["phone"])

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user": map[string]any{
				"email":         body["email"],
				"emailVerified": false,
				"displayName":   body["name"],
			},
		})
	})

	p, _ := newProvider(t, mux)

	u, err := p.SignUp(context.Background(), identitySignUpInput())
	require.NoError(t, err)
	assert.False(t, u.EmailVerified)
	assert.Equal(t, "Alice", u.DisplayName)
}

func TestProvider_SignOut_ClearsLocalStateEvenOnServerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	p, tokens := newProvider(t, mux)
	ctx := context.Background()

	require.NoError(t, tokens.SetAccess(ctx, "acc"))
	require.NoError(t, tokens.SetRefresh(ctx, "ref"))

	require.NoError(t, p.SignOut(ctx))

	assert.Nil(t, p.CurrentUser())
	_, ok, err := tokens.Access(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func identitySignUpInput() identity.SignUpInput {
	return identity.SignUpInput{
		Email:    "alice@campus.ac.kr",
		Password: "secret1",
		UserID:   "alice01",
		Name:     "Alice",
		Phone:    "010-1234-5678",
	}
}
