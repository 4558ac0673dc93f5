package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-eats/appkit/internal/kvstore"
	"github.com/campus-eats/appkit/internal/token"
	apperrors "github.com/campus-eats/appkit/pkg/errors"
	"github.com/campus-eats/appkit/pkg/httpclient"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type fixture struct {
	client *Client
	tokens *token.Store
	server *httptest.Server

	apiCalls     atomic.Int32
	refreshCalls atomic.Int32
}

// newFixture starts a backend whose /api/data endpoint accepts the token
// "valid" and answers 401 otherwise, and whose refresh endpoint exchanges
// the refresh token "good" for the access token "valid".
func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{}
	mux := http.NewServeMux()

	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		f.refreshCalls.Add(1)

		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		if body.RefreshToken != "good" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code":"INVALID_REFRESH_TOKEN","message":"refresh token invalid"}`))
			return
		}
		_, _ = w.Write([]byte(`{"accessToken":"valid","refreshToken":"good-2"}`))
	})

	mux.HandleFunc("/api/data", func(w http.ResponseWriter, r *http.Request) {
		f.apiCalls.Add(1)

		auth := r.Header.Get("Authorization")
		if auth != "Bearer valid" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code":"TOKEN_EXPIRED","message":"access token expired"}`))
			return
		}
		_, _ = w.Write([]byte(`{"value":"hello"}`))
	})

	mux.HandleFunc("/api/empty", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("/api/public", func(w http.ResponseWriter, r *http.Request) {
		f.apiCalls.Add(1)
		if r.Header.Get("Authorization") != "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"value":"public"}`))
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)

	f.tokens = token.NewStore(kvstore.NewMemory())
	f.client = NewClient(f.server.URL, httpclient.New(httpclient.DefaultConfig()), f.tokens, testLogger())
	return f
}

func (f *fixture) setTokens(t *testing.T, access, refresh string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.tokens.SetAccess(ctx, access))
	require.NoError(t, f.tokens.SetRefresh(ctx, refresh))
}

// --- happy path ---

func TestClient_Get_Success(t *testing.T) {
	f := newFixture(t)
	f.setTokens(t, "valid", "good")

	res, err := f.client.Get(context.Background(), "/api/data")
	require.NoError(t, err)
	assert.False(t, res.NoContent)

	var out struct {
		Value string `json:"value"`
	}
	require.NoError(t, res.Decode(&out))
	assert.Equal(t, "hello", out.Value)
	assert.Equal(t, int32(0), f.refreshCalls.Load())
}

func TestClient_NoContent(t *testing.T) {
	f := newFixture(t)
	f.setTokens(t, "valid", "good")

	res, err := f.client.Get(context.Background(), "/api/empty")
	require.NoError(t, err)
	assert.True(t, res.NoContent)
	assert.NoError(t, res.Decode(&struct{}{}))
}

func TestClient_SkipAuth_NoBearer(t *testing.T) {
	f := newFixture(t)
	f.setTokens(t, "valid", "good")

	res, err := f.client.Get(context.Background(), "/api/public", SkipAuth())
	require.NoError(t, err)

	var out struct {
		Value string `json:"value"`
	}
	require.NoError(t, res.Decode(&out))
	assert.Equal(t, "public", out.Value)
}

// --- refresh-and-retry ---

func TestClient_ExpiredAccess_RefreshesAndRetries(t *testing.T) {
	f := newFixture(t)
	f.setTokens(t, "expired", "good")

	res, err := f.client.Get(context.Background(), "/api/data")
	require.NoError(t, err)

	var out struct {
		Value string `json:"value"`
	}
	require.NoError(t, res.Decode(&out))
	assert.Equal(t, "hello", out.Value)

	assert.Equal(t, int32(1), f.refreshCalls.Load())
	assert.Equal(t, int32(2), f.apiCalls.Load())

	// The store now holds the rotated pair.
	acc, ok, err := f.tokens.Access(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "valid", acc)

	ref, ok, err := f.tokens.Refresh(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "good-2", ref)
}

func TestClient_NoAccessToken_ProactiveRefresh(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.tokens.SetRefresh(context.Background(), "good"))

	res, err := f.client.Get(context.Background(), "/api/data")
	require.NoError(t, err)

	var out struct {
		Value string `json:"value"`
	}
	require.NoError(t, res.Decode(&out))
	assert.Equal(t, "hello", out.Value)

	assert.Equal(t, int32(1), f.refreshCalls.Load())
	assert.Equal(t, int32(1), f.apiCalls.Load())
}

// No refresh token at all: the request fails before reaching the network.
func TestClient_NoTokens_FailsWithoutNetwork(t *testing.T) {
	f := newFixture(t)

	_, err := f.client.Get(context.Background(), "/api/data")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeUnauthorized, appErr.Code)
	assert.Equal(t, int32(0), f.apiCalls.Load())
	assert.Equal(t, int32(0), f.refreshCalls.Load())
}

// A second 401 after a successful refresh is classified and returned, with
// exactly one refresh performed.
func TestClient_SecondUnauthorized_NoSecondRefresh(t *testing.T) {
	var apiCalls, refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		_, _ = w.Write([]byte(`{"accessToken":"still-bad"}`))
	})
	mux.HandleFunc("/api/data", func(w http.ResponseWriter, r *http.Request) {
		apiCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"TOKEN_EXPIRED","message":"still expired"}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	tokens := token.NewStore(kvstore.NewMemory())
	ctx := context.Background()
	require.NoError(t, tokens.SetAccess(ctx, "expired"))
	require.NoError(t, tokens.SetRefresh(ctx, "whatever"))

	client := NewClient(server.URL, httpclient.New(httpclient.DefaultConfig()), tokens, testLogger())

	_, err := client.Get(ctx, "/api/data")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeTokenExpired, appErr.Code)
	assert.True(t, appErr.IsSessionInvalidating())

	assert.Equal(t, int32(1), refreshCalls.Load())
	assert.Equal(t, int32(2), apiCalls.Load())
}

// A rejected refresh clears both tokens and the original 401 is what the
// caller sees.
func TestClient_FailedRefresh_ClearsTokens(t *testing.T) {
	f := newFixture(t)
	f.setTokens(t, "expired", "bad")

	_, err := f.client.Get(context.Background(), "/api/data")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeTokenExpired, appErr.Code)

	_, ok, err := f.tokens.Access(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = f.tokens.Refresh(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	// One refresh attempt, one API call, no retry.
	assert.Equal(t, int32(1), f.refreshCalls.Load())
	assert.Equal(t, int32(1), f.apiCalls.Load())
}

// --- classification ---

func TestClient_NonJSON404_Classified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("<html>not found</html>"))
	}))
	defer server.Close()

	tokens := token.NewStore(kvstore.NewMemory())
	client := NewClient(server.URL, httpclient.New(httpclient.DefaultConfig()), tokens, testLogger())

	_, err := client.Get(context.Background(), "/missing", SkipAuth())
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeUnknownError, appErr.Code)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.NotEmpty(t, appErr.Message)
}

func TestClient_TransportError_Classified(t *testing.T) {
	tokens := token.NewStore(kvstore.NewMemory())
	client := NewClient("http://127.0.0.1:1", httpclient.New(httpclient.DefaultConfig()), tokens, testLogger())

	_, err := client.Get(context.Background(), "/api/data", SkipAuth())
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeUnknownError, appErr.Code)
}

// --- single-flight refresh ---

func TestClient_ConcurrentExpiry_SingleRefresh(t *testing.T) {
	f := newFixture(t)
	f.setTokens(t, "expired", "good")

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.client.Get(context.Background(), "/api/data")
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "worker %d", i)
	}
	assert.Equal(t, int32(1), f.refreshCalls.Load())
}

// --- request encoding ---

func TestClient_Post_SendsJSONBody(t *testing.T) {
	var gotBody string
	var gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1}`))
	}))
	defer server.Close()

	tokens := token.NewStore(kvstore.NewMemory())
	client := NewClient(server.URL, httpclient.New(httpclient.DefaultConfig()), tokens, testLogger())

	res, err := client.Post(context.Background(), "/api/things", map[string]string{"name": "kimbap"}, SkipAuth())
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, res.Status)
	assert.JSONEq(t, `{"name":"kimbap"}`, gotBody)
	assert.Equal(t, "application/json", gotContentType)
}
