package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spot-resolver/internal/config"
)

// authServer: /api отвечает 200 только на токен "fresh", /refresh выдаёт "fresh"
type authServer struct {
	*httptest.Server
	refreshes  atomic.Int32
	refreshErr bool
	delay      time.Duration
	bodies     chan string
	refreshURI chan string
}

func newAuthServer(t *testing.T) *authServer {
	s := &authServer{bodies: make(chan string, 32), refreshURI: make(chan string, 32)}
	mux := http.NewServeMux()
	mux.HandleFunc("/refresh", func(w http.ResponseWriter, r *http.Request) {
		s.refreshes.Add(1)
		s.refreshURI <- r.URL.RequestURI()
		time.Sleep(s.delay)

		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if s.refreshErr || body.RefreshToken != "refresh-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(Tokens{AccessToken: "fresh", RefreshToken: "refresh-2", TokenType: "bearer", ExpiresIn: 3600})
	})
	mux.HandleFunc("/api", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, _ := io.ReadAll(r.Body)
		s.bodies <- string(body)
		w.WriteHeader(http.StatusOK)
	})
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func newTestTransport(s *authServer) *Transport {
	return NewTransport(&config.AuthConfig{RefreshURL: s.URL + "/refresh", RequestTimeout: 2 * time.Second}, nil, zap.NewNop())
}

func TestTransport_RefreshOn401AndRetryWithBody(t *testing.T) {
	s := newAuthServer(t)
	tr := newTestTransport(s)
	tr.SetTokens("stale", "refresh-1")

	resp, err := tr.Client().Post(s.URL+"/api", "application/json", bytes.NewReader([]byte(`{"lat":38}`)))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"lat":38}`, <-s.bodies)
	assert.Equal(t, int32(1), s.refreshes.Load())

	access, refresh := tr.Tokens()
	assert.Equal(t, "fresh", access)
	assert.Equal(t, "refresh-2", refresh)
}

func TestTransport_RefreshTokenNotInURL(t *testing.T) {
	s := newAuthServer(t)
	tr := newTestTransport(s)
	tr.SetTokens("stale", "refresh-1")

	resp, err := tr.Client().Get(s.URL + "/api")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	uri := <-s.refreshURI
	assert.Equal(t, "/refresh", uri)
	assert.NotContains(t, uri, "refresh-1")
}

func TestTransport_ConcurrentCallersShareOneRefresh(t *testing.T) {
	s := newAuthServer(t)
	s.delay = 50 * time.Millisecond
	tr := newTestTransport(s)
	tr.SetTokens("stale", "refresh-1")
	client := tr.Client()

	var wg sync.WaitGroup
	statuses := make(chan int, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := client.Get(s.URL + "/api")
			if err != nil {
				statuses <- 0
				return
			}
			resp.Body.Close()
			statuses <- resp.StatusCode
		}()
	}
	wg.Wait()
	close(statuses)

	for status := range statuses {
		assert.Equal(t, http.StatusOK, status)
	}
	assert.Equal(t, int32(1), s.refreshes.Load())
}

func TestTransport_RefreshFailureClearsCredentials(t *testing.T) {
	s := newAuthServer(t)
	s.refreshErr = true
	tr := newTestTransport(s)
	tr.SetTokens("stale", "refresh-1")

	_, err := tr.Client().Get(s.URL + "/api")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionExpired)

	access, refresh := tr.Tokens()
	assert.Empty(t, access)
	assert.Empty(t, refresh)

	_, err = tr.Client().Get(s.URL + "/api")
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, int32(1), s.refreshes.Load(), "no refresh without credentials")
}

func TestTransport_ExpiredJWTRefreshedUpFront(t *testing.T) {
	s := newAuthServer(t)
	tr := newTestTransport(s)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(-time.Minute).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	tr.SetTokens(expired, "refresh-1")

	var apiCalls atomic.Int32
	base := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if r.URL.Path == "/api" {
			apiCalls.Add(1)
		}
		return http.DefaultTransport.RoundTrip(r)
	})
	tr.base = base

	resp, err := tr.Client().Get(s.URL + "/api")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(1), apiCalls.Load(), "expired token is never sent")
	assert.Equal(t, int32(1), s.refreshes.Load())
}

func TestTransport_RetriesOnlyOnce(t *testing.T) {
	var apiCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/refresh" {
			_ = json.NewEncoder(w).Encode(Tokens{AccessToken: "fresh"})
			return
		}
		apiCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	tr := NewTransport(&config.AuthConfig{RefreshURL: srv.URL + "/refresh"}, nil, zap.NewNop())
	tr.SetTokens("stale", "refresh-1")

	resp, err := tr.Client().Get(srv.URL + "/api")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, int32(2), apiCalls.Load())
}

func TestExpired(t *testing.T) {
	tr := NewTransport(&config.AuthConfig{}, nil, zap.NewNop())
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return now }

	sign := func(exp time.Time) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()}).SignedString([]byte("k"))
		require.NoError(t, err)
		return s
	}

	assert.False(t, tr.expired("opaque-token"))
	assert.False(t, tr.expired(sign(now.Add(time.Hour))))
	assert.True(t, tr.expired(sign(now.Add(10*time.Second))), "within skew")
	assert.True(t, tr.expired(sign(now.Add(-time.Hour))))
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
