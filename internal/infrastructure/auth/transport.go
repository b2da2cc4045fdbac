package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/spot-resolver/internal/config"
)

// ErrSessionExpired - refresh не удался, учётные данные сброшены
var ErrSessionExpired = errors.New("auth: session expired")

const (
	defaultTimeout = 10 * time.Second
	// expirySkew - токен считается истёкшим чуть раньше exp
	expirySkew = 30 * time.Second
)

// Tokens - ответ эндпоинта /auth/refresh
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// Transport - http.RoundTripper с Bearer-токеном и обновлением сессии.
// На 401 все параллельные запросы ждут одного refresh, затем запрос повторяется один раз.
type Transport struct {
	base       http.RoundTripper
	refreshURL string
	timeout    time.Duration
	logger     *zap.Logger

	mu      sync.RWMutex
	access  string
	refresh string

	group singleflight.Group
	now   func() time.Time
}

// NewTransport создает Transport; base == nil - http.DefaultTransport
func NewTransport(cfg *config.AuthConfig, base http.RoundTripper, logger *zap.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Transport{
		base:       base,
		refreshURL: cfg.RefreshURL,
		timeout:    timeout,
		logger:     logger,
		now:        time.Now,
	}
}

// Client - http.Client поверх Transport
func (t *Transport) Client() *http.Client {
	return &http.Client{Transport: t, Timeout: t.timeout}
}

// SetTokens задаёт пару токенов (после логина)
func (t *Transport) SetTokens(access, refresh string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.access, t.refresh = access, refresh
}

// Tokens возвращает текущую пару токенов
func (t *Transport) Tokens() (access, refresh string) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.access, t.refresh
}

// RoundTrip реализует http.RoundTripper
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	access, refresh := t.Tokens()
	if access == "" && refresh == "" {
		return nil, ErrSessionExpired
	}

	if access == "" || t.expired(access) {
		var err error
		if access, err = t.refreshShared(access); err != nil {
			return nil, err
		}
	}

	resp, err := t.base.RoundTrip(withToken(req, access))
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	// тело уже прочитано, повторить нельзя
	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		return resp, nil
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	fresh, err := t.refreshShared(access)
	if err != nil {
		return nil, err
	}

	retry := withToken(req, fresh)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("auth: rewind request body: %w", err)
		}
		retry.Body = body
	}
	return t.base.RoundTrip(retry)
}

// refreshShared обновляет токен одним запросом на всех ожидающих.
// Если токен уже сменился после stale, возвращается текущий без запроса.
func (t *Transport) refreshShared(stale string) (string, error) {
	v, err, shared := t.group.Do("refresh", func() (interface{}, error) {
		access, refresh := t.Tokens()
		if access != "" && access != stale && !t.expired(access) {
			return access, nil
		}
		if refresh == "" {
			t.clear()
			return nil, ErrSessionExpired
		}

		tokens, err := t.doRefresh(refresh)
		if err != nil {
			t.logger.Warn("Session refresh failed, credentials cleared", zap.Error(err))
			t.clear()
			return nil, fmt.Errorf("%w: %v", ErrSessionExpired, err)
		}

		if tokens.RefreshToken == "" {
			tokens.RefreshToken = refresh
		}
		t.SetTokens(tokens.AccessToken, tokens.RefreshToken)
		t.logger.Debug("Session refreshed", zap.Int("expires_in", tokens.ExpiresIn))
		return tokens.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	if shared {
		t.logger.Debug("Joined in-flight session refresh")
	}
	return v.(string), nil
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (t *Transport) doRefresh(refresh string) (*Tokens, error) {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	// токен только в теле: query попадает в логи прокси
	payload, err := json.Marshal(refreshRequest{RefreshToken: refresh})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.refreshURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("refresh endpoint: status %d, body: %s", resp.StatusCode, string(body))
	}

	var tokens Tokens
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if tokens.AccessToken == "" {
		return nil, errors.New("refresh endpoint returned empty access token")
	}
	return &tokens, nil
}

func (t *Transport) clear() {
	t.SetTokens("", "")
}

// expired - exp из JWT без проверки подписи. Непрозрачный токен не истекает.
func (t *Transport) expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !t.now().Add(expirySkew).Before(exp.Time)
}

func withToken(req *http.Request, token string) *http.Request {
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}
