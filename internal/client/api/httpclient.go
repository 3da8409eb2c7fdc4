package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/imctrack/imctrack/internal/client/models"
	"github.com/imctrack/imctrack/internal/common"
	"github.com/imctrack/imctrack/internal/logging"
)

// HTTPClient talks JSON over HTTP to the tracker backend.
//
// The short-lived bearer token and the identity live only in memory and are
// always set or cleared together. The long-lived renewal credential is an
// HttpOnly cookie managed by the cookie jar; this code never reads it, it
// only triggers POST /api/auth/refresh and consumes the resulting token.
type HTTPClient struct {
	baseURL string
	hc      *http.Client
	log     logging.Logger

	mu       sync.RWMutex
	token    string
	identity *models.Identity

	// refreshGroup collapses concurrent renewal attempts into one in-flight
	// request whose outcome every waiter shares.
	refreshGroup singleflight.Group
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient builds a client for the backend at baseURL
// (e.g. "http://127.0.0.1:5000"). The timeout applies per request.
func NewHTTPClient(baseURL string, timeout time.Duration, log logging.Logger) (*HTTPClient, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &HTTPClient{
		baseURL: baseURL,
		hc:      &http.Client{Jar: jar, Timeout: timeout},
		log:     log,
	}, nil
}

func (c *HTTPClient) Close() error {
	c.hc.CloseIdleConnections()
	return nil
}

// authResponse is the success body of the auth endpoints.
type authResponse struct {
	AccessToken string `json:"access_token"`
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	Role        string `json:"role"`
}

type apiError struct {
	Error string `json:"error"`
}

func (c *HTTPClient) setSession(ar *authResponse) {
	role := ar.Role
	if role == "" {
		role = "user"
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ar.AccessToken
	c.identity = &models.Identity{UserID: ar.UserID, Username: ar.Username, Role: role}
}

func (c *HTTPClient) clearSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.identity = nil
}

// InitializeSession tries to renew the bearer token from the refresh cookie.
// It never fails loudly; the outcome is observable via IsAuthenticated.
func (c *HTTPClient) InitializeSession(ctx context.Context) {
	if !c.refreshSession(ctx) {
		c.log.Debug(ctx, "session not restored from refresh cookie")
	}
}

// IsAuthenticated reports whether both the bearer token and the identity
// are present.
func (c *HTTPClient) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != "" && c.identity != nil
}

func (c *HTTPClient) Identity() *models.Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.identity == nil {
		return nil
	}
	id := *c.identity
	return &id
}

func (c *HTTPClient) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// TokenExpiry reports the bearer token's exp claim, when one is present.
// The claim is read without signature verification; the client has no key
// and only uses it for display and proactive renewal hints.
func (c *HTTPClient) TokenExpiry() (time.Time, bool) {
	token := c.AccessToken()
	if token == "" {
		return time.Time{}, false
	}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// refreshSession performs the renewal protocol. Concurrent callers share a
// single in-flight request. Any failure, network or rejection alike, clears
// the session and reports false.
func (c *HTTPClient) refreshSession(ctx context.Context) bool {
	v, _, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/refresh", nil)
		if err != nil {
			c.clearSession()
			return false, nil
		}
		resp, err := c.hc.Do(req)
		if err != nil {
			c.clearSession()
			return false, nil
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			c.clearSession()
			return false, nil
		}
		var ar authResponse
		if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
			c.clearSession()
			return false, nil
		}
		c.setSession(&ar)
		return true, nil
	})
	return v.(bool)
}

// AuthenticatedRequest performs a request with the bearer token attached.
//
// If no token is held it first runs a renewal; a failed renewal yields
// common.ErrUnauthorized without touching the target URL. A 401 response
// triggers exactly one renewal and, if that succeeds, exactly one replay of
// the original request. If the renewal fails the original 401 response is
// returned unmodified. The caller owns the response body.
func (c *HTTPClient) AuthenticatedRequest(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	if c.AccessToken() == "" {
		if !c.refreshSession(ctx) {
			return nil, common.ErrUnauthorized
		}
	}

	resp, err := c.send(ctx, method, path, body, c.AccessToken())
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && c.refreshSession(ctx) {
		resp.Body.Close()
		return c.send(ctx, method, path, body, c.AccessToken())
	}

	return resp, nil
}

func (c *HTTPClient) send(ctx context.Context, method, path string, body []byte, token string) (*http.Response, error) {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Request-ID", uuid.NewString())
	return c.hc.Do(req)
}

type credentialsRequest struct {
	Username       string `json:"username"`
	Password       string `json:"password"`
	ChallengeToken string `json:"recaptcha_token,omitempty"`
}

// Login exchanges credentials for a bearer token and identity. The backend
// additionally sets the refresh cookie on this response.
func (c *HTTPClient) Login(ctx context.Context, username, password, challengeToken string) error {
	return c.authenticate(ctx, "/api/auth/login", username, password, challengeToken,
		"invalid username or password")
}

// Register creates an account; the response shape matches Login.
func (c *HTTPClient) Register(ctx context.Context, username, password, challengeToken string) error {
	return c.authenticate(ctx, "/api/auth/register", username, password, challengeToken,
		"registration failed")
}

func (c *HTTPClient) authenticate(ctx context.Context, path, username, password, challengeToken, fallback string) error {
	payload, err := json.Marshal(credentialsRequest{
		Username:       username,
		Password:       password,
		ChallengeToken: challengeToken,
	})
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if msg := readAPIError(resp); msg != "" {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("%s", fallback)
	}

	var ar authResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return fmt.Errorf("failed to decode auth response: %w", err)
	}
	c.setSession(&ar)
	return nil
}

// Logout fires a best-effort invalidation request and unconditionally clears
// the in-memory session, whatever the network outcome.
func (c *HTTPClient) Logout(ctx context.Context) {
	token := c.AccessToken()
	if token != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/logout", nil)
		if err == nil {
			req.Header.Set("Authorization", "Bearer "+token)
			if resp, err := c.hc.Do(req); err == nil {
				resp.Body.Close()
			} else {
				c.log.Debug(ctx, "logout notification failed", "error", err)
			}
		}
	}
	c.clearSession()
}

// FetchProfile returns the backend profile, common.ErrNotFound when none
// exists yet.
func (c *HTTPClient) FetchProfile(ctx context.Context) (*models.Profile, error) {
	resp, err := c.AuthenticatedRequest(ctx, http.MethodGet, "/api/user", nil)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var p models.Profile
		if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
			return nil, fmt.Errorf("failed to decode profile: %w", err)
		}
		return &p, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, common.ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, common.ErrUnauthorized
	default:
		return nil, fmt.Errorf("fetch profile: unexpected status %d", resp.StatusCode)
	}
}

// PushProfile replaces the backend profile with p.
func (c *HTTPClient) PushProfile(ctx context.Context, p *models.Profile) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	resp, err := c.AuthenticatedRequest(ctx, http.MethodPost, "/api/user", payload)
	if err != nil {
		return fmt.Errorf("push profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return common.ErrUnauthorized
	}
	if msg := readAPIError(resp); msg != "" {
		return fmt.Errorf("push profile rejected: %s", msg)
	}
	return fmt.Errorf("push profile: unexpected status %d", resp.StatusCode)
}

type weightsResponse struct {
	Weights []models.WeightRecord `json:"weights"`
}

// FetchWeights returns the authoritative weight history,
// common.ErrNotFound when the backend has no profile yet.
func (c *HTTPClient) FetchWeights(ctx context.Context) ([]models.WeightRecord, error) {
	resp, err := c.AuthenticatedRequest(ctx, http.MethodGet, "/api/weights", nil)
	if err != nil {
		return nil, fmt.Errorf("fetch weights: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var wr weightsResponse
		if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
			return nil, fmt.Errorf("failed to decode weights: %w", err)
		}
		return wr.Weights, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, common.ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, common.ErrUnauthorized
	default:
		return nil, fmt.Errorf("fetch weights: unexpected status %d", resp.StatusCode)
	}
}

// PushWeight submits today's weight. A 400 response becomes a
// *common.ValidationError carrying the backend's message verbatim.
func (c *HTTPClient) PushWeight(ctx context.Context, weightKg float64) error {
	payload, err := json.Marshal(map[string]float64{"peso_kg": weightKg})
	if err != nil {
		return fmt.Errorf("failed to encode weight: %w", err)
	}
	resp, err := c.AuthenticatedRequest(ctx, http.MethodPost, "/api/weight", payload)
	if err != nil {
		return fmt.Errorf("push weight: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusBadRequest:
		return common.NewValidationError(readAPIError(resp), "weight rejected by the server")
	case resp.StatusCode == http.StatusUnauthorized:
		return common.ErrUnauthorized
	default:
		return fmt.Errorf("push weight: unexpected status %d", resp.StatusCode)
	}
}

// RecentWeights fetches the most recent records for display. The endpoint is
// cookie-authenticated, so no bearer header is attached.
func (c *HTTPClient) RecentWeights(ctx context.Context, limit int) ([]models.WeightRecord, error) {
	url := fmt.Sprintf("%s/api/weights/recent?limit=%d", c.baseURL, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch recent weights: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch recent weights: unexpected status %d", resp.StatusCode)
	}
	var wr weightsResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return nil, fmt.Errorf("failed to decode weights: %w", err)
	}
	return wr.Weights, nil
}

type configResponse struct {
	ValidationLimits models.LimitSet `json:"validation_limits"`
}

// FetchLimits loads the validation limits the backend enforces. No auth.
func (c *HTTPClient) FetchLimits(ctx context.Context) (*models.LimitSet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/config", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch limits: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch limits: unexpected status %d", resp.StatusCode)
	}
	var cr configResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("failed to decode limits: %w", err)
	}
	return &cr.ValidationLimits, nil
}

// readAPIError extracts the backend's {"error": "..."} message, "" when the
// body is not in that shape.
func readAPIError(resp *http.Response) string {
	var ae apiError
	if err := json.NewDecoder(resp.Body).Decode(&ae); err != nil {
		return ""
	}
	return ae.Error
}
