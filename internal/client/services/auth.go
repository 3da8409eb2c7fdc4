// Package services contains the application services of the tracker client:
// authentication, backend reconciliation, validation limits and the
// profile/weight submission flows the UI drives.
package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/imctrack/imctrack/internal/client/api"
	"github.com/imctrack/imctrack/internal/client/models"
	"github.com/imctrack/imctrack/internal/client/storage"
	"github.com/imctrack/imctrack/internal/common"
	"github.com/imctrack/imctrack/internal/logging"
)

var usernameRx = regexp.MustCompile(`^[a-z0-9._-]{3,30}$`)

// ChallengeProvider supplies a bot-mitigation proof token for an auth
// action. Providers are best-effort: a missing provider or a failed
// challenge silently omits the proof.
type ChallengeProvider interface {
	Token(ctx context.Context, action string) (string, error)
}

// AuthService validates credentials locally, talks to the auth endpoints
// through the API client and keeps the cache store's identity scope in step
// with the session.
type AuthService struct {
	client    api.Client
	store     *storage.Store
	challenge ChallengeProvider
	validate  *validator.Validate
	log       logging.Logger
}

// NewAuthService builds an AuthService. challenge may be nil.
func NewAuthService(client api.Client, store *storage.Store, challenge ChallengeProvider, log logging.Logger) *AuthService {
	v := validator.New(validator.WithRequiredStructEnabled())
	// normalization happens before validation, so the rule only sees
	// lowercase input
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRx.MatchString(fl.Field().String())
	})
	return &AuthService{client: client, store: store, challenge: challenge, validate: v, log: log}
}

type loginInput struct {
	Username string `validate:"required,username"`
	Password string `validate:"required"`
}

type registerInput struct {
	Username string `validate:"required,username"`
	Password string `validate:"required,min=10"`
	Confirm  string `validate:"required,eqfield=Password"`
}

// NormalizeUsername trims and lowercases the input. The result is not
// guaranteed valid; validation happens separately.
func NormalizeUsername(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// InitializeSession restores the session from the renewal cookie if
// possible and binds the storage scope to the restored identity. Failures
// are absorbed; check IsAuthenticated.
func (s *AuthService) InitializeSession(ctx context.Context) {
	s.client.InitializeSession(ctx)
	s.bindScope()
}

// IsAuthenticated reports whether a full session (token + identity) is held.
func (s *AuthService) IsAuthenticated() bool {
	return s.client.IsAuthenticated()
}

// Identity returns the authenticated identity, nil when unauthenticated.
func (s *AuthService) Identity() *models.Identity {
	return s.client.Identity()
}

// TokenExpiry reports when the current bearer token expires, false when no
// token is held or its expiry cannot be read. The UI uses it for the
// status line.
func (s *AuthService) TokenExpiry() (time.Time, bool) {
	return s.client.TokenExpiry()
}

// Login authenticates against the backend. Input problems are rejected
// before any network call with the common.Err* sentinels.
func (s *AuthService) Login(ctx context.Context, usernameInput, password string) error {
	username := NormalizeUsername(usernameInput)
	if err := s.validate.Struct(loginInput{Username: username, Password: password}); err != nil {
		return mapCredentialErrors(err)
	}

	proof := s.challengeToken(ctx, "login")
	if err := s.client.Login(ctx, username, password, proof); err != nil {
		return err
	}
	s.bindScope()
	return nil
}

// Register creates an account. Beyond login's checks it requires a password
// of at least 10 characters matching its confirmation.
func (s *AuthService) Register(ctx context.Context, usernameInput, password, confirmPassword string) error {
	username := NormalizeUsername(usernameInput)
	in := registerInput{Username: username, Password: password, Confirm: confirmPassword}
	if err := s.validate.Struct(in); err != nil {
		return mapCredentialErrors(err)
	}

	proof := s.challengeToken(ctx, "register")
	if err := s.client.Register(ctx, username, password, proof); err != nil {
		return err
	}
	s.bindScope()
	return nil
}

// Logout notifies the backend best-effort and unconditionally drops the
// session and the storage scope.
func (s *AuthService) Logout(ctx context.Context) {
	s.client.Logout(ctx)
	s.store.ClearScope()
}

func (s *AuthService) bindScope() {
	if id := s.client.Identity(); id != nil {
		s.store.SetScope(id.UserID)
	}
}

func (s *AuthService) challengeToken(ctx context.Context, action string) string {
	if s.challenge == nil {
		return ""
	}
	token, err := s.challenge.Token(ctx, action)
	if err != nil {
		s.log.Debug(ctx, "challenge provider failed, omitting proof", "action", action, "error", err)
		return ""
	}
	return token
}

// mapCredentialErrors translates validator failures into the sentinel
// errors callers match on.
func mapCredentialErrors(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return common.ErrInvalidUsername
	}
	for _, fe := range verrs {
		switch fe.StructField() {
		case "Username":
			return common.ErrInvalidUsername
		case "Password":
			if fe.Tag() == "min" {
				return common.ErrPasswordTooShort
			}
			return common.ErrPasswordRequired
		case "Confirm":
			return common.ErrPasswordMismatch
		}
	}
	return common.ErrInvalidUsername
}
