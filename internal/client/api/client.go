// Package api contains the backend API client. The concrete HTTP
// implementation owns the in-memory session (bearer token + identity) and
// the renewal protocol; callers go through AuthenticatedRequest and never
// see the long-lived renewal cookie.
package api

import (
	"context"
	"time"

	"github.com/imctrack/imctrack/internal/client/models"
)

// Client defines the operations the app services need from the backend.
//
// Session contract:
//   - InitializeSession attempts a renewal using the cookie held by the
//     transport; failures are absorbed and observable via IsAuthenticated.
//   - Login/Register populate the session from the auth response.
//   - Logout notifies the backend best-effort and always clears the session.
//
// Data operations return common.ErrNotFound for a 404 (no profile yet),
// common.ErrUnauthorized when the session cannot be established, and a
// *common.ValidationError for a weight submission the backend rejected.
type Client interface {
	Close() error

	InitializeSession(ctx context.Context)
	IsAuthenticated() bool
	Identity() *models.Identity
	AccessToken() string
	TokenExpiry() (time.Time, bool)
	Login(ctx context.Context, username, password, challengeToken string) error
	Register(ctx context.Context, username, password, challengeToken string) error
	Logout(ctx context.Context)

	FetchProfile(ctx context.Context) (*models.Profile, error)
	PushProfile(ctx context.Context, p *models.Profile) error
	FetchWeights(ctx context.Context) ([]models.WeightRecord, error)
	PushWeight(ctx context.Context, weightKg float64) error
	RecentWeights(ctx context.Context, limit int) ([]models.WeightRecord, error)
	FetchLimits(ctx context.Context) (*models.LimitSet, error)
}
