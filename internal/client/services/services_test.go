package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/imctrack/imctrack/internal/client/env"
	"github.com/imctrack/imctrack/internal/client/models"
	"github.com/imctrack/imctrack/internal/client/repositories/localdata"
	"github.com/imctrack/imctrack/internal/client/storage"
	"github.com/imctrack/imctrack/internal/logging"

	_ "modernc.org/sqlite"
)

// fakeClient is a hand-rolled test double for api.Client. Fields configure
// the responses; counters and last-argument captures verify interactions.
type fakeClient struct {
	identity    *models.Identity
	tokenExpiry time.Time
	tokenValid  bool

	loginErr      error
	registerErr   error
	loginCalls    int
	registerCalls int
	logoutCalls   int
	lastUsername  string
	lastPassword  string
	lastChallenge string

	profile        *models.Profile
	profileErr     error
	fetchProfiles  int
	weights        []models.WeightRecord
	weightsErr     error
	fetchWeights   int
	pushProfileErr error
	pushProfiles   int
	pushWeightFn   func(weightKg float64) error
	pushedWeights  []float64
	limits         *models.LimitSet
	limitsErr      error
}

func (f *fakeClient) Close() error                      { return nil }
func (f *fakeClient) InitializeSession(context.Context) {}
func (f *fakeClient) IsAuthenticated() bool             { return f.identity != nil }
func (f *fakeClient) Identity() *models.Identity        { return f.identity }
func (f *fakeClient) AccessToken() string               { return "" }
func (f *fakeClient) TokenExpiry() (time.Time, bool)    { return f.tokenExpiry, f.tokenValid }

func (f *fakeClient) Login(_ context.Context, username, password, challengeToken string) error {
	f.loginCalls++
	f.lastUsername, f.lastPassword, f.lastChallenge = username, password, challengeToken
	return f.loginErr
}

func (f *fakeClient) Register(_ context.Context, username, password, challengeToken string) error {
	f.registerCalls++
	f.lastUsername, f.lastPassword, f.lastChallenge = username, password, challengeToken
	return f.registerErr
}

func (f *fakeClient) Logout(context.Context) {
	f.logoutCalls++
	f.identity = nil
}

func (f *fakeClient) FetchProfile(context.Context) (*models.Profile, error) {
	f.fetchProfiles++
	return f.profile, f.profileErr
}

func (f *fakeClient) PushProfile(context.Context, *models.Profile) error {
	f.pushProfiles++
	return f.pushProfileErr
}

func (f *fakeClient) FetchWeights(context.Context) ([]models.WeightRecord, error) {
	f.fetchWeights++
	return f.weights, f.weightsErr
}

func (f *fakeClient) PushWeight(_ context.Context, weightKg float64) error {
	f.pushedWeights = append(f.pushedWeights, weightKg)
	if f.pushWeightFn != nil {
		return f.pushWeightFn(weightKg)
	}
	return nil
}

func (f *fakeClient) RecentWeights(context.Context, int) ([]models.WeightRecord, error) {
	return f.weights, f.weightsErr
}

func (f *fakeClient) FetchLimits(context.Context) (*models.LimitSet, error) {
	return f.limits, f.limitsErr
}

func testLogger() logging.Logger {
	return logging.NewTextLogger(io.Discard, slog.LevelError)
}

var testStoreSeq atomic.Int64

func newTestStore(t *testing.T, e *env.Env) *storage.Store {
	t.Helper()
	name := fmt.Sprintf("%s-%d", t.Name(), testStoreSeq.Add(1))
	db, err := sql.Open("sqlite", "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE localdata (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);
`)
	require.NoError(t, err)

	return storage.New(localdata.NewSQLiteRepository(db), e, testLogger())
}

func weightOn(t *testing.T, day string, kg float64) models.WeightRecord {
	t.Helper()
	ts, err := time.Parse(time.DateOnly, day)
	require.NoError(t, err)
	return models.WeightRecord{
		ID:         ts.UnixMilli(),
		WeightKg:   kg,
		RecordedAt: models.Timestamp{Time: ts},
	}
}
