package services

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/imctrack/imctrack/internal/client/api"
	"github.com/imctrack/imctrack/internal/client/env"
	"github.com/imctrack/imctrack/internal/client/models"
	"github.com/imctrack/imctrack/internal/client/storage"
	"github.com/imctrack/imctrack/internal/common"
	"github.com/imctrack/imctrack/internal/logging"
)

// SyncService reconciles the local cache with the authoritative backend.
//
// The backend wins every calendar date it reports; local records on dates
// the backend does not know survive the merge. Pull and push operations on
// one service are serialized, so a rejected push can never interleave with
// a half-applied pull.
//
// Connectivity failures degrade to a false result and an unsynced status;
// only backend validation rejections are surfaced as errors, because the
// caller must block the local write on them.
type SyncService struct {
	client api.Client
	store  *storage.Store
	env    *env.Env
	log    logging.Logger
	pacing time.Duration

	mu     sync.Mutex
	synced atomic.Bool
}

// DefaultPacing is the inter-request delay of PushAllWeights.
const DefaultPacing = 100 * time.Millisecond

// NewSyncService builds a SyncService. pacing <= 0 selects DefaultPacing.
func NewSyncService(client api.Client, store *storage.Store, e *env.Env, log logging.Logger, pacing time.Duration) *SyncService {
	if pacing <= 0 {
		pacing = DefaultPacing
	}
	return &SyncService{client: client, store: store, env: e, log: log, pacing: pacing}
}

// Synced reports whether the last reconciliation attempt succeeded. It only
// drives the UI indicator.
func (s *SyncService) Synced() bool {
	return s.synced.Load()
}

func (s *SyncService) setSynced(ok bool) {
	s.synced.Store(ok)
}

// skip reports whether sync is switched off, by the simulate-offline switch
// or the manual flag, and marks the status unsynced when it is.
func (s *SyncService) skip(ctx context.Context) bool {
	if s.env.ForceOffline() {
		s.log.Warn(ctx, "offline mode active, simulating server communication failure")
		s.setSynced(false)
		return true
	}
	if s.store.SyncDisabled(ctx) {
		s.log.Info(ctx, "sync skipped: disabled manually")
		s.setSynced(false)
		return true
	}
	return false
}

// PullFromBackend fetches the authoritative profile and weight history and
// merges them into the cache. Returns true only when neither phase failed.
//
// A backend 404 (no profile yet) is not a failure for either phase. A
// failing profile phase does not abort the weights phase. The pull is
// skipped entirely when sync is off or the one-shot post-erase flag is
// armed; the flag is consumed so the next pull proceeds.
func (s *SyncService) PullFromBackend(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.skip(ctx) {
		return false
	}
	if s.store.ConsumeSkipNextSync(ctx) {
		s.log.Info(ctx, "sync skipped: local data was just erased")
		s.setSynced(false)
		return false
	}

	ok := true

	profile, err := s.client.FetchProfile(ctx)
	switch {
	case err == nil:
		if err := s.store.SaveProfile(ctx, profile); err != nil {
			s.log.Error(ctx, "failed to cache pulled profile", "error", err)
			ok = false
		}
	case errors.Is(err, common.ErrNotFound):
		// no profile on the backend yet
	default:
		s.log.Warn(ctx, "profile pull failed", "error", err)
		ok = false
	}

	backend, err := s.client.FetchWeights(ctx)
	switch {
	case err == nil:
		merged := MergeWeights(backend, s.store.GetWeights(ctx))
		if len(merged) > 0 {
			if err := s.store.SaveWeights(ctx, merged); err != nil {
				s.log.Error(ctx, "failed to cache merged weights", "error", err)
				ok = false
			}
		}
	case errors.Is(err, common.ErrNotFound):
		// local history stands until the backend learns about the user
	default:
		s.log.Warn(ctx, "weights pull failed", "error", err)
		ok = false
	}

	s.setSynced(ok)
	return ok
}

// MergeWeights merges the authoritative backend set with the local cache.
// The calendar date is the merge key: every backend record is kept, and a
// local record survives only when no backend record shares its date. The
// result is sorted by date descending.
//
// An empty backend set therefore never erases local-only history.
func MergeWeights(backend, local []models.WeightRecord) []models.WeightRecord {
	merged := slices.Clone(backend)

	taken := make(map[string]struct{}, len(backend))
	for _, rec := range backend {
		taken[rec.DayKey()] = struct{}{}
	}
	for _, rec := range local {
		if _, ok := taken[rec.DayKey()]; !ok {
			merged = append(merged, rec)
		}
	}

	slices.SortStableFunc(merged, func(a, b models.WeightRecord) int {
		return b.RecordedAt.Compare(a.RecordedAt.Time)
	})
	return merged
}

// PushProfile sends the profile to the backend. When sync is manually
// disabled it reports true without a network call, so a local-first write
// is never blocked by sync being off; the simulate-offline switch reports
// false like a real connectivity failure.
func (s *SyncService) PushProfile(ctx context.Context, p *models.Profile) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.env.ForceOffline() {
		s.log.Warn(ctx, "offline mode active, simulating server communication failure")
		s.setSynced(false)
		return false
	}
	if s.store.SyncDisabled(ctx) {
		s.log.Info(ctx, "profile push skipped: sync disabled manually")
		s.setSynced(false)
		return true
	}

	if err := s.client.PushProfile(ctx, p); err != nil {
		s.log.Warn(ctx, "profile push failed", "error", err)
		s.setSynced(false)
		return false
	}
	s.setSynced(true)
	return true
}

// PushWeight submits a weight value. A backend validation rejection is
// returned as a *common.ValidationError so the caller can block the local
// write; every other failure degrades to (false, nil).
func (s *SyncService) PushWeight(ctx context.Context, weightKg float64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pushWeightLocked(ctx, weightKg)
}

func (s *SyncService) pushWeightLocked(ctx context.Context, weightKg float64) (bool, error) {
	if s.env.ForceOffline() {
		s.log.Warn(ctx, "offline mode active, simulating server communication failure")
		s.setSynced(false)
		return false, nil
	}
	if s.store.SyncDisabled(ctx) {
		s.log.Info(ctx, "weight push skipped: sync disabled manually")
		s.setSynced(false)
		return true, nil
	}

	err := s.client.PushWeight(ctx, weightKg)
	if err == nil {
		s.setSynced(true)
		return true, nil
	}

	s.setSynced(false)
	var ve *common.ValidationError
	if errors.As(err, &ve) {
		return false, err
	}
	s.log.Warn(ctx, "weight push failed", "error", err)
	return false, nil
}

// PushAllWeights pushes every cached record, pacing requests, and returns
// the number of confirmed successes. Validation rejections of individual
// records are logged and skipped, never aborting the batch.
func (s *SyncService) PushAllWeights(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.skip(ctx) {
		return 0
	}

	records := s.store.GetWeights(ctx)
	synced := 0
	for i, rec := range records {
		ok, err := s.pushWeightLocked(ctx, rec.WeightKg)
		if err != nil {
			s.log.Warn(ctx, "weight rejected during batch push", "id", rec.ID, "error", err)
		} else if ok {
			synced++
		}

		if i < len(records)-1 {
			select {
			case <-time.After(s.pacing):
			case <-ctx.Done():
				return synced
			}
		}
	}
	return synced
}
