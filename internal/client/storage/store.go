// Package storage implements the local cache store: profile and weight
// history persisted as JSON documents under identity-scoped keys, plus the
// sync control flags. It owns the durable data; the sync engine only reads
// and writes through it.
//
// Malformed stored JSON is treated as absence, never surfaced to callers.
package storage

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/imctrack/imctrack/internal/client/env"
	"github.com/imctrack/imctrack/internal/client/models"
	"github.com/imctrack/imctrack/internal/client/repositories/localdata"
	"github.com/imctrack/imctrack/internal/common"
	"github.com/imctrack/imctrack/internal/logging"
)

const (
	keyProfile = "user"
	keyWeights = "weights"

	// control flags are deliberately unscoped: they describe the device,
	// not one identity's data
	keySyncDisabled = "sync_disabled"
	keySkipNextSync = "skip_next_sync"
)

// Store is the local cache store. Keys are suffixed with the identity id
// when one is set, so data of different identities never collides; the
// unsuffixed key serves pre-authentication use.
type Store struct {
	repo localdata.Repository
	env  *env.Env
	log  logging.Logger

	mu    sync.RWMutex
	scope string
}

// New builds a Store over the given repository.
func New(repo localdata.Repository, e *env.Env, log logging.Logger) *Store {
	return &Store{repo: repo, env: e, log: log}
}

// SetScope binds subsequent reads and writes to the given identity.
func (s *Store) SetScope(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scope = strconv.FormatInt(userID, 10)
}

// ClearScope reverts to the unscoped pre-authentication keys.
func (s *Store) ClearScope() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scope = ""
}

func (s *Store) scopedKey(base string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.scope == "" {
		return base
	}
	return base + "_" + s.scope
}

// GetProfile returns the cached profile, nil when absent or unreadable.
func (s *Store) GetProfile(ctx context.Context) *models.Profile {
	raw, err := s.repo.Get(ctx, s.scopedKey(keyProfile))
	if err != nil {
		return nil
	}
	var p models.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		s.log.Warn(ctx, "discarding malformed cached profile", "error", err)
		return nil
	}
	return &p
}

// SaveProfile replaces the cached profile whole.
func (s *Store) SaveProfile(ctx context.Context, p *models.Profile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.repo.Set(ctx, s.scopedKey(keyProfile), raw)
}

// GetWeights returns the cached weight collection, empty when absent or
// unreadable.
func (s *Store) GetWeights(ctx context.Context) []models.WeightRecord {
	raw, err := s.repo.Get(ctx, s.scopedKey(keyWeights))
	if err != nil {
		return nil
	}
	var list []models.WeightRecord
	if err := json.Unmarshal(raw, &list); err != nil {
		s.log.Warn(ctx, "discarding malformed cached weights", "error", err)
		return nil
	}
	return list
}

// SaveWeights replaces the cached weight collection whole.
func (s *Store) SaveWeights(ctx context.Context, list []models.WeightRecord) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return s.repo.Set(ctx, s.scopedKey(keyWeights), raw)
}

// AddWeight inserts a weight record, replacing any record already stored for
// the same calendar day. The effective date is the record's own date when
// set, otherwise the environment's current time (which honors the simulated
// date override). The record gets a fresh timestamp-based identifier.
//
// A non-finite weight value is rejected with common.ErrInvalidWeight.
func (s *Store) AddWeight(ctx context.Context, w models.WeightRecord) (*models.WeightRecord, error) {
	if math.IsNaN(w.WeightKg) || math.IsInf(w.WeightKg, 0) {
		return nil, common.ErrInvalidWeight
	}

	effective := w.RecordedAt.Time
	if effective.IsZero() {
		effective = s.env.Now()
	}
	day := effective.UTC().Format(time.DateOnly)

	existing := s.GetWeights(ctx)
	kept := make([]models.WeightRecord, 0, len(existing)+1)
	for _, rec := range existing {
		if rec.DayKey() != day {
			kept = append(kept, rec)
		}
	}

	rec := models.WeightRecord{
		ID:         s.env.Now().UnixMilli(),
		WeightKg:   w.WeightKg,
		RecordedAt: models.Timestamp{Time: effective},
	}
	kept = append(kept, rec)

	if err := s.SaveWeights(ctx, kept); err != nil {
		return nil, err
	}
	return &rec, nil
}

// LastWeight returns the most recent record by date, nil when the
// collection is empty.
func (s *Store) LastWeight(ctx context.Context) *models.WeightRecord {
	list := s.GetWeights(ctx)
	if len(list) == 0 {
		return nil
	}
	sortByDateDesc(list)
	return &list[0]
}

// LastWeightFromDifferentDate returns the most recent record whose calendar
// day differs from reference's, nil when no such record exists. It feeds the
// day-over-day variation rule.
func (s *Store) LastWeightFromDifferentDate(ctx context.Context, reference time.Time) *models.WeightRecord {
	refDay := reference.UTC().Format(time.DateOnly)

	var candidates []models.WeightRecord
	for _, rec := range s.GetWeights(ctx) {
		if rec.DayKey() != refDay {
			candidates = append(candidates, rec)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sortByDateDesc(candidates)
	return &candidates[0]
}

// Stats returns count, maximum and minimum over the stored weight values,
// all zero when the collection is empty.
func (s *Store) Stats(ctx context.Context) models.Stats {
	list := s.GetWeights(ctx)
	if len(list) == 0 {
		return models.Stats{}
	}
	st := models.Stats{Count: len(list), Max: list[0].WeightKg, Min: list[0].WeightKg}
	for _, rec := range list[1:] {
		st.Max = math.Max(st.Max, rec.WeightKg)
		st.Min = math.Min(st.Min, rec.WeightKg)
	}
	return st
}

// ClearAll erases the profile and the weight collection for the current
// scope in one transaction. Control flags are left untouched.
func (s *Store) ClearAll(ctx context.Context) error {
	return s.repo.DeleteMany(ctx, s.scopedKey(keyProfile), s.scopedKey(keyWeights))
}

// SyncDisabled reports the manual sync-disable flag.
func (s *Store) SyncDisabled(ctx context.Context) bool {
	raw, err := s.repo.Get(ctx, keySyncDisabled)
	return err == nil && string(raw) == "true"
}

// SetSyncDisabled flips the manual sync-disable flag.
func (s *Store) SetSyncDisabled(ctx context.Context, disabled bool) error {
	if disabled {
		return s.repo.Set(ctx, keySyncDisabled, []byte("true"))
	}
	return s.repo.Delete(ctx, keySyncDisabled)
}

// SetSkipNextSync arms the one-shot flag that makes the next pull a no-op,
// used right after a local erase.
func (s *Store) SetSkipNextSync(ctx context.Context) error {
	return s.repo.Set(ctx, keySkipNextSync, []byte("true"))
}

// ConsumeSkipNextSync reports whether the one-shot flag was armed and
// disarms it.
func (s *Store) ConsumeSkipNextSync(ctx context.Context) bool {
	raw, err := s.repo.Get(ctx, keySkipNextSync)
	if err != nil || string(raw) != "true" {
		return false
	}
	if err := s.repo.Delete(ctx, keySkipNextSync); err != nil {
		s.log.Warn(ctx, "failed to clear skip-next-sync flag", "error", err)
	}
	return true
}

func sortByDateDesc(list []models.WeightRecord) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].RecordedAt.After(list[j].RecordedAt.Time)
	})
}
