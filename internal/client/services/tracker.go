package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/imctrack/imctrack/internal/client/bmi"
	"github.com/imctrack/imctrack/internal/client/env"
	"github.com/imctrack/imctrack/internal/client/models"
	"github.com/imctrack/imctrack/internal/client/storage"
	"github.com/imctrack/imctrack/internal/common"
	"github.com/imctrack/imctrack/internal/logging"
)

// TrackerService implements the tracking workflows: profile submission and
// weight submission, local-first with best-effort pushes to the backend.
type TrackerService struct {
	store    *storage.Store
	sync     *SyncService
	limits   *LimitsService
	env      *env.Env
	validate *validator.Validate
	log      logging.Logger
}

func NewTrackerService(store *storage.Store, sync *SyncService, limits *LimitsService, environment *env.Env, log logging.Logger) *TrackerService {
	return &TrackerService{
		store:    store,
		sync:     sync,
		limits:   limits,
		env:      environment,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log,
	}
}

// SubmitProfile validates and saves the profile locally, then pushes it to
// the backend best-effort. A failed push does not fail the submission; the
// profile syncs on a later pass.
func (s *TrackerService) SubmitProfile(ctx context.Context, p models.Profile) (*models.Profile, error) {
	firstName, err := s.limits.SanitizeName(p.FirstName)
	if err != nil {
		return nil, err
	}
	lastName, err := s.limits.SanitizeName(p.LastName)
	if err != nil {
		return nil, err
	}
	p.FirstName = firstName
	p.LastName = lastName

	if err := s.validate.Struct(p); err != nil {
		return nil, mapProfileErrors(err)
	}

	if math.IsNaN(p.HeightM) || math.IsInf(p.HeightM, 0) || !s.limits.ValidHeight(p.HeightM) {
		l := s.limits.Current()
		return nil, fmt.Errorf("%w: height must be between %.2f and %.2f m", common.ErrInvalidHeight, l.HeightMin, l.HeightMax)
	}
	if p.BirthDate.IsZero() || !s.limits.ValidBirthDate(p.BirthDate.Time, s.env.Now()) {
		return nil, common.ErrInvalidBirthDate
	}

	if err := s.store.SaveProfile(ctx, &p); err != nil {
		return nil, err
	}
	if !s.sync.PushProfile(ctx, &p) {
		s.log.Info(ctx, "profile saved locally, backend push pending")
	}
	return &p, nil
}

// SubmitWeight validates a weight against the limit set and the
// day-over-day variation rule, pushes it to the backend and, when the
// backend did not reject it as invalid, records it locally. Backend
// unavailability never blocks the local write; an explicit backend
// rejection does.
func (s *TrackerService) SubmitWeight(ctx context.Context, weightKg float64) (*models.WeightRecord, error) {
	if s.store.GetProfile(ctx) == nil {
		return nil, common.ErrProfileRequired
	}
	if math.IsNaN(weightKg) || math.IsInf(weightKg, 0) {
		return nil, common.ErrInvalidWeight
	}
	if !s.limits.ValidWeight(weightKg) {
		l := s.limits.Current()
		return nil, fmt.Errorf("%w: weight must be between %.1f and %.1f kg", common.ErrInvalidWeight, l.WeightMin, l.WeightMax)
	}

	now := s.env.Now()
	if prev := s.store.LastWeightFromDifferentDate(ctx, now); prev != nil {
		days := daysBetween(prev.RecordedAt.Time, now)
		allowed := s.limits.MaxWeightVariation(days)
		if math.Abs(weightKg-prev.WeightKg) > allowed {
			return nil, &common.ValidationError{
				Message: fmt.Sprintf("weight change of %.1f kg over %d day(s) exceeds the allowed %.1f kg", math.Abs(weightKg-prev.WeightKg), days, allowed),
			}
		}
	}

	if _, err := s.sync.PushWeight(ctx, weightKg); err != nil {
		return nil, err
	}

	return s.store.AddWeight(ctx, models.WeightRecord{WeightKg: weightKg})
}

// BMI computes the body mass index from the stored profile and the latest
// weight record. It returns false when either is missing.
func (s *TrackerService) BMI(ctx context.Context) (float64, string, bool) {
	profile := s.store.GetProfile(ctx)
	last := s.store.LastWeight(ctx)
	if profile == nil || last == nil || profile.HeightM <= 0 {
		return 0, "", false
	}
	value := bmi.Compute(last.WeightKg, profile.HeightM)
	return value, bmi.Category(value), true
}

// EraseAll wipes the local cache for the current scope and arms the
// skip-next-sync flag so the next pull does not immediately repopulate it.
// Any simulated date override is cleared as well.
func (s *TrackerService) EraseAll(ctx context.Context) error {
	if err := s.store.ClearAll(ctx); err != nil {
		return err
	}
	if err := s.store.SetSkipNextSync(ctx); err != nil {
		return err
	}
	s.env.ClearMockDate()
	return nil
}

// mapProfileErrors translates validator failures on the profile struct
// into the sentinel errors callers match on.
func mapProfileErrors(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return common.ErrInvalidName
	}
	for _, fe := range verrs {
		switch fe.StructField() {
		case "FirstName", "LastName":
			return common.ErrInvalidName
		case "HeightM":
			return common.ErrInvalidHeight
		}
	}
	return common.ErrInvalidName
}

// daysBetween returns the number of elapsed calendar days between two
// instants, UTC date-truncated, never less than one.
func daysBetween(from, to time.Time) int {
	f := from.UTC().Truncate(24 * time.Hour)
	t := to.UTC().Truncate(24 * time.Hour)
	days := int(t.Sub(f).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}
