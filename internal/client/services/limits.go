package services

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/imctrack/imctrack/internal/client/api"
	"github.com/imctrack/imctrack/internal/client/models"
	"github.com/imctrack/imctrack/internal/common"
	"github.com/imctrack/imctrack/internal/logging"
)

// DefaultLimits are the fallback bounds used until the backend's limit set
// has been fetched, and whenever it cannot be.
func DefaultLimits() models.LimitSet {
	return models.LimitSet{
		HeightMin:             0.4,
		HeightMax:             2.72,
		WeightMin:             2,
		WeightMax:             650,
		BirthDateMin:          "1900-01-01",
		WeightVariationPerDay: 5,
		NameMinLength:         1,
		NameMaxLength:         100,
	}
}

// LimitsService holds the validation limit set shared with the backend.
// Validation against it is advisory: the backend re-validates and stays
// authoritative.
type LimitsService struct {
	client api.Client
	log    logging.Logger

	mu      sync.RWMutex
	current models.LimitSet
}

// NewLimitsService builds a LimitsService preloaded with DefaultLimits.
func NewLimitsService(client api.Client, log logging.Logger) *LimitsService {
	return &LimitsService{client: client, log: log, current: DefaultLimits()}
}

// Load fetches the limit set from the backend. On failure the current set
// is kept and false returned.
func (s *LimitsService) Load(ctx context.Context) bool {
	limits, err := s.client.FetchLimits(ctx)
	if err != nil {
		s.log.Warn(ctx, "could not load validation limits, using defaults", "error", err)
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = *limits
	return true
}

// Current returns a copy of the active limit set.
func (s *LimitsService) Current() models.LimitSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// ValidHeight reports whether a height in meters is inside the bounds.
func (s *LimitsService) ValidHeight(heightM float64) bool {
	l := s.Current()
	return heightM >= l.HeightMin && heightM <= l.HeightMax
}

// ValidWeight reports whether a weight in kilograms is inside the bounds.
func (s *LimitsService) ValidWeight(weightKg float64) bool {
	l := s.Current()
	return weightKg >= l.WeightMin && weightKg <= l.WeightMax
}

// ValidBirthDate reports whether d lies between the minimum birth date and
// now.
func (s *LimitsService) ValidBirthDate(d, now time.Time) bool {
	l := s.Current()
	min, err := time.Parse(time.DateOnly, l.BirthDateMin)
	if err != nil {
		return false
	}
	return !d.Before(min) && !d.After(now)
}

// MaxWeightVariation returns the maximum allowed weight change over the
// given number of elapsed days.
func (s *LimitsService) MaxWeightVariation(days int) float64 {
	return float64(days) * s.Current().WeightVariationPerDay
}

// SanitizeName trims, strips markup-dangerous characters, collapses runs of
// whitespace and validates length and the allowed alphabet (letters,
// spaces, hyphens). Returns the cleaned name or common.ErrInvalidName.
func (s *LimitsService) SanitizeName(name string) (string, error) {
	l := s.Current()

	cleaned := strings.TrimSpace(name)
	if cleaned == "" {
		return "", common.ErrInvalidName
	}
	if len([]rune(cleaned)) > l.NameMaxLength || len([]rune(cleaned)) < l.NameMinLength {
		return "", common.ErrInvalidName
	}

	cleaned = strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', '"', '\'':
			return -1
		}
		return r
	}, cleaned)
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if cleaned == "" {
		return "", common.ErrInvalidName
	}

	for _, r := range cleaned {
		if !unicode.IsLetter(r) && r != ' ' && r != '-' {
			return "", common.ErrInvalidName
		}
	}
	return cleaned, nil
}
