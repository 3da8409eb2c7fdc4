package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imctrack/imctrack/internal/client/models"
	"github.com/imctrack/imctrack/internal/common"
)

func TestLimitsService_DefaultBounds(t *testing.T) {
	svc := NewLimitsService(&fakeClient{}, testLogger())

	assert.False(t, svc.ValidWeight(1.9))
	assert.True(t, svc.ValidWeight(2))
	assert.True(t, svc.ValidWeight(650))
	assert.False(t, svc.ValidWeight(650.1))

	assert.False(t, svc.ValidHeight(0.39))
	assert.True(t, svc.ValidHeight(1.75))
	assert.False(t, svc.ValidHeight(2.73))
}

func TestLimitsService_Load(t *testing.T) {
	client := &fakeClient{limits: &models.LimitSet{
		HeightMin: 1.0, HeightMax: 2.0,
		WeightMin: 30, WeightMax: 200,
		BirthDateMin: "1920-01-01", WeightVariationPerDay: 3,
		NameMinLength: 2, NameMaxLength: 50,
	}}
	svc := NewLimitsService(client, testLogger())

	assert.True(t, svc.Load(context.Background()))
	assert.False(t, svc.ValidWeight(20))
	assert.Equal(t, 6.0, svc.MaxWeightVariation(2))
}

func TestLimitsService_LoadFailureKeepsCurrent(t *testing.T) {
	client := &fakeClient{limitsErr: errors.New("connection refused")}
	svc := NewLimitsService(client, testLogger())

	assert.False(t, svc.Load(context.Background()))
	assert.Equal(t, DefaultLimits(), svc.Current())
}

func TestLimitsService_ValidBirthDate(t *testing.T) {
	svc := NewLimitsService(&fakeClient{}, testLogger())
	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, svc.ValidBirthDate(time.Date(1990, time.July, 15, 0, 0, 0, 0, time.UTC), now))
	assert.False(t, svc.ValidBirthDate(time.Date(1899, time.December, 31, 0, 0, 0, 0, time.UTC), now))
	assert.False(t, svc.ValidBirthDate(now.AddDate(0, 0, 1), now))
}

func TestLimitsService_SanitizeName(t *testing.T) {
	svc := NewLimitsService(&fakeClient{}, testLogger())

	tests := []struct {
		name  string
		in    string
		want  string
		valid bool
	}{
		{"trims and collapses spaces", "  Ana   María ", "Ana María", true},
		{"hyphenated", "Jean-Luc", "Jean-Luc", true},
		{"strips markup characters", `An"a`, "Ana", true},
		{"apostrophe stripped", "O'Brien", "OBrien", true},
		{"digits rejected", "Ana123", "", false},
		{"empty rejected", "   ", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.SanitizeName(tt.in)
			if tt.valid {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			} else {
				assert.ErrorIs(t, err, common.ErrInvalidName)
			}
		})
	}
}
