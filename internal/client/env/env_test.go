package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnv_MockDate(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	e := NewWithClock(FixedClock{T: base})

	assert.Equal(t, base, e.Now())
	assert.False(t, e.MockDateActive())

	mock := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	e.SetMockDate(mock)
	assert.True(t, e.MockDateActive())
	assert.Equal(t, mock, e.Now())

	e.ClearMockDate()
	assert.Equal(t, base, e.Now())
}

func TestEnv_ForceOffline(t *testing.T) {
	e := New()
	assert.False(t, e.ForceOffline())
	e.SetForceOffline(true)
	assert.True(t, e.ForceOffline())
	e.SetForceOffline(false)
	assert.False(t, e.ForceOffline())
}
