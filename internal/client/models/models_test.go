package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_RoundTrip(t *testing.T) {
	d := NewDate(1987, time.March, 9)

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"1987-03-09"`, string(b))

	var back Date
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.Equal(d.Time))
}

func TestDate_Empty(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`""`), &d))
	assert.True(t, d.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`"03/09/1987"`), &d))
}

func TestTimestamp_AcceptsNaiveISO(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{`"2024-05-01T10:30:00Z"`, time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)},
		{`"2024-05-01T10:30:00"`, time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)},
		{`"2024-05-01T10:30:00.123456"`, time.Date(2024, 5, 1, 10, 30, 0, 123456000, time.UTC)},
		{`"2024-05-01"`, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		var ts Timestamp
		require.NoError(t, json.Unmarshal([]byte(tt.in), &ts), tt.in)
		assert.True(t, ts.Equal(tt.want), "%s parsed as %v", tt.in, ts.Time)
	}

	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
}

func TestWeightRecord_DayKey(t *testing.T) {
	w := WeightRecord{RecordedAt: Timestamp{time.Date(2024, 5, 1, 23, 59, 0, 0, time.UTC)}}
	assert.Equal(t, "2024-05-01", w.DayKey())

	// non-UTC times collapse to the UTC day
	loc := time.FixedZone("UTC+3", 3*3600)
	w = WeightRecord{RecordedAt: Timestamp{time.Date(2024, 5, 2, 1, 30, 0, 0, loc)}}
	assert.Equal(t, "2024-05-01", w.DayKey())
}

func TestProfile_WireFormat(t *testing.T) {
	p := Profile{
		FirstName: "Ana",
		LastName:  "García López",
		BirthDate: NewDate(1990, time.July, 15),
		HeightM:   1.68,
	}

	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"nombre":"Ana","apellidos":"García López","fecha_nacimiento":"1990-07-15","talla_m":1.68}`, string(b))
}

func TestIdentity_IsAdmin(t *testing.T) {
	assert.False(t, (*Identity)(nil).IsAdmin())
	assert.False(t, (&Identity{Role: "user"}).IsAdmin())
	assert.True(t, (&Identity{Role: "admin"}).IsAdmin())
}
