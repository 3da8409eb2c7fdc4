package bmi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompute(t *testing.T) {
	assert.InDelta(t, 22.86, Compute(70, 1.75), 0.01)
	assert.InDelta(t, 30.86, Compute(100, 1.80), 0.01)
}

func TestCategory(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  string
	}{
		{"underweight", 18.4, "underweight"},
		{"normal lower bound", 18.5, "normal"},
		{"normal", 22.0, "normal"},
		{"overweight lower bound", 25.0, "overweight"},
		{"overweight", 29.9, "overweight"},
		{"obese lower bound", 30.0, "obese"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Category(tt.value))
		})
	}
}
