// Package bmi computes the body mass index and its WHO category.
package bmi

// Compute returns the body mass index for a weight in kilograms and a
// height in meters. Height must be positive; the caller validates.
func Compute(weightKg, heightM float64) float64 {
	return weightKg / (heightM * heightM)
}

// Category maps a BMI value onto the WHO classification.
func Category(value float64) string {
	switch {
	case value < 18.5:
		return "underweight"
	case value < 25:
		return "normal"
	case value < 30:
		return "overweight"
	default:
		return "obese"
	}
}
