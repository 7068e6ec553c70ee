package dose

import (
	"strings"

	"github.com/yanqian/agrocalc/internal/domain/units"
)

const (
	minSafeTemperature = 5.0
	maxSafeTemperature = 35.0
	minSafeHumidity    = 30.0
	maxSafeHumidity    = 90.0
	maxSafeWindSpeed   = 15.0
)

// CalculateDose returns the product quantity for rate × area × factor.
// A missing or non-positive factor counts as 1.
func CalculateDose(in Input) Result {
	factor := units.Finite(in.AdjustmentFactor)
	if factor <= 0 {
		factor = 1
	}
	rate := units.NonNegative(in.DoseRatePerHectare)
	area := units.NonNegative(in.AreaHectares)

	res := Result{
		TotalQuantity:    units.Finite(rate * area * factor),
		AdjustmentFactor: factor,
	}
	if in.StockAvailable != nil {
		sufficient := units.Finite(*in.StockAvailable) >= res.TotalQuantity
		res.StockSufficient = &sufficient
	}
	return res
}

// ClassifyRisk buckets spray conditions. Wind is checked first: drift risk
// overrides otherwise acceptable temperature and humidity.
func ClassifyRisk(temperature, humidity, windSpeed float64) RiskLevel {
	switch {
	case windSpeed > maxSafeWindSpeed:
		return RiskHigh
	case windSpeed <= maxSafeWindSpeed &&
		within(temperature, minSafeTemperature, maxSafeTemperature) &&
		within(humidity, minSafeHumidity, maxSafeHumidity):
		return RiskLow
	default:
		return RiskMedium
	}
}

func within(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}

// FactorFor returns the multiplier configured for level, 1 when unset.
func (a Adjustments) FactorFor(level RiskLevel) float64 {
	var f float64
	switch level {
	case RiskLow:
		f = a.Low
	case RiskMedium:
		f = a.Medium
	case RiskHigh:
		f = a.High
	}
	if f = units.Finite(f); f <= 0 {
		return 1
	}
	return f
}

// TotalUnit strips the per-area part of a dose unit: "L/ha" becomes "L".
func TotalUnit(doseUnit string) string {
	unit, _, _ := strings.Cut(strings.TrimSpace(doseUnit), "/")
	return strings.TrimSpace(unit)
}

func advisoryFor(level RiskLevel) string {
	switch level {
	case RiskHigh:
		return "wind above 15 km/h: postpone the application, drift risk is high"
	case RiskMedium:
		return "temperature or humidity outside the recommended range: apply with caution"
	default:
		return "conditions suitable for application"
	}
}
