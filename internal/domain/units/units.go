package units

import (
	"math"
	"strings"
)

// Unit is a mass unit used for harvested quantities.
type Unit string

const (
	Kilogram  Unit = "kg"
	MetricTon Unit = "tn"
	Quintal   Unit = "qq"
)

const (
	KilogramsPerTon = 1000.0
	// KilogramsPerQuintal is the regional grain quintal, not the 100 kg metric quintal.
	KilogramsPerQuintal = 46.0
)

var aliases = map[string]Unit{
	"kg":         Kilogram,
	"kilogram":   Kilogram,
	"kilograms":  Kilogram,
	"tn":         MetricTon,
	"ton":        MetricTon,
	"metric_ton": MetricTon,
	"qq":         Quintal,
	"quintal":    Quintal,
}

// Parse resolves a unit tag. Unknown tags report false.
func Parse(raw string) (Unit, bool) {
	u, ok := aliases[strings.ToLower(strings.TrimSpace(raw))]
	return u, ok
}

// Factor returns how many kilograms one unit holds. Unknown units count as kilograms.
func (u Unit) Factor() float64 {
	switch u {
	case MetricTon:
		return KilogramsPerTon
	case Quintal:
		return KilogramsPerQuintal
	default:
		return 1
	}
}

// Known reports whether u is one of the supported mass units.
func (u Unit) Known() bool {
	switch u {
	case Kilogram, MetricTon, Quintal:
		return true
	}
	return false
}

func (u Unit) String() string { return string(u) }

// ToKilograms expresses amount in the canonical unit. Results beyond the
// float64 range degrade to 0.
func ToKilograms(amount float64, from Unit) float64 {
	return Finite(Finite(amount) * from.Factor())
}

// Convert moves amount between two units without rounding. It scales by the
// factor ratio, never through an intermediate kilogram value.
func Convert(amount float64, from, to Unit) float64 {
	amount = Finite(amount)
	fromFactor, toFactor := from.Factor(), to.Factor()
	if fromFactor >= toFactor {
		return Finite(amount * (fromFactor / toFactor))
	}
	return amount / (toFactor / fromFactor)
}

// ConvertQuantity is Convert for raw unit tags as typed in forms.
// Unrecognised tags are treated as kilograms.
func ConvertQuantity(amount float64, source, target string) float64 {
	return Convert(amount, ParseOrKilogram(source), ParseOrKilogram(target))
}

// ParseOrKilogram is Parse with kilograms as the fallback for unknown tags.
func ParseOrKilogram(raw string) Unit {
	if u, ok := Parse(raw); ok {
		return u
	}
	return Kilogram
}

// ForYieldLabel picks the mass unit implied by a free-text yield unit such as
// "kg/ha", "tn/ha" or "qq/ha". Matching is by substring so legacy crop records
// with labels like "toneladas por hectarea" keep resolving.
func ForYieldLabel(label string) Unit {
	switch {
	case strings.Contains(label, "tn"), strings.Contains(label, "tonelada"):
		return MetricTon
	case strings.Contains(label, "qq"), strings.Contains(label, "quintal"):
		return Quintal
	default:
		return Kilogram
	}
}

// Finite maps NaN and ±Inf to zero.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// NonNegative is Finite with negative values clamped to zero.
func NonNegative(v float64) float64 {
	v = Finite(v)
	if v < 0 {
		return 0
	}
	return v
}

// Round rounds v to the given number of decimals. Intended for display only.
func Round(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(Finite(v)*p) / p
}
