package harvest

import "github.com/yanqian/agrocalc/internal/domain/units"

// CalculateYield derives realized yield per hectare and compares it with the
// expected yield. It never fails: bad numbers degrade to zero.
func CalculateYield(in Input) Result {
	yieldUnit := units.ForYieldLabel(in.CropYieldUnit)
	amount := units.Convert(units.NonNegative(in.HarvestedAmount), in.HarvestedUnit, yieldUnit)

	area := units.Finite(in.AreaHectares)
	expected := units.Finite(in.ExpectedYield)

	realized := 0.0
	if area > 0 {
		realized = amount / area
	}

	completion := 0.0
	if expected > 0 {
		completion = realized / expected * 100
	}

	return Result{
		RealizedYield:     units.Finite(realized),
		CompletionPercent: units.Finite(completion),
		Deviation:         units.Finite(realized - expected),
		YieldUnit:         yieldUnit,
	}
}
