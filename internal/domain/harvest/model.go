package harvest

import "github.com/yanqian/agrocalc/internal/domain/units"

// Input is a harvest as entered on the harvest form.
type Input struct {
	HarvestedAmount float64
	HarvestedUnit   units.Unit
	AreaHectares    float64
	CropYieldUnit   string
	ExpectedYield   float64
}

// Result is expressed in the unit implied by the crop's declared yield unit.
type Result struct {
	RealizedYield     float64
	CompletionPercent float64
	Deviation         float64
	YieldUnit         units.Unit
}

// ConversionRequest is the payload accepted by the conversion endpoint.
type ConversionRequest struct {
	Amount     float64 `json:"amount"`
	SourceUnit string  `json:"sourceUnit"`
	TargetUnit string  `json:"targetUnit"`
}

// ConversionResponse echoes the request with the converted amount.
type ConversionResponse struct {
	Amount     float64 `json:"amount"`
	SourceUnit string  `json:"sourceUnit"`
	TargetUnit string  `json:"targetUnit"`
	Kilograms  float64 `json:"kilograms"`
	Result     float64 `json:"result"`
}

// YieldRequest is the payload accepted by the yield endpoint.
type YieldRequest struct {
	HarvestedAmount float64 `json:"harvestedAmount"`
	HarvestedUnit   string  `json:"harvestedUnit"`
	AreaHectares    float64 `json:"areaHectares"`
	CropYieldUnit   string  `json:"cropYieldUnit"`
	ExpectedYield   float64 `json:"expectedYield"`
}

// YieldResponse is serialized back to API consumers.
type YieldResponse struct {
	RealizedYield      float64 `json:"realizedYield"`
	CompletionPercent  float64 `json:"completionPercent"`
	Deviation          float64 `json:"deviation"`
	YieldUnit          string  `json:"yieldUnit"`
	HarvestedKilograms float64 `json:"harvestedKilograms"`
}
