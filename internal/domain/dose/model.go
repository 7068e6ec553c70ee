package dose

// RiskLevel is the ordinal environmental risk bucket for a spray application.
type RiskLevel string

const (
	RiskLow    RiskLevel = "BAJO"
	RiskMedium RiskLevel = "MEDIO"
	RiskHigh   RiskLevel = "ALTO"
)

// Input describes one agrochemical application.
type Input struct {
	DoseRatePerHectare float64
	AreaHectares       float64
	// AdjustmentFactor multiplies the base dose; zero means "not provided".
	AdjustmentFactor float64
	StockAvailable   *float64
}

// Result is the product quantity needed for an application.
type Result struct {
	TotalQuantity    float64
	AdjustmentFactor float64
	StockSufficient  *bool
}

// Readings are environmental conditions at application time.
type Readings struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"`
}

// Location is used to look up current conditions when no readings are supplied.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// StockLevel is the inventory position of a product as reported by the backend.
type StockLevel struct {
	ProductID string  `json:"productId"`
	Available float64 `json:"available"`
	Unit      string  `json:"unit"`
}

// DoseRequest is the payload accepted by the dose endpoint.
type DoseRequest struct {
	DoseRatePerHectare float64  `json:"doseRatePerHectare"`
	DoseUnit           string   `json:"doseUnit"`
	AreaHectares       float64  `json:"areaHectares"`
	AdjustmentFactor   *float64 `json:"adjustmentFactor,omitempty"`
	StockAvailable     *float64 `json:"stockAvailable,omitempty"`
}

// DoseResponse is serialized back to API consumers.
type DoseResponse struct {
	TotalQuantity    float64 `json:"totalQuantity"`
	QuantityUnit     string  `json:"quantityUnit"`
	AdjustmentFactor float64 `json:"adjustmentFactor"`
	StockSufficient  *bool   `json:"stockSufficient,omitempty"`
}

// RiskRequest carries raw readings for classification.
type RiskRequest struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"`
}

// RiskResponse reports the bucket and the factor configured for it.
type RiskResponse struct {
	Level            RiskLevel `json:"level"`
	AdjustmentFactor float64   `json:"adjustmentFactor"`
	Advisory         string    `json:"advisory"`
}

// PlanRequest asks for a full application plan: dose, conditions and stock.
type PlanRequest struct {
	ProductID                    string    `json:"productId"`
	DoseRatePerHectare           float64   `json:"doseRatePerHectare"`
	DoseUnit                     string    `json:"doseUnit"`
	AreaHectares                 float64   `json:"areaHectares"`
	Readings                     *Readings `json:"readings,omitempty"`
	Location                     *Location `json:"location,omitempty"`
	ApplyEnvironmentalAdjustment bool      `json:"applyEnvironmentalAdjustment"`
}

// PlanResponse is serialized back to API consumers.
type PlanResponse struct {
	Dose            DoseResponse `json:"dose"`
	Risk            RiskResponse `json:"risk"`
	Readings        Readings     `json:"readings"`
	ReadingsSource  string       `json:"readingsSource"`
	Stock           *StockLevel  `json:"stock,omitempty"`
	StockSufficient *bool        `json:"stockSufficient,omitempty"`
	Warnings        []string     `json:"warnings"`
}

// Adjustments maps each risk level to a dose multiplier.
type Adjustments struct {
	Low    float64
	Medium float64
	High   float64
}

// Config wires runtime knobs for the dose domain.
type Config struct {
	Adjustments Adjustments
}
