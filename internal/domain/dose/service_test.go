package dose

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/agrocalc/pkg/errors"
)

func TestServiceCalculateDose(t *testing.T) {
	recorder := &stubRecorder{}
	svc := newServiceUnderTest(nil, nil, recorder)

	factor := 1.2
	stock := 11.0
	resp, err := svc.CalculateDose(context.Background(), DoseRequest{
		DoseRatePerHectare: 2.5,
		DoseUnit:           "L/ha",
		AreaHectares:       4,
		AdjustmentFactor:   &factor,
		StockAvailable:     &stock,
	})
	require.NoError(t, err)
	require.Equal(t, 12.0, resp.TotalQuantity)
	require.Equal(t, "L", resp.QuantityUnit)
	require.Equal(t, 1.2, resp.AdjustmentFactor)
	require.NotNil(t, resp.StockSufficient)
	require.False(t, *resp.StockSufficient)
	require.Equal(t, []string{kindDose}, recorder.kinds)
}

func TestServiceClassifyRisk(t *testing.T) {
	svc := newServiceUnderTest(nil, nil, nil)

	resp, err := svc.ClassifyRisk(context.Background(), RiskRequest{Temperature: 20, Humidity: 65, WindSpeed: 20})
	require.NoError(t, err)
	require.Equal(t, RiskHigh, resp.Level)
	require.Equal(t, 1.2, resp.AdjustmentFactor)
	require.Contains(t, resp.Advisory, "drift")
}

func TestServicePlanApplicationWithReadings(t *testing.T) {
	stock := &stubStock{level: StockLevel{ProductID: "glyphosate", Available: 40, Unit: "L"}}
	weather := &stubWeather{}
	svc := newServiceUnderTest(stock, weather, nil)

	resp, err := svc.PlanApplication(context.Background(), PlanRequest{
		ProductID:                    "glyphosate",
		DoseRatePerHectare:           2.5,
		DoseUnit:                     "L/ha",
		AreaHectares:                 12,
		Readings:                     &Readings{Temperature: 38, Humidity: 50, WindSpeed: 8},
		ApplyEnvironmentalAdjustment: true,
	})
	require.NoError(t, err)
	require.Equal(t, RiskMedium, resp.Risk.Level)
	require.Equal(t, sourceRequest, resp.ReadingsSource)
	require.InDelta(t, 33.0, resp.Dose.TotalQuantity, 1e-9)
	require.NotNil(t, resp.StockSufficient)
	require.True(t, *resp.StockSufficient)
	require.Len(t, resp.Warnings, 1)
	require.Equal(t, "glyphosate", stock.lastProduct)
	require.Zero(t, weather.calls)
}

func TestServicePlanApplicationFetchesWeather(t *testing.T) {
	stock := &stubStock{level: StockLevel{ProductID: "p-1", Available: 5, Unit: "L"}}
	weather := &stubWeather{readings: Readings{Temperature: 22, Humidity: 60, WindSpeed: 25}}
	svc := newServiceUnderTest(stock, weather, nil)

	resp, err := svc.PlanApplication(context.Background(), PlanRequest{
		ProductID:          "p-1",
		DoseRatePerHectare: 1,
		DoseUnit:           "L/ha",
		AreaHectares:       10,
		Location:           &Location{Latitude: -31.4, Longitude: -64.2},
	})
	require.NoError(t, err)
	require.Equal(t, sourceWeather, resp.ReadingsSource)
	require.Equal(t, RiskHigh, resp.Risk.Level)
	require.Equal(t, 10.0, resp.Dose.TotalQuantity)
	require.Equal(t, 1.0, resp.Dose.AdjustmentFactor)
	require.False(t, *resp.StockSufficient)
	require.Len(t, resp.Warnings, 2)
	require.Equal(t, 1, weather.calls)
	require.Equal(t, -31.4, weather.lastLocation.Latitude)
}

func TestServicePlanApplicationConvertsMassStock(t *testing.T) {
	stock := &stubStock{level: StockLevel{ProductID: "urea", Available: 1, Unit: "tn"}}
	svc := newServiceUnderTest(stock, nil, nil)

	resp, err := svc.PlanApplication(context.Background(), PlanRequest{
		ProductID:          "urea",
		DoseRatePerHectare: 150,
		DoseUnit:           "kg/ha",
		AreaHectares:       6,
		Readings:           &Readings{Temperature: 20, Humidity: 60, WindSpeed: 4},
	})
	require.NoError(t, err)
	require.True(t, *resp.StockSufficient)
	require.Empty(t, resp.Warnings)
}

func TestServicePlanApplicationUnitMismatch(t *testing.T) {
	stock := &stubStock{level: StockLevel{ProductID: "x", Available: 100, Unit: "L"}}
	svc := newServiceUnderTest(stock, nil, nil)

	resp, err := svc.PlanApplication(context.Background(), PlanRequest{
		ProductID:          "x",
		DoseRatePerHectare: 1,
		DoseUnit:           "kg/ha",
		AreaHectares:       1,
		Readings:           &Readings{Temperature: 20, Humidity: 60, WindSpeed: 4},
	})
	require.NoError(t, err)
	require.Nil(t, resp.StockSufficient)
	require.Len(t, resp.Warnings, 1)
	require.Contains(t, resp.Warnings[0], "does not match")
}

func TestServicePlanApplicationRequiresConditions(t *testing.T) {
	svc := newServiceUnderTest(&stubStock{}, &stubWeather{}, nil)

	_, err := svc.PlanApplication(context.Background(), PlanRequest{DoseRatePerHectare: 1, AreaHectares: 1})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestServicePlanApplicationUpstreamErrors(t *testing.T) {
	svc := newServiceUnderTest(&stubStock{err: errors.New("inventory down")}, &stubWeather{}, nil)
	_, err := svc.PlanApplication(context.Background(), PlanRequest{
		ProductID: "x",
		Readings:  &Readings{Temperature: 20, Humidity: 60},
	})
	require.True(t, apperrors.IsCode(err, apperrors.CodeStock))

	svc = newServiceUnderTest(nil, &stubWeather{err: errors.New("timeout")}, nil)
	_, err = svc.PlanApplication(context.Background(), PlanRequest{Location: &Location{}})
	require.True(t, apperrors.IsCode(err, apperrors.CodeWeather))

	svc = newServiceUnderTest(nil, nil, nil)
	_, err = svc.PlanApplication(context.Background(), PlanRequest{Location: &Location{}})
	require.True(t, apperrors.IsCode(err, apperrors.CodeWeather))
}

func TestServicePlanApplicationCancelledContext(t *testing.T) {
	stock := &stubStock{level: StockLevel{ProductID: "glifosato", Available: 100, Unit: "L"}}
	weather := &stubWeather{}
	recorder := &stubRecorder{}
	svc := newServiceUnderTest(stock, weather, recorder)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.PlanApplication(ctx, PlanRequest{
		ProductID:          "glifosato",
		DoseRatePerHectare: 2,
		AreaHectares:       10,
		Location:           &Location{Latitude: -34.6, Longitude: -58.4},
	})
	require.True(t, apperrors.IsCode(err, apperrors.CodeCancelled))
	require.Empty(t, stock.lastProduct)
	require.Zero(t, weather.calls)
	require.Empty(t, recorder.kinds)
}

func newServiceUnderTest(stock StockProvider, weather WeatherClient, recorder Recorder) Service {
	cfg := Config{Adjustments: Adjustments{Low: 1, Medium: 1.1, High: 1.2}}
	return NewService(cfg, stock, weather, recorder, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type stubStock struct {
	level       StockLevel
	err         error
	lastProduct string
}

func (s *stubStock) StockLevel(_ context.Context, productID string) (StockLevel, error) {
	s.lastProduct = productID
	if s.err != nil {
		return StockLevel{}, s.err
	}
	return s.level, nil
}

type stubWeather struct {
	readings     Readings
	err          error
	calls        int
	lastLocation Location
}

func (s *stubWeather) Current(_ context.Context, loc Location) (Readings, error) {
	s.calls++
	s.lastLocation = loc
	if s.err != nil {
		return Readings{}, s.err
	}
	return s.readings, nil
}

type stubRecorder struct {
	kinds []string
}

func (s *stubRecorder) Record(_ context.Context, kind string, _, _ any) error {
	s.kinds = append(s.kinds, kind)
	return nil
}
