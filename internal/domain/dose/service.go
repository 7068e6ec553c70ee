package dose

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/yanqian/agrocalc/internal/domain/units"
	apperrors "github.com/yanqian/agrocalc/pkg/errors"
)

const (
	kindDose = "dose"
	kindRisk = "risk"
	kindPlan = "plan"

	sourceRequest = "request"
	sourceWeather = "weather"
)

// Service exposes agrochemical dose and application planning capabilities.
type Service interface {
	CalculateDose(ctx context.Context, req DoseRequest) (DoseResponse, error)
	ClassifyRisk(ctx context.Context, req RiskRequest) (RiskResponse, error)
	PlanApplication(ctx context.Context, req PlanRequest) (PlanResponse, error)
}

// StockProvider reports product stock from the inventory backend.
type StockProvider interface {
	StockLevel(ctx context.Context, productID string) (StockLevel, error)
}

// WeatherClient fetches current conditions for a location.
type WeatherClient interface {
	Current(ctx context.Context, loc Location) (Readings, error)
}

// Recorder keeps an audit trail of calculations.
type Recorder interface {
	Record(ctx context.Context, kind string, input, output any) error
}

type service struct {
	cfg      Config
	stock    StockProvider
	weather  WeatherClient
	recorder Recorder
	logger   *slog.Logger
}

// NewService wires up the dose domain.
func NewService(cfg Config, stock StockProvider, weather WeatherClient, recorder Recorder, logger *slog.Logger) Service {
	return &service{
		cfg:      cfg,
		stock:    stock,
		weather:  weather,
		recorder: recorder,
		logger:   logger.With("component", "dose.service"),
	}
}

func (s *service) CalculateDose(ctx context.Context, req DoseRequest) (DoseResponse, error) {
	if err := ctx.Err(); err != nil {
		return DoseResponse{}, apperrors.Wrap(apperrors.CodeCancelled, "request cancelled", err)
	}
	in := Input{
		DoseRatePerHectare: req.DoseRatePerHectare,
		AreaHectares:       req.AreaHectares,
		StockAvailable:     req.StockAvailable,
	}
	if req.AdjustmentFactor != nil {
		in.AdjustmentFactor = *req.AdjustmentFactor
	}
	res := CalculateDose(in)
	resp := DoseResponse{
		TotalQuantity:    res.TotalQuantity,
		QuantityUnit:     TotalUnit(req.DoseUnit),
		AdjustmentFactor: res.AdjustmentFactor,
		StockSufficient:  res.StockSufficient,
	}
	s.record(ctx, kindDose, req, resp)
	return resp, nil
}

func (s *service) ClassifyRisk(ctx context.Context, req RiskRequest) (RiskResponse, error) {
	if err := ctx.Err(); err != nil {
		return RiskResponse{}, apperrors.Wrap(apperrors.CodeCancelled, "request cancelled", err)
	}
	resp := s.riskResponse(Readings(req))
	s.record(ctx, kindRisk, req, resp)
	return resp, nil
}

func (s *service) PlanApplication(ctx context.Context, req PlanRequest) (PlanResponse, error) {
	if err := ctx.Err(); err != nil {
		return PlanResponse{}, apperrors.Wrap(apperrors.CodeCancelled, "request cancelled", err)
	}
	if req.Readings == nil && req.Location == nil {
		return PlanResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "readings or location is required", nil)
	}
	if req.Readings == nil && s.weather == nil {
		return PlanResponse{}, apperrors.Wrap(apperrors.CodeWeather, "weather lookup is not configured", nil)
	}

	var (
		readings Readings
		source   = sourceRequest
		stock    *StockLevel
	)
	if req.Readings != nil {
		readings = *req.Readings
	}

	g, gctx := errgroup.WithContext(ctx)
	productID := strings.TrimSpace(req.ProductID)
	if productID != "" && s.stock != nil {
		g.Go(func() error {
			level, err := s.stock.StockLevel(gctx, productID)
			if err != nil {
				return apperrors.Wrap(apperrors.CodeStock, "failed to fetch stock level", err)
			}
			stock = &level
			return nil
		})
	}
	if req.Readings == nil {
		source = sourceWeather
		loc := *req.Location
		g.Go(func() error {
			current, err := s.weather.Current(gctx, loc)
			if err != nil {
				return apperrors.Wrap(apperrors.CodeWeather, "failed to fetch current conditions", err)
			}
			readings = current
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return PlanResponse{}, err
	}

	risk := s.riskResponse(readings)
	factor := 1.0
	if req.ApplyEnvironmentalAdjustment {
		factor = risk.AdjustmentFactor
	}
	res := CalculateDose(Input{
		DoseRatePerHectare: req.DoseRatePerHectare,
		AreaHectares:       req.AreaHectares,
		AdjustmentFactor:   factor,
	})
	quantityUnit := TotalUnit(req.DoseUnit)

	resp := PlanResponse{
		Dose: DoseResponse{
			TotalQuantity:    res.TotalQuantity,
			QuantityUnit:     quantityUnit,
			AdjustmentFactor: res.AdjustmentFactor,
		},
		Risk:           risk,
		Readings:       readings,
		ReadingsSource: source,
		Stock:          stock,
		Warnings:       []string{},
	}
	if risk.Level != RiskLow {
		resp.Warnings = append(resp.Warnings, risk.Advisory)
	}
	if stock != nil {
		available, ok := comparableStock(*stock, quantityUnit)
		if ok {
			sufficient := available >= res.TotalQuantity
			resp.StockSufficient = &sufficient
			resp.Dose.StockSufficient = &sufficient
			if !sufficient {
				resp.Warnings = append(resp.Warnings, fmt.Sprintf("stock insufficient: need %.2f %s, available %.2f", res.TotalQuantity, quantityUnit, available))
			}
		} else {
			resp.Warnings = append(resp.Warnings, fmt.Sprintf("stock unit %q does not match dose unit %q", stock.Unit, quantityUnit))
		}
	}

	s.logger.Info("application planned", "product_id", productID, "risk", risk.Level, "readings_source", source, "warnings", len(resp.Warnings))
	s.record(ctx, kindPlan, req, resp)
	return resp, nil
}

func (s *service) riskResponse(r Readings) RiskResponse {
	level := ClassifyRisk(r.Temperature, r.Humidity, r.WindSpeed)
	return RiskResponse{
		Level:            level,
		AdjustmentFactor: s.cfg.Adjustments.FactorFor(level),
		Advisory:         advisoryFor(level),
	}
}

// comparableStock expresses the stock in the dose's unit when both sides agree
// or are known mass units.
func comparableStock(stock StockLevel, quantityUnit string) (float64, bool) {
	available := units.Finite(stock.Available)
	stockUnit := strings.TrimSpace(stock.Unit)
	if stockUnit == "" || quantityUnit == "" || strings.EqualFold(stockUnit, quantityUnit) {
		return available, true
	}
	from, okFrom := units.Parse(stockUnit)
	to, okTo := units.Parse(quantityUnit)
	if okFrom && okTo {
		return units.Convert(available, from, to), true
	}
	return 0, false
}

func (s *service) record(ctx context.Context, kind string, input, output any) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ctx, kind, input, output); err != nil {
		s.logger.Warn("calculation not recorded", "kind", kind, "error", err)
	}
}
