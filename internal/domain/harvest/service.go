package harvest

import (
	"context"
	"log/slog"

	"github.com/yanqian/agrocalc/internal/domain/units"
	apperrors "github.com/yanqian/agrocalc/pkg/errors"
)

const (
	kindConversion = "conversion"
	kindYield      = "yield"
)

// Service exposes quantity conversion and yield calculations.
type Service interface {
	Convert(ctx context.Context, req ConversionRequest) (ConversionResponse, error)
	CalculateYield(ctx context.Context, req YieldRequest) (YieldResponse, error)
}

// Recorder keeps an audit trail of calculations.
type Recorder interface {
	Record(ctx context.Context, kind string, input, output any) error
}

type service struct {
	recorder Recorder
	logger   *slog.Logger
}

// NewService wires up the harvest domain.
func NewService(recorder Recorder, logger *slog.Logger) Service {
	return &service{recorder: recorder, logger: logger.With("component", "harvest.service")}
}

func (s *service) Convert(ctx context.Context, req ConversionRequest) (ConversionResponse, error) {
	if err := ctx.Err(); err != nil {
		return ConversionResponse{}, apperrors.Wrap(apperrors.CodeCancelled, "request cancelled", err)
	}
	amount := units.NonNegative(req.Amount)
	resp := ConversionResponse{
		Amount:     amount,
		SourceUnit: req.SourceUnit,
		TargetUnit: req.TargetUnit,
		Kilograms:  units.ToKilograms(amount, units.ParseOrKilogram(req.SourceUnit)),
		Result:     units.ConvertQuantity(amount, req.SourceUnit, req.TargetUnit),
	}
	s.record(ctx, kindConversion, req, resp)
	return resp, nil
}

func (s *service) CalculateYield(ctx context.Context, req YieldRequest) (YieldResponse, error) {
	if err := ctx.Err(); err != nil {
		return YieldResponse{}, apperrors.Wrap(apperrors.CodeCancelled, "request cancelled", err)
	}
	harvestedUnit := units.ParseOrKilogram(req.HarvestedUnit)
	result := CalculateYield(Input{
		HarvestedAmount: req.HarvestedAmount,
		HarvestedUnit:   harvestedUnit,
		AreaHectares:    req.AreaHectares,
		CropYieldUnit:   req.CropYieldUnit,
		ExpectedYield:   req.ExpectedYield,
	})
	resp := YieldResponse{
		RealizedYield:      result.RealizedYield,
		CompletionPercent:  result.CompletionPercent,
		Deviation:          result.Deviation,
		YieldUnit:          result.YieldUnit.String(),
		HarvestedKilograms: units.ToKilograms(units.NonNegative(req.HarvestedAmount), harvestedUnit),
	}
	s.logger.Debug("yield calculated", "yield_unit", resp.YieldUnit, "realized", resp.RealizedYield, "completion", resp.CompletionPercent)
	s.record(ctx, kindYield, req, resp)
	return resp, nil
}

func (s *service) record(ctx context.Context, kind string, input, output any) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ctx, kind, input, output); err != nil {
		s.logger.Warn("calculation not recorded", "kind", kind, "error", err)
	}
}
