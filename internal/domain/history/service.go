package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/yanqian/agrocalc/pkg/errors"
	"github.com/yanqian/agrocalc/pkg/util"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Service records calculations and exports them as reports.
type Service interface {
	Record(ctx context.Context, kind string, input, output any) error
	Recent(ctx context.Context, limit int) ([]Record, error)
	ExportReport(ctx context.Context, req ReportRequest) (ReportResponse, error)
}

type service struct {
	cfg      Config
	repo     Repository
	renderer ReportRenderer
	storage  ObjectStorage
	logger   *slog.Logger
	now      func() time.Time
	newID    func() uuid.UUID
}

// NewService wires up the history domain.
func NewService(cfg Config, repo Repository, renderer ReportRenderer, storage ObjectStorage, logger *slog.Logger) Service {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = defaultLimit
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = maxLimit
	}
	if cfg.DefaultLimit > cfg.MaxLimit {
		cfg.DefaultLimit = cfg.MaxLimit
	}
	if strings.TrimSpace(cfg.ReportPrefix) == "" {
		cfg.ReportPrefix = "reports"
	}
	return &service{
		cfg:      cfg,
		repo:     repo,
		renderer: renderer,
		storage:  storage,
		logger:   logger.With("component", "history.service"),
		now:      util.NowUTC,
		newID:    uuid.New,
	}
}

func (s *service) Record(ctx context.Context, kind string, input, output any) error {
	in, err := json.Marshal(input)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeHistory, "encode calculation input", err)
	}
	out, err := json.Marshal(output)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeHistory, "encode calculation output", err)
	}
	record := Record{
		ID:        s.newID(),
		Kind:      kind,
		Input:     in,
		Output:    out,
		CreatedAt: s.now(),
	}
	if err := s.repo.Save(ctx, record); err != nil {
		return apperrors.Wrap(apperrors.CodeHistory, "save calculation record", err)
	}
	return nil
}

func (s *service) Recent(ctx context.Context, limit int) ([]Record, error) {
	records, err := s.repo.ListRecent(ctx, s.clampLimit(limit))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeHistory, "list calculation records", err)
	}
	return records, nil
}

func (s *service) ExportReport(ctx context.Context, req ReportRequest) (ReportResponse, error) {
	if s.renderer == nil || s.storage == nil {
		return ReportResponse{}, apperrors.Wrap(apperrors.CodeReport, "report export is not configured", nil)
	}
	records, err := s.Recent(ctx, req.Limit)
	if err != nil {
		return ReportResponse{}, err
	}
	data, err := s.renderer.Render(records)
	if err != nil {
		return ReportResponse{}, apperrors.Wrap(apperrors.CodeReport, "render report", err)
	}
	key := fmt.Sprintf("%s/calculations-%s.%s", strings.TrimRight(s.cfg.ReportPrefix, "/"), s.now().Format("20060102T150405Z"), s.renderer.Extension())
	obj, err := s.storage.Put(ctx, key, data, s.renderer.ContentType())
	if err != nil {
		return ReportResponse{}, apperrors.Wrap(apperrors.CodeReport, "upload report", err)
	}
	s.logger.Info("calculation report exported", "key", obj.Key, "records", len(records), "size", obj.Size)
	return ReportResponse{
		Key:         obj.Key,
		Size:        obj.Size,
		ETag:        obj.ETag,
		ContentType: obj.MimeType,
		Records:     len(records),
	}, nil
}

func (s *service) clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return s.cfg.DefaultLimit
	case limit > s.cfg.MaxLimit:
		return s.cfg.MaxLimit
	default:
		return limit
	}
}
