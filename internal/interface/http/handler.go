package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/agrocalc/internal/domain/dose"
	"github.com/yanqian/agrocalc/internal/domain/harvest"
	"github.com/yanqian/agrocalc/internal/domain/history"
	apperrors "github.com/yanqian/agrocalc/pkg/errors"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	harvestSvc harvest.Service
	doseSvc    dose.Service
	historySvc history.Service
	logger     *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(harvestSvc harvest.Service, doseSvc dose.Service, historySvc history.Service, logger *slog.Logger) *Handler {
	return &Handler{
		harvestSvc: harvestSvc,
		doseSvc:    doseSvc,
		historySvc: historySvc,
		logger:     logger.With("component", "http.handler"),
	}
}

// Convert converts a quantity between kg, tn and qq.
func (h *Handler) Convert(c *gin.Context) {
	var req harvest.ConversionRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.harvestSvc.Convert(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err, "conversion_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CalculateYield reports realized yield against the expected one.
func (h *Handler) CalculateYield(c *gin.Context) {
	var req harvest.YieldRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.harvestSvc.CalculateYield(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err, "yield_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CalculateDose computes the total product needed for a treated area.
func (h *Handler) CalculateDose(c *gin.Context) {
	var req dose.DoseRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.doseSvc.CalculateDose(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err, "dose_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ClassifyRisk buckets environmental readings into BAJO, MEDIO or ALTO.
func (h *Handler) ClassifyRisk(c *gin.Context) {
	var req dose.RiskRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.doseSvc.ClassifyRisk(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err, "risk_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PlanApplication combines stock, weather and dose into one plan.
func (h *Handler) PlanApplication(c *gin.Context) {
	var req dose.PlanRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.doseSvc.PlanApplication(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err, "plan_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListCalculations returns the most recent recorded calculations.
func (h *Handler) ListCalculations(c *gin.Context) {
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "limit must be an integer", err))
			return
		}
		limit = parsed
	}
	records, err := h.historySvc.Recent(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, domainError(err, "history_failed"))
		return
	}
	if records == nil {
		records = []history.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// ExportReport renders recent calculations to a spreadsheet and uploads it.
func (h *Handler) ExportReport(c *gin.Context) {
	var req history.ReportRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	resp, err := h.historySvc.ExportReport(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err, "report_failed"))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return false
	}
	return true
}

// domainError maps application error codes onto HTTP statuses.
func domainError(err error, fallbackCode string) *HTTPError {
	status := http.StatusInternalServerError
	code := fallbackCode
	switch apperrors.CodeOf(err) {
	case apperrors.CodeInvalidInput:
		status = http.StatusBadRequest
		code = "invalid_request"
	case apperrors.CodeCancelled:
		status = http.StatusRequestTimeout
		code = apperrors.CodeCancelled
	case apperrors.CodeStock, apperrors.CodeWeather:
		status = http.StatusBadGateway
	}
	return NewHTTPError(status, code, errMessage(err), err)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
