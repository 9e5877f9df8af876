package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-desk/internal/domain"
	"github.com/spec-kit/service-desk/internal/service"
	apperrors "github.com/spec-kit/service-desk/pkg/util"
)

// ReportsHandler serves aggregated metrics and CSV exports.
type ReportsHandler struct {
	service *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reportService *service.ReportService) *ReportsHandler {
	return &ReportsHandler{service: reportService}
}

// Metrics GET /reports/metrics?from=YYYY-MM-DD&to=YYYY-MM-DD.
func (h *ReportsHandler) Metrics(c *fiber.Ctx) error {
	rng, err := parseDateRange(c)
	if err != nil {
		return err
	}
	metrics, cached, err := h.service.Metrics(c.UserContext(), rng)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": metrics, "cached": cached})
}

// Export GET /reports/export?from=YYYY-MM-DD&to=YYYY-MM-DD.
func (h *ReportsHandler) Export(c *fiber.Ctx) error {
	rng, err := parseDateRange(c)
	if err != nil {
		return err
	}
	filename, raw, err := h.service.ExportCSV(c.UserContext(), rng)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(raw)
}

// parseDateRange reads inclusive from/to date params. The upper bound is
// pushed to the end of its day so a date-only "to" includes the whole day.
func parseDateRange(c *fiber.Ctx) (domain.DateRange, error) {
	var rng domain.DateRange
	if from := c.Query("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return rng, apperrors.NewValidationError("invalid from date", map[string]any{"from": from})
		}
		rng.From = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return rng, apperrors.NewValidationError("invalid to date", map[string]any{"to": to})
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		rng.To = &end
	}
	return rng, nil
}
