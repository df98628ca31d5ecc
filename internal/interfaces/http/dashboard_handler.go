package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/crm-api/internal/application/analytics"
)

// DashboardHandler maneja los endpoints del dashboard.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// Stats godoc
// @Summary      Conteos por entidad y totales de oportunidades
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Param        startDate  query  string  false  "Creado desde"
// @Param        endDate    query  string  false  "Creado hasta (inclusivo)"
// @Success      200  {object}  dto.DashboardStatsResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/dashboard/stats [get]
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	out, err := h.uc.Stats(c.UserContext(), dateRange(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Metrics godoc
// @Summary      Tasa de conversión
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardMetricsResponse
// @Router       /api/dashboard/metrics [get]
func (h *DashboardHandler) Metrics(c *fiber.Ctx) error {
	out, err := h.uc.Metrics(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Pipeline godoc
// @Summary      Oportunidades por etapa (todas las etapas, también las vacías)
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.PipelineResponse
// @Router       /api/dashboard/pipeline [get]
func (h *DashboardHandler) Pipeline(c *fiber.Ctx) error {
	out, err := h.uc.Pipeline(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// RecentActivity GET /api/dashboard/recent-activity
func (h *DashboardHandler) RecentActivity(c *fiber.Ctx) error {
	out, err := h.uc.RecentActivity(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Summary godoc
// @Summary      Tablero completo en una llamada
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardSummaryResponse
// @Router       /api/dashboard/summary [get]
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	out, err := h.uc.Summary(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Report godoc
// @Summary      Reporte PDF del pipeline
// @Tags         dashboard
// @Security     Bearer
// @Produce      application/pdf
// @Success      200  {file}  binary
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/dashboard/report [get]
func (h *DashboardHandler) Report(c *fiber.Ctx) error {
	pdf, filename, err := h.uc.Report(c.UserContext())
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdf)
}
