package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardStatsResponse respuesta de GET /api/dashboard/stats.
// Con startDate y endDate los conteos se limitan a registros creados en el rango (inclusivo).
type DashboardStatsResponse struct {
	Customers     CountDTO             `json:"customers"`
	Opportunities OpportunityTotalsDTO `json:"opportunities"`
	Activities    CountDTO             `json:"activities"`
	Interactions  CountDTO             `json:"interactions"`
}

// CountDTO total simple de una entidad.
type CountDTO struct {
	Total int `json:"total"`
}

// OpportunityTotalsDTO agregados monetarios (valores nulos cuentan como 0).
type OpportunityTotalsDTO struct {
	Total      int             `json:"total"`
	TotalValue decimal.Decimal `json:"totalValue"`
	WonValue   decimal.Decimal `json:"wonValue"` // solo closed-won
}

// DashboardMetricsResponse respuesta de GET /api/dashboard/metrics.
type DashboardMetricsResponse struct {
	ConversionRate    decimal.Decimal      `json:"conversionRate"` // won / total * 100, 2 decimales
	OpportunityCounts OpportunityCountsDTO `json:"opportunityCounts"`
}

// OpportunityCountsDTO oportunidades totales y ganadas.
type OpportunityCountsDTO struct {
	Total int `json:"total"`
	Won   int `json:"won"`
}

// PipelineStageDTO una fila del pipeline. Siempre hay una por etapa del enum.
type PipelineStageDTO struct {
	Stage          string          `json:"stage"`
	Count          int             `json:"count"`
	TotalValue     decimal.Decimal `json:"totalValue"`
	AvgProbability decimal.Decimal `json:"avgProbability"`
}

// PipelineResponse respuesta de GET /api/dashboard/pipeline.
type PipelineResponse struct {
	Pipeline []PipelineStageDTO `json:"pipeline"`
}

// RecentActivityResponse respuesta de GET /api/dashboard/recent-activity.
type RecentActivityResponse struct {
	Activities []ActivityResponse `json:"activities"`
}

// DashboardSummaryResponse respuesta de GET /api/dashboard/summary: todo el tablero en una llamada.
type DashboardSummaryResponse struct {
	Stats          DashboardStatsResponse   `json:"stats"`
	Metrics        DashboardMetricsResponse `json:"metrics"`
	Pipeline       []PipelineStageDTO       `json:"pipeline"`
	RecentActivity []ActivityResponse       `json:"recentActivity"`
	GeneratedAt    time.Time                `json:"generatedAt"`
}
