package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// EntityCounts conteo de filas por tabla.
type EntityCounts struct {
	Customers     int
	Opportunities int
	Activities    int
	Interactions  int
}

// OpportunityTotals agregados monetarios de oportunidades.
// Los valores nulos cuentan como 0 en las sumas.
type OpportunityTotals struct {
	Total      int
	Won        int
	TotalValue decimal.Decimal
	WonValue   decimal.Decimal
}

// PipelineStageResult fila cruda del desglose por etapa. Lo produce la DB;
// el use case lo convierte en DTO.
type PipelineStageResult struct {
	Stage          string
	Count          int
	TotalValue     decimal.Decimal
	AvgProbability decimal.Decimal
}

// DashboardRepository define las consultas de lectura del dashboard.
// Cada método es una sola ida a la base de datos.
type DashboardRepository interface {
	// Counts devuelve el total por entidad. Con rango completo filtra por created_at (inclusivo).
	Counts(ctx context.Context, created DateRange) (EntityCounts, error)

	// OpportunityTotals usa COALESCE(SUM(value), 0) y FILTER para closed-won.
	OpportunityTotals(ctx context.Context, created DateRange) (OpportunityTotals, error)

	// Pipeline devuelve una fila por cada etapa del enum, incluso sin oportunidades.
	Pipeline(ctx context.Context) ([]PipelineStageResult, error)

	// RecentActivities últimas actividades creadas, con cliente y oportunidad.
	RecentActivities(ctx context.Context, limit int) ([]*entity.Activity, error)
}
