package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

var _ repository.DashboardRepository = (*DashboardRepo)(nil)

// DashboardRepo consultas de solo lectura para el dashboard. Cada método es una sola consulta.
type DashboardRepo struct {
	q Querier
}

// NewDashboardRepository construye el adaptador del dashboard.
func NewDashboardRepository(q Querier) *DashboardRepo {
	return &DashboardRepo{q: q}
}

// Counts cuenta filas por tabla con cuatro sub-selects. El rango (si está completo) aplica a created_at
// en todas las tablas y reutiliza los mismos $1/$2.
func (r *DashboardRepo) Counts(ctx context.Context, created repository.DateRange) (repository.EntityCounts, error) {
	where, args := Where(Between("created_at", created))
	query := fmt.Sprintf(`
	SELECT
	    (SELECT COUNT(*) FROM customers %[1]s),
	    (SELECT COUNT(*) FROM opportunities %[1]s),
	    (SELECT COUNT(*) FROM activities %[1]s),
	    (SELECT COUNT(*) FROM interactions %[1]s)`, where)

	var c repository.EntityCounts
	if err := r.q.QueryRow(ctx, query, args...).Scan(&c.Customers, &c.Opportunities, &c.Activities, &c.Interactions); err != nil {
		return c, fmt.Errorf("dashboard.Counts: %w", err)
	}
	return c, nil
}

// OpportunityTotals totales y valor ganado. Los valores nulos suman 0.
func (r *DashboardRepo) OpportunityTotals(ctx context.Context, created repository.DateRange) (repository.OpportunityTotals, error) {
	where, args := Where(Between("created_at", created))
	query := `
	SELECT
	    COUNT(*),
	    COUNT(*) FILTER (WHERE stage = 'closed-won'),
	    COALESCE(SUM(value), 0),
	    COALESCE(SUM(value) FILTER (WHERE stage = 'closed-won'), 0)
	FROM opportunities ` + where

	var t repository.OpportunityTotals
	if err := r.q.QueryRow(ctx, query, args...).Scan(&t.Total, &t.Won, &t.TotalValue, &t.WonValue); err != nil {
		return t, fmt.Errorf("dashboard.OpportunityTotals: %w", err)
	}
	return t, nil
}

// Pipeline una fila por etapa del enum (unnest + LEFT JOIN), en orden de pipeline.
// Las etapas sin oportunidades devuelven 0 en todas las columnas.
func (r *DashboardRepo) Pipeline(ctx context.Context) ([]repository.PipelineStageResult, error) {
	const query = `
	SELECT
	    s.stage,
	    COUNT(o.id),
	    COALESCE(SUM(o.value), 0),
	    COALESCE(ROUND(AVG(o.probability), 2), 0)
	FROM unnest($1::text[]) WITH ORDINALITY AS s(stage, ord)
	LEFT JOIN opportunities o ON o.stage = s.stage
	GROUP BY s.stage, s.ord
	ORDER BY s.ord`

	rows, err := r.q.Query(ctx, query, entity.OpportunityStages)
	if err != nil {
		return nil, fmt.Errorf("dashboard.Pipeline: %w", err)
	}
	defer rows.Close()

	results := make([]repository.PipelineStageResult, 0, len(entity.OpportunityStages))
	for rows.Next() {
		var row repository.PipelineStageResult
		if err := rows.Scan(&row.Stage, &row.Count, &row.TotalValue, &row.AvgProbability); err != nil {
			return nil, fmt.Errorf("dashboard.Pipeline scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// RecentActivities últimas actividades creadas con cliente, oportunidad y usuario.
func (r *DashboardRepo) RecentActivities(ctx context.Context, limit int) ([]*entity.Activity, error) {
	query := `SELECT ` + activityWithRelationsColumns + ` FROM ` + activityWithRelationsFrom + `
	ORDER BY a.created_at DESC, a.id DESC
	LIMIT $1`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("dashboard.RecentActivities: %w", err)
	}
	list, err := collect(rows, scanActivityWithRelations)
	if err != nil {
		return nil, fmt.Errorf("dashboard.RecentActivities scan: %w", err)
	}
	return list, nil
}
