// Package analytics contiene los casos de uso del dashboard: conteos, métricas
// de conversión, pipeline por etapa y el reporte PDF del pipeline.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

const recentActivityLimit = 10

var hundred = decimal.NewFromInt(100)

// PipelineReportGenerator puerto de salida para renderizar el reporte del pipeline.
type PipelineReportGenerator interface {
	GeneratePipelineReport(ctx context.Context, report *PipelineReport) ([]byte, error)
}

// PipelineReport datos que consume el generador de PDF.
type PipelineReport struct {
	GeneratedAt time.Time
	Stats       dto.DashboardStatsResponse
	Metrics     dto.DashboardMetricsResponse
	Pipeline    []dto.PipelineStageDTO
}

// DashboardUseCase agregados de solo lectura sobre el CRM.
//
// Fuente de datos: DashboardRepository. Cada endpoint hace un número fijo de consultas.
type DashboardUseCase struct {
	repo      repository.DashboardRepository
	generator PipelineReportGenerator
	now       func() time.Time
}

// NewDashboardUseCase construye el caso de uso. generator puede ser nil si no se expone el reporte.
func NewDashboardUseCase(repo repository.DashboardRepository, generator PipelineReportGenerator, now func() time.Time) *DashboardUseCase {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &DashboardUseCase{repo: repo, generator: generator, now: now}
}

// Stats conteos por entidad y totales monetarios de oportunidades.
// Con startDate y endDate solo los conteos se limitan a registros creados en el rango;
// totalValue y wonValue suman siempre todas las oportunidades.
func (uc *DashboardUseCase) Stats(ctx context.Context, q dto.DateRangeRequest) (*dto.DashboardStatsResponse, error) {
	created, err := parseRange(q)
	if err != nil {
		return nil, err
	}
	g, gctx := errgroup.WithContext(ctx)
	var (
		counts repository.EntityCounts
		totals repository.OpportunityTotals
	)
	g.Go(func() error {
		var err error
		counts, err = uc.repo.Counts(gctx, created)
		return err
	})
	g.Go(func() error {
		var err error
		totals, err = uc.repo.OpportunityTotals(gctx, repository.DateRange{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard: stats: %w", err)
	}
	out := toStats(counts, totals)
	return &out, nil
}

// Metrics tasa de conversión: ganadas / total * 100 con 2 decimales (0 sin oportunidades).
func (uc *DashboardUseCase) Metrics(ctx context.Context) (*dto.DashboardMetricsResponse, error) {
	totals, err := uc.repo.OpportunityTotals(ctx, repository.DateRange{})
	if err != nil {
		return nil, fmt.Errorf("dashboard: metrics: %w", err)
	}
	out := toMetrics(totals)
	return &out, nil
}

// Pipeline una fila por cada etapa del enum, en orden de pipeline.
func (uc *DashboardUseCase) Pipeline(ctx context.Context) (*dto.PipelineResponse, error) {
	rows, err := uc.repo.Pipeline(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: pipeline: %w", err)
	}
	return &dto.PipelineResponse{Pipeline: toPipeline(rows)}, nil
}

// RecentActivity últimas 10 actividades creadas.
func (uc *DashboardUseCase) RecentActivity(ctx context.Context) (*dto.RecentActivityResponse, error) {
	list, err := uc.repo.RecentActivities(ctx, recentActivityLimit)
	if err != nil {
		return nil, fmt.Errorf("dashboard: actividad reciente: %w", err)
	}
	return &dto.RecentActivityResponse{Activities: dto.ToActivityResponses(list, uc.now())}, nil
}

// Summary arma el tablero completo. Las cuatro consultas corren en paralelo;
// la primera que falla cancela el resto.
func (uc *DashboardUseCase) Summary(ctx context.Context) (*dto.DashboardSummaryResponse, error) {
	var (
		counts repository.EntityCounts
		totals repository.OpportunityTotals
		rows   []repository.PipelineStageResult
		recent []*entity.Activity
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = uc.repo.Counts(gctx, repository.DateRange{})
		return err
	})
	g.Go(func() error {
		var err error
		totals, err = uc.repo.OpportunityTotals(gctx, repository.DateRange{})
		return err
	})
	g.Go(func() error {
		var err error
		rows, err = uc.repo.Pipeline(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = uc.repo.RecentActivities(gctx, recentActivityLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard: summary: %w", err)
	}

	now := uc.now()
	return &dto.DashboardSummaryResponse{
		Stats:          toStats(counts, totals),
		Metrics:        toMetrics(totals),
		Pipeline:       toPipeline(rows),
		RecentActivity: dto.ToActivityResponses(recent, now),
		GeneratedAt:    now,
	}, nil
}

// Report genera el PDF del pipeline. Devuelve los bytes y el nombre de archivo sugerido.
func (uc *DashboardUseCase) Report(ctx context.Context) ([]byte, string, error) {
	if uc.generator == nil {
		return nil, "", fmt.Errorf("dashboard: generador de reportes no configurado")
	}
	var (
		counts repository.EntityCounts
		totals repository.OpportunityTotals
		rows   []repository.PipelineStageResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = uc.repo.Counts(gctx, repository.DateRange{})
		return err
	})
	g.Go(func() error {
		var err error
		totals, err = uc.repo.OpportunityTotals(gctx, repository.DateRange{})
		return err
	})
	g.Go(func() error {
		var err error
		rows, err = uc.repo.Pipeline(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, "", fmt.Errorf("dashboard: reporte: %w", err)
	}

	now := uc.now()
	report := &PipelineReport{
		GeneratedAt: now,
		Stats:       toStats(counts, totals),
		Metrics:     toMetrics(totals),
		Pipeline:    toPipeline(rows),
	}
	pdf, err := uc.generator.GeneratePipelineReport(ctx, report)
	if err != nil {
		return nil, "", fmt.Errorf("dashboard: generar PDF: %w", err)
	}
	return pdf, fmt.Sprintf("pipeline-%s.pdf", now.Format("20060102")), nil
}

// ─── conversiones ─────────────────────────────────────────────────────────────

func parseRange(q dto.DateRangeRequest) (repository.DateRange, error) {
	v := &domain.ValidationError{}
	r := q.Range(v)
	return r, v.OrNil()
}

func toStats(c repository.EntityCounts, t repository.OpportunityTotals) dto.DashboardStatsResponse {
	return dto.DashboardStatsResponse{
		Customers: dto.CountDTO{Total: c.Customers},
		Opportunities: dto.OpportunityTotalsDTO{
			Total:      c.Opportunities,
			TotalValue: t.TotalValue.Round(2),
			WonValue:   t.WonValue.Round(2),
		},
		Activities:   dto.CountDTO{Total: c.Activities},
		Interactions: dto.CountDTO{Total: c.Interactions},
	}
}

func toMetrics(t repository.OpportunityTotals) dto.DashboardMetricsResponse {
	rate := decimal.Zero
	if t.Total > 0 {
		rate = decimal.NewFromInt(int64(t.Won)).Mul(hundred).
			DivRound(decimal.NewFromInt(int64(t.Total)), 2)
	}
	return dto.DashboardMetricsResponse{
		ConversionRate:    rate,
		OpportunityCounts: dto.OpportunityCountsDTO{Total: t.Total, Won: t.Won},
	}
}

// toPipeline completa las etapas ausentes con ceros y respeta el orden del enum.
func toPipeline(rows []repository.PipelineStageResult) []dto.PipelineStageDTO {
	byStage := make(map[string]repository.PipelineStageResult, len(rows))
	for _, r := range rows {
		byStage[r.Stage] = r
	}
	out := make([]dto.PipelineStageDTO, 0, len(entity.OpportunityStages))
	for _, stage := range entity.OpportunityStages {
		r := byStage[stage]
		out = append(out, dto.PipelineStageDTO{
			Stage:          stage,
			Count:          r.Count,
			TotalValue:     r.TotalValue.Round(2),
			AvgProbability: r.AvgProbability.Round(2),
		})
	}
	return out
}
