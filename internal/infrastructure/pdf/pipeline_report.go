// Package pdf genera el reporte del pipeline comercial en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + Fecha de generación                        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: Clientes | Oportunidades | Actividades | Interac.  │
//	│  MÉTRICAS: Conversión / Valor total / Valor ganado           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Etapa | Cantidad | Valor total | Prob. promedio      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: leyenda                                             │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/crm-api/internal/application/analytics"
	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorLight   = &props.Color{Red: 235, Green: 241, Blue: 247}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

var stageLabels = map[string]string{
	entity.StageLead:        "Lead",
	entity.StageQualified:   "Calificada",
	entity.StageProposal:    "Propuesta",
	entity.StageNegotiation: "Negociación",
	entity.StageClosedWon:   "Cerrada ganada",
	entity.StageClosedLost:  "Cerrada perdida",
}

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoReportGenerator implementa analytics.PipelineReportGenerator usando Maroto v2.
type MarotoReportGenerator struct {
	company string
}

var _ analytics.PipelineReportGenerator = (*MarotoReportGenerator)(nil)

// NewMarotoReportGenerator construye el generador. company aparece como autor y en el encabezado.
func NewMarotoReportGenerator(company string) *MarotoReportGenerator {
	return &MarotoReportGenerator{company: company}
}

// GeneratePipelineReport genera el PDF y devuelve sus bytes.
func (g *MarotoReportGenerator) GeneratePipelineReport(ctx context.Context, report *analytics.PipelineReport) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de pipeline", true).
		WithAuthor(nonEmpty(g.company, "CRM"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.company, report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(report.Stats))
	m.AddRows(metricsRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableStageRows(report.Pipeline) {
		m.AddRows(r)
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(tableTotalRow(report.Pipeline))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow())

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: nombre de la empresa + título (izq) y fecha de generación (der).
func headerRow(company string, report *analytics.PipelineReport) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(company, "CRM"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Reporte de pipeline comercial", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("GENERADO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(report.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 7,
			}),
			text.New("UTC", props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// summaryRow: un bloque por entidad.
func summaryRow(s dto.DashboardStatsResponse) core.Row {
	box := func(label string, total int) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Center, Color: colorPrimary, Top: 2,
			}),
			text.New(fmt.Sprint(total), props.Text{
				Style: fontstyle.Bold, Size: 14, Align: align.Center, Top: 7,
			}),
		)
	}
	return row.New(18).Add(
		box("CLIENTES", s.Customers.Total),
		box("OPORTUNIDADES", s.Opportunities.Total),
		box("ACTIVIDADES", s.Activities.Total),
		box("INTERACCIONES", s.Interactions.Total),
	)
}

// metricsRow: tasa de conversión y valores del pipeline.
func metricsRow(report *analytics.PipelineReport) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("MÉTRICAS", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Conversión: %s   |   Ganadas: %d de %d   |   Valor total: $%s   |   Valor ganado: $%s",
				percent(report.Metrics.ConversionRate, 2),
				report.Metrics.OpportunityCounts.Won,
				report.Metrics.OpportunityCounts.Total,
				formatMoney(report.Stats.Opportunities.TotalValue),
				formatMoney(report.Stats.Opportunities.WonValue),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de etapas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Etapa", 4, align.Left),
		h("Cantidad", 2, align.Center),
		h("Valor total", 3, align.Right),
		h("Prob. promedio", 3, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// tableStageRows: una fila por etapa, alternando fondo.
func tableStageRows(stages []dto.PipelineStageDTO) []core.Row {
	result := make([]core.Row, 0, len(stages))
	for i, s := range stages {
		r := row.New(7).Add(
			col.New(4).Add(text.New(
				stageLabel(s.Stage),
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				fmt.Sprint(s.Count),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(3).Add(text.New(
				"$"+formatMoney(s.TotalValue),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(3).Add(text.New(
				percent(s.AvgProbability, 1),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		)
		if i%2 == 1 {
			r = r.WithStyle(&props.Cell{BackgroundColor: colorLight})
		}
		result = append(result, r)
	}
	return result
}

// tableTotalRow: totales de la tabla.
func tableTotalRow(stages []dto.PipelineStageDTO) core.Row {
	count := 0
	total := decimal.Zero
	for _, s := range stages {
		count += s.Count
		total = total.Add(s.TotalValue)
	}
	bold := func(s string, a align.Type) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: a, Color: colorPrimary, Top: 1, Left: 1, Right: 1,
		})
	}
	return row.New(8).Add(
		col.New(4).Add(bold("TOTAL", align.Left)),
		col.New(2).Add(bold(fmt.Sprint(count), align.Center)),
		col.New(3).Add(bold("$"+formatMoney(total), align.Right)),
		col.New(3),
	)
}

func footerRow() core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(
			"Valores sin oportunidades asignadas cuentan como 0. "+
				"La probabilidad promedio se calcula sobre las oportunidades de cada etapa.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func stageLabel(stage string) string {
	if l, ok := stageLabels[stage]; ok {
		return l
	}
	return stage
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney redondea a entero e inserta puntos de miles.
// Ej: 25000 → "25.000", 1000000.4 → "1.000.000"
func formatMoney(d decimal.Decimal) string {
	digits := d.Abs().StringFixed(0)
	var sb strings.Builder
	if d.Round(0).IsNegative() {
		sb.WriteByte('-')
	}
	head := len(digits) % 3
	if head == 0 {
		head = 3
	}
	sb.WriteString(digits[:head])
	for i := head; i < len(digits); i += 3 {
		sb.WriteByte('.')
		sb.WriteString(digits[i : i+3])
	}
	return sb.String()
}

var esPrinter = message.NewPrinter(language.Spanish)

// percent usa coma decimal: 26.67 → "26,67%".
func percent(d decimal.Decimal, places int32) string {
	f, _ := d.Round(places).Float64()
	if places == 1 {
		return esPrinter.Sprintf("%.1f%%", f)
	}
	return esPrinter.Sprintf("%.2f%%", f)
}
