package entity

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Etapas del pipeline de ventas.
const (
	StageLead        = "lead"
	StageQualified   = "qualified"
	StageProposal    = "proposal"
	StageNegotiation = "negotiation"
	StageClosedWon   = "closed-won"
	StageClosedLost  = "closed-lost"
)

// OpportunityStages el enum completo, en orden de pipeline.
// El breakdown del dashboard siempre devuelve una fila por cada valor.
var OpportunityStages = []string{
	StageLead, StageQualified, StageProposal, StageNegotiation, StageClosedWon, StageClosedLost,
}

var stageProbability = map[string]int{
	StageLead:        10,
	StageQualified:   25,
	StageProposal:    50,
	StageNegotiation: 75,
	StageClosedWon:   100,
	StageClosedLost:  0,
}

var usdPrinter = message.NewPrinter(language.AmericanEnglish)

// Opportunity representa una oportunidad de venta de un cliente.
type Opportunity struct {
	ID                int64
	Title             string
	Description       string
	Value             decimal.NullDecimal // NUMERIC(15,2), nulo = sin estimar
	Stage             string
	Probability       int // 0-100
	ExpectedCloseDate *time.Time
	ActualCloseDate   *time.Time
	Source            string
	LossReason        string
	Tags              []string
	CustomerID        int64
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// Relaciones
	Customer   *CustomerRef
	Activities []*Activity
}

// IsClosed true en closed-won o closed-lost.
func (o *Opportunity) IsClosed() bool {
	return o.Stage == StageClosedWon || o.Stage == StageClosedLost
}

func (o *Opportunity) IsWon() bool    { return o.Stage == StageClosedWon }
func (o *Opportunity) IsLost() bool   { return o.Stage == StageClosedLost }
func (o *Opportunity) IsActive() bool { return !o.IsClosed() }

// ValueOrZero devuelve el valor o 0 si es nulo.
func (o *Opportunity) ValueOrZero() decimal.Decimal {
	if o.Value.Valid {
		return o.Value.Decimal
	}
	return decimal.Zero
}

// Close cierra la oportunidad como ganada o perdida.
// Ganada: probability=100. Perdida: probability=0 y lossReason=reason (si viene).
func (o *Opportunity) Close(won bool, reason string, now time.Time) {
	if won {
		o.Stage = StageClosedWon
		o.Probability = 100
	} else {
		o.Stage = StageClosedLost
		o.Probability = 0
		if reason != "" {
			o.LossReason = reason
		}
	}
	o.ActualCloseDate = &now
}

// DaysToClose días hasta la fecha esperada de cierre; nil si no hay fecha o ya está cerrada.
func (o *Opportunity) DaysToClose(now time.Time) *int {
	if o.ExpectedCloseDate == nil || o.IsClosed() {
		return nil
	}
	days := int(math.Ceil(o.ExpectedCloseDate.Sub(now).Hours() / 24))
	return &days
}

// IsOverdue activa y con fecha esperada de cierre vencida.
func (o *Opportunity) IsOverdue(now time.Time) bool {
	d := o.DaysToClose(now)
	return d != nil && *d < 0
}

// DisplayValue valor en USD con separadores de miles, ej: "$1,250.00". "N/A" si no hay valor.
func (o *Opportunity) DisplayValue() string {
	if !o.Value.Valid || o.Value.Decimal.IsZero() {
		return "N/A"
	}
	f, _ := o.Value.Decimal.Round(2).Float64()
	return usdPrinter.Sprintf("$%.2f", f)
}

// ProbabilityForStage probabilidad sugerida para una etapa.
func ProbabilityForStage(stage string) int {
	return stageProbability[stage]
}

// UpdateProbabilityByStage ajusta la probabilidad según la etapa actual.
func (o *Opportunity) UpdateProbabilityByStage() {
	if p, ok := stageProbability[o.Stage]; ok {
		o.Probability = p
	}
}

// OpportunityRef resumen de oportunidad para relaciones.
type OpportunityRef struct {
	ID    int64
	Title string
	Stage string
}

// IsValidStage valida la etapa.
func IsValidStage(s string) bool { return contains(OpportunityStages, s) }
