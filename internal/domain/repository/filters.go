package repository

import "time"

// PageParams paginación ya validada por la capa de aplicación (page >= 1, 1 <= limit <= 100).
type PageParams struct {
	Page  int
	Limit int
}

// Offset desplazamiento para LIMIT/OFFSET.
func (p PageParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// DateRange rango inclusivo. Solo se aplica cuando ambos extremos están presentes.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// Complete indica si el rango tiene ambos extremos.
func (r DateRange) Complete() bool { return r.Start != nil && r.End != nil }

// CustomerFilter filtros de listado de clientes. Campos vacíos no filtran.
type CustomerFilter struct {
	Search   string // name, company, email
	Status   string
	Industry string
	Created  DateRange
	PageParams
}

// OpportunityFilter filtros de listado de oportunidades.
type OpportunityFilter struct {
	Search     string // title, description
	Stage      string
	CustomerID *int64
	Created    DateRange
	PageParams
}

// ActivityFilter filtros de listado de actividades.
// OverdueAt reemplaza el filtro status=overdue: pending con due_date anterior al instante dado.
// PendingAt acompaña a status=pending y excluye las que ya vencieron en ese instante.
// OpenOnly restringe a pending e in_progress.
type ActivityFilter struct {
	Search        string // title, description
	Status        string
	Type          string
	Priority      string
	CustomerID    *int64
	OpportunityID *int64
	AssignedToID  *int64
	OverdueAt     *time.Time
	PendingAt     *time.Time
	OpenOnly      bool
	Due           DateRange
	PageParams
}

// InteractionFilter filtros de listado de interacciones.
type InteractionFilter struct {
	Search        string // subject, description
	Type          string
	Direction     string
	CustomerID    *int64
	UserID        *int64
	Important     *bool
	NeedsFollowUp *bool
	Since         *time.Time // date >= Since
	Created       DateRange
	PageParams
}
