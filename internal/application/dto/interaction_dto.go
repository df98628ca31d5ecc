package dto

import (
	"time"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// CreateInteractionRequest entrada para registrar una interacción.
// Sin userId se asigna al usuario autenticado.
type CreateInteractionRequest struct {
	Type          string     `json:"type" validate:"omitempty,oneof=phone email meeting chat social website other"`
	Direction     string     `json:"direction" validate:"omitempty,oneof=inbound outbound"`
	Subject       string     `json:"subject" validate:"max=255"`
	Description   string     `json:"description" validate:"required,notblank"`
	Notes         string     `json:"notes"`
	Date          *time.Time `json:"date" validate:"required"`
	Duration      *int       `json:"duration" validate:"omitempty,gte=0"`
	Channel       string     `json:"channel" validate:"max=100"`
	Tags          []string   `json:"tags" validate:"omitempty,max=20,dive,max=50"`
	IsImportant   bool       `json:"isImportant"`
	NeedsFollowUp bool       `json:"needsFollowUp"`
	FollowUpDate  *time.Time `json:"followUpDate"`
	CustomerID    int64      `json:"customerId" validate:"required,gt=0"`
	UserID        *int64     `json:"userId" validate:"omitempty,gt=0"`
}

// UpdateInteractionRequest merge-patch de una interacción.
type UpdateInteractionRequest struct {
	Type          *string    `json:"type" validate:"omitempty,oneof=phone email meeting chat social website other"`
	Direction     *string    `json:"direction" validate:"omitempty,oneof=inbound outbound"`
	Subject       *string    `json:"subject" validate:"omitempty,max=255"`
	Description   *string    `json:"description" validate:"omitempty,notblank"`
	Notes         *string    `json:"notes"`
	Date          *time.Time `json:"date"`
	Duration      *int       `json:"duration" validate:"omitempty,gte=0"`
	Channel       *string    `json:"channel" validate:"omitempty,max=100"`
	Tags          []string   `json:"tags" validate:"omitempty,max=20,dive,max=50"`
	IsImportant   *bool      `json:"isImportant"`
	NeedsFollowUp *bool      `json:"needsFollowUp"`
	FollowUpDate  *time.Time `json:"followUpDate"`
	CustomerID    *int64     `json:"customerId" validate:"omitempty,gt=0"`
	UserID        *int64     `json:"userId" validate:"omitempty,gt=0"`
}

// MarkImportantRequest entrada de PATCH /interactions/:id/important. Sin cuerpo marca como importante.
type MarkImportantRequest struct {
	IsImportant *bool `json:"isImportant"`
}

// FollowUpRequest entrada de PATCH /interactions/:id/follow-up.
// Con fecha programa el seguimiento; sin fecha lo da por completado.
type FollowUpRequest struct {
	Date *time.Time `json:"date"`
}

// InteractionListQuery filtros crudos de GET /interactions.
type InteractionListQuery struct {
	Search        string
	Type          string
	Direction     string
	CustomerID    string
	UserID        string
	Important     string
	NeedsFollowUp string
	PageRequest
	DateRangeRequest
}

// Filter valida y convierte la consulta.
func (q InteractionListQuery) Filter() (repository.InteractionFilter, error) {
	v := &domain.ValidationError{}
	f := repository.InteractionFilter{
		Search:        q.Search,
		Type:          oneOf("type", q.Type, entity.InteractionTypes, v),
		Direction:     oneOf("direction", q.Direction, entity.InteractionDirections, v),
		CustomerID:    optionalID("customerId", q.CustomerID, v),
		UserID:        optionalID("userId", q.UserID, v),
		Important:     optionalBool("isImportant", q.Important, v),
		NeedsFollowUp: optionalBool("needsFollowUp", q.NeedsFollowUp, v),
		Created:       q.Range(v),
		PageParams:    q.Params(DefaultLimit, v),
	}
	return f, v.OrNil()
}

// InteractionResponse salida de una interacción.
type InteractionResponse struct {
	ID                int64                `json:"id"`
	Type              string               `json:"type"`
	Direction         string               `json:"direction"`
	Subject           string               `json:"subject"`
	Description       string               `json:"description"`
	Notes             string               `json:"notes"`
	Date              time.Time            `json:"date"`
	Duration          *int                 `json:"duration"`
	DisplayDuration   string               `json:"displayDuration"`
	Channel           string               `json:"channel"`
	Tags              []string             `json:"tags"`
	IsImportant       bool                 `json:"isImportant"`
	NeedsFollowUp     bool                 `json:"needsFollowUp"`
	FollowUpDate      *time.Time           `json:"followUpDate"`
	IsRecent          bool                 `json:"isRecent"`
	NeedsFollowUpSoon bool                 `json:"needsFollowUpSoon"`
	IsFollowUpOverdue bool                 `json:"isFollowUpOverdue"`
	CustomerID        int64                `json:"customerId"`
	UserID            *int64               `json:"userId"`
	Customer          *CustomerRefResponse `json:"customer,omitempty"`
	User              *UserRefResponse     `json:"user,omitempty"`
	CreatedAt         time.Time            `json:"createdAt"`
	UpdatedAt         time.Time            `json:"updatedAt"`
}

// InteractionListResponse página de interacciones.
type InteractionListResponse struct {
	Interactions []InteractionResponse `json:"interactions"`
	Pagination   PaginationResponse    `json:"pagination"`
}

// InteractionMutationResponse respuesta de create/update/patch.
type InteractionMutationResponse struct {
	Message     string              `json:"message"`
	Interaction InteractionResponse `json:"interaction"`
}

// InteractionStatsResponse resumen de GET /interactions/stats/summary.
type InteractionStatsResponse struct {
	Total         int            `json:"total"`
	Important     int            `json:"important"`
	NeedsFollowUp int            `json:"needsFollowUp"`
	LastWeek      int            `json:"lastWeek"`
	ByType        map[string]int `json:"byType"`
	ByDirection   map[string]int `json:"byDirection"`
}
