package dto

import (
	"time"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// CreateActivityRequest entrada para crear una actividad. overdue no es un estado asignable.
type CreateActivityRequest struct {
	Title             string     `json:"title" validate:"required,notblank,max=255"`
	Description       string     `json:"description"`
	Type              string     `json:"type" validate:"omitempty,oneof=call email meeting task note follow-up"`
	Status            string     `json:"status" validate:"omitempty,oneof=pending in_progress completed cancelled"`
	Priority          string     `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	DueDate           *time.Time `json:"dueDate"`
	EstimatedDuration *int       `json:"estimatedDuration" validate:"omitempty,gte=0"`
	Notes             string     `json:"notes"`
	Tags              []string   `json:"tags" validate:"omitempty,max=20,dive,max=50"`
	CustomerID        int64      `json:"customerId" validate:"required,gt=0"`
	OpportunityID     *int64     `json:"opportunityId" validate:"omitempty,gt=0"`
	AssignedToID      *int64     `json:"assignedToId" validate:"omitempty,gt=0"`
}

// UpdateActivityRequest merge-patch de una actividad. opportunityId o assignedToId en 0
// desvinculan la oportunidad o dejan la actividad sin asignar.
type UpdateActivityRequest struct {
	Title             *string    `json:"title" validate:"omitempty,notblank,max=255"`
	Description       *string    `json:"description"`
	Type              *string    `json:"type" validate:"omitempty,oneof=call email meeting task note follow-up"`
	Status            *string    `json:"status" validate:"omitempty,oneof=pending in_progress completed cancelled"`
	Priority          *string    `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	DueDate           *time.Time `json:"dueDate"`
	EstimatedDuration *int       `json:"estimatedDuration" validate:"omitempty,gte=0"`
	ActualDuration    *int       `json:"actualDuration" validate:"omitempty,gte=0"`
	Result            *string    `json:"result"`
	Notes             *string    `json:"notes"`
	Tags              []string   `json:"tags" validate:"omitempty,max=20,dive,max=50"`
	CustomerID        *int64     `json:"customerId" validate:"omitempty,gt=0"`
	OpportunityID     *int64     `json:"opportunityId" validate:"omitnil,gte=0"`
	AssignedToID      *int64     `json:"assignedToId" validate:"omitnil,gte=0"`
}

// CompleteActivityRequest entrada de POST /activities/:id/complete.
type CompleteActivityRequest struct {
	Result         string `json:"result"`
	ActualDuration *int   `json:"actualDuration" validate:"omitempty,gte=0"`
}

// CancelActivityRequest entrada de POST /activities/:id/cancel.
type CancelActivityRequest struct {
	Reason string `json:"reason"`
}

// ActivityListQuery filtros crudos de GET /activities.
type ActivityListQuery struct {
	Search        string
	Status        string
	Type          string
	Priority      string
	CustomerID    string
	OpportunityID string
	AssignedToID  string
	PageRequest
	DateRangeRequest
}

// Filter valida y convierte la consulta. status=overdue se traduce a pending con due_date < now;
// status=pending deja fuera esas mismas filas, que se devuelven como overdue.
func (q ActivityListQuery) Filter(now time.Time) (repository.ActivityFilter, error) {
	v := &domain.ValidationError{}
	f := repository.ActivityFilter{
		Search:        q.Search,
		Status:        oneOf("status", q.Status, entity.ActivityStatuses, v),
		Type:          oneOf("type", q.Type, entity.ActivityTypes, v),
		Priority:      oneOf("priority", q.Priority, entity.ActivityPriorities, v),
		CustomerID:    optionalID("customerId", q.CustomerID, v),
		OpportunityID: optionalID("opportunityId", q.OpportunityID, v),
		AssignedToID:  optionalID("assignedToId", q.AssignedToID, v),
		Due:           q.Range(v),
		PageParams:    q.Params(DefaultLimit, v),
	}
	switch f.Status {
	case entity.StatusOverdue:
		f.Status = ""
		f.OverdueAt = &now
	case entity.StatusPending:
		f.PendingAt = &now
	}
	return f, v.OrNil()
}

// ActivityResponse salida de una actividad. Status es el estado efectivo (overdue calculado).
type ActivityResponse struct {
	ID                int64                   `json:"id"`
	Title             string                  `json:"title"`
	Description       string                  `json:"description"`
	Type              string                  `json:"type"`
	Status            string                  `json:"status"`
	Priority          string                  `json:"priority"`
	DueDate           *time.Time              `json:"dueDate"`
	CompletedAt       *time.Time              `json:"completedAt"`
	EstimatedDuration *int                    `json:"estimatedDuration"`
	ActualDuration    *int                    `json:"actualDuration"`
	DisplayDuration   string                  `json:"displayDuration"`
	Result            string                  `json:"result"`
	Notes             string                  `json:"notes"`
	Tags              []string                `json:"tags"`
	CustomerID        int64                   `json:"customerId"`
	OpportunityID     *int64                  `json:"opportunityId"`
	AssignedToID      *int64                  `json:"assignedToId"`
	Customer          *CustomerRefResponse    `json:"customer,omitempty"`
	Opportunity       *OpportunityRefResponse `json:"opportunity,omitempty"`
	AssignedTo        *UserRefResponse        `json:"assignedTo,omitempty"`
	IsOverdue         bool                    `json:"isOverdue"`
	IsDueToday        bool                    `json:"isDueToday"`
	IsDueSoon         bool                    `json:"isDueSoon"`
	CreatedAt         time.Time               `json:"createdAt"`
	UpdatedAt         time.Time               `json:"updatedAt"`
}

// ActivityListResponse página de actividades.
type ActivityListResponse struct {
	Activities []ActivityResponse `json:"activities"`
	Pagination PaginationResponse `json:"pagination"`
}

// ActivitiesResponse lista sin paginar.
type ActivitiesResponse struct {
	Activities []ActivityResponse `json:"activities"`
}

// ActivityMutationResponse respuesta de create/update/complete/cancel.
type ActivityMutationResponse struct {
	Message  string           `json:"message"`
	Activity ActivityResponse `json:"activity"`
}
