package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// CreateOpportunityRequest entrada para crear una oportunidad.
type CreateOpportunityRequest struct {
	Title             string           `json:"title" validate:"required,notblank,max=255"`
	Description       string           `json:"description"`
	Value             *decimal.Decimal `json:"value"`
	Stage             string           `json:"stage" validate:"omitempty,oneof=lead qualified proposal negotiation closed-won closed-lost"`
	Probability       *int             `json:"probability" validate:"omitempty,gte=0,lte=100"`
	ExpectedCloseDate *time.Time       `json:"expectedCloseDate"`
	Source            string           `json:"source" validate:"max=100"`
	Tags              []string         `json:"tags" validate:"omitempty,max=20,dive,max=50"`
	CustomerID        int64            `json:"customerId" validate:"required,gt=0"`
}

// UpdateOpportunityRequest merge-patch de una oportunidad.
type UpdateOpportunityRequest struct {
	Title             *string          `json:"title" validate:"omitempty,notblank,max=255"`
	Description       *string          `json:"description"`
	Value             *decimal.Decimal `json:"value"`
	Stage             *string          `json:"stage" validate:"omitempty,oneof=lead qualified proposal negotiation closed-won closed-lost"`
	Probability       *int             `json:"probability" validate:"omitempty,gte=0,lte=100"`
	ExpectedCloseDate *time.Time       `json:"expectedCloseDate"`
	Source            *string          `json:"source" validate:"omitempty,max=100"`
	LossReason        *string          `json:"lossReason"`
	Tags              []string         `json:"tags" validate:"omitempty,max=20,dive,max=50"`
	CustomerID        *int64           `json:"customerId" validate:"omitempty,gt=0"`
}

// CloseOpportunityRequest entrada de POST /opportunities/:id/close.
type CloseOpportunityRequest struct {
	Won    *bool  `json:"won" validate:"required"`
	Reason string `json:"reason"`
}

// OpportunityListQuery filtros crudos de GET /opportunities.
type OpportunityListQuery struct {
	Search     string
	Stage      string
	CustomerID string
	PageRequest
	DateRangeRequest
}

// Filter valida y convierte la consulta.
func (q OpportunityListQuery) Filter() (repository.OpportunityFilter, error) {
	v := &domain.ValidationError{}
	f := repository.OpportunityFilter{
		Search:     q.Search,
		Stage:      oneOf("stage", q.Stage, entity.OpportunityStages, v),
		CustomerID: optionalID("customerId", q.CustomerID, v),
		Created:    q.Range(v),
		PageParams: q.Params(DefaultOpportunityLim, v),
	}
	return f, v.OrNil()
}

// OpportunityResponse salida de una oportunidad con sus campos derivados.
type OpportunityResponse struct {
	ID                int64                `json:"id"`
	Title             string               `json:"title"`
	Description       string               `json:"description"`
	Value             *decimal.Decimal     `json:"value"`
	DisplayValue      string               `json:"displayValue"`
	Stage             string               `json:"stage"`
	Probability       int                  `json:"probability"`
	ExpectedCloseDate *time.Time           `json:"expectedCloseDate"`
	ActualCloseDate   *time.Time           `json:"actualCloseDate"`
	Source            string               `json:"source"`
	LossReason        string               `json:"lossReason"`
	Tags              []string             `json:"tags"`
	CustomerID        int64                `json:"customerId"`
	Customer          *CustomerRefResponse `json:"customer,omitempty"`
	Activities        []ActivityResponse   `json:"activities,omitempty"`
	IsClosed          bool                 `json:"isClosed"`
	IsWon             bool                 `json:"isWon"`
	IsOverdue         bool                 `json:"isOverdue"`
	DaysToClose       *int                 `json:"daysToClose"`
	CreatedAt         time.Time            `json:"createdAt"`
	UpdatedAt         time.Time            `json:"updatedAt"`
}

// OpportunityListResponse página de oportunidades.
type OpportunityListResponse struct {
	Opportunities []OpportunityResponse `json:"opportunities"`
	Pagination    PaginationResponse    `json:"pagination"`
}

// OpportunityMutationResponse respuesta de create/update/close.
type OpportunityMutationResponse struct {
	Message     string              `json:"message"`
	Opportunity OpportunityResponse `json:"opportunity"`
}

// OpportunitiesResponse lista sin paginar (por etapa).
type OpportunitiesResponse struct {
	Opportunities []OpportunityResponse `json:"opportunities"`
}
