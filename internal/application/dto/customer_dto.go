package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// CreateCustomerRequest entrada para crear un cliente.
type CreateCustomerRequest struct {
	Name           string           `json:"name" validate:"required,notblank,max=255"`
	Company        string           `json:"company" validate:"max=255"`
	Industry       string           `json:"industry" validate:"max=100"`
	Email          string           `json:"email" validate:"omitempty,email,max=255"`
	Phone          string           `json:"phone" validate:"max=50"`
	Address        string           `json:"address"`
	City           string           `json:"city" validate:"max=100"`
	PostalCode     string           `json:"postalCode" validate:"max=20"`
	State          string           `json:"state" validate:"max=100"`
	Country        string           `json:"country" validate:"max=100"`
	Status         string           `json:"status" validate:"omitempty,oneof=prospect active inactive lost"`
	Notes          string           `json:"notes"`
	EstimatedValue *decimal.Decimal `json:"estimatedValue"`
	Website        string           `json:"website" validate:"omitempty,url,max=255"`
	EmployeeCount  *int             `json:"employeeCount" validate:"omitempty,gte=0"`
	Tags           []string         `json:"tags" validate:"omitempty,max=20,dive,max=50"`
}

// UpdateCustomerRequest merge-patch: solo los campos presentes se sobrescriben.
type UpdateCustomerRequest struct {
	Name           *string          `json:"name" validate:"omitempty,notblank,max=255"`
	Company        *string          `json:"company" validate:"omitempty,max=255"`
	Industry       *string          `json:"industry" validate:"omitempty,max=100"`
	Email          *string          `json:"email" validate:"omitempty,email,max=255"`
	Phone          *string          `json:"phone" validate:"omitempty,max=50"`
	Address        *string          `json:"address"`
	City           *string          `json:"city" validate:"omitempty,max=100"`
	PostalCode     *string          `json:"postalCode" validate:"omitempty,max=20"`
	State          *string          `json:"state" validate:"omitempty,max=100"`
	Country        *string          `json:"country" validate:"omitempty,max=100"`
	Status         *string          `json:"status" validate:"omitempty,oneof=prospect active inactive lost"`
	Notes          *string          `json:"notes"`
	EstimatedValue *decimal.Decimal `json:"estimatedValue"`
	Website        *string          `json:"website" validate:"omitempty,url,max=255"`
	EmployeeCount  *int             `json:"employeeCount" validate:"omitempty,gte=0"`
	Tags           []string         `json:"tags" validate:"omitempty,max=20,dive,max=50"`
}

// CustomerListQuery filtros crudos de GET /customers.
type CustomerListQuery struct {
	Search   string
	Status   string
	Industry string
	PageRequest
	DateRangeRequest
}

// Filter valida y convierte la consulta en filtro de repositorio.
func (q CustomerListQuery) Filter() (repository.CustomerFilter, error) {
	v := &domain.ValidationError{}
	f := repository.CustomerFilter{
		Search:     q.Search,
		Status:     oneOf("status", q.Status, entity.CustomerStatuses, v),
		Industry:   q.Industry,
		Created:    q.Range(v),
		PageParams: q.Params(DefaultLimit, v),
	}
	return f, v.OrNil()
}

// CustomerResponse salida de un cliente.
type CustomerResponse struct {
	ID             int64                 `json:"id"`
	Name           string                `json:"name"`
	Company        string                `json:"company"`
	Industry       string                `json:"industry"`
	Email          string                `json:"email"`
	Phone          string                `json:"phone"`
	Address        string                `json:"address"`
	City           string                `json:"city"`
	PostalCode     string                `json:"postalCode"`
	State          string                `json:"state"`
	Country        string                `json:"country"`
	Status         string                `json:"status"`
	Notes          string                `json:"notes"`
	EstimatedValue *decimal.Decimal      `json:"estimatedValue"`
	Website        string                `json:"website"`
	EmployeeCount  *int                  `json:"employeeCount"`
	Tags           []string              `json:"tags"`
	DisplayName    string                `json:"displayName"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
	Opportunities  []OpportunityResponse `json:"opportunities,omitempty"`
	Interactions   []InteractionResponse `json:"interactions,omitempty"`
}

// CustomerListResponse página de clientes.
type CustomerListResponse struct {
	Customers  []CustomerResponse `json:"customers"`
	Pagination PaginationResponse `json:"pagination"`
}

// CustomerMutationResponse respuesta de create/update.
type CustomerMutationResponse struct {
	Message  string           `json:"message"`
	Customer CustomerResponse `json:"customer"`
}

// CustomerStatsResponse desglose por estado.
type CustomerStatsResponse struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Prospects int `json:"prospects"`
	Inactive  int `json:"inactive"`
	Lost      int `json:"lost"`
}

// CustomerSummaryResponse cliente con sus agregados.
type CustomerSummaryResponse struct {
	Customer CustomerResponse     `json:"customer"`
	Stats    CustomerSummaryStats `json:"stats"`
}

// CustomerSummaryStats agregados de un cliente.
type CustomerSummaryStats struct {
	TotalOpportunities  int             `json:"totalOpportunities"`
	OpenOpportunities   int             `json:"openOpportunities"`
	TotalActivities     int             `json:"totalActivities"`
	PendingActivities   int             `json:"pendingActivities"`
	TotalInteractions   int             `json:"totalInteractions"`
	PipelineValue       decimal.Decimal `json:"pipelineValue"` // oportunidades abiertas
	WonValue            decimal.Decimal `json:"wonValue"`
	LastInteractionDate *time.Time      `json:"lastInteractionDate"`
}
