package usecase

import (
	"context"
	"strings"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// CustomerUseCase casos de uso de clientes. El borrado corre en transacción y
// se bloquea con 409 si el cliente tiene registros dependientes.
type CustomerUseCase struct {
	repo repository.CustomerRepository
	tx   TxRunner
	now  Clock
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(repo repository.CustomerRepository, tx TxRunner, now Clock) *CustomerUseCase {
	return &CustomerUseCase{repo: repo, tx: tx, now: now.orDefault()}
}

// List devuelve una página de clientes con el total sin paginar.
func (uc *CustomerUseCase) List(ctx context.Context, q dto.CustomerListQuery) (*dto.CustomerListResponse, error) {
	f, err := q.Filter()
	if err != nil {
		return nil, err
	}
	list, total, err := uc.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &dto.CustomerListResponse{
		Customers:  dto.ToCustomerResponses(list, uc.now()),
		Pagination: dto.NewPagination(total, f.PageParams),
	}, nil
}

// GetByID devuelve el cliente con oportunidades e interacciones.
func (uc *CustomerUseCase) GetByID(ctx context.Context, id int64) (*dto.CustomerResponse, error) {
	c, err := uc.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrCustomerNotFound
	}
	out := dto.ToCustomerResponse(c, uc.now())
	return &out, nil
}

// Create valida y persiste un cliente nuevo (status por defecto prospect).
func (uc *CustomerUseCase) Create(ctx context.Context, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	v := &domain.ValidationError{}
	checkMoney("estimatedValue", in.EstimatedValue, v)
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = entity.CustomerProspect
	}
	c := &entity.Customer{
		Name:           strings.TrimSpace(in.Name),
		Company:        in.Company,
		Industry:       in.Industry,
		Email:          strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:          in.Phone,
		Address:        in.Address,
		City:           in.City,
		PostalCode:     in.PostalCode,
		State:          in.State,
		Country:        in.Country,
		Status:         status,
		Notes:          in.Notes,
		EstimatedValue: toNullDecimal(in.EstimatedValue),
		Website:        in.Website,
		EmployeeCount:  in.EmployeeCount,
		Tags:           dto.NonNilTags(in.Tags),
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	out := dto.ToCustomerResponse(c, uc.now())
	return &out, nil
}

// Update aplica merge-patch: solo se sobrescriben los campos presentes.
func (uc *CustomerUseCase) Update(ctx context.Context, id int64, in dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	v := &domain.ValidationError{}
	checkMoney("estimatedValue", in.EstimatedValue, v)
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrCustomerNotFound
	}
	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		c.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	set(&c.Company, in.Company)
	set(&c.Industry, in.Industry)
	set(&c.Phone, in.Phone)
	set(&c.Address, in.Address)
	set(&c.City, in.City)
	set(&c.PostalCode, in.PostalCode)
	set(&c.State, in.State)
	set(&c.Country, in.Country)
	set(&c.Status, in.Status)
	set(&c.Notes, in.Notes)
	set(&c.Website, in.Website)
	if in.EstimatedValue != nil {
		c.EstimatedValue = toNullDecimal(in.EstimatedValue)
	}
	if in.EmployeeCount != nil {
		c.EmployeeCount = in.EmployeeCount
	}
	if in.Tags != nil {
		c.Tags = in.Tags
	}
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	out := dto.ToCustomerResponse(c, uc.now())
	return &out, nil
}

// Delete elimina el cliente si no tiene oportunidades, actividades ni interacciones.
// La fila queda bloqueada (FOR UPDATE) entre el conteo y el borrado.
func (uc *CustomerUseCase) Delete(ctx context.Context, id int64) error {
	return uc.tx.Run(ctx, func(customers repository.CustomerRepository, _ repository.OpportunityRepository) error {
		c, err := customers.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return domain.ErrCustomerNotFound
		}
		deps, err := customers.CountDependents(ctx, id)
		if err != nil {
			return err
		}
		if deps.Any() {
			return &domain.DependencyError{
				Entity:        "cliente",
				Name:          c.Name,
				Opportunities: deps.Opportunities,
				Activities:    deps.Activities,
				Interactions:  deps.Interactions,
			}
		}
		return customers.Delete(ctx, id)
	})
}

// Stats desglose de clientes por estado.
func (uc *CustomerUseCase) Stats(ctx context.Context) (*dto.CustomerStatsResponse, error) {
	s, err := uc.repo.StatusCounts(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.CustomerStatsResponse{
		Total:     s.Total,
		Active:    s.Active,
		Prospects: s.Prospect,
		Inactive:  s.Inactive,
		Lost:      s.Lost,
	}, nil
}

// Summary cliente con conteos y valores de su pipeline.
func (uc *CustomerUseCase) Summary(ctx context.Context, id int64) (*dto.CustomerSummaryResponse, error) {
	s, err := uc.repo.Summary(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrCustomerNotFound
	}
	return &dto.CustomerSummaryResponse{
		Customer: dto.ToCustomerResponse(s.Customer, uc.now()),
		Stats: dto.CustomerSummaryStats{
			TotalOpportunities:  s.Opportunities,
			OpenOpportunities:   s.OpenOpportunities,
			TotalActivities:     s.Activities,
			PendingActivities:   s.PendingActivities,
			TotalInteractions:   s.Interactions,
			PipelineValue:       s.PipelineValue,
			WonValue:            s.WonValue,
			LastInteractionDate: s.LastInteractionDate,
		},
	}, nil
}

// ensureCustomer devuelve ErrCustomerNotFound si el cliente no existe.
func ensureCustomer(ctx context.Context, repo repository.CustomerRepository, id int64) error {
	ok, err := repo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrCustomerNotFound
	}
	return nil
}
