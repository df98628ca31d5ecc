package usecase

import (
	"context"
	"strings"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// OpportunityUseCase casos de uso de oportunidades.
type OpportunityUseCase struct {
	repo      repository.OpportunityRepository
	customers repository.CustomerRepository
	tx        TxRunner
	now       Clock
}

// NewOpportunityUseCase construye el caso de uso.
func NewOpportunityUseCase(repo repository.OpportunityRepository, customers repository.CustomerRepository, tx TxRunner, now Clock) *OpportunityUseCase {
	return &OpportunityUseCase{repo: repo, customers: customers, tx: tx, now: now.orDefault()}
}

// List devuelve una página de oportunidades con cliente y actividades.
func (uc *OpportunityUseCase) List(ctx context.Context, q dto.OpportunityListQuery) (*dto.OpportunityListResponse, error) {
	f, err := q.Filter()
	if err != nil {
		return nil, err
	}
	return uc.list(ctx, f)
}

// ListForCustomer oportunidades de un cliente (404 si el cliente no existe).
func (uc *OpportunityUseCase) ListForCustomer(ctx context.Context, customerID int64, q dto.OpportunityListQuery) (*dto.OpportunityListResponse, error) {
	q.CustomerID = ""
	f, err := q.Filter()
	if err != nil {
		return nil, err
	}
	if err := ensureCustomer(ctx, uc.customers, customerID); err != nil {
		return nil, err
	}
	f.CustomerID = &customerID
	return uc.list(ctx, f)
}

func (uc *OpportunityUseCase) list(ctx context.Context, f repository.OpportunityFilter) (*dto.OpportunityListResponse, error) {
	list, total, err := uc.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &dto.OpportunityListResponse{
		Opportunities: dto.ToOpportunityResponses(list, uc.now()),
		Pagination:    dto.NewPagination(total, f.PageParams),
	}, nil
}

// GetByID devuelve la oportunidad o ErrNotFound.
func (uc *OpportunityUseCase) GetByID(ctx context.Context, id int64) (*dto.OpportunityResponse, error) {
	o, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.ToOpportunityResponse(o, uc.now())
	return &out, nil
}

func (uc *OpportunityUseCase) get(ctx context.Context, id int64) (*entity.Opportunity, error) {
	o, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

// Create valida y crea la oportunidad. El cliente debe existir.
func (uc *OpportunityUseCase) Create(ctx context.Context, in dto.CreateOpportunityRequest) (*dto.OpportunityResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	v := &domain.ValidationError{}
	checkMoney("value", in.Value, v)
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	if err := ensureCustomer(ctx, uc.customers, in.CustomerID); err != nil {
		return nil, err
	}
	stage := in.Stage
	if stage == "" {
		stage = entity.StageLead
	}
	o := &entity.Opportunity{
		Title:             strings.TrimSpace(in.Title),
		Description:       in.Description,
		Value:             toNullDecimal(in.Value),
		Stage:             stage,
		ExpectedCloseDate: in.ExpectedCloseDate,
		Source:            in.Source,
		Tags:              dto.NonNilTags(in.Tags),
		CustomerID:        in.CustomerID,
	}
	if in.Probability != nil {
		o.Probability = *in.Probability
	}
	if err := uc.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, o.ID)
}

// Update aplica merge-patch. La etapa se puede cambiar libremente; solo Close aplica los efectos de cierre.
func (uc *OpportunityUseCase) Update(ctx context.Context, id int64, in dto.UpdateOpportunityRequest) (*dto.OpportunityResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	v := &domain.ValidationError{}
	checkMoney("value", in.Value, v)
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	o, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.CustomerID != nil && *in.CustomerID != o.CustomerID {
		if err := ensureCustomer(ctx, uc.customers, *in.CustomerID); err != nil {
			return nil, err
		}
		o.CustomerID = *in.CustomerID
	}
	if in.Title != nil {
		o.Title = strings.TrimSpace(*in.Title)
	}
	set(&o.Description, in.Description)
	set(&o.Stage, in.Stage)
	set(&o.Probability, in.Probability)
	set(&o.Source, in.Source)
	set(&o.LossReason, in.LossReason)
	if in.Value != nil {
		o.Value = toNullDecimal(in.Value)
	}
	if in.ExpectedCloseDate != nil {
		o.ExpectedCloseDate = in.ExpectedCloseDate
	}
	if in.Tags != nil {
		o.Tags = in.Tags
	}
	if err := uc.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, id)
}

// Close cierra la oportunidad como ganada o perdida.
func (uc *OpportunityUseCase) Close(ctx context.Context, id int64, in dto.CloseOpportunityRequest) (*dto.OpportunityResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	o, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Close(*in.Won, strings.TrimSpace(in.Reason), uc.now())
	if err := uc.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	out := dto.ToOpportunityResponse(o, uc.now())
	return &out, nil
}

// ListByStage oportunidades de una etapa, ordenadas por fecha esperada de cierre.
func (uc *OpportunityUseCase) ListByStage(ctx context.Context, stage string) (*dto.OpportunitiesResponse, error) {
	if !entity.IsValidStage(stage) {
		return nil, domain.NewValidationError("stage", "debe ser uno de: "+strings.Join(entity.OpportunityStages, ", "))
	}
	list, err := uc.repo.ListByStage(ctx, stage)
	if err != nil {
		return nil, err
	}
	return &dto.OpportunitiesResponse{Opportunities: dto.ToOpportunityResponses(list, uc.now())}, nil
}

// Delete elimina la oportunidad si no tiene actividades.
func (uc *OpportunityUseCase) Delete(ctx context.Context, id int64) error {
	return uc.tx.Run(ctx, func(_ repository.CustomerRepository, opportunities repository.OpportunityRepository) error {
		o, err := opportunities.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.ErrNotFound
		}
		n, err := opportunities.CountActivities(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return &domain.DependencyError{Entity: "oportunidad", Name: o.Title, Activities: n}
		}
		return opportunities.Delete(ctx, id)
	})
}

// ensureOpportunity devuelve ErrNotFound si la oportunidad no existe.
func ensureOpportunity(ctx context.Context, repo repository.OpportunityRepository, id int64) error {
	ok, err := repo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}
