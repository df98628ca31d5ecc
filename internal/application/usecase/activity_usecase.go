package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// dueListLimit tope de las listas sin paginar (vencen hoy / vencidas).
const dueListLimit = 100

// ActivityUseCase casos de uso de actividades. El estado overdue no se persiste:
// se calcula al leer y como filtro se traduce a pending con due_date < now.
type ActivityUseCase struct {
	repo          repository.ActivityRepository
	customers     repository.CustomerRepository
	opportunities repository.OpportunityRepository
	users         repository.UserRepository
	now           Clock
}

// NewActivityUseCase construye el caso de uso.
func NewActivityUseCase(
	repo repository.ActivityRepository,
	customers repository.CustomerRepository,
	opportunities repository.OpportunityRepository,
	users repository.UserRepository,
	now Clock,
) *ActivityUseCase {
	return &ActivityUseCase{repo: repo, customers: customers, opportunities: opportunities, users: users, now: now.orDefault()}
}

// List página de actividades. Un usuario no admin solo ve las que tiene asignadas.
func (uc *ActivityUseCase) List(ctx context.Context, actor Actor, q dto.ActivityListQuery) (*dto.ActivityListResponse, error) {
	now := uc.now()
	f, err := q.Filter(now)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		f.AssignedToID = &actor.ID
	}
	return uc.list(ctx, f, now)
}

// ListForCustomer actividades de un cliente.
func (uc *ActivityUseCase) ListForCustomer(ctx context.Context, customerID int64, q dto.ActivityListQuery) (*dto.ActivityListResponse, error) {
	now := uc.now()
	q.CustomerID = ""
	f, err := q.Filter(now)
	if err != nil {
		return nil, err
	}
	if err := ensureCustomer(ctx, uc.customers, customerID); err != nil {
		return nil, err
	}
	f.CustomerID = &customerID
	return uc.list(ctx, f, now)
}

// ListForOpportunity actividades de una oportunidad.
func (uc *ActivityUseCase) ListForOpportunity(ctx context.Context, opportunityID int64, q dto.ActivityListQuery) (*dto.ActivityListResponse, error) {
	now := uc.now()
	q.OpportunityID = ""
	f, err := q.Filter(now)
	if err != nil {
		return nil, err
	}
	if err := ensureOpportunity(ctx, uc.opportunities, opportunityID); err != nil {
		return nil, err
	}
	f.OpportunityID = &opportunityID
	return uc.list(ctx, f, now)
}

// ListForUser actividades asignadas a un usuario.
func (uc *ActivityUseCase) ListForUser(ctx context.Context, userID int64, q dto.ActivityListQuery) (*dto.ActivityListResponse, error) {
	now := uc.now()
	q.AssignedToID = ""
	f, err := q.Filter(now)
	if err != nil {
		return nil, err
	}
	if err := ensureUser(ctx, uc.users, userID); err != nil {
		return nil, err
	}
	f.AssignedToID = &userID
	return uc.list(ctx, f, now)
}

func (uc *ActivityUseCase) list(ctx context.Context, f repository.ActivityFilter, now time.Time) (*dto.ActivityListResponse, error) {
	list, total, err := uc.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &dto.ActivityListResponse{
		Activities: dto.ToActivityResponses(list, now),
		Pagination: dto.NewPagination(total, f.PageParams),
	}, nil
}

// DueToday actividades abiertas que vencen hoy (UTC).
func (uc *ActivityUseCase) DueToday(ctx context.Context, actor Actor) (*dto.ActivitiesResponse, error) {
	now := uc.now()
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	end := start.Add(24*time.Hour - time.Nanosecond)
	return uc.unpaged(ctx, actor, repository.ActivityFilter{
		OpenOnly: true,
		Due:      repository.DateRange{Start: &start, End: &end},
	}, now)
}

// Overdue actividades pending con due_date anterior a ahora.
func (uc *ActivityUseCase) Overdue(ctx context.Context, actor Actor) (*dto.ActivitiesResponse, error) {
	now := uc.now()
	return uc.unpaged(ctx, actor, repository.ActivityFilter{OverdueAt: &now}, now)
}

func (uc *ActivityUseCase) unpaged(ctx context.Context, actor Actor, f repository.ActivityFilter, now time.Time) (*dto.ActivitiesResponse, error) {
	if !actor.IsAdmin() {
		f.AssignedToID = &actor.ID
	}
	f.PageParams = repository.PageParams{Page: 1, Limit: dueListLimit}
	list, _, err := uc.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &dto.ActivitiesResponse{Activities: dto.ToActivityResponses(list, now)}, nil
}

// GetByID devuelve la actividad o ErrNotFound.
func (uc *ActivityUseCase) GetByID(ctx context.Context, id int64) (*dto.ActivityResponse, error) {
	a, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.ToActivityResponse(a, uc.now())
	return &out, nil
}

func (uc *ActivityUseCase) get(ctx context.Context, id int64) (*entity.Activity, error) {
	a, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.ErrNotFound
	}
	return a, nil
}

// Create valida y crea la actividad. Sin assignedToId se asigna al actor.
func (uc *ActivityUseCase) Create(ctx context.Context, actor Actor, in dto.CreateActivityRequest) (*dto.ActivityResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if err := uc.checkParents(ctx, &in.CustomerID, in.OpportunityID, in.AssignedToID); err != nil {
		return nil, err
	}
	now := uc.now()
	a := &entity.Activity{
		Title:             strings.TrimSpace(in.Title),
		Description:       in.Description,
		Type:              orDefault(in.Type, entity.ActivityTask),
		Status:            orDefault(in.Status, entity.StatusPending),
		Priority:          orDefault(in.Priority, entity.PriorityMedium),
		DueDate:           in.DueDate,
		EstimatedDuration: in.EstimatedDuration,
		Notes:             in.Notes,
		Tags:              dto.NonNilTags(in.Tags),
		CustomerID:        in.CustomerID,
		OpportunityID:     in.OpportunityID,
		AssignedToID:      in.AssignedToID,
	}
	if a.AssignedToID == nil && actor.ID > 0 {
		id := actor.ID
		a.AssignedToID = &id
	}
	if a.Status == entity.StatusCompleted {
		a.CompletedAt = &now
	}
	if err := uc.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, a.ID)
}

// Update aplica merge-patch. Un cambio de estado debe respetar la máquina de estados.
func (uc *ActivityUseCase) Update(ctx context.Context, id int64, in dto.UpdateActivityRequest) (*dto.ActivityResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	a, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	var customerID *int64
	if in.CustomerID != nil && *in.CustomerID != a.CustomerID {
		customerID = in.CustomerID
	}
	if err := uc.checkParents(ctx, customerID, changedRef(in.OpportunityID, a.OpportunityID), changedRef(in.AssignedToID, a.AssignedToID)); err != nil {
		return nil, err
	}

	now := uc.now()
	if in.Status != nil && *in.Status != a.Status {
		if !entity.CanTransitionActivity(a.Status, *in.Status) {
			return nil, fmt.Errorf("%w: %s → %s", domain.ErrInvalidTransition, a.Status, *in.Status)
		}
		a.Status = *in.Status
		if a.Status == entity.StatusCompleted {
			a.CompletedAt = &now
		}
	}
	if in.Title != nil {
		a.Title = strings.TrimSpace(*in.Title)
	}
	set(&a.Description, in.Description)
	set(&a.Type, in.Type)
	set(&a.Priority, in.Priority)
	set(&a.Result, in.Result)
	set(&a.Notes, in.Notes)
	set(&a.CustomerID, in.CustomerID)
	if in.DueDate != nil {
		a.DueDate = in.DueDate
	}
	if in.EstimatedDuration != nil {
		a.EstimatedDuration = in.EstimatedDuration
	}
	if in.ActualDuration != nil {
		a.ActualDuration = in.ActualDuration
	}
	a.OpportunityID = patchRef(a.OpportunityID, in.OpportunityID)
	a.AssignedToID = patchRef(a.AssignedToID, in.AssignedToID)
	if in.Tags != nil {
		a.Tags = in.Tags
	}
	if err := uc.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, id)
}

// Complete marca la actividad como completada, sin importar el estado previo.
func (uc *ActivityUseCase) Complete(ctx context.Context, id int64, in dto.CompleteActivityRequest) (*dto.ActivityResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	a, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	a.Complete(strings.TrimSpace(in.Result), in.ActualDuration, now)
	if err := uc.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	out := dto.ToActivityResponse(a, now)
	return &out, nil
}

// Cancel marca la actividad como cancelada y anota el motivo.
func (uc *ActivityUseCase) Cancel(ctx context.Context, id int64, in dto.CancelActivityRequest) (*dto.ActivityResponse, error) {
	a, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Cancel(strings.TrimSpace(in.Reason))
	if err := uc.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	out := dto.ToActivityResponse(a, uc.now())
	return &out, nil
}

// Delete elimina la actividad.
func (uc *ActivityUseCase) Delete(ctx context.Context, id int64) error {
	ok, err := uc.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

// checkParents verifica que existan las referencias indicadas (nil no se verifica).
func (uc *ActivityUseCase) checkParents(ctx context.Context, customerID, opportunityID, assignedToID *int64) error {
	if customerID != nil {
		if err := ensureCustomer(ctx, uc.customers, *customerID); err != nil {
			return err
		}
	}
	if opportunityID != nil {
		if err := ensureOpportunity(ctx, uc.opportunities, *opportunityID); err != nil {
			return err
		}
	}
	if assignedToID != nil {
		if err := ensureUser(ctx, uc.users, *assignedToID); err != nil {
			return err
		}
	}
	return nil
}

// changedRef id que hay que verificar: nil si no viene, es 0 o no cambia.
func changedRef(in, current *int64) *int64 {
	if in == nil || *in == 0 || (current != nil && *in == *current) {
		return nil
	}
	return in
}

// patchRef aplica una referencia opcional del merge-patch; 0 la quita.
func patchRef(current, in *int64) *int64 {
	switch {
	case in == nil:
		return current
	case *in == 0:
		return nil
	}
	return in
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
