package usecase

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// maxRecentDays tope de GET /interactions/recent/:days.
const maxRecentDays = 365

// InteractionUseCase casos de uso de interacciones.
type InteractionUseCase struct {
	repo      repository.InteractionRepository
	customers repository.CustomerRepository
	users     repository.UserRepository
	now       Clock
}

// NewInteractionUseCase construye el caso de uso.
func NewInteractionUseCase(
	repo repository.InteractionRepository,
	customers repository.CustomerRepository,
	users repository.UserRepository,
	now Clock,
) *InteractionUseCase {
	return &InteractionUseCase{repo: repo, customers: customers, users: users, now: now.orDefault()}
}

// List página de interacciones.
func (uc *InteractionUseCase) List(ctx context.Context, q dto.InteractionListQuery) (*dto.InteractionListResponse, error) {
	f, err := q.Filter()
	if err != nil {
		return nil, err
	}
	return uc.list(ctx, f)
}

// ListForCustomer interacciones de un cliente.
func (uc *InteractionUseCase) ListForCustomer(ctx context.Context, customerID int64, q dto.InteractionListQuery) (*dto.InteractionListResponse, error) {
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

// ListForUser interacciones registradas por un usuario.
func (uc *InteractionUseCase) ListForUser(ctx context.Context, userID int64, q dto.InteractionListQuery) (*dto.InteractionListResponse, error) {
	q.UserID = ""
	f, err := q.Filter()
	if err != nil {
		return nil, err
	}
	if err := ensureUser(ctx, uc.users, userID); err != nil {
		return nil, err
	}
	f.UserID = &userID
	return uc.list(ctx, f)
}

// Recent interacciones ocurridas en los últimos days días (1 a 365).
func (uc *InteractionUseCase) Recent(ctx context.Context, days string, q dto.InteractionListQuery) (*dto.InteractionListResponse, error) {
	n, err := strconv.Atoi(strings.TrimSpace(days))
	if err != nil || n < 1 || n > maxRecentDays {
		return nil, domain.NewValidationError("days", "debe ser un entero entre 1 y 365")
	}
	f, err := q.Filter()
	if err != nil {
		return nil, err
	}
	since := uc.now().Add(-time.Duration(n) * 24 * time.Hour)
	f.Since = &since
	return uc.list(ctx, f)
}

func (uc *InteractionUseCase) list(ctx context.Context, f repository.InteractionFilter) (*dto.InteractionListResponse, error) {
	list, total, err := uc.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &dto.InteractionListResponse{
		Interactions: dto.ToInteractionResponses(list, uc.now()),
		Pagination:   dto.NewPagination(total, f.PageParams),
	}, nil
}

// Stats resumen por tipo y dirección; lastWeek cuenta los últimos 7 días.
func (uc *InteractionUseCase) Stats(ctx context.Context) (*dto.InteractionStatsResponse, error) {
	s, err := uc.repo.Stats(ctx, uc.now().Add(-entity.RecentInteractionWindow))
	if err != nil {
		return nil, err
	}
	byType := make(map[string]int, len(entity.InteractionTypes))
	for _, t := range entity.InteractionTypes {
		byType[t] = s.ByType[t]
	}
	byDirection := make(map[string]int, len(entity.InteractionDirections))
	for _, d := range entity.InteractionDirections {
		byDirection[d] = s.ByDirection[d]
	}
	return &dto.InteractionStatsResponse{
		Total:         s.Total,
		Important:     s.Important,
		NeedsFollowUp: s.NeedsFollowUp,
		LastWeek:      s.Recent,
		ByType:        byType,
		ByDirection:   byDirection,
	}, nil
}

// GetByID devuelve la interacción o ErrNotFound.
func (uc *InteractionUseCase) GetByID(ctx context.Context, id int64) (*dto.InteractionResponse, error) {
	i, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.ToInteractionResponse(i, uc.now())
	return &out, nil
}

func (uc *InteractionUseCase) get(ctx context.Context, id int64) (*entity.Interaction, error) {
	i, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if i == nil {
		return nil, domain.ErrNotFound
	}
	return i, nil
}

// Create registra una interacción. Sin userId queda a nombre del actor.
func (uc *InteractionUseCase) Create(ctx context.Context, actor Actor, in dto.CreateInteractionRequest) (*dto.InteractionResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if err := ensureCustomer(ctx, uc.customers, in.CustomerID); err != nil {
		return nil, err
	}
	if in.UserID != nil {
		if err := ensureUser(ctx, uc.users, *in.UserID); err != nil {
			return nil, err
		}
	} else if actor.ID > 0 {
		id := actor.ID
		in.UserID = &id
	}
	i := &entity.Interaction{
		Type:          orDefault(in.Type, entity.InteractionOther),
		Direction:     orDefault(in.Direction, entity.DirectionOutbound),
		Subject:       strings.TrimSpace(in.Subject),
		Description:   strings.TrimSpace(in.Description),
		Notes:         in.Notes,
		Date:          *in.Date,
		Duration:      in.Duration,
		Channel:       in.Channel,
		Tags:          dto.NonNilTags(in.Tags),
		IsImportant:   in.IsImportant,
		NeedsFollowUp: in.NeedsFollowUp,
		FollowUpDate:  in.FollowUpDate,
		CustomerID:    in.CustomerID,
		UserID:        in.UserID,
	}
	if i.FollowUpDate != nil {
		i.ScheduleFollowUp(*i.FollowUpDate)
	}
	if err := uc.repo.Create(ctx, i); err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, i.ID)
}

// Update aplica merge-patch.
func (uc *InteractionUseCase) Update(ctx context.Context, id int64, in dto.UpdateInteractionRequest) (*dto.InteractionResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	i, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.CustomerID != nil && *in.CustomerID != i.CustomerID {
		if err := ensureCustomer(ctx, uc.customers, *in.CustomerID); err != nil {
			return nil, err
		}
		i.CustomerID = *in.CustomerID
	}
	if in.UserID != nil && (i.UserID == nil || *in.UserID != *i.UserID) {
		if err := ensureUser(ctx, uc.users, *in.UserID); err != nil {
			return nil, err
		}
		i.UserID = in.UserID
	}
	set(&i.Type, in.Type)
	set(&i.Direction, in.Direction)
	set(&i.Subject, in.Subject)
	set(&i.Description, in.Description)
	set(&i.Notes, in.Notes)
	set(&i.Date, in.Date)
	set(&i.Channel, in.Channel)
	set(&i.IsImportant, in.IsImportant)
	set(&i.NeedsFollowUp, in.NeedsFollowUp)
	if in.Duration != nil {
		i.Duration = in.Duration
	}
	if in.FollowUpDate != nil {
		i.ScheduleFollowUp(*in.FollowUpDate)
	}
	if !i.NeedsFollowUp {
		i.FollowUpDate = nil
	}
	if in.Tags != nil {
		i.Tags = in.Tags
	}
	if err := uc.repo.Update(ctx, i); err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, id)
}

// MarkImportant cambia el indicador de importancia (sin valor explícito marca como importante).
func (uc *InteractionUseCase) MarkImportant(ctx context.Context, id int64, in dto.MarkImportantRequest) (*dto.InteractionResponse, error) {
	i, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	important := true
	if in.IsImportant != nil {
		important = *in.IsImportant
	}
	i.MarkImportant(important)
	if err := uc.repo.Update(ctx, i); err != nil {
		return nil, err
	}
	out := dto.ToInteractionResponse(i, uc.now())
	return &out, nil
}

// FollowUp programa un seguimiento; sin fecha lo marca como completado.
func (uc *InteractionUseCase) FollowUp(ctx context.Context, id int64, in dto.FollowUpRequest) (*dto.InteractionResponse, error) {
	i, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Date != nil {
		i.ScheduleFollowUp(*in.Date)
	} else {
		i.CompleteFollowUp()
	}
	if err := uc.repo.Update(ctx, i); err != nil {
		return nil, err
	}
	out := dto.ToInteractionResponse(i, uc.now())
	return &out, nil
}

// Delete elimina la interacción.
func (uc *InteractionUseCase) Delete(ctx context.Context, id int64) error {
	ok, err := uc.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}
