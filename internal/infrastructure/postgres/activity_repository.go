package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

var _ repository.ActivityRepository = (*ActivityRepo)(nil)

const activityColumns = `a.id, a.title, a.description, a.type, a.status, a.priority, a.due_date,
	a.completed_at, a.estimated_duration, a.actual_duration, a.result, a.notes, a.tags,
	a.customer_id, a.opportunity_id, a.assigned_to_id, a.created_at, a.updated_at`

const activityOrder = `a.due_date ASC NULLS LAST, a.created_at DESC, a.id DESC`

const activityWithRelationsColumns = activityColumns + `, cu.name, cu.company, op.title, op.stage, u.name, u.email`

const activityWithRelationsFrom = `activities a
	JOIN customers cu ON cu.id = a.customer_id
	LEFT JOIN opportunities op ON op.id = a.opportunity_id
	LEFT JOIN users u ON u.id = a.assigned_to_id`

// ActivityRepo implementación de ActivityRepository (usable con pool o tx).
type ActivityRepo struct {
	q Querier
}

// NewActivityRepository construye el adaptador. Pasar pool o tx (Querier).
func NewActivityRepository(q Querier) *ActivityRepo {
	return &ActivityRepo{q: q}
}

func activityDest(a *entity.Activity) []any {
	return []any{
		&a.ID, &a.Title, &a.Description, &a.Type, &a.Status, &a.Priority, &a.DueDate,
		&a.CompletedAt, &a.EstimatedDuration, &a.ActualDuration, &a.Result, &a.Notes, &a.Tags,
		&a.CustomerID, &a.OpportunityID, &a.AssignedToID, &a.CreatedAt, &a.UpdatedAt,
	}
}

func scanActivity(row rowScanner) (*entity.Activity, error) {
	var a entity.Activity
	if err := row.Scan(activityDest(&a)...); err != nil {
		return nil, err
	}
	return &a, nil
}

func scanActivityWithRelations(row rowScanner) (*entity.Activity, error) {
	var (
		a                   entity.Activity
		cu                  entity.CustomerRef
		oppTitle, oppStage  *string
		userName, userEmail *string
	)
	dest := append(activityDest(&a), &cu.Name, &cu.Company, &oppTitle, &oppStage, &userName, &userEmail)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	cu.ID = a.CustomerID
	a.Customer = &cu
	if a.OpportunityID != nil && oppTitle != nil {
		a.Opportunity = &entity.OpportunityRef{ID: *a.OpportunityID, Title: *oppTitle, Stage: deref(oppStage)}
	}
	if a.AssignedToID != nil && userName != nil {
		a.AssignedTo = &entity.UserRef{ID: *a.AssignedToID, Name: *userName, Email: deref(userEmail)}
	}
	return &a, nil
}

// activityFKError traduce la violación de FK al padre inexistente.
func activityFKError(err error) error {
	c := fkConstraint(err)
	switch {
	case strings.Contains(c, "opportunity"):
		return fmt.Errorf("oportunidad: %w", domain.ErrNotFound)
	case strings.Contains(c, "assigned_to"):
		return domain.ErrUserNotFound
	default:
		return domain.ErrCustomerNotFound
	}
}

// Create persiste una actividad.
func (r *ActivityRepo) Create(ctx context.Context, a *entity.Activity) error {
	query := `
		INSERT INTO activities (title, description, type, status, priority, due_date, completed_at,
			estimated_duration, actual_duration, result, notes, tags, customer_id, opportunity_id, assigned_to_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		a.Title, a.Description, a.Type, a.Status, a.Priority, a.DueDate, a.CompletedAt,
		a.EstimatedDuration, a.ActualDuration, a.Result, a.Notes, nonNilTags(a.Tags),
		a.CustomerID, a.OpportunityID, a.AssignedToID,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return activityFKError(err)
		}
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// GetByID obtiene la actividad con cliente, oportunidad y usuario asignado.
func (r *ActivityRepo) GetByID(ctx context.Context, id int64) (*entity.Activity, error) {
	query := `SELECT ` + activityWithRelationsColumns + ` FROM ` + activityWithRelationsFrom + ` WHERE a.id = $1`
	a, err := scanActivityWithRelations(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get activity: %w", err)
	}
	return a, nil
}

func activityListQuery(f repository.ActivityFilter) listQuery {
	return listQuery{
		selectCols: activityWithRelationsColumns,
		from:       activityWithRelationsFrom,
		countFrom:  "activities a",
		where: And(
			Search(f.Search, "a.title", "a.description"),
			Eq("a.status", f.Status),
			Eq("a.type", f.Type),
			Eq("a.priority", f.Priority),
			EqPtr("a.customer_id", f.CustomerID),
			EqPtr("a.opportunity_id", f.OpportunityID),
			EqPtr("a.assigned_to_id", f.AssignedToID),
			When(f.OverdueAt != nil, And(Raw("a.status = 'pending'"), Lt("a.due_date", f.OverdueAt))),
			When(f.PendingAt != nil, Or(Raw("a.due_date IS NULL"), Gte("a.due_date", f.PendingAt))),
			When(f.OpenOnly, AnyOf("a.status", []string{entity.StatusPending, entity.StatusInProgress})),
			Between("a.due_date", f.Due),
		),
		orderBy: activityOrder,
		page:    f.PageParams,
	}
}

// List lista actividades paginadas, por fecha de vencimiento ascendente.
func (r *ActivityRepo) List(ctx context.Context, f repository.ActivityFilter) ([]*entity.Activity, int, error) {
	list, total, err := runList(ctx, r.q, activityListQuery(f), scanActivityWithRelations)
	if err != nil {
		return nil, 0, fmt.Errorf("list activities: %w", err)
	}
	return list, total, nil
}

// Update sobrescribe todas las columnas editables.
func (r *ActivityRepo) Update(ctx context.Context, a *entity.Activity) error {
	query := `
		UPDATE activities SET title = $2, description = $3, type = $4, status = $5, priority = $6,
			due_date = $7, completed_at = $8, estimated_duration = $9, actual_duration = $10,
			result = $11, notes = $12, tags = $13, customer_id = $14, opportunity_id = $15,
			assigned_to_id = $16, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.q.QueryRow(ctx, query,
		a.ID, a.Title, a.Description, a.Type, a.Status, a.Priority, a.DueDate, a.CompletedAt,
		a.EstimatedDuration, a.ActualDuration, a.Result, a.Notes, nonNilTags(a.Tags),
		a.CustomerID, a.OpportunityID, a.AssignedToID,
	).Scan(&a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		if isForeignKeyViolation(err) {
			return activityFKError(err)
		}
		return fmt.Errorf("update activity: %w", err)
	}
	return nil
}

// Delete elimina la actividad. false si no existía.
func (r *ActivityRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM activities WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete activity: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
