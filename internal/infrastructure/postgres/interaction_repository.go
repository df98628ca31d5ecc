package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

var _ repository.InteractionRepository = (*InteractionRepo)(nil)

const interactionColumns = `i.id, i.type, i.direction, i.subject, i.description, i.notes, i.date,
	i.duration, i.channel, i.tags, i.is_important, i.needs_follow_up, i.follow_up_date,
	i.customer_id, i.user_id, i.created_at, i.updated_at`

const interactionWithRelationsColumns = interactionColumns + `, cu.name, cu.company, u.name, u.email`

const interactionWithRelationsFrom = `interactions i
	JOIN customers cu ON cu.id = i.customer_id
	LEFT JOIN users u ON u.id = i.user_id`

// InteractionRepo implementación de InteractionRepository (usable con pool o tx).
type InteractionRepo struct {
	q Querier
}

// NewInteractionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInteractionRepository(q Querier) *InteractionRepo {
	return &InteractionRepo{q: q}
}

func interactionDest(i *entity.Interaction) []any {
	return []any{
		&i.ID, &i.Type, &i.Direction, &i.Subject, &i.Description, &i.Notes, &i.Date,
		&i.Duration, &i.Channel, &i.Tags, &i.IsImportant, &i.NeedsFollowUp, &i.FollowUpDate,
		&i.CustomerID, &i.UserID, &i.CreatedAt, &i.UpdatedAt,
	}
}

func scanInteraction(row rowScanner) (*entity.Interaction, error) {
	var i entity.Interaction
	if err := row.Scan(interactionDest(&i)...); err != nil {
		return nil, err
	}
	return &i, nil
}

func scanInteractionWithRelations(row rowScanner) (*entity.Interaction, error) {
	var (
		i                   entity.Interaction
		cu                  entity.CustomerRef
		userName, userEmail *string
	)
	if err := row.Scan(append(interactionDest(&i), &cu.Name, &cu.Company, &userName, &userEmail)...); err != nil {
		return nil, err
	}
	cu.ID = i.CustomerID
	i.Customer = &cu
	if i.UserID != nil && userName != nil {
		i.User = &entity.UserRef{ID: *i.UserID, Name: *userName, Email: deref(userEmail)}
	}
	return &i, nil
}

func interactionFKError(err error) error {
	if strings.Contains(fkConstraint(err), "user") {
		return domain.ErrUserNotFound
	}
	return domain.ErrCustomerNotFound
}

// Create persiste una interacción.
func (r *InteractionRepo) Create(ctx context.Context, i *entity.Interaction) error {
	query := `
		INSERT INTO interactions (type, direction, subject, description, notes, date, duration, channel,
			tags, is_important, needs_follow_up, follow_up_date, customer_id, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		i.Type, i.Direction, i.Subject, i.Description, i.Notes, i.Date, i.Duration, i.Channel,
		nonNilTags(i.Tags), i.IsImportant, i.NeedsFollowUp, i.FollowUpDate, i.CustomerID, i.UserID,
	).Scan(&i.ID, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return interactionFKError(err)
		}
		return fmt.Errorf("insert interaction: %w", err)
	}
	return nil
}

// GetByID obtiene la interacción con cliente y usuario.
func (r *InteractionRepo) GetByID(ctx context.Context, id int64) (*entity.Interaction, error) {
	query := `SELECT ` + interactionWithRelationsColumns + ` FROM ` + interactionWithRelationsFrom + ` WHERE i.id = $1`
	i, err := scanInteractionWithRelations(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get interaction: %w", err)
	}
	return i, nil
}

func interactionListQuery(f repository.InteractionFilter) listQuery {
	return listQuery{
		selectCols: interactionWithRelationsColumns,
		from:       interactionWithRelationsFrom,
		countFrom:  "interactions i",
		where: And(
			Search(f.Search, "i.subject", "i.description"),
			Eq("i.type", f.Type),
			Eq("i.direction", f.Direction),
			EqPtr("i.customer_id", f.CustomerID),
			EqPtr("i.user_id", f.UserID),
			EqPtr("i.is_important", f.Important),
			EqPtr("i.needs_follow_up", f.NeedsFollowUp),
			Gte("i.date", f.Since),
			Between("i.created_at", f.Created),
		),
		orderBy: "i.created_at DESC, i.id DESC",
		page:    f.PageParams,
	}
}

// List lista interacciones paginadas, las más recientes primero.
func (r *InteractionRepo) List(ctx context.Context, f repository.InteractionFilter) ([]*entity.Interaction, int, error) {
	list, total, err := runList(ctx, r.q, interactionListQuery(f), scanInteractionWithRelations)
	if err != nil {
		return nil, 0, fmt.Errorf("list interactions: %w", err)
	}
	return list, total, nil
}

// Update sobrescribe todas las columnas editables.
func (r *InteractionRepo) Update(ctx context.Context, i *entity.Interaction) error {
	query := `
		UPDATE interactions SET type = $2, direction = $3, subject = $4, description = $5, notes = $6,
			date = $7, duration = $8, channel = $9, tags = $10, is_important = $11,
			needs_follow_up = $12, follow_up_date = $13, customer_id = $14, user_id = $15,
			updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.q.QueryRow(ctx, query,
		i.ID, i.Type, i.Direction, i.Subject, i.Description, i.Notes, i.Date, i.Duration, i.Channel,
		nonNilTags(i.Tags), i.IsImportant, i.NeedsFollowUp, i.FollowUpDate, i.CustomerID, i.UserID,
	).Scan(&i.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		if isForeignKeyViolation(err) {
			return interactionFKError(err)
		}
		return fmt.Errorf("update interaction: %w", err)
	}
	return nil
}

// Delete elimina la interacción. false si no existía.
func (r *InteractionRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM interactions WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete interaction: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Stats totales, banderas y desglose por tipo y dirección en una sola consulta agrupada.
// GROUPING SETS produce una fila por tipo, una por dirección y la fila de totales.
func (r *InteractionRepo) Stats(ctx context.Context, recentSince time.Time) (repository.InteractionStats, error) {
	query := `
		SELECT type, direction,
			GROUPING(type), GROUPING(direction),
			COUNT(*),
			COUNT(*) FILTER (WHERE is_important),
			COUNT(*) FILTER (WHERE needs_follow_up),
			COUNT(*) FILTER (WHERE date >= $1)
		FROM interactions
		GROUP BY GROUPING SETS ((type), (direction), ())`
	s := repository.InteractionStats{ByType: map[string]int{}, ByDirection: map[string]int{}}
	rows, err := r.q.Query(ctx, query, recentSince)
	if err != nil {
		return s, fmt.Errorf("interaction stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			typ, dir                           *string
			gType, gDir                        int
			count, important, followUp, recent int
		)
		if err := rows.Scan(&typ, &dir, &gType, &gDir, &count, &important, &followUp, &recent); err != nil {
			return s, fmt.Errorf("scan interaction stats: %w", err)
		}
		switch {
		case gType == 1 && gDir == 1:
			s.Total, s.Important, s.NeedsFollowUp, s.Recent = count, important, followUp, recent
		case gType == 0:
			s.ByType[deref(typ)] = count
		default:
			s.ByDirection[deref(dir)] = count
		}
	}
	return s, rows.Err()
}
