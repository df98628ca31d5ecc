package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

var _ repository.OpportunityRepository = (*OpportunityRepo)(nil)

const opportunityColumns = `o.id, o.title, o.description, o.value, o.stage, o.probability,
	o.expected_close_date, o.actual_close_date, o.source, o.loss_reason, o.tags, o.customer_id,
	o.created_at, o.updated_at`

// columnas + resumen del cliente (JOIN)
const opportunityWithCustomerColumns = opportunityColumns + `, cu.name, cu.company`

const opportunityWithCustomerFrom = `opportunities o JOIN customers cu ON cu.id = o.customer_id`

// OpportunityRepo implementación de OpportunityRepository (usable con pool o tx).
type OpportunityRepo struct {
	q Querier
}

// NewOpportunityRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOpportunityRepository(q Querier) *OpportunityRepo {
	return &OpportunityRepo{q: q}
}

func opportunityDest(o *entity.Opportunity) []any {
	return []any{
		&o.ID, &o.Title, &o.Description, &o.Value, &o.Stage, &o.Probability,
		&o.ExpectedCloseDate, &o.ActualCloseDate, &o.Source, &o.LossReason, &o.Tags, &o.CustomerID,
		&o.CreatedAt, &o.UpdatedAt,
	}
}

func scanOpportunity(row rowScanner) (*entity.Opportunity, error) {
	var o entity.Opportunity
	if err := row.Scan(opportunityDest(&o)...); err != nil {
		return nil, err
	}
	return &o, nil
}

func scanOpportunityWithCustomer(row rowScanner) (*entity.Opportunity, error) {
	var (
		o  entity.Opportunity
		cu entity.CustomerRef
	)
	if err := row.Scan(append(opportunityDest(&o), &cu.Name, &cu.Company)...); err != nil {
		return nil, err
	}
	cu.ID = o.CustomerID
	o.Customer = &cu
	return &o, nil
}

// Create persiste una oportunidad. Si el cliente no existe devuelve ErrCustomerNotFound.
func (r *OpportunityRepo) Create(ctx context.Context, o *entity.Opportunity) error {
	query := `
		INSERT INTO opportunities (title, description, value, stage, probability, expected_close_date,
			actual_close_date, source, loss_reason, tags, customer_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		o.Title, o.Description, o.Value, o.Stage, o.Probability, o.ExpectedCloseDate,
		o.ActualCloseDate, o.Source, o.LossReason, nonNilTags(o.Tags), o.CustomerID,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrCustomerNotFound
		}
		return fmt.Errorf("insert opportunity: %w", err)
	}
	return nil
}

// GetByID obtiene la oportunidad con cliente y actividades.
func (r *OpportunityRepo) GetByID(ctx context.Context, id int64) (*entity.Opportunity, error) {
	query := `SELECT ` + opportunityWithCustomerColumns + ` FROM ` + opportunityWithCustomerFrom + ` WHERE o.id = $1`
	o, err := scanOpportunityWithCustomer(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get opportunity: %w", err)
	}
	if err := r.loadActivities(ctx, []*entity.Opportunity{o}); err != nil {
		return nil, err
	}
	return o, nil
}

// Exists indica si la oportunidad existe.
func (r *OpportunityRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM opportunities WHERE id = $1)`, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("opportunity exists: %w", err)
	}
	return ok, nil
}

func opportunityListQuery(f repository.OpportunityFilter) listQuery {
	return listQuery{
		selectCols: opportunityWithCustomerColumns,
		from:       opportunityWithCustomerFrom,
		countFrom:  "opportunities o",
		where: And(
			Search(f.Search, "o.title", "o.description"),
			Eq("o.stage", f.Stage),
			EqPtr("o.customer_id", f.CustomerID),
			Between("o.created_at", f.Created),
		),
		orderBy: "o.created_at DESC, o.id DESC",
		page:    f.PageParams,
	}
}

// List lista oportunidades paginadas con cliente y actividades.
// Las actividades de toda la página se cargan en una sola consulta.
func (r *OpportunityRepo) List(ctx context.Context, f repository.OpportunityFilter) ([]*entity.Opportunity, int, error) {
	list, total, err := runList(ctx, r.q, opportunityListQuery(f), scanOpportunityWithCustomer)
	if err != nil {
		return nil, 0, fmt.Errorf("list opportunities: %w", err)
	}
	if err := r.loadActivities(ctx, list); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListByStage oportunidades de una etapa, por fecha esperada de cierre.
func (r *OpportunityRepo) ListByStage(ctx context.Context, stage string) ([]*entity.Opportunity, error) {
	query := `SELECT ` + opportunityWithCustomerColumns + ` FROM ` + opportunityWithCustomerFrom + `
		WHERE o.stage = $1
		ORDER BY o.expected_close_date ASC NULLS LAST, o.id ASC`
	rows, err := r.q.Query(ctx, query, stage)
	if err != nil {
		return nil, fmt.Errorf("list opportunities by stage: %w", err)
	}
	list, err := collect(rows, scanOpportunityWithCustomer)
	if err != nil {
		return nil, fmt.Errorf("scan opportunities by stage: %w", err)
	}
	return list, nil
}

// loadActivities asigna las actividades de cada oportunidad con un solo = ANY($1).
func (r *OpportunityRepo) loadActivities(ctx context.Context, opps []*entity.Opportunity) error {
	if len(opps) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(opps))
	byID := make(map[int64]*entity.Opportunity, len(opps))
	for _, o := range opps {
		o.Activities = []*entity.Activity{}
		ids = append(ids, o.ID)
		byID[o.ID] = o
	}
	query := `SELECT ` + activityColumns + ` FROM activities a
		WHERE a.opportunity_id = ANY($1)
		ORDER BY ` + activityOrder
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("load opportunity activities: %w", err)
	}
	acts, err := collect(rows, scanActivity)
	if err != nil {
		return fmt.Errorf("scan opportunity activities: %w", err)
	}
	for _, a := range acts {
		if a.OpportunityID == nil {
			continue
		}
		if o, ok := byID[*a.OpportunityID]; ok {
			o.Activities = append(o.Activities, a)
		}
	}
	return nil
}

// Update sobrescribe todas las columnas editables.
func (r *OpportunityRepo) Update(ctx context.Context, o *entity.Opportunity) error {
	query := `
		UPDATE opportunities SET title = $2, description = $3, value = $4, stage = $5, probability = $6,
			expected_close_date = $7, actual_close_date = $8, source = $9, loss_reason = $10, tags = $11,
			customer_id = $12, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.q.QueryRow(ctx, query,
		o.ID, o.Title, o.Description, o.Value, o.Stage, o.Probability, o.ExpectedCloseDate,
		o.ActualCloseDate, o.Source, o.LossReason, nonNilTags(o.Tags), o.CustomerID,
	).Scan(&o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		if isForeignKeyViolation(err) {
			return domain.ErrCustomerNotFound
		}
		return fmt.Errorf("update opportunity: %w", err)
	}
	return nil
}

// LockByID lee la oportunidad con FOR UPDATE, sin relaciones.
func (r *OpportunityRepo) LockByID(ctx context.Context, id int64) (*entity.Opportunity, error) {
	o, err := scanOpportunity(r.q.QueryRow(ctx, `SELECT `+opportunityColumns+` FROM opportunities o WHERE o.id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock opportunity: %w", err)
	}
	return o, nil
}

// CountActivities actividades que referencian la oportunidad.
func (r *OpportunityRepo) CountActivities(ctx context.Context, id int64) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM activities WHERE opportunity_id = $1`, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("count opportunity activities: %w", err)
	}
	return n, nil
}

// Delete elimina una oportunidad por ID.
func (r *OpportunityRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM opportunities WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete opportunity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
