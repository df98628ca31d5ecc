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

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

const customerColumns = `c.id, c.name, c.company, c.industry, c.email, c.phone, c.address, c.city,
	c.postal_code, c.state, c.country, c.status, c.notes, c.estimated_value, c.website,
	c.employee_count, c.tags, c.created_at, c.updated_at`

// CustomerRepo implementación de CustomerRepository (usable con pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

func scanCustomer(row rowScanner) (*entity.Customer, error) {
	var c entity.Customer
	err := row.Scan(
		&c.ID, &c.Name, &c.Company, &c.Industry, &c.Email, &c.Phone, &c.Address, &c.City,
		&c.PostalCode, &c.State, &c.Country, &c.Status, &c.Notes, &c.EstimatedValue, &c.Website,
		&c.EmployeeCount, &c.Tags, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persiste un nuevo cliente; asigna ID y timestamps.
func (r *CustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	query := `
		INSERT INTO customers (name, company, industry, email, phone, address, city, postal_code,
			state, country, status, notes, estimated_value, website, employee_count, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		c.Name, c.Company, c.Industry, c.Email, c.Phone, c.Address, c.City, c.PostalCode,
		c.State, c.Country, c.Status, c.Notes, c.EstimatedValue, c.Website, c.EmployeeCount, nonNilTags(c.Tags),
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente por ID, sin relaciones.
func (r *CustomerRepo) GetByID(ctx context.Context, id int64) (*entity.Customer, error) {
	c, err := scanCustomer(r.q.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers c WHERE c.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

// GetDetail obtiene el cliente con sus oportunidades e interacciones (3 consultas).
func (r *CustomerRepo) GetDetail(ctx context.Context, id int64) (*entity.Customer, error) {
	c, err := r.GetByID(ctx, id)
	if err != nil || c == nil {
		return c, err
	}

	rows, err := r.q.Query(ctx, `SELECT `+opportunityColumns+` FROM opportunities o
		WHERE o.customer_id = $1 ORDER BY o.created_at DESC, o.id DESC`, id)
	if err != nil {
		return nil, fmt.Errorf("customer opportunities: %w", err)
	}
	c.Opportunities, err = collect(rows, scanOpportunity)
	if err != nil {
		return nil, fmt.Errorf("scan customer opportunities: %w", err)
	}

	rows, err = r.q.Query(ctx, `SELECT `+interactionColumns+` FROM interactions i
		WHERE i.customer_id = $1 ORDER BY i.date DESC, i.id DESC`, id)
	if err != nil {
		return nil, fmt.Errorf("customer interactions: %w", err)
	}
	c.Interactions, err = collect(rows, scanInteraction)
	if err != nil {
		return nil, fmt.Errorf("scan customer interactions: %w", err)
	}
	return c, nil
}

// Exists indica si el cliente existe.
func (r *CustomerRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM customers WHERE id = $1)`, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("customer exists: %w", err)
	}
	return ok, nil
}

// customerListQuery arma la consulta paginada a partir del filtro.
func customerListQuery(f repository.CustomerFilter) listQuery {
	return listQuery{
		selectCols: customerColumns,
		from:       "customers c",
		where: And(
			Search(f.Search, "c.name", "c.company", "c.email"),
			Eq("c.status", f.Status),
			Eq("c.industry", f.Industry),
			Between("c.created_at", f.Created),
		),
		orderBy: "c.created_at DESC, c.id DESC",
		page:    f.PageParams,
	}
}

// List lista clientes filtrados y paginados. Devuelve también el total sin paginar.
func (r *CustomerRepo) List(ctx context.Context, f repository.CustomerFilter) ([]*entity.Customer, int, error) {
	list, total, err := runList(ctx, r.q, customerListQuery(f), scanCustomer)
	if err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	return list, total, nil
}

// Update sobrescribe todas las columnas editables.
func (r *CustomerRepo) Update(ctx context.Context, c *entity.Customer) error {
	query := `
		UPDATE customers SET name = $2, company = $3, industry = $4, email = $5, phone = $6,
			address = $7, city = $8, postal_code = $9, state = $10, country = $11, status = $12,
			notes = $13, estimated_value = $14, website = $15, employee_count = $16, tags = $17,
			updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.q.QueryRow(ctx, query,
		c.ID, c.Name, c.Company, c.Industry, c.Email, c.Phone, c.Address, c.City, c.PostalCode,
		c.State, c.Country, c.Status, c.Notes, c.EstimatedValue, c.Website, c.EmployeeCount, nonNilTags(c.Tags),
	).Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrCustomerNotFound
		}
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}

// LockByID lee el cliente con FOR UPDATE. Las inserciones de hijos quedan en espera hasta el commit.
func (r *CustomerRepo) LockByID(ctx context.Context, id int64) (*entity.Customer, error) {
	c, err := scanCustomer(r.q.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers c WHERE c.id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock customer: %w", err)
	}
	return c, nil
}

// CountDependents cuenta oportunidades, actividades e interacciones del cliente en una sola consulta.
func (r *CustomerRepo) CountDependents(ctx context.Context, id int64) (repository.DependentCounts, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM opportunities WHERE customer_id = $1),
			(SELECT COUNT(*) FROM activities WHERE customer_id = $1),
			(SELECT COUNT(*) FROM interactions WHERE customer_id = $1)`
	var d repository.DependentCounts
	if err := r.q.QueryRow(ctx, query, id).Scan(&d.Opportunities, &d.Activities, &d.Interactions); err != nil {
		return d, fmt.Errorf("count customer dependents: %w", err)
	}
	return d, nil
}

// Delete elimina un cliente por ID.
func (r *CustomerRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

// StatusCounts desglose por estado en una sola consulta.
func (r *CustomerRepo) StatusCounts(ctx context.Context) (repository.CustomerStatusCounts, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'active'),
			COUNT(*) FILTER (WHERE status = 'prospect'),
			COUNT(*) FILTER (WHERE status = 'inactive'),
			COUNT(*) FILTER (WHERE status = 'lost')
		FROM customers`
	var s repository.CustomerStatusCounts
	if err := r.q.QueryRow(ctx, query).Scan(&s.Total, &s.Active, &s.Prospect, &s.Inactive, &s.Lost); err != nil {
		return s, fmt.Errorf("customer status counts: %w", err)
	}
	return s, nil
}

// Summary cliente con conteos y valores agregados de sus hijos en una sola consulta.
func (r *CustomerRepo) Summary(ctx context.Context, id int64) (*repository.CustomerSummary, error) {
	query := `
		SELECT ` + customerColumns + `,
			(SELECT COUNT(*) FROM opportunities o WHERE o.customer_id = c.id),
			(SELECT COUNT(*) FROM opportunities o WHERE o.customer_id = c.id
				AND o.stage NOT IN ('closed-won', 'closed-lost')),
			(SELECT COUNT(*) FROM activities a WHERE a.customer_id = c.id),
			(SELECT COUNT(*) FROM activities a WHERE a.customer_id = c.id
				AND a.status IN ('pending', 'in_progress')),
			(SELECT COUNT(*) FROM interactions i WHERE i.customer_id = c.id),
			(SELECT COALESCE(SUM(o.value), 0) FROM opportunities o WHERE o.customer_id = c.id
				AND o.stage NOT IN ('closed-won', 'closed-lost')),
			(SELECT COALESCE(SUM(o.value), 0) FROM opportunities o WHERE o.customer_id = c.id
				AND o.stage = 'closed-won'),
			(SELECT MAX(i.date) FROM interactions i WHERE i.customer_id = c.id)
		FROM customers c
		WHERE c.id = $1`
	var (
		c entity.Customer
		s repository.CustomerSummary
	)
	err := r.q.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Company, &c.Industry, &c.Email, &c.Phone, &c.Address, &c.City,
		&c.PostalCode, &c.State, &c.Country, &c.Status, &c.Notes, &c.EstimatedValue, &c.Website,
		&c.EmployeeCount, &c.Tags, &c.CreatedAt, &c.UpdatedAt,
		&s.Opportunities, &s.OpenOpportunities, &s.Activities, &s.PendingActivities, &s.Interactions,
		&s.PipelineValue, &s.WonValue, &s.LastInteractionDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("customer summary: %w", err)
	}
	s.Customer = &c
	return &s, nil
}

// collect recorre rows con scan y las cierra.
func collect[T any](rows pgx.Rows, scan func(rowScanner) (T, error)) ([]T, error) {
	defer rows.Close()
	out := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
