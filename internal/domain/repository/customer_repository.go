package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// DependentCounts registros hijos que bloquean un borrado.
type DependentCounts struct {
	Opportunities int
	Activities    int
	Interactions  int
}

// Any indica si hay al menos un dependiente.
func (d DependentCounts) Any() bool {
	return d.Opportunities+d.Activities+d.Interactions > 0
}

// CustomerStatusCounts desglose de clientes por estado.
type CustomerStatusCounts struct {
	Total    int
	Active   int
	Prospect int
	Inactive int
	Lost     int
}

// CustomerSummary resumen de un cliente con sus agregados.
type CustomerSummary struct {
	Customer            *entity.Customer
	Opportunities       int
	OpenOpportunities   int
	Activities          int
	PendingActivities   int
	Interactions        int
	PipelineValue       decimal.Decimal // oportunidades abiertas
	WonValue            decimal.Decimal
	LastInteractionDate *time.Time
}

// CustomerRepository define el puerto de persistencia para Customer.
// GetByID devuelve (nil, nil) cuando no existe.
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id int64) (*entity.Customer, error)
	// GetDetail carga además oportunidades e interacciones.
	GetDetail(ctx context.Context, id int64) (*entity.Customer, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, f CustomerFilter) ([]*entity.Customer, int, error)
	Update(ctx context.Context, customer *entity.Customer) error

	// LockByID bloquea la fila (FOR UPDATE). Solo tiene sentido dentro de una transacción.
	LockByID(ctx context.Context, id int64) (*entity.Customer, error)
	CountDependents(ctx context.Context, id int64) (DependentCounts, error)
	Delete(ctx context.Context, id int64) error

	StatusCounts(ctx context.Context) (CustomerStatusCounts, error)
	Summary(ctx context.Context, id int64) (*CustomerSummary, error)
}
