package repository

import (
	"context"

	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// OpportunityRepository define el puerto de persistencia para Opportunity.
// Las lecturas cargan el resumen del cliente y las actividades de cada oportunidad.
type OpportunityRepository interface {
	Create(ctx context.Context, opp *entity.Opportunity) error
	GetByID(ctx context.Context, id int64) (*entity.Opportunity, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, f OpportunityFilter) ([]*entity.Opportunity, int, error)
	// ListByStage ordena por expected_close_date ascendente, sin paginar.
	ListByStage(ctx context.Context, stage string) ([]*entity.Opportunity, error)
	Update(ctx context.Context, opp *entity.Opportunity) error

	LockByID(ctx context.Context, id int64) (*entity.Opportunity, error)
	CountActivities(ctx context.Context, id int64) (int, error)
	Delete(ctx context.Context, id int64) error
}
