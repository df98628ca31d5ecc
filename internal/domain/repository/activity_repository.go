package repository

import (
	"context"

	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// ActivityRepository define el puerto de persistencia para Activity.
// Las lecturas cargan cliente, oportunidad y usuario asignado.
type ActivityRepository interface {
	Create(ctx context.Context, a *entity.Activity) error
	GetByID(ctx context.Context, id int64) (*entity.Activity, error)
	List(ctx context.Context, f ActivityFilter) ([]*entity.Activity, int, error)
	Update(ctx context.Context, a *entity.Activity) error
	Delete(ctx context.Context, id int64) (bool, error)
}
