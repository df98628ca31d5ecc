package repository

import (
	"context"
	"time"

	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// InteractionStats resumen de interacciones.
type InteractionStats struct {
	Total         int
	Important     int
	NeedsFollowUp int
	Recent        int // desde RecentSince
	ByType        map[string]int
	ByDirection   map[string]int
}

// InteractionRepository define el puerto de persistencia para Interaction.
// Las lecturas cargan cliente y usuario.
type InteractionRepository interface {
	Create(ctx context.Context, i *entity.Interaction) error
	GetByID(ctx context.Context, id int64) (*entity.Interaction, error)
	List(ctx context.Context, f InteractionFilter) ([]*entity.Interaction, int, error)
	Update(ctx context.Context, i *entity.Interaction) error
	Delete(ctx context.Context, id int64) (bool, error)
	Stats(ctx context.Context, recentSince time.Time) (InteractionStats, error)
}
