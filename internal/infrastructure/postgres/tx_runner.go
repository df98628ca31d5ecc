package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/crm-api/internal/application/usecase"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

var _ usecase.TxRunner = (*TxRunner)(nil)

// TxRunner comparte una pgx.Tx entre los repositorios de clientes y oportunidades.
type TxRunner struct {
	pool *pgxpool.Pool
}

func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run confirma si fn devuelve nil; con error (o panic) la transacción se revierte.
func (r *TxRunner) Run(ctx context.Context, fn func(
	customers repository.CustomerRepository,
	opportunities repository.OpportunityRepository,
) error) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(NewCustomerRepository(tx), NewOpportunityRepository(tx))
	})
}
