package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción con repositorios atados a ella.
// Si fn devuelve error se hace rollback.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		customers repository.CustomerRepository,
		opportunities repository.OpportunityRepository,
	) error) error
}

// Clock fuente de la hora actual (inyectable en tests).
type Clock func() time.Time

func (c Clock) orDefault() Clock {
	if c == nil {
		return func() time.Time { return time.Now().UTC() }
	}
	return c
}

// checkMoney rechaza importes negativos y con más de 13 dígitos enteros (NUMERIC(15,2)).
func checkMoney(field string, d *decimal.Decimal, v *domain.ValidationError) {
	if d == nil {
		return
	}
	if d.IsNegative() {
		v.Add(field, "debe ser mayor o igual a 0")
		return
	}
	if d.GreaterThanOrEqual(maxMoney) {
		v.Add(field, "excede el máximo permitido")
	}
}

var maxMoney = decimal.New(1, 13)

func toNullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d.Round(2))
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Actor usuario autenticado que ejecuta la operación.
type Actor struct {
	ID   int64
	Role string
}

// IsAdmin indica si el actor ve todos los registros.
func (a Actor) IsAdmin() bool { return a.Role == entity.RoleAdmin }
