package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
)

func newCustomerUC(f *fixture) *CustomerUseCase {
	return NewCustomerUseCase(f.customers, f.tx, fixedClock)
}

// ─── Create / Update ──────────────────────────────────────────────────────────

func TestCustomerCreate_ValoresPorDefecto(t *testing.T) {
	f := newFixture()
	uc := newCustomerUC(f)

	out, err := uc.Create(context.Background(), dto.CreateCustomerRequest{
		Name:    "  Acme  ",
		Company: "Acme Corp",
		Email:   "Ventas@Acme.COM",
	})

	require.NoError(t, err)
	assert.NotZero(t, out.ID)
	assert.Equal(t, "Acme", out.Name)
	assert.Equal(t, "ventas@acme.com", out.Email)
	assert.Equal(t, entity.CustomerProspect, out.Status)
	assert.Equal(t, "Acme (Acme Corp)", out.DisplayName)
	assert.Equal(t, []string{}, out.Tags)
	assert.Nil(t, out.EstimatedValue)
}

func TestCustomerCreate_Validacion(t *testing.T) {
	uc := newCustomerUC(newFixture())

	_, err := uc.Create(context.Background(), dto.CreateCustomerRequest{Name: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	neg := decimal.NewFromInt(-5)
	_, err = uc.Create(context.Background(), dto.CreateCustomerRequest{Name: "X", EstimatedValue: &neg})
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "estimatedValue", ve.Fields[0].Field)
}

func TestCustomerUpdate_SoloCamposPresentes(t *testing.T) {
	f := newFixture()
	c := f.s.addCustomer("Acme")
	f.s.customers[c.ID].Phone = "555-1234"
	f.s.customers[c.ID].City = "Bogotá"
	uc := newCustomerUC(f)

	out, err := uc.Update(context.Background(), c.ID, dto.UpdateCustomerRequest{
		Status: ptr(entity.CustomerLost),
		Notes:  ptr(""),
	})

	require.NoError(t, err)
	assert.Equal(t, entity.CustomerLost, out.Status)
	assert.Equal(t, "Acme", out.Name)
	assert.Equal(t, "555-1234", out.Phone)
	assert.Equal(t, "Bogotá", f.s.customers[c.ID].City)
	assert.Equal(t, "", f.s.customers[c.ID].Notes)
}

func TestCustomerUpdate_NoExiste(t *testing.T) {
	uc := newCustomerUC(newFixture())

	_, err := uc.Update(context.Background(), 99, dto.UpdateCustomerRequest{Name: ptr("X")})
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
}

// ─── Delete ───────────────────────────────────────────────────────────────────

func TestCustomerDelete_ConDependientesDevuelveConflicto(t *testing.T) {
	f := newFixture()
	c := f.s.addCustomer("Acme")
	f.s.addOpportunity(c.ID, "Renovación")
	f.s.addOpportunity(c.ID, "Ampliación")
	f.s.addInteraction(c.ID)
	uc := newCustomerUC(f)

	err := uc.Delete(context.Background(), c.ID)

	require.ErrorIs(t, err, domain.ErrConflict)
	var dep *domain.DependencyError
	require.True(t, errors.As(err, &dep))
	assert.Equal(t, 2, dep.Opportunities)
	assert.Equal(t, 0, dep.Activities)
	assert.Equal(t, 1, dep.Interactions)
	assert.Equal(t, "2 oportunidades y 1 interacción", dep.Summary())
	assert.Contains(t, f.s.customers, c.ID, "el cliente no debe borrarse")
	assert.Equal(t, 1, f.tx.runs)
}

func TestCustomerDelete_SinDependientes(t *testing.T) {
	f := newFixture()
	c := f.s.addCustomer("Acme")
	uc := newCustomerUC(f)

	require.NoError(t, uc.Delete(context.Background(), c.ID))
	assert.NotContains(t, f.s.customers, c.ID)

	_, err := uc.GetByID(context.Background(), c.ID)
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
}

func TestCustomerDelete_NoExiste(t *testing.T) {
	uc := newCustomerUC(newFixture())
	assert.ErrorIs(t, uc.Delete(context.Background(), 7), domain.ErrCustomerNotFound)
}

// ─── lecturas ─────────────────────────────────────────────────────────────────

func TestCustomerList_PaginacionYTotal(t *testing.T) {
	f := newFixture()
	for i := 0; i < 12; i++ {
		f.s.addCustomer("Cliente")
	}
	uc := newCustomerUC(f)

	out, err := uc.List(context.Background(), dto.CustomerListQuery{PageRequest: dto.PageRequest{Page: "2", Limit: "5"}})

	require.NoError(t, err)
	assert.Len(t, out.Customers, 5)
	assert.Equal(t, dto.PaginationResponse{Total: 12, Page: 2, Limit: 5, TotalPages: 3}, out.Pagination)
	assert.Equal(t, 5, f.customers.lastFilter.Offset())
}

func TestCustomerList_FiltroInvalido(t *testing.T) {
	uc := newCustomerUC(newFixture())

	_, err := uc.List(context.Background(), dto.CustomerListQuery{Status: "vip"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCustomerGetByID_CargaRelaciones(t *testing.T) {
	f := newFixture()
	c := f.s.addCustomer("Acme")
	f.s.addOpportunity(c.ID, "Renovación")
	f.s.addInteraction(c.ID)
	uc := newCustomerUC(f)

	out, err := uc.GetByID(context.Background(), c.ID)

	require.NoError(t, err)
	assert.Len(t, out.Opportunities, 1)
	assert.Len(t, out.Interactions, 1)
}

func TestCustomerStats(t *testing.T) {
	f := newFixture()
	f.s.addCustomer("A")
	f.s.addCustomer("B")
	f.s.customers[f.s.addCustomer("C").ID].Status = entity.CustomerLost
	uc := newCustomerUC(f)

	out, err := uc.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, dto.CustomerStatsResponse{Total: 3, Active: 2, Lost: 1}, *out)
}

func TestCustomerSummary(t *testing.T) {
	f := newFixture()
	c := f.s.addCustomer("Acme")
	o := f.s.addOpportunity(c.ID, "Renovación")
	o.Value = decimal.NewNullDecimal(decimal.NewFromInt(1000))
	won := f.s.addOpportunity(c.ID, "Licencias")
	won.Stage = entity.StageClosedWon
	won.Value = decimal.NewNullDecimal(decimal.NewFromInt(250))
	uc := newCustomerUC(f)

	out, err := uc.Summary(context.Background(), c.ID)

	require.NoError(t, err)
	assert.Equal(t, 2, out.Stats.TotalOpportunities)
	assert.Equal(t, 1, out.Stats.OpenOpportunities)
	assert.True(t, out.Stats.PipelineValue.Equal(decimal.NewFromInt(1000)))
	assert.True(t, out.Stats.WonValue.Equal(decimal.NewFromInt(250)))

	_, err = uc.Summary(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
}
