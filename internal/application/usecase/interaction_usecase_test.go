package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

func newInteractionUC(f *fixture) *InteractionUseCase {
	return NewInteractionUseCase(f.interactions, f.customers, f.users, fixedClock)
}

func TestInteractionCreate_UsuarioPorDefectoEsElActor(t *testing.T) {
	f := newFixture()
	c := f.s.addCustomer("Acme")
	u := f.s.addUser(entity.RoleUser, true)
	uc := newInteractionUC(f)

	out, err := uc.Create(context.Background(), Actor{ID: u.ID, Role: u.Role}, dto.CreateInteractionRequest{
		Description: "Consulta por precios",
		Date:        ptr(fixedNow.Add(-time.Hour)),
		CustomerID:  c.ID,
	})

	require.NoError(t, err)
	assert.Equal(t, entity.InteractionOther, out.Type)
	assert.Equal(t, entity.DirectionOutbound, out.Direction)
	require.NotNil(t, out.UserID)
	assert.Equal(t, u.ID, *out.UserID)
	assert.True(t, out.IsRecent)
}

func TestInteractionCreate_Validacion(t *testing.T) {
	f := newFixture()
	c := f.s.addCustomer("Acme")
	uc := newInteractionUC(f)

	_, err := uc.Create(context.Background(), Actor{}, dto.CreateInteractionRequest{CustomerID: c.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(context.Background(), Actor{}, dto.CreateInteractionRequest{
		Description: "X", Date: ptr(fixedNow), CustomerID: 404,
	})
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
}

func TestInteractionRecent(t *testing.T) {
	f := newFixture()
	uc := newInteractionUC(f)

	_, err := uc.Recent(context.Background(), "7", dto.InteractionListQuery{})
	require.NoError(t, err)
	assert.Equal(t, fixedNow.Add(-7*24*time.Hour), *f.interactions.lastFilter.Since)

	for _, days := range []string{"0", "366", "x"} {
		_, err = uc.Recent(context.Background(), days, dto.InteractionListQuery{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "days=%s", days)
	}
}

func TestInteractionFollowUp_ProgramarYCompletar(t *testing.T) {
	f := newFixture()
	c := f.s.addCustomer("Acme")
	i := f.s.addInteraction(c.ID)
	uc := newInteractionUC(f)
	date := fixedNow.Add(12 * time.Hour)

	out, err := uc.FollowUp(context.Background(), i.ID, dto.FollowUpRequest{Date: &date})
	require.NoError(t, err)
	assert.True(t, out.NeedsFollowUp)
	assert.True(t, out.NeedsFollowUpSoon)
	assert.Equal(t, date, *out.FollowUpDate)

	out, err = uc.FollowUp(context.Background(), i.ID, dto.FollowUpRequest{})
	require.NoError(t, err)
	assert.False(t, out.NeedsFollowUp)
	assert.Nil(t, out.FollowUpDate)
}

func TestInteractionMarkImportant(t *testing.T) {
	f := newFixture()
	c := f.s.addCustomer("Acme")
	i := f.s.addInteraction(c.ID)
	uc := newInteractionUC(f)

	out, err := uc.MarkImportant(context.Background(), i.ID, dto.MarkImportantRequest{})
	require.NoError(t, err)
	assert.True(t, out.IsImportant)

	out, err = uc.MarkImportant(context.Background(), i.ID, dto.MarkImportantRequest{IsImportant: ptr(false)})
	require.NoError(t, err)
	assert.False(t, out.IsImportant)

	_, err = uc.MarkImportant(context.Background(), 999, dto.MarkImportantRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInteractionStats_CompletaTiposYDirecciones(t *testing.T) {
	f := newFixture()
	f.interactions.stats = repository.InteractionStats{
		Total:       3,
		Recent:      2,
		ByType:      map[string]int{entity.InteractionPhone: 3},
		ByDirection: map[string]int{entity.DirectionInbound: 3},
	}
	uc := newInteractionUC(f)

	out, err := uc.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, out.LastWeek)
	assert.Len(t, out.ByType, len(entity.InteractionTypes))
	assert.Equal(t, 3, out.ByType[entity.InteractionPhone])
	assert.Equal(t, 0, out.ByType[entity.InteractionChat])
	assert.Equal(t, 0, out.ByDirection[entity.DirectionOutbound])
	assert.Equal(t, fixedNow.Add(-7*24*time.Hour), f.interactions.statsSince)
}

func TestInteractionUpdate_DesactivarSeguimientoLimpiaFecha(t *testing.T) {
	f := newFixture()
	c := f.s.addCustomer("Acme")
	i := f.s.addInteraction(c.ID)
	i.ScheduleFollowUp(fixedNow.Add(time.Hour))
	uc := newInteractionUC(f)

	out, err := uc.Update(context.Background(), i.ID, dto.UpdateInteractionRequest{NeedsFollowUp: ptr(false), Subject: ptr("Seguimiento")})

	require.NoError(t, err)
	assert.False(t, out.NeedsFollowUp)
	assert.Nil(t, out.FollowUpDate)
	assert.Equal(t, "Seguimiento", out.Subject)
	assert.Equal(t, "Consulta", out.Description)
}

func TestUserActiveUser(t *testing.T) {
	f := newFixture()
	active := f.s.addUser(entity.RoleUser, true)
	inactive := f.s.addUser(entity.RoleUser, false)
	uc := NewUserUseCase(f.users)

	u, err := uc.ActiveUser(context.Background(), active.ID)
	require.NoError(t, err)
	assert.Equal(t, active.ID, u.ID)

	_, err = uc.ActiveUser(context.Background(), inactive.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.ActiveUser(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
