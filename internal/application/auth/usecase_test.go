package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
	"github.com/jhoicas/crm-api/pkg/jwt"
)

// ─── fake ─────────────────────────────────────────────────────────────────────

type memUsers struct {
	byID   map[int64]*entity.User
	nextID int64
	logins int
}

var _ repository.UserRepository = (*memUsers)(nil)

func newMemUsers() *memUsers { return &memUsers{byID: map[int64]*entity.User{}} }

func (r *memUsers) Create(_ context.Context, u *entity.User) error {
	r.nextID++
	u.ID = r.nextID
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}

func (r *memUsers) GetByID(_ context.Context, id int64) (*entity.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.byID {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUsers) Update(_ context.Context, u *entity.User) error {
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}

func (r *memUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	r.byID[id].PasswordHash = hash
	return nil
}

func (r *memUsers) RecordLogin(_ context.Context, id int64, at time.Time, ip string) error {
	r.logins++
	r.byID[id].RecordLogin(ip, at)
	return nil
}

func (r *memUsers) List(_ context.Context, _ repository.PageParams) ([]*entity.User, int, error) {
	return nil, 0, nil
}

const secret = "secreto-de-prueba"

func newAuth(users *memUsers) *AuthUseCase {
	return NewAuthUseCase(users, JWTConfig{Secret: secret, ExpMinutes: 60, Issuer: "crm-api", BcryptCost: bcrypt.MinCost})
}

func register(t *testing.T, uc *AuthUseCase) *dto.AuthResponse {
	t.Helper()
	out, err := uc.Register(context.Background(), dto.RegisterRequest{
		Email: "Ana@CRM.local", Password: "secreto1", FirstName: "Ana", LastName: "Pérez",
	})
	require.NoError(t, err)
	return out
}

// ─── registro y login ─────────────────────────────────────────────────────────

func TestRegister_CreaUsuarioConRolUser(t *testing.T) {
	users := newMemUsers()
	out := register(t, newAuth(users))

	assert.Equal(t, "ana@crm.local", out.User.Email)
	assert.Equal(t, entity.RoleUser, out.User.Role)
	assert.Equal(t, "Ana Pérez", out.User.FullName)
	assert.True(t, out.User.IsActive)
	assert.NotEqual(t, "secreto1", users.byID[out.User.ID].PasswordHash)

	claims, err := jwt.Parse(secret, "crm-api", out.Token)
	require.NoError(t, err)
	assert.Equal(t, out.User.ID, claims.UserID)
}

func TestRegister_EmailDuplicado(t *testing.T) {
	uc := newAuth(newMemUsers())
	register(t, uc)

	_, err := uc.Register(context.Background(), dto.RegisterRequest{
		Email: "ana@crm.local", Password: "otra-clave", FirstName: "Ana", LastName: "B",
	})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestRegister_Validacion(t *testing.T) {
	_, err := newAuth(newMemUsers()).Register(context.Background(), dto.RegisterRequest{Email: "x", Password: "123"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLogin_RegistraUltimoAcceso(t *testing.T) {
	users := newMemUsers()
	uc := newAuth(users)
	reg := register(t, uc)

	out, err := uc.Login(context.Background(), dto.LoginRequest{Email: "ana@crm.local", Password: "secreto1"}, "10.0.0.7")

	require.NoError(t, err)
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, 1, users.logins)
	assert.Equal(t, "10.0.0.7", users.byID[reg.User.ID].LastLoginIP)
	assert.NotNil(t, out.User.LastLoginAt)
}

func TestLogin_MismoErrorParaEmailYPassword(t *testing.T) {
	uc := newAuth(newMemUsers())
	register(t, uc)

	_, errEmail := uc.Login(context.Background(), dto.LoginRequest{Email: "nadie@crm.local", Password: "secreto1"}, "")
	_, errPass := uc.Login(context.Background(), dto.LoginRequest{Email: "ana@crm.local", Password: "incorrecta"}, "")

	assert.ErrorIs(t, errEmail, domain.ErrInvalidCredentials)
	assert.ErrorIs(t, errPass, domain.ErrInvalidCredentials)
	assert.Equal(t, errEmail.Error(), errPass.Error())
}

func TestLogin_UsuarioInactivo(t *testing.T) {
	users := newMemUsers()
	uc := newAuth(users)
	reg := register(t, uc)
	users.byID[reg.User.ID].IsActive = false

	_, err := uc.Login(context.Background(), dto.LoginRequest{Email: "ana@crm.local", Password: "secreto1"}, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ─── perfil ───────────────────────────────────────────────────────────────────

func TestUpdateProfile_MergeYEmailUnico(t *testing.T) {
	users := newMemUsers()
	uc := newAuth(users)
	reg := register(t, uc)
	_, err := uc.Register(context.Background(), dto.RegisterRequest{
		Email: "luis@crm.local", Password: "secreto2", FirstName: "Luis", LastName: "Gómez",
	})
	require.NoError(t, err)

	last := "García"
	out, err := uc.UpdateProfile(context.Background(), reg.User.ID, dto.UpdateProfileRequest{LastName: &last})
	require.NoError(t, err)
	assert.Equal(t, "Ana García", out.User.Name)
	assert.Equal(t, "ana@crm.local", out.User.Email)

	taken := "LUIS@crm.local"
	_, err = uc.UpdateProfile(context.Background(), reg.User.ID, dto.UpdateProfileRequest{Email: &taken})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestChangePassword(t *testing.T) {
	users := newMemUsers()
	uc := newAuth(users)
	reg := register(t, uc)
	ctx := context.Background()

	err := uc.ChangePassword(ctx, reg.User.ID, dto.ChangePasswordRequest{CurrentPassword: "mala", NewPassword: "nueva-clave"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, uc.ChangePassword(ctx, reg.User.ID, dto.ChangePasswordRequest{CurrentPassword: "secreto1", NewPassword: "nueva-clave"}))

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "ana@crm.local", Password: "nueva-clave"}, "")
	assert.NoError(t, err)
}

func TestRefresh_UsuarioInexistente(t *testing.T) {
	_, err := newAuth(newMemUsers()).Refresh(context.Background(), 9)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

// ─── bootstrap ────────────────────────────────────────────────────────────────

func TestEnsureAdmin_Idempotente(t *testing.T) {
	users := newMemUsers()
	uc := newAuth(users)
	ctx := context.Background()

	created, err := uc.EnsureAdmin(ctx, "admin@crm.local", "admin123", "")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = uc.EnsureAdmin(ctx, "ADMIN@crm.local", "otra", "")
	require.NoError(t, err)
	assert.False(t, created)

	require.Len(t, users.byID, 1)
	assert.Equal(t, entity.RoleAdmin, users.byID[1].Role)
	assert.Equal(t, "Administrador", users.byID[1].Name)
}
