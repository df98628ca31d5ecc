package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
	"github.com/jhoicas/crm-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
	BcryptCost int // 0 = bcrypt.DefaultCost
}

// AuthUseCase casos de uso de autenticación: registro, login, perfil y bootstrap del admin.
type AuthUseCase struct {
	users  repository.UserRepository
	jwtCfg JWTConfig
	now    func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(users repository.UserRepository, jwtCfg JWTConfig) *AuthUseCase {
	if jwtCfg.BcryptCost == 0 {
		jwtCfg.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthUseCase{users: users, jwtCfg: jwtCfg, now: func() time.Time { return time.Now().UTC() }}
}

// Register crea un usuario con rol user. Devuelve ErrEmailAlreadyExists si el email ya existe.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	email := normalizeEmail(in.Email)
	existing, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.jwtCfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	first, last := strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName)
	user := &entity.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         first + " " + last,
		FirstName:    first,
		LastName:     last,
		Role:         entity.RoleUser,
		IsActive:     true,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return uc.authResponse("Usuario registrado correctamente", user)
}

// Login verifica email/password y genera un JWT. Email desconocido y password incorrecto
// devuelven el mismo ErrInvalidCredentials; para un email desconocido igual se compara un hash.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest, ip string) (*dto.AuthResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	user, err := uc.users.GetByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(uc.dummy(), []byte(in.Password))
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domain.ErrForbidden
	}
	now := uc.now()
	if err := uc.users.RecordLogin(ctx, user.ID, now, ip); err != nil {
		return nil, err
	}
	user.RecordLogin(ip, now)
	return uc.authResponse("Login exitoso", user)
}

// Refresh emite un token nuevo para un usuario activo.
func (uc *AuthUseCase) Refresh(ctx context.Context, userID int64) (*dto.AuthResponse, error) {
	user, err := uc.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.authResponse("Token renovado", user)
}

// Profile devuelve el perfil del usuario autenticado.
func (uc *AuthUseCase) Profile(ctx context.Context, userID int64) (*dto.ProfileResponse, error) {
	user, err := uc.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.ProfileResponse{User: dto.ToUserResponse(user)}, nil
}

// UpdateProfile aplica merge-patch sobre nombre y email propios.
func (uc *AuthUseCase) UpdateProfile(ctx context.Context, userID int64, in dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	user, err := uc.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email != user.Email {
			other, err := uc.users.GetByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if other != nil && other.ID != user.ID {
				return nil, domain.ErrEmailAlreadyExists
			}
			user.Email = email
		}
	}
	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.FirstName != nil || in.LastName != nil {
		user.Name = strings.TrimSpace(user.FirstName + " " + user.LastName)
	}
	if err := uc.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return &dto.ProfileResponse{Message: "Perfil actualizado", User: dto.ToUserResponse(user)}, nil
}

// ChangePassword verifica la contraseña actual y guarda el nuevo hash.
func (uc *AuthUseCase) ChangePassword(ctx context.Context, userID int64, in dto.ChangePasswordRequest) error {
	if err := dto.Validate(in); err != nil {
		return err
	}
	user, err := uc.activeUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)); err != nil {
		return domain.NewValidationError("currentPassword", "la contraseña actual no es correcta")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), uc.jwtCfg.BcryptCost)
	if err != nil {
		return err
	}
	return uc.users.UpdatePassword(ctx, user.ID, string(hash))
}

// EnsureAdmin crea el administrador inicial si no existe un usuario con ese email.
// Devuelve true si lo creó.
func (uc *AuthUseCase) EnsureAdmin(ctx context.Context, email, password, name string) (bool, error) {
	email = normalizeEmail(email)
	existing, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), uc.jwtCfg.BcryptCost)
	if err != nil {
		return false, err
	}
	if name == "" {
		name = "Administrador"
	}
	admin := &entity.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         entity.RoleAdmin,
		IsActive:     true,
	}
	if err := uc.users.Create(ctx, admin); err != nil {
		return false, err
	}
	return true, nil
}

func (uc *AuthUseCase) activeUser(ctx context.Context, id int64) (*entity.User, error) {
	user, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}

func (uc *AuthUseCase) authResponse(message string, user *entity.User) (*dto.AuthResponse, error) {
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Email, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{Message: message, Token: token, User: dto.ToUserResponse(user)}, nil
}

func (uc *AuthUseCase) dummy() []byte {
	uc.dummyOnce.Do(func() {
		uc.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("crm-dummy-password"), uc.jwtCfg.BcryptCost)
	})
	return uc.dummyHash
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
