package usecase

import (
	"context"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// UserUseCase aplica reglas de negocio para usuarios.
type UserUseCase struct {
	repo repository.UserRepository
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository) *UserUseCase {
	return &UserUseCase{repo: repo}
}

// ActiveUser resuelve el sujeto de un token: el usuario debe existir y estar activo.
func (uc *UserUseCase) ActiveUser(ctx context.Context, id int64) (*entity.User, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}

// List página de usuarios (solo admin).
func (uc *UserUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.UserListResponse, error) {
	v := &domain.ValidationError{}
	p := page.Params(dto.DefaultLimit, v)
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	list, total, err := uc.repo.List(ctx, p)
	if err != nil {
		return nil, err
	}
	users := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		users = append(users, dto.ToUserResponse(u))
	}
	return &dto.UserListResponse{Users: users, Pagination: dto.NewPagination(total, p)}, nil
}

// ensureUser devuelve ErrUserNotFound si el usuario no existe.
func ensureUser(ctx context.Context, repo repository.UserRepository, id int64) error {
	user, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	return nil
}
