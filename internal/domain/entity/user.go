package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin       = "admin"
	RoleManager     = "manager"
	RoleSalesperson = "salesperson"
	RoleUser        = "user"
)

// UserRoles lista ordenada de roles válidos.
var UserRoles = []string{RoleAdmin, RoleManager, RoleSalesperson, RoleUser}

// User representa un usuario del CRM.
type User struct {
	ID           int64
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	FirstName    string
	LastName     string
	Role         string // admin, manager, salesperson, user
	IsActive     bool
	LastLoginAt  *time.Time
	LastLoginIP  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName devuelve "Nombre Apellido" si ambos existen; si no, Name.
func (u *User) FullName() string {
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.Name
}

// IsAdmin indica si el usuario es administrador.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// IsManager es true para manager y admin.
func (u *User) IsManager() bool { return u.Role == RoleManager || u.Role == RoleAdmin }

// RecordLogin registra el último acceso.
func (u *User) RecordLogin(ip string, now time.Time) {
	u.LastLoginAt = &now
	u.LastLoginIP = ip
}

// UserRef resumen de usuario para relaciones cargadas junto a otra entidad.
type UserRef struct {
	ID    int64
	Name  string
	Email string
}

// IsValidRole valida el rol contra la lista cerrada.
func IsValidRole(role string) bool { return contains(UserRoles, role) }

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
