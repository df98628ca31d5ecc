package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrCustomerNotFound   = errors.New("cliente no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrInvalidCredentials = errors.New("credenciales inválidas")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInvalidTransition  = errors.New("transición de estado no permitida")
)

// FieldError describe un error de validación asociado a un campo de entrada.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError agrupa los errores por campo. errors.Is(err, ErrInvalidInput) es true.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError construye un ValidationError con un solo campo.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validación: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Add agrega un error de campo.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil devuelve nil si no hay errores acumulados.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// DependencyError indica que un registro no se puede eliminar porque tiene dependientes.
// errors.Is(err, ErrConflict) es true.
type DependencyError struct {
	Entity        string
	Name          string
	Opportunities int
	Activities    int
	Interactions  int
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s %q tiene registros dependientes: %s", e.Entity, e.Name, e.Summary())
}

func (e *DependencyError) Unwrap() error { return ErrConflict }

// Summary resumen legible de las dependencias, ej: "2 oportunidades y 1 interacción".
func (e *DependencyError) Summary() string {
	var parts []string
	if e.Opportunities > 0 {
		parts = append(parts, plural(e.Opportunities, "oportunidad", "oportunidades"))
	}
	if e.Activities > 0 {
		parts = append(parts, plural(e.Activities, "actividad", "actividades"))
	}
	if e.Interactions > 0 {
		parts = append(parts, plural(e.Interactions, "interacción", "interacciones"))
	}
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + " y " + parts[len(parts)-1]
	}
}

// HasDependents indica si hay al menos un registro dependiente.
func (e *DependencyError) HasDependents() bool {
	return e.Opportunities+e.Activities+e.Interactions > 0
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
