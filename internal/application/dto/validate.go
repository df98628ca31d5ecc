package dto

import (
	"strconv"
	"strings"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/pkg/validator"
)

var structValidator = validator.New()

// Validate aplica los tags validate del DTO. Devuelve *domain.ValidationError o nil.
func Validate(s any) error {
	fields := structValidator.Struct(s)
	if len(fields) == 0 {
		return nil
	}
	ve := &domain.ValidationError{}
	for _, f := range fields {
		ve.Add(f.Field, f.Message)
	}
	return ve
}

// ParseID interpreta un id de ruta o query (entero positivo).
func ParseID(field, raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id < 1 {
		return 0, domain.NewValidationError(field, "debe ser un id numérico válido")
	}
	return id, nil
}

// optionalID interpreta un filtro opcional de id; vacío no filtra.
func optionalID(field, raw string, v *domain.ValidationError) *int64 {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	id, err := ParseID(field, raw)
	if err != nil {
		v.Add(field, "debe ser un id numérico válido")
		return nil
	}
	return &id
}

// optionalBool interpreta "true"/"false"; vacío no filtra.
func optionalBool(field, raw string, v *domain.ValidationError) *bool {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		v.Add(field, "debe ser true o false")
		return nil
	}
	return &b
}

// oneOf valida un filtro de enum opcional.
func oneOf(field, value string, allowed []string, v *domain.ValidationError) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	for _, a := range allowed {
		if a == value {
			return value
		}
	}
	v.Add(field, "debe ser uno de: "+strings.Join(allowed, ", "))
	return ""
}

// NonNilTags evita serializar null en listas de etiquetas.
func NonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
