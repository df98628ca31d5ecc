package dto

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// Límites de paginación.
const (
	MaxLimit              = 100
	DefaultLimit          = 10
	DefaultOpportunityLim = 20

	// MaxPage mantiene (page-1)*limit dentro de int.
	MaxPage = math.MaxInt / MaxLimit
)

// PageRequest parámetros crudos de paginación (query string).
type PageRequest struct {
	Page  string `query:"page"`
	Limit string `query:"limit"`
}

// Params valida page/limit. Vacío usa el valor por defecto; fuera de rango es un error (no se recorta).
func (p PageRequest) Params(defaultLimit int, v *domain.ValidationError) repository.PageParams {
	out := repository.PageParams{Page: 1, Limit: defaultLimit}
	if s := strings.TrimSpace(p.Page); s != "" {
		n, err := strconv.Atoi(s)
		switch {
		case err != nil || n < 1:
			v.Add("page", "debe ser un entero mayor o igual a 1")
		case n > MaxPage:
			v.Add("page", "fuera de rango")
		default:
			out.Page = n
		}
	}
	if s := strings.TrimSpace(p.Limit); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > MaxLimit {
			v.Add("limit", "debe ser un entero entre 1 y 100")
		} else {
			out.Limit = n
		}
	}
	return out
}

// DateRangeRequest rango crudo de fechas: RFC 3339 o YYYY-MM-DD.
type DateRangeRequest struct {
	StartDate string `query:"startDate"`
	EndDate   string `query:"endDate"`
}

// Range valida el rango. Una fecha YYYY-MM-DD como fin cubre el día completo.
// startDate > endDate es un error de validación.
func (r DateRangeRequest) Range(v *domain.ValidationError) repository.DateRange {
	var out repository.DateRange
	if s := strings.TrimSpace(r.StartDate); s != "" {
		t, _, err := ParseDate(s)
		if err != nil {
			v.Add("startDate", "fecha inválida (RFC 3339 o YYYY-MM-DD)")
		} else {
			out.Start = &t
		}
	}
	if s := strings.TrimSpace(r.EndDate); s != "" {
		t, dateOnly, err := ParseDate(s)
		if err != nil {
			v.Add("endDate", "fecha inválida (RFC 3339 o YYYY-MM-DD)")
		} else {
			if dateOnly {
				t = t.Add(24*time.Hour - time.Nanosecond)
			}
			out.End = &t
		}
	}
	if out.Complete() && out.Start.After(*out.End) {
		v.Add("startDate", "debe ser anterior o igual a endDate")
	}
	return out
}

// ParseDate acepta RFC 3339 o YYYY-MM-DD (UTC). dateOnly indica el segundo formato.
func ParseDate(s string) (t time.Time, dateOnly bool, err error) {
	if t, err = time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	t, err = time.Parse(time.DateOnly, s)
	return t, err == nil, err
}

// PaginationResponse metadatos de página en respuestas.
type PaginationResponse struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// NewPagination calcula totalPages = ceil(total / limit).
func NewPagination(total int, p repository.PageParams) PaginationResponse {
	pages := 0
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return PaginationResponse{Total: total, Page: p.Page, Limit: p.Limit, TotalPages: pages}
}

// MessageResponse respuesta simple con mensaje.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse cuerpo de error HTTP. Error solo se llena en development.
type ErrorResponse struct {
	Message string              `json:"message"`
	Error   string              `json:"error,omitempty"`
	Errors  []domain.FieldError `json:"errors,omitempty"`
}

// CustomerRefResponse resumen de cliente embebido en otras entidades.
type CustomerRefResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Company string `json:"company,omitempty"`
}

// UserRefResponse resumen de usuario embebido en otras entidades.
type UserRefResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// OpportunityRefResponse resumen de oportunidad embebido en actividades.
type OpportunityRefResponse struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Stage string `json:"stage"`
}
