package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
)

// Códigos que viajan en ErrorResponse.Error para errores de cliente.
const (
	codeValidation   = "VALIDATION"
	codeNotFound     = "NOT_FOUND"
	codeConflict     = "CONFLICT"
	codeUnauthorized = "UNAUTHORIZED"
	codeForbidden    = "FORBIDDEN"
	codeUnavailable  = "SERVICE_UNAVAILABLE"
	codeInternal     = "INTERNAL"
)

// ErrorHandler es el único traductor de errores a HTTP. Los handlers devuelven el
// error del caso de uso tal cual; aquí se decide status y cuerpo.
// Con debug=true los 500 incluyen el detalle del error.
func ErrorHandler(debug bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, body := translateError(err, debug)
		if status >= fiber.StatusInternalServerError {
			log.Error().Err(err).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Str("request_id", requestID(c)).
				Msg("error interno")
		}
		return c.Status(status).JSON(body)
	}
}

func translateError(err error, debug bool) (int, dto.ErrorResponse) {
	var (
		ve *domain.ValidationError
		de *domain.DependencyError
		fe *fiber.Error
	)
	switch {
	case errors.As(err, &ve):
		return fiber.StatusBadRequest, dto.ErrorResponse{Message: "Error de validación", Error: codeValidation, Errors: ve.Fields}
	case errors.As(err, &de):
		return fiber.StatusConflict, dto.ErrorResponse{
			Message: "No se puede eliminar: " + de.Error(),
			Error:   codeConflict,
		}
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Message: err.Error(), Error: codeValidation}
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrCustomerNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Message: err.Error(), Error: codeNotFound}
	case errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrEmailAlreadyExists),
		errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, dto.ErrorResponse{Message: err.Error(), Error: codeConflict}
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Message: err.Error(), Error: codeUnauthorized}
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, dto.ErrorResponse{Message: err.Error(), Error: codeForbidden}
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusServiceUnavailable, dto.ErrorResponse{Message: "Base de datos no disponible, intente de nuevo", Error: codeUnavailable}
	case errors.As(err, &fe):
		if fe.Code == fiber.StatusNotFound {
			return fe.Code, dto.ErrorResponse{Message: "Ruta no encontrada", Error: codeNotFound}
		}
		if fe.Code < fiber.StatusInternalServerError {
			return fe.Code, dto.ErrorResponse{Message: fe.Message}
		}
	}

	body := dto.ErrorResponse{Message: "Error interno del servidor", Error: codeInternal}
	if debug {
		body.Error = err.Error()
	}
	return fiber.StatusInternalServerError, body
}

// parseBody decodifica el JSON de entrada; un cuerpo mal formado es un error de validación.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return domain.NewValidationError("body", "cuerpo JSON inválido")
	}
	return nil
}

// paramID lee y valida un id de la ruta.
func paramID(c *fiber.Ctx, name string) (int64, error) {
	return dto.ParseID(name, c.Params(name))
}
