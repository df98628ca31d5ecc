package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
	apphttp "github.com/jhoicas/crm-api/internal/interfaces/http"
)

// errorApp devuelve err desde GET /fail para pasar por el ErrorHandler.
func errorApp(err error, debug bool) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(debug)})
	app.Get("/fail", func(c *fiber.Ctx) error { return err })
	return app
}

func decodeError(t *testing.T, resp *http.Response) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestErrorHandler_MapeaErroresDeDominio(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validación", domain.NewValidationError("name", "requerido"), http.StatusBadRequest, "VALIDATION"},
		{"input inválido", fmt.Errorf("%w: etapa desconocida", domain.ErrInvalidInput), http.StatusBadRequest, "VALIDATION"},
		{"no encontrado", domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"cliente no encontrado", domain.ErrCustomerNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"usuario no encontrado", domain.ErrUserNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"transición inválida", domain.ErrInvalidTransition, http.StatusConflict, "CONFLICT"},
		{"email duplicado", domain.ErrEmailAlreadyExists, http.StatusConflict, "CONFLICT"},
		{"credenciales", domain.ErrInvalidCredentials, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"no autorizado", domain.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"prohibido", domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"envuelto", fmt.Errorf("update: %w", domain.ErrCustomerNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"plazo vencido", fmt.Errorf("list customers: %w", context.DeadlineExceeded), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := errorApp(tc.err, false).Test(httptest.NewRequest(http.MethodGet, "/fail", nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.code, decodeError(t, resp).Error)
		})
	}
}

func TestErrorHandler_ValidacionIncluyeCampos(t *testing.T) {
	ve := &domain.ValidationError{}
	ve.Add("name", "requerido")
	ve.Add("email", "formato inválido")

	resp, err := errorApp(ve, false).Test(httptest.NewRequest(http.MethodGet, "/fail", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body := decodeError(t, resp)
	require.Len(t, body.Errors, 2)
	assert.Equal(t, "name", body.Errors[0].Field)
	assert.Equal(t, "email", body.Errors[1].Field)
}

func TestErrorHandler_DependenciasRetorna409ConResumen(t *testing.T) {
	de := &domain.DependencyError{Entity: "cliente", Name: "Acme", Opportunities: 2, Interactions: 1}

	resp, err := errorApp(de, false).Test(httptest.NewRequest(http.MethodGet, "/fail", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decodeError(t, resp)
	assert.Equal(t, "CONFLICT", body.Error)
	assert.Contains(t, body.Message, "2 oportunidades y 1 interacción")
}

func TestErrorHandler_InternoOcultaDetalleFueraDeDebug(t *testing.T) {
	cause := errors.New("pq: relation customers does not exist")

	resp, err := errorApp(cause, false).Test(httptest.NewRequest(http.MethodGet, "/fail", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decodeError(t, resp)
	assert.Equal(t, "INTERNAL", body.Error)
	assert.False(t, strings.Contains(body.Message+body.Error, "relation"))

	resp, err = errorApp(cause, true).Test(httptest.NewRequest(http.MethodGet, "/fail", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, decodeError(t, resp).Error, "relation customers")
}

func TestErrorHandler_RutaInexistente(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(false)})
	app.Get("/existe", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/no-existe", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decodeError(t, resp)
	assert.Equal(t, "NOT_FOUND", body.Error)
	assert.Equal(t, "Ruta no encontrada", body.Message)
}

func TestErrorHandler_PanicRecuperadoEs500(t *testing.T) {
	app := apphttp.NewApp(apphttp.AppConfig{Name: "test"})
	app.Get("/panic", func(c *fiber.Ctx) error { panic("boom") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/panic", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "INTERNAL", decodeError(t, resp).Error)
}
