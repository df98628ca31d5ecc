package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name   string  `json:"name" validate:"notblank,max=10"`
	Email  string  `json:"email" validate:"omitempty,email"`
	Status *string `json:"status" validate:"omitempty,oneof=prospect active"`
	Limit  int     `json:"limit" validate:"min=1,max=100"`
}

func TestStruct_Valido(t *testing.T) {
	assert.Nil(t, New().Struct(sample{Name: "Acme", Limit: 10}))
}

func TestStruct_ErroresPorCampoConNombreJSON(t *testing.T) {
	bad := "otro"
	errs := New().Struct(sample{Name: "  ", Email: "no-es-email", Status: &bad, Limit: 0})

	require.Len(t, errs, 4)
	byField := map[string]string{}
	for _, e := range errs {
		byField[e.Field] = e.Message
	}
	assert.Equal(t, "es obligatorio", byField["name"])
	assert.Equal(t, "debe ser un email válido", byField["email"])
	assert.Equal(t, "debe ser uno de: prospect, active", byField["status"])
	assert.Equal(t, "debe ser mayor o igual a 1", byField["limit"])
}

func TestStruct_MaxEnTexto(t *testing.T) {
	errs := New().Struct(sample{Name: "nombre demasiado largo", Limit: 1})
	require.Len(t, errs, 1)
	assert.Equal(t, "debe tener como máximo 10 caracteres", errs[0].Message)
}
