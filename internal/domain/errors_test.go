package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crm-api/internal/domain"
)

func TestDependencyError_Summary(t *testing.T) {
	cases := []struct {
		name string
		err  domain.DependencyError
		want string
	}{
		{"sin dependientes", domain.DependencyError{}, ""},
		{"una oportunidad", domain.DependencyError{Opportunities: 1}, "1 oportunidad"},
		{"dos tipos", domain.DependencyError{Opportunities: 2, Interactions: 1}, "2 oportunidades y 1 interacción"},
		{"tres tipos", domain.DependencyError{Opportunities: 1, Activities: 3, Interactions: 2}, "1 oportunidad, 3 actividades y 2 interacciones"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.err.Summary())
		})
	}
}

func TestDependencyError_EsConflicto(t *testing.T) {
	var err error = &domain.DependencyError{Entity: "cliente", Name: "Acme", Activities: 1}
	wrapped := fmt.Errorf("delete customer: %w", err)

	assert.True(t, errors.Is(wrapped, domain.ErrConflict))
	var dep *domain.DependencyError
	require.True(t, errors.As(wrapped, &dep))
	assert.True(t, dep.HasDependents())
	assert.Contains(t, err.Error(), "1 actividad")
}

func TestValidationError_OrNilYUnwrap(t *testing.T) {
	var v domain.ValidationError
	assert.NoError(t, v.OrNil())

	v.Add("limit", "debe estar entre 1 y 100")
	err := v.OrNil()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Contains(t, err.Error(), "limit: debe estar entre 1 y 100")
}
