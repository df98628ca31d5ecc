package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestReadCustomers_UTF8(t *testing.T) {
	in := "name,email,estimatedValue,employeeCount,tags,status\n" +
		"Acme SAS,ventas@acme.co,1500.50,12,vip; retail ;,Active\n" +
		",,,,,\n" +
		"Beta Ltda,beta@beta.co,,,,\n"

	rows, rowErrs, err := readCustomers(strings.NewReader(in))
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, rows, 2)

	acme := rows[0].Request
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "Acme SAS", acme.Name)
	assert.Equal(t, "active", acme.Status)
	require.NotNil(t, acme.EstimatedValue)
	assert.Equal(t, "1500.5", acme.EstimatedValue.String())
	require.NotNil(t, acme.EmployeeCount)
	assert.Equal(t, 12, *acme.EmployeeCount)
	assert.Equal(t, []string{"vip", "retail"}, acme.Tags)

	assert.Equal(t, 4, rows[1].Line)
	assert.Nil(t, rows[1].Request.EstimatedValue)
	assert.Nil(t, rows[1].Request.Tags)
}

func TestReadCustomers_Latin1(t *testing.T) {
	utf := "name,city\nPanadería Ñandú,Bogotá\n"
	latin, err := charmap.ISO8859_1.NewEncoder().String(utf)
	require.NoError(t, err)

	rows, _, err := readCustomers(strings.NewReader(latin))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Panadería Ñandú", rows[0].Request.Name)
	assert.Equal(t, "Bogotá", rows[0].Request.City)
}

func TestReadCustomers_BOMYEncabezadoSinName(t *testing.T) {
	withBOM := append([]byte{0xEF, 0xBB, 0xBF}, []byte("name\nAcme\n")...)
	rows, _, err := readCustomers(bytes.NewReader(withBOM))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	_, _, err = readCustomers(strings.NewReader("email\nx@y.co\n"))
	assert.Error(t, err)

	_, _, err = readCustomers(strings.NewReader(""))
	assert.Error(t, err)
}

func TestReadCustomers_ValoresInvalidos(t *testing.T) {
	in := "name,estimatedValue,employeeCount\n" +
		"Acme,mil,\n" +
		"Beta,,muchos\n" +
		"Gamma,10,3\n"

	rows, rowErrs, err := readCustomers(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Gamma", rows[0].Request.Name)
	require.Len(t, rowErrs, 2)
	assert.Equal(t, 2, rowErrs[0].Line)
	assert.Equal(t, 3, rowErrs[1].Line)
}
