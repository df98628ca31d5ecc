package main

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/crm-api/internal/application/dto"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// csvRow cliente listo para crear y la línea del archivo de donde salió.
type csvRow struct {
	Line    int
	Request dto.CreateCustomerRequest
}

// rowError fila descartada antes de llegar al caso de uso.
type rowError struct {
	Line int
	Err  string
}

// decodeInput devuelve el contenido en UTF-8. Si no es UTF-8 válido se asume ISO-8859-1.
func decodeInput(r io.Reader) (io.Reader, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return bytes.NewReader(raw), nil
	}
	return transform.NewReader(bytes.NewReader(raw), charmap.ISO8859_1.NewDecoder()), nil
}

// readCustomers interpreta el CSV completo. Las filas con valores que no se pueden
// convertir se devuelven en rowErrs; la validación de negocio la hace el caso de uso.
func readCustomers(r io.Reader) ([]csvRow, []rowError, error) {
	in, err := decodeInput(r)
	if err != nil {
		return nil, nil, err
	}
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("archivo vacío")
		}
		return nil, nil, err
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["name"]; !ok {
		return nil, nil, fmt.Errorf("falta la columna name")
	}

	var (
		rows    []csvRow
		rowErrs []rowError
	)
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			rowErrs = append(rowErrs, rowError{Line: line, Err: err.Error()})
			continue
		}
		get := func(col string) string {
			i, ok := cols[strings.ToLower(col)]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		if get("name") == "" && get("email") == "" {
			continue // fila en blanco
		}

		req := dto.CreateCustomerRequest{
			Name:       get("name"),
			Company:    get("company"),
			Industry:   get("industry"),
			Email:      get("email"),
			Phone:      get("phone"),
			Address:    get("address"),
			City:       get("city"),
			PostalCode: get("postalCode"),
			State:      get("state"),
			Country:    get("country"),
			Status:     strings.ToLower(get("status")),
			Notes:      get("notes"),
			Website:    get("website"),
			Tags:       splitTags(get("tags")),
		}
		if v := get("estimatedValue"); v != "" {
			d, err := decimal.NewFromString(v)
			if err != nil {
				rowErrs = append(rowErrs, rowError{Line: line, Err: "estimatedValue inválido: " + v})
				continue
			}
			req.EstimatedValue = &d
		}
		if v := get("employeeCount"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				rowErrs = append(rowErrs, rowError{Line: line, Err: "employeeCount inválido: " + v})
				continue
			}
			req.EmployeeCount = &n
		}
		rows = append(rows, csvRow{Line: line, Request: req})
	}
	return rows, rowErrs, nil
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(s, ";") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
