package postgres

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// recordingQuerier guarda SQL y argumentos; QueryRow devuelve row y Query devuelve rows.
type recordingQuerier struct {
	row  []any
	rows [][]any

	sql  string
	args []any
}

func (q *recordingQuerier) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, fmt.Errorf("no esperado")
}

func (q *recordingQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.sql, q.args = sql, args
	return &sliceRows{data: q.rows, pos: -1}, nil
}

func (q *recordingQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	q.sql, q.args = sql, args
	return valuesRow(q.row)
}

type valuesRow []any

func (r valuesRow) Scan(dest ...any) error { return assignAll(dest, r) }

// sliceRows implementa pgx.Rows sobre valores en memoria.
type sliceRows struct {
	data [][]any
	pos  int
}

func (r *sliceRows) Close()                                       {}
func (r *sliceRows) Err() error                                   { return nil }
func (r *sliceRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *sliceRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *sliceRows) Next() bool                                   { r.pos++; return r.pos < len(r.data) }
func (r *sliceRows) Scan(dest ...any) error                       { return assignAll(dest, r.data[r.pos]) }
func (r *sliceRows) Values() ([]any, error)                       { return r.data[r.pos], nil }
func (r *sliceRows) RawValues() [][]byte                          { return nil }
func (r *sliceRows) Conn() *pgx.Conn                              { return nil }

func assignAll(dest []any, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("scan: %d destinos para %d valores", len(dest), len(values))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *int:
			*p = values[i].(int)
		case *string:
			*p = values[i].(string)
		case *decimal.Decimal:
			*p = values[i].(decimal.Decimal)
		default:
			return fmt.Errorf("scan: destino %T no soportado", d)
		}
	}
	return nil
}

func compact(sql string) string { return strings.Join(strings.Fields(sql), " ") }

func TestDashboardRepo_CountsReutilizaElRango(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC)
	q := &recordingQuerier{row: []any{4, 3, 2, 1}}

	c, err := NewDashboardRepository(q).Counts(context.Background(), repository.DateRange{Start: &start, End: &end})

	require.NoError(t, err)
	assert.Equal(t, repository.EntityCounts{Customers: 4, Opportunities: 3, Activities: 2, Interactions: 1}, c)
	sql := compact(q.sql)
	for _, table := range []string{"customers", "opportunities", "activities", "interactions"} {
		assert.Contains(t, sql, "(SELECT COUNT(*) FROM "+table+" WHERE created_at BETWEEN $1 AND $2)")
	}
	assert.Equal(t, []any{start, end}, q.args, "un solo par de argumentos para los cuatro sub-selects")
}

func TestDashboardRepo_CountsSinRango(t *testing.T) {
	q := &recordingQuerier{row: []any{0, 0, 0, 0}}

	_, err := NewDashboardRepository(q).Counts(context.Background(), repository.DateRange{})

	require.NoError(t, err)
	assert.NotContains(t, q.sql, "WHERE")
	assert.Empty(t, q.args)
}

func TestDashboardRepo_OpportunityTotals(t *testing.T) {
	q := &recordingQuerier{row: []any{10, 3, decimal.NewFromInt(25000), decimal.Zero}}

	tot, err := NewDashboardRepository(q).OpportunityTotals(context.Background(), repository.DateRange{})

	require.NoError(t, err)
	assert.Equal(t, 10, tot.Total)
	assert.Equal(t, 3, tot.Won)
	assert.True(t, decimal.NewFromInt(25000).Equal(tot.TotalValue))
	assert.True(t, tot.WonValue.IsZero())

	sql := compact(q.sql)
	assert.Contains(t, sql, "COUNT(*) FILTER (WHERE stage = 'closed-won')")
	assert.Contains(t, sql, "COALESCE(SUM(value), 0)", "valores nulos suman 0")
	assert.Contains(t, sql, "COALESCE(SUM(value) FILTER (WHERE stage = 'closed-won'), 0)")
	assert.True(t, strings.HasSuffix(sql, "FROM opportunities"), sql)
	assert.Empty(t, q.args)
}

func TestDashboardRepo_PipelineRecorreTodoElEnum(t *testing.T) {
	rows := make([][]any, 0, len(entity.OpportunityStages))
	for i, stage := range entity.OpportunityStages {
		rows = append(rows, []any{stage, i, decimal.NewFromInt(int64(i * 100)), decimal.Zero})
	}
	q := &recordingQuerier{rows: rows}

	out, err := NewDashboardRepository(q).Pipeline(context.Background())

	require.NoError(t, err)
	require.Len(t, out, len(entity.OpportunityStages))
	assert.Equal(t, entity.OpportunityStages[0], out[0].Stage)

	sql := compact(q.sql)
	assert.Contains(t, sql, "FROM unnest($1::text[]) WITH ORDINALITY AS s(stage, ord)")
	assert.Contains(t, sql, "LEFT JOIN opportunities o ON o.stage = s.stage")
	assert.Contains(t, sql, "COALESCE(SUM(o.value), 0)")
	assert.True(t, strings.HasSuffix(sql, "ORDER BY s.ord"), sql)
	assert.Equal(t, []any{entity.OpportunityStages}, q.args)
}
