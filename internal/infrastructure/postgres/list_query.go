package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// listQuery consulta paginada: una página ordenada y un COUNT(*) con el mismo WHERE.
type listQuery struct {
	selectCols string // columnas del SELECT, con alias
	from       string // tabla base y JOINs
	countFrom  string // tabla base para el COUNT; el WHERE solo usa columnas de la base
	where      *Predicate
	orderBy    string
	page       repository.PageParams
}

// build devuelve la consulta de la página, la del total y sus argumentos.
func (q listQuery) build() (listSQL string, listArgs []any, countSQL string, countArgs []any) {
	where, args := Where(q.where)

	countFrom := q.countFrom
	if countFrom == "" {
		countFrom = q.from
	}
	countSQL = "SELECT COUNT(*) FROM " + countFrom
	if where != "" {
		countSQL += " " + where
	}

	listSQL = "SELECT " + q.selectCols + " FROM " + q.from
	if where != "" {
		listSQL += " " + where
	}
	if q.orderBy != "" {
		listSQL += " ORDER BY " + q.orderBy
	}
	n := len(args)
	listSQL += " LIMIT $" + strconv.Itoa(n+1) + " OFFSET $" + strconv.Itoa(n+2)

	countArgs = args
	listArgs = append(append(make([]any, 0, n+2), args...), q.page.Limit, q.page.Offset())
	return listSQL, listArgs, countSQL, countArgs
}

// runList ejecuta la página y el total. scan convierte cada fila.
func runList[T any](ctx context.Context, db Querier, q listQuery, scan func(rowScanner) (T, error)) ([]T, int, error) {
	listSQL, listArgs, countSQL, countArgs := q.build()

	var total int
	if err := db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
	}
	if total == 0 {
		return []T{}, 0, nil
	}

	rows, err := db.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()
	out := make([]T, 0, q.page.Limit)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
