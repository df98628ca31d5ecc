// Package migrations aplica el esquema del CRM al arrancar.
// Los scripts son idempotentes (CREATE ... IF NOT EXISTS) y se ejecutan en orden de nombre.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed sql/*.sql
var scripts embed.FS

// Migration un script del esquema.
type Migration struct {
	Name string
	SQL  string
}

// All devuelve los scripts embebidos ordenados por nombre.
func All() ([]Migration, error) {
	names, err := fs.Glob(scripts, "sql/*.sql")
	if err != nil {
		return nil, fmt.Errorf("listar migraciones: %w", err)
	}
	sort.Strings(names)
	out := make([]Migration, 0, len(names))
	for _, name := range names {
		body, err := scripts.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("leer %s: %w", name, err)
		}
		out = append(out, Migration{Name: name, SQL: string(body)})
	}
	return out, nil
}

// Apply ejecuta cada script contra db. Se detiene en el primer error.
func Apply(ctx context.Context, db *sql.DB) error {
	list, err := All()
	if err != nil {
		return err
	}
	for _, m := range list {
		if _, err := db.ExecContext(ctx, m.SQL); err != nil {
			return fmt.Errorf("migración %s: %w", m.Name, err)
		}
	}
	return nil
}
