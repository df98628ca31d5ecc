package postgres

import (
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// Predicate fragmento de WHERE. Un *Predicate nil significa "sin filtro" y se omite al combinar.
// Los fragmentos hoja usan '?' como marcador; se numeran ($1, $2...) al renderizar.
type Predicate struct {
	sql      string
	args     []any
	op       string // "AND" | "OR" en grupos
	children []*Predicate
}

// Raw fragmento literal. Debe traer un '?' por cada argumento.
func Raw(sql string, args ...any) *Predicate {
	return &Predicate{sql: sql, args: args}
}

// Eq columna = valor. nil si el valor es el cero del tipo.
func Eq[T comparable](col string, v T) *Predicate {
	var zero T
	if v == zero {
		return nil
	}
	return &Predicate{sql: col + " = ?", args: []any{v}}
}

// EqPtr columna = *v. nil si v es nil.
func EqPtr[T any](col string, v *T) *Predicate {
	if v == nil {
		return nil
	}
	return &Predicate{sql: col + " = ?", args: []any{*v}}
}

// ILike búsqueda por subcadena sin distinguir mayúsculas. nil si term está vacío.
func ILike(col, term string) *Predicate {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}
	return &Predicate{sql: col + " ILIKE ?", args: []any{"%" + escapeLike(term) + "%"}}
}

// Search OR de ILike sobre varias columnas con el mismo término.
func Search(term string, cols ...string) *Predicate {
	parts := make([]*Predicate, 0, len(cols))
	for _, c := range cols {
		parts = append(parts, ILike(c, term))
	}
	return Or(parts...)
}

// Between rango inclusivo. nil salvo que ambos extremos existan.
func Between(col string, r repository.DateRange) *Predicate {
	if !r.Complete() {
		return nil
	}
	return &Predicate{sql: col + " BETWEEN ? AND ?", args: []any{*r.Start, *r.End}}
}

// Lt columna < t. nil si t es nil.
func Lt(col string, t *time.Time) *Predicate {
	if t == nil {
		return nil
	}
	return &Predicate{sql: col + " < ?", args: []any{*t}}
}

// Gte columna >= t. nil si t es nil.
func Gte(col string, t *time.Time) *Predicate {
	if t == nil {
		return nil
	}
	return &Predicate{sql: col + " >= ?", args: []any{*t}}
}

// AnyOf columna = ANY(valores). nil si no hay valores.
func AnyOf(col string, values []string) *Predicate {
	if len(values) == 0 {
		return nil
	}
	return &Predicate{sql: col + " = ANY(?)", args: []any{values}}
}

// When devuelve p solo si cond es true.
func When(cond bool, p *Predicate) *Predicate {
	if !cond {
		return nil
	}
	return p
}

// And combina los fragmentos no nil con AND.
func And(ps ...*Predicate) *Predicate { return group("AND", ps) }

// Or combina los fragmentos no nil con OR.
func Or(ps ...*Predicate) *Predicate { return group("OR", ps) }

func group(op string, ps []*Predicate) *Predicate {
	kept := make([]*Predicate, 0, len(ps))
	for _, p := range ps {
		if p != nil {
			kept = append(kept, p)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return &Predicate{op: op, children: kept}
}

// Render devuelve el SQL con marcadores numerados desde len(args)+1 y los argumentos acumulados.
// Un predicado nil devuelve "".
func (p *Predicate) Render(args []any) (string, []any) {
	if p == nil {
		return "", args
	}
	var b strings.Builder
	args = p.render(&b, args, true)
	return b.String(), args
}

func (p *Predicate) render(b *strings.Builder, args []any, root bool) []any {
	if p.children == nil {
		i := 0
		for _, r := range p.sql {
			if r == '?' && i < len(p.args) {
				args = append(args, p.args[i])
				i++
				b.WriteByte('$')
				b.WriteString(strconv.Itoa(len(args)))
				continue
			}
			b.WriteRune(r)
		}
		return args
	}
	if !root {
		b.WriteByte('(')
	}
	for i, c := range p.children {
		if i > 0 {
			b.WriteString(" " + p.op + " ")
		}
		args = c.render(b, args, false)
	}
	if !root {
		b.WriteByte(')')
	}
	return args
}

// Where "WHERE ..." o "" si no hay filtros.
func Where(p *Predicate) (string, []any) {
	sql, args := p.Render(nil)
	if sql == "" {
		return "", nil
	}
	return "WHERE " + sql, args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
