package repository

import (
	"fmt"
	"strings"

	"github.com/Vitaee/books-api/internal/shared/apperrors"
)

// Updates is an ordered set of column assignments used for inserts and
// partial updates. Column names are checked against the repository's
// writable set before they reach SQL, never interpolated from raw input.
type Updates struct {
	cols []string
	args []any
}

func NewUpdates() *Updates {
	return &Updates{}
}

// Set records a column assignment. Chaining is allowed.
func (u *Updates) Set(column string, value any) *Updates {
	u.cols = append(u.cols, column)
	u.args = append(u.args, value)
	return u
}

func (u *Updates) Len() int {
	if u == nil {
		return 0
	}
	return len(u.cols)
}

// Columns returns the assigned column names in insertion order.
func (u *Updates) Columns() []string {
	return u.cols
}

// Get returns the value assigned to column, if any. Later assignments win.
func (u *Updates) Get(column string) (any, bool) {
	for i := len(u.cols) - 1; i >= 0; i-- {
		if u.cols[i] == column {
			return u.args[i], true
		}
	}
	return nil, false
}

func (u *Updates) render(allowed map[string]bool) ([]string, []any, error) {
	if u.Len() == 0 {
		return nil, nil, apperrors.Validation("no fields supplied")
	}
	for _, c := range u.cols {
		if !allowed[c] {
			return nil, nil, apperrors.Validation("field %q is not writable", c)
		}
	}
	return u.cols, u.args, nil
}

type condKind int

const (
	condEq condKind = iota
	condILikeAny
)

type cond struct {
	kind    condKind
	column  string
	columns []string
	value   any
}

// Filter is a closed condition builder for reads and counts. Only equality
// and case-insensitive substring matching are expressible; the referenced
// columns are validated against the repository's filterable set.
type Filter struct {
	conds []cond
}

func NewFilter() *Filter {
	return &Filter{}
}

// Eq adds `column = value`.
func (f *Filter) Eq(column string, value any) *Filter {
	f.conds = append(f.conds, cond{kind: condEq, column: column, value: value})
	return f
}

// ILikeAny adds `(c1 ILIKE %term% OR c2 ILIKE %term% ...)` over the given
// columns, sharing a single bind argument.
func (f *Filter) ILikeAny(term string, columns ...string) *Filter {
	f.conds = append(f.conds, cond{kind: condILikeAny, columns: columns, value: "%" + term + "%"})
	return f
}

// render produces the WHERE fragment (without the WHERE keyword) with
// placeholders starting at startIdx. An empty filter renders to "".
func (f *Filter) render(allowed map[string]bool, startIdx int) (string, []any, error) {
	if f == nil || len(f.conds) == 0 {
		return "", nil, nil
	}
	clauses := make([]string, 0, len(f.conds))
	args := make([]any, 0, len(f.conds))
	idx := startIdx
	for _, c := range f.conds {
		switch c.kind {
		case condEq:
			if !allowed[c.column] {
				return "", nil, apperrors.Validation("field %q is not filterable", c.column)
			}
			clauses = append(clauses, fmt.Sprintf("%s = $%d", c.column, idx))
			args = append(args, c.value)
			idx++
		case condILikeAny:
			if len(c.columns) == 0 {
				return "", nil, apperrors.Validation("substring filter needs at least one column")
			}
			ors := make([]string, 0, len(c.columns))
			for _, col := range c.columns {
				if !allowed[col] {
					return "", nil, apperrors.Validation("field %q is not filterable", col)
				}
				ors = append(ors, fmt.Sprintf("%s ILIKE $%d", col, idx))
			}
			clauses = append(clauses, "("+strings.Join(ors, " OR ")+")")
			args = append(args, c.value)
			idx++
		}
	}
	return strings.Join(clauses, " AND "), args, nil
}
