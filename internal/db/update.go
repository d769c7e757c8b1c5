package db

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrNoFields is returned when an UPDATE has no assignments to render.
var ErrNoFields = eris.New("db: no fields to update")

// Placeholder renders the n-th (1-based) bind parameter.
type Placeholder func(n int) string

// Question renders SQLite-style "?" placeholders.
func Question(int) string { return "?" }

// Dollar renders PostgreSQL-style "$n" placeholders.
func Dollar(n int) string { return "$" + strconv.Itoa(n) }

type assignment struct {
	column string
	value  any
}

// UpdateBuilder accumulates column assignments for a single-table UPDATE and
// renders the statement with its ordered argument list.
type UpdateBuilder struct {
	table       string
	placeholder Placeholder
	sets        []assignment
}

// NewUpdate starts an UPDATE against table. A nil placeholder defaults to
// Question.
func NewUpdate(table string, placeholder Placeholder) *UpdateBuilder {
	if placeholder == nil {
		placeholder = Question
	}
	return &UpdateBuilder{table: table, placeholder: placeholder}
}

// Set stages column = value.
func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, value: value})
	return b
}

// SetFloat stages column = *v, or nothing when v is nil.
func (b *UpdateBuilder) SetFloat(column string, v *float64) *UpdateBuilder {
	if v == nil {
		return b
	}
	return b.Set(column, *v)
}

// Len returns the number of staged assignments.
func (b *UpdateBuilder) Len() int {
	return len(b.sets)
}

// Where renders "UPDATE table SET ... WHERE column = ?" with value bound
// last. It returns ErrNoFields when nothing was staged.
func (b *UpdateBuilder) Where(column string, value any) (string, []any, error) {
	if len(b.sets) == 0 {
		return "", nil, ErrNoFields
	}

	var sb strings.Builder
	args := make([]any, 0, len(b.sets)+1)

	sb.WriteString("UPDATE ")
	sb.WriteString(b.table)
	sb.WriteString(" SET ")
	for i, a := range b.sets {
		if i > 0 {
			sb.WriteString(", ")
		}
		args = append(args, a.value)
		sb.WriteString(a.column)
		sb.WriteString(" = ")
		sb.WriteString(b.placeholder(len(args)))
	}

	args = append(args, value)
	sb.WriteString(" WHERE ")
	sb.WriteString(column)
	sb.WriteString(" = ")
	sb.WriteString(b.placeholder(len(args)))

	return sb.String(), args, nil
}
