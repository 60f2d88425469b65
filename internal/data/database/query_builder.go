// Package database builds parameterized list queries with sanitized identifiers.
package database

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// ConditionType is the comparison applied by a Condition.
type ConditionType string

const (
	Equal              ConditionType = "="
	NotEqual           ConditionType = "!="
	GreaterThanOrEqual ConditionType = ">="
	LessThan           ConditionType = "<"
	// In matches any element of a slice value via = ANY($n).
	In ConditionType = "IN"
	// Contains is JSONB containment (@>).
	Contains ConditionType = "@>"

	unset = -1
)

// Condition is one WHERE predicate. Field is an identifier and is always quoted.
type Condition struct {
	Field string
	Type  ConditionType
	Value any
}

// WhereCond returns a Condition on field.
func WhereCond(field string, condType ConditionType, value any) Condition {
	return Condition{Field: field, Type: condType, Value: value}
}

// ListQueryOptions describes a SELECT over a single table.
type ListQueryOptions struct {
	Table string
	// Select is emitted verbatim; it must be a constant owned by the caller, never user input.
	Select     string
	CountOnly  bool
	Conditions []Condition
	OrderBy    []string
	OrderDir   string
	Limit      int
	Offset     int
}

// ListQueryOption mutates ListQueryOptions.
type ListQueryOption func(*ListQueryOptions)

// NewListQueryOptions returns options for table with no limit or offset.
func NewListQueryOptions(table string, opts ...ListQueryOption) *ListQueryOptions {
	o := &ListQueryOptions{Table: table, Limit: unset, Offset: unset}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithSelect sets a trusted select list.
func WithSelect(expr string) ListQueryOption {
	return func(o *ListQueryOptions) { o.Select = expr }
}

// WithCondition adds a predicate. Conditions are ANDed.
func WithCondition(cond Condition) ListQueryOption {
	return func(o *ListQueryOptions) { o.Conditions = append(o.Conditions, cond) }
}

// WithOrderBy sets the ordering columns and a direction applied to each.
func WithOrderBy(direction string, columns ...string) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.OrderBy = columns
		o.OrderDir = direction
	}
}

// WithLimit sets the limit. Accepts 0.
func WithLimit(limit int) ListQueryOption {
	return func(o *ListQueryOptions) {
		if limit >= 0 {
			o.Limit = limit
		}
	}
}

// WithOffset sets the offset. Accepts 0.
func WithOffset(offset int) ListQueryOption {
	return func(o *ListQueryOptions) {
		if offset >= 0 {
			o.Offset = offset
		}
	}
}

// WithCountOnly turns the query into SELECT COUNT(*). Ordering and pagination are dropped.
func WithCountOnly() ListQueryOption {
	return func(o *ListQueryOptions) { o.CountOnly = true }
}

func quote(ident string) string {
	return pgx.Identifier(strings.Split(ident, ".")).Sanitize()
}

// BuildListQuery renders options into SQL and positional arguments.
//
//	query, args := BuildListQuery(NewListQueryOptions("applications",
//		WithCondition(WhereCond("job_id", Equal, "job-1")),
//		WithCondition(WhereCond("status", In, []string{"In Progress"})),
//		WithOrderBy("DESC", "updated_at", "id"),
//		WithLimit(50),
//	))
func BuildListQuery(o *ListQueryOptions) (string, []any) {
	if o == nil {
		return "", nil
	}

	var q strings.Builder
	switch {
	case o.CountOnly:
		q.WriteString("SELECT COUNT(*)")
	case o.Select != "":
		q.WriteString("SELECT ")
		q.WriteString(o.Select)
	default:
		q.WriteString("SELECT *")
	}
	q.WriteString(" FROM ")
	q.WriteString(quote(o.Table))

	where, args := buildWhere(o.Conditions)
	q.WriteString(where)
	if o.CountOnly {
		return q.String(), args
	}

	if len(o.OrderBy) > 0 {
		dir := strings.ToUpper(strings.TrimSpace(o.OrderDir))
		if dir != "ASC" && dir != "DESC" {
			dir = ""
		}
		cols := make([]string, len(o.OrderBy))
		for i, c := range o.OrderBy {
			cols[i] = quote(c)
			if dir != "" {
				cols[i] += " " + dir
			}
		}
		q.WriteString(" ORDER BY ")
		q.WriteString(strings.Join(cols, ", "))
	}
	if o.Limit != unset {
		args = append(args, o.Limit)
		fmt.Fprintf(&q, " LIMIT $%d", len(args))
	}
	if o.Offset != unset {
		args = append(args, o.Offset)
		fmt.Fprintf(&q, " OFFSET $%d", len(args))
	}
	return q.String(), args
}

func buildWhere(conds []Condition) (string, []any) {
	var (
		parts []string
		args  []any
	)
	for _, c := range conds {
		if c.Field == "" {
			continue
		}
		args = append(args, c.Value)
		field := quote(c.Field)
		switch c.Type {
		case In:
			parts = append(parts, fmt.Sprintf("%s = ANY($%d)", field, len(args)))
		case Equal, NotEqual, GreaterThanOrEqual, LessThan, Contains:
			parts = append(parts, fmt.Sprintf("%s %s $%d", field, c.Type, len(args)))
		default:
			args = args[:len(args)-1]
		}
	}
	if len(parts) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(parts, " AND "), args
}
