package storage

import (
	"fmt"
	"slices"
	"strings"
)

// Operator of a predicate.
type Operator int

// Predicate operators.
const (
	OpEQ Operator = iota
	OpIn
	OpIsNull
	OpNotNull
)

// Predicate is a condition on one column. Predicates passed together are
// joined with AND.
type Predicate struct {
	Column string
	Op     Operator
	Values []any
}

// EQ returns a column equality predicate.
func EQ(column string, v any) Predicate {
	return Predicate{Column: column, Op: OpEQ, Values: []any{v}}
}

// In returns a predicate matching any of the given values.
// An empty list matches no rows.
func In(column string, vs ...any) Predicate {
	return Predicate{Column: column, Op: OpIn, Values: vs}
}

// IDIn returns an In predicate over the id column.
func IDIn(ids ...int64) Predicate {
	vs := make([]any, len(ids))
	for i := range ids {
		vs[i] = ids[i]
	}
	return In("id", vs...)
}

// IsNull returns a predicate matching NULL values.
func IsNull(column string) Predicate {
	return Predicate{Column: column, Op: OpIsNull}
}

// NotNull returns a predicate matching non-NULL values.
func NotNull(column string) Predicate {
	return Predicate{Column: column, Op: OpNotNull}
}

// Match reports if the row satisfies the predicate.
func (p Predicate) Match(row Row) bool {
	v := row[p.Column]
	switch p.Op {
	case OpEQ:
		return v != nil && len(p.Values) == 1 && Equal(v, p.Values[0])
	case OpIn:
		return v != nil && slices.ContainsFunc(p.Values, func(x any) bool { return Equal(v, x) })
	case OpIsNull:
		return v == nil
	case OpNotNull:
		return v != nil
	default:
		return false
	}
}

// MatchAll reports if the row satisfies all predicates.
func MatchAll(row Row, preds ...Predicate) bool {
	for _, p := range preds {
		if !p.Match(row) {
			return false
		}
	}
	return true
}

func (p Predicate) String() string {
	switch p.Op {
	case OpEQ:
		return fmt.Sprintf("%s=%v", p.Column, p.Values[0])
	case OpIn:
		vs := make([]string, len(p.Values))
		for i := range p.Values {
			vs[i] = fmt.Sprint(p.Values[i])
		}
		return fmt.Sprintf("%s in (%s)", p.Column, strings.Join(vs, ","))
	case OpIsNull:
		return p.Column + " is null"
	default:
		return p.Column + " is not null"
	}
}

// Equal compares two stored values. Integers of different types compare
// by value.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if x, ok := Int64(a); ok {
		if y, ok := Int64(b); ok {
			return x == y
		}
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}
