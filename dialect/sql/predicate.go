package sql

// Predicate is a where predicate. It is rendered lazily into the
// statement builder so placeholders are numbered in statement order.
type Predicate struct {
	build func(*Builder)
}

// P creates a predicate from a raw render function.
func P(fn func(*Builder)) *Predicate {
	return &Predicate{build: fn}
}

// EQ returns a "=" predicate.
func EQ(column string, v any) *Predicate {
	return P(func(b *Builder) {
		b.Ident(column).WriteString(" = ").Arg(v)
	})
}

// NEQ returns a "<>" predicate.
func NEQ(column string, v any) *Predicate {
	return P(func(b *Builder) {
		b.Ident(column).WriteString(" <> ").Arg(v)
	})
}

// In returns the `IN` predicate. An empty list never matches.
func In(column string, args ...any) *Predicate {
	if len(args) == 0 {
		return False()
	}
	return P(func(b *Builder) {
		b.Ident(column).WriteString(" IN (").Args(args...).WriteString(")")
	})
}

// IsNull returns the `IS NULL` predicate.
func IsNull(column string) *Predicate {
	return P(func(b *Builder) {
		b.Ident(column).WriteString(" IS NULL")
	})
}

// NotNull returns the `IS NOT NULL` predicate.
func NotNull(column string) *Predicate {
	return P(func(b *Builder) {
		b.Ident(column).WriteString(" IS NOT NULL")
	})
}

// False appends the FALSE keyword to the predicate.
func False() *Predicate {
	return P(func(b *Builder) {
		b.WriteString("1 = 0")
	})
}

// And combines all given predicates with AND between them.
// Nil predicates are skipped.
func And(preds ...*Predicate) *Predicate {
	var ps []*Predicate
	for _, p := range preds {
		if p != nil {
			ps = append(ps, p)
		}
	}
	switch len(ps) {
	case 0:
		return nil
	case 1:
		return ps[0]
	}
	return P(func(b *Builder) {
		for i, p := range ps {
			if i > 0 {
				b.WriteString(" AND ")
			}
			b.WriteString("(")
			p.build(b)
			b.WriteString(")")
		}
	})
}
