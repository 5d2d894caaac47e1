package catalog

import (
	sq "github.com/Masterminds/squirrel"
)

// keysetQuery builds the SELECT used by every repository's List method
// with squirrel, since the comparison operator, sort order, and presence
// of the boundary predicate all vary with the requested cursor direction
// and position, exactly the dynamic-WHERE case squirrel is reserved for.
// Direction flips the comparison operator and sort order; each List
// reverses a Previous page's rows back into ascending order afterward.
func keysetQuery(table, columns string, cur Cursor) (string, []any) {
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Question)

	op, order := ">", "ASC"
	if cur.Direction == Previous {
		op, order = "<", "DESC"
	}

	sel := builder.Select(columns).From(table)
	if cur.LastValue != "" {
		sel = sel.Where(sq.Expr(cur.Field+" "+op+" ?", cur.LastValue))
	}
	sel = sel.OrderBy(cur.Field + " " + order).Limit(uint64(cur.Limit))

	query, args, err := sel.ToSql()
	if err != nil {
		// ToSql only fails on malformed builder input, which cannot
		// happen with the fixed field/table names this package passes.
		panic(err)
	}
	return query, args
}
