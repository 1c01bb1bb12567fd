package types

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm/clause"
)

// sqlBuilder renders expressions with ? placeholders.
type sqlBuilder struct {
	strings.Builder
	vars []any
}

func (b *sqlBuilder) WriteQuoted(field any) {
	switch f := field.(type) {
	case clause.Column:
		b.WriteString(`"` + f.Name + `"`)
	case string:
		b.WriteString(`"` + f + `"`)
	default:
		b.WriteString(fmt.Sprint(f))
	}
}

func (b *sqlBuilder) AddVar(_ clause.Writer, vars ...any) {
	for range vars {
		b.WriteByte('?')
	}
	b.vars = append(b.vars, vars...)
}

func (b *sqlBuilder) AddError(error) error { return nil }

func build(f *CommonFilter) (string, []any) {
	var b sqlBuilder
	f.Build(&b)
	return b.String(), b.vars
}

func TestCommonFilter_Build(t *testing.T) {
	sql, vars := build(&CommonFilter{Field: "order_number", Operator: CommonFilterOperatorEq, Values: []any{"100042"}})
	require.Equal(t, `"order_number" = ?`, sql)
	require.Equal(t, []any{"100042"}, vars)

	sql, vars = build(&CommonFilter{Field: "created_at", Operator: CommonFilterOperatorDateRange, Values: []any{"2026-01-01", "2026-02-01"}})
	require.Equal(t, `("created_at" >= ? AND "created_at" < ?)`, sql)
	require.Len(t, vars, 2)

	sql, _ = build(&CommonFilter{Field: "amount", Operator: CommonFilterOperatorRange, Values: []any{1}})
	require.Empty(t, sql)

	sql, _ = build(&CommonFilter{Field: "amount", Operator: CommonFilterOperatorGt})
	require.Empty(t, sql)
}

func TestIsFilterableColumn(t *testing.T) {
	require.True(t, IsFilterableColumn("vps_tx_id"))
	require.False(t, IsFilterableColumn("security_key"))
	require.False(t, IsFilterableColumn("1=1; drop table x"))
}
