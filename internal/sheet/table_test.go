package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func table(columns []string, rows ...[]string) *Table {
	t := New(columns...)
	for _, r := range rows {
		t.Append(r)
	}
	return t
}

func TestAppend_PadsAndTruncates(t *testing.T) {
	tb := table([]string{"a", "b", "c"}, []string{"1"}, []string{"1", "2", "3", "4"})

	assert.Equal(t, [][]string{{"1", "", ""}, {"1", "2", "3"}}, tb.Rows)
}

func TestColumn(t *testing.T) {
	tb := table([]string{"id", "w"}, []string{"1", "0.5"}, []string{"2", "3"})

	values, err := tb.Column("w")
	require.NoError(t, err)
	assert.Equal(t, []string{"0.5", "3"}, values)

	_, err = tb.Column("missing")
	assert.ErrorIs(t, err, ErrMissingColumn)
	assert.False(t, tb.HasColumn("missing"))
}

func TestSetColumn(t *testing.T) {
	tb := table([]string{"id"}, []string{"1"}, []string{"2"})

	require.NoError(t, tb.SetColumn("fee", []string{"10", "20"}))
	assert.Equal(t, []string{"id", "fee"}, tb.Columns)
	assert.Equal(t, []string{"2", "20"}, tb.Rows[1])

	require.NoError(t, tb.SetColumn("fee", []string{"11", "21"}))
	assert.Equal(t, []string{"id", "fee"}, tb.Columns)
	assert.Equal(t, []string{"1", "11"}, tb.Rows[0])

	assert.Error(t, tb.SetColumn("short", []string{"1"}))
}

func TestRenameColumn(t *testing.T) {
	tb := table([]string{"黑猫单号", "w"})
	tb.RenameColumn("黑猫单号", "运单号")
	tb.RenameColumn("absent", "x")

	assert.Equal(t, []string{"运单号", "w"}, tb.Columns)
}

func TestConcat(t *testing.T) {
	a := table([]string{"id", "w"}, []string{"1", "0.5"})
	b := table([]string{"w", "id", "note"}, []string{"2", "2", "fragile"})

	out := Concat(a, b)

	assert.Equal(t, []string{"id", "w", "note"}, out.Columns)
	assert.Equal(t, [][]string{
		{"1", "0.5", ""},
		{"2", "2", "fragile"},
	}, out.Rows)
}

func TestConcat_Empty(t *testing.T) {
	out := Concat()
	assert.Empty(t, out.Columns)
	assert.Zero(t, out.Len())
}
