package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func column(model string, initial, removed, final int) LedgerColumn {
	return LedgerColumn{Model: model, Entries: []Entry{
		{Label: "start", Kind: EntryInitial, Count: initial, HasCount: true},
		{Label: "filter", Kind: EntryRemoved, Count: removed, HasCount: true},
		{Label: "n/a", Kind: EntryRemoved},
		{Label: "end", Kind: EntryFinal, Count: final, HasCount: true},
	}}
}

func TestLedger_AppendIsImmutable(t *testing.T) {
	var empty Ledger

	one, err := empty.Append(column("1", 10, 4, 6))
	require.NoError(t, err)
	two, err := one.Append(column("2", 10, 5, 5))
	require.NoError(t, err)

	assert.Empty(t, empty.Columns())
	assert.Len(t, one.Columns(), 1)
	assert.Len(t, two.Columns(), 2)
	assert.Equal(t, "2", two.Columns()[1].Model)

	_, err = two.Append(column("1", 1, 0, 1))
	assert.Error(t, err)
}

func TestLedger_AppendCopiesEntries(t *testing.T) {
	col := column("1", 10, 4, 6)
	l, err := Ledger{}.Append(col)
	require.NoError(t, err)

	col.Entries[0].Count = 99
	assert.Equal(t, 10, l.Columns()[0].Initial())
}

func TestLedger_Labels(t *testing.T) {
	a := LedgerColumn{Model: "1", Entries: []Entry{{Label: "x"}, {Label: "y"}}}
	b := LedgerColumn{Model: "2", Entries: []Entry{{Label: "x"}, {Label: "z"}, {Label: "y"}}}

	l, err := Ledger{}.Append(a)
	require.NoError(t, err)
	l, err = l.Append(b)
	require.NoError(t, err)

	assert.Equal(t, []string{"x", "y", "z"}, l.Labels())
}

func TestLedgerColumn_Check(t *testing.T) {
	assert.NoError(t, column("1", 10, 4, 6).Check())
	assert.Error(t, column("1", 10, 4, 5).Check())
	assert.Error(t, column("1", 10, -1, 11).Check())
}
