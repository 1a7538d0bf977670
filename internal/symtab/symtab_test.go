package symtab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPool(t *testing.T) {
	tbl := Default()
	cases := map[rune]int64{'a': 1, 'b': 2, 'c': 3, '▲': 1, '▼': -1, '▶': 100, '◀': 200}
	assert.Len(t, tbl, len(cases))
	for sym, want := range cases {
		got, ok := tbl.Resolve(sym)
		require.True(t, ok, "missing %q", sym)
		assert.Equal(t, want, got, "symbol %q", sym)
	}
	_, ok := tbl.Resolve('z')
	assert.False(t, ok)
}

func TestFromStrings(t *testing.T) {
	tbl, err := FromStrings(map[string]int64{"x": 7, "◆": -3, "𝛑": 314})
	require.NoError(t, err)
	assert.Equal(t, Table{'x': 7, '◆': -3, '𝛑': 314}, tbl)

	for _, bad := range []string{"", "ab", "\xff", "a\u0301"} {
		_, err := FromStrings(map[string]int64{bad: 1})
		assert.ErrorIs(t, err, ErrInvalidKey, "key %q", bad)
	}
}

func TestMergeOverrides(t *testing.T) {
	base := Default()
	merged := base.Merge(Table{'a': 10, 'z': 26})
	assert.Equal(t, int64(10), merged['a'])
	assert.Equal(t, int64(26), merged['z'])
	assert.Equal(t, int64(1), base['a'], "base must not be modified")
}

func TestEntriesSorted(t *testing.T) {
	entries := Table{'c': 3, 'a': 1, '▲': 1, 'b': 2}.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, []Entry{{'a', 1}, {'b', 2}, {'c', 3}, {'▲', 1}}, entries)
}
