// Package symtab holds the client's static symbol pool.
package symtab

import (
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"
)

var ErrInvalidKey = errors.New("symtab: key must be exactly one character")

// Table maps symbols to the integers the client substitutes for them.
type Table map[rune]int64

// Entry is one symbol/value pair.
type Entry struct {
	Symbol rune
	Value  int64
}

// Default returns the built-in pool.
func Default() Table {
	return Table{
		'a': 1,
		'b': 2,
		'c': 3,
		'▲': 1,
		'▼': -1,
		'▶': 100,
		'◀': 200,
	}
}

// FromStrings builds a table from string keys as decoded from config files.
// Each key must hold exactly one valid rune.
func FromStrings(m map[string]int64) (Table, error) {
	t := make(Table, len(m))
	for k, v := range m {
		r, size := utf8.DecodeRuneInString(k)
		if r == utf8.RuneError || size != len(k) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidKey, k)
		}
		t[r] = v
	}
	return t, nil
}

// Resolve returns the value for symbol and whether it is present.
func (t Table) Resolve(symbol rune) (int64, bool) {
	v, ok := t[symbol]
	return v, ok
}

// Merge returns a copy of t with every entry of other applied on top.
func (t Table) Merge(other Table) Table {
	out := make(Table, len(t)+len(other))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Entries returns the table sorted by symbol.
func (t Table) Entries() []Entry {
	out := make([]Entry, 0, len(t))
	for k, v := range t {
		out = append(out, Entry{Symbol: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}
