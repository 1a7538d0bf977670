package evaluator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEval(t *testing.T) {
	tests := []struct {
		expr string
		want int64
	}{
		{"1+2", 3},
		{"1 + 2 * 3", 7},
		{"10 - 4 - 3", 3},
		{"100/7", 14},
		{"-7/2", -3},
		{"7/-2", -3},
		{"2*3+4*5", 26},
		{"1--1", 2},
		{"1+-1", 0},
		{"--5", 5},
		{"+5", 5},
		{"3*-2", -6},
		{" \t42\n", 42},
		{"007", 7},
		{"-9223372036854775808", math.MinInt64},
		{"9223372036854775807", math.MaxInt64},
		{"200-100*1", 100},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Eval(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		expr string
		want error
	}{
		{"", ErrSyntax},
		{"   ", ErrSyntax},
		{"1+", ErrSyntax},
		{"*2", ErrSyntax},
		{"1 2", ErrSyntax},
		{"a+1", ErrSyntax},
		{"(1)", ErrSyntax},
		{"1/0", ErrDivideByZero},
		{"5/(0)", ErrSyntax},
		{"9223372036854775808", ErrOverflow},
		{"9223372036854775807+1", ErrOverflow},
		{"-9223372036854775808-1", ErrOverflow},
		{"-9223372036854775808/-1", ErrOverflow},
		{"-9223372036854775808*-1", ErrOverflow},
		{"--9223372036854775808", ErrOverflow},
		{"4611686018427387904*2", ErrOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := Eval(tt.expr)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEvalOr(t *testing.T) {
	assert.Equal(t, int64(6), EvalOr("1+2+3", 0))
	assert.Equal(t, int64(0), EvalOr("x", 0))
	assert.Equal(t, int64(-1), EvalOr("1/0", -1))
}
