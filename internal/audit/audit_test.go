package audit

import (
	"bufio"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danmuck/stdiorpc/internal/evaluator"
	"github.com/danmuck/stdiorpc/internal/protocol"
	"github.com/danmuck/stdiorpc/internal/protocol/textline"
	"github.com/danmuck/stdiorpc/internal/testutil/testlog"
)

func fixedSink(buf *bytes.Buffer) *Sink {
	s := NewSink(buf)
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return s
}

func TestSinkRoundTrip(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	s := fixedSink(&buf)

	want := []Record{
		NewRequestRecord("ex-1", "a+▲", []rune{'a', '▲'}),
		NewResponseRecord("ex-1", 2, "1+1", nil),
		NewBadSeqRecord("", "idle", 0, "Reply(3)"),
		NewResponseRecord("ex-2", 0, "1/0", evaluator.ErrDivideByZero),
	}
	for _, rec := range want {
		require.NoError(t, s.Record(rec))
	}
	require.NoError(t, s.Close())
	assert.Equal(t, len(want), strings.Count(buf.String(), "\n"))

	var got []Record
	require.NoError(t, Scan(&buf, func(r Record) error {
		got = append(got, r)
		return nil
	}))
	require.Len(t, got, len(want))
	for i := range want {
		want[i].TimestampMS = 1700000000000
	}
	assert.Equal(t, want, got)
	assert.Equal(t, []string{"a", "▲"}, got[0].Request.Symbols)
	assert.Equal(t, evaluator.ErrDivideByZero.Error(), got[3].Response.EvalError)
	assert.Equal(t, int64(1700000000000), got[0].Time().UnixMilli())
}

func TestRecordUsesGenericEnvelope(t *testing.T) {
	var buf bytes.Buffer
	rec := NewRequestRecord("ex-9", "1+2", nil)
	rec.TimestampMS = 1
	require.NoError(t, protocol.Send(&buf, rec))

	got, err := protocol.Receive[Record](bufio.NewReader(&buf))
	require.NoError(t, err)
	assert.Equal(t, "ex-9", got.ExchangeID)
	assert.Equal(t, "1+2", got.Request.Expression)
}

func TestScanSkipsStrayLines(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	s := fixedSink(&buf)
	require.NoError(t, s.Record(NewRequestRecord("ex-1", "c", []rune{'c'})))
	buf.WriteString("debug: something printed to the log\n")
	require.NoError(t, s.Record(NewResponseRecord("ex-1", 3, "3", nil)))

	var types []string
	require.NoError(t, Scan(&buf, func(r Record) error {
		types = append(types, r.Type)
		return nil
	}))
	assert.Equal(t, []string{TypeRequest, TypeResponse}, types)
}

func TestScanStopsOnCallbackError(t *testing.T) {
	var buf bytes.Buffer
	s := fixedSink(&buf)
	require.NoError(t, s.Record(NewRequestRecord("ex-1", "1", nil)))
	require.NoError(t, s.Record(NewRequestRecord("ex-2", "2", nil)))

	stop := errors.New("stop")
	calls := 0
	err := Scan(&buf, func(Record) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestScanReportsFramingErrors(t *testing.T) {
	err := Scan(strings.NewReader("{\"type\":\"request\"\n"), func(Record) error { return nil })
	assert.ErrorIs(t, err, textline.ErrCorrupt)

	err = Scan(strings.NewReader("\n"), func(Record) error { return nil })
	assert.ErrorIs(t, err, textline.ErrEmptyLine)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
	}{
		{"missing timestamp", NewRequestRecord("ex", "1", nil)},
		{"unknown type", Record{Type: "noise", TimestampMS: 1}},
		{"request without id", Record{Type: TypeRequest, TimestampMS: 1, Request: &Request{}}},
		{"response without payload", Record{Type: TypeResponse, ExchangeID: "ex", TimestampMS: 1}},
		{"bad seq with extra payload", Record{Type: TypeBadSeq, TimestampMS: 1, BadSeq: &BadSeq{}, Request: &Request{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.rec.Validate(), ErrInvalidRecord)
			var buf bytes.Buffer
			assert.ErrorIs(t, tt.rec.Encode(&buf), ErrInvalidRecord)
			assert.Zero(t, buf.Len())
		})
	}
}

func TestOpenAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	for i := 0; i < 2; i++ {
		s, err := Open(path)
		require.NoError(t, err)
		require.NoError(t, s.Record(NewRequestRecord("ex", "1+1", nil)))
		require.NoError(t, s.Close())
	}

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	count := 0
	require.NoError(t, Scan(f, func(Record) error {
		count++
		return nil
	}))
	assert.Equal(t, 2, count)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestOpenFailure(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "server.log"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDiscard(t *testing.T) {
	assert.NoError(t, Discard.Record(Record{}))
}
