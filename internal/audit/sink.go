package audit

import (
	"bufio"
	"io"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// DefaultPath is where stdiod appends its trail unless configured otherwise.
const DefaultPath = "server.log"

// Recorder accepts audit records.
type Recorder interface {
	Record(rec Record) error
}

// Discard drops every record.
var Discard Recorder = discard{}

type discard struct{}

func (discard) Record(Record) error { return nil }

// Sink appends records to a writer, one JSON line each, flushing after
// every record so a crash never loses a completed line.
type Sink struct {
	mu     sync.Mutex
	w      *bufio.Writer
	closer io.Closer
	now    func() time.Time
}

// Open appends to the file at path, creating it if needed.
func Open(path string) (*Sink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, errors.Wrapf(err, "audit: open %s", path)
	}
	s := NewSink(f)
	s.closer = f
	return s, nil
}

func NewSink(w io.Writer) *Sink {
	return &Sink{w: bufio.NewWriter(w), now: time.Now}
}

// Record stamps rec when it carries no timestamp and appends it.
func (s *Sink) Record(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.TimestampMS == 0 {
		rec.TimestampMS = uint64(s.now().UnixMilli())
	}
	return rec.Encode(s.w)
}

func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.w.Flush()
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Scan decodes every record in r in order and calls fn for each. It stops at
// the first error from fn or from decoding; a clean end of input returns nil.
func Scan(r io.Reader, fn func(Record) error) error {
	br := bufio.NewReader(r)
	for {
		var rec Record
		if err := rec.Decode(br); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}
