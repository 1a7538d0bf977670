// Package textline frames JSON documents one per line.
//
// Lines that do not open a JSON object are treated as stray diagnostic
// output from a co-resident writer sharing the stream: they are logged and
// skipped instead of failing the read.
package textline

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
)

// MaxLineBytes caps a single line, newline included.
const MaxLineBytes = 128 * 1024

var (
	ErrEmptyLine    = errors.New("textline: empty line")
	ErrLineTooLarge = errors.New("textline: line too large")
	ErrCorrupt      = errors.New("textline: corrupt document")
)

type flusher interface {
	Flush() error
}

// Write marshals v, terminates it with a newline and flushes w when it buffers.
func Write(w io.Writer, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if len(payload)+1 > MaxLineBytes {
		return ErrLineTooLarge
	}
	payload = append(payload, '\n')
	if _, err := w.Write(payload); err != nil {
		return err
	}
	if f, ok := w.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// Read decodes the next JSON line from r into v.
// io.EOF is returned unchanged when the stream ends before any byte of a new line.
func Read(r *bufio.Reader, v any) error {
	for {
		line, err := readLine(r)
		if err != nil {
			return err
		}
		line = bytes.TrimSuffix(line, []byte{'\n'})
		line = bytes.TrimSuffix(line, []byte{'\r'})
		if len(line) == 0 {
			return ErrEmptyLine
		}
		if line[0] != '{' {
			log.Warn().Str("line", string(line)).Msg("textline: skipping stray output")
			continue
		}
		if err := json.Unmarshal(line, v); err != nil {
			return fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		return nil
	}
}

func readLine(r *bufio.Reader) ([]byte, error) {
	var line []byte
	for {
		chunk, err := r.ReadSlice('\n')
		line = append(line, chunk...)
		if len(line) > MaxLineBytes {
			return nil, ErrLineTooLarge
		}
		switch {
		case err == nil:
			return line, nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF) && len(line) > 0:
			return line, nil
		default:
			return nil, err
		}
	}
}
