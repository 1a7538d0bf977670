package protocol

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"github.com/danmuck/stdiorpc/internal/protocol/frame"
)

type flusher interface {
	Flush() error
}

// writeBinary encodes m with MessagePack and writes it as one length-prefixed frame.
func writeBinary(w io.Writer, m msgpack.CustomEncoder) error {
	var buf bytes.Buffer
	if err := m.EncodeMsgpack(msgpack.NewEncoder(&buf)); err != nil {
		return errors.Wrapf(err, "encode %T", m)
	}
	if err := frame.WriteFrame(w, buf.Bytes(), frame.DefaultLimits()); err != nil {
		return err
	}
	if f, ok := w.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// readBinary reads one length-prefixed frame and decodes it into dst.
// dst is left untouched unless the whole payload decodes cleanly.
func readBinary[M any, PM interface {
	*M
	msgpack.CustomDecoder
}](r io.Reader, dst PM) error {
	payload, err := frame.ReadFrame(r, frame.DefaultLimits())
	if err != nil {
		return err
	}

	rd := bytes.NewReader(payload)
	var msg M
	if err := PM(&msg).DecodeMsgpack(msgpack.NewDecoder(rd)); err != nil {
		return errors.Wrapf(ErrCorrupt, "decode %T: %v", dst, err)
	}
	if rd.Len() != 0 {
		return errors.Wrapf(ErrCorrupt, "decode %T: %d trailing bytes", dst, rd.Len())
	}
	*dst = msg
	return nil
}

// decodeHeader reads the [kind, ...] array header shared by both families
// and returns the kind with the number of fields that follow it.
func decodeHeader(dec *msgpack.Decoder) (uint8, int, error) {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return 0, 0, err
	}
	if n < 1 {
		return 0, 0, errors.Errorf("array length %d", n)
	}
	kind, err := dec.DecodeInt64()
	if err != nil {
		return 0, 0, err
	}
	if kind < 1 || kind > math.MaxUint8 {
		return 0, 0, errors.Errorf("kind %d out of range", kind)
	}
	return uint8(kind), n - 1, nil
}

// decodeText reads a string field; nil is not an empty string.
func decodeText(dec *msgpack.Decoder) (string, error) {
	code, err := dec.PeekCode()
	if err != nil {
		return "", err
	}
	if code == msgpcode.Nil {
		return "", errors.New("nil text field")
	}
	text, err := dec.DecodeString()
	if err != nil {
		return "", err
	}
	if !utf8.ValidString(text) {
		return "", ErrInvalidText
	}
	return text, nil
}

func expectFields(kind fmt.Stringer, got, want int) error {
	if got != want {
		return errors.Errorf("%s carries %d fields, want %d", kind, got, want)
	}
	return nil
}
