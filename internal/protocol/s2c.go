package protocol

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// S2CKind discriminates server-to-client variants.
type S2CKind uint8

const (
	KindQuery S2CKind = iota + 1
	KindResponse
	KindLog
	KindBadSeq
)

func (k S2CKind) String() string {
	switch k {
	case KindQuery:
		return "Query"
	case KindResponse:
		return "Response"
	case KindLog:
		return "Log"
	case KindBadSeq:
		return "BadSeq"
	default:
		return fmt.Sprintf("S2CKind(%d)", uint8(k))
	}
}

// S2C is the server-to-client message family. Only the field that belongs to
// Kind is meaningful: Symbol for Query, Value for Response, Text for Log.
// BadSeq carries nothing.
type S2C struct {
	Kind   S2CKind
	Symbol rune
	Value  int64
	Text   string
}

// NewQuery asks the peer for the value of symbol.
func NewQuery(symbol rune) S2C {
	return S2C{Kind: KindQuery, Symbol: symbol}
}

// NewResponse carries the evaluated result and closes the exchange.
func NewResponse(v int64) S2C {
	return S2C{Kind: KindResponse, Value: v}
}

// NewLog is an informational side message; it never advances the exchange.
func NewLog(text string) S2C {
	return S2C{Kind: KindLog, Text: text}
}

// NewBadSeq reports that the peer's last message was out of sequence.
func NewBadSeq() S2C {
	return S2C{Kind: KindBadSeq}
}

func (m S2C) String() string {
	switch m.Kind {
	case KindQuery:
		return fmt.Sprintf("Query(%q)", m.Symbol)
	case KindResponse:
		return fmt.Sprintf("Response(%d)", m.Value)
	case KindLog:
		return fmt.Sprintf("Log(%q)", m.Text)
	case KindBadSeq:
		return "BadSeq"
	default:
		return m.Kind.String()
	}
}

// Encode writes m as one length-prefixed binary frame.
func (m S2C) Encode(w io.Writer) error {
	return writeBinary(w, m)
}

// Decode reads one length-prefixed binary frame into m.
func (m *S2C) Decode(r *bufio.Reader) error {
	return readBinary(r, m)
}

func (m S2C) EncodeMsgpack(enc *msgpack.Encoder) error {
	switch m.Kind {
	case KindQuery:
		if !utf8.ValidRune(m.Symbol) {
			return ErrInvalidSymbol
		}
		if err := encodeKind(enc, uint8(m.Kind), 1); err != nil {
			return err
		}
		return enc.EncodeInt(int64(m.Symbol))
	case KindResponse:
		if err := encodeKind(enc, uint8(m.Kind), 1); err != nil {
			return err
		}
		return enc.EncodeInt(m.Value)
	case KindLog:
		if !utf8.ValidString(m.Text) {
			return ErrInvalidText
		}
		if err := encodeKind(enc, uint8(m.Kind), 1); err != nil {
			return err
		}
		return enc.EncodeString(m.Text)
	case KindBadSeq:
		return encodeKind(enc, uint8(m.Kind), 0)
	default:
		return errors.Wrapf(ErrUnknownKind, "encode %s", m.Kind)
	}
}

func (m *S2C) DecodeMsgpack(dec *msgpack.Decoder) error {
	raw, fields, err := decodeHeader(dec)
	if err != nil {
		return err
	}
	kind := S2CKind(raw)
	switch kind {
	case KindQuery:
		if err := expectFields(kind, fields, 1); err != nil {
			return err
		}
		v, err := dec.DecodeInt64()
		if err != nil {
			return err
		}
		if v < 0 || v > math.MaxInt32 || !utf8.ValidRune(rune(v)) {
			return ErrInvalidSymbol
		}
		*m = NewQuery(rune(v))
	case KindResponse:
		if err := expectFields(kind, fields, 1); err != nil {
			return err
		}
		v, err := dec.DecodeInt64()
		if err != nil {
			return err
		}
		*m = NewResponse(v)
	case KindLog:
		if err := expectFields(kind, fields, 1); err != nil {
			return err
		}
		text, err := decodeText(dec)
		if err != nil {
			return err
		}
		*m = NewLog(text)
	case KindBadSeq:
		if err := expectFields(kind, fields, 0); err != nil {
			return err
		}
		*m = NewBadSeq()
	default:
		return ErrUnknownKind
	}
	return nil
}
