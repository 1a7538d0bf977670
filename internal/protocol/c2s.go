package protocol

import (
	"bufio"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// C2SKind discriminates client-to-server variants.
type C2SKind uint8

const (
	KindRequest C2SKind = iota + 1
	KindReply
)

func (k C2SKind) String() string {
	switch k {
	case KindRequest:
		return "Request"
	case KindReply:
		return "Reply"
	default:
		return fmt.Sprintf("C2SKind(%d)", uint8(k))
	}
}

// C2S is the client-to-server message family. Only the field that belongs to
// Kind is meaningful: Expression for Request, Value for Reply.
type C2S struct {
	Kind       C2SKind
	Expression string
	Value      int64
}

// NewRequest opens an exchange for expr.
func NewRequest(expr string) C2S {
	return C2S{Kind: KindRequest, Expression: expr}
}

// NewReply answers the outstanding Query with v.
func NewReply(v int64) C2S {
	return C2S{Kind: KindReply, Value: v}
}

func (m C2S) String() string {
	switch m.Kind {
	case KindRequest:
		return fmt.Sprintf("Request(%q)", m.Expression)
	case KindReply:
		return fmt.Sprintf("Reply(%d)", m.Value)
	default:
		return m.Kind.String()
	}
}

// Encode writes m as one length-prefixed binary frame.
func (m C2S) Encode(w io.Writer) error {
	return writeBinary(w, m)
}

// Decode reads one length-prefixed binary frame into m.
func (m *C2S) Decode(r *bufio.Reader) error {
	return readBinary(r, m)
}

func (m C2S) EncodeMsgpack(enc *msgpack.Encoder) error {
	switch m.Kind {
	case KindRequest:
		if !utf8.ValidString(m.Expression) {
			return ErrInvalidText
		}
		if err := encodeKind(enc, uint8(m.Kind), 1); err != nil {
			return err
		}
		return enc.EncodeString(m.Expression)
	case KindReply:
		if err := encodeKind(enc, uint8(m.Kind), 1); err != nil {
			return err
		}
		return enc.EncodeInt(m.Value)
	default:
		return errors.Wrapf(ErrUnknownKind, "encode %s", m.Kind)
	}
}

func (m *C2S) DecodeMsgpack(dec *msgpack.Decoder) error {
	raw, fields, err := decodeHeader(dec)
	if err != nil {
		return err
	}
	kind := C2SKind(raw)
	switch kind {
	case KindRequest:
		if err := expectFields(kind, fields, 1); err != nil {
			return err
		}
		expr, err := decodeText(dec)
		if err != nil {
			return err
		}
		*m = NewRequest(expr)
	case KindReply:
		if err := expectFields(kind, fields, 1); err != nil {
			return err
		}
		v, err := dec.DecodeInt64()
		if err != nil {
			return err
		}
		*m = NewReply(v)
	default:
		return ErrUnknownKind
	}
	return nil
}

func encodeKind(enc *msgpack.Encoder, kind uint8, fields int) error {
	if err := enc.EncodeArrayLen(fields + 1); err != nil {
		return err
	}
	return enc.EncodeUint8(kind)
}
