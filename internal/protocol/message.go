package protocol

import (
	"bufio"
	"io"
)

// Message is satisfied by every exchangeable message type. The type's own
// Encode method fixes which codec frames it; there is no runtime negotiation.
type Message interface {
	Encode(w io.Writer) error
}

// Decoder is satisfied by *M when M can be reconstructed from a stream with
// the same codec its Encode method writes.
type Decoder[M any] interface {
	*M
	Decode(r *bufio.Reader) error
}

// Send writes msg to w using the codec bound to M.
func Send[M Message](w io.Writer, msg M) error {
	return msg.Encode(w)
}

// Receive reads one M from r using the codec bound to M.
func Receive[M any, PM Decoder[M]](r *bufio.Reader) (M, error) {
	var msg M
	err := PM(&msg).Decode(r)
	return msg, err
}
