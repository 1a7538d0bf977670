package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// PrefixLen is the size of the big-endian length prefix in front of every payload.
const PrefixLen = 8

var (
	ErrTruncated       = errors.New("frame: truncated")
	ErrShortPrefix     = fmt.Errorf("%w: short length prefix", ErrTruncated)
	ErrShortPayload    = fmt.Errorf("%w: short payload", ErrTruncated)
	ErrPayloadTooLarge = errors.New("frame: payload too large")
)

// Limits constrains frame decode/encode memory use.
type Limits struct {
	MaxPayloadBytes uint64
}

func DefaultLimits() Limits {
	return Limits{
		MaxPayloadBytes: 8 * 1024 * 1024,
	}
}

// ReadFrame reads one length-prefixed payload from r.
// A stream that ends before the first prefix byte returns io.EOF unchanged;
// a stream that ends anywhere after it returns an ErrTruncated variant.
func ReadFrame(r io.Reader, limits Limits) ([]byte, error) {
	var prefix [PrefixLen]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrShortPrefix
		}
		return nil, err
	}

	n, err := DecodePrefix(prefix[:])
	if err != nil {
		return nil, err
	}
	if n > limits.MaxPayloadBytes {
		return nil, fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, n, limits.MaxPayloadBytes)
	}

	payload := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, ErrShortPayload
			}
			return nil, err
		}
	}
	return payload, nil
}

// WriteFrame writes the prefix and payload with a single Write call so a
// pipe reader never observes a prefix without the bytes that follow it.
func WriteFrame(w io.Writer, payload []byte, limits Limits) error {
	n := uint64(len(payload))
	if n > limits.MaxPayloadBytes {
		return fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, n, limits.MaxPayloadBytes)
	}

	buf := make([]byte, PrefixLen+len(payload))
	copy(buf, EncodePrefix(n))
	copy(buf[PrefixLen:], payload)
	_, err := w.Write(buf)
	return err
}

func EncodePrefix(n uint64) []byte {
	buf := make([]byte, PrefixLen)
	binary.BigEndian.PutUint64(buf, n)
	return buf
}

func DecodePrefix(b []byte) (uint64, error) {
	if len(b) != PrefixLen {
		return 0, fmt.Errorf("frame: invalid prefix length: %d", len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}
