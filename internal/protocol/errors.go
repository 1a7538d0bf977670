package protocol

import (
	"errors"

	"github.com/danmuck/stdiorpc/internal/protocol/frame"
	"github.com/danmuck/stdiorpc/internal/protocol/textline"
)

var (
	ErrCorrupt       = errors.New("protocol: corrupt payload")
	ErrUnknownKind   = errors.New("protocol: unknown message kind")
	ErrInvalidText   = errors.New("protocol: text is not valid utf-8")
	ErrInvalidSymbol = errors.New("protocol: symbol is not a unicode scalar value")
)

// IsFraming reports whether err came from a frame that could not be read or
// decoded, as opposed to an I/O failure of the underlying stream.
func IsFraming(err error) bool {
	switch {
	case errors.Is(err, ErrCorrupt),
		errors.Is(err, frame.ErrTruncated),
		errors.Is(err, frame.ErrPayloadTooLarge),
		errors.Is(err, textline.ErrEmptyLine),
		errors.Is(err, textline.ErrLineTooLarge),
		errors.Is(err, textline.ErrCorrupt):
		return true
	default:
		return false
	}
}
