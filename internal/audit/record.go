// Package audit persists a line-per-event trail of server exchanges. Records
// travel over the newline JSON codec, so an audit file can be tailed or
// replayed with the same Receive helper used for protocol messages.
package audit

import (
	"bufio"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/danmuck/stdiorpc/internal/protocol/textline"
)

const (
	TypeRequest  = "request"
	TypeResponse = "response"
	TypeBadSeq   = "bad_seq"
)

var ErrInvalidRecord = errors.New("audit: invalid record")

// Request is logged when a Request opens an exchange.
type Request struct {
	Expression string   `json:"expression"`
	Symbols    []string `json:"symbols"`
}

// Response is logged when an exchange completes.
type Response struct {
	Result      int64  `json:"result"`
	Substituted string `json:"substituted"`
	EvalError   string `json:"eval_error,omitempty"`
}

// BadSeq is logged when the server rejects an out-of-sequence message.
type BadSeq struct {
	Phase  string `json:"phase"`
	Symbol string `json:"symbol,omitempty"`
	Got    string `json:"got"`
}

// Record is one audit line. Exactly one payload pointer matches Type.
type Record struct {
	Type        string    `json:"type"`
	ExchangeID  string    `json:"exchange_id,omitempty"`
	TimestampMS uint64    `json:"timestamp_ms"`
	Request     *Request  `json:"request,omitempty"`
	Response    *Response `json:"response,omitempty"`
	BadSeq      *BadSeq   `json:"bad_seq,omitempty"`
}

func NewRequestRecord(exchangeID, expr string, symbols []rune) Record {
	names := make([]string, len(symbols))
	for i, s := range symbols {
		names[i] = string(s)
	}
	return Record{
		Type:       TypeRequest,
		ExchangeID: exchangeID,
		Request:    &Request{Expression: expr, Symbols: names},
	}
}

func NewResponseRecord(exchangeID string, result int64, substituted string, evalErr error) Record {
	resp := &Response{Result: result, Substituted: substituted}
	if evalErr != nil {
		resp.EvalError = evalErr.Error()
	}
	return Record{Type: TypeResponse, ExchangeID: exchangeID, Response: resp}
}

// NewBadSeqRecord describes a rejected message. exchangeID is empty when the
// rejection happened outside an exchange.
func NewBadSeqRecord(exchangeID, phase string, symbol rune, got string) Record {
	bs := &BadSeq{Phase: phase, Got: got}
	if symbol != 0 {
		bs.Symbol = string(symbol)
	}
	return Record{Type: TypeBadSeq, ExchangeID: exchangeID, BadSeq: bs}
}

func (r Record) Validate() error {
	if r.TimestampMS == 0 {
		return errors.Wrap(ErrInvalidRecord, "missing timestamp_ms")
	}
	switch r.Type {
	case TypeRequest:
		if r.Request == nil || r.Response != nil || r.BadSeq != nil {
			return errors.Wrap(ErrInvalidRecord, "request payload mismatch")
		}
		if strings.TrimSpace(r.ExchangeID) == "" {
			return errors.Wrap(ErrInvalidRecord, "missing exchange_id")
		}
	case TypeResponse:
		if r.Response == nil || r.Request != nil || r.BadSeq != nil {
			return errors.Wrap(ErrInvalidRecord, "response payload mismatch")
		}
		if strings.TrimSpace(r.ExchangeID) == "" {
			return errors.Wrap(ErrInvalidRecord, "missing exchange_id")
		}
	case TypeBadSeq:
		if r.BadSeq == nil || r.Request != nil || r.Response != nil {
			return errors.Wrap(ErrInvalidRecord, "bad_seq payload mismatch")
		}
	default:
		return errors.Wrapf(ErrInvalidRecord, "unknown type %q", r.Type)
	}
	return nil
}

// Time returns the record timestamp.
func (r Record) Time() time.Time {
	return time.UnixMilli(int64(r.TimestampMS))
}

// Encode writes r as one JSON line.
func (r Record) Encode(w io.Writer) error {
	if err := r.Validate(); err != nil {
		return err
	}
	return textline.Write(w, r)
}

// Decode reads the next JSON line into r, skipping stray non-JSON output.
func (r *Record) Decode(br *bufio.Reader) error {
	var rec Record
	if err := textline.Read(br, &rec); err != nil {
		return err
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	*r = rec
	return nil
}
