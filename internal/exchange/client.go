package exchange

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/danmuck/stdiorpc/internal/logging"
	"github.com/danmuck/stdiorpc/internal/protocol"
)

// Resolver supplies values for queried symbols.
type Resolver interface {
	Resolve(symbol rune) (int64, bool)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(symbol rune) (int64, bool)

func (f ResolverFunc) Resolve(symbol rune) (int64, bool) { return f(symbol) }

// Observer is told about every message the client sends or receives.
type Observer interface {
	Sent(msg protocol.C2S)
	Received(msg protocol.S2C)
}

type Status uint8

const (
	// StatusComplete means the server answered with Response.
	StatusComplete Status = iota + 1
	// StatusDesync means the server answered with BadSeq; Result is unset.
	StatusDesync
)

func (s Status) String() string {
	switch s {
	case StatusComplete:
		return "complete"
	case StatusDesync:
		return "desync"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Outcome describes one finished exchange from the client's side.
type Outcome struct {
	Status  Status
	Result  int64
	Queries []rune
	Logs    []string
	Elapsed time.Duration
}

type ClientOption func(*Client)

func WithResolver(r Resolver) ClientOption {
	return func(c *Client) {
		if r != nil {
			c.resolver = r
		}
	}
}

// WithFallback sets the value replied for symbols the resolver lacks.
func WithFallback(v int64) ClientOption {
	return func(c *Client) { c.fallback = v }
}

func WithObserver(o Observer) ClientOption {
	return func(c *Client) {
		if o != nil {
			c.observer = o
		}
	}
}

func WithClientLogger(l zerolog.Logger) ClientOption {
	return func(c *Client) { c.log = l }
}

// Client opens exchanges by writing to out and answers the server's queries
// read from in.
type Client struct {
	out      io.Writer
	in       *bufio.Reader
	resolver Resolver
	fallback int64
	observer Observer
	log      zerolog.Logger
	state    State
	now      func() time.Time
}

func NewClient(out io.Writer, in io.Reader, opts ...ClientOption) *Client {
	br, ok := in.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(in)
	}
	c := &Client{
		out:      out,
		in:       br,
		resolver: ResolverFunc(func(rune) (int64, bool) { return 0, false }),
		observer: nopObserver{},
		log:      logging.New("exchange.client"),
		state:    idle,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) State() State {
	return c.state
}

// Exchange sends Request(expr) and answers queries until the server ends the
// exchange. A BadSeq from the server is reported as StatusDesync, not as an
// error; errors are reserved for I/O and framing failures.
func (c *Client) Exchange(expr string) (Outcome, error) {
	start := c.now()
	out := Outcome{}
	finish := func(status Status) (Outcome, error) {
		out.Status = status
		out.Elapsed = c.now().Sub(start)
		c.state = idle
		return out, nil
	}

	if err := c.send(protocol.NewRequest(expr)); err != nil {
		return out, err
	}
	c.state = State{Phase: PhaseAwaitingServer}

	for {
		msg, err := protocol.Receive[protocol.S2C](c.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return out, fmt.Errorf("exchange: awaiting server: %w", io.ErrUnexpectedEOF)
			}
			return out, err
		}
		c.observer.Received(msg)

		switch msg.Kind {
		case protocol.KindQuery:
			out.Queries = append(out.Queries, msg.Symbol)
			v, ok := c.resolver.Resolve(msg.Symbol)
			if !ok {
				c.log.Debug().Str("symbol", string(msg.Symbol)).Int64("fallback", c.fallback).Msg("unknown symbol")
				v = c.fallback
			}
			if err := c.send(protocol.NewReply(v)); err != nil {
				return out, err
			}
		case protocol.KindResponse:
			out.Result = msg.Value
			c.state = State{Phase: PhaseClosed}
			return finish(StatusComplete)
		case protocol.KindLog:
			out.Logs = append(out.Logs, msg.Text)
		case protocol.KindBadSeq:
			c.log.Warn().Str("expr", expr).Int("queries", len(out.Queries)).Msg("server reported bad sequence")
			return finish(StatusDesync)
		default:
			return out, fmt.Errorf("exchange: unhandled %s", msg.Kind)
		}
	}
}

func (c *Client) send(msg protocol.C2S) error {
	if err := protocol.Send(c.out, msg); err != nil {
		return err
	}
	c.observer.Sent(msg)
	return nil
}

type nopObserver struct{}

func (nopObserver) Sent(protocol.C2S)     {}
func (nopObserver) Received(protocol.S2C) {}
