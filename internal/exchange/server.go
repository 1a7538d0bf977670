package exchange

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/danmuck/stdiorpc/internal/audit"
	"github.com/danmuck/stdiorpc/internal/evaluator"
	"github.com/danmuck/stdiorpc/internal/logging"
	"github.com/danmuck/stdiorpc/internal/protocol"
)

// EvaluatorFunc computes a fully substituted expression.
type EvaluatorFunc func(expr string) (int64, error)

type ServerOption func(*Server)

func WithEvaluator(fn EvaluatorFunc) ServerOption {
	return func(s *Server) {
		if fn != nil {
			s.eval = fn
		}
	}
}

// WithAudit records every Request, Response and BadSeq to rec.
func WithAudit(rec audit.Recorder) ServerOption {
	return func(s *Server) {
		if rec != nil {
			s.audit = rec
		}
	}
}

func WithLogger(l zerolog.Logger) ServerOption {
	return func(s *Server) { s.log = l }
}

// WithAnnounce makes the server send Log messages describing the symbols it
// is about to query and any evaluation failure.
func WithAnnounce(on bool) ServerOption {
	return func(s *Server) { s.announce = on }
}

func WithIDSource(fn func() string) ServerOption {
	return func(s *Server) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// Server drives exchanges: it reads client messages from in and writes
// server messages to out.
type Server struct {
	in       *bufio.Reader
	out      io.Writer
	eval     EvaluatorFunc
	audit    audit.Recorder
	log      zerolog.Logger
	announce bool
	newID    func() string
	state    State
}

func NewServer(in io.Reader, out io.Writer, opts ...ServerOption) *Server {
	br, ok := in.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(in)
	}
	s := &Server{
		in:    br,
		out:   out,
		eval:  evaluator.Eval,
		audit: audit.Discard,
		log:   logging.New("exchange.server"),
		newID: uuid.NewString,
		state: idle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State reports the current phase. After an I/O error it still names the
// phase the failure happened in.
func (s *Server) State() State {
	return s.state
}

// Serve handles client messages until the client closes its end at a message
// boundary, which returns nil, or until an I/O or framing error occurs.
func (s *Server) Serve() error {
	for {
		if err := s.ServeOne(); err != nil {
			if errors.Is(err, io.EOF) && s.state.Phase == PhaseIdle {
				s.log.Debug().Msg("client closed the stream")
				return nil
			}
			return err
		}
	}
}

// ServeOne reads one top-level client message and runs the exchange it
// opens. A message other than Request is answered with BadSeq and the server
// stays idle. io.EOF is returned unchanged when the stream ends cleanly.
func (s *Server) ServeOne() error {
	msg, err := protocol.Receive[protocol.C2S](s.in)
	if err != nil {
		return err
	}
	switch msg.Kind {
	case protocol.KindRequest:
		return s.handleRequest(msg.Expression)
	default:
		s.log.Warn().Str("state", s.state.String()).Stringer("got", msg).Msg("out of sequence message")
		s.record(audit.NewBadSeqRecord("", s.state.Phase.String(), 0, msg.String()))
		return s.send(protocol.NewBadSeq())
	}
}

func (s *Server) handleRequest(expr string) error {
	id := s.newID()
	log := s.log.With().Str("exchange", id).Logger()
	symbols := Symbols(expr)
	log.Debug().Str("expr", expr).Int("symbols", len(symbols)).Msg("request")
	s.record(audit.NewRequestRecord(id, expr, symbols))

	if s.announce && len(symbols) > 0 {
		text := fmt.Sprintf("resolving %d symbol(s): %s", len(symbols), string(symbols))
		if err := s.send(protocol.NewLog(text)); err != nil {
			return err
		}
	}

	values := make(map[rune]int64, len(symbols))
	for _, sym := range symbols {
		s.state = State{Phase: PhaseAwaitingReply, Symbol: sym}
		if err := s.send(protocol.NewQuery(sym)); err != nil {
			return err
		}
		msg, err := protocol.Receive[protocol.C2S](s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("exchange: awaiting reply for %q: %w", sym, io.ErrUnexpectedEOF)
			}
			return err
		}
		switch msg.Kind {
		case protocol.KindReply:
			values[sym] = msg.Value
		default:
			log.Warn().Str("state", s.state.String()).Stringer("got", msg).Msg("out of sequence message, aborting exchange")
			s.record(audit.NewBadSeqRecord(id, s.state.Phase.String(), sym, msg.String()))
			s.state = idle
			return s.send(protocol.NewBadSeq())
		}
	}

	substituted := Substitute(expr, values)
	result, evalErr := s.eval(substituted)
	if evalErr != nil {
		log.Debug().Err(evalErr).Str("expr", substituted).Msg("evaluation failed, answering 0")
		result = 0
		if s.announce {
			if err := s.send(protocol.NewLog("evaluation failed: " + evalErr.Error())); err != nil {
				return err
			}
		}
	}

	s.state = State{Phase: PhaseClosed}
	if err := s.send(protocol.NewResponse(result)); err != nil {
		return err
	}
	s.record(audit.NewResponseRecord(id, result, substituted, evalErr))
	log.Debug().Int64("result", result).Msg("response")
	s.state = idle
	return nil
}

func (s *Server) send(msg protocol.S2C) error {
	return protocol.Send(s.out, msg)
}

// record never fails the exchange; a broken audit trail is only logged.
func (s *Server) record(rec audit.Record) {
	if err := s.audit.Record(rec); err != nil {
		s.log.Error().Err(err).Str("type", rec.Type).Msg("audit record failed")
	}
}
