package exchange

import "fmt"

// Phase is the position of one side within the exchange.
type Phase uint8

const (
	// PhaseIdle waits for (server) or may send (client) a fresh Request.
	PhaseIdle Phase = iota
	// PhaseAwaitingReply is the server blocked on the Reply for State.Symbol.
	PhaseAwaitingReply
	// PhaseAwaitingServer is the client blocked on the next server message.
	PhaseAwaitingServer
	// PhaseClosed is set once Response has been produced or consumed.
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAwaitingReply:
		return "awaiting_reply"
	case PhaseAwaitingServer:
		return "awaiting_server"
	case PhaseClosed:
		return "closed"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// State is a phase plus the pending symbol while awaiting a Reply.
type State struct {
	Phase  Phase
	Symbol rune
}

func (s State) String() string {
	if s.Phase == PhaseAwaitingReply {
		return fmt.Sprintf("%s(%q)", s.Phase, s.Symbol)
	}
	return s.Phase.String()
}

var idle = State{Phase: PhaseIdle}
