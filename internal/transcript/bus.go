package transcript

import (
	"github.com/asaskevich/EventBus"

	"github.com/danmuck/stdiorpc/internal/protocol"
)

const (
	TopicSent     = "transcript:sent"
	TopicReceived = "transcript:received"
)

// Bus fans client-side message events out to subscribers. It satisfies
// exchange.Observer, so a client can publish without knowing who listens.
// Handlers run synchronously in subscription order.
type Bus struct {
	bus EventBus.Bus
}

func NewBus() *Bus {
	return &Bus{bus: EventBus.New()}
}

func (b *Bus) Sent(msg protocol.C2S) {
	b.bus.Publish(TopicSent, msg)
}

func (b *Bus) Received(msg protocol.S2C) {
	b.bus.Publish(TopicReceived, msg)
}

// OnSent registers fn for every message the client sends.
func (b *Bus) OnSent(fn func(protocol.C2S)) error {
	return b.bus.Subscribe(TopicSent, fn)
}

// OnReceived registers fn for every message the client receives.
func (b *Bus) OnReceived(fn func(protocol.S2C)) error {
	return b.bus.Subscribe(TopicReceived, fn)
}

// Attach draws every published message with r.
func (b *Bus) Attach(r *Renderer) error {
	if err := b.OnSent(r.C2S); err != nil {
		return err
	}
	return b.OnReceived(r.S2C)
}
