// internal/fanout/relay.go
package fanout

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/jrennick/gambit/internal/broker"
)

// Relay consumes the shared broadcast channel and hands each event to the
// local registry. Every server process runs exactly one relay; this is what
// makes a mutation applied on process A visible to a spectator connected to
// process B.
type Relay struct {
	registry *Registry
	broker   broker.Broker
	log      *logrus.Logger
}

func NewRelay(reg *Registry, br broker.Broker, log *logrus.Logger) *Relay {
	return &Relay{registry: reg, broker: br, log: log}
}

// Run blocks relaying events until the context ends or the subscription
// closes.
func (rl *Relay) Run(ctx context.Context) error {
	events, stop, err := rl.broker.Subscribe(ctx)
	if err != nil {
		return err
	}
	defer stop()
	rl.log.Info("fanout relay started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				rl.log.Warn("fanout relay subscription closed")
				return nil
			}
			frame, err := ev.Marshal()
			if err != nil {
				rl.log.WithError(err).Warn("failed to marshal relayed event")
				continue
			}
			delivered := rl.registry.Dispatch(ev.GameID, frame)
			rl.log.WithFields(logrus.Fields{
				"game_id": ev.GameID, "type": ev.Type, "delivered": delivered,
			}).Debug("event relayed")
		}
	}
}
