package notify

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Fanout dispatches events to every recipient independently over the
// transport. A failed recipient is logged and skipped; the batch never
// fails, and no error ever reaches the caller of a state transition.
type Fanout struct {
	transport Transport
	logger    *slog.Logger
}

func NewFanout(transport Transport, logger *slog.Logger) *Fanout {
	return &Fanout{transport: transport, logger: logger}
}

// Notify delivers the event to each recipient's channel and once to the
// tournament spectator channel. It blocks until all deliveries were
// attempted but always returns having tried every one.
func (f *Fanout) Notify(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		f.logger.Error("failed to marshal notification event",
			slog.String("type", string(event.Type)),
			slog.Int("tournament_id", event.TournamentID),
			slog.Any("error", err))
		return
	}

	var wg sync.WaitGroup
	for _, recipient := range event.Recipients {
		wg.Add(1)
		go func(playerID int) {
			defer wg.Done()
			if err := f.transport.Publish(PlayerChannel(playerID), payload); err != nil {
				f.logger.Warn("notification delivery failed",
					slog.String("type", string(event.Type)),
					slog.Int("player_id", playerID),
					slog.Any("error", err))
			}
		}(recipient)
	}
	wg.Wait()

	if err := f.transport.Publish(TournamentChannel(event.TournamentID), payload); err != nil {
		f.logger.Warn("spectator channel delivery failed",
			slog.String("type", string(event.Type)),
			slog.Int("tournament_id", event.TournamentID),
			slog.Any("error", err))
	}
}

// NotifyAll dispatches a batch of events in order.
func (f *Fanout) NotifyAll(events []Event) {
	for _, e := range events {
		f.Notify(e)
	}
}
