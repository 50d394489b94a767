package notify

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
)

type fakeTransport struct {
	mu        sync.Mutex
	published map[string][][]byte
	failOn    map[string]bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		published: make(map[string][][]byte),
		failOn:    make(map[string]bool),
	}
}

func (t *fakeTransport) Publish(channel string, payload []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failOn[channel] {
		return errors.New("transport down")
	}
	t.published[channel] = append(t.published[channel], payload)
	return nil
}

func (t *fakeTransport) Subscribe(channel string, handler Handler) func() {
	return func() {}
}

func (t *fakeTransport) count(channel string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.published[channel])
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFanout_DeliversToEveryRecipientAndSpectators(t *testing.T) {
	transport := newFakeTransport()
	f := NewFanout(transport, discardLogger())

	f.Notify(Event{
		Type:         EventMatchResult,
		TournamentID: 5,
		Recipients:   []int{10, 11},
		Title:        "Match finished",
	})

	for _, ch := range []string{"player:10", "player:11", "tournament:5"} {
		if transport.count(ch) != 1 {
			t.Errorf("channel %s received %d messages, want 1", ch, transport.count(ch))
		}
	}
}

func TestFanout_OneFailureDoesNotBlockOthers(t *testing.T) {
	transport := newFakeTransport()
	transport.failOn["player:10"] = true
	f := NewFanout(transport, discardLogger())

	f.Notify(Event{
		Type:         EventTournamentEnd,
		TournamentID: 5,
		Recipients:   []int{10, 11, 12},
	})

	if transport.count("player:10") != 0 {
		t.Error("failing channel unexpectedly received a message")
	}
	for _, ch := range []string{"player:11", "player:12", "tournament:5"} {
		if transport.count(ch) != 1 {
			t.Errorf("channel %s received %d messages, want 1 despite sibling failure", ch, transport.count(ch))
		}
	}
}

func TestFanout_NoRecipientsStillReachesSpectators(t *testing.T) {
	transport := newFakeTransport()
	f := NewFanout(transport, discardLogger())

	f.Notify(Event{Type: EventNextRound, TournamentID: 3})

	if transport.count("tournament:3") != 1 {
		t.Error("spectator channel not reached for recipient-less event")
	}
}
