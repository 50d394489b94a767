package notify

// Handler receives the raw payload published to a subscribed channel.
type Handler func(payload []byte)

// Transport is the real-time delivery collaborator. Publish is best-effort
// per channel; Subscribe registers a handler and returns its unsubscribe
// function.
type Transport interface {
	Publish(channel string, payload []byte) error
	Subscribe(channel string, handler Handler) (unsubscribe func())
}
