package progress

// Sink receives ingestion progress as an integer percentage (0-100).
// Implementations must never block or fail the pipeline; a push that cannot
// be delivered is dropped.
type Sink interface {
	Send(pct int)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(int)

func (f SinkFunc) Send(pct int) { f(pct) }

// Discard swallows every notification. Used when no client is listening.
var Discard Sink = SinkFunc(func(int) {})
