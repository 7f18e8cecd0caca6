// Package progress carries one-way scan progress notifications from the
// engine to its caller. Delivery is fire-and-forget: a slow consumer must
// never block a running scan.
package progress

// Stage identifies the scan phase an event belongs to.
type Stage string

const (
	StageExtracting Stage = "extracting"
	StageAnalyzing  Stage = "analyzing"
	StageScanning   Stage = "scanning"
	StageCompleted  Stage = "completed"
)

// Event is a single progress notification. Progress is 0..100 within the
// stage; CurrentFile and Message are optional labels.
type Event struct {
	Stage       Stage  `json:"stage"`
	Progress    int    `json:"progress"`
	CurrentFile string `json:"currentFile,omitempty"`
	Message     string `json:"message,omitempty"`
}

// Sink receives progress events. Implementations must not block.
type Sink interface {
	Publish(Event)
}

// Func adapts a plain function to the Sink interface.
type Func func(Event)

// Publish calls the wrapped function.
func (f Func) Publish(e Event) { f(e) }

// Discard is a Sink that drops every event.
var Discard Sink = Func(func(Event) {})

// Buffered bridges events onto a channel, dropping events when the channel
// is full so publishing never blocks.
type Buffered struct {
	ch chan Event
}

// NewBuffered returns a Buffered sink with the given capacity (minimum 1).
func NewBuffered(capacity int) *Buffered {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffered{ch: make(chan Event, capacity)}
}

// Publish enqueues the event, dropping it if the buffer is full.
func (b *Buffered) Publish(e Event) {
	select {
	case b.ch <- e:
	default:
	}
}

// Events exposes the receive side of the buffer.
func (b *Buffered) Events() <-chan Event { return b.ch }

// Close closes the event channel. Publish must not be called afterwards.
func (b *Buffered) Close() { close(b.ch) }
