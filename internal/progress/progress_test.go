package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuffered_DropsInsteadOfBlocking(t *testing.T) {
	b := NewBuffered(2)
	// nobody is draining; publishing more than capacity must not block
	for i := 0; i < 10; i++ {
		b.Publish(Event{Stage: StageScanning, Progress: i * 10})
	}
	b.Close()

	var got []Event
	for e := range b.Events() {
		got = append(got, e)
	}
	assert.Len(t, got, 2)
	assert.Equal(t, 0, got[0].Progress)
	assert.Equal(t, 10, got[1].Progress)
}

func TestFuncSink(t *testing.T) {
	var got Event
	s := Func(func(e Event) { got = e })
	s.Publish(Event{Stage: StageCompleted, Progress: 100, Message: "done"})
	assert.Equal(t, StageCompleted, got.Stage)
	assert.Equal(t, 100, got.Progress)
}

func TestDiscard(t *testing.T) {
	// must simply not panic
	Discard.Publish(Event{Stage: StageExtracting})
}
