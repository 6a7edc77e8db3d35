package bus

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPublishSyncReachesEveryHandler(t *testing.T) {
	b := NewEventBus()
	var hits atomic.Int32

	b.Subscribe(EventTypeStateChanged, func(Event) { hits.Add(1) })
	b.SubscribeMultiple([]EventType{EventTypeStateChanged, EventTypePrivacyChanged}, func(Event) { hits.Add(10) })

	b.PublishSync(Event{Type: EventTypeStateChanged})
	assert.Equal(t, int32(11), hits.Load())

	b.PublishSync(Event{Type: EventTypePrivacyChanged})
	assert.Equal(t, int32(21), hits.Load())

	b.PublishSync(Event{Type: EventTypeShaderReloaded})
	assert.Equal(t, int32(21), hits.Load(), "no handlers, no calls")
}

func TestPublishIsAsync(t *testing.T) {
	b := NewEventBus()
	got := make(chan Event, 1)
	b.Subscribe(EventTypeStartComplete, func(e Event) { got <- e })

	b.Publish(Event{Type: EventTypeStartComplete, Data: map[string]any{"state": "start"}})

	select {
	case e := <-got:
		assert.Equal(t, "start", e.Data["state"])
	case <-time.After(time.Second):
		t.Fatal("handler not called")
	}
}

func TestClear(t *testing.T) {
	b := NewEventBus()
	b.Subscribe(EventTypeConnected, func(Event) {})
	assert.Equal(t, 1, b.HandlerCount(EventTypeConnected))

	b.Clear()
	assert.Equal(t, 0, b.HandlerCount(EventTypeConnected))
}
