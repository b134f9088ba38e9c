package engine

import (
	"testing"
	"time"

	"github.com/bissquit/incident-conductor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMessage(incidentID string) domain.Message {
	return domain.Message{
		Type:       domain.MessageStatusUpdate,
		IncidentID: incidentID,
		Payload:    map[string]any{"event": "progress"},
		Timestamp:  time.Now(),
	}
}

func TestBus_PublishDeliversInOrder(t *testing.T) {
	bus := NewBus(8)
	sub := bus.Subscribe("INC-1")
	defer bus.Unsubscribe(sub)

	for i := 0; i < 3; i++ {
		msg := testMessage("INC-1")
		msg.Payload = map[string]any{"seq": i}
		bus.Publish("INC-1", msg)
	}

	for i := 0; i < 3; i++ {
		msg := <-sub.Messages()
		assert.Equal(t, i, msg.Payload["seq"])
	}
}

func TestBus_IncidentMessagesReachGlobalSubscribers(t *testing.T) {
	bus := NewBus(8)
	global := bus.Subscribe(TopicGlobal)
	defer bus.Unsubscribe(global)
	other := bus.Subscribe("INC-2")
	defer bus.Unsubscribe(other)

	bus.Publish("INC-1", testMessage("INC-1"))

	msg := <-global.Messages()
	assert.Equal(t, "INC-1", msg.IncidentID)

	select {
	case <-other.Messages():
		t.Fatal("message leaked to unrelated incident topic")
	default:
	}
}

func TestBus_SlowSubscriberLosesMessagesNotPublisher(t *testing.T) {
	bus := NewBus(1)
	sub := bus.Subscribe("INC-1")
	defer bus.Unsubscribe(sub)

	done := make(chan struct{})
	go func() {
		defer close(done)
		bus.Publish("INC-1", testMessage("INC-1"))
		bus.Publish("INC-1", testMessage("INC-1"))
		bus.Publish("INC-1", testMessage("INC-1"))
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber queue")
	}

	assert.Len(t, sub.Messages(), 1)
}

func TestBus_CloseTopicEndsSubscriptions(t *testing.T) {
	bus := NewBus(8)
	sub := bus.Subscribe("INC-1")

	bus.Publish("INC-1", testMessage("INC-1"))
	bus.CloseTopic("INC-1")

	// Buffered message still drains, then the channel reports closed.
	_, open := <-sub.Messages()
	assert.True(t, open)
	_, open = <-sub.Messages()
	assert.False(t, open)

	// Unsubscribe after CloseTopic is a no-op, not a double close.
	bus.Unsubscribe(sub)
}

func TestBus_CloseEndsAllSubscriptions(t *testing.T) {
	bus := NewBus(8)
	a := bus.Subscribe("INC-1")
	b := bus.Subscribe(TopicGlobal)
	require.Equal(t, 2, bus.SubscriberCount())

	bus.Close()

	_, open := <-a.Messages()
	assert.False(t, open)
	_, open = <-b.Messages()
	assert.False(t, open)
	assert.Zero(t, bus.SubscriberCount())
}

func TestBus_SubscriberCount(t *testing.T) {
	bus := NewBus(8)
	assert.Zero(t, bus.SubscriberCount())

	a := bus.Subscribe("INC-1")
	b := bus.Subscribe("INC-1")
	assert.Equal(t, 2, bus.SubscriberCount())

	bus.Unsubscribe(a)
	assert.Equal(t, 1, bus.SubscriberCount())
	bus.Unsubscribe(b)
	assert.Zero(t, bus.SubscriberCount())
}
