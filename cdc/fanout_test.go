package cdc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubPublishDeliversToSubscriber(t *testing.T) {
	h := NewHub()
	ch, unsubscribe := h.Subscribe("users")
	defer unsubscribe()

	h.Publish(Event{Operation: OpInsert, Table: "users", Timestamp: time.Now()})

	select {
	case ev := <-ch:
		assert.Equal(t, OpInsert, ev.Operation)
		assert.Equal(t, "users", ev.Table)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestHubPublishIgnoresOtherTables(t *testing.T) {
	h := NewHub()
	ch, unsubscribe := h.Subscribe("users")
	defer unsubscribe()

	h.Publish(Event{Operation: OpInsert, Table: "posts"})

	select {
	case <-ch:
		t.Fatal("received event for a table not subscribed to")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubPublishFansOutToMultipleSubscribers(t *testing.T) {
	h := NewHub()
	ch1, unsub1 := h.Subscribe("users")
	defer unsub1()
	ch2, unsub2 := h.Subscribe("users")
	defer unsub2()

	h.Publish(Event{Operation: OpUpdate, Table: "users"})

	for _, ch := range []<-chan Event{ch1, ch2} {
		select {
		case ev := <-ch:
			assert.Equal(t, OpUpdate, ev.Operation)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive event")
		}
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	h := NewHub()
	ch, unsubscribe := h.Subscribe("users")
	unsubscribe()

	_, ok := <-ch
	assert.False(t, ok, "channel should be closed after unsubscribe")
}

func TestHubUnsubscribeIsIdempotent(t *testing.T) {
	h := NewHub()
	_, unsubscribe := h.Subscribe("users")
	unsubscribe()
	assert.NotPanics(t, unsubscribe)
}

func TestHubPublishWithNoSubscribersDropsSilently(t *testing.T) {
	h := NewHub()
	assert.NotPanics(t, func() { h.Publish(Event{Table: "ghost"}) })
}

func TestHubPublishDoesNotBlockOnFullSubscriberBuffer(t *testing.T) {
	h := NewHub()
	ch, unsubscribe := h.Subscribe("users")
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < bufferSize+10; i++ {
			h.Publish(Event{Table: "users"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked despite a full subscriber buffer")
	}

	require.NotNil(t, ch)
}
