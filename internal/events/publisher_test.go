package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"chatbot-be/internal/entity"
	"chatbot-be/internal/pkg/logger"
	pkgEvents "chatbot-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receiveOne(t *testing.T, pubSub *gochannel.GoChannel, publish func(p *BusPublisher)) pkgEvents.BaseEvent {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages, err := pubSub.Subscribe(ctx, Topic)
	require.NoError(t, err)

	publish(NewBusPublisher(pubSub, nil, logger.NewNopLogger()))

	select {
	case msg := <-messages:
		msg.Ack()
		evt, err := pkgEvents.Decode(msg.Payload)
		require.NoError(t, err)
		return evt
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
	return pkgEvents.BaseEvent{}
}

func TestBusPublisher_ChatCreated(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	owner := uuid.New()
	chat := &entity.Chat{Id: uuid.New(), UserId: &owner, Title: "Hello", Messages: []entity.Message{{Role: entity.MessageRoleUser, Content: "Hello"}}}

	evt := receiveOne(t, pubSub, func(p *BusPublisher) {
		p.PublishChatCreated(context.Background(), chat)
	})

	assert.Equal(t, TypeChatCreated, evt.EventType())
	assert.Equal(t, chat.Id.String(), evt.Payload()["chat_id"])
	assert.Equal(t, owner.String(), evt.Payload()["user_id"])
	assert.Equal(t, float64(1), evt.Payload()["messages"])
}

func TestBusPublisher_TurnDegradedCarriesCause(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	evt := receiveOne(t, pubSub, func(p *BusPublisher) {
		p.PublishChatTurnDegraded(context.Background(), TurnOutcome{IsNewChat: true, Fallback: true}, errors.New("store down"))
	})

	assert.Equal(t, TypeChatTurnDegraded, evt.EventType())
	assert.Nil(t, evt.Payload()["chat_id"])
	assert.Equal(t, true, evt.Payload()["fallback"])
	assert.Equal(t, "store down", evt.Payload()["error"])
}

func TestBusPublisher_NoBusIsSafe(t *testing.T) {
	p := NewBusPublisher(nil, nil, logger.NewNopLogger())
	assert.NotPanics(t, func() {
		p.PublishUserSignedUp(context.Background(), uuid.New(), "a@b.com")
	})
}

type stallingForwarder struct {
	calls chan context.Context
}

func (f *stallingForwarder) Publish(ctx context.Context, _ pkgEvents.Event) error {
	f.calls <- ctx
	<-ctx.Done()
	return ctx.Err()
}

func TestBusPublisher_StalledBrokerDoesNotBlockCaller(t *testing.T) {
	forwarder := &stallingForwarder{calls: make(chan context.Context, 1)}
	p := NewBusPublisher(nil, forwarder, logger.NewNopLogger())
	p.forwardTimeout = time.Second

	start := time.Now()
	p.PublishChatTurnCompleted(context.Background(), TurnOutcome{IsNewChat: true})
	assert.Less(t, time.Since(start), 300*time.Millisecond)

	select {
	case ctx := <-forwarder.calls:
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
	case <-time.After(time.Second):
		t.Fatal("event was not forwarded")
	}

	require.NoError(t, p.Close())
}

type recordingForwarder struct {
	events chan pkgEvents.Event
}

func (f *recordingForwarder) Publish(_ context.Context, event pkgEvents.Event) error {
	f.events <- event
	return nil
}

func TestBusPublisher_ForwardsAfterCallerContextEnds(t *testing.T) {
	forwarder := &recordingForwarder{events: make(chan pkgEvents.Event, 1)}
	p := NewBusPublisher(nil, forwarder, logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.PublishUserLoggedIn(ctx, uuid.New(), "a@b.com")
	require.NoError(t, p.Close())

	select {
	case evt := <-forwarder.events:
		assert.Equal(t, TypeUserLoggedIn, evt.EventType())
	default:
		t.Fatal("event was not forwarded")
	}
}
