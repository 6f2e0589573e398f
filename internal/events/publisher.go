package events

import (
	"context"
	"sync"
	"time"

	"chatbot-be/internal/entity"
	"chatbot-be/internal/pkg/logger"
	pkgEvents "chatbot-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// Topic is the in-process topic every chat event is published on.
const Topic = "chat.events"

const (
	TypeUserSignedUp      = "USER_SIGNED_UP"
	TypeUserLoggedIn      = "USER_LOGGED_IN"
	TypeChatCreated       = "CHAT_CREATED"
	TypeChatDeleted       = "CHAT_DELETED"
	TypeChatTurnCompleted = "CHAT_TURN_COMPLETED"
	TypeChatTurnDegraded  = "CHAT_TURN_DEGRADED"
	TypeDevelopmentSeeded = "DEVELOPMENT_SEEDED"
)

// TurnOutcome describes one finished chat turn.
type TurnOutcome struct {
	ChatId    *uuid.UUID
	UserId    *uuid.UUID
	IsNewChat bool
	Fallback  bool // the reply is a fixed fallback, not model output
	Messages  int
}

// Publisher abstracts event publishing for chat operations. Publishing never
// fails the caller; delivery errors are logged.
type Publisher interface {
	PublishUserSignedUp(ctx context.Context, userId uuid.UUID, email string)
	PublishUserLoggedIn(ctx context.Context, userId uuid.UUID, email string)
	PublishChatCreated(ctx context.Context, chat *entity.Chat)
	PublishChatDeleted(ctx context.Context, chatId, userId uuid.UUID)
	PublishChatTurnCompleted(ctx context.Context, outcome TurnOutcome)
	PublishChatTurnDegraded(ctx context.Context, outcome TurnOutcome, cause error)
	PublishDevelopmentSeeded(ctx context.Context, users, chats int)
}

// Forwarder ships an event to an external broker such as NATS.
type Forwarder interface {
	Publish(ctx context.Context, event pkgEvents.Event) error
}

// DefaultForwardTimeout bounds a single external delivery.
const DefaultForwardTimeout = 2 * time.Second

// BusPublisher fans events out to the in-process bus and, when configured,
// an external broker. External delivery runs in the background and never
// holds up the caller.
type BusPublisher struct {
	bus            message.Publisher
	forwarder      Forwarder
	forwardTimeout time.Duration
	logger         logger.ILogger
	inflight       sync.WaitGroup
}

// NewBusPublisher builds a publisher; forwarder may be nil.
func NewBusPublisher(bus message.Publisher, forwarder Forwarder, logger logger.ILogger) *BusPublisher {
	return &BusPublisher{
		bus:            bus,
		forwarder:      forwarder,
		forwardTimeout: DefaultForwardTimeout,
		logger:         logger,
	}
}

// Close waits for background deliveries to finish.
func (p *BusPublisher) Close() error {
	p.inflight.Wait()
	return nil
}

func (p *BusPublisher) PublishUserSignedUp(ctx context.Context, userId uuid.UUID, email string) {
	p.publish(ctx, TypeUserSignedUp, map[string]interface{}{
		"user_id": userId.String(),
		"email":   email,
	})
}

func (p *BusPublisher) PublishUserLoggedIn(ctx context.Context, userId uuid.UUID, email string) {
	p.publish(ctx, TypeUserLoggedIn, map[string]interface{}{
		"user_id": userId.String(),
		"email":   email,
	})
}

func (p *BusPublisher) PublishChatCreated(ctx context.Context, chat *entity.Chat) {
	p.publish(ctx, TypeChatCreated, map[string]interface{}{
		"chat_id":  chat.Id.String(),
		"user_id":  uuidOrNil(chat.UserId),
		"title":    chat.Title,
		"messages": len(chat.Messages),
	})
}

func (p *BusPublisher) PublishChatDeleted(ctx context.Context, chatId, userId uuid.UUID) {
	p.publish(ctx, TypeChatDeleted, map[string]interface{}{
		"chat_id": chatId.String(),
		"user_id": userId.String(),
	})
}

func (p *BusPublisher) PublishChatTurnCompleted(ctx context.Context, outcome TurnOutcome) {
	p.publish(ctx, TypeChatTurnCompleted, outcome.toData())
}

func (p *BusPublisher) PublishChatTurnDegraded(ctx context.Context, outcome TurnOutcome, cause error) {
	data := outcome.toData()
	if cause != nil {
		data["error"] = cause.Error()
	}
	p.publish(ctx, TypeChatTurnDegraded, data)
}

func (p *BusPublisher) PublishDevelopmentSeeded(ctx context.Context, users, chats int) {
	p.publish(ctx, TypeDevelopmentSeeded, map[string]interface{}{
		"users": users,
		"chats": chats,
	})
}

func (p *BusPublisher) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	evt := pkgEvents.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}

	payload, err := pkgEvents.Encode(evt)
	if err != nil {
		p.logger.Error("EVENTS", "Failed to encode event", map[string]interface{}{"type": eventType, "error": err.Error()})
		return
	}

	if p.bus != nil {
		msg := message.NewMessage(watermill.NewUUID(), payload)
		if err := p.bus.Publish(Topic, msg); err != nil {
			p.logger.Error("EVENTS", "Failed to publish event to bus", map[string]interface{}{"type": eventType, "error": err.Error()})
		}
	}

	if p.forwarder != nil {
		p.inflight.Add(1)
		go p.forward(evt)
	}
}

// forward runs detached from the request context so a slow or absent broker
// cannot delay the response.
func (p *BusPublisher) forward(evt pkgEvents.BaseEvent) {
	defer p.inflight.Done()

	ctx, cancel := context.WithTimeout(context.Background(), p.forwardTimeout)
	defer cancel()

	if err := p.forwarder.Publish(ctx, evt); err != nil {
		p.logger.Warn("EVENTS", "Failed to forward event", map[string]interface{}{"type": evt.Type, "error": err.Error()})
	}
}

func (o TurnOutcome) toData() map[string]interface{} {
	return map[string]interface{}{
		"chat_id":     uuidOrNil(o.ChatId),
		"user_id":     uuidOrNil(o.UserId),
		"is_new_chat": o.IsNewChat,
		"fallback":    o.Fallback,
		"messages":    o.Messages,
	}
}

func uuidOrNil(id *uuid.UUID) interface{} {
	if id == nil {
		return nil
	}
	return id.String()
}
