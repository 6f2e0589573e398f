package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"chatbot-be/internal/entity"
	"chatbot-be/internal/events"
	"chatbot-be/internal/pkg/token"
	"chatbot-be/internal/repository/contract"
	"chatbot-be/internal/repository/memory"
	"chatbot-be/internal/repository/unitofwork"
	"chatbot-be/pkg/llm"

	"github.com/google/uuid"
)

type recordedEvent struct {
	Type    string
	Outcome events.TurnOutcome
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) add(e recordedEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	res := make([]string, len(p.events))
	for i, e := range p.events {
		res[i] = e.Type
	}
	return res
}

func (p *recordingPublisher) last() recordedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

func (p *recordingPublisher) PublishUserSignedUp(ctx context.Context, userId uuid.UUID, email string) {
	p.add(recordedEvent{Type: events.TypeUserSignedUp})
}

func (p *recordingPublisher) PublishUserLoggedIn(ctx context.Context, userId uuid.UUID, email string) {
	p.add(recordedEvent{Type: events.TypeUserLoggedIn})
}

func (p *recordingPublisher) PublishChatCreated(ctx context.Context, chat *entity.Chat) {
	p.add(recordedEvent{Type: events.TypeChatCreated})
}

func (p *recordingPublisher) PublishChatDeleted(ctx context.Context, chatId, userId uuid.UUID) {
	p.add(recordedEvent{Type: events.TypeChatDeleted})
}

func (p *recordingPublisher) PublishChatTurnCompleted(ctx context.Context, outcome events.TurnOutcome) {
	p.add(recordedEvent{Type: events.TypeChatTurnCompleted, Outcome: outcome})
}

func (p *recordingPublisher) PublishChatTurnDegraded(ctx context.Context, outcome events.TurnOutcome, cause error) {
	p.add(recordedEvent{Type: events.TypeChatTurnDegraded, Outcome: outcome})
}

func (p *recordingPublisher) PublishDevelopmentSeeded(ctx context.Context, users, chats int) {
	p.add(recordedEvent{Type: events.TypeDevelopmentSeeded})
}

// stubProvider answers every chat call with reply or err and records the
// history and options it was given.
type stubProvider struct {
	mu      sync.Mutex
	reply   string
	err     error
	delay   time.Duration
	history []llm.Message
	opts    *llm.Options
}

func (p *stubProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	p.mu.Lock()
	p.history = append([]llm.Message(nil), history...)
	p.opts = llm.Apply(llm.Options{}, options...)
	p.mu.Unlock()

	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return p.reply, p.err
}

func (p *stubProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}

var errStoreDown = errors.New("store unavailable")

// brokenChatRepository fails the selected chat operations.
type brokenChatRepository struct {
	contract.ChatRepository
	failFind   bool
	failWrites bool
}

func (r *brokenChatRepository) FindByIdForUser(ctx context.Context, id uuid.UUID, owner *uuid.UUID) (*entity.Chat, error) {
	if r.failFind {
		return nil, errStoreDown
	}
	return r.ChatRepository.FindByIdForUser(ctx, id, owner)
}

func (r *brokenChatRepository) Create(ctx context.Context, chat *entity.Chat) error {
	if r.failWrites {
		return errStoreDown
	}
	return r.ChatRepository.Create(ctx, chat)
}

func (r *brokenChatRepository) Update(ctx context.Context, chat *entity.Chat) error {
	if r.failWrites {
		return errStoreDown
	}
	return r.ChatRepository.Update(ctx, chat)
}

type brokenUnitOfWork struct {
	unitofwork.UnitOfWork
	chats *brokenChatRepository
}

func (u *brokenUnitOfWork) ChatRepository() contract.ChatRepository {
	return u.chats
}

type brokenFactory struct {
	store      *memory.Store
	failFind   bool
	failWrites bool
}

func (f *brokenFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &brokenUnitOfWork{
		UnitOfWork: unitofwork.NewStoreUnitOfWork(f.store),
		chats: &brokenChatRepository{
			ChatRepository: memory.NewChatRepository(f.store),
			failFind:       f.failFind,
			failWrites:     f.failWrites,
		},
	}
}

func newTokenManager() *token.Manager {
	m, err := token.NewManager("test-secret", time.Hour)
	if err != nil {
		panic(err)
	}
	return m
}
