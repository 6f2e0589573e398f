package service

import (
	"context"
	"strings"
	"sync"

	"chatbot-be/internal/dto"
	"chatbot-be/internal/entity"
	"chatbot-be/internal/events"
	"chatbot-be/internal/pkg/apperror"
	"chatbot-be/internal/pkg/token"
	"chatbot-be/internal/pkg/validation"
	"chatbot-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Unknown email and wrong password share one message so login does not
// reveal which accounts exist.
const invalidCredentialsMessage = "invalid credentials"

// absentUserHash is compared against when the email is unknown, so both
// login failures cost one bcrypt comparison.
var absentUserHash = sync.OnceValue(func() []byte {
	hash, _ := bcrypt.GenerateFromPassword([]byte("absent-user-password"), bcrypt.DefaultCost)
	return hash
})

type IAuthService interface {
	Signup(ctx context.Context, req *dto.SignupRequest) (*dto.TokenResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Me(ctx context.Context, userId uuid.UUID) (*dto.UserResponse, error)
}

type authService struct {
	uowFactory unitofwork.RepositoryFactory
	tokens     *token.Manager
	publisher  events.Publisher
}

func NewAuthService(uowFactory unitofwork.RepositoryFactory, tokens *token.Manager, publisher events.Publisher) IAuthService {
	return &authService{
		uowFactory: uowFactory,
		tokens:     tokens,
		publisher:  publisher,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.TokenResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.UserRepository().FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperror.Internal("failed to look up user", err)
	}
	if existing != nil {
		return nil, apperror.Conflict("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal("failed to hash password", err)
	}

	user := &entity.User{
		Id:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(hash),
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Internal("failed to start transaction", err)
	}
	defer uow.Rollback()

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		if apperror.Is(err, apperror.KindConflict) {
			return nil, err
		}
		return nil, apperror.Internal("failed to create user", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, apperror.Internal("failed to commit user", err)
	}

	signed, err := s.tokens.Issue(user.Id, user.Email)
	if err != nil {
		return nil, apperror.Internal("failed to issue token", err)
	}

	s.publisher.PublishUserSignedUp(ctx, user.Id, user.Email)

	return &dto.TokenResponse{Token: signed}, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperror.Internal("failed to look up user", err)
	}
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(absentUserHash(), []byte(req.Password))
		return nil, apperror.Auth(invalidCredentialsMessage)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.Auth(invalidCredentialsMessage)
	}

	signed, err := s.tokens.Issue(user.Id, user.Email)
	if err != nil {
		return nil, apperror.Internal("failed to issue token", err)
	}

	s.publisher.PublishUserLoggedIn(ctx, user.Id, user.Email)

	return &dto.TokenResponse{Token: signed}, nil
}

func (s *authService) Me(ctx context.Context, userId uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.uowFactory.NewUnitOfWork(ctx).UserRepository().FindById(ctx, userId)
	if err != nil {
		return nil, apperror.Internal("failed to load user", err)
	}
	if user == nil {
		return nil, apperror.NotFound("user not found")
	}

	public := user.Public()
	return &dto.UserResponse{Id: public.Id, Email: public.Email}, nil
}
