package service

import (
	"context"
	"testing"
	"time"

	"chatbot-be/internal/dto"
	"chatbot-be/internal/events"
	"chatbot-be/internal/pkg/apperror"
	"chatbot-be/internal/repository/memory"
	"chatbot-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService() (IAuthService, *recordingPublisher) {
	publisher := &recordingPublisher{}
	factory := unitofwork.NewStoreRepositoryFactory(memory.NewStore())
	return NewAuthService(factory, newTokenManager(), publisher), publisher
}

func TestAuthService_SignupThenLogin(t *testing.T) {
	ctx := context.Background()
	svc, publisher := newAuthService()

	signup, err := svc.Signup(ctx, &dto.SignupRequest{Email: "  Jorge@Example.com ", Password: "123456"})
	require.NoError(t, err)
	assert.NotEmpty(t, signup.Token)

	login, err := svc.Login(ctx, &dto.LoginRequest{Email: "jorge@example.com", Password: "123456"})
	require.NoError(t, err)

	identity, err := newTokenManager().Verify(login.Token)
	require.NoError(t, err)

	me, err := svc.Me(ctx, identity.UserId)
	require.NoError(t, err)
	assert.Equal(t, "jorge@example.com", me.Email)

	assert.Equal(t, []string{events.TypeUserSignedUp, events.TypeUserLoggedIn}, publisher.types())
}

func TestAuthService_SignupRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService()

	_, err := svc.Signup(ctx, &dto.SignupRequest{Email: "a@b.com", Password: "123456"})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, &dto.SignupRequest{Email: "A@B.com", Password: "abcdef"})
	assert.True(t, apperror.Is(err, apperror.KindConflict))
}

func TestAuthService_SignupValidation(t *testing.T) {
	svc, _ := newAuthService()

	_, err := svc.Signup(context.Background(), &dto.SignupRequest{Email: "not-an-email", Password: "123456"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = svc.Signup(context.Background(), &dto.SignupRequest{Email: "a@b.com", Password: "123"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestAuthService_LoginFailuresLookAlike(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService()

	_, err := svc.Signup(ctx, &dto.SignupRequest{Email: "a@b.com", Password: "123456"})
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, &dto.LoginRequest{Email: "a@b.com", Password: "654321"})
	_, unknownEmail := svc.Login(ctx, &dto.LoginRequest{Email: "x@b.com", Password: "123456"})

	assert.True(t, apperror.Is(wrongPassword, apperror.KindAuth))
	assert.True(t, apperror.Is(unknownEmail, apperror.KindAuth))
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestAuthService_UnknownEmailStillComparesPassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService()

	hash := absentUserHash()
	start := time.Now()
	_ = bcrypt.CompareHashAndPassword(hash, []byte("123456"))
	oneComparison := time.Since(start)

	start = time.Now()
	_, err := svc.Login(ctx, &dto.LoginRequest{Email: "nobody@b.com", Password: "123456"})
	elapsed := time.Since(start)

	assert.True(t, apperror.Is(err, apperror.KindAuth))
	assert.GreaterOrEqual(t, elapsed, oneComparison/2)
}

func TestAuthService_MeUnknownUser(t *testing.T) {
	svc, _ := newAuthService()

	_, err := svc.Me(context.Background(), uuid.New())
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}
