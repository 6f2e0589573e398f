package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the projection of a user that may leave the server.
type PublicUser struct {
	Id    uuid.UUID
	Email string
}

func (u *User) Public() *PublicUser {
	return &PublicUser{Id: u.Id, Email: u.Email}
}
