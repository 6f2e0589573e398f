package filestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"chatbot-be/internal/entity"
	"chatbot-be/internal/repository/memory"

	"github.com/google/uuid"
)

type userRecord struct {
	Id           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type chatRecord struct {
	Id        uuid.UUID        `json:"id"`
	UserId    *uuid.UUID       `json:"userId"`
	Title     string           `json:"title"`
	Messages  []entity.Message `json:"messages"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

type document struct {
	Users []userRecord `json:"users"`
	Chats []chatRecord `json:"chats"`
}

// Open loads the JSON document at path (an absent file is an empty store) and
// returns a memory store that rewrites the whole document after every change.
func Open(path string) (*memory.Store, error) {
	doc, err := load(path)
	if err != nil {
		return nil, err
	}

	return memory.NewPersistentStore(doc.toSnapshot(), func(snapshot *memory.Snapshot) error {
		return write(path, fromSnapshot(snapshot))
	}), nil
}

func load(path string) (*document, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store file: %w", err)
	}
	if len(data) == 0 {
		return &document{}, nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode store file %s: %w", path, err)
	}
	return &doc, nil
}

// write replaces the file atomically so readers never observe a partial document.
func write(path string, doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".store-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

func (d *document) toSnapshot() *memory.Snapshot {
	snap := &memory.Snapshot{}
	for _, u := range d.Users {
		snap.Users = append(snap.Users, &entity.User{
			Id:           u.Id,
			Email:        u.Email,
			PasswordHash: u.PasswordHash,
			CreatedAt:    u.CreatedAt,
			UpdatedAt:    u.UpdatedAt,
		})
	}
	for _, c := range d.Chats {
		messages := c.Messages
		if messages == nil {
			messages = []entity.Message{}
		}
		snap.Chats = append(snap.Chats, &entity.Chat{
			Id:        c.Id,
			UserId:    c.UserId,
			Title:     c.Title,
			Messages:  messages,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
	}
	return snap
}

func fromSnapshot(snap *memory.Snapshot) *document {
	doc := &document{
		Users: make([]userRecord, 0, len(snap.Users)),
		Chats: make([]chatRecord, 0, len(snap.Chats)),
	}
	for _, u := range snap.Users {
		doc.Users = append(doc.Users, userRecord{
			Id:           u.Id,
			Email:        u.Email,
			PasswordHash: u.PasswordHash,
			CreatedAt:    u.CreatedAt,
			UpdatedAt:    u.UpdatedAt,
		})
	}
	for _, c := range snap.Chats {
		doc.Chats = append(doc.Chats, chatRecord{
			Id:        c.Id,
			UserId:    c.UserId,
			Title:     c.Title,
			Messages:  c.Messages,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
	}
	return doc
}
