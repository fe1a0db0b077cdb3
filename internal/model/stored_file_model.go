package model

import (
	"time"
)

// StoredFile is a document held by the dev backend.
type StoredFile struct {
	Id         string    `json:"id"`
	Name       string    `json:"name"`
	Content    string    `json:"-"`
	Chunks     []string  `json:"-"`
	IsActive   bool      `json:"is_active"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// ConversationTurn is one answered query kept as backend memory.
type ConversationTurn struct {
	Query      string    `json:"query"`
	Answer     string    `json:"answer"`
	AnsweredAt time.Time `json:"answered_at"`
}
