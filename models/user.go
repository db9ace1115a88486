package models

import "time"

type User struct {
	ID                 uint64    `json:"id"`
	Username           string    `json:"username"`
	Password           string    `json:"password,omitempty"`
	ActiveConversation string    `json:"active_conversation,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}
