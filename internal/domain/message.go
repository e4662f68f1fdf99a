// File: internal/domain/message.go
package domain

import "time"

// ChatMessage represents a single message within a chat. A message is created
// exactly once and never mutated afterwards, except for the read flag.
type ChatMessage struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	ChatID    uint      `json:"chat_id" gorm:"not null;index"`
	SenderID  uint      `json:"sender_id" gorm:"not null"`
	Content   string    `json:"content" gorm:"not null"`
	IsRead    bool      `json:"is_read" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
}
