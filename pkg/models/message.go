package models

import "time"

type MessageType string

const (
	MessageTypeChat        MessageType = "message"
	MessageTypeJoin        MessageType = "join"
	MessageTypeLeave       MessageType = "leave"
	MessageTypeTyping      MessageType = "typing"
	MessageTypeRead        MessageType = "read"
	MessageTypeUnreadCount MessageType = "unread_count"
)

// Message is the single frame format of the chat transport. ChatID is
// empty for pure unread-count updates.
type Message struct {
	Type        MessageType  `json:"type"`
	ChatID      string       `json:"chat_id,omitempty"`
	SenderID    string       `json:"sender_id,omitempty"`
	Role        string       `json:"role,omitempty"`
	Content     string       `json:"content,omitempty"`
	ContentType string       `json:"message_type,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	IsTyping    bool         `json:"is_typing,omitempty"`
	UnreadCount int          `json:"unread_count,omitempty"`
	Timestamp   time.Time    `json:"timestamp,omitempty"`
}

type Attachment struct {
	URL      string `json:"url"`
	Name     string `json:"name,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	Size     int64  `json:"size,omitempty"`
}
