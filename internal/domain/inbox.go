package domain

import "time"

type InstagramConversation struct {
	ID                int32      `json:"id"`
	CompanyID         int32      `json:"company_id"`
	ExternalID        string     `json:"external_id"`
	ParticipantID     string     `json:"participant_id"`
	ParticipantHandle string     `json:"participant_handle"`
	ParticipantName   string     `json:"participant_name"`
	LastMessageAt     *time.Time `json:"last_message_at,omitempty"`
	LastMessage       string     `json:"last_message"`
	UnreadCount       int32      `json:"unread_count"`
}

type MessageDirection string

const (
	MessageInbound  MessageDirection = "inbound"
	MessageOutbound MessageDirection = "outbound"
)

type InstagramMessage struct {
	ID             int32            `json:"id"`
	ConversationID int32            `json:"conversation_id"`
	ExternalID     string           `json:"external_id"`
	Direction      MessageDirection `json:"direction"`
	Body           string           `json:"body"`
	SentAt         time.Time        `json:"sent_at"`
}
