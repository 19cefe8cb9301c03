package domain

import "time"

type Notification struct {
	ID         int32             `json:"id"`
	UserID     int32             `json:"user_id"`
	CompanyID  *int32            `json:"company_id,omitempty"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	IsRead     bool              `json:"is_read"`
	Attributes map[string]string `json:"attributes"`
	CreatedOn  time.Time         `json:"created_on"`
}

// Event types delivered over /ws/notifications
const (
	EventInstagramDM    = "instagram_dm"
	EventDMSyncProgress = "dm_sync_progress"
	EventNotification   = "notification"
)

// Envelope is the frame written to websocket subscribers
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type SyncProgress struct {
	CompanyID int32 `json:"company_id"`
	Processed int   `json:"processed"`
	Total     int   `json:"total"`
	Done      bool  `json:"done"`
}
