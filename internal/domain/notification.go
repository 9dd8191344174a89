package domain

import "time"

const (
	NotificationTypeNewSession          = "new_session"
	NotificationTypeNewRecurringSession = "new_recurring_session"
)

type Notification struct {
	ID          int64     `json:"id"`
	RecipientID int64     `json:"recipientID"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"createdAt"`
}
