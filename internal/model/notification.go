package model

import "time"

type NotificationType string

const (
	NotificationTypeLeaseRequested NotificationType = "lease_requested" // Новое бронирование для владельца
	NotificationTypeLeaseAccepted  NotificationType = "lease_accepted"  // Бронирование подтверждено
	NotificationTypeLeaseRejected  NotificationType = "lease_rejected"  // Бронирование отклонено
)

// Notification сохранённое уведомление, история для пагинированной выдачи.
// EventID - монотонно растущий номер события в стриме конкретного пользователя.
type Notification struct {
	ID        int64            `json:"id"`
	UserKey   string           `json:"user_key"` // Адресат вида "customer:15" или "owner:3"
	EventID   int64            `json:"event_id"`
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"created_at"`
}
