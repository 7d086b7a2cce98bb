package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/officefinder/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// Create сохраняет уведомление в историю
func (r *NotificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	query := `
		INSERT INTO notifications (user_key, event_id, type, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		notification.UserKey,
		notification.EventID,
		notification.Type,
		notification.Message,
	).Scan(&notification.ID, &notification.CreatedAt)

	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	return nil
}

// GetByUserKey получает историю уведомлений пользователя, новые сверху
func (r *NotificationRepository) GetByUserKey(ctx context.Context, userKey string, limit, offset int) ([]*model.Notification, error) {
	query := `
		SELECT id, user_key, event_id, type, message, created_at
		FROM notifications
		WHERE user_key = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, userKey, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("get notifications by user: %w", err)
	}
	defer rows.Close()

	var notifications []*model.Notification
	for rows.Next() {
		var notification model.Notification
		err := rows.Scan(
			&notification.ID,
			&notification.UserKey,
			&notification.EventID,
			&notification.Type,
			&notification.Message,
			&notification.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, &notification)
	}

	return notifications, nil
}
