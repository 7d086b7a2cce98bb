package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/officefinder/internal/model"
	"github.com/Freeeeeet/officefinder/internal/notify"
	"go.uber.org/zap"
)

// NotificationService связывает in-memory стримы push-уведомлений
// с сохраняемой историей.
type NotificationService struct {
	registry         *notify.Registry
	notificationRepo NotificationStore
	logger           *zap.Logger
}

func NewNotificationService(registry *notify.Registry, notificationRepo NotificationStore, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		registry:         registry,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// Notify сохраняет уведомление в историю и отправляет его в стрим адресата.
// Любой сбой гасится здесь же: доставка уведомлений не имеет права уронить
// бизнес-операцию, которая её вызвала.
func (s *NotificationService) Notify(ctx context.Context, userKey string, notificationType model.NotificationType, message string) {
	eventID := s.registry.Send(userKey, string(notificationType), message)

	notification := &model.Notification{
		UserKey: userKey,
		EventID: eventID,
		Type:    notificationType,
		Message: message,
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Error("Failed to persist notification",
			zap.String("user_key", userKey),
			zap.Int64("event_id", eventID),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("Notification sent",
		zap.String("user_key", userKey),
		zap.String("type", string(notificationType)),
		zap.Int64("event_id", eventID),
	)
}

// Subscribe подключает пользователя к его стриму с догрузкой пропущенных
// событий после lastEventID
func (s *NotificationService) Subscribe(userKey string, lastEventID int64) (<-chan notify.Event, func()) {
	return s.registry.Subscribe(userKey, lastEventID)
}

// GetNotifications получает историю уведомлений пользователя, новые сверху
func (s *NotificationService) GetNotifications(ctx context.Context, userKey string, limit, offset int) ([]*model.Notification, error) {
	notifications, err := s.notificationRepo.GetByUserKey(ctx, userKey, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("get notifications: %w", err)
	}

	return notifications, nil
}
