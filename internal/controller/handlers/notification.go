package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Freeeeeet/officefinder/internal/notify"
	"github.com/Freeeeeet/officefinder/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Интервал keep-alive комментариев, чтобы прокси не закрывали соединение
const sseHeartbeatInterval = 30 * time.Second

type NotificationHandler struct {
	notificationService *service.NotificationService
	logger              *zap.Logger
}

func NewNotificationHandler(notificationService *service.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		logger:              logger,
	}
}

// Stream обрабатывает GET /api/notifications/stream - долгоживущее
// SSE-соединение. Переподключающийся клиент передаёт Last-Event-ID,
// и стрим продолжается строго после этого события без дублей
// в пределах окна повтора. Пустой заголовок - с начала окна.
func (h *NotificationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	userKey, ok := principalKey(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	var lastEventID int64
	if raw := r.Header.Get("Last-Event-ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid Last-Event-ID")
			return
		}
		lastEventID = id
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events, unsubscribe := h.notificationService.Subscribe(userKey, lastEventID)
	defer unsubscribe()

	connID := uuid.NewString()
	h.logger.Info("Push connection opened",
		zap.String("user_key", userKey),
		zap.String("conn_id", connID),
		zap.Int64("last_event_id", lastEventID),
	)
	defer h.logger.Info("Push connection closed",
		zap.String("user_key", userKey),
		zap.String("conn_id", connID),
	)

	heartbeat := time.NewTicker(sseHeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case event, open := <-events:
			if !open {
				// Стрим вытеснен новым соединением этого же пользователя
				return
			}
			if err := writeSSEEvent(w, event); err != nil {
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

// GetCustomerNotifications обрабатывает GET /api/customers/notifications
func (h *NotificationHandler) GetCustomerNotifications(w http.ResponseWriter, r *http.Request) {
	custID, ok := customerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "customer not authenticated")
		return
	}

	h.writeHistory(w, r, notify.CustomerKey(custID))
}

// GetOwnerNotifications обрабатывает GET /api/agents/notifications
func (h *NotificationHandler) GetOwnerNotifications(w http.ResponseWriter, r *http.Request) {
	ownID, ok := ownerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "owner not authenticated")
		return
	}

	h.writeHistory(w, r, notify.OwnerKey(ownID))
}

func (h *NotificationHandler) writeHistory(w http.ResponseWriter, r *http.Request, userKey string) {
	p := parsePagination(r)

	notifications, err := h.notificationService.GetNotifications(r.Context(), userKey, p.Limit, p.Offset)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, notifications)
}

// principalKey определяет адресата стрима по заголовкам аутентификации
func principalKey(r *http.Request) (string, bool) {
	if id, ok := customerID(r); ok {
		return notify.CustomerKey(id), true
	}
	if id, ok := ownerID(r); ok {
		return notify.OwnerKey(id), true
	}
	return "", false
}

// writeSSEEvent пишет одно событие в формате text/event-stream
func writeSSEEvent(w http.ResponseWriter, event notify.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", event.ID, event.Type, data)
	return err
}
