package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Freeeeeet/officefinder/internal/apperr"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// writeJSON сериализует v и пишет ответ с заданным статусом
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError пишет структурированную ошибку
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeAppError маппит бизнес-ошибку в HTTP-статус.
// Бизнес-ошибки логируем как Warn, системные - как Error и наружу не показываем.
func writeAppError(w http.ResponseWriter, logger *zap.Logger, err error) {
	if !apperr.IsBusiness(err) {
		logger.Error("Request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	logger.Warn("Request rejected", zap.Error(err))

	switch {
	case errors.Is(err, apperr.ErrOfficeNotFound),
		errors.Is(err, apperr.ErrCustomerNotFound),
		errors.Is(err, apperr.ErrLeaseNotFound),
		errors.Is(err, apperr.ErrReviewNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, apperr.ErrLeaseOwnerMismatch),
		errors.Is(err, apperr.ErrReviewOwnerMismatch),
		errors.Is(err, apperr.ErrOfficeNotOwned):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, apperr.ErrNoRoomsAvailable),
		errors.Is(err, apperr.ErrReviewAlreadyExists),
		errors.Is(err, apperr.ErrLeaseNotExpired),
		errors.Is(err, apperr.ErrLeaseNotAwait):
		writeError(w, http.StatusConflict, err.Error())
	default:
		// ErrOfficeOverCapacity, ErrInsufficientPoints и прочие нарушения входных условий
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

// decodeJSON декодирует тело запроса в v
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// parseID извлекает числовой path-параметр
func parseID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// customerID достаёт аутентифицированного клиента из заголовка.
// Сама аутентификация происходит выше по стеку, сюда приходит готовый id.
func customerID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.Header.Get("X-Customer-ID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ownerID достаёт аутентифицированного владельца из заголовка
func ownerID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.Header.Get("X-Owner-ID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// pagination параметры постраничной выдачи
type pagination struct {
	Limit  int
	Offset int
}

// parsePagination извлекает page_size и offset из query-параметров
func parsePagination(r *http.Request) pagination {
	p := pagination{Limit: 20, Offset: 0}
	if v := r.URL.Query().Get("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.Limit = n
		}
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			p.Offset = n
		}
	}
	return p
}
