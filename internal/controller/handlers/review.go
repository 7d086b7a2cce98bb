package handlers

import (
	"net/http"
	"strconv"

	"github.com/Freeeeeet/officefinder/internal/service"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Сколько последних отзывов показывает карточка офиса
const (
	topReviewCount    = 2
	maxTopReviewCount = 10
)

type ReviewHandler struct {
	reviewService *service.ReviewService
	validate      *validator.Validate
	logger        *zap.Logger
}

func NewReviewHandler(reviewService *service.ReviewService, validate *validator.Validate, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		validate:      validate,
		logger:        logger,
	}
}

// SubmitReview обрабатывает POST /api/leases/{leaseID}/reviews
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	custID, ok := customerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "customer not authenticated")
		return
	}

	leaseID, err := parseID(r, "leaseID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lease id")
		return
	}

	var req ReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	review, err := h.reviewService.SubmitReview(r.Context(), custID, leaseID, req.Rate, req.Description)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, review)
}

// UpdateReview обрабатывает PUT /api/reviews/{reviewID}
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	custID, ok := customerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "customer not authenticated")
		return
	}

	reviewID, err := parseID(r, "reviewID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid review id")
		return
	}

	var req ReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	review, err := h.reviewService.UpdateReview(r.Context(), custID, reviewID, req.Rate, req.Description)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, review)
}

// DeleteReview обрабатывает DELETE /api/reviews/{reviewID}
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	custID, ok := customerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "customer not authenticated")
		return
	}

	reviewID, err := parseID(r, "reviewID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid review id")
		return
	}

	if err := h.reviewService.DeleteReview(r.Context(), custID, reviewID); err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetOfficeReviews обрабатывает GET /api/offices/{officeID}/reviews
func (h *ReviewHandler) GetOfficeReviews(w http.ResponseWriter, r *http.Request) {
	officeID, err := parseID(r, "officeID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid office id")
		return
	}

	p := parsePagination(r)

	reviews, err := h.reviewService.GetReviewsByOffice(r.Context(), officeID, p.Limit, p.Offset)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	reviewCount, averageRate, err := h.reviewService.GetOfficeRating(r.Context(), officeID)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"reviews":      reviews,
		"review_count": reviewCount,
		"average_rate": averageRate,
	})
}

// GetTopOfficeReviews обрабатывает GET /api/offices/{officeID}/reviews/top -
// последние отзывы для карточки офиса
func (h *ReviewHandler) GetTopOfficeReviews(w http.ResponseWriter, r *http.Request) {
	officeID, err := parseID(r, "officeID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid office id")
		return
	}

	n := topReviewCount
	if v := r.URL.Query().Get("count"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > maxTopReviewCount {
			writeError(w, http.StatusBadRequest, "invalid count")
			return
		}
		n = parsed
	}

	reviews, err := h.reviewService.GetTopReviews(r.Context(), officeID, n)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, reviews)
}

// GetMyReviews обрабатывает GET /api/reviews - отзывы текущего клиента
func (h *ReviewHandler) GetMyReviews(w http.ResponseWriter, r *http.Request) {
	custID, ok := customerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "customer not authenticated")
		return
	}

	p := parsePagination(r)

	reviews, err := h.reviewService.GetReviewsByCustomer(r.Context(), custID, p.Limit, p.Offset)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, reviews)
}
