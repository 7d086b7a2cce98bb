package handlers

import (
	"net/http"
	"time"

	"github.com/Freeeeeet/officefinder/internal/model"
	"github.com/Freeeeeet/officefinder/internal/service"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type LeaseHandler struct {
	leaseService *service.LeaseService
	validate     *validator.Validate
	logger       *zap.Logger
}

func NewLeaseHandler(leaseService *service.LeaseService, validate *validator.Validate, logger *zap.Logger) *LeaseHandler {
	return &LeaseHandler{
		leaseService: leaseService,
		validate:     validate,
		logger:       logger,
	}
}

// BookLease обрабатывает POST /api/offices/{officeID}/lease
func (h *LeaseHandler) BookLease(w http.ResponseWriter, r *http.Request) {
	custID, ok := customerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "customer not authenticated")
		return
	}

	officeID, err := parseID(r, "officeID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid office id")
		return
	}

	var req LeaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_date")
		return
	}

	lease, err := h.leaseService.BookLease(r.Context(), custID, officeID, startDate, req.Months, req.OccupantCount, req.MonthlyPay)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, leaseResponse(lease))
}

// GetLease обрабатывает GET /api/leases/{leaseID} - аренда текущего клиента
func (h *LeaseHandler) GetLease(w http.ResponseWriter, r *http.Request) {
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

	lease, err := h.leaseService.GetLease(r.Context(), custID, leaseID)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, leaseResponse(lease))
}

// GetLeases обрабатывает GET /api/leases - аренды текущего клиента
func (h *LeaseHandler) GetLeases(w http.ResponseWriter, r *http.Request) {
	custID, ok := customerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "customer not authenticated")
		return
	}

	p := parsePagination(r)

	leases, err := h.leaseService.GetLeaseList(r.Context(), custID, p.Limit, p.Offset)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	result := make([]LeaseResponse, 0, len(leases))
	for _, lease := range leases {
		result = append(result, leaseResponse(lease))
	}

	writeJSON(w, http.StatusOK, result)
}

// GetOfficeLeases обрабатывает GET /api/offices/{officeID}/leases - аренды офиса для владельца
func (h *LeaseHandler) GetOfficeLeases(w http.ResponseWriter, r *http.Request) {
	ownID, ok := ownerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "owner not authenticated")
		return
	}

	officeID, err := parseID(r, "officeID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid office id")
		return
	}

	p := parsePagination(r)

	leases, err := h.leaseService.GetOfficeLeases(r.Context(), ownID, officeID, p.Limit, p.Offset)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	result := make([]LeaseResponse, 0, len(leases))
	for _, lease := range leases {
		result = append(result, leaseResponse(lease))
	}

	writeJSON(w, http.StatusOK, result)
}

// AcceptLease обрабатывает POST /api/leases/{leaseID}/accept
func (h *LeaseHandler) AcceptLease(w http.ResponseWriter, r *http.Request) {
	ownID, ok := ownerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "owner not authenticated")
		return
	}

	leaseID, err := parseID(r, "leaseID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lease id")
		return
	}

	if err := h.leaseService.AcceptLease(r.Context(), ownID, leaseID); err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

// RejectLease обрабатывает POST /api/leases/{leaseID}/reject
func (h *LeaseHandler) RejectLease(w http.ResponseWriter, r *http.Request) {
	ownID, ok := ownerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "owner not authenticated")
		return
	}

	leaseID, err := parseID(r, "leaseID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lease id")
		return
	}

	if err := h.leaseService.RejectLease(r.Context(), ownID, leaseID); err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}

func leaseResponse(lease *model.Lease) LeaseResponse {
	return LeaseResponse{
		ID:        lease.ID,
		OfficeID:  lease.OfficeID,
		Price:     lease.Price,
		StartDate: lease.StartDate.Format("2006-01-02"),
		EndDate:   lease.EndDate.Format("2006-01-02"),
		Status:    string(lease.Status),
		Active:    lease.IsActive(),
		CreatedAt: lease.CreatedAt,
	}
}
