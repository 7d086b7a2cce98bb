package controller

import (
	"net/http"

	"github.com/Freeeeeet/officefinder/internal/controller/handlers"
	"github.com/Freeeeeet/officefinder/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// NewRouter собирает все HTTP-маршруты приложения
func NewRouter(
	leaseService *service.LeaseService,
	reviewService *service.ReviewService,
	notificationService *service.NotificationService,
	logger *zap.Logger,
) http.Handler {
	validate := validator.New()

	leaseHandler := handlers.NewLeaseHandler(leaseService, validate, logger)
	reviewHandler := handlers.NewReviewHandler(reviewService, validate, logger)
	notificationHandler := handlers.NewNotificationHandler(notificationService, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		// Бронирования
		r.Post("/offices/{officeID}/lease", leaseHandler.BookLease)
		r.Get("/offices/{officeID}/leases", leaseHandler.GetOfficeLeases)
		r.Get("/leases", leaseHandler.GetLeases)
		r.Get("/leases/{leaseID}", leaseHandler.GetLease)
		r.Post("/leases/{leaseID}/accept", leaseHandler.AcceptLease)
		r.Post("/leases/{leaseID}/reject", leaseHandler.RejectLease)

		// Отзывы
		r.Post("/leases/{leaseID}/reviews", reviewHandler.SubmitReview)
		r.Put("/reviews/{reviewID}", reviewHandler.UpdateReview)
		r.Delete("/reviews/{reviewID}", reviewHandler.DeleteReview)
		r.Get("/reviews", reviewHandler.GetMyReviews)
		r.Get("/offices/{officeID}/reviews", reviewHandler.GetOfficeReviews)
		r.Get("/offices/{officeID}/reviews/top", reviewHandler.GetTopOfficeReviews)

		// Уведомления
		r.Get("/notifications/stream", notificationHandler.Stream)
		r.Get("/customers/notifications", notificationHandler.GetCustomerNotifications)
		r.Get("/agents/notifications", notificationHandler.GetOwnerNotifications)
	})

	return r
}
