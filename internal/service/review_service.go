package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/officefinder/internal/apperr"
	"github.com/Freeeeeet/officefinder/internal/model"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ReviewService struct {
	txm        TxRunner
	reviewRepo ReviewStore
	leaseRepo  LeaseStore
	officeRepo OfficeStore
	rating     *RatingAggregator
	logger     *zap.Logger
}

func NewReviewService(
	txm TxRunner,
	reviewRepo ReviewStore,
	leaseRepo LeaseStore,
	officeRepo OfficeStore,
	rating *RatingAggregator,
	logger *zap.Logger,
) *ReviewService {
	return &ReviewService{
		txm:        txm,
		reviewRepo: reviewRepo,
		leaseRepo:  leaseRepo,
		officeRepo: officeRepo,
		rating:     rating,
		logger:     logger,
	}
}

// SubmitReview сохраняет отзыв по завершённой аренде.
// Вставка отзыва и переход аренды в REVIEWED - одна транзакция, поэтому
// второго отзыва по той же аренде быть не может. Счётчики рейтинга офиса
// обновляются уже после коммита: их судьба на сохранённый отзыв не влияет.
func (s *ReviewService) SubmitReview(ctx context.Context, customerID, leaseID int64, rate int, description string) (*model.Review, error) {
	var review *model.Review
	var officeID int64

	err := s.txm.WithinTx(ctx, func(tx pgx.Tx) error {
		lease, err := s.leaseRepo.GetByIDForUpdate(ctx, tx, leaseID)
		if err != nil {
			return fmt.Errorf("get lease: %w", err)
		}
		if lease == nil {
			return apperr.ErrLeaseNotFound
		}

		if lease.CustomerID != customerID {
			return apperr.ErrLeaseOwnerMismatch
		}

		if lease.Status == model.LeaseStatusReviewed {
			return apperr.ErrReviewAlreadyExists
		}

		if lease.Status != model.LeaseStatusExpired {
			return apperr.ErrLeaseNotExpired
		}

		review = &model.Review{
			LeaseID:     leaseID,
			CustomerID:  customerID,
			OfficeID:    lease.OfficeID,
			Rate:        rate,
			Description: description,
		}

		if err := s.reviewRepo.CreateTx(ctx, tx, review); err != nil {
			return err
		}

		officeID = lease.OfficeID

		return s.leaseRepo.UpdateStatusTx(ctx, tx, leaseID, model.LeaseStatusReviewed)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Review submitted",
		zap.Int64("review_id", review.ID),
		zap.Int64("lease_id", leaseID),
		zap.Int64("office_id", officeID),
		zap.Int("rate", rate),
	)

	if err := s.rating.Increment(ctx, officeID, rate); err != nil {
		return nil, err
	}

	return review, nil
}

// UpdateReview обновляет оценку и текст существующего отзыва
func (s *ReviewService) UpdateReview(ctx context.Context, customerID, reviewID int64, rate int, description string) (*model.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	if review == nil {
		return nil, apperr.ErrReviewNotFound
	}

	if review.CustomerID != customerID {
		return nil, apperr.ErrReviewOwnerMismatch
	}

	if err := s.reviewRepo.Update(ctx, reviewID, rate, description); err != nil {
		return nil, err
	}

	review.Rate = rate
	review.Description = description

	return review, nil
}

// DeleteReview удаляет отзыв
func (s *ReviewService) DeleteReview(ctx context.Context, customerID, reviewID int64) error {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return fmt.Errorf("get review: %w", err)
	}
	if review == nil {
		return apperr.ErrReviewNotFound
	}

	if review.CustomerID != customerID {
		return apperr.ErrReviewOwnerMismatch
	}

	return s.reviewRepo.Delete(ctx, reviewID)
}

// GetReviewsByCustomer получает отзывы клиента постранично
func (s *ReviewService) GetReviewsByCustomer(ctx context.Context, customerID int64, limit, offset int) ([]*model.Review, error) {
	return s.reviewRepo.GetByCustomerID(ctx, customerID, limit, offset)
}

// GetReviewsByOffice получает отзывы об офисе постранично
func (s *ReviewService) GetReviewsByOffice(ctx context.Context, officeID int64, limit, offset int) ([]*model.Review, error) {
	office, err := s.officeRepo.GetByID(ctx, officeID)
	if err != nil {
		return nil, fmt.Errorf("get office: %w", err)
	}
	if office == nil {
		return nil, apperr.ErrOfficeNotFound
	}

	return s.reviewRepo.GetByOfficeID(ctx, officeID, limit, offset)
}

// GetTopReviews получает n последних отзывов об офисе для витрины карточки
func (s *ReviewService) GetTopReviews(ctx context.Context, officeID int64, n int) ([]*model.Review, error) {
	office, err := s.officeRepo.GetByID(ctx, officeID)
	if err != nil {
		return nil, fmt.Errorf("get office: %w", err)
	}
	if office == nil {
		return nil, apperr.ErrOfficeNotFound
	}

	return s.reviewRepo.GetTopByOfficeID(ctx, officeID, n)
}

// GetOfficeRating возвращает количество отзывов и средний рейтинг офиса
func (s *ReviewService) GetOfficeRating(ctx context.Context, officeID int64) (int64, float64, error) {
	office, err := s.officeRepo.GetByID(ctx, officeID)
	if err != nil {
		return 0, 0, fmt.Errorf("get office: %w", err)
	}
	if office == nil {
		return 0, 0, apperr.ErrOfficeNotFound
	}

	return office.ReviewCount, office.AverageRate(), nil
}
