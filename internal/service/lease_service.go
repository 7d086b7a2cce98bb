package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/officefinder/internal/apperr"
	"github.com/Freeeeeet/officefinder/internal/model"
	"github.com/Freeeeeet/officefinder/internal/notify"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type LeaseService struct {
	txm          TxRunner
	officeRepo   OfficeStore
	leaseRepo    LeaseStore
	customerRepo CustomerStore
	notifier     Notifier
	logger       *zap.Logger
}

func NewLeaseService(
	txm TxRunner,
	officeRepo OfficeStore,
	leaseRepo LeaseStore,
	customerRepo CustomerStore,
	notifier Notifier,
	logger *zap.Logger,
) *LeaseService {
	return &LeaseService{
		txm:          txm,
		officeRepo:   officeRepo,
		leaseRepo:    leaseRepo,
		customerRepo: customerRepo,
		notifier:     notifier,
		logger:       logger,
	}
}

// BookLease бронирует комнату офиса на заданный срок.
// Проверка вместимости, пересчёт занятых комнат, списание поинтов и вставка
// аренды выполняются одной транзакцией под блокировкой строки офиса:
// из двух конкурентных бронирований последней комнаты пройдёт ровно одно,
// второе получит apperr.ErrNoRoomsAvailable. Деньги не двигаются ни при
// одной из ошибок.
func (s *LeaseService) BookLease(ctx context.Context, customerID, officeID int64, startDate time.Time, months, occupantCount int, monthlyPay bool) (*model.Lease, error) {
	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	if customer == nil {
		return nil, apperr.ErrCustomerNotFound
	}

	var lease *model.Lease
	var office *model.Office

	err = s.txm.WithinTx(ctx, func(tx pgx.Tx) error {
		// Блокируем строку офиса до конца транзакции
		office, err = s.officeRepo.GetByIDForUpdate(ctx, tx, officeID)
		if err != nil {
			return fmt.Errorf("get office: %w", err)
		}
		if office == nil {
			return apperr.ErrOfficeNotFound
		}

		if occupantCount > office.MaxCapacity {
			return apperr.ErrOfficeOverCapacity
		}

		price := model.LeasePrice(office.LeaseFee, months)
		if customer.Point < price {
			return apperr.ErrInsufficientPoints
		}

		// Пересчитываем занятость комнат под блокировкой
		active, err := s.leaseRepo.CountActiveTx(ctx, tx, officeID)
		if err != nil {
			return fmt.Errorf("count active leases: %w", err)
		}
		if active >= office.MaxRoomCount {
			return apperr.ErrNoRoomsAvailable
		}

		// Условное списание перепроверяет баланс на случай конкурентного
		// бронирования того же клиента
		debited, err := s.customerRepo.DebitPointsTx(ctx, tx, customerID, price)
		if err != nil {
			return fmt.Errorf("debit points: %w", err)
		}
		if !debited {
			return apperr.ErrInsufficientPoints
		}

		lease = &model.Lease{
			OfficeID:   officeID,
			CustomerID: customerID,
			Price:      price,
			StartDate:  startDate,
			EndDate:    model.LeaseEnd(startDate, months),
			MonthlyPay: monthlyPay,
			Status:     model.LeaseStatusAwait,
		}

		return s.leaseRepo.CreateTx(ctx, tx, lease)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Office lease booked",
		zap.Int64("lease_id", lease.ID),
		zap.Int64("office_id", officeID),
		zap.Int64("customer_id", customerID),
		zap.Int64("price", lease.Price),
		zap.Time("start_date", lease.StartDate),
		zap.Time("end_date", lease.EndDate),
	)

	// Уведомление после коммита, best-effort: сбой доставки бронирование не откатит
	s.notifier.Notify(ctx, notify.OwnerKey(office.OwnerID), model.NotificationTypeLeaseRequested,
		fmt.Sprintf("New lease request #%d for office %q", lease.ID, office.Name))

	lease.Office = office
	lease.Customer = customer

	return lease, nil
}

// AcceptLease подтверждает бронирование, AWAIT -> PROCEEDING
func (s *LeaseService) AcceptLease(ctx context.Context, ownerID, leaseID int64) error {
	var lease *model.Lease

	err := s.txm.WithinTx(ctx, func(tx pgx.Tx) error {
		var err error
		lease, err = s.leaseRepo.GetByIDForUpdate(ctx, tx, leaseID)
		if err != nil {
			return fmt.Errorf("get lease: %w", err)
		}
		if lease == nil {
			return apperr.ErrLeaseNotFound
		}

		office, err := s.officeRepo.GetByID(ctx, lease.OfficeID)
		if err != nil {
			return fmt.Errorf("get office: %w", err)
		}
		if office == nil {
			return apperr.ErrOfficeNotFound
		}
		if office.OwnerID != ownerID {
			return apperr.ErrOfficeNotOwned
		}

		if lease.Status != model.LeaseStatusAwait {
			return apperr.ErrLeaseNotAwait
		}

		return s.leaseRepo.UpdateStatusTx(ctx, tx, leaseID, model.LeaseStatusProceeding)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Lease accepted",
		zap.Int64("lease_id", leaseID),
		zap.Int64("owner_id", ownerID),
	)

	s.notifier.Notify(ctx, notify.CustomerKey(lease.CustomerID), model.NotificationTypeLeaseAccepted,
		fmt.Sprintf("Lease #%d has been accepted", leaseID))

	return nil
}

// RejectLease отклоняет бронирование, AWAIT -> REJECTED.
// Списанные при бронировании поинты возвращаются клиенту той же транзакцией.
func (s *LeaseService) RejectLease(ctx context.Context, ownerID, leaseID int64) error {
	var lease *model.Lease

	err := s.txm.WithinTx(ctx, func(tx pgx.Tx) error {
		var err error
		lease, err = s.leaseRepo.GetByIDForUpdate(ctx, tx, leaseID)
		if err != nil {
			return fmt.Errorf("get lease: %w", err)
		}
		if lease == nil {
			return apperr.ErrLeaseNotFound
		}

		office, err := s.officeRepo.GetByID(ctx, lease.OfficeID)
		if err != nil {
			return fmt.Errorf("get office: %w", err)
		}
		if office == nil {
			return apperr.ErrOfficeNotFound
		}
		if office.OwnerID != ownerID {
			return apperr.ErrOfficeNotOwned
		}

		if lease.Status != model.LeaseStatusAwait {
			return apperr.ErrLeaseNotAwait
		}

		if err := s.leaseRepo.UpdateStatusTx(ctx, tx, leaseID, model.LeaseStatusRejected); err != nil {
			return err
		}

		return s.customerRepo.RefundPointsTx(ctx, tx, lease.CustomerID, lease.Price)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Lease rejected",
		zap.Int64("lease_id", leaseID),
		zap.Int64("owner_id", ownerID),
		zap.Int64("refunded", lease.Price),
	)

	s.notifier.Notify(ctx, notify.CustomerKey(lease.CustomerID), model.NotificationTypeLeaseRejected,
		fmt.Sprintf("Lease #%d has been rejected, %d points refunded", leaseID, lease.Price))

	return nil
}

// GetLease получает одну аренду клиента
func (s *LeaseService) GetLease(ctx context.Context, customerID, leaseID int64) (*model.Lease, error) {
	lease, err := s.leaseRepo.GetByID(ctx, leaseID)
	if err != nil {
		return nil, fmt.Errorf("get lease: %w", err)
	}
	if lease == nil {
		return nil, apperr.ErrLeaseNotFound
	}

	if lease.CustomerID != customerID {
		return nil, apperr.ErrLeaseOwnerMismatch
	}

	return lease, nil
}

// GetLeaseList получает аренды клиента постранично
func (s *LeaseService) GetLeaseList(ctx context.Context, customerID int64, limit, offset int) ([]*model.Lease, error) {
	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	if customer == nil {
		return nil, apperr.ErrCustomerNotFound
	}

	return s.leaseRepo.GetByCustomerID(ctx, customerID, limit, offset)
}

// GetOfficeLeases получает аренды офиса для его владельца
func (s *LeaseService) GetOfficeLeases(ctx context.Context, ownerID, officeID int64, limit, offset int) ([]*model.Lease, error) {
	office, err := s.officeRepo.GetByID(ctx, officeID)
	if err != nil {
		return nil, fmt.Errorf("get office: %w", err)
	}
	if office == nil {
		return nil, apperr.ErrOfficeNotFound
	}
	if office.OwnerID != ownerID {
		return nil, apperr.ErrOfficeNotOwned
	}

	return s.leaseRepo.GetByOfficeID(ctx, officeID, limit, offset)
}

// ExpireLeasesEndingBefore завершает все активные аренды с датой окончания
// раньше cutoff и возвращает количество затронутых записей.
// Идемпотентно: повторный вызов с тем же cutoff не меняет ни одной строки.
func (s *LeaseService) ExpireLeasesEndingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.leaseRepo.ExpireEndingBefore(ctx, cutoff)
}
