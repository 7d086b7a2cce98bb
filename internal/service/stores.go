package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/officefinder/internal/model"
	"github.com/jackc/pgx/v5"
)

// Интерфейсы хранилищ, которыми пользуются сервисы.
// Реализации живут в internal/repository, в тестах подставляются моки.

// TxRunner выполняет функцию в рамках одной транзакции
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

type OfficeStore interface {
	GetByID(ctx context.Context, id int64) (*model.Office, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*model.Office, error)
}

// OfficeRatingStore счётчики рейтинга офиса. Методы вызываются только
// в транзакции advisory-блокировки офиса.
type OfficeRatingStore interface {
	GetRatingTx(ctx context.Context, tx pgx.Tx, id int64) (int64, int64, error)
	SetRatingTx(ctx context.Context, tx pgx.Tx, id int64, reviewCount, totalRate int64) error
}

type LeaseStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, lease *model.Lease) error
	GetByID(ctx context.Context, id int64) (*model.Lease, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*model.Lease, error)
	CountActiveTx(ctx context.Context, tx pgx.Tx, officeID int64) (int, error)
	UpdateStatusTx(ctx context.Context, tx pgx.Tx, id int64, status model.LeaseStatus) error
	GetByCustomerID(ctx context.Context, customerID int64, limit, offset int) ([]*model.Lease, error)
	GetByOfficeID(ctx context.Context, officeID int64, limit, offset int) ([]*model.Lease, error)
	ExpireEndingBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type CustomerStore interface {
	GetByID(ctx context.Context, id int64) (*model.Customer, error)
	DebitPointsTx(ctx context.Context, tx pgx.Tx, id int64, amount int64) (bool, error)
	RefundPointsTx(ctx context.Context, tx pgx.Tx, id int64, amount int64) error
}

type ReviewStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, review *model.Review) error
	GetByID(ctx context.Context, id int64) (*model.Review, error)
	Update(ctx context.Context, id int64, rate int, description string) error
	Delete(ctx context.Context, id int64) error
	GetByCustomerID(ctx context.Context, customerID int64, limit, offset int) ([]*model.Review, error)
	GetByOfficeID(ctx context.Context, officeID int64, limit, offset int) ([]*model.Review, error)
	GetTopByOfficeID(ctx context.Context, officeID int64, n int) ([]*model.Review, error)
}

type NotificationStore interface {
	Create(ctx context.Context, notification *model.Notification) error
	GetByUserKey(ctx context.Context, userKey string, limit, offset int) ([]*model.Notification, error)
}

// OfficeLocker advisory-блокировка с ограниченным ожиданием,
// сериализующая изменения рейтинга одного офиса
type OfficeLocker interface {
	WithOfficeLock(ctx context.Context, officeID int64, fn func(tx pgx.Tx) error) error
}

// Notifier отправляет push-уведомление. Сбой доставки гасится внутри
// реализации и никогда не доходит до вызвавшей бизнес-операции.
type Notifier interface {
	Notify(ctx context.Context, userKey string, notificationType model.NotificationType, message string)
}
