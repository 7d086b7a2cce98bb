package service

import (
	"context"
	"sync"
	"time"

	"github.com/Freeeeeet/officefinder/internal/model"
	"github.com/jackc/pgx/v5"
)

// Моки хранилищ для юнит-тестов сервисов.
// Транзакция в моках не настоящая: WithinTx просто вызывает fn с nil tx.

type mockTxRunner struct {
	beginErr error
	calls    int
}

func (m *mockTxRunner) WithinTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	if m.beginErr != nil {
		return m.beginErr
	}
	m.calls++
	return fn(nil)
}

// serialTxRunner пускает транзакции строго по одной, как блокировка
// строки офиса: вторая ждёт коммита первой и видит её изменения
type serialTxRunner struct {
	mu sync.Mutex
}

func (m *serialTxRunner) WithinTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(nil)
}

type mockOfficeStore struct {
	getByIDFunc          func(ctx context.Context, id int64) (*model.Office, error)
	getByIDForUpdateFunc func(ctx context.Context, tx pgx.Tx, id int64) (*model.Office, error)
}

func (m *mockOfficeStore) GetByID(ctx context.Context, id int64) (*model.Office, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockOfficeStore) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*model.Office, error) {
	if m.getByIDForUpdateFunc != nil {
		return m.getByIDForUpdateFunc(ctx, tx, id)
	}
	return nil, nil
}

type mockLeaseStore struct {
	createFunc         func(ctx context.Context, tx pgx.Tx, lease *model.Lease) error
	getByIDFunc        func(ctx context.Context, id int64) (*model.Lease, error)
	getForUpdateFunc   func(ctx context.Context, tx pgx.Tx, id int64) (*model.Lease, error)
	countActiveFunc    func(ctx context.Context, tx pgx.Tx, officeID int64) (int, error)
	updateStatusFunc   func(ctx context.Context, tx pgx.Tx, id int64, status model.LeaseStatus) error
	getByCustomerFunc  func(ctx context.Context, customerID int64, limit, offset int) ([]*model.Lease, error)
	getByOfficeFunc    func(ctx context.Context, officeID int64, limit, offset int) ([]*model.Lease, error)
	expireFunc         func(ctx context.Context, cutoff time.Time) (int64, error)
	createdLeases      []*model.Lease
	statusTransitions  map[int64]model.LeaseStatus
}

func (m *mockLeaseStore) CreateTx(ctx context.Context, tx pgx.Tx, lease *model.Lease) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, tx, lease)
	}
	lease.ID = int64(len(m.createdLeases) + 1)
	lease.CreatedAt = time.Now()
	m.createdLeases = append(m.createdLeases, lease)
	return nil
}

func (m *mockLeaseStore) GetByID(ctx context.Context, id int64) (*model.Lease, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockLeaseStore) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*model.Lease, error) {
	if m.getForUpdateFunc != nil {
		return m.getForUpdateFunc(ctx, tx, id)
	}
	return nil, nil
}

func (m *mockLeaseStore) CountActiveTx(ctx context.Context, tx pgx.Tx, officeID int64) (int, error) {
	if m.countActiveFunc != nil {
		return m.countActiveFunc(ctx, tx, officeID)
	}
	return 0, nil
}

func (m *mockLeaseStore) UpdateStatusTx(ctx context.Context, tx pgx.Tx, id int64, status model.LeaseStatus) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, tx, id, status)
	}
	if m.statusTransitions == nil {
		m.statusTransitions = make(map[int64]model.LeaseStatus)
	}
	m.statusTransitions[id] = status
	return nil
}

func (m *mockLeaseStore) GetByCustomerID(ctx context.Context, customerID int64, limit, offset int) ([]*model.Lease, error) {
	if m.getByCustomerFunc != nil {
		return m.getByCustomerFunc(ctx, customerID, limit, offset)
	}
	return nil, nil
}

func (m *mockLeaseStore) GetByOfficeID(ctx context.Context, officeID int64, limit, offset int) ([]*model.Lease, error) {
	if m.getByOfficeFunc != nil {
		return m.getByOfficeFunc(ctx, officeID, limit, offset)
	}
	return nil, nil
}

func (m *mockLeaseStore) ExpireEndingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.expireFunc != nil {
		return m.expireFunc(ctx, cutoff)
	}
	return 0, nil
}

type mockCustomerStore struct {
	getByIDFunc func(ctx context.Context, id int64) (*model.Customer, error)
	debitFunc   func(ctx context.Context, tx pgx.Tx, id int64, amount int64) (bool, error)
	refundFunc  func(ctx context.Context, tx pgx.Tx, id int64, amount int64) error
	debits      []int64
	refunds     []int64
}

func (m *mockCustomerStore) GetByID(ctx context.Context, id int64) (*model.Customer, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockCustomerStore) DebitPointsTx(ctx context.Context, tx pgx.Tx, id int64, amount int64) (bool, error) {
	if m.debitFunc != nil {
		return m.debitFunc(ctx, tx, id, amount)
	}
	m.debits = append(m.debits, amount)
	return true, nil
}

func (m *mockCustomerStore) RefundPointsTx(ctx context.Context, tx pgx.Tx, id int64, amount int64) error {
	if m.refundFunc != nil {
		return m.refundFunc(ctx, tx, id, amount)
	}
	m.refunds = append(m.refunds, amount)
	return nil
}

type mockReviewStore struct {
	createFunc        func(ctx context.Context, tx pgx.Tx, review *model.Review) error
	getByIDFunc       func(ctx context.Context, id int64) (*model.Review, error)
	updateFunc        func(ctx context.Context, id int64, rate int, description string) error
	deleteFunc        func(ctx context.Context, id int64) error
	getByCustomerFunc func(ctx context.Context, customerID int64, limit, offset int) ([]*model.Review, error)
	getByOfficeFunc   func(ctx context.Context, officeID int64, limit, offset int) ([]*model.Review, error)
	getTopFunc        func(ctx context.Context, officeID int64, n int) ([]*model.Review, error)
	createdReviews    []*model.Review
	deletedIDs        []int64
}

func (m *mockReviewStore) CreateTx(ctx context.Context, tx pgx.Tx, review *model.Review) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, tx, review)
	}
	review.ID = int64(len(m.createdReviews) + 1)
	review.CreatedAt = time.Now()
	m.createdReviews = append(m.createdReviews, review)
	return nil
}

func (m *mockReviewStore) GetByID(ctx context.Context, id int64) (*model.Review, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockReviewStore) Update(ctx context.Context, id int64, rate int, description string) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, rate, description)
	}
	return nil
}

func (m *mockReviewStore) Delete(ctx context.Context, id int64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	m.deletedIDs = append(m.deletedIDs, id)
	return nil
}

func (m *mockReviewStore) GetByCustomerID(ctx context.Context, customerID int64, limit, offset int) ([]*model.Review, error) {
	if m.getByCustomerFunc != nil {
		return m.getByCustomerFunc(ctx, customerID, limit, offset)
	}
	return nil, nil
}

func (m *mockReviewStore) GetByOfficeID(ctx context.Context, officeID int64, limit, offset int) ([]*model.Review, error) {
	if m.getByOfficeFunc != nil {
		return m.getByOfficeFunc(ctx, officeID, limit, offset)
	}
	return nil, nil
}

func (m *mockReviewStore) GetTopByOfficeID(ctx context.Context, officeID int64, n int) ([]*model.Review, error) {
	if m.getTopFunc != nil {
		return m.getTopFunc(ctx, officeID, n)
	}
	return nil, nil
}

type sentNotification struct {
	userKey string
	typ     model.NotificationType
	message string
}

type mockNotifier struct {
	sent []sentNotification
}

func (m *mockNotifier) Notify(ctx context.Context, userKey string, notificationType model.NotificationType, message string) {
	m.sent = append(m.sent, sentNotification{userKey: userKey, typ: notificationType, message: message})
}

type mockLocker struct {
	err   error
	calls int
}

func (m *mockLocker) WithOfficeLock(ctx context.Context, officeID int64, fn func(tx pgx.Tx) error) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	return fn(nil)
}

type mockRatingStore struct {
	reviewCount int64
	totalRate   int64
	getErr      error
	setErr      error
}

func (m *mockRatingStore) GetRatingTx(ctx context.Context, tx pgx.Tx, id int64) (int64, int64, error) {
	if m.getErr != nil {
		return 0, 0, m.getErr
	}
	return m.reviewCount, m.totalRate, nil
}

func (m *mockRatingStore) SetRatingTx(ctx context.Context, tx pgx.Tx, id int64, reviewCount, totalRate int64) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.reviewCount = reviewCount
	m.totalRate = totalRate
	return nil
}

type mockNotificationStore struct {
	createFunc func(ctx context.Context, notification *model.Notification) error
	getFunc    func(ctx context.Context, userKey string, limit, offset int) ([]*model.Notification, error)
	created    []*model.Notification
}

func (m *mockNotificationStore) Create(ctx context.Context, notification *model.Notification) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, notification)
	}
	notification.ID = int64(len(m.created) + 1)
	notification.CreatedAt = time.Now()
	m.created = append(m.created, notification)
	return nil
}

func (m *mockNotificationStore) GetByUserKey(ctx context.Context, userKey string, limit, offset int) ([]*model.Notification, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, userKey, limit, offset)
	}
	return nil, nil
}
