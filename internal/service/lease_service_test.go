package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/officefinder/internal/apperr"
	"github.com/Freeeeeet/officefinder/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testOffice() *model.Office {
	return &model.Office{
		ID:           10,
		OwnerID:      3,
		Name:         "office1",
		LeaseFee:     500000,
		MaxCapacity:  5,
		MaxRoomCount: 5,
	}
}

func testCustomer() *model.Customer {
	return &model.Customer{ID: 1, Name: "customer1", Email: "test@test.com", Point: 1000000}
}

func newLeaseService(offices *mockOfficeStore, leases *mockLeaseStore, customers *mockCustomerStore, notifier *mockNotifier) *LeaseService {
	return NewLeaseService(&mockTxRunner{}, offices, leases, customers, notifier, zap.NewNop())
}

func TestBookLease(t *testing.T) {
	office := testOffice()
	customer := testCustomer()

	offices := &mockOfficeStore{
		getByIDForUpdateFunc: func(ctx context.Context, tx pgx.Tx, id int64) (*model.Office, error) {
			return office, nil
		},
	}
	customers := &mockCustomerStore{
		getByIDFunc: func(ctx context.Context, id int64) (*model.Customer, error) {
			return customer, nil
		},
	}
	leases := &mockLeaseStore{}
	notifier := &mockNotifier{}

	s := newLeaseService(offices, leases, customers, notifier)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	lease, err := s.BookLease(context.Background(), 1, 10, start, 1, 4, false)

	require.NoError(t, err)
	assert.Equal(t, model.LeaseStatusAwait, lease.Status)
	assert.Equal(t, int64(500000), lease.Price)
	assert.Equal(t, start, lease.StartDate)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), lease.EndDate)

	// Поинты списаны ровно один раз на полную стоимость
	require.Len(t, customers.debits, 1)
	assert.Equal(t, int64(500000), customers.debits[0])

	// Владелец офиса получил уведомление после коммита
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "owner:3", notifier.sent[0].userKey)
	assert.Equal(t, model.NotificationTypeLeaseRequested, notifier.sent[0].typ)
}

func TestBookLeaseOverCapacity(t *testing.T) {
	office := testOffice()

	offices := &mockOfficeStore{
		getByIDForUpdateFunc: func(ctx context.Context, tx pgx.Tx, id int64) (*model.Office, error) {
			return office, nil
		},
	}
	customers := &mockCustomerStore{
		getByIDFunc: func(ctx context.Context, id int64) (*model.Customer, error) {
			return testCustomer(), nil
		},
	}
	leases := &mockLeaseStore{}
	notifier := &mockNotifier{}

	s := newLeaseService(offices, leases, customers, notifier)

	_, err := s.BookLease(context.Background(), 1, 10, time.Now(), 1, 6, false)

	assert.ErrorIs(t, err, apperr.ErrOfficeOverCapacity)
	// До ошибки деньги не двигались
	assert.Empty(t, customers.debits)
	assert.Empty(t, leases.createdLeases)
	assert.Empty(t, notifier.sent)
}

func TestBookLeaseInsufficientPoints(t *testing.T) {
	office := testOffice()
	customer := testCustomer()
	customer.Point = 100

	offices := &mockOfficeStore{
		getByIDForUpdateFunc: func(ctx context.Context, tx pgx.Tx, id int64) (*model.Office, error) {
			return office, nil
		},
	}
	customers := &mockCustomerStore{
		getByIDFunc: func(ctx context.Context, id int64) (*model.Customer, error) {
			return customer, nil
		},
	}

	s := newLeaseService(offices, &mockLeaseStore{}, customers, &mockNotifier{})

	_, err := s.BookLease(context.Background(), 1, 10, time.Now(), 1, 4, false)

	assert.ErrorIs(t, err, apperr.ErrInsufficientPoints)
	assert.Empty(t, customers.debits)
}

func TestBookLeaseNoRoomsAvailable(t *testing.T) {
	office := testOffice()
	office.MaxRoomCount = 1

	offices := &mockOfficeStore{
		getByIDForUpdateFunc: func(ctx context.Context, tx pgx.Tx, id int64) (*model.Office, error) {
			return office, nil
		},
	}
	customers := &mockCustomerStore{
		getByIDFunc: func(ctx context.Context, id int64) (*model.Customer, error) {
			return testCustomer(), nil
		},
	}
	leases := &mockLeaseStore{
		countActiveFunc: func(ctx context.Context, tx pgx.Tx, officeID int64) (int, error) {
			return 1, nil
		},
	}
	notifier := &mockNotifier{}

	s := newLeaseService(offices, leases, customers, notifier)

	_, err := s.BookLease(context.Background(), 1, 10, time.Now(), 1, 1, false)

	assert.ErrorIs(t, err, apperr.ErrNoRoomsAvailable)
	assert.Empty(t, customers.debits)
	assert.Empty(t, notifier.sent)
}

func TestBookLeaseLastRoomConcurrent(t *testing.T) {
	// Два одновременных бронирования последней комнаты: пересчёт занятости
	// и вставка аренды сериализуются транзакцией, поэтому проходит ровно
	// одно, второе получает ErrNoRoomsAvailable
	office := testOffice()
	office.MaxRoomCount = 1

	offices := &mockOfficeStore{
		getByIDForUpdateFunc: func(ctx context.Context, tx pgx.Tx, id int64) (*model.Office, error) {
			return office, nil
		},
	}
	customers := &mockCustomerStore{
		getByIDFunc: func(ctx context.Context, id int64) (*model.Customer, error) {
			return testCustomer(), nil
		},
	}

	// Счётчик активных аренд меняется только внутри транзакции,
	// вторая транзакция видит вставку первой
	active := 0
	leases := &mockLeaseStore{
		countActiveFunc: func(ctx context.Context, tx pgx.Tx, officeID int64) (int, error) {
			return active, nil
		},
		createFunc: func(ctx context.Context, tx pgx.Tx, lease *model.Lease) error {
			active++
			return nil
		},
	}

	s := NewLeaseService(&serialTxRunner{}, offices, leases, customers, &mockNotifier{}, zap.NewNop())

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	errs := make([]error, 2)

	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.BookLease(context.Background(), 1, 10, start, 1, 1, false)
		}(i)
	}
	wg.Wait()

	var succeeded, noRooms int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, apperr.ErrNoRoomsAvailable):
			noRooms++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, noRooms)

	// Поинты списаны один раз - только победившим бронированием
	assert.Len(t, customers.debits, 1)
}

func TestBookLeaseDebitRace(t *testing.T) {
	// Баланс прошёл раннюю проверку, но условное списание не затронуло
	// ни одной строки - конкурентное бронирование того же клиента
	office := testOffice()

	offices := &mockOfficeStore{
		getByIDForUpdateFunc: func(ctx context.Context, tx pgx.Tx, id int64) (*model.Office, error) {
			return office, nil
		},
	}
	customers := &mockCustomerStore{
		getByIDFunc: func(ctx context.Context, id int64) (*model.Customer, error) {
			return testCustomer(), nil
		},
		debitFunc: func(ctx context.Context, tx pgx.Tx, id int64, amount int64) (bool, error) {
			return false, nil
		},
	}
	leases := &mockLeaseStore{}

	s := newLeaseService(offices, leases, customers, &mockNotifier{})

	_, err := s.BookLease(context.Background(), 1, 10, time.Now(), 1, 4, false)

	assert.ErrorIs(t, err, apperr.ErrInsufficientPoints)
	assert.Empty(t, leases.createdLeases)
}

func TestBookLeaseOfficeNotFound(t *testing.T) {
	customers := &mockCustomerStore{
		getByIDFunc: func(ctx context.Context, id int64) (*model.Customer, error) {
			return testCustomer(), nil
		},
	}

	s := newLeaseService(&mockOfficeStore{}, &mockLeaseStore{}, customers, &mockNotifier{})

	_, err := s.BookLease(context.Background(), 1, 10, time.Now(), 1, 4, false)

	assert.ErrorIs(t, err, apperr.ErrOfficeNotFound)
}

func TestAcceptLease(t *testing.T) {
	office := testOffice()
	lease := &model.Lease{ID: 7, OfficeID: 10, CustomerID: 1, Status: model.LeaseStatusAwait}

	offices := &mockOfficeStore{
		getByIDFunc: func(ctx context.Context, id int64) (*model.Office, error) {
			return office, nil
		},
	}
	leases := &mockLeaseStore{
		getForUpdateFunc: func(ctx context.Context, tx pgx.Tx, id int64) (*model.Lease, error) {
			return lease, nil
		},
	}
	notifier := &mockNotifier{}

	s := newLeaseService(offices, leases, &mockCustomerStore{}, notifier)

	err := s.AcceptLease(context.Background(), 3, 7)

	require.NoError(t, err)
	assert.Equal(t, model.LeaseStatusProceeding, leases.statusTransitions[7])

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "customer:1", notifier.sent[0].userKey)
	assert.Equal(t, model.NotificationTypeLeaseAccepted, notifier.sent[0].typ)
}

func TestAcceptLeaseWrongOwner(t *testing.T) {
	office := testOffice()
	lease := &model.Lease{ID: 7, OfficeID: 10, CustomerID: 1, Status: model.LeaseStatusAwait}

	offices := &mockOfficeStore{
		getByIDFunc: func(ctx context.Context, id int64) (*model.Office, error) {
			return office, nil
		},
	}
	leases := &mockLeaseStore{
		getForUpdateFunc: func(ctx context.Context, tx pgx.Tx, id int64) (*model.Lease, error) {
			return lease, nil
		},
	}

	s := newLeaseService(offices, leases, &mockCustomerStore{}, &mockNotifier{})

	err := s.AcceptLease(context.Background(), 99, 7)

	assert.ErrorIs(t, err, apperr.ErrOfficeNotOwned)
	assert.Empty(t, leases.statusTransitions)
}

func TestAcceptLeaseNotAwait(t *testing.T) {
	office := testOffice()
	lease := &model.Lease{ID: 7, OfficeID: 10, CustomerID: 1, Status: model.LeaseStatusProceeding}

	offices := &mockOfficeStore{
		getByIDFunc: func(ctx context.Context, id int64) (*model.Office, error) {
			return office, nil
		},
	}
	leases := &mockLeaseStore{
		getForUpdateFunc: func(ctx context.Context, tx pgx.Tx, id int64) (*model.Lease, error) {
			return lease, nil
		},
	}

	s := newLeaseService(offices, leases, &mockCustomerStore{}, &mockNotifier{})

	err := s.AcceptLease(context.Background(), 3, 7)

	assert.ErrorIs(t, err, apperr.ErrLeaseNotAwait)
}

func TestRejectLeaseRefundsPoints(t *testing.T) {
	office := testOffice()
	lease := &model.Lease{ID: 7, OfficeID: 10, CustomerID: 1, Price: 500000, Status: model.LeaseStatusAwait}

	offices := &mockOfficeStore{
		getByIDFunc: func(ctx context.Context, id int64) (*model.Office, error) {
			return office, nil
		},
	}
	leases := &mockLeaseStore{
		getForUpdateFunc: func(ctx context.Context, tx pgx.Tx, id int64) (*model.Lease, error) {
			return lease, nil
		},
	}
	customers := &mockCustomerStore{}
	notifier := &mockNotifier{}

	s := newLeaseService(offices, leases, customers, notifier)

	err := s.RejectLease(context.Background(), 3, 7)

	require.NoError(t, err)
	assert.Equal(t, model.LeaseStatusRejected, leases.statusTransitions[7])

	// Списанные при бронировании поинты вернулись
	require.Len(t, customers.refunds, 1)
	assert.Equal(t, int64(500000), customers.refunds[0])

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, model.NotificationTypeLeaseRejected, notifier.sent[0].typ)
}

func TestGetLease(t *testing.T) {
	leases := &mockLeaseStore{
		getByIDFunc: func(ctx context.Context, id int64) (*model.Lease, error) {
			return &model.Lease{ID: 7, OfficeID: 10, CustomerID: 1, Status: model.LeaseStatusProceeding}, nil
		},
	}

	s := newLeaseService(&mockOfficeStore{}, leases, &mockCustomerStore{}, &mockNotifier{})

	lease, err := s.GetLease(context.Background(), 1, 7)

	require.NoError(t, err)
	assert.Equal(t, int64(7), lease.ID)
	assert.True(t, lease.IsActive())
}

func TestGetLeaseNotFound(t *testing.T) {
	s := newLeaseService(&mockOfficeStore{}, &mockLeaseStore{}, &mockCustomerStore{}, &mockNotifier{})

	_, err := s.GetLease(context.Background(), 1, 7)

	assert.ErrorIs(t, err, apperr.ErrLeaseNotFound)
}

func TestGetLeaseForeignCustomer(t *testing.T) {
	leases := &mockLeaseStore{
		getByIDFunc: func(ctx context.Context, id int64) (*model.Lease, error) {
			return &model.Lease{ID: 7, OfficeID: 10, CustomerID: 1, Status: model.LeaseStatusAwait}, nil
		},
	}

	s := newLeaseService(&mockOfficeStore{}, leases, &mockCustomerStore{}, &mockNotifier{})

	_, err := s.GetLease(context.Background(), 99, 7)

	assert.ErrorIs(t, err, apperr.ErrLeaseOwnerMismatch)
}

func TestGetLeaseListUnknownCustomer(t *testing.T) {
	s := newLeaseService(&mockOfficeStore{}, &mockLeaseStore{}, &mockCustomerStore{}, &mockNotifier{})

	_, err := s.GetLeaseList(context.Background(), 42, 20, 0)

	assert.ErrorIs(t, err, apperr.ErrCustomerNotFound)
}

func TestExpireLeasesEndingBefore(t *testing.T) {
	var gotCutoff time.Time
	leases := &mockLeaseStore{
		expireFunc: func(ctx context.Context, cutoff time.Time) (int64, error) {
			gotCutoff = cutoff
			return 4, nil
		},
	}

	s := newLeaseService(&mockOfficeStore{}, leases, &mockCustomerStore{}, &mockNotifier{})

	cutoff := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	count, err := s.ExpireLeasesEndingBefore(context.Background(), cutoff)

	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
	assert.Equal(t, cutoff, gotCutoff)
}
