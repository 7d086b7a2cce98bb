package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/officefinder/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LeaseRepository struct {
	pool *pgxpool.Pool
}

func NewLeaseRepository(pool *pgxpool.Pool) *LeaseRepository {
	return &LeaseRepository{pool: pool}
}

// CreateTx создаёт новую аренду внутри транзакции бронирования
func (r *LeaseRepository) CreateTx(ctx context.Context, tx pgx.Tx, lease *model.Lease) error {
	query := `
		INSERT INTO leases (office_id, customer_id, price, start_date, end_date, monthly_pay, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := tx.QueryRow(
		ctx, query,
		lease.OfficeID,
		lease.CustomerID,
		lease.Price,
		lease.StartDate,
		lease.EndDate,
		lease.MonthlyPay,
		lease.Status,
	).Scan(&lease.ID, &lease.CreatedAt)

	if err != nil {
		return fmt.Errorf("create lease: %w", err)
	}

	return nil
}

// GetByID получает аренду по ID
func (r *LeaseRepository) GetByID(ctx context.Context, id int64) (*model.Lease, error) {
	query := `
		SELECT id, office_id, customer_id, price, start_date, end_date, monthly_pay, status, created_at
		FROM leases
		WHERE id = $1
	`

	var lease model.Lease
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&lease.ID,
		&lease.OfficeID,
		&lease.CustomerID,
		&lease.Price,
		&lease.StartDate,
		&lease.EndDate,
		&lease.MonthlyPay,
		&lease.Status,
		&lease.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get lease by id: %w", err)
	}

	return &lease, nil
}

// GetByIDForUpdate получает аренду по ID с блокировкой строки.
// Переходы статуса (подтверждение, отклонение, отзыв) выполняются под ней,
// чтобы один и тот же переход не сработал дважды.
func (r *LeaseRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*model.Lease, error) {
	query := `
		SELECT id, office_id, customer_id, price, start_date, end_date, monthly_pay, status, created_at
		FROM leases
		WHERE id = $1
		FOR UPDATE
	`

	var lease model.Lease
	err := tx.QueryRow(ctx, query, id).Scan(
		&lease.ID,
		&lease.OfficeID,
		&lease.CustomerID,
		&lease.Price,
		&lease.StartDate,
		&lease.EndDate,
		&lease.MonthlyPay,
		&lease.Status,
		&lease.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get lease for update: %w", err)
	}

	return &lease, nil
}

// CountActiveTx считает аренды офиса, занимающие комнаты (AWAIT и PROCEEDING).
// Вызывается под блокировкой строки офиса внутри транзакции бронирования.
func (r *LeaseRepository) CountActiveTx(ctx context.Context, tx pgx.Tx, officeID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM leases
		WHERE office_id = $1 AND status IN ($2, $3)
	`

	var count int
	err := tx.QueryRow(ctx, query, officeID, model.LeaseStatusAwait, model.LeaseStatusProceeding).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active leases: %w", err)
	}

	return count, nil
}

// UpdateStatusTx обновляет статус аренды внутри транзакции
func (r *LeaseRepository) UpdateStatusTx(ctx context.Context, tx pgx.Tx, id int64, status model.LeaseStatus) error {
	query := `
		UPDATE leases
		SET status = $1
		WHERE id = $2
	`

	result, err := tx.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update lease status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("lease not found")
	}

	return nil
}

// GetByCustomerID получает аренды клиента постранично, новые сверху
func (r *LeaseRepository) GetByCustomerID(ctx context.Context, customerID int64, limit, offset int) ([]*model.Lease, error) {
	query := `
		SELECT id, office_id, customer_id, price, start_date, end_date, monthly_pay, status, created_at
		FROM leases
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, customerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("get leases by customer: %w", err)
	}
	defer rows.Close()

	var leases []*model.Lease
	for rows.Next() {
		var lease model.Lease
		err := rows.Scan(
			&lease.ID,
			&lease.OfficeID,
			&lease.CustomerID,
			&lease.Price,
			&lease.StartDate,
			&lease.EndDate,
			&lease.MonthlyPay,
			&lease.Status,
			&lease.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan lease: %w", err)
		}
		leases = append(leases, &lease)
	}

	return leases, nil
}

// GetByOfficeID получает аренды офиса постранично, новые сверху
func (r *LeaseRepository) GetByOfficeID(ctx context.Context, officeID int64, limit, offset int) ([]*model.Lease, error) {
	query := `
		SELECT id, office_id, customer_id, price, start_date, end_date, monthly_pay, status, created_at
		FROM leases
		WHERE office_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, officeID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("get leases by office: %w", err)
	}
	defer rows.Close()

	var leases []*model.Lease
	for rows.Next() {
		var lease model.Lease
		err := rows.Scan(
			&lease.ID,
			&lease.OfficeID,
			&lease.CustomerID,
			&lease.Price,
			&lease.StartDate,
			&lease.EndDate,
			&lease.MonthlyPay,
			&lease.Status,
			&lease.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan lease: %w", err)
		}
		leases = append(leases, &lease)
	}

	return leases, nil
}

// ExpireEndingBefore переводит в EXPIRED все активные аренды,
// закончившиеся до cutoff. Идемпотентно: уже завершённые и REVIEWED
// записи не выбираются, повторный вызов затрагивает ноль строк.
func (r *LeaseRepository) ExpireEndingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE leases
		SET status = $1
		WHERE status IN ($2, $3) AND end_date < $4
	`

	result, err := r.pool.Exec(ctx, query,
		model.LeaseStatusExpired,
		model.LeaseStatusAwait,
		model.LeaseStatusProceeding,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("expire leases: %w", err)
	}

	return result.RowsAffected(), nil
}
