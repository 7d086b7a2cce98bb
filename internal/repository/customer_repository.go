package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/officefinder/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CustomerRepository struct {
	pool *pgxpool.Pool
}

func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// GetByID получает клиента по ID
func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*model.Customer, error) {
	query := `
		SELECT id, name, email, point, created_at
		FROM customers
		WHERE id = $1
	`

	var customer model.Customer
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&customer.ID,
		&customer.Name,
		&customer.Email,
		&customer.Point,
		&customer.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer by id: %w", err)
	}

	return &customer, nil
}

// DebitPointsTx списывает поинты внутри транзакции бронирования.
// Условие point >= amount не даёт уйти в минус: при нехватке баланса
// запрос не затрагивает ни одной строки.
func (r *CustomerRepository) DebitPointsTx(ctx context.Context, tx pgx.Tx, id int64, amount int64) (bool, error) {
	query := `
		UPDATE customers
		SET point = point - $1
		WHERE id = $2 AND point >= $1
	`

	result, err := tx.Exec(ctx, query, amount, id)
	if err != nil {
		return false, fmt.Errorf("debit customer points: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// RefundPointsTx возвращает поинты при отклонении бронирования
func (r *CustomerRepository) RefundPointsTx(ctx context.Context, tx pgx.Tx, id int64, amount int64) error {
	query := `
		UPDATE customers
		SET point = point + $1
		WHERE id = $2
	`

	result, err := tx.Exec(ctx, query, amount, id)
	if err != nil {
		return fmt.Errorf("refund customer points: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("customer not found")
	}

	return nil
}
