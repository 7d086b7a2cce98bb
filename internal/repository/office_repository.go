package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/officefinder/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OfficeRepository struct {
	pool *pgxpool.Pool
}

func NewOfficeRepository(pool *pgxpool.Pool) *OfficeRepository {
	return &OfficeRepository{pool: pool}
}

// GetByID получает офис по ID
func (r *OfficeRepository) GetByID(ctx context.Context, id int64) (*model.Office, error) {
	query := `
		SELECT id, owner_id, name, address, lease_fee, max_capacity, max_room_count, review_count, total_rate, created_at
		FROM offices
		WHERE id = $1
	`

	var office model.Office
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&office.ID,
		&office.OwnerID,
		&office.Name,
		&office.Address,
		&office.LeaseFee,
		&office.MaxCapacity,
		&office.MaxRoomCount,
		&office.ReviewCount,
		&office.TotalRate,
		&office.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get office by id: %w", err)
	}

	return &office, nil
}

// GetByIDForUpdate получает офис по ID с блокировкой строки до конца транзакции.
// Проверка занятости комнат и вставка аренды выполняются под этой блокировкой,
// поэтому два конкурентных бронирования одного офиса сериализуются.
func (r *OfficeRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*model.Office, error) {
	query := `
		SELECT id, owner_id, name, address, lease_fee, max_capacity, max_room_count, review_count, total_rate, created_at
		FROM offices
		WHERE id = $1
		FOR UPDATE
	`

	var office model.Office
	err := tx.QueryRow(ctx, query, id).Scan(
		&office.ID,
		&office.OwnerID,
		&office.Name,
		&office.Address,
		&office.LeaseFee,
		&office.MaxCapacity,
		&office.MaxRoomCount,
		&office.ReviewCount,
		&office.TotalRate,
		&office.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get office for update: %w", err)
	}

	return &office, nil
}

// GetRatingTx читает счётчики рейтинга внутри транзакции advisory-блокировки
func (r *OfficeRepository) GetRatingTx(ctx context.Context, tx pgx.Tx, id int64) (int64, int64, error) {
	query := `
		SELECT review_count, total_rate
		FROM offices
		WHERE id = $1
	`

	var reviewCount, totalRate int64
	err := tx.QueryRow(ctx, query, id).Scan(&reviewCount, &totalRate)
	if err != nil {
		return 0, 0, fmt.Errorf("get office rating: %w", err)
	}

	return reviewCount, totalRate, nil
}

// SetRatingTx записывает новые значения счётчиков рейтинга.
// Вызывается только под advisory-блокировкой офиса - это единственный
// мутатор полей review_count и total_rate.
func (r *OfficeRepository) SetRatingTx(ctx context.Context, tx pgx.Tx, id int64, reviewCount, totalRate int64) error {
	query := `
		UPDATE offices
		SET review_count = $1, total_rate = $2
		WHERE id = $3
	`

	result, err := tx.Exec(ctx, query, reviewCount, totalRate, id)
	if err != nil {
		return fmt.Errorf("set office rating: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("office not found")
	}

	return nil
}
