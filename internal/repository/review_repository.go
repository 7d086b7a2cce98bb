package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/officefinder/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReviewRepository struct {
	pool *pgxpool.Pool
}

func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// CreateTx создаёт отзыв в одной транзакции с переходом аренды в REVIEWED
func (r *ReviewRepository) CreateTx(ctx context.Context, tx pgx.Tx, review *model.Review) error {
	query := `
		INSERT INTO reviews (lease_id, customer_id, office_id, rate, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := tx.QueryRow(
		ctx, query,
		review.LeaseID,
		review.CustomerID,
		review.OfficeID,
		review.Rate,
		review.Description,
	).Scan(&review.ID, &review.CreatedAt)

	if err != nil {
		return fmt.Errorf("create review: %w", err)
	}

	return nil
}

// GetByID получает отзыв по ID
func (r *ReviewRepository) GetByID(ctx context.Context, id int64) (*model.Review, error) {
	query := `
		SELECT id, lease_id, customer_id, office_id, rate, description, created_at
		FROM reviews
		WHERE id = $1
	`

	var review model.Review
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&review.ID,
		&review.LeaseID,
		&review.CustomerID,
		&review.OfficeID,
		&review.Rate,
		&review.Description,
		&review.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get review by id: %w", err)
	}

	return &review, nil
}

// Update обновляет оценку и текст отзыва
func (r *ReviewRepository) Update(ctx context.Context, id int64, rate int, description string) error {
	query := `
		UPDATE reviews
		SET rate = $1, description = $2
		WHERE id = $3
	`

	result, err := r.pool.Exec(ctx, query, rate, description, id)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("review not found")
	}

	return nil
}

// Delete удаляет отзыв
func (r *ReviewRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM reviews WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("review not found")
	}

	return nil
}

// GetByCustomerID получает отзывы клиента постранично, новые сверху
func (r *ReviewRepository) GetByCustomerID(ctx context.Context, customerID int64, limit, offset int) ([]*model.Review, error) {
	query := `
		SELECT id, lease_id, customer_id, office_id, rate, description, created_at
		FROM reviews
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, customerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("get reviews by customer: %w", err)
	}
	defer rows.Close()

	return scanReviews(rows)
}

// GetByOfficeID получает отзывы об офисе постранично, новые сверху
func (r *ReviewRepository) GetByOfficeID(ctx context.Context, officeID int64, limit, offset int) ([]*model.Review, error) {
	query := `
		SELECT id, lease_id, customer_id, office_id, rate, description, created_at
		FROM reviews
		WHERE office_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, officeID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("get reviews by office: %w", err)
	}
	defer rows.Close()

	return scanReviews(rows)
}

// GetTopByOfficeID получает n последних отзывов об офисе для витрины
func (r *ReviewRepository) GetTopByOfficeID(ctx context.Context, officeID int64, n int) ([]*model.Review, error) {
	query := `
		SELECT id, lease_id, customer_id, office_id, rate, description, created_at
		FROM reviews
		WHERE office_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, officeID, n)
	if err != nil {
		return nil, fmt.Errorf("get top reviews by office: %w", err)
	}
	defer rows.Close()

	return scanReviews(rows)
}

func scanReviews(rows pgx.Rows) ([]*model.Review, error) {
	var reviews []*model.Review
	for rows.Next() {
		var review model.Review
		err := rows.Scan(
			&review.ID,
			&review.LeaseID,
			&review.CustomerID,
			&review.OfficeID,
			&review.Rate,
			&review.Description,
			&review.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, &review)
	}

	return reviews, nil
}
