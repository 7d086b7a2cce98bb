package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/officefinder/internal/lock"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// RatingAggregator ведёт счётчики рейтинга офиса: количество отзывов и сумму
// оценок. Среднее нигде не хранится и считается при чтении
// (model.Office.AverageRate). Оба счётчика только растут.
type RatingAggregator struct {
	locker     OfficeLocker
	ratingRepo OfficeRatingStore
	logger     *zap.Logger
}

func NewRatingAggregator(locker OfficeLocker, ratingRepo OfficeRatingStore, logger *zap.Logger) *RatingAggregator {
	return &RatingAggregator{
		locker:     locker,
		ratingRepo: ratingRepo,
		logger:     logger,
	}
}

// Increment добавляет оценку к счётчикам офиса.
// Чтение-изменение-запись выполняется под advisory-блокировкой офиса -
// она единственный мутатор этих полей, поэтому конкурентные отзывы
// на один офис сериализуются, а на разные офисы идут независимо.
// Если блокировку не удалось взять за время ожидания, обновление
// пропускается: отзыв уже сохранён, потеря одной оценки в счётчиках
// допустима. Отмена контекста - ошибка текущего запроса.
func (a *RatingAggregator) Increment(ctx context.Context, officeID int64, rate int) error {
	err := a.locker.WithOfficeLock(ctx, officeID, func(tx pgx.Tx) error {
		reviewCount, totalRate, err := a.ratingRepo.GetRatingTx(ctx, tx, officeID)
		if err != nil {
			return err
		}

		return a.ratingRepo.SetRatingTx(ctx, tx, officeID, reviewCount+1, totalRate+int64(rate))
	})

	if errors.Is(err, lock.ErrNotAcquired) {
		a.logger.Warn("Office rating lock not acquired, update skipped",
			zap.Int64("office_id", officeID),
			zap.Int("rate", rate),
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("update office rating: %w", err)
	}

	return nil
}
