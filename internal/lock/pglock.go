// Package lock реализует именованные advisory-блокировки поверх PostgreSQL.
// Блокировка кооперативная: она не связана с блокировками строк и работает
// только между участниками, которые сами её берут.
package lock

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ErrNotAcquired блокировку не удалось взять за отведённое время ожидания
var ErrNotAcquired = errors.New("advisory lock not acquired")

// Пространство ключей для блокировок рейтинга офисов,
// чтобы не пересекаться с другими advisory-блокировками в той же базе
const officeRatingLockSpace = "office_rating"

// SQLSTATE lock_not_available - сработал lock_timeout
const lockNotAvailableCode = "55P03"

// PGLocker выдаёт advisory-блокировки с ограниченным ожиданием и удержанием
type PGLocker struct {
	pool   *pgxpool.Pool
	wait   time.Duration // Сколько ждём блокировку, дальше ErrNotAcquired
	hold   time.Duration // Сколько максимум держим блокировку
	logger *zap.Logger
}

// NewPGLocker создаёт новый клиент advisory-блокировок
func NewPGLocker(pool *pgxpool.Pool, wait, hold time.Duration, logger *zap.Logger) *PGLocker {
	return &PGLocker{
		pool:   pool,
		wait:   wait,
		hold:   hold,
		logger: logger,
	}
}

// officeLockKey сворачивает пространство и ID офиса в 64-битный ключ
// advisory-блокировки. ID не усекается, офисы с любыми ID получают
// разные ключи в пределах разрядности хеша.
func officeLockKey(officeID int64) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s:%d", officeRatingLockSpace, officeID)
	return int64(h.Sum64())
}

// WithOfficeLock выполняет fn в транзакции под advisory-блокировкой офиса.
// Блокировка привязана к транзакции и снимается при коммите или откате.
// Если блокировку не удалось взять за время ожидания - ErrNotAcquired,
// fn не вызывается. Отмена контекста возвращается как есть.
func (l *PGLocker) WithOfficeLock(ctx context.Context, officeID int64, fn func(tx pgx.Tx) error) error {
	// Ограничиваем время удержания: вся транзакция под блокировкой
	// обязана уложиться в hold
	ctx, cancel := context.WithTimeout(ctx, l.hold)
	defer cancel()

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin lock transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// lock_timeout действует только внутри этой транзакции
	_, err = tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", l.wait.Milliseconds()))
	if err != nil {
		return fmt.Errorf("set lock timeout: %w", err)
	}

	_, err = tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", officeLockKey(officeID))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == lockNotAvailableCode {
			return ErrNotAcquired
		}
		if ctx.Err() != nil {
			return fmt.Errorf("acquire advisory lock: %w", ctx.Err())
		}
		return fmt.Errorf("acquire advisory lock: %w", err)
	}

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit lock transaction: %w", err)
	}

	return nil
}
