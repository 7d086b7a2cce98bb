package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrator применяет goose-миграции схемы при старте приложения
type Migrator struct {
	db             *sql.DB
	migrationsPath string
}

// NewMigrator создаёт мигратор поверх общего пула соединений.
// Goose работает только с *sql.DB, поэтому пул оборачивается через stdlib.
func NewMigrator(pool *pgxpool.Pool, migrationsPath string) (*Migrator, error) {
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}

	return &Migrator{
		db:             stdlib.OpenDBFromPool(pool),
		migrationsPath: migrationsPath,
	}, nil
}

// Run применяет все непримененные миграции
func (mg *Migrator) Run(ctx context.Context) error {
	log.Println("Applying database migrations...")

	if err := goose.UpContext(ctx, mg.db, mg.migrationsPath); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	log.Println("Database schema is up to date")
	return nil
}

// Close закрывает обёртку sql.DB, сам пул остаётся жить
func (mg *Migrator) Close() error {
	if mg.db != nil {
		return mg.db.Close()
	}
	return nil
}
