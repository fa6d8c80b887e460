// Package repository реализует хранилище данных на основе PostgreSQL
// для пользователей, тарифных планов и подписок. Инвариант "не более
// одной активной подписки на пользователя" обеспечивается частичным
// уникальным индексом по user_uid для строк со статусом active, поэтому
// проверка и вставка выполняются атомарно на стороне базы.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Ошибки уровня хранилища, на которые опирается бизнес-логика.
var (
	// ErrSubscriptionNotFound — подписка с таким ID не найдена.
	ErrSubscriptionNotFound = errors.New("subscription not found")
	// ErrActiveSubscriptionExists — у пользователя уже есть активная подписка.
	ErrActiveSubscriptionExists = errors.New("user already has an active subscription")
	// ErrUserNotFound — пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrPlanNotFound — тарифный план не найден.
	ErrPlanNotFound = errors.New("plan not found")
	// ErrUserAlreadyExists — пользователь с таким email уже зарегистрирован.
	ErrUserAlreadyExists = errors.New("user already exists")
)

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{DB: db}, nil
}

// CheckDatabaseReady проверяет готовность базы данных.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'subscriptions'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table subscriptions missing or query error: %w", err)
	}
	return nil
}

// isUniqueViolation сообщает, вызвана ли ошибка нарушением уникального
// ограничения (код 23505 в PostgreSQL).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
