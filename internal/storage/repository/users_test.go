package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skylink-telecom/backoffice/internal/models"
)

func TestRegisterUser(t *testing.T) {
	user := models.User{
		Name:         "Test User",
		Email:        "test@example.com",
		MobileNumber: "+79161234567",
		PasswordHash: "hash",
		Role:         models.RoleCustomer,
		Active:       true,
	}

	t.Run("success", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		mock.ExpectQuery("INSERT INTO users").
			WithArgs(user.Name, user.Email, user.MobileNumber, user.PasswordHash, user.Role).
			WillReturnRows(sqlmock.NewRows([]string{"uid"}).AddRow("new-uid"))

		uid, err := storage.RegisterUser(context.Background(), user)

		require.NoError(t, err)
		assert.Equal(t, "new-uid", uid)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		mock.ExpectQuery("INSERT INTO users").
			WithArgs(user.Name, user.Email, user.MobileNumber, user.PasswordHash, user.Role).
			WillReturnError(uniqueViolation())

		_, err := storage.RegisterUser(context.Background(), user)

		assert.ErrorIs(t, err, ErrUserAlreadyExists)
	})
}

func TestGetUserByEmail(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	columns := []string{"uid", "name", "email", "mobile_number", "password_hash", "role", "active", "created_at", "updated_at"}

	t.Run("success", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		mock.ExpectQuery("SELECT (.+) FROM users").
			WithArgs("test@example.com").
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow("uid-1", "Test User", "test@example.com", "+79161234567", "hash", "customer", true, now, now))

		u, err := storage.GetUserByEmail(context.Background(), "test@example.com")

		require.NoError(t, err)
		assert.Equal(t, "uid-1", u.UID)
		assert.Equal(t, models.RoleCustomer, u.Role)
	})

	t.Run("not found", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		mock.ExpectQuery("SELECT (.+) FROM users").
			WithArgs("missing@example.com").
			WillReturnRows(sqlmock.NewRows(columns))

		_, err := storage.GetUserByEmail(context.Background(), "missing@example.com")

		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestUserExists(t *testing.T) {
	storage, mock := newMockStorage(t)
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("uid-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := storage.UserExists(context.Background(), "uid-1")

	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPlan(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	columns := []string{"id", "name", "description", "price", "duration_in_days", "data_limit_gb", "speed_mbps", "active", "created_at", "updated_at"}

	t.Run("success", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		mock.ExpectQuery("SELECT (.+) FROM plans").
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(1, "Basic", "Starter plan", 49900, 30, 50, 100, true, now, now))

		p, err := storage.GetPlan(context.Background(), 1)

		require.NoError(t, err)
		assert.Equal(t, "Basic", p.Name)
		assert.Equal(t, 30, p.DurationInDays)
	})

	t.Run("not found", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		mock.ExpectQuery("SELECT (.+) FROM plans").
			WithArgs(99).
			WillReturnRows(sqlmock.NewRows(columns))

		_, err := storage.GetPlan(context.Background(), 99)

		assert.ErrorIs(t, err, ErrPlanNotFound)
	})
}
