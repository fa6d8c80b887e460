package renew

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/skylink-telecom/backoffice/internal/http/middlewarectx"
	"github.com/skylink-telecom/backoffice/internal/models"
	"github.com/skylink-telecom/backoffice/internal/storage/repository"
)

// MockService реализует интерфейс renew.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Get(ctx context.Context, id int) (*models.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *MockService) Renew(ctx context.Context, id int) (*models.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func TestRenewHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		id             string
		userUID        string
		role           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "успешное возобновление своей подписки",
			id:      "123",
			userUID: "uid-1",
			role:    models.RoleCustomer,
			setupMock: func(m *MockService) {
				m.On("Get", mock.Anything, 123).
					Return(&models.Subscription{ID: 123, UserUID: "uid-1", Status: models.StatusExpired}, nil)
				m.On("Renew", mock.Anything, 123).Return(&models.Subscription{
					ID:        123,
					UserUID:   "uid-1",
					StartDate: now,
					EndDate:   now.AddDate(0, 0, 30),
					Status:    models.StatusActive,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"active"`,
		},
		{
			name:           "некорректный id",
			id:             "abc",
			userUID:        "uid-1",
			role:           models.RoleCustomer,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"failed to decode id from url"`,
		},
		{
			name:           "пользователь не авторизован",
			id:             "123",
			userUID:        "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"unauthorized"`,
		},
		{
			name:    "чужая подписка запрещена",
			id:      "42",
			userUID: "uid-1",
			role:    models.RoleCustomer,
			setupMock: func(m *MockService) {
				m.On("Get", mock.Anything, 42).
					Return(&models.Subscription{ID: 42, UserUID: "uid-2"}, nil)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `"error":"forbidden"`,
		},
		{
			name:    "администратор возобновляет чужую подписку",
			id:      "42",
			userUID: "admin-uid",
			role:    models.RoleAdmin,
			setupMock: func(m *MockService) {
				m.On("Get", mock.Anything, 42).
					Return(&models.Subscription{ID: 42, UserUID: "uid-2", Status: models.StatusExpired}, nil)
				m.On("Renew", mock.Anything, 42).Return(&models.Subscription{
					ID:        42,
					UserUID:   "uid-2",
					StartDate: now,
					EndDate:   now.AddDate(0, 0, 30),
					Status:    models.StatusActive,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"active"`,
		},
		{
			name:    "подписка не найдена",
			id:      "99",
			userUID: "uid-1",
			role:    models.RoleCustomer,
			setupMock: func(m *MockService) {
				m.On("Get", mock.Anything, 99).
					Return(nil, repository.ErrSubscriptionNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"subscription not found"`,
		},
		{
			name:    "у пользователя активна другая подписка",
			id:      "7",
			userUID: "uid-1",
			role:    models.RoleCustomer,
			setupMock: func(m *MockService) {
				m.On("Get", mock.Anything, 7).
					Return(&models.Subscription{ID: 7, UserUID: "uid-1", Status: models.StatusExpired}, nil)
				m.On("Renew", mock.Anything, 7).Return(nil, repository.ErrActiveSubscriptionExists)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"error":"user already has an active subscription"`,
		},
		{
			name:    "ошибка сервиса",
			id:      "7",
			userUID: "uid-1",
			role:    models.RoleCustomer,
			setupMock: func(m *MockService) {
				m.On("Get", mock.Anything, 7).
					Return(&models.Subscription{ID: 7, UserUID: "uid-1"}, nil)
				m.On("Renew", mock.Anything, 7).Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not renew subscription"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/subscriptions/"+tt.id+"/renew", nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			if tt.userUID != "" {
				ctx = context.WithValue(ctx, middlewarectx.UserUID, tt.userUID)
				ctx = context.WithValue(ctx, middlewarectx.Role, tt.role)
			}
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
