package sweep

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/skylink-telecom/backoffice/internal/models"
)

// MockService реализует интерфейс sweep.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) SweepExpired(ctx context.Context) ([]models.ExpiredEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ExpiredEntry), args.Error(1)
}

func TestSweepHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "просроченные подписки переведены",
			setupMock: func(m *MockService) {
				m.On("SweepExpired", mock.Anything).Return([]models.ExpiredEntry{
					{SubscriptionID: 1, UserUID: "user-a"},
					{SubscriptionID: 2, UserUID: "user-b"},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"expired":2`,
		},
		{
			name: "нечего переводить",
			setupMock: func(m *MockService) {
				m.On("SweepExpired", mock.Anything).Return([]models.ExpiredEntry{}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"expired":0`,
		},
		{
			name: "ошибка сервиса",
			setupMock: func(m *MockService) {
				m.On("SweepExpired", mock.Anything).Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not sweep expired subscriptions"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/admin/subscriptions/sweep", nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
