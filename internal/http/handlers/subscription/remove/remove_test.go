package remove

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/iptv-panel/internal/access"
	"github.com/magabrotheeeer/iptv-panel/internal/http/middlewarectx"
	"github.com/magabrotheeeer/iptv-panel/internal/models"
)

// MockService реализует интерфейс remove.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) DeleteSubscription(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func TestRemoveHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		id             string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное удаление",
			id:   "s1",
			setupMock: func(m *MockService) {
				m.On("DeleteSubscription", mock.Anything, "s1").Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"deleted":"s1"`,
		},
		{
			name:           "пустой id",
			id:             "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid id"}`,
		},
		{
			name: "вне области видимости",
			id:   "foreign",
			setupMock: func(m *MockService) {
				m.On("DeleteSubscription", mock.Anything, "foreign").Return(fmt.Errorf("panel: %w", access.ErrNotFound))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   "record not found",
		},
		{
			name: "ошибка хранилища",
			id:   "s2",
			setupMock: func(m *MockService) {
				m.On("DeleteSubscription", mock.Anything, "s2").Return(errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"request failed"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			req := httptest.NewRequest(http.MethodDelete, "/subscriptions/"+tt.id, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			ctx = middlewarectx.WithSession(ctx, "sid", models.Actor{ID: "r1"}, mockService)
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()
			New(logger).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
