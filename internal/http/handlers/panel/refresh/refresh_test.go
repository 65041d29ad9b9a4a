package refresh

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/iptv-panel/internal/http/middlewarectx"
	"github.com/magabrotheeeer/iptv-panel/internal/models"
	"github.com/magabrotheeeer/iptv-panel/internal/services/panel"
)

type ControllerMock struct {
	mock.Mock
}

func (m *ControllerMock) Refresh(ctx context.Context, background bool) error {
	return m.Called(ctx, background).Error(0)
}

func (m *ControllerMock) Status() panel.Status {
	return m.Called().Get(0).(panel.Status)
}

func TestRefreshHandler(t *testing.T) {
	tests := []struct {
		name       string
		refreshErr error
		status     panel.Status
		wantBody   []string
	}{
		{
			name:     "успешное обновление",
			status:   panel.Status{State: panel.StateReady},
			wantBody: []string{`"refreshed":true`, `"state":"ready"`},
		},
		{
			name:       "ошибка чтения",
			refreshErr: errors.New("timeout"),
			status:     panel.Status{State: panel.StateReady, LastError: "timeout"},
			wantBody:   []string{`"refreshed":false`, `"last_error":"timeout"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := new(ControllerMock)
			ctrl.On("Refresh", mock.Anything, false).Return(tt.refreshErr)
			ctrl.On("Status").Return(tt.status)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/refresh", nil)
			req = req.WithContext(middlewarectx.WithSession(req.Context(), "sid", models.Actor{ID: "r1"}, ctrl))
			w := httptest.NewRecorder()

			New(slog.New(slog.NewTextHandler(io.Discard, nil))).ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			for _, s := range tt.wantBody {
				assert.Contains(t, w.Body.String(), s)
			}
			ctrl.AssertExpectations(t)
		})
	}
}
