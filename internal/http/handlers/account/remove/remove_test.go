package remove

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/iptv-panel/internal/access"
	"github.com/magabrotheeeer/iptv-panel/internal/http/middlewarectx"
	"github.com/magabrotheeeer/iptv-panel/internal/models"
	"github.com/magabrotheeeer/iptv-panel/internal/storage"
)

type ControllerMock struct {
	mock.Mock
}

func (m *ControllerMock) DeleteAccount(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func TestAccountRemoveHandler(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		err      error
		wantCode int
		wantBody string
	}{
		{name: "реселлер удален", id: "r1", wantCode: http.StatusOK, wantBody: `"deleted":"r1"`},
		{name: "главный администратор", id: models.PrimaryAdminID, err: fmt.Errorf("op: %w", access.ErrPrimaryAdministrator), wantCode: http.StatusForbidden, wantBody: "primary administrator is protected"},
		{name: "защита шлюза", id: models.PrimaryAdminID, err: fmt.Errorf("op: %w", storage.ErrProtected), wantCode: http.StatusForbidden, wantBody: "primary administrator is protected"},
		{name: "неизвестный", id: "ghost", err: fmt.Errorf("op: %w", access.ErrNotFound), wantCode: http.StatusNotFound, wantBody: "record not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := new(ControllerMock)
			ctrl.On("DeleteAccount", mock.Anything, tt.id).Return(tt.err)

			req := httptest.NewRequest(http.MethodDelete, "/api/v1/accounts/"+tt.id, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			ctx = middlewarectx.WithSession(ctx, "sid", models.Actor{ID: models.PrimaryAdminID, Role: models.RoleAdmin}, ctrl)
			w := httptest.NewRecorder()

			New(slog.New(slog.NewTextHandler(io.Discard, nil))).ServeHTTP(w, req.WithContext(ctx))

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
			ctrl.AssertExpectations(t)
		})
	}
}
