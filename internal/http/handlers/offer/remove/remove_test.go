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
)

type ControllerMock struct {
	mock.Mock
}

func (m *ControllerMock) DeleteOffer(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func TestOfferRemoveHandler(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{name: "удалено", wantCode: http.StatusOK, wantBody: `"deleted":"3"`},
		{name: "реселлер", err: fmt.Errorf("op: %w", access.ErrForbidden), wantCode: http.StatusForbidden, wantBody: `"code":"forbidden"`},
		{name: "нет такого", err: fmt.Errorf("op: %w", access.ErrNotFound), wantCode: http.StatusNotFound, wantBody: `"code":"not_found"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := new(ControllerMock)
			ctrl.On("DeleteOffer", mock.Anything, "3").Return(tt.err)

			req := httptest.NewRequest(http.MethodDelete, "/api/v1/offers/3", nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", "3")
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			ctx = middlewarectx.WithSession(ctx, "sid", models.Actor{ID: "admin", Role: models.RoleAdmin}, ctrl)
			w := httptest.NewRecorder()

			New(slog.New(slog.NewTextHandler(io.Discard, nil))).ServeHTTP(w, req.WithContext(ctx))

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
			ctrl.AssertExpectations(t)
		})
	}
}
