package chat

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/iptv-panel/internal/assistant"
	"github.com/magabrotheeeer/iptv-panel/internal/http/middlewarectx"
	"github.com/magabrotheeeer/iptv-panel/internal/models"
)

type ControllerMock struct {
	mock.Mock
}

func (m *ControllerMock) Snapshot() *models.Snapshot {
	return m.Called().Get(0).(*models.Snapshot)
}

type GeneratorMock struct {
	mock.Mock
}

func (m *GeneratorMock) GenerateResponse(ctx context.Context, prompt string, subs []models.Subscription, offers []models.Offer) (string, error) {
	args := m.Called(ctx, prompt, subs, offers)
	return args.String(0), args.Error(1)
}

func TestChatHandler(t *testing.T) {
	snap := models.Empty()
	snap.Subscriptions = []models.Subscription{{ID: "a", FullName: "Alice", OwnerID: "r1"}}
	snap.Offers = []models.Offer{{ID: "1", Name: "Basic"}}

	tests := []struct {
		name     string
		body     string
		setup    func(*ControllerMock, *GeneratorMock)
		wantCode int
		wantBody string
	}{
		{
			name: "ответ ассистента",
			body: `{"prompt":"who expires soon?"}`,
			setup: func(c *ControllerMock, g *GeneratorMock) {
				c.On("Snapshot").Return(snap)
				g.On("GenerateResponse", mock.Anything, "who expires soon?", snap.Subscriptions, snap.Offers).Return("Alice", nil)
			},
			wantCode: http.StatusOK,
			wantBody: `"reply":"Alice"`,
		},
		{
			name:     "пустой вопрос",
			body:     `{"prompt":""}`,
			setup:    func(_ *ControllerMock, _ *GeneratorMock) {},
			wantCode: http.StatusUnprocessableEntity,
			wantBody: "field Prompt is a required field",
		},
		{
			name: "ключ не настроен",
			body: `{"prompt":"hi"}`,
			setup: func(c *ControllerMock, g *GeneratorMock) {
				c.On("Snapshot").Return(snap)
				g.On("GenerateResponse", mock.Anything, "hi", mock.Anything, mock.Anything).Return("", assistant.ErrNotConfigured)
			},
			wantCode: http.StatusBadGateway,
			wantBody: "assistant is not configured",
		},
		{
			name: "ошибка API",
			body: `{"prompt":"hi"}`,
			setup: func(c *ControllerMock, g *GeneratorMock) {
				c.On("Snapshot").Return(snap)
				g.On("GenerateResponse", mock.Anything, "hi", mock.Anything, mock.Anything).
					Return("", &assistant.APIError{StatusCode: 500, Message: "internal"})
			},
			wantCode: http.StatusBadGateway,
			wantBody: `"code":"assistant_error"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := new(ControllerMock)
			gen := new(GeneratorMock)
			tt.setup(ctrl, gen)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/assistant/chat", bytes.NewBufferString(tt.body))
			req = req.WithContext(middlewarectx.WithSession(req.Context(), "sid", models.Actor{ID: "r1"}, ctrl))
			w := httptest.NewRecorder()

			New(slog.New(slog.NewTextHandler(io.Discard, nil)), gen).ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
			ctrl.AssertExpectations(t)
			gen.AssertExpectations(t)
		})
	}
}
