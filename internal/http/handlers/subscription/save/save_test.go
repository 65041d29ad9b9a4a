package save

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/iptv-panel/internal/access"
	"github.com/magabrotheeeer/iptv-panel/internal/http/middlewarectx"
	"github.com/magabrotheeeer/iptv-panel/internal/models"
)

type ControllerMock struct {
	mock.Mock
}

func (m *ControllerMock) Snapshot() *models.Snapshot {
	return m.Called().Get(0).(*models.Snapshot)
}

func (m *ControllerMock) SaveSubscription(ctx context.Context, d access.Draft) (models.Subscription, error) {
	args := m.Called(ctx, d)
	return args.Get(0).(models.Subscription), args.Error(1)
}

func offersSnapshot() *models.Snapshot {
	snap := models.Empty()
	snap.Offers = []models.Offer{{ID: "1", Name: "Basic", Price: 10, DurationMonths: 1, MaxConnections: 1}}
	return snap
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSaveHandler(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		id             string
		body           string
		setup          func(*ControllerMock)
		wantStatusCode int
		wantBody       string
	}{
		{
			name:   "создание с расчетом даты окончания",
			method: http.MethodPost,
			body:   `{"full_name":"Alice","email":"alice@example.com","offer_id":"1","start_date":"2024-01-31","status":"active"}`,
			setup: func(m *ControllerMock) {
				m.On("SaveSubscription", mock.Anything, mock.MatchedBy(func(d access.Draft) bool {
					return d.ID == "" && d.OfferID == "1" && !d.EndOverridden &&
						d.StartDate.Equal(date(2024, 1, 31)) && d.EndDate.Equal(date(2024, 3, 2))
				})).Return(models.Subscription{ID: "new-id", OwnerID: "r1"}, nil)
			},
			wantStatusCode: http.StatusOK,
			wantBody:       `"id":"new-id"`,
		},
		{
			name:   "изменение с явной датой окончания",
			method: http.MethodPut,
			id:     "s1",
			body:   `{"full_name":"Alice","email":"alice@example.com","offer_id":"1","start_date":"2024-01-01","end_date":"2024-06-30","status":"active"}`,
			setup: func(m *ControllerMock) {
				m.On("SaveSubscription", mock.Anything, mock.MatchedBy(func(d access.Draft) bool {
					return d.ID == "s1" && d.EndOverridden && d.EndDate.Equal(date(2024, 6, 30))
				})).Return(models.Subscription{ID: "s1"}, nil)
			},
			wantStatusCode: http.StatusOK,
			wantBody:       `"id":"s1"`,
		},
		{
			name:   "чужая подписка",
			method: http.MethodPut,
			id:     "foreign",
			body:   `{"full_name":"X","email":"x@example.com","offer_id":"1","start_date":"2024-01-01","status":"active"}`,
			setup: func(m *ControllerMock) {
				m.On("SaveSubscription", mock.Anything, mock.Anything).
					Return(models.Subscription{}, fmt.Errorf("panel: %w", access.ErrNotFound))
			},
			wantStatusCode: http.StatusNotFound,
			wantBody:       "record not found",
		},
		{
			name:   "неизвестное предложение",
			method: http.MethodPost,
			body:   `{"full_name":"X","email":"x@example.com","offer_id":"99","start_date":"2024-01-01","status":"active"}`,
			setup: func(m *ControllerMock) {
				m.On("SaveSubscription", mock.Anything, mock.MatchedBy(func(d access.Draft) bool {
					return d.OfferID == "99" && d.EndDate.IsZero()
				})).Return(models.Subscription{}, fmt.Errorf("op: %w: %w", access.ErrInvalid, access.ErrUnknownOffer))
			},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantBody:       "unknown offer",
		},
		{
			name:   "хранилище отклонило запись",
			method: http.MethodPost,
			body:   `{"full_name":"X","email":"x@example.com","offer_id":"1","start_date":"2024-01-01","status":"active"}`,
			setup: func(m *ControllerMock) {
				m.On("SaveSubscription", mock.Anything, mock.Anything).Return(models.Subscription{}, errors.New("duplicate key"))
			},
			wantStatusCode: http.StatusInternalServerError,
			wantBody:       "request failed",
		},
		{
			name:           "некорректный JSON",
			method:         http.MethodPost,
			body:           `{`,
			setup:          func(_ *ControllerMock) {},
			wantStatusCode: http.StatusBadRequest,
			wantBody:       "invalid request body",
		},
		{
			name:           "некорректная дата",
			method:         http.MethodPost,
			body:           `{"full_name":"X","email":"x@example.com","offer_id":"1","start_date":"15.01.2024","status":"active"}`,
			setup:          func(_ *ControllerMock) {},
			wantStatusCode: http.StatusBadRequest,
			wantBody:       "invalid start_date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := new(ControllerMock)
			ctrl.On("Snapshot").Return(offersSnapshot()).Maybe()
			tt.setup(ctrl)

			req := httptest.NewRequest(tt.method, "/api/v1/subscriptions", bytes.NewBufferString(tt.body))
			rctx := chi.NewRouteContext()
			if tt.id != "" {
				rctx.URLParams.Add("id", tt.id)
			}
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			ctx = middlewarectx.WithSession(ctx, "sid", models.Actor{ID: "r1", Role: models.RoleReseller}, ctrl)
			req = req.WithContext(ctx)
			w := httptest.NewRecorder()

			New(slog.New(slog.NewTextHandler(io.Discard, nil))).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatusCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
			ctrl.AssertExpectations(t)
		})
	}
}

func TestBuildDraft_ExplicitEndWinsOverOffer(t *testing.T) {
	d, err := buildDraft("", Request{OfferID: "1", StartDate: "2024-01-01", EndDate: "2024-01-20T00:00:00Z"}, offersSnapshot().Offers)
	require.NoError(t, err)

	assert.True(t, d.EndOverridden)
	assert.True(t, d.EndDate.Equal(date(2024, 1, 20)))
}

func TestBuildDraft_NoDates(t *testing.T) {
	d, err := buildDraft("s1", Request{OfferID: "1"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "s1", d.ID)
	assert.True(t, d.StartDate.IsZero())
	assert.False(t, d.EndOverridden)
}
