package snapshot

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/iptv-panel/internal/http/middlewarectx"
	"github.com/magabrotheeeer/iptv-panel/internal/models"
	"github.com/magabrotheeeer/iptv-panel/internal/services/panel"
)

type ControllerMock struct {
	mock.Mock
}

func (m *ControllerMock) Snapshot() *models.Snapshot {
	return m.Called().Get(0).(*models.Snapshot)
}

func (m *ControllerMock) Status() panel.Status {
	return m.Called().Get(0).(panel.Status)
}

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func fixture() *models.Snapshot {
	snap := models.Empty()
	snap.Offers = []models.Offer{{ID: "1", Name: "Basic", Price: 10, DurationMonths: 1, MaxConnections: 1}}
	snap.Subscriptions = []models.Subscription{
		{ID: "a", FullName: "Alice Martin", Email: "alice@example.com", OfferID: "1", EndDate: now.Add(48 * time.Hour), Status: models.StatusActive, OwnerID: "r1"},
		{ID: "b", FullName: "Bob Stone", Email: "bob@stone.io", OfferID: "1", EndDate: now.Add(30 * 24 * time.Hour), Status: models.StatusActive, OwnerID: "r1"},
		{ID: "c", FullName: "Carla", Email: "carla@example.com", OfferID: "1", EndDate: now.Add(-time.Hour), Status: models.StatusExpired, OwnerID: "r1"},
	}
	return snap
}

func serve(t *testing.T, ctrl any, url string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	h := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	h.now = func() time.Time { return now }

	req := httptest.NewRequest(http.MethodGet, url, nil)
	if ctrl != nil {
		actor := models.Actor{ID: "r1", Username: "bob", Role: models.RoleReseller}
		req = req.WithContext(middlewarectx.WithSession(req.Context(), "sid", actor, ctrl))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var body struct {
		Data Response `json:"data"`
	}
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body.Data
}

func TestSnapshotHandler(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		wantIDs      []string
		wantExpiring int
	}{
		{name: "без поиска", url: "/api/v1/snapshot", wantIDs: []string{"a", "b", "c"}, wantExpiring: 1},
		{name: "поиск по имени без учета регистра", url: "/api/v1/snapshot?q=ALICE", wantIDs: []string{"a"}, wantExpiring: 1},
		{name: "поиск по e-mail", url: "/api/v1/snapshot?q=example.com", wantIDs: []string{"a", "c"}, wantExpiring: 1},
		{name: "ничего не найдено", url: "/api/v1/snapshot?q=zed", wantIDs: []string{}, wantExpiring: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := new(ControllerMock)
			ctrl.On("Snapshot").Return(fixture())
			ctrl.On("Status").Return(panel.Status{State: panel.StateReady, LastRefresh: now})

			w, data := serve(t, ctrl, tt.url)

			assert.Equal(t, http.StatusOK, w.Code)
			ids := make([]string, 0, len(data.Subscriptions))
			for _, s := range data.Subscriptions {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantExpiring, data.ExpiringSoon)
			assert.Equal(t, panel.StateReady, data.Status.State)
			assert.Equal(t, "r1", data.Actor.ID)
			assert.Len(t, data.Offers, 1)
			assert.NotNil(t, data.Accounts)
		})
	}
}

func TestSnapshotHandler_NoController(t *testing.T) {
	w, _ := serve(t, nil, "/api/v1/snapshot")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSearch_EmptyQueryReturnsInput(t *testing.T) {
	subs := fixture().Subscriptions
	assert.Equal(t, subs, Search(subs, ""))
}
