package panel

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/magabrotheeeer/iptv-panel/internal/changefeed"
	"github.com/magabrotheeeer/iptv-panel/internal/models"
)

// fakeGateway — хранилище в памяти. onWrite эмулирует триггеры базы.
type fakeGateway struct {
	mu       sync.Mutex
	accounts map[string]models.Account
	offers   map[string]models.Offer
	subs     map[string]models.Subscription

	readErr  error
	writeErr error
	gate     chan struct{}
	onWrite  func()

	listCalls  atomic.Int32
	writeCalls atomic.Int32
}

func newFakeGateway() *fakeGateway {
	g := &fakeGateway{
		accounts: map[string]models.Account{},
		offers:   map[string]models.Offer{},
		subs:     map[string]models.Subscription{},
	}
	g.accounts[admin.ID] = models.Account{ID: admin.ID, Username: "admin", Credential: "x", Role: models.RoleAdmin}
	g.accounts[resellerR.ID] = models.Account{ID: resellerR.ID, Username: "rachid", Credential: "x", Role: models.RoleReseller}
	g.accounts[resellerS.ID] = models.Account{ID: resellerS.ID, Username: "sophie", Credential: "x", Role: models.RoleReseller}
	g.offers[basic.ID] = basic
	g.offers[gold.ID] = gold
	return g
}

func (g *fakeGateway) setReadErr(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.readErr = err
}

func (g *fakeGateway) setGate(ch chan struct{}) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gate = ch
}

func (g *fakeGateway) wait(ctx context.Context) error {
	g.mu.Lock()
	gate := g.gate
	g.mu.Unlock()
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *fakeGateway) ListAccounts(ctx context.Context) ([]models.Account, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.readErr != nil {
		return nil, g.readErr
	}
	out := make([]models.Account, 0, len(g.accounts))
	for _, a := range g.accounts {
		out = append(out, a)
	}
	return out, nil
}

func (g *fakeGateway) ListOffers(ctx context.Context) ([]models.Offer, error) {
	g.listCalls.Add(1)
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.readErr != nil {
		return nil, g.readErr
	}
	out := make([]models.Offer, 0, len(g.offers))
	for _, o := range g.offers {
		out = append(out, o)
	}
	return out, nil
}

func (g *fakeGateway) ListSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.readErr != nil {
		return nil, g.readErr
	}
	out := make([]models.Subscription, 0, len(g.subs))
	for _, s := range g.subs {
		out = append(out, s)
	}
	return out, nil
}

func (g *fakeGateway) subscription(id string) models.Subscription {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.subs[id]
}

func (g *fakeGateway) mutate(fn func()) error {
	g.writeCalls.Add(1)
	g.mu.Lock()
	if g.writeErr != nil {
		err := g.writeErr
		g.mu.Unlock()
		return err
	}
	fn()
	onWrite := g.onWrite
	g.mu.Unlock()
	if onWrite != nil {
		onWrite()
	}
	return nil
}

func (g *fakeGateway) UpsertAccount(_ context.Context, acc models.Account) error {
	return g.mutate(func() { g.accounts[acc.ID] = acc })
}

func (g *fakeGateway) UpsertOffer(_ context.Context, offer models.Offer) error {
	return g.mutate(func() { g.offers[offer.ID] = offer })
}

func (g *fakeGateway) UpsertSubscription(_ context.Context, sub models.Subscription) error {
	return g.mutate(func() { g.subs[sub.ID] = sub })
}

func (g *fakeGateway) DeleteAccount(_ context.Context, id string) error {
	return g.mutate(func() { delete(g.accounts, id) })
}

func (g *fakeGateway) DeleteOffer(_ context.Context, id string) error {
	return g.mutate(func() { delete(g.offers, id) })
}

func (g *fakeGateway) DeleteSubscription(_ context.Context, id string) error {
	return g.mutate(func() { delete(g.subs, id) })
}

type recordingPublisher struct {
	mu      sync.Mutex
	changes []changefeed.Change
}

func (p *recordingPublisher) Publish(_ context.Context, c changefeed.Change) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, c)
	return nil
}

func (p *recordingPublisher) all() []changefeed.Change {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]changefeed.Change(nil), p.changes...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
