package storefront

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"storefront/config"
	"storefront/internal/domain/entity"
	"storefront/internal/domain/lifecycle"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/internal/query"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"golang.org/x/sync/singleflight"
)

// Registry keeps one Client per visitor. Idle clients are evicted from memory;
// their sealed credentials stay in the visitor repository so the next request
// can resume the session.
type Registry struct {
	deps      Deps
	visitors  repository.VisitorRepository
	sealer    service.CredentialSealer
	idleTTL   time.Duration
	retention time.Duration
	now       func() time.Time
	logger    *slog.Logger

	mu       sync.Mutex
	clients  map[uuid.UUID]*Client
	creating singleflight.Group
}

// NewRegistryWith builds a registry without lifecycle hooks, for callers that
// manage a single client such as the CLI.
func NewRegistryWith(deps Deps, visitors repository.VisitorRepository, sealer service.CredentialSealer, cfg config.VisitorConfig) *Registry {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Registry{
		deps:      deps,
		visitors:  visitors,
		sealer:    sealer,
		idleTTL:   cfg.IdleTTL,
		retention: cfg.Retention,
		now:       time.Now,
		logger:    logger,
		clients:   make(map[uuid.UUID]*Client),
	}
}

// Params holds dependencies for the registry, injected by Fx
type Params struct {
	fx.In

	Lc        fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
	Visitors  repository.VisitorRepository
	Sealer    service.CredentialSealer
	Inspector service.TokenInspector
	QRCodes   service.QRCodeService
	Shared    query.SharedStore `optional:"true"`
}

// NewRegistry builds the registry and runs its idle sweep for the life of the app.
func NewRegistry(params Params) *Registry {
	r := NewRegistryWith(Deps{
		Config:    params.Config,
		Logger:    params.Logger,
		Shared:    params.Shared,
		Inspector: params.Inspector,
		QRCodes:   params.QRCodes,
	}, params.Visitors, params.Sealer, params.Config.Visitor)

	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	done := make(chan struct{})

	params.Lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				r.run(sweepCtx, params.Config.Visitor.SweepInterval)
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancelSweep()
			<-done

			ctx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
			defer cancel()

			return r.PersistAll(ctx)
		},
	})

	return r
}

func (r *Registry) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Get returns the visitor's client, restoring persisted credentials the first
// time the visitor is seen by this process.
func (r *Registry) Get(ctx context.Context, visitorID uuid.UUID) (*Client, error) {
	if c := r.lookup(visitorID); c != nil {
		return c, nil
	}

	v, err, _ := r.creating.Do(visitorID.String(), func() (any, error) {
		if c := r.lookup(visitorID); c != nil {
			return c, nil
		}

		c, err := NewClient(visitorID, r.deps)
		if err != nil {
			return nil, err
		}
		r.restore(ctx, c)

		r.mu.Lock()
		r.clients[visitorID] = c
		r.mu.Unlock()

		return c, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Client), nil
}

func (r *Registry) lookup(visitorID uuid.UUID) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.clients[visitorID]
	if ok {
		c.Touch(r.now())
	}

	return c
}

// restore loads sealed credentials into a fresh client. Unreadable records
// are dropped; the visitor simply starts anonymous.
func (r *Registry) restore(ctx context.Context, c *Client) {
	creds, err := r.visitors.Find(ctx, c.ID)
	if err != nil {
		if !errors.Is(err, repository.ErrVisitorNotFound) {
			r.logger.Warn("Failed to load visitor credentials", slog.String("visitor_id", c.ID.String()), slog.Any("error", err))
		}

		return
	}

	cookies, token, err := r.open(creds)
	if err != nil {
		r.logger.Warn("Discarding unreadable visitor credentials", slog.String("visitor_id", c.ID.String()), slog.Any("error", err))
		if delErr := r.visitors.Delete(ctx, c.ID); delErr != nil {
			r.logger.Warn("Failed to delete visitor credentials", slog.Any("error", delErr))
		}

		return
	}

	c.API.SetCookies(cookies)
	c.Auth.RestoreFallbackToken(token)

	c.persistMu.Lock()
	c.fingerprint = fingerprint(cookies, token)
	c.persistMu.Unlock()

	r.logger.Debug("Visitor credentials restored", slog.String("visitor_id", c.ID.String()), slog.Int("cookies", len(cookies)))
}

func (r *Registry) open(creds *entity.VisitorCredentials) ([]*http.Cookie, string, error) {
	var cookies []*http.Cookie
	if len(creds.SealedCookies) > 0 {
		raw, err := r.sealer.Open(creds.SealedCookies)
		if err != nil {
			return nil, "", errors.Wrap(err, "open cookies")
		}
		if err := json.Unmarshal(raw, &cookies); err != nil {
			return nil, "", errors.Wrap(err, "decode cookies")
		}
	}

	var token string
	if len(creds.SealedToken) > 0 {
		raw, err := r.sealer.Open(creds.SealedToken)
		if err != nil {
			return nil, "", errors.Wrap(err, "open token")
		}
		token = string(raw)
	}

	return cookies, token, nil
}

// Persist saves the client's credentials when they changed since the last save.
func (r *Registry) Persist(ctx context.Context, c *Client) error {
	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	cookies := c.API.Cookies()
	token := c.Token()
	current := fingerprint(cookies, token)
	if current == c.fingerprint {
		return nil
	}

	creds := &entity.VisitorCredentials{VisitorID: c.ID, UpdatedAt: r.now()}
	if len(cookies) > 0 {
		raw, err := json.Marshal(cookies)
		if err != nil {
			return errors.Wrap(err, "encode cookies")
		}
		if creds.SealedCookies, err = r.sealer.Seal(raw); err != nil {
			return errors.Wrap(err, "seal cookies")
		}
	}
	if token != "" {
		sealed, err := r.sealer.Seal([]byte(token))
		if err != nil {
			return errors.Wrap(err, "seal token")
		}
		creds.SealedToken = sealed
	}

	if err := r.visitors.Save(ctx, creds); err != nil {
		return errors.Wrap(err, "save visitor credentials")
	}
	c.fingerprint = current

	return nil
}

// PersistAll saves every live client, used on shutdown.
func (r *Registry) PersistAll(ctx context.Context) error {
	var firstErr error
	for _, c := range r.snapshot() {
		if err := r.Persist(ctx, c); err != nil {
			r.logger.Warn("Failed to persist visitor", slog.String("visitor_id", c.ID.String()), slog.Any("error", err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

// Forget drops the visitor from memory and storage.
func (r *Registry) Forget(ctx context.Context, visitorID uuid.UUID) error {
	r.mu.Lock()
	c, ok := r.clients[visitorID]
	delete(r.clients, visitorID)
	r.mu.Unlock()

	if ok {
		c.Close()
	}

	return errors.Wrap(r.visitors.Delete(ctx, visitorID), "delete visitor credentials")
}

// Sweep evicts clients idle for longer than the idle TTL and purges stored
// credentials older than the retention window. It returns the number evicted.
func (r *Registry) Sweep(ctx context.Context) int {
	now := r.now()
	cutoff := now.Add(-r.idleTTL)

	r.mu.Lock()
	var idle []*Client
	for id, c := range r.clients {
		if c.LastSeen().Before(cutoff) {
			idle = append(idle, c)
			delete(r.clients, id)
		}
	}
	r.mu.Unlock()

	for _, c := range idle {
		if err := r.Persist(ctx, c); err != nil {
			r.logger.Warn("Failed to persist idle visitor", slog.String("visitor_id", c.ID.String()), slog.Any("error", err))
		}
		c.Close()
	}

	purged, err := r.visitors.DeleteIdle(ctx, now.Add(-r.retention))
	if err != nil {
		r.logger.Warn("Failed to purge stale visitor credentials", slog.Any("error", err))
	}

	if len(idle) > 0 || purged > 0 {
		r.logger.Info("Visitor sweep finished", slog.Int("evicted", len(idle)), slog.Int64("purged", purged), slog.Int("live", r.Len()))
	}

	return len(idle)
}

// Len returns the number of live clients.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.clients)
}

func (r *Registry) snapshot() []*Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	clients := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}

	return clients
}

// fingerprint identifies a credential state; expiry attributes are ignored
// since the jar does not report them back.
func fingerprint(cookies []*http.Cookie, token string) string {
	var b []byte
	for _, cookie := range cookies {
		b = append(b, cookie.Name...)
		b = append(b, '=')
		b = append(b, cookie.Value...)
		b = append(b, ';')
	}
	b = append(b, '|')
	b = append(b, token...)

	return string(b)
}
