// ABOUTME: Read-through payload cache in front of the fetch API
// ABOUTME: Stores raw JSON results under namespaced keys in a pluggable Store

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/harper/vkattach/internal/attachment"
	"github.com/harper/vkattach/internal/identity"
	"github.com/harper/vkattach/internal/logging"
)

// ErrMiss is returned by a Store when a key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Key namespaces
const (
	NamespacePhotos = "photos"
	NamespaceDocs   = "docs"
	NamespacePolls  = "polls"
)

// Store persists cached payloads.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Entry describes a stored payload.
type Entry struct {
	Key      string
	Size     int
	StoredAt time.Time
}

// Lister is implemented by stores that can enumerate their entries.
type Lister interface {
	Entries(ctx context.Context, prefix string) ([]Entry, error)
}

// Deleter is implemented by stores that can drop single entries. Deleting
// an absent key returns ErrMiss.
type Deleter interface {
	Delete(ctx context.Context, key string) error
}

// Key builds a cache key.
func Key(namespace, param string) string {
	return namespace + ":" + param
}

// API wraps another API and serves repeated lookups from a Store.
type API struct {
	next    attachment.API
	store   Store
	logger  *zap.Logger
	metrics *Metrics
}

var _ attachment.API = (*API)(nil)

// Option configures an API.
type Option func(*API)

func WithLogger(logger *zap.Logger) Option {
	return func(a *API) { a.logger = logging.OrNop(logger) }
}

func WithMetrics(m *Metrics) Option {
	return func(a *API) { a.metrics = m }
}

// New wraps next with store.
func New(next attachment.API, store Store, opts ...Option) *API {
	a := &API{next: next, store: store, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *API) PhotosGetByID(ctx context.Context, params attachment.PhotosGetByIDParams) ([]attachment.PhotoPayload, error) {
	param := params.Photos
	if params.Extended {
		param += ":extended"
	}
	return through(ctx, a, NamespacePhotos, param, func() ([]attachment.PhotoPayload, error) {
		return a.next.PhotosGetByID(ctx, params)
	})
}

func (a *API) DocsGetByID(ctx context.Context, params attachment.DocsGetByIDParams) ([]attachment.GraffitiPayload, error) {
	return through(ctx, a, NamespaceDocs, params.Docs, func() ([]attachment.GraffitiPayload, error) {
		return a.next.DocsGetByID(ctx, params)
	})
}

func (a *API) PollsGetByID(ctx context.Context, params attachment.PollsGetByIDParams) ([]attachment.PollPayload, error) {
	param := identity.Composite(params.OwnerID, params.PollID, params.AccessKey)
	return through(ctx, a, NamespacePolls, param, func() ([]attachment.PollPayload, error) {
		return a.next.PollsGetByID(ctx, params)
	})
}

// through serves key from the store, falling back to fetch. Only non-empty
// results are stored. Store failures are logged and skipped.
func through[T any](ctx context.Context, a *API, namespace, param string, fetch func() ([]T, error)) ([]T, error) {
	key := Key(namespace, param)

	data, err := a.store.Get(ctx, key)
	switch {
	case err == nil:
		var items []T
		if err := json.Unmarshal(data, &items); err == nil {
			a.metrics.record(namespace, true)
			a.logger.Debug("cache hit", zap.String("key", key))
			return items, nil
		}
		a.logger.Warn("discarding corrupt cache entry", zap.String("key", key))
	case !errors.Is(err, ErrMiss):
		a.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}
	a.metrics.record(namespace, false)

	items, err := fetch()
	if err != nil || len(items) == 0 {
		return items, err
	}

	if data, err := json.Marshal(items); err == nil {
		if err := a.store.Put(ctx, key, data); err != nil {
			a.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return items, nil
}

// Metrics counts cache lookups. A nil *Metrics records nothing.
type Metrics struct {
	Lookups *prometheus.CounterVec
}

// NewMetrics creates cache metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vkattach",
				Name:      "cache_lookups_total",
				Help:      "Payload cache lookups by namespace and result",
			},
			[]string{"namespace", "result"},
		),
	}
	reg.MustRegister(m.Lookups)
	return m
}

func (m *Metrics) record(namespace string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.Lookups.WithLabelValues(namespace, result).Inc()
}
