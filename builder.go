package goSession

import (
	"errors"
	"net/http"

	"github.com/fraudlens/goSession/keystore"
	"github.com/redis/go-redis/v9"
)

// Builder assembles a [Session]. Construction is allocation-only; no I/O
// happens until the session's methods are called.
type Builder struct {
	config Config
	redis  *redis.Client
	store  keystore.Store

	baseTransport http.RoundTripper
	auditSink     AuditSink

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis persists credentials in Redis under the configured key prefix.
// Ignored when an explicit store is set via [Builder.WithStore].
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithStore persists credentials in the given store.
func (b *Builder) WithStore(store keystore.Store) *Builder {
	b.store = store
	return b
}

// WithBaseTransport sets the transport the retry coordinator wraps. Defaults
// to [http.DefaultTransport].
func (b *Builder) WithBaseTransport(rt http.RoundTripper) *Builder {
	b.baseTransport = rt
	return b
}

// WithAuditSink enables audit dispatch to the given sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = true
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and assembles the session. A builder can
// be used once.
//
// Without a store or a Redis client the session is memoryless across
// restarts: [Session.Hydrate] becomes a no-op and credentials live only in
// process memory.
func (b *Builder) Build() (*Session, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	if err := validateConfig(b.config); err != nil {
		return nil, err
	}

	store := b.store
	if store == nil && b.redis != nil {
		redisStore, err := keystore.NewRedis(b.redis, b.config.Storage.KeyPrefix)
		if err != nil {
			return nil, err
		}
		store = redisStore
	}

	session := &Session{
		config:  b.config,
		store:   store,
		audit:   newAuditDispatcher(b.config.Audit, b.auditSink),
		metrics: NewMetrics(b.config.Metrics),
	}
	session.httpClient = &http.Client{
		Transport: newRetryTransport(session, b.baseTransport),
		Timeout:   b.config.API.Timeout,
	}

	b.built = true
	return session, nil
}
