package resources

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/itamarw/gosurf-bot/internal/bot"
	"github.com/itamarw/gosurf-bot/internal/config"
	"github.com/itamarw/gosurf-bot/internal/queue"
	"github.com/itamarw/gosurf-bot/internal/store"
)

// Provider owns the lazily-built external handles. One Provider is
// constructed at process start and injected wherever a Directory or
// Publisher is needed; acquisition failures surface as
// bot.ErrResourceUnavailable and callers degrade instead of crashing.
type Provider struct {
	cfg    config.Config
	logger *zap.Logger
	clock  clockwork.Clock

	pool      handle[pgxpool.Pool]
	publisher handle[queue.PubSubPublisher]
}

// NewProvider builds a Provider. Nothing is connected yet; handles are
// constructed on first use.
func NewProvider(cfg config.Config, logger *zap.Logger) *Provider {
	return &Provider{
		cfg:    cfg,
		logger: logger,
		clock:  clockwork.NewRealClock(),
	}
}

// Directory returns a store bound to the memoized connection pool,
// constructing the pool on first use.
func (p *Provider) Directory(ctx context.Context) (bot.Directory, error) {
	st, err := p.Store(ctx)
	if err != nil {
		return nil, err
	}
	return st, nil
}

// Store returns the concrete store for maintenance commands that need
// catalog writes beyond what Directory exposes.
func (p *Provider) Store(ctx context.Context) (*store.Store, error) {
	pool, err := p.pool.get(func() (*pgxpool.Pool, error) {
		p.logger.Info("database pool not initialized, creating new pool")
		pool, err := newPool(ctx, p.cfg.DB)
		if err != nil {
			p.logger.Error("database pool initialization failed", zap.Error(err))
			return nil, err
		}
		p.logger.Info("database pool initialized")
		return pool, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: database pool: %v", bot.ErrResourceUnavailable, err)
	}
	return store.New(pool, p.clock), nil
}

// Publisher returns the memoized Pub/Sub publisher, constructing the client
// on first use.
func (p *Provider) Publisher(ctx context.Context) (bot.Publisher, error) {
	pub, err := p.publisher.get(func() (*queue.PubSubPublisher, error) {
		p.logger.Info("pubsub publisher not initialized, creating new client",
			zap.String("topic", p.cfg.PubSub.TopicID))
		pub, err := queue.NewPublisher(ctx, p.cfg.PubSub.ProjectID, p.cfg.PubSub.TopicID)
		if err != nil {
			p.logger.Error("pubsub publisher initialization failed", zap.Error(err))
			return nil, err
		}
		p.logger.Info("pubsub publisher initialized")
		return pub, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: pubsub publisher: %v", bot.ErrResourceUnavailable, err)
	}
	return pub, nil
}

// Close releases whichever handles were actually built.
func (p *Provider) Close() {
	if pool := p.pool.peek(); pool != nil {
		pool.Close()
	}
	if pub := p.publisher.peek(); pub != nil {
		if err := pub.Close(); err != nil {
			p.logger.Warn("pubsub publisher close failed", zap.Error(err))
		}
	}
}

func newPool(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return pool, nil
}
