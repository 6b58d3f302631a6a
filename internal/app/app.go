// Package app assembles the portal from configuration. Every backing service
// is optional: an empty DATABASE_URL, REDIS_URL or KAFKA_BOOTSTRAP_SERVERS
// keeps that concern in memory.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	"kafkaportal/internal/audit"
	auditmetrics "kafkaportal/internal/audit/metrics"
	authservice "kafkaportal/internal/auth/service"
	"kafkaportal/internal/auth/store/revocation"
	"kafkaportal/internal/auth/store/user"
	"kafkaportal/internal/broker"
	brokermetrics "kafkaportal/internal/broker/metrics"
	"kafkaportal/internal/identity"
	jwttoken "kafkaportal/internal/jwt_token"
	"kafkaportal/internal/platform/config"
	"kafkaportal/internal/platform/kafka"
	"kafkaportal/internal/platform/metrics"
	"kafkaportal/internal/platform/postgres"
	redisclient "kafkaportal/internal/platform/redis"
	"kafkaportal/internal/ratelimit"
	ratelimitmetrics "kafkaportal/internal/ratelimit/metrics"
	"kafkaportal/internal/ratelimit/store/bucket"
	"kafkaportal/internal/requests"
	requestmetrics "kafkaportal/internal/requests/metrics"
	"kafkaportal/pkg/domain"
	txcontext "kafkaportal/pkg/platform/tx"
)

// Version is reported by GET /.
const Version = "1.0.0"

const (
	jwtAudience         = "kafka-admin-portal-api"
	auditOutboxSize     = 256
	revocationSweepTick = 10 * time.Minute
)

// App is a wired portal: an HTTP handler plus the background work that
// serves it.
type App struct {
	cfg    config.Server
	logger *slog.Logger

	registry *prometheus.Registry
	db       *sql.DB
	redis    *redisclient.Client
	kafka    *kgo.Client

	// overrides, set through options
	directory identity.Directory
	admin     broker.Admin

	router  http.Handler
	workers []func(ctx context.Context) error
}

type Option func(*App)

// WithDirectory replaces the directory selected by configuration.
func WithDirectory(d identity.Directory) Option {
	return func(a *App) { a.directory = d }
}

// WithBrokerAdmin replaces the broker selected by configuration.
func WithBrokerAdmin(admin broker.Admin) Option {
	return func(a *App) { a.admin = admin }
}

// New connects the configured backing services and builds the router. The
// caller owns the result and must Close it.
func New(ctx context.Context, cfg config.Server, logger *slog.Logger, opts ...Option) (_ *App, err error) {
	a := &App{cfg: cfg, logger: logger, registry: prometheus.NewRegistry()}
	for _, opt := range opts {
		opt(a)
	}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if err := a.connect(ctx); err != nil {
		return nil, err
	}
	if err := a.build(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) connect(ctx context.Context) error {
	if a.cfg.Database.URL != "" {
		db, err := postgres.Open(ctx, a.cfg.Database)
		if err != nil {
			return err
		}
		a.db = db
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
		a.logger.InfoContext(ctx, "connected to postgres")
	}

	rc, err := redisclient.New(ctx, a.cfg.Redis)
	if err != nil {
		return err
	}
	if rc != nil {
		a.redis = rc
		a.logger.InfoContext(ctx, "connected to redis")
	}

	if a.admin == nil {
		cl, err := kafka.NewClient(ctx, a.cfg.Kafka)
		if err != nil {
			return err
		}
		if cl != nil {
			a.kafka = cl
			a.logger.InfoContext(ctx, "connected to kafka", "bootstrap_servers", a.cfg.Kafka.BootstrapServers)
		}
	}
	return nil
}

func (a *App) build() error {
	logger := a.logger
	httpMetrics := metrics.New(a.registry)

	var runner txcontext.Runner = txcontext.NopRunner{}
	if a.db != nil {
		runner = txcontext.SQLRunner{DB: a.db}
	}

	// audit
	var auditStore audit.Store = audit.NewInMemoryStore()
	if a.db != nil {
		auditStore = audit.NewPostgresStore(a.db)
	}
	auditMetrics := auditmetrics.New(a.registry)
	auditOpts := []audit.Option{audit.WithLogger(logger), audit.WithMetrics(auditMetrics)}
	if a.kafka != nil && a.cfg.Kafka.AuditTopic != "" {
		outbox := make(chan domain.AuditEntry, auditOutboxSize)
		auditOpts = append(auditOpts, audit.WithOutbox(outbox))
		worker := audit.NewWorker(audit.NewKafkaPublisher(a.kafka, a.cfg.Kafka.AuditTopic), outbox, logger, auditMetrics)
		a.workers = append(a.workers, worker.Run)
	}
	auditService := audit.NewService(auditStore, auditOpts...)

	// users and tokens
	var users authservice.UserStore = user.New()
	if a.db != nil {
		users = user.NewPostgres(a.db)
	}
	jwtService := jwttoken.NewJWTService(a.cfg.JWTSigningKey, a.cfg.JWTIssuer, jwtAudience)
	trl := a.revocationList()

	directory := a.directory
	if directory == nil {
		d, err := identity.FromConfig(a.cfg.Directory)
		if err != nil {
			return fmt.Errorf("build directory: %w", err)
		}
		directory = d
	}

	var buckets ratelimit.BucketStore = bucket.NewInMemoryBucketStore()
	if a.redis != nil {
		buckets = bucket.NewRedisBucketStore(a.redis.Client)
	}
	limiter, err := ratelimit.NewLoginLimiter(buckets, a.cfg.LoginRate.Limit, a.cfg.LoginRate.Window,
		ratelimit.WithLogger(logger),
		ratelimit.WithMetrics(ratelimitmetrics.New(a.registry)),
	)
	if err != nil {
		return fmt.Errorf("build login limiter: %w", err)
	}

	authService, err := authservice.New(directory, users, jwtService, trl, auditService,
		authservice.WithLogger(logger),
		authservice.WithMetrics(httpMetrics),
		authservice.WithLimiter(limiter),
		authservice.WithTx(runner),
		authservice.WithTokenTTL(a.cfg.TokenTTL),
	)
	if err != nil {
		return fmt.Errorf("build auth service: %w", err)
	}

	// broker
	admin := a.admin
	if admin == nil {
		if a.kafka != nil {
			admin = broker.NewKadmAdmin(a.kafka, a.cfg.Kafka.BootstrapServers)
		} else {
			admin = broker.NewInMemoryAdmin()
		}
	}
	brokerMetrics := brokermetrics.New(a.registry)
	brokerService, err := broker.NewService(admin, auditService,
		broker.WithLogger(logger),
		broker.WithMetrics(brokerMetrics),
	)
	if err != nil {
		return fmt.Errorf("build broker service: %w", err)
	}

	// requests
	var requestStore requests.Store = requests.NewInMemoryStore()
	if a.db != nil {
		requestStore = requests.NewPostgresStore(a.db)
	}
	requestOpts := []requests.Option{
		requests.WithLogger(logger),
		requests.WithMetrics(requestmetrics.New(a.registry)),
		requests.WithTx(runner),
	}
	if a.cfg.ProvisionOnApproval {
		requestOpts = append(requestOpts, requests.WithProvisioner(broker.NewProvisioner(admin, logger, brokerMetrics)))
	}
	requestService, err := requests.New(requestStore, auditService, brokerService, requestOpts...)
	if err != nil {
		return fmt.Errorf("build request service: %w", err)
	}

	a.router = a.newRouter(routerDeps{
		httpMetrics:    httpMetrics,
		jwt:            jwttoken.NewJWTServiceAdapter(jwtService),
		users:          users,
		authService:    authService,
		auditService:   auditService,
		brokerService:  brokerService,
		requestService: requestService,
		health:         a.healthHandler(admin),
	})
	return nil
}

// revocationList prefers Redis, then Postgres, then memory.
func (a *App) revocationList() authservice.RevocationList {
	switch {
	case a.redis != nil:
		return revocation.NewRedisTRL(a.redis.Client)
	case a.db != nil:
		trl := revocation.NewPostgresTRL(a.db, time.Now)
		a.workers = append(a.workers, func(ctx context.Context) error {
			return a.sweepRevocations(ctx, trl)
		})
		return trl
	default:
		return revocation.NewInMemoryTRL(time.Now)
	}
}

func (a *App) sweepRevocations(ctx context.Context, trl *revocation.PostgresTRL) error {
	ticker := time.NewTicker(revocationSweepTick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := trl.DeleteExpired(ctx)
			if err != nil {
				a.logger.WarnContext(ctx, "failed to sweep token revocations", "error", err)
				continue
			}
			if n > 0 {
				a.logger.InfoContext(ctx, "swept expired token revocations", "count", n)
			}
		}
	}
}

// Handler is the portal's HTTP surface.
func (a *App) Handler() http.Handler {
	return a.router
}

// Run blocks running the background workers until ctx is done.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, w := range a.workers {
		g.Go(func() error {
			if err := w(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

// Close releases every connection New opened.
func (a *App) Close() error {
	var errs []error
	if a.kafka != nil {
		a.kafka.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
