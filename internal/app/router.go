package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"kafkaportal/internal/audit"
	audithandler "kafkaportal/internal/audit/handler"
	authhandler "kafkaportal/internal/auth/handler"
	authservice "kafkaportal/internal/auth/service"
	"kafkaportal/internal/broker"
	brokerhandler "kafkaportal/internal/broker/handler"
	"kafkaportal/internal/health"
	jwttoken "kafkaportal/internal/jwt_token"
	"kafkaportal/internal/platform/metrics"
	"kafkaportal/internal/requests"
	requesthandler "kafkaportal/internal/requests/handler"
	"kafkaportal/pkg/platform/middleware/admin"
	authmw "kafkaportal/pkg/platform/middleware/auth"
	"kafkaportal/pkg/platform/middleware/metadata"
	"kafkaportal/pkg/platform/middleware/request"
	"kafkaportal/pkg/platform/middleware/requesttime"
)

type routerDeps struct {
	httpMetrics    *metrics.Metrics
	jwt            *jwttoken.JWTServiceAdapter
	users          authmw.UserResolver
	authService    *authservice.Service
	auditService   *audit.Service
	brokerService  *broker.Service
	requestService *requests.Service
	health         *health.Handler
}

func (a *App) newRouter(d routerDeps) http.Handler {
	logger := a.logger
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(logger))
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(request.Logger(logger))
	r.Use(d.httpMetrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "If-Match", request.HeaderRequestID},
		ExposedHeaders:   []string{"ETag", request.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	d.health.Register(r)
	r.Method(http.MethodGet, "/metrics", metrics.Handler(a.registry))

	authHandler := authhandler.New(d.authService, logger)
	requestHandler := requesthandler.New(d.requestService, logger)
	brokerHandler := brokerhandler.New(d.brokerService, logger)
	auditHandler := audithandler.New(d.auditService, logger)

	authHandler.RegisterPublic(r)
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(d.jwt, d.authService, d.users, logger))
		authHandler.Register(r)
		requestHandler.Register(r)
		brokerHandler.Register(r)
		auditHandler.Register(r)

		r.Group(func(r chi.Router) {
			r.Use(admin.RequireAdmin(logger))
			requestHandler.RegisterAdmin(r)
			brokerHandler.RegisterAdmin(r)
		})
	})
	return r
}

func (a *App) healthHandler(brokerAdmin broker.Admin) *health.Handler {
	var opts []health.Option
	if a.db != nil {
		opts = append(opts, health.WithDatabase(a.db.PingContext))
	}
	if a.redis != nil {
		opts = append(opts, health.WithRedis(a.redis.Health))
	}
	if _, inMemory := brokerAdmin.(*broker.InMemoryAdmin); !inMemory {
		opts = append(opts, health.WithKafka(brokerAdmin.Ping))
	}
	return health.New(Version, a.logger, opts...)
}
