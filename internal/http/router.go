// Package httpapi wires the HTTP transport (Gin) to the screening and history
// services, middleware, and route handlers. It centralizes cross-cutting
// concerns such as tracing, correlation IDs, logging/redaction, panic
// recovery, metrics, compression, CORS, and security headers.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-risk-gateway/docs"
	"github.com/tbourn/go-risk-gateway/internal/config"
	"github.com/tbourn/go-risk-gateway/internal/domain"
	"github.com/tbourn/go-risk-gateway/internal/http/handlers"
	"github.com/tbourn/go-risk-gateway/internal/http/middleware"
	"github.com/tbourn/go-risk-gateway/internal/repo"
	"github.com/tbourn/go-risk-gateway/internal/services"
)

const (
	maxRequestBody = 1 << 20
	readyTimeout   = 2 * time.Second
)

// assessmentRepoShim adapts the repository free functions to the
// services.AssessmentRepo interface expected by the AssessmentService.
type assessmentRepoShim struct{}

// CreateAssessment proxies repo.CreateAssessment.
func (assessmentRepoShim) CreateAssessment(ctx context.Context, db *gorm.DB, address, risk string, payload domain.Payload) (*domain.RiskAssessment, error) {
	return repo.CreateAssessment(ctx, db, address, risk, payload)
}

// ListLatestAssessments proxies repo.ListLatestAssessments.
func (assessmentRepoShim) ListLatestAssessments(ctx context.Context, db *gorm.DB, limit int) ([]domain.RiskAssessment, error) {
	return repo.ListLatestAssessments(ctx, db, limit)
}

// AssessmentsStats proxies repo.AssessmentsStats (ETag support).
func (assessmentRepoShim) AssessmentsStats(ctx context.Context, db *gorm.DB) (int64, uint64, error) {
	return repo.AssessmentsStats(ctx, db)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. riskAPI is the upstream risk provider; db backs the verdict history.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with credential scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. gzip
//  8. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, riskAPI services.RiskAPI, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction (Token is masked by default)
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-API-Key"},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(maxRequestBody))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Response compression for clients that ask for it
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// 8) CORS posture (allow all if none configured)
	allowMethods := []string{"GET", "POST", "OPTIONS"}
	allowHeaders := []string{"Origin", "Content-Type", "Accept", "If-None-Match"}
	exposeHeaders := []string{"X-Request-ID", "Content-Length", "ETag"}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header.
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     allowMethods,
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist.
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     allowMethods,
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:    cfg.Security.EnableHSTS,
		HSTSMaxAge:    cfg.Security.HSTSMaxAge,
		NoStore:       false,
		EnablePolicy:  true,
		ExposeHeaders: []string{"ETag"},
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/readiness
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
		defer cancel()
		if err := repo.Ping(ctx, db); err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("readiness check failed")
			handlers.Fail(c, http.StatusServiceUnavailable, handlers.ErrCodeUnavailable, "database unavailable")
			return
		}
		n, err := repo.CountAssessments(ctx, db)
		if err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("readiness check: responses table unreadable")
			handlers.Fail(c, http.StatusServiceUnavailable, handlers.ErrCodeUnavailable, "schema not ready")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "records": n})
	})

	// API docs
	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db/upstream
	assessSvc := services.NewAssessmentService(db, assessmentRepoShim{}, cfg.HistoryLimit)
	screenSvc := &services.ScreeningService{
		API:               riskAPI,
		Store:             assessSvc,
		WriteThrough:      cfg.WriteThrough,
		RequireEVMAddress: cfg.RequireEVMAddress,
	}
	h := handlers.New(screenSvc, assessSvc)

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath) // e.g. "/api"
	{
		// Screening (upstream relay)
		api.POST("/entities", h.RegisterEntity)
		api.GET("/entities/:address", h.ScreenEntity)

		// History
		api.POST("/insert", h.InsertAssessment)
		api.GET("/fetchLatest", h.LatestAssessments)
		api.GET("/fetch-last-five", h.LatestAssessments)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
