package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/upmhealth/patient-records-api/internal/config"
	"github.com/upmhealth/patient-records-api/internal/handler"
	"github.com/upmhealth/patient-records-api/internal/middleware"
	"github.com/upmhealth/patient-records-api/internal/service/auth"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Health    *handler.HealthHandler
	Auth      *handler.AuthHandler
	Person    *handler.PersonHandler
	Patient   *handler.PatientHandler
	Vitals    *handler.VitalsHandler
	Billing   *handler.BillingHandler
	Insurance *handler.InsuranceHandler
	Audit     *handler.AuditHandler
}

func New(cfg *config.Config, authSvc *auth.Service, h Handlers) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	if cfg.RateLimit.Enabled {
		r.Use(middleware.RateLimit(cfg.RateLimit))
	}
	r.Use(httpMetrics())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	h.Health.RegisterRoutes(api)
	h.Auth.RegisterRoutes(api)

	authed := api.Group("", middleware.Authenticate(authSvc))
	h.Person.RegisterRoutes(authed)
	h.Patient.RegisterRoutes(authed)
	h.Vitals.RegisterRoutes(authed)
	h.Billing.RegisterRoutes(authed)
	h.Insurance.RegisterRoutes(authed)
	h.Audit.RegisterRoutes(authed)

	return r
}

func httpMetrics() gin.HandlerFunc {
	requests := promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
	duration := promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path"})

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// Use the route template, not the raw path, to bound cardinality.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		requests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		duration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
