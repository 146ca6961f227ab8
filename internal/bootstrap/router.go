package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	httpapi "github.com/folio-works/portfolio-backend/internal/api/http"
	"github.com/folio-works/portfolio-backend/internal/api/http/middleware"
	"github.com/folio-works/portfolio-backend/internal/cache"
	"github.com/folio-works/portfolio-backend/internal/catalog"
	"github.com/folio-works/portfolio-backend/internal/events"
	projectshttp "github.com/folio-works/portfolio-backend/internal/projects/http"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	AllowedOrigins []string
	Log            *zap.Logger
	HealthChecks   map[string]httpapi.Check

	Projects  *projectshttp.Handler
	Catalog   *catalog.Handler
	Events    *events.StreamHandler
	Cache     *cache.Cache
	AdminAuth gin.HandlerFunc
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware(dep.Log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     dep.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-Id", "X-User-Id"},
		ExposeHeaders:    []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.HealthChecks)
	healthHandler.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	dep.Projects.RegisterPublic(api)
	dep.Catalog.RegisterPublic(api)

	admin := api.Group("/admin")
	admin.Use(dep.AdminAuth)
	dep.Projects.RegisterAdmin(admin)
	dep.Catalog.RegisterAdmin(admin)
	dep.Events.Register(admin)
	httpapi.NewCacheHandler(dep.Cache).RegisterRoutes(admin)

	return r
}
