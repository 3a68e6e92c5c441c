package bootstrap

import (
	"time"

	httpapi "github.com/GoSim-25-26J-441/topology-backend/internal/api/http"
	"github.com/GoSim-25-26J-441/topology-backend/internal/api/http/middleware"
	"github.com/GoSim-25-26J-441/topology-backend/internal/topology/service"
	topohttp "github.com/GoSim-25-26J-441/topology-backend/internal/topology/http"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
	Graph          *service.GraphService
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(cors.New(corsConfig(dep.AllowedOrigins)))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Graph)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api")
	healthHandler.RegisterRoutes(api)

	topoHandler := topohttp.New(dep.Graph)
	topoHandler.Register(api, middleware.RateLimitMiddleware(dep.RateLimitRPS, dep.RateLimitBurst))

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
