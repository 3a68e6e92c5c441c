package bootstrap

import (
	"github.com/GoSim-25-26J-441/topology-backend/internal/logger"
	"github.com/gin-gonic/gin"
)

// SetGinMode maps APP_ENV onto gin's mode and sends route registration
// output through the structured logger.
func SetGinMode(env string) {
	switch env {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	gin.DebugPrintRouteFunc = func(method, path, handler string, _ int) {
		logger.Debug("route", "method", method, "path", path, "handler", handler)
	}
}
