package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursehub/internal/config"
	httpapi "github.com/yungbote/coursehub/internal/http"
	httpH "github.com/yungbote/coursehub/internal/http/handlers"
	"github.com/yungbote/coursehub/internal/observability"
	"github.com/yungbote/coursehub/internal/platform/logger"
)

type Handlers struct {
	Health    *httpH.HealthHandler
	Course    *httpH.CourseHandler
	Selection *httpH.SelectionHandler
	Realtime  *httpH.RealtimeHandler
	Generate  *httpH.GenerateHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    httpH.NewHealthHandler(),
		Course:    httpH.NewCourseHandler(log, services.Store),
		Selection: httpH.NewSelectionHandler(log, services.Store),
		Realtime:  httpH.NewRealtimeHandler(log, services.Hub, services.Store),
		Generate:  httpH.NewGenerateHandler(log, services.Panel),
	}
}

func wireRouter(cfg *config.Config, log *logger.Logger, metrics *observability.Metrics, handlers Handlers) *gin.Engine {
	return httpapi.NewRouter(httpapi.RouterConfig{
		Log:              log,
		Metrics:          metrics,
		ServiceName:      ServiceName,
		AllowedOrigins:   cfg.HTTP.AllowedOrigins,
		MaxRequestBytes:  cfg.HTTP.MaxRequestBytes,
		HealthHandler:    handlers.Health,
		CourseHandler:    handlers.Course,
		SelectionHandler: handlers.Selection,
		RealtimeHandler:  handlers.Realtime,
		GenerateHandler:  handlers.Generate,
	})
}
