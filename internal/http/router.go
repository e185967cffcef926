package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/coursehub/internal/http/handlers"
	httpMW "github.com/yungbote/coursehub/internal/http/middleware"
	"github.com/yungbote/coursehub/internal/observability"
	"github.com/yungbote/coursehub/internal/platform/logger"
)

type RouterConfig struct {
	Log     *logger.Logger
	Metrics *observability.Metrics

	ServiceName     string
	AllowedOrigins  []string
	MaxRequestBytes int64

	HealthHandler    *httpH.HealthHandler
	CourseHandler    *httpH.CourseHandler
	SelectionHandler *httpH.SelectionHandler
	RealtimeHandler  *httpH.RealtimeHandler
	GenerateHandler  *httpH.GenerateHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))
	r.Use(httpMW.LimitBody(cfg.MaxRequestBytes))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))

	api := r.Group("/api")
	{
		// Courses
		if cfg.CourseHandler != nil {
			api.GET("/courses", cfg.CourseHandler.ListCourses)
			api.GET("/courses/:id", cfg.CourseHandler.GetCourse)
			api.POST("/courses/:id/sessions/:sessionId/complete", cfg.CourseHandler.CompleteSession)
			api.POST("/courses/:id/progress/recompute", cfg.CourseHandler.RecomputeProgress)
			api.GET("/dashboard", cfg.CourseHandler.Dashboard)
		}

		// Selection
		if cfg.SelectionHandler != nil {
			api.GET("/selection", cfg.SelectionHandler.GetSelection)
			api.PUT("/selection", cfg.SelectionHandler.PutSelection)
			api.DELETE("/selection", cfg.SelectionHandler.ClearSelection)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			api.GET("/events", cfg.RealtimeHandler.SSEStream)
		}

		// Generation
		if cfg.GenerateHandler != nil {
			api.POST("/generate", cfg.GenerateHandler.Generate)
			api.GET("/generate/panel", cfg.GenerateHandler.PanelState)
			api.PUT("/generate/panel/tool", cfg.GenerateHandler.SelectTool)
		}
	}

	return r
}
