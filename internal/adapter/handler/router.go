package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/johnquangdev/meeting-agent/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-agent/pkg/config"
	"github.com/johnquangdev/meeting-agent/pkg/jwt"
)

// Router holds all handlers
type Router struct {
	cfg               *config.Config
	webhookHandler    *WebhookHandler
	meetingController *MeetingController
	jwtManager        *jwt.Manager
	gatherer          prometheus.Gatherer
}

// NewRouter creates a new router with all handlers
func NewRouter(
	cfg *config.Config,
	webhookHandler *WebhookHandler,
	meetingController *MeetingController,
	jwtManager *jwt.Manager,
	gatherer prometheus.Gatherer,
) *Router {
	return &Router{
		cfg:               cfg,
		webhookHandler:    webhookHandler,
		meetingController: meetingController,
		jwtManager:        jwtManager,
		gatherer:          gatherer,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)

	if rt.gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(rt.gatherer, promhttp.HandlerOpts{})))
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1")

	rt.setupWebhookRoutes(v1)
	rt.setupMeetingRoutes(v1)
}

// setupWebhookRoutes configures provider callbacks
func (rt *Router) setupWebhookRoutes(g *echo.Group) {
	webhooks := g.Group("/webhooks")
	webhooks.POST("/call", rt.webhookHandler.HandleCallWebhook)
}

// setupMeetingRoutes configures operator routes; all require an operator token
func (rt *Router) setupMeetingRoutes(g *echo.Group) {
	meetings := g.Group("/meetings",
		middleware.EchoAuth(rt.jwtManager),
		middleware.RequireRole(jwt.RoleOperator),
	)

	meetings.GET("/:id", rt.meetingController.GetMeeting)
	meetings.POST("/:id/process", rt.meetingController.ProcessMeeting)
	meetings.POST("/:id/cancel", rt.meetingController.CancelMeeting)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}
