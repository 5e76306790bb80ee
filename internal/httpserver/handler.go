package httpserver

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
)

func (srv HTTPServer) mapHandlers() {
	srv.registerMiddlewares()
	srv.registerSystemRoutes()
	srv.registerDomainRoutes()
}

func (srv HTTPServer) registerMiddlewares() {
	srv.gin.Use(gin.Recovery())
}

func (srv HTTPServer) registerSystemRoutes() {
	srv.gin.GET("/health", srv.healthCheck)
	srv.gin.GET("/ready", srv.readyCheck)
	srv.gin.GET("/live", srv.liveCheck)
}

func (srv HTTPServer) registerDomainRoutes() {
	srv.gin.POST("/webhook/telegram", srv.telegramHandler.HandleWebhook)
	srv.l.Infof(context.Background(), "Telegram webhook route registered at POST /webhook/telegram")
}

// Run maps all routes and serves until the listener fails.
func (srv HTTPServer) Run() error {
	srv.mapHandlers()
	srv.l.Infof(context.Background(), "HTTP server listening on :%d (%s)", srv.port, srv.environment)
	return srv.gin.Run(fmt.Sprintf(":%d", srv.port))
}
