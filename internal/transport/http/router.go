package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/connect4-table/internal/service/game"
	"github.com/iamasit07/connect4-table/internal/transport/http/middleware"
)

type RouterConfig struct {
	Tables         *TableHandler
	Results        *ResultsHandler
	Socket         gin.HandlerFunc // optional WebSocket endpoint
	AllowedOrigins []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	router.GET("/healthz", healthHandler(cfg.Tables.Service))

	// Public Routes
	router.POST("/api/tables", cfg.Tables.Create)
	router.GET("/api/results", cfg.Results.Recent)
	router.GET("/api/results/tally", cfg.Results.Tally)

	// Table Routes, only for the token holder
	tables := router.Group("/api/tables/:id")
	tables.Use(middleware.TableAuth(cfg.Tables.Secret))
	{
		tables.GET("", cfg.Tables.Get)
		tables.POST("/drop", cfg.Tables.Drop)
		tables.POST("/reset", cfg.Tables.Reset)
		tables.DELETE("", cfg.Tables.Delete)
	}

	// WebSocket Route (auth handled inside the WS handler itself)
	if cfg.Socket != nil {
		router.GET("/ws/tables/:id", cfg.Socket)
	}

	return router
}

func healthHandler(svc *game.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"tables": svc.Tables.Count(),
		})
	}
}
