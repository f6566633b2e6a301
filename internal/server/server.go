// Package server はWebhookのHTTPサーバーを提供する。
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/config"
)

// Server はHTTPサーバーのラッパー。
type Server struct {
	httpServer *http.Server
}

// New は新しいServerを生成する。
func New(cfg *config.Config, h *DirectoryHandler) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(TraceIDMiddleware(), LoggingMiddleware(), RecoveryMiddleware())

	SetupRouter(engine, h)

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           engine,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Run はサーバーを起動する。
func (s *Server) Run() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown はサーバーを停止する。
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
