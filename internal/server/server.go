package server

import (
	"context"
	"net/http"
	"time"

	"sentiment-api/internal/handler"
	"sentiment-api/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Server struct {
	router *gin.Engine
	logger *zap.Logger
}

func NewServer(sentimentHandler handler.SentimentHandler, logger *zap.Logger) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS())

	s := &Server{
		router: router,
		logger: logger,
	}

	s.setupRoutes(sentimentHandler)

	return s
}

func (s *Server) setupRoutes(sentimentHandler handler.SentimentHandler) {
	// Ping route for health check
	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	sentiment := s.router.Group("/sentiment")
	{
		sentiment.POST("", sentimentHandler.CreateSentiment)
		sentiment.POST("/lote", sentimentHandler.UploadBatch)
		sentiment.GET("/stats/:quantidade", sentimentHandler.GetStats)
		sentiment.GET("/:id", sentimentHandler.GetSentimentByID)
		sentiment.PUT("/:id", sentimentHandler.UpdateSentiment)
		sentiment.DELETE("/:id", sentimentHandler.DeleteSentiment)
	}
}

// Handler exposes the underlying http.Handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.logger.Info("Server shutting down")
	return srv.Shutdown(shutdownCtx)
}
