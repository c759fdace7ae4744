package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"drowsiness-guard/config"
	"drowsiness-guard/internal/api/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Server stellt die Status-API bereit
type Server struct {
	httpServer *http.Server
}

// NewRouter baut die gin-Engine mit Middleware und allen API-Routen
func NewRouter(cfg config.ServerConfig, apiHandler *handlers.APIHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())

	if len(cfg.AllowedOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = cfg.AllowedOrigins
		router.Use(cors.New(corsCfg))
	} else {
		router.Use(cors.Default())
	}

	apiHandler.RegisterRoutes(router.Group("/api"))
	return router
}

// NewServer erstellt den HTTP-Server für die konfigurierte Adresse
func NewServer(cfg config.ServerConfig, apiHandler *handlers.APIHandler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:           NewRouter(cfg, apiHandler),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start lauscht im Hintergrund; Fehler nach dem Start werden nur geloggt
func (s *Server) Start() {
	go func() {
		log.Infof("Starting status API on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("Status API failed: %v", err)
		}
	}()
}

// Shutdown beendet den Server und wartet auf laufende Anfragen
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info("Stopping status API...")
	return s.httpServer.Shutdown(ctx)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		}).Debug("API request")
	}
}
