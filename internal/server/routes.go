package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"impostor/internal/analytics"
	"impostor/internal/config"
	"impostor/internal/db"
	"impostor/internal/events"
	"impostor/internal/logger"
	"impostor/internal/roles"
)

func Run() error {
	envErr := godotenv.Load()
	appCfg := config.Load()
	log := logger.New(appCfg.LogLevel, appCfg.LogPretty)
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		log.Warn().Err(envErr).Msg("could not read .env")
	}

	catalog := roles.Builtin()
	if appCfg.WordsFile != "" {
		loaded, err := roles.LoadFile(appCfg.WordsFile)
		if err != nil {
			return fmt.Errorf("loading word catalog: %w", err)
		}
		catalog = loaded
		log.Info().Str("path", appCfg.WordsFile).Msg("word catalog loaded")
	}

	// Optional database connection
	var database *db.DB
	var bus *events.Bus
	dbLog := logger.Component(log, "db")
	if appCfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		conn, err := db.Connect(ctx, appCfg.DatabaseURL, dbLog)
		if err != nil {
			dbLog.Error().Err(err).Msg("failed to connect, running without database")
		} else if err := conn.Migrate(ctx); err != nil {
			dbLog.Error().Err(err).Msg("migration failed, running without database")
			conn.Close()
		} else {
			database = conn
			bus = events.NewBus()
		}
		cancel()
	} else {
		dbLog.Info().Msg("DATABASE_URL not set, running without database")
	}

	srv := New(appCfg, log, catalog, bus)
	if database != nil {
		srv.DB = database
		srv.History = analytics.NewQueries(database)
		go historyWriter(context.Background(), database, bus.GameResults, srv.Metrics, dbLog)
	}

	addr := "0.0.0.0:" + appCfg.Port
	log.Info().Str("addr", addr).Msgf("server listening on http://localhost:%s", appCfg.Port)
	return http.ListenAndServe(addr, srv.Router())
}

// Router builds the HTTP surface.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger.Component(s.Log, "http")))
	r.Use(cors.New(corsConfig(s.Config.AllowedOrigins)))

	r.GET("/health", s.handleHealth)
	r.GET("/ws", s.handleWS)
	r.GET("/rooms/:code", s.handleRoom)
	r.GET("/rooms/:code/qr.png", s.handleRoomQR)
	r.GET("/topics", s.handleTopics)
	r.GET("/history", s.handleHistory)
	r.GET("/stats", s.handleStats)
	r.GET("/leaderboard", s.handleLeaderboard)
	r.GET("/metrics", gin.WrapH(s.Metrics.Handler()))
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Origin"},
		MaxAge:       12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}

// originPatterns turns configured origins into websocket host patterns.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		if _, host, ok := strings.Cut(o, "://"); ok {
			o = host
		}
		patterns = append(patterns, o)
	}
	return patterns
}

func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}
