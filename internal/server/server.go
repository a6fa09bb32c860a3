package server

import (
	"context"

	"github.com/rs/zerolog"

	"impostor/internal/analytics"
	"impostor/internal/chat"
	"impostor/internal/config"
	"impostor/internal/coordinator"
	"impostor/internal/events"
	"impostor/internal/logger"
	"impostor/internal/metrics"
	"impostor/internal/roles"
	"impostor/internal/rooms"
	"impostor/internal/wshub"
)

// HistoryReader serves the read-only history endpoints.
type HistoryReader interface {
	Summary(ctx context.Context) (*analytics.Summary, error)
	Recent(ctx context.Context, limit int) ([]analytics.RecentGame, error)
	Leaderboard(ctx context.Context, limit int) ([]analytics.LeaderboardEntry, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	Config  config.Config
	Log     zerolog.Logger
	Hub     *wshub.Hub
	Rooms   *rooms.Registry
	Coord   *coordinator.Coordinator
	Chat    *chat.Channel
	Metrics *metrics.Metrics
	Catalog *roles.Catalog

	// Both are nil when running without a database.
	DB      pinger
	History HistoryReader
}

// New wires the in-memory game stack. bus may be nil, in which case finished
// games are not recorded anywhere.
func New(cfg config.Config, log zerolog.Logger, catalog *roles.Catalog, bus *events.Bus) *Server {
	if catalog == nil {
		catalog = roles.Builtin()
	}
	m := metrics.New()

	hub := wshub.NewHub(logger.Component(log, "hub"))
	hub.OnDrop = m.Dropped.Inc

	registry := rooms.NewRegistry()
	channel := chat.New(hub, cfg.TypingTimeout, logger.Component(log, "chat"))
	registry.OnRemove(channel.MarkForClear)

	coord := coordinator.New(
		registry,
		roles.NewAssigner(catalog, nil),
		hub,
		m,
		bus,
		logger.Component(log, "coordinator"),
		coordinator.Options{
			MinPlayers:    cfg.MinPlayers,
			MaxClueLength: cfg.MaxClueLength,
			RevealDelay:   cfg.RevealDelay,
		},
	)

	return &Server{
		Config:  cfg,
		Log:     log,
		Hub:     hub,
		Rooms:   registry,
		Coord:   coord,
		Chat:    channel,
		Metrics: m,
		Catalog: catalog,
	}
}
