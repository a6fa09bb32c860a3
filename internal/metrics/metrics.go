package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the process collectors. Each instance owns its registry so
// tests can build as many as they like.
type Metrics struct {
	Rooms         prometheus.Gauge
	Connections   prometheus.Gauge
	GamesStarted  *prometheus.CounterVec
	GamesFinished *prometheus.CounterVec
	Eliminations  prometheus.Counter
	Revotes       prometheus.Counter
	Actions       *prometheus.CounterVec
	Rejections    *prometheus.CounterVec
	Dropped       prometheus.Counter
	RateLimited   prometheus.Counter
	HistoryWrites *prometheus.CounterVec

	registry *prometheus.Registry
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Rooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "impostor_rooms",
			Help: "Rooms currently open.",
		}),
		Connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "impostor_connections",
			Help: "Open websocket connections.",
		}),
		GamesStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "impostor_games_started_total",
			Help: "Games started, by mode.",
		}, []string{"mode"}),
		GamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "impostor_games_finished_total",
			Help: "Games finished, by end reason and winning side.",
		}, []string{"reason", "winner"}),
		Eliminations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "impostor_eliminations_total",
			Help: "Players eliminated by vote.",
		}),
		Revotes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "impostor_revotes_total",
			Help: "Tied votes that reopened voting among the tied players.",
		}),
		Actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "impostor_actions_total",
			Help: "Inbound client actions, by type.",
		}, []string{"action"}),
		Rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "impostor_rejections_total",
			Help: "Rejected client actions, by error kind.",
		}, []string{"kind"}),
		Dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "impostor_dropped_messages_total",
			Help: "Outbound messages dropped on a full connection buffer.",
		}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "impostor_rate_limited_total",
			Help: "Inbound actions rejected by the per-connection limiter.",
		}),
		HistoryWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "impostor_history_writes_total",
			Help: "Game history writes, by status.",
		}, []string{"status"}),
		registry: reg,
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Rooms, m.Connections, m.GamesStarted, m.GamesFinished, m.Eliminations,
		m.Revotes, m.Actions, m.Rejections, m.Dropped, m.RateLimited, m.HistoryWrites,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Winner labels the side that won a game.
func Winner(impostorWon bool) string {
	if impostorWon {
		return "impostor"
	}
	return "group"
}
