package server

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"impostor/internal/coordinator"
	"impostor/internal/engine"
	"impostor/internal/events"
	"impostor/internal/wshub"
)

const (
	sendBuffer = 256
	readLimit  = 16 << 10
)

var (
	errRateLimited   = engine.NewError(engine.KindValidation, "too many actions, slow down")
	errMalformed     = engine.NewError(engine.KindValidation, "malformed message")
	errUnknownAction = engine.NewError(engine.KindValidation, "unknown action")
)

type connectedPayload struct {
	ID string `json:"id"`
}

func (s *Server) handleWS(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns: originPatterns(s.Config.AllowedOrigins),
	})
	if err != nil {
		s.Log.Warn().Err(err).Msg("websocket accept failed")
		return
	}
	conn.SetReadLimit(readLimit)

	id := uuid.NewString()
	log := s.Log.With().Str("conn_id", id).Logger()
	client := wshub.NewClient(id, conn, sendBuffer)
	s.Hub.Register(client)
	s.Metrics.Connections.Inc()
	log.Debug().Msg("connection opened")

	ctx, cancel := context.WithCancel(c.Request.Context())
	go client.WritePump(ctx)
	s.Hub.Send(id, events.New(events.Connected, connectedPayload{ID: id}))

	s.readLoop(ctx, client, log)

	s.Coord.Disconnect(id)
	s.Chat.Disconnect(id)
	s.Hub.Unregister(id)
	s.Metrics.Connections.Dec()
	cancel()
	conn.Close(websocket.StatusNormalClosure, "")
	log.Debug().Msg("connection closed")
}

func (s *Server) readLoop(ctx context.Context, client *wshub.Client, log zerolog.Logger) {
	limit := rate.Limit(s.Config.ActionRate)
	if s.Config.ActionRate <= 0 {
		limit = rate.Inf
	}
	limiter := rate.NewLimiter(limit, max(s.Config.ActionBurst, 1))

	for {
		_, data, err := client.Conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				if !errors.Is(err, context.Canceled) {
					log.Debug().Err(err).Msg("read ended")
				}
			}
			return
		}
		if !limiter.Allow() {
			s.Metrics.RateLimited.Inc()
			s.reject(client.ID, events.Error, errRateLimited, log)
			continue
		}
		var in wshub.Inbound
		if err := json.Unmarshal(data, &in); err != nil || in.Type == "" {
			s.reject(client.ID, events.Error, errMalformed, log)
			continue
		}
		s.dispatch(client.ID, in, log)
	}
}

// reject unicasts a rejection to the acting connection only.
func (s *Server) reject(connID, typ string, err error, log zerolog.Logger) {
	kind := "other"
	if k, ok := engine.KindOf(err); ok {
		kind = k.String()
	}
	s.Metrics.Rejections.WithLabelValues(kind).Inc()
	log.Debug().Err(err).Str("kind", kind).Msg("action rejected")
	s.Hub.Send(connID, coordinator.ErrorMessage(typ, err))
}
