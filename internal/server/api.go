package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
	qrSize              = 256
)

func (s *Server) handleHealth(c *gin.Context) {
	status := "ok"
	if s.DB != nil {
		if err := s.DB.Ping(c.Request.Context()); err != nil {
			status = "db_error"
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

func (s *Server) joinURL(code string) string {
	return s.Config.PublicURL + "/?room=" + code
}

func (s *Server) handleRoom(c *gin.Context) {
	info, ok := s.Coord.RoomInfo(c.Param("code"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	body := gin.H{
		"code":    info.Code,
		"players": info.Players,
		"started": info.Started,
		"joinUrl": s.joinURL(info.Code),
	}
	if info.Mode != "" {
		body["mode"] = info.Mode
	}
	c.JSON(http.StatusOK, body)
}

// handleRoomQR renders the room's join link as a PNG QR code.
func (s *Server) handleRoomQR(c *gin.Context) {
	info, ok := s.Coord.RoomInfo(c.Param("code"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	png, err := qrcode.Encode(s.joinURL(info.Code), qrcode.Medium, qrSize)
	if err != nil {
		s.Log.Error().Err(err).Str("room_code", info.Code).Msg("qr encode")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "qr encode failed"})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}

// handleTopics lists the categories and subtopics a host can pick from.
func (s *Server) handleTopics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"topics": s.Catalog.Topics()})
}

func (s *Server) historyEnabled(c *gin.Context) bool {
	if s.History == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history disabled"})
		return false
	}
	return true
}

func parseLimit(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultHistoryLimit
	}
	return min(n, maxHistoryLimit)
}

func (s *Server) handleHistory(c *gin.Context) {
	if !s.historyEnabled(c) {
		return
	}
	games, err := s.History.Recent(c.Request.Context(), parseLimit(c.Query("limit")))
	if err != nil {
		s.historyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": games})
}

func (s *Server) handleStats(c *gin.Context) {
	if !s.historyEnabled(c) {
		return
	}
	summary, err := s.History.Summary(c.Request.Context())
	if err != nil {
		s.historyError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleLeaderboard(c *gin.Context) {
	if !s.historyEnabled(c) {
		return
	}
	entries, err := s.History.Leaderboard(c.Request.Context(), parseLimit(c.Query("limit")))
	if err != nil {
		s.historyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "generatedAt": time.Now().UTC()})
}

func (s *Server) historyError(c *gin.Context, err error) {
	s.Log.Error().Err(err).Str("path", c.FullPath()).Msg("history query failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "history unavailable"})
}
