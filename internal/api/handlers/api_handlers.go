package handlers

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"drowsiness-guard/internal/db/repository"
	"drowsiness-guard/internal/monitor"
	"drowsiness-guard/internal/sse"
	"drowsiness-guard/internal/utils"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// StatusSource liefert den aktuellen Zustand der Frame-Schleife
type StatusSource interface {
	Snapshot() monitor.Snapshot
}

// APIHandler behandelt API-Anfragen für das System
type APIHandler struct {
	status StatusSource
	repo   *repository.Repository
	hub    *sse.Hub
}

// NewAPIHandler erstellt einen neuen API-Handler. repo und hub dürfen nil sein,
// die zugehörigen Endpunkte antworten dann mit 503.
func NewAPIHandler(status StatusSource, repo *repository.Repository, hub *sse.Hub) *APIHandler {
	return &APIHandler{status: status, repo: repo, hub: hub}
}

// RegisterRoutes registriert alle API-Routen
func (h *APIHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/status", h.GetStatus)
	router.GET("/system", h.GetSystem)
	router.GET("/events", h.StreamEvents)

	// Episodenjournal
	router.GET("/episodes", h.ListEpisodes)
	router.GET("/sessions", h.ListSessions)
	router.GET("/sessions/:id", h.GetSession)
	router.GET("/stats", h.GetStatistics)
}

// GetStatus gibt den aktuellen Zustand der Überwachung zurück
func (h *APIHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.status.Snapshot())
}

// GetSystem gibt Prozess-, Host- und Schleifenstatistiken zurück
func (h *APIHandler) GetSystem(c *gin.Context) {
	c.JSON(http.StatusOK, utils.GetSystemStats(loopStats(h.status.Snapshot(), time.Now())))
}

func loopStats(snap monitor.Snapshot, now time.Time) utils.LoopStats {
	loop := utils.LoopStats{
		Running:         snap.Running,
		FramesProcessed: snap.Frames,
		LoopFPS:         snap.FPS,
	}
	if snap.Running && !snap.StartedAt.IsZero() {
		loop.UptimeSeconds = now.Sub(snap.StartedAt).Seconds()
	}
	return loop
}

func limitParam(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(repository.DefaultLimit)))
	if err != nil {
		return repository.DefaultLimit
	}
	return limit
}

func (h *APIHandler) journalAvailable(c *gin.Context) bool {
	if h.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "episode journal is disabled"})
		return false
	}
	return true
}

// ListEpisodes gibt die neuesten Episoden zurück
func (h *APIHandler) ListEpisodes(c *gin.Context) {
	if !h.journalAvailable(c) {
		return
	}
	episodes, err := h.repo.ListEpisodes(limitParam(c))
	if err != nil {
		log.WithError(err).Error("Failed to list episodes")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list episodes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"episodes": episodes, "count": len(episodes)})
}

// ListSessions gibt die neuesten Läufe zurück
func (h *APIHandler) ListSessions(c *gin.Context) {
	if !h.journalAvailable(c) {
		return
	}
	sessions, err := h.repo.ListSessions(limitParam(c))
	if err != nil {
		log.WithError(err).Error("Failed to list sessions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sessions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)})
}

// GetSession gibt einen Lauf mit seinen Episoden zurück
func (h *APIHandler) GetSession(c *gin.Context) {
	if !h.journalAvailable(c) {
		return
	}
	id := c.Param("id")

	session, err := h.repo.GetSession(id)
	if err != nil {
		log.WithError(err).Errorf("Failed to load session %s", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load session"})
		return
	}
	if session == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	episodes, err := h.repo.ListSessionEpisodes(id)
	if err != nil {
		log.WithError(err).Errorf("Failed to load episodes for session %s", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load episodes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session, "episodes": episodes})
}

// GetStatistics gibt die Zusammenfassung des Journals zurück
func (h *APIHandler) GetStatistics(c *gin.Context) {
	if !h.journalAvailable(c) {
		return
	}
	stats, err := h.repo.GetStatistics()
	if err != nil {
		log.WithError(err).Error("Failed to compute statistics")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// StreamEvents sendet Monitor-Ereignisse als Server-Sent Events
func (h *APIHandler) StreamEvents(c *gin.Context) {
	if h.hub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event stream is disabled"})
		return
	}

	client := make(sse.Client, 10)
	if !h.hub.Register(client) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event stream is shutting down"})
		return
	}
	defer h.hub.Unregister(client)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case msg, ok := <-client:
			if !ok {
				return false
			}
			c.SSEvent("monitor", string(msg))
			return true
		}
	})
}
