package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edvoice/voicetutor-backend/internal/config"
	"github.com/edvoice/voicetutor-backend/internal/core/dialogue"
	"github.com/edvoice/voicetutor-backend/internal/core/tts"
	"github.com/edvoice/voicetutor-backend/internal/repo/memory"
)

type StatusHandler struct {
	Cfg    config.Config
	Repo   *memory.SessionRepo
	Synth  *tts.Synthesizer
	Engine *dialogue.Engine
}

func NewStatusHandler(cfg config.Config, repo *memory.SessionRepo, synth *tts.Synthesizer, engine *dialogue.Engine) *StatusHandler {
	return &StatusHandler{Cfg: cfg, Repo: repo, Synth: synth, Engine: engine}
}

func (h *StatusHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Voice Tutor Backend",
		"version": "1.0.0",
		"endpoints": gin.H{
			"websocket": "/v1/conversation",
			"health":    "/health",
			"voices":    "/voices",
		},
	})
}

func (h *StatusHandler) Health(c *gin.Context) {
	status := "ok"
	if h.Cfg.GoogleTTSAPIKey == "" {
		status = "degraded"
	}

	stats := h.Synth.Stats()
	c.JSON(http.StatusOK, gin.H{
		"status":               status,
		"active_conversations": h.Repo.Count(),
		"optimization_stats": gin.H{
			"cache_hits":           stats.CacheHits,
			"total_requests":       stats.TotalRequests,
			"cache_hit_rate":       stats.CacheHitRate,
			"cached_phrases":       stats.CachedPhrases,
			"active_conversations": h.Engine.ActiveContexts(),
		},
		"sensitivity_settings": gin.H{
			"audio_threshold":      "200 bytes",
			"confidence_threshold": "0.05",
			"short_phrases":        "accepted at any confidence",
		},
		"api_keys_configured": gin.H{
			"deepgram":   h.Cfg.DeepgramAPIKey != "",
			"gemini":     h.Cfg.GeminiAPIKey != "",
			"google_tts": h.Cfg.GoogleTTSAPIKey != "",
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *StatusHandler) Voices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"voices":       tts.Catalog(),
		"default":      tts.DefaultVoiceID,
		"recommended":  tts.DefaultVoiceID,
		"provider":     "Google Cloud Text-to-Speech",
		"total_voices": len(tts.Catalog()),
	})
}
