package main

import (
	"github.com/joho/godotenv"

	"github.com/edvoice/voicetutor-backend/internal/config"
	h "github.com/edvoice/voicetutor-backend/internal/http"
	"github.com/edvoice/voicetutor-backend/internal/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logging.New(cfg)

	log.WithField("deepgram", logging.MaskKey(cfg.DeepgramAPIKey)).Info("deepgram key")
	log.WithField("gemini", logging.MaskKey(cfg.GeminiAPIKey)).Info("gemini key")
	log.WithField("google_tts", logging.MaskKey(cfg.GoogleTTSAPIKey)).Info("google tts key")
	if cfg.DeepgramAPIKey == "" || cfg.GeminiAPIKey == "" || cfg.GoogleTTSAPIKey == "" {
		log.Warn("one or more backend keys missing; conversations will degrade to fallback behavior")
	}

	r := h.NewRouter(cfg, log)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
