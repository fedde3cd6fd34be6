package http

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/edvoice/voicetutor-backend/internal/config"
	"github.com/edvoice/voicetutor-backend/internal/core/dialogue"
	"github.com/edvoice/voicetutor-backend/internal/core/orchestrator"
	"github.com/edvoice/voicetutor-backend/internal/core/stt"
	"github.com/edvoice/voicetutor-backend/internal/core/tts"
	"github.com/edvoice/voicetutor-backend/internal/http/handlers"
	"github.com/edvoice/voicetutor-backend/internal/repo/memory"
	"github.com/edvoice/voicetutor-backend/internal/repo/voicecache"
)

func NewRouter(cfg config.Config, log *logrus.Logger) *gin.Engine {
	r := gin.Default()

	var cache voicecache.Store
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		cache = voicecache.NewRedisStore(client, 0)
		log.WithField("addr", cfg.RedisAddr).Info("using redis voice cache")
	} else {
		cache = voicecache.NewMemoryStore()
	}

	repo := memory.NewSessionRepo()
	transcriber := stt.New(stt.Config{
		APIKey:  cfg.DeepgramAPIKey,
		BaseURL: cfg.DeepgramBaseURL,
	}, log)
	synth := tts.NewSynthesizer(tts.NewGoogleBackend(cfg.GoogleTTSAPIKey, cfg.GoogleTTSBaseURL), cache, log)

	var backend dialogue.Backend
	if gb, err := dialogue.NewGeminiBackend(cfg.GeminiAPIKey, cfg.GeminiModel); err != nil {
		log.WithError(err).Warn("gemini backend unavailable, replies will use fallback text")
	} else {
		backend = gb
	}
	engine := dialogue.NewEngine(backend, log)

	orch := orchestrator.New(repo, transcriber, engine, synth, log)

	ch := handlers.NewConversationHandler(orch)
	sh := handlers.NewStatusHandler(cfg, repo, synth, engine)

	r.GET("/", sh.Root)
	r.GET("/health", sh.Health)
	r.GET("/voices", sh.Voices)
	r.GET("/v1/conversation", ch.WS)
	return r
}
