package tts

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/edvoice/voicetutor-backend/internal/repo/voicecache"
)

// MinValidAudio is the floor below which backend output is treated as a
// failed synthesis rather than deliverable audio.
const MinValidAudio = 500

// Synthesizer turns reply text into expressive audio: classify tone, render
// SSML, consult the cache, hit the backend on a miss, validate, store.
// Failures surface as empty output, never as errors; the caller must keep a
// textual fallback path.
type Synthesizer struct {
	backend Backend
	cache   voicecache.Store
	log     *logrus.Logger

	totalRequests atomic.Int64
	cacheHits     atomic.Int64
}

func NewSynthesizer(backend Backend, cache voicecache.Store, log *logrus.Logger) *Synthesizer {
	return &Synthesizer{backend: backend, cache: cache, log: log}
}

// Synthesize produces audio for text using the voice resolved from voiceID.
// Empty output means synthesis was unavailable for this utterance.
func (s *Synthesizer) Synthesize(ctx context.Context, text, voiceID string) []byte {
	s.totalRequests.Add(1)

	if strings.TrimSpace(text) == "" {
		s.log.Warn("empty text provided for synthesis")
		return nil
	}

	voice := LookupVoice(voiceID)
	key := voicecache.Key{VoiceName: voice.Name, Language: voice.Language, Text: text}

	if audio, ok := s.cache.Get(key); ok {
		hits := s.cacheHits.Add(1)
		s.log.WithFields(logrus.Fields{
			"voice":    voice.Name,
			"hit_rate": fmt.Sprintf("%.2f", float64(hits)/float64(s.totalRequests.Load())),
		}).Info("voice cache hit")
		return audio
	}

	tone := Classify(text)
	rendered := RenderSSML(text, tone)

	input := Input{Text: rendered}
	if IsSSML(rendered) {
		input = Input{SSML: rendered}
	}

	audio, err := s.backend.Synthesize(ctx, input, voice)
	if err != nil {
		s.log.WithError(err).WithField("voice", voice.Name).Error("synthesis failed")
		return nil
	}
	if len(audio) < MinValidAudio {
		s.log.WithField("bytes", len(audio)).Error("audio validation failed")
		return nil
	}

	s.cache.Put(key, audio)
	s.log.WithFields(logrus.Fields{
		"voice": voice.Name,
		"tone":  tone,
		"bytes": len(audio),
	}).Info("synthesis completed")
	return audio
}

// Stats exposes cache observability counters for the health endpoint.
type Stats struct {
	CacheHits     int64  `json:"cache_hits"`
	TotalRequests int64  `json:"total_requests"`
	CacheHitRate  string `json:"cache_hit_rate"`
	CachedPhrases int    `json:"cached_phrases"`
}

func (s *Synthesizer) Stats() Stats {
	total := s.totalRequests.Load()
	hits := s.cacheHits.Load()
	denom := total
	if denom == 0 {
		denom = 1
	}
	return Stats{
		CacheHits:     hits,
		TotalRequests: total,
		CacheHitRate:  fmt.Sprintf("%.2f%%", 100*float64(hits)/float64(denom)),
		CachedPhrases: s.cache.Size(),
	}
}
