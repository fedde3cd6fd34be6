// Package stt transcribes utterance audio through Deepgram's prerecorded
// endpoint, tuned for the lowest possible detection latency. Every failure
// mode reads as "no speech": callers only ever see an empty transcript.
package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// MinAudioBytes rejects frames too small to contain speech; frames at
	// or below this size never reach the backend.
	MinAudioBytes = 200
	// confidenceFloor accepts nearly everything; short utterances score
	// badly even when correct, hence the two-word override below.
	confidenceFloor  = 0.05
	shortPhraseWords = 2

	requestTimeout = 30 * time.Second
)

type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Language   string
	HTTPClient *http.Client
}

type Transcriber struct {
	cfg  Config
	http *http.Client
	log  *logrus.Logger
}

func New(cfg Config, log *logrus.Logger) *Transcriber {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.deepgram.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "nova-2"
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: requestTimeout}
	}
	return &Transcriber{cfg: cfg, http: client, log: log}
}

type deepgramResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string  `json:"transcript"`
				Confidence float64 `json:"confidence"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// Transcribe converts audio bytes to text. An empty result means no usable
// speech was detected; it is never an error.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte) string {
	if len(audio) <= MinAudioBytes {
		t.log.WithField("bytes", len(audio)).Debug("audio chunk too small, skipping transcription")
		return ""
	}
	if t.cfg.APIKey == "" {
		t.log.Error("deepgram api key not configured")
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.listenURL(), bytes.NewReader(audio))
	if err != nil {
		t.log.WithError(err).Error("building deepgram request failed")
		return ""
	}
	req.Header.Set("Authorization", "Token "+t.cfg.APIKey)
	req.Header.Set("Content-Type", "audio/webm")

	resp, err := t.http.Do(req)
	if err != nil {
		t.log.WithError(err).Error("deepgram request failed")
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.log.WithField("status", resp.StatusCode).Error("deepgram returned non-200")
		return ""
	}

	var result deepgramResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.log.WithError(err).Error("decoding deepgram response failed")
		return ""
	}

	if len(result.Results.Channels) == 0 || len(result.Results.Channels[0].Alternatives) == 0 {
		t.log.Warn("no alternatives in deepgram response")
		return ""
	}

	alt := result.Results.Channels[0].Alternatives[0]
	transcript := strings.TrimSpace(alt.Transcript)
	return t.gate(transcript, alt.Confidence)
}

// gate applies the sensitivity rules: accept above the confidence floor, and
// accept any non-empty transcript of at most two words regardless of score.
func (t *Transcriber) gate(transcript string, confidence float64) string {
	if transcript == "" {
		return ""
	}
	if confidence > confidenceFloor {
		t.log.WithFields(logrus.Fields{
			"transcript": transcript,
			"confidence": confidence,
		}).Info("transcript accepted")
		return transcript
	}
	if len(strings.Fields(transcript)) <= shortPhraseWords {
		t.log.WithField("transcript", transcript).Info("accepting short phrase despite low confidence")
		return transcript
	}
	t.log.WithFields(logrus.Fields{
		"transcript": transcript,
		"confidence": confidence,
	}).Warn("transcript rejected, confidence too low")
	return ""
}

func (t *Transcriber) listenURL() string {
	params := url.Values{}
	params.Set("model", t.cfg.Model)
	params.Set("language", t.cfg.Language)
	params.Set("smart_format", "true")
	params.Set("punctuate", "true")
	params.Set("diarize", "false")
	params.Set("filler_words", "true")
	params.Set("interim_results", "false")
	params.Set("utterances", "true")
	params.Set("utt_split", "0.3")
	params.Set("endpointing", "10")
	params.Set("no_delay", "true")
	params.Set("multichannel", "false")
	params.Set("alternatives", "1")
	params.Set("profanity_filter", "false")
	params.Set("redact", "false")
	params.Set("detect_language", "false")
	params.Set("paragraphs", "false")
	params.Set("summarize", "false")
	return t.cfg.BaseURL + "/listen?" + params.Encode()
}
