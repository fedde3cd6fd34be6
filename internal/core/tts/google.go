package tts

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Backend is the external synthesis call. Input carries either SSML or plain
// text, never both.
type Backend interface {
	Synthesize(ctx context.Context, input Input, voice Voice) ([]byte, error)
}

type Input struct {
	Text string
	SSML string
}

// GoogleBackend talks to the Cloud Text-to-Speech REST API with a fixed
// audio profile: MP3 at 24kHz, slightly slowed, pitch and gain tuned for
// engagement on headphone-class devices.
type GoogleBackend struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewGoogleBackend(apiKey, baseURL string) *GoogleBackend {
	if baseURL == "" {
		baseURL = "https://texttospeech.googleapis.com"
	}
	tr := &http.Transport{
		Proxy:             http.ProxyFromEnvironment,
		TLSClientConfig:   &tls.Config{MinVersion: tls.VersionTLS12},
		ForceAttemptHTTP2: false,
		MaxIdleConns:      100,
		IdleConnTimeout:   90 * time.Second,
	}
	return &GoogleBackend{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Transport: tr, Timeout: 30 * time.Second},
	}
}

type synthesizeRequest struct {
	Input       synthesisInput `json:"input"`
	Voice       voiceSelection `json:"voice"`
	AudioConfig ttsAudioConfig `json:"audioConfig"`
}

type synthesisInput struct {
	Text string `json:"text,omitempty"`
	SSML string `json:"ssml,omitempty"`
}

type voiceSelection struct {
	LanguageCode string `json:"languageCode"`
	Name         string `json:"name"`
	SSMLGender   string `json:"ssmlGender"`
}

type ttsAudioConfig struct {
	AudioEncoding    string   `json:"audioEncoding"`
	SpeakingRate     float64  `json:"speakingRate"`
	Pitch            float64  `json:"pitch"`
	VolumeGainDB     float64  `json:"volumeGainDb"`
	SampleRateHertz  int      `json:"sampleRateHertz"`
	EffectsProfileID []string `json:"effectsProfileId"`
}

type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

func (g *GoogleBackend) Synthesize(ctx context.Context, input Input, voice Voice) ([]byte, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("google tts api key not configured")
	}

	reqBody := synthesizeRequest{
		Input: synthesisInput{Text: input.Text, SSML: input.SSML},
		Voice: voiceSelection{
			LanguageCode: voice.Language,
			Name:         voice.Name,
			SSMLGender:   genderParam(voice.Gender),
		},
		AudioConfig: ttsAudioConfig{
			AudioEncoding:    "MP3",
			SpeakingRate:     0.92,
			Pitch:            1.5,
			VolumeGainDB:     6.0,
			SampleRateHertz:  24000,
			EffectsProfileID: []string{"headphone-class-device"},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("encoding synthesis request: %w", err)
	}

	url := g.baseURL + "/v1/text:synthesize?key=" + g.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tts returned status %d", resp.StatusCode)
	}

	var out synthesizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding tts response: %w", err)
	}

	audio, err := base64.StdEncoding.DecodeString(out.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("decoding audio content: %w", err)
	}
	return audio, nil
}

func genderParam(gender string) string {
	if gender == "male" {
		return "MALE"
	}
	return "FEMALE"
}
