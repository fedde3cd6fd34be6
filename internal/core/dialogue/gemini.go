package dialogue

import (
	"context"
	"crypto/tls"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiBackend implements Backend over the Gemini API with sampling tuned
// for varied, non-repetitive spoken replies.
type GeminiBackend struct {
	c     *genai.Client
	model string
}

func NewGeminiBackend(apiKey, model string) (*GeminiBackend, error) {
	tr := &http.Transport{
		Proxy:             http.ProxyFromEnvironment,
		TLSClientConfig:   &tls.Config{MinVersion: tls.VersionTLS12},
		ForceAttemptHTTP2: false,
		MaxIdleConns:      100,
		IdleConnTimeout:   90 * time.Second,
	}
	hc := &http.Client{Transport: tr, Timeout: 30 * time.Second}
	reqTimeout := 15 * time.Second
	cl, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: hc,
		HTTPOptions: genai.HTTPOptions{
			APIVersion: "v1",
			Timeout:    &reqTimeout,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiBackend{c: cl, model: model}, nil
}

func (g *GeminiBackend) Generate(ctx context.Context, system string, history []Message) (string, error) {
	temp := float32(0.9)
	presence := float32(0.2)
	frequency := float32(0.1)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		},
		Temperature:      &temp,
		PresencePenalty:  &presence,
		FrequencyPenalty: &frequency,
		MaxOutputTokens:  200,
	}

	contents := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}

	var lastErr error
	for i := 0; i < 3; i++ {
		resp, err := g.c.Models.GenerateContent(ctx, g.model, contents, cfg)
		if err != nil {
			lastErr = err
			if retriable(err) {
				time.Sleep(time.Duration(300*(i+1)) * time.Millisecond)
				continue
			}
			return "", err
		}
		if text := strings.TrimSpace(resp.Text()); text != "" {
			return text, nil
		}
		// The call itself succeeded. Report emptiness as an empty reply,
		// not an error, so the caller can apply its own fallback.
		lastErr = nil
		time.Sleep(time.Duration(300*(i+1)) * time.Millisecond)
	}
	return "", lastErr
}

func retriable(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "unexpected EOF") ||
		strings.Contains(s, "timeout") ||
		strings.Contains(s, "RST_STREAM") ||
		strings.Contains(s, "connection reset")
}
