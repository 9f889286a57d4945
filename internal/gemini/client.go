// Package gemini is a minimal HTTP client for the Google Gemini API,
// covering the two call shapes the generation pipeline needs: structured
// JSON completion and image generation.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// Model tiers. Stages that need deep reasoning (world building, logic
// validation) run on the pro tier; bulk content runs on flash.
type Tier string

const (
	TierFlash Tier = "flash"
	TierPro   Tier = "pro"
)

// Config holds client settings.
type Config struct {
	APIKey     string
	BaseURL    string
	FlashModel string
	ProModel   string
	ImageModel string
	Timeout    time.Duration
	MaxRetries int
}

// DefaultConfig returns sensible defaults for the given API key.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:     apiKey,
		BaseURL:    "https://generativelanguage.googleapis.com/v1beta",
		FlashModel: "gemini-2.5-flash",
		ProModel:   "gemini-2.5-pro",
		ImageModel: "gemini-2.5-flash-image",
		Timeout:    5 * time.Minute,
		MaxRetries: 3,
	}
}

// Client talks to the Gemini generateContent endpoint. Safe for
// concurrent use.
type Client struct {
	cfg        Config
	httpClient *http.Client
	sleep      func(context.Context, time.Duration) error

	mu          sync.Mutex
	lastRequest time.Time
}

// NewClient creates a Client with default settings.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(DefaultConfig(apiKey))
}

// NewClientWithConfig creates a Client with custom settings. Zero fields
// fall back to defaults.
func NewClientWithConfig(cfg Config) *Client {
	def := DefaultConfig(cfg.APIKey)
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.FlashModel == "" {
		cfg.FlashModel = def.FlashModel
	}
	if cfg.ProModel == "" {
		cfg.ProModel = def.ProModel
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = def.ImageModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		sleep:      sleepCtx,
	}
}

// SetSleep overrides the retry backoff sleep (for testing).
func (c *Client) SetSleep(fn func(context.Context, time.Duration) error) {
	c.sleep = fn
}

func (c *Client) modelFor(tier Tier) string {
	if tier == TierPro {
		return c.cfg.ProModel
	}
	return c.cfg.FlashModel
}

// pace enforces a minimum spacing between outgoing requests.
func (c *Client) pace() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elapsed := time.Since(c.lastRequest); elapsed < 100*time.Millisecond {
		time.Sleep(100*time.Millisecond - elapsed)
	}
	c.lastRequest = time.Now()
}

// GenerateJSON sends a prompt with a response schema and returns the raw
// JSON bytes of the completion. Rate-limit responses (429) are retried
// with exponential backoff; other API errors fail immediately.
func (c *Client) GenerateJSON(ctx context.Context, tier Tier, systemPrompt, userPrompt string, schema map[string]interface{}) ([]byte, error) {
	if c.cfg.APIKey == "" {
		return nil, fmt.Errorf("API key not configured")
	}

	reqBody := request{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: userPrompt}}},
		},
		GenerationConfig: generationConfig{
			Temperature:      1.0,
			ResponseMimeType: "application/json",
			ResponseSchema:   schema,
		},
	}
	if systemPrompt != "" {
		reqBody.SystemInstruction = &content{Parts: []part{{Text: systemPrompt}}}
	}

	resp, err := c.post(ctx, c.modelFor(tier), reqBody)
	if err != nil {
		return nil, err
	}

	text, err := firstText(resp)
	if err != nil {
		return nil, err
	}
	return []byte(text), nil
}

// GenerateImage sends a prompt to the image model and returns the decoded
// PNG bytes of the first image part.
func (c *Client) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	if c.cfg.APIKey == "" {
		return nil, fmt.Errorf("API key not configured")
	}

	reqBody := request{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: prompt}}},
		},
		GenerationConfig: generationConfig{
			ResponseModalities: []string{"IMAGE"},
		},
	}

	resp, err := c.post(ctx, c.cfg.ImageModel, reqBody)
	if err != nil {
		return nil, err
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates returned")
	}
	for _, p := range resp.Candidates[0].Content.Parts {
		if p.InlineData == nil || p.InlineData.Data == "" {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
		if err != nil {
			return nil, fmt.Errorf("decode image data: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("no image returned")
}

// post performs the generateContent call with the retry loop.
func (c *Client) post(ctx context.Context, model string, reqBody request) (*response, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.cfg.BaseURL, model, c.cfg.APIKey)

	var lastErr error
	for i := 0; i <= c.cfg.MaxRetries; i++ {
		if i > 0 {
			if err := c.sleep(ctx, time.Duration(1<<uint(i-1))*time.Second); err != nil {
				return nil, err
			}
		}
		c.pace()

		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		httpResp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		body, err := io.ReadAll(httpResp.Body)
		httpResp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if httpResp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limit exceeded (429)")
			continue
		}
		if httpResp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("API request failed with status %d: %s", httpResp.StatusCode, string(body))
		}

		var resp response
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("parse response: %w", err)
		}
		if resp.Error != nil {
			return nil, fmt.Errorf("API error: %s", resp.Error.Message)
		}
		return &resp, nil
	}
	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func firstText(resp *response) (string, error) {
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no completion returned")
	}
	var b bytes.Buffer
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("empty completion")
	}
	return b.String(), nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
