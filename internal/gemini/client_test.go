package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClientWithConfig(Config{
		APIKey:  "test-key",
		BaseURL: srv.URL,
	})
	c.SetSleep(func(ctx context.Context, _ time.Duration) error { return ctx.Err() })
	return c
}

func TestGenerateJSON(t *testing.T) {
	var gotBody request
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"{\"name\":\"Blackwood Hall\"}"}]}}]}`)
	})

	schema := map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{"name": map[string]interface{}{"type": "string"}},
	}
	out, err := c.GenerateJSON(context.Background(), TierPro, "you are a designer", "make a setting", schema)
	if err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}

	var parsed struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(out, &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if parsed.Name != "Blackwood Hall" {
		t.Errorf("name = %q, want Blackwood Hall", parsed.Name)
	}

	if gotBody.GenerationConfig.ResponseMimeType != "application/json" {
		t.Errorf("responseMimeType = %q, want application/json", gotBody.GenerationConfig.ResponseMimeType)
	}
	if gotBody.GenerationConfig.ResponseSchema == nil {
		t.Error("responseJsonSchema not set")
	}
	if gotBody.SystemInstruction == nil || gotBody.SystemInstruction.Parts[0].Text != "you are a designer" {
		t.Error("system instruction not forwarded")
	}
}

func TestGenerateJSON_RetriesOn429(t *testing.T) {
	calls := 0
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"{}"}]}}]}`)
	})

	var delays []time.Duration
	c.SetSleep(func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	})

	if _, err := c.GenerateJSON(context.Background(), TierFlash, "", "prompt", nil); err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	want := []time.Duration{time.Second, 2 * time.Second}
	if len(delays) != len(want) {
		t.Fatalf("delays = %v, want %v", delays, want)
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Errorf("delays[%d] = %s, want %s", i, delays[i], want[i])
		}
	}
}

func TestGenerateJSON_ExhaustsRetries(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	_, err := c.GenerateJSON(context.Background(), TierFlash, "", "prompt", nil)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
}

func TestGenerateJSON_ServerErrorFailsFast(t *testing.T) {
	calls := 0
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"code":400,"message":"bad schema"}}`)
	})
	_, err := c.GenerateJSON(context.Background(), TierFlash, "", "prompt", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on 4xx)", calls)
	}
}

func TestGenerateJSON_NoAPIKey(t *testing.T) {
	c := NewClient("")
	if _, err := c.GenerateJSON(context.Background(), TierFlash, "", "prompt", nil); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestGenerateImage(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}
	encoded := base64.StdEncoding.EncodeToString(png)

	var gotBody request
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		fmt.Fprintf(w, `{"candidates":[{"content":{"parts":[{"inlineData":{"mimeType":"image/png","data":"%s"}}]}}]}`, encoded)
	})

	data, err := c.GenerateImage(context.Background(), "a portrait")
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if string(data) != string(png) {
		t.Errorf("image bytes = %v, want %v", data, png)
	}
	if len(gotBody.GenerationConfig.ResponseModalities) != 1 || gotBody.GenerationConfig.ResponseModalities[0] != "IMAGE" {
		t.Errorf("responseModalities = %v, want [IMAGE]", gotBody.GenerationConfig.ResponseModalities)
	}
}

func TestGenerateImage_NoImagePart(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"sorry"}]}}]}`)
	})
	if _, err := c.GenerateImage(context.Background(), "a portrait"); err == nil {
		t.Fatal("expected error when response has no image")
	}
}
