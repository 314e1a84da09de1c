package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// MockProvider is a test provider that records calls and returns canned responses.
type MockProvider struct {
	mu       sync.Mutex
	Calls    []CompletionRequest
	Response *CompletionResponse
	Err      error
	ProvName string
}

func NewMockProvider(name string) *MockProvider {
	return &MockProvider{
		ProvName: name,
		Response: &CompletionResponse{
			Content:      "mock response",
			InputTokens:  10,
			OutputTokens: 20,
			Model:        "mock-model",
			FinishReason: "stop",
		},
	}
}

func (m *MockProvider) Name() string {
	return m.ProvName
}

func (m *MockProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, req)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Response, nil
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

func TestFactoryReturnsErrorForMissingAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	for _, p := range []string{"anthropic", "openai", "google"} {
		_, err := NewProvider(context.Background(), Options{Provider: p, Model: "some-model"})
		if err == nil {
			t.Errorf("expected error for provider %q with missing API key", p)
		}
	}
}

func TestFactoryReturnsErrorForUnknownProvider(t *testing.T) {
	_, err := NewProvider(context.Background(), Options{Provider: "unknown", Model: "some-model"})
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestFactoryCreatesOllamaWithDefaultHost(t *testing.T) {
	t.Setenv("OLLAMA_HOST", "")
	provider, err := NewProvider(context.Background(), Options{Provider: "ollama", Model: "llama3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ollamaP, ok := provider.(*OllamaProvider)
	if !ok {
		t.Fatal("expected *OllamaProvider")
	}
	if ollamaP.baseURL != DefaultOllamaHost {
		t.Errorf("expected default host, got %q", ollamaP.baseURL)
	}
}

func TestFactoryPrefersExplicitKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	provider, err := NewProvider(context.Background(), Options{Provider: "anthropic", Model: "m", APIKey: "k"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.(*AnthropicProvider).apiKey != "k" {
		t.Error("explicit key not used")
	}
}

func TestFactoryCreatesProviders(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("GOOGLE_API_KEY", "test-key")

	for _, name := range []string{"google", "anthropic", "openai"} {
		provider, err := NewProvider(context.Background(), Options{Provider: name, Model: "m"})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if provider.Name() != name {
			t.Errorf("expected name %q, got %q", name, provider.Name())
		}
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	tests := map[string]string{
		"google":    "GOOGLE_API_KEY",
		"anthropic": "ANTHROPIC_API_KEY",
		"openai":    "OPENAI_API_KEY",
		"ollama":    "",
	}
	for p, want := range tests {
		if got := APIKeyEnvVar(p); got != want {
			t.Errorf("APIKeyEnvVar(%q) = %q, want %q", p, got, want)
		}
	}
}

func TestAnthropicSendsSamplingParameters(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "key" {
			t.Error("missing api key header")
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"content":[{"type":"text","text":"Answer."}],"model":"claude","stop_reason":"end_turn","usage":{"input_tokens":7,"output_tokens":2}}`))
	}))
	defer srv.Close()

	p := NewAnthropicProvider("key", "claude", srv.URL)
	resp, err := p.Complete(context.Background(), CompletionRequest{
		Messages:    UserPrompt("hello"),
		Temperature: 0.1,
		TopK:        1,
		TopP:        0.1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "Answer." || resp.InputTokens != 7 || resp.OutputTokens != 2 {
		t.Errorf("unexpected response %+v", resp)
	}
	if got["top_k"] != float64(1) || got["top_p"] != 0.1 || got["temperature"] != 0.1 {
		t.Errorf("sampling parameters not forwarded: %v", got)
	}
}

func TestOllamaStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "missing").Complete(context.Background(), CompletionRequest{Messages: UserPrompt("hi")})
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if se.StatusCode != http.StatusNotFound || se.Provider != "ollama" {
		t.Errorf("unexpected status error %+v", se)
	}
}

func TestOllamaForwardsOptions(t *testing.T) {
	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"message":{"role":"assistant","content":"ok"},"model":"llama3","done":true,"done_reason":"stop","prompt_eval_count":3,"eval_count":1}`))
	}))
	defer srv.Close()

	resp, err := NewOllamaProvider(srv.URL+"/", "llama3").Complete(context.Background(), CompletionRequest{
		Messages: UserPrompt("hi"),
		TopK:     1,
		TopP:     0.1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "ok" || resp.FinishReason != "stop" {
		t.Errorf("unexpected response %+v", resp)
	}
	if got.Stream || got.Options.TopK != 1 || got.Options.TopP != 0.1 {
		t.Errorf("unexpected request %+v", got)
	}
}

func TestGeminiGenerateContent(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Grounded answer."}]},"finishReason":"STOP"}],"usageMetadata":{"promptTokenCount":12,"candidatesTokenCount":3}}`))
	}))
	defer srv.Close()

	p, err := NewGeminiProvider(context.Background(), "key", "gemini-3-flash-preview", srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp, err := p.Complete(context.Background(), CompletionRequest{
		Messages:    UserPrompt("prompt"),
		Temperature: 0.1,
		TopK:        1,
		TopP:        0.1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "Grounded answer." {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.InputTokens != 12 || resp.OutputTokens != 3 || resp.FinishReason != "STOP" {
		t.Errorf("unexpected response %+v", resp)
	}
	gen, _ := body["generationConfig"].(map[string]any)
	if gen == nil || gen["topK"] == nil || gen["topP"] == nil {
		t.Errorf("generation config not forwarded: %v", body)
	}
}

func TestSplitSystem(t *testing.T) {
	system, turns := splitSystem([]Message{
		{Role: RoleSystem, Content: "a"},
		{Role: RoleUser, Content: "q"},
		{Role: RoleSystem, Content: "b"},
	})
	if system != "a\n\nb" {
		t.Errorf("system = %q", system)
	}
	if len(turns) != 1 || turns[0].Content != "q" {
		t.Errorf("turns = %v", turns)
	}
}

func TestRateLimiterPassesThrough(t *testing.T) {
	mock := NewMockProvider("test")
	rl := NewRateLimitedProvider(mock, 60)

	resp, err := rl.Complete(context.Background(), CompletionRequest{Messages: UserPrompt("hello")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "mock response" {
		t.Errorf("expected 'mock response', got %q", resp.Content)
	}
	if rl.Name() != "test" {
		t.Errorf("expected name 'test', got %q", rl.Name())
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	mock := NewMockProvider("test")
	if NewRateLimitedProvider(mock, 0) != Provider(mock) {
		t.Error("expected provider to be returned unwrapped")
	}
}

func TestRateLimiterLimitsRequests(t *testing.T) {
	mock := NewMockProvider("test")
	rl := NewRateLimitedProvider(mock, 2)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	req := CompletionRequest{Messages: UserPrompt("hello")}
	for i := 0; i < 2; i++ {
		if _, err := rl.Complete(ctx, req); err != nil {
			t.Fatalf("request %d: unexpected error: %v", i, err)
		}
	}

	if _, err := rl.Complete(ctx, req); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if mock.CallCount() != 2 {
		t.Errorf("expected 2 calls, got %d", mock.CallCount())
	}
}

func TestEstimateCost(t *testing.T) {
	if cost := EstimateCost("unknown-model", 1000, 500); cost != 0 {
		t.Errorf("expected 0 for unknown model, got %f", cost)
	}

	// gemini-3-flash-preview: $0.50/1M input, $3.00/1M output
	cost := EstimateCost("gemini-3-flash-preview", 1_000_000, 1_000_000)
	if cost < 3.49 || cost > 3.51 {
		t.Errorf("expected cost ~$3.50, got $%.2f", cost)
	}
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"hi", 1},
		{"hello world!!", 3},
		{"a longer piece of text that has more characters", 11},
	}

	for _, tt := range tests {
		if got := EstimateTokens(tt.text); got != tt.want {
			t.Errorf("EstimateTokens(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}
