package transform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/talalbz/fieldmill/internal/domain"
	"github.com/talalbz/fieldmill/internal/engine"
)

// Значения по умолчанию.
const (
	defaultLLMTimeout = 60 * time.Second
	defaultLLMModel   = "google/gemini-2.0-flash-001"
	maxResponseBody   = 4 * 1024 * 1024 // 4 MB
)

// LLMTransformer — transformer, вызывающий LLM-шлюз по HTTP.
//
// Шаблон промпта поля рендерится подстановкой значений зависимостей
// вместо {FieldName} токенов, после чего отправляется в
// chat/completions-совместимый endpoint (OpenRouter и аналоги).
//
// Транспортные ошибки ловятся здесь и резолвятся как
// CallResult{Success: false} — до движка error не доходит, поэтому
// падение одного поля никогда не затрагивает соседей по волне.
type LLMTransformer struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// LLMConfig — конфигурация LLMTransformer.
type LLMConfig struct {
	// BaseURL — адрес шлюза (например, https://openrouter.ai/api/v1).
	BaseURL string

	// APIKey — ключ авторизации.
	APIKey string

	// Model — модель по умолчанию.
	Model string

	// Timeout — таймаут одного вызова (default: 60s).
	Timeout time.Duration
}

// NewLLMTransformer создаёт LLMTransformer.
func NewLLMTransformer(cfg LLMConfig) *LLMTransformer {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultLLMTimeout
	}

	model := cfg.Model
	if model == "" {
		model = defaultLLMModel
	}

	return &LLMTransformer{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   model,
	}
}

// LLMConfigFromEnv читает конфигурацию из переменных окружения:
// LLM_URL, LLM_API_KEY, LLM_MODEL, LLM_TIMEOUT_SEC.
func LLMConfigFromEnv() LLMConfig {
	cfg := LLMConfig{
		BaseURL: os.Getenv("LLM_URL"),
		APIKey:  os.Getenv("LLM_API_KEY"),
		Model:   os.Getenv("LLM_MODEL"),
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openrouter.ai/api/v1"
	}
	if v := os.Getenv("LLM_TIMEOUT_SEC"); v != "" {
		var sec int
		if _, err := fmt.Sscanf(v, "%d", &sec); err == nil && sec > 0 {
			cfg.Timeout = time.Duration(sec) * time.Second
		}
	}
	return cfg
}

// chatRequest — тело запроса chat/completions.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

// chatMessage — сообщение диалога.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse — ответ chat/completions.
type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Transform реализует engine.Transformer.
func (t *LLMTransformer) Transform(ctx context.Context, field *domain.Field, columnValues map[string]any) (*engine.CallResult, error) {
	template := field.TransformationConfig.Template()
	if template == "" {
		return &engine.CallResult{
			Success: false,
			Error:   ErrEmptyPrompt.Error(),
		}, nil
	}

	prompt := engine.RenderPrompt(template, stringValues(columnValues))

	content, err := t.complete(ctx, prompt)
	if err != nil {
		// Транспортная ошибка конвертируется в логическую на этой границе
		return &engine.CallResult{
			Success: false,
			Error:   fmt.Sprintf("%v: %v", ErrLLMRequest, err),
		}, nil
	}

	return &engine.CallResult{
		Success: true,
		Value:   content,
	}, nil
}

// complete выполняет один вызов chat/completions.
func (t *LLMTransformer) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: t.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		t.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}

	if parsed.Error != nil {
		return "", fmt.Errorf("gateway error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty choices in response")
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// stringValues приводит значения зависимостей к строкам для подстановки.
func stringValues(values map[string]any) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		switch s := v.(type) {
		case string:
			out[k] = s
		case nil:
			out[k] = ""
		default:
			// Составные значения сериализуем в JSON
			if b, err := json.Marshal(v); err == nil {
				out[k] = string(b)
			} else {
				out[k] = fmt.Sprintf("%v", v)
			}
		}
	}
	return out
}

// truncate обрезает строку до n символов.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
