package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// GeminiClient — клиент Gemini generateContent со структурированным выводом.
// Повторных попыток нет: ошибка вызова — ошибка строки, решает вызывающий.
type GeminiClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewGeminiClient создает клиент Gemini. requestsPerSecond ограничивает
// частоту вызовов, чтобы не упираться в квоты API при параллельной
// обработке.
func NewGeminiClient(apiKey, model string, timeout time.Duration, requestsPerSecond float64) *GeminiClient {
	// Оптимизированный HTTP Transport с connection pooling
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxConnsPerHost:     5,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConnsPerHost: 5,
	}

	return &GeminiClient{
		baseURL: defaultGeminiBaseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// WithBaseURL переопределяет адрес API (для тестов).
func (c *GeminiClient) WithBaseURL(baseURL string) *GeminiClient {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

type gmPart struct {
	Text string `json:"text"`
}

type gmContent struct {
	Role  string   `json:"role,omitempty"`
	Parts []gmPart `json:"parts"`
}

type gmGenerationConfig struct {
	ResponseMIMEType string          `json:"response_mime_type,omitempty"`
	ResponseSchema   json.RawMessage `json:"response_schema,omitempty"`
	Temperature      float64         `json:"temperature"`
}

type gmRequest struct {
	SystemInstruction *gmContent          `json:"system_instruction,omitempty"`
	Contents          []gmContent         `json:"contents"`
	GenerationConfig  *gmGenerationConfig `json:"generationConfig,omitempty"`
}

type gmResponse struct {
	Candidates []struct {
		Content struct {
			Parts []gmPart `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// Generate выполняет один вызов generateContent. Few-shot примеры
// подкладываются в историю диалога парами user/model перед полезной
// нагрузкой.
func (c *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait: %w", err)
	}

	startTime := time.Now()

	contents := make([]gmContent, 0, len(req.Examples)*2+1)
	for _, ex := range req.Examples {
		contents = append(contents,
			gmContent{Role: "user", Parts: []gmPart{{Text: ex.Input}}},
			gmContent{Role: "model", Parts: []gmPart{{Text: ex.Output}}},
		)
	}
	contents = append(contents, gmContent{Role: "user", Parts: []gmPart{{Text: req.UserPayload}}})

	body := gmRequest{
		Contents: contents,
		GenerationConfig: &gmGenerationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   req.Schema,
			Temperature:      0,
		},
	}
	if req.SystemInstruction != "" {
		body.SystemInstruction = &gmContent{Parts: []gmPart{{Text: req.SystemInstruction}}}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var parsed gmResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse response (status %d): %w", resp.StatusCode, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("API error %d (%s): %s", parsed.Error.Code, parsed.Error.Status, parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from model %s", c.model)
	}

	var sb strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	result := StripJSONFence(sb.String())

	log.Printf("[GeminiClient] Model %s responded in %v (%d bytes)",
		c.model, time.Since(startTime).Round(time.Millisecond), len(result))
	return result, nil
}
