package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"budget-advisor/backend/internal/budget"
)

// Config holds completion-API configuration parameters.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
}

// Client implements the Advisor interface against an OpenAI-compatible
// chat-completions endpoint.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
}

var ErrDisabled = errors.New("completion advisor disabled")

// UpstreamError reports a non-success response from the completion API. The
// handler surfaces it to the caller with the downstream status and body.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("completion api status %d: %s", e.StatusCode, e.Body)
}

const (
	transportRetries = 1
	retryBaseDelay   = 500 * time.Millisecond
	maxUpstreamBody  = 64 << 10
)

// NewClient constructs a Client if the supplied configuration is valid.
func NewClient(cfg Config) (*Client, error) {
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Model == "" {
		cfg.Model = "gpt-4.1-mini"
	}
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrDisabled
	}
	temp := cfg.Temperature
	if temp <= 0 {
		temp = 0.1
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 600
	}
	client := &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		apiKey:      strings.TrimSpace(cfg.APIKey),
		model:       cfg.Model,
		baseURL:     cfg.BaseURL,
		temperature: temp,
		maxTokens:   cfg.MaxTokens,
	}
	return client, nil
}

// Model reports the configured model identifier.
func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}

// Enabled reports whether the client can make outbound calls.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// Advise requests a recommendation for an expense the local rules could not
// resolve. Unparseable or out-of-set model output yields a zero-field
// Decision and no error; the caller substitutes deterministic fallbacks.
func (c *Client) Advise(ctx context.Context, input AdviceInput) (Decision, error) {
	if c == nil || !c.Enabled() {
		return Decision{}, ErrDisabled
	}

	payload := c.buildPayload(input)
	body, err := json.Marshal(payload)
	if err != nil {
		return Decision{}, fmt.Errorf("marshal request: %w", err)
	}

	resp, err := c.post(ctx, body)
	if err != nil {
		return Decision{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
		return Decision{}, &UpstreamError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var decoded chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Decision{}, nil
	}
	if len(decoded.Choices) == 0 {
		return Decision{}, nil
	}

	content := normalizeJSONBlock(decoded.Choices[0].Message.Content)
	if content == "" {
		return Decision{}, nil
	}

	var decision Decision
	if err := json.Unmarshal([]byte(content), &decision); err != nil {
		return Decision{}, nil
	}

	sanitizeDecision(&decision, input.AllowedActions)
	return decision, nil
}

// post performs the completion call with a single retry with jitter on
// transport-level failures. HTTP-level failures are never retried.
func (c *Client) post(ctx context.Context, body []byte) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= transportRetries; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay + time.Duration(rand.Int63n(int64(retryBaseDelay)))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("completion request: %w", lastErr)
}

func normalizeJSONBlock(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.IndexRune(trimmed, '\n'); idx >= 0 {
			trimmed = trimmed[idx+1:]
		}
		if strings.HasSuffix(trimmed, "```") {
			trimmed = trimmed[:len(trimmed)-3]
		}
	}
	trimmed = strings.TrimSpace(trimmed)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end >= start {
		return strings.TrimSpace(trimmed[start : end+1])
	}
	return trimmed
}

func (c *Client) buildPayload(input AdviceInput) map[string]any {
	actions := make([]string, 0, len(input.AllowedActions))
	for _, action := range input.AllowedActions {
		actions = append(actions, string(action))
	}

	system := fmt.Sprintf(
		"You are a corporate budget controller. Reply with a strict JSON object containing exactly the keys VarianceSummary, AITolerance, AIAction, and ExpectedImpact. AIAction must be one of: %s. AITolerance must be one of strict, moderate, loose. VarianceSummary must restate the supplied variance summary in one line. ExpectedImpact must be one short sentence a finance operator can paste into an approval note. Emit nothing outside the JSON object.",
		strings.Join(actions, ", "),
	)

	messages := []map[string]string{
		{"role": "system", "content": system},
		{"role": "user", "content": buildUserPrompt(input)},
	}
	payload := map[string]any{
		"model":       c.model,
		"messages":    messages,
		"temperature": c.temperature,
	}
	if c.maxTokens > 0 {
		payload["max_tokens"] = c.maxTokens
	}
	return payload
}

func buildUserPrompt(input AdviceInput) string {
	builder := &strings.Builder{}
	fmt.Fprintf(builder, "Division: %s\n", strings.TrimSpace(input.Division))
	fmt.Fprintf(builder, "Category: %s\n", strings.TrimSpace(input.Category))
	if vendor := strings.TrimSpace(input.VendorSource); vendor != "" {
		fmt.Fprintf(builder, "Vendor/Source: %s\n", vendor)
	}
	fmt.Fprintf(builder, "Expense amount: %s\n", input.Amount)
	if notes := strings.TrimSpace(input.Notes); notes != "" {
		fmt.Fprintf(builder, "Notes: %s\n", notes)
	}
	fmt.Fprintf(builder, "Variance summary: %s\n", input.VarianceSummary)
	fmt.Fprintf(builder, "Budget status: %s\n", input.Status)
	fmt.Fprintf(builder, "Variance tolerance: %s\n", input.Tolerance)
	if candidates := strings.TrimSpace(input.HeadroomCandidates); candidates != "" {
		fmt.Fprintf(builder, "Budget lines with headroom available for reallocation: %s\n", candidates)
	}
	builder.WriteString("\nStrategy guidance:\n")
	builder.WriteString(strings.TrimSpace(input.Strategy))
	builder.WriteString("\n\nChoose the single best action for this expense under the strategy guidance and populate the JSON fields with your final judgement.\n")
	return builder.String()
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// sanitizeDecision validates each field independently; anything missing or
// outside its allowed set is emptied so the handler substitutes a
// deterministic fallback.
func sanitizeDecision(decision *Decision, allowed []budget.Action) {
	if decision == nil {
		return
	}
	decision.VarianceSummary = strings.TrimSpace(decision.VarianceSummary)
	decision.ExpectedImpact = strings.TrimSpace(decision.ExpectedImpact)

	if action, ok := budget.ParseAction(decision.AIAction, allowed); ok {
		decision.AIAction = string(action)
	} else {
		decision.AIAction = ""
	}

	switch budget.Tolerance(strings.ToLower(strings.TrimSpace(decision.AITolerance))) {
	case budget.ToleranceStrict, budget.ToleranceModerate, budget.ToleranceLoose:
		decision.AITolerance = strings.ToLower(strings.TrimSpace(decision.AITolerance))
	default:
		decision.AITolerance = ""
	}
}
