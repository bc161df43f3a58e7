// Package classify talks to an OpenAI-compatible chat-completions service
// that labels chat content: emoji rankings and per-sender communication
// styles. All failures are returned as errors; the caller decides whether a
// failed classification degrades to a local default.
package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"chatwrap/internal/stats"
)

const (
	emojiPrompt = "You are an emoji analyzer. Given chat messages, extract and count " +
		"the most frequently used emojis. Return exactly 5 emojis with their counts " +
		`in JSON format like [{"emoji": "X", "count": 5}]. If there are fewer than 5 ` +
		"emojis, include all found emojis. If no emojis are found, return an empty array."

	stylePrompt = "You are a communication style analyzer. Given chat messages in the " +
		`form "sender: text", describe each sender's messaging style in one short ` +
		`sentence. Return a JSON object mapping sender name to description, like ` +
		`{"Alice": "warm and chatty"}.`
)

// Client calls an OpenAI-compatible /chat/completions endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	log        *zap.SugaredLogger
}

func New(baseURL, apiKey, model string, log *zap.SugaredLogger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// TopEmojis asks the service for the most used emojis across the given
// message contents. At most 5 entries come back.
func (c *Client) TopEmojis(ctx context.Context, contents []string) ([]stats.EmojiCount, error) {
	raw, err := c.complete(ctx, emojiPrompt, strings.Join(contents, "\n"))
	if err != nil {
		return nil, fmt.Errorf("emoji task: %w", err)
	}

	var ranking []stats.EmojiCount
	if err := json.Unmarshal([]byte(raw), &ranking); err != nil {
		return nil, fmt.Errorf("emoji task: decode %q: %w", raw, err)
	}
	if len(ranking) > 5 {
		ranking = ranking[:5]
	}
	return ranking, nil
}

// CommunicationStyles asks the service for a free-text style description per
// sender. Lines are sent as "sender: text".
func (c *Client) CommunicationStyles(ctx context.Context, messages []string) (map[string]string, error) {
	raw, err := c.complete(ctx, stylePrompt, strings.Join(messages, "\n"))
	if err != nil {
		return nil, fmt.Errorf("style task: %w", err)
	}

	styles := make(map[string]string)
	if err := json.Unmarshal([]byte(raw), &styles); err != nil {
		return nil, fmt.Errorf("style task: decode %q: %w", raw, err)
	}
	return styles, nil
}

func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.7,
		MaxTokens:   300,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Warnw("classifier returned error", "status", resp.StatusCode, "body", string(body))
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("empty completion")
	}
	return stripCodeFence(chatResp.Choices[0].Message.Content), nil
}

// stripCodeFence removes a surrounding markdown code fence, which chat models
// like to wrap JSON answers in.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
