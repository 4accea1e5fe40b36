// Package ai streams model responses from the Gemini generative language API.
package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/config"
	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/domain"
)

// ErrMissingAPIKey is returned when no API key is configured.
var ErrMissingAPIKey = errors.New("GOOGLE_GENERATIVE_AI_API_KEY is not set")

// Result is a completed model response.
type Result struct {
	Content      string
	FinishReason string
}

// Client talks to the streamGenerateContent endpoint.
type Client struct {
	http  *resty.Client
	model string
	log   *zap.SugaredLogger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.SugaredLogger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient creates a Client from the AI configuration.
func NewClient(cfg config.AIConfig, opts ...ClientOption) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultAIBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = config.DefaultModel
	}
	c := &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetHeader("x-goog-api-key", cfg.APIKey).
			SetHeader("Content-Type", "application/json"),
		model: model,
		log:   zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type part struct {
	Text string `json:"text,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents          []content        `json:"contents"`
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	Tools             []map[string]any `json:"tools,omitempty"`
}

type generateChunk struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

func (e *apiError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("gemini: %s (%s)", e.Message, e.Status)
	}
	return "gemini: " + e.Message
}

// Stream sends the conversation history and calls onChunk with each text fragment as it
// arrives. The returned Result holds the concatenated response.
func (c *Client) Stream(ctx context.Context, history []domain.Message, tools ToolSet, onChunk func(string)) (Result, error) {
	req := buildRequest(history, tools)
	if len(req.Contents) == 0 {
		return Result{}, errors.New("nothing to send: conversation has no user or assistant messages")
	}

	path := fmt.Sprintf("/v1beta/models/%s:streamGenerateContent", url.PathEscape(c.model))
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("alt", "sse").
		SetHeader("Accept", "text/event-stream").
		SetBody(req).
		SetDoNotParseResponse(true).
		Post(path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		return Result{}, fmt.Errorf("calling model: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(body, 64<<10))
		var wrapped struct {
			Error *apiError `json:"error"`
		}
		if json.Unmarshal(raw, &wrapped) == nil && wrapped.Error != nil {
			return Result{}, wrapped.Error
		}
		return Result{}, fmt.Errorf("gemini: HTTP %d: %s", resp.StatusCode(), bytes.TrimSpace(raw))
	}

	res, err := readEvents(body, onChunk)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, ctxErr
		}
		return res, err
	}
	c.log.Debugw("model response complete", "model", c.model, "finish_reason", res.FinishReason, "chars", len(res.Content))
	return res, nil
}

func buildRequest(history []domain.Message, tools ToolSet) generateRequest {
	var req generateRequest
	var system []part
	for _, m := range history {
		switch m.Role {
		case domain.RoleSystem:
			system = append(system, part{Text: m.Content})
		case domain.RoleAssistant:
			req.Contents = append(req.Contents, content{Role: "model", Parts: []part{{Text: m.Content}}})
		default:
			req.Contents = append(req.Contents, content{Role: "user", Parts: []part{{Text: m.Content}}})
		}
	}
	if len(system) > 0 {
		req.SystemInstruction = &content{Parts: system}
	}
	req.Tools = tools.declarations()
	return req
}

// readEvents consumes a server-sent event stream of generateChunk payloads.
func readEvents(r io.Reader, onChunk func(string)) (Result, error) {
	var res Result
	var sb strings.Builder

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == "" || data == "[DONE]" {
			continue
		}

		var chunk generateChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return Result{Content: sb.String()}, fmt.Errorf("decoding stream event: %w", err)
		}
		if chunk.Error != nil {
			return Result{Content: sb.String()}, chunk.Error
		}
		for _, cand := range chunk.Candidates {
			for _, p := range cand.Content.Parts {
				if p.Text == "" {
					continue
				}
				sb.WriteString(p.Text)
				if onChunk != nil {
					onChunk(p.Text)
				}
			}
			if cand.FinishReason != "" {
				res.FinishReason = cand.FinishReason
			}
		}
	}
	res.Content = sb.String()
	if err := scanner.Err(); err != nil {
		return res, fmt.Errorf("reading stream: %w", err)
	}
	return res, nil
}
