// Package assistant answers free-text questions about the user's campus
// data by prompting a local Ollama server with a role-filtered snapshot.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrMissingMessage = errors.New("missing message")
	// ErrOffline is the fixed user-facing failure for unreachable inference.
	ErrOffline = errors.New("assistant is offline, please try again later")
	// ErrEmptyReply marks a reachable model that returned no usable content.
	ErrEmptyReply = errors.New("model returned an empty response, try rephrasing your question")
)

type Service struct {
	ollamaURL string
	model     string
	client    *http.Client
}

func NewService(ollamaURL, model string) *Service {
	return &Service{
		ollamaURL: ollamaURL,
		model:     model,
		client:    &http.Client{Timeout: 120 * time.Second},
	}
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaRequest struct {
	Model    string          `json:"model"`
	Stream   bool            `json:"stream"`
	Messages []ollamaMessage `json:"messages"`
}

// ollamaChunk covers both the single-response and streaming chunk shapes,
// plus the looser content/response/text variants some model builds emit.
type ollamaChunk struct {
	Message  *ollamaMessage `json:"message"`
	Content  string         `json:"content"`
	Response string         `json:"response"`
	Text     string         `json:"text"`
	Done     bool           `json:"done"`
}

// Chat sends the message with its data snapshot and returns the reply.
// Concurrent calls are independent; there is no ordering between them.
func (s *Service) Chat(ctx context.Context, message string, snapshot Context) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrMissingMessage
	}

	prompt, err := buildPrompt(message, snapshot)
	if err != nil {
		return "", fmt.Errorf("build prompt: %w", err)
	}

	body, err := json.Marshal(ollamaRequest{
		Model:  s.model,
		Stream: false,
		Messages: []ollamaMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.ollamaURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", ErrOffline
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", ErrOffline
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("inference server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	reply := extractReply(raw)
	if strings.TrimSpace(reply) == "" {
		return "", ErrEmptyReply
	}
	return reply, nil
}

// extractReply handles a single JSON document or newline-delimited
// streaming chunks, trying message.content, content, response, and text.
func extractReply(raw []byte) string {
	var single ollamaChunk
	if err := json.Unmarshal(raw, &single); err == nil {
		return chunkContent(single)
	}

	// Streaming responses arrive as one JSON object per line; accumulate
	// message content across chunks and skip anything unparseable.
	var parts []string
	var last ollamaChunk
	haveLast := false
	for _, line := range strings.Split(strings.TrimSpace(string(raw)), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "{") || !strings.HasSuffix(line, "}") {
			continue
		}
		var chunk ollamaChunk
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			continue
		}
		last = chunk
		haveLast = true
		if chunk.Message != nil && chunk.Message.Content != "" {
			parts = append(parts, chunk.Message.Content)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, "")
	}
	if haveLast {
		return chunkContent(last)
	}
	return ""
}

func chunkContent(chunk ollamaChunk) string {
	if chunk.Message != nil && chunk.Message.Content != "" {
		return chunk.Message.Content
	}
	if chunk.Content != "" {
		return chunk.Content
	}
	if chunk.Response != "" {
		return chunk.Response
	}
	return chunk.Text
}

const systemPrompt = "You are CampusMate AI, a helpful assistant. Always provide complete, natural responses. Never respond with empty content."

func buildPrompt(message string, snapshot Context) (string, error) {
	contextJSON, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("You are CampusMate AI, a helpful assistant for campus management.\n\n")
	b.WriteString("USER DATA (use this to answer questions):\n")
	b.Write(contextJSON)
	b.WriteString("\n\nRULES:\n")
	b.WriteString("- Use the EXACT text from the USER DATA fields. Never make up, summarize, or paraphrase the stored content.\n")
	b.WriteString("- For greetings and general conversation, respond naturally; never claim you lack access.\n")
	b.WriteString("- For campus data questions, only use the USER DATA. If the information is not there, say you do not have access to it.\n")
	b.WriteString("- If a data array is empty, say so naturally.\n")
	b.WriteString("- Convert timestamps to readable dates, never show raw IDs, and use simple bullet lists.\n")
	b.WriteString("- Always produce a complete, non-empty response.\n")
	b.WriteString("\nUSER QUESTION: ")
	b.WriteString(message)
	b.WriteString("\n\nASSISTANT RESPONSE:")
	return b.String(), nil
}
