// Package scribe rewrites a keeper's terse feature notes into polished
// prose through a local Ollama instance.
package scribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	defaultHost  = "http://localhost:11434"
	defaultModel = "llama3.2:3b"

	requestTimeout = 60 * time.Second
	callInterval   = 2 * time.Second
)

const stylistInstruction = "You are a seasoned fantasy setting stylist. " +
	"Rewrite terse hex-crawl feature notes into one evocative, game-usable paragraph. " +
	"Keep all stated facts; do not invent new lore. " +
	"Use present tense, avoid second person and purple prose, and keep it concise."

// Word budget: the prompt asks for 70-110 and the reply is hard-trimmed
// at 220 on a word boundary.
const (
	targetWordsMin = 70
	targetWordsMax = 110
	maxWords       = 220
)

// Client wraps the Ollama generate endpoint.
type Client struct {
	host       string
	model      string
	httpClient *http.Client

	// Pacing: at most one call per interval.
	mu          sync.Mutex
	lastCall    time.Time
	minInterval time.Duration
}

// New builds a client for the given Ollama host and model. Empty
// arguments fall back to the local defaults.
func New(host, model string) *Client {
	if host == "" {
		host = defaultHost
	}
	if model == "" {
		model = defaultModel
	}
	return &Client{
		host:  strings.TrimRight(host, "/"),
		model: model,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		minInterval: callInterval,
	}
}

// FromEnv builds a client from OLLAMA_HOST and HEXSCRIBE_MODEL.
// Returns nil when neither is set (scribe features disabled).
func FromEnv() *Client {
	host := os.Getenv("OLLAMA_HOST")
	model := os.Getenv("HEXSCRIBE_MODEL")
	if host == "" && model == "" {
		return nil
	}
	return New(host, model)
}

// Enabled reports whether the client can make calls.
func (c *Client) Enabled() bool {
	return c != nil && c.host != ""
}

// request is the generate endpoint body.
type request struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Stream  bool    `json:"stream"`
	Options options `json:"options"`
}

type options struct {
	Temperature float64 `json:"temperature"`
}

// response is the non-streaming generate reply.
type response struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Rewrite sends the notes through the stylist prompt and returns the
// rewritten paragraph, trimmed to the word budget. Callers keep the raw
// notes on error.
func (c *Client) Rewrite(ctx context.Context, notes, tone string) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("scribe client not configured")
	}
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return "", fmt.Errorf("nothing to rewrite")
	}

	if err := c.pace(ctx); err != nil {
		return "", err
	}

	body, err := json.Marshal(request{
		Model:   c.model,
		Prompt:  buildPrompt(notes, tone),
		Stream:  false,
		Options: options{Temperature: 0.6},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ollama call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama error %d: %s", resp.StatusCode, string(respBody))
	}

	var reply response
	if err := json.Unmarshal(respBody, &reply); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	out := strings.TrimSpace(trimWords(reply.Response, maxWords))
	if out == "" {
		return "", fmt.Errorf("empty response")
	}

	slog.Debug("scribe rewrite", "model", c.model, "words", len(strings.Fields(out)))
	return out, nil
}

// pace spaces calls out by the minimum interval, or returns early when
// the context is cancelled while waiting.
func (c *Client) pace(ctx context.Context) error {
	c.mu.Lock()
	now := time.Now()
	wait := c.minInterval - now.Sub(c.lastCall)
	if wait < 0 {
		wait = 0
	}
	c.lastCall = now.Add(wait)
	c.mu.Unlock()

	if wait == 0 {
		return nil
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func buildPrompt(notes, tone string) string {
	var b strings.Builder
	b.WriteString(stylistInstruction)
	b.WriteString("\n\n")
	if tone != "" {
		fmt.Fprintf(&b, "Preferred tone: %s.\n", tone)
	}
	fmt.Fprintf(&b, "Notes:\n%s\n\n", notes)
	fmt.Fprintf(&b, "Output:\nA single paragraph of %d-%d words, "+
		"rich with sensory detail, present tense, and game-ready clarity.",
		targetWordsMin, targetWordsMax)
	return b.String()
}

// trimWords clips text to max words on a word boundary, closing with an
// ellipsis unless the clip already ends a sentence.
func trimWords(text string, max int) string {
	words := strings.Fields(text)
	if len(words) <= max {
		return text
	}
	clipped := strings.Join(words[:max], " ")
	for _, end := range []string{".", "!", "?", "…"} {
		if strings.HasSuffix(clipped, end) {
			return clipped
		}
	}
	return clipped + "…"
}
