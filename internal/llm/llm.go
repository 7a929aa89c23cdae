package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/joescharf/itlog/internal/models"
)

// Suggestion is the LLM's pick of an issue type for a description.
type Suggestion struct {
	Type   models.IssueType `json:"type"`
	Reason string           `json:"reason"`
}

// Client wraps the Anthropic API for issue type suggestions.
type Client struct {
	api   *anthropic.Client
	model anthropic.Model
}

// NewClient creates an LLM client with the given API key and model.
func NewClient(apiKey, model string) *Client {
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	client := anthropic.NewClient(opts...)
	return &Client{
		api:   &client,
		model: anthropic.Model(model),
	}
}

// buildSuggestPrompt constructs the system and user prompts for type suggestion.
func buildSuggestPrompt(description string) (system string, user string) {
	var types []string
	for _, t := range models.AllowedTypes {
		types = append(types, fmt.Sprintf("%q", t))
	}

	system = `You triage IT support issues. Given a short issue description, return a JSON object with exactly two fields:

- "type": one of ` + strings.Join(types, ", ") + `
- "reason": one short sentence explaining the choice

Rules:
- "software" covers applications, operating systems, accounts, and licenses
- "hardware" covers physical devices: computers, printers, peripherals, cables, power
- "network" covers connectivity: wifi, VPN, DNS, internet access, shared drives that will not connect
- Return valid JSON only, no markdown fencing or explanation`

	user = "Issue description: " + description
	return
}

// SuggestType asks the LLM which issue type fits description best.
func (c *Client) SuggestType(ctx context.Context, description string) (*Suggestion, error) {
	systemPrompt, userPrompt := buildSuggestPrompt(description)

	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 256,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API call: %w", err)
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}

	return parseSuggestion(text)
}

// parseSuggestion decodes a model reply, tolerating markdown fencing.
func parseSuggestion(text string) (*Suggestion, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no text content in API response")
	}
	text = stripFence(text)

	var s Suggestion
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		return nil, fmt.Errorf("parse LLM response as JSON: %w\nraw response: %s", err, text)
	}

	s.Type = models.NormalizeType(string(s.Type))
	if !s.Type.Valid() {
		return nil, fmt.Errorf("LLM suggested unknown type %q", s.Type)
	}
	return &s, nil
}

// stripFence removes a surrounding ``` block if present.
func stripFence(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		lines := strings.SplitN(text, "\n", 2)
		if len(lines) > 1 {
			text = lines[1]
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}
	return text
}
