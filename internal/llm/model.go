package llm

import (
	"context"
	"fmt"
	"time"
)

// Model is one configured model endpoint. It carries no game knowledge: it
// sends a system and user prompt and hands back whatever text comes out.
type Model struct {
	client      *Client
	name        string
	wireName    string
	temperature float64
	timeout     time.Duration
}

// NewModel wraps a client for the given model. name is the user-facing model
// name; wireName is what goes in the request body.
func NewModel(client *Client, name, wireName string, temperature float64) *Model {
	return &Model{client: client, name: name, wireName: wireName, temperature: temperature}
}

// SetTimeout sets an optional per-call deadline. Zero means no deadline,
// matching the historical behavior where a hung call stalls the turn.
func (m *Model) SetTimeout(d time.Duration) { m.timeout = d }

// ModelName returns the user-facing model name.
func (m *Model) ModelName() string { return m.name }

// Temperature returns the sampling temperature used on every call.
func (m *Model) Temperature() float64 { return m.temperature }

// Send issues one chat completion and returns the raw assistant text.
func (m *Model) Send(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}
	msgs := []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	}
	resp, err := m.client.ChatCompletion(ctx, m.wireName, m.temperature, maxTokens, msgs)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm: no choices returned for model %s", m.name)
	}
	return resp.Choices[0].Message.Content, nil
}
