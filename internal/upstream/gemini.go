package upstream

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.0-flash-lite"

// Gemini streams completions from the Google Gemini API through stateful
// chat sessions.
type Gemini struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Gemini{
		client: client,
		model:  model,
		config: &genai.GenerateContentConfig{
			Temperature:      genai.Ptr[float32](1),
			TopP:             genai.Ptr[float32](0.95),
			TopK:             genai.Ptr[float32](40),
			MaxOutputTokens:  8192,
			ResponseMIMEType: "text/plain",
		},
	}, nil
}

func (g *Gemini) StreamMessage(ctx context.Context, history []Turn, message string, onFragment func(string) error) error {
	chat, err := g.client.Chats.Create(ctx, g.model, g.config, historyContents(history))
	if err != nil {
		return fmt.Errorf("failed to create chat session: %w", err)
	}

	for resp, err := range chat.SendMessageStream(ctx, genai.Part{Text: message}) {
		if err != nil {
			return fmt.Errorf("stream failed: %w", err)
		}
		if text := resp.Text(); text != "" {
			if err := onFragment(text); err != nil {
				return err
			}
		}
	}
	return nil
}

func historyContents(history []Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, t := range history {
		var role genai.Role = genai.RoleUser
		if t.Role == RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Text, role))
	}
	return contents
}
