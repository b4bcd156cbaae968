package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/jonathan/resume-coach/internal/types"
	"google.golang.org/api/option"
)

// Completer is an abstraction over chat completion providers
type Completer interface {
	// Complete returns the assistant reply to an ordered list of messages
	Complete(ctx context.Context, messages []types.Message, opts Options) (string, error)
	// Close releases any resources held by the client
	Close() error
}

// NewCompleter creates a completion client based on configuration
func NewCompleter(ctx context.Context, cfg Config) (Completer, error) {
	switch cfg.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg.APIKey)
	case ProviderGroq, "":
		return NewGroqClient(cfg.APIKey, cfg.Endpoint)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}

// GeminiClient implements Completer for Google Gemini
type GeminiClient struct {
	client *genai.Client
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not found. Please set it as environment variable")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client}, nil
}

// Complete sends the conversation as a chat session: the system message becomes the system
// instruction, earlier turns become history and the final user message is sent.
func (c *GeminiClient) Complete(ctx context.Context, messages []types.Message, opts Options) (string, error) {
	system, history, prompt, err := toGeminiConversation(messages)
	if err != nil {
		return "", err
	}

	modelName := opts.Model
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(float32(opts.Temperature))
	if opts.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(opts.MaxTokens))
	}
	model.SystemInstruction = system

	session := model.StartChat()
	session.History = history

	resp, err := session.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(resp)
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// toGeminiConversation splits messages into a system instruction, prior turns and the prompt to send.
func toGeminiConversation(messages []types.Message) (*genai.Content, []*genai.Content, string, error) {
	if len(messages) == 0 {
		return nil, nil, "", fmt.Errorf("no messages to send")
	}
	last := messages[len(messages)-1]
	if last.Role != types.RoleUser {
		return nil, nil, "", fmt.Errorf("last message must be from the user, got %q", last.Role)
	}

	var systemParts []string
	var history []*genai.Content
	for _, m := range messages[:len(messages)-1] {
		switch m.Role {
		case types.RoleSystem:
			systemParts = append(systemParts, m.Content)
		case types.RoleUser:
			history = append(history, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(m.Content)}})
		case types.RoleAssistant:
			history = append(history, &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(m.Content)}})
		default:
			return nil, nil, "", fmt.Errorf("unknown message role %q", m.Role)
		}
	}

	var system *genai.Content
	if len(systemParts) > 0 {
		system = &genai.Content{Parts: []genai.Part{genai.Text(strings.Join(systemParts, "\n\n"))}}
	}
	return system, history, last.Content, nil
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}
