package groq

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/mcoot/chatrelay-go/internal/services/responder"
)

const (
	// DefaultBaseURL is Groq's OpenAI-compatible API endpoint
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	// DefaultModel is the chat model used for replies
	DefaultModel = "llama-3.3-70b-versatile"
	// Temperature favors natural variation over determinism
	Temperature = 0.7
)

// SystemPrompt is the fixed system instruction constraining the assistant's
// tone and length in the collaborative chat.
const SystemPrompt = `Tu es un assistant IA dans un chat collaboratif. Tu es mentionné avec @chatbot par les utilisateurs.

Contexte : Tu peux voir les derniers messages de la conversation pour comprendre le contexte.

Ton rôle :
- Réponds de manière concise et utile (max 200 mots)
- Adapte ta réponse au contexte de la conversation
- Sois amical et naturel
- Si la question nécessite du code, utilise la syntaxe markdown

Tu es dans un chat en temps réel, garde tes réponses courtes et pertinentes.`

// Config holds Groq client settings
type Config struct {
	// APIKey authenticates against the Groq API (required)
	APIKey string
	// BaseURL overrides the API endpoint; empty uses DefaultBaseURL
	BaseURL string
	// Model overrides the chat model; empty uses DefaultModel
	Model string
}

// DefaultConfig returns default Groq client settings, without an API key
func DefaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Model:   DefaultModel,
	}
}

// Client calls Groq chat completions through its OpenAI-compatible API
type Client struct {
	api   *openai.Client
	model string
}

// Ensure Client implements the generator interface
var _ responder.Generator = (*Client)(nil)

// New creates a new Groq client
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("groq: API key is required")
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = cfg.BaseURL
	if apiCfg.BaseURL == "" {
		apiCfg.BaseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Client{
		api:   openai.NewClientWithConfig(apiCfg),
		model: model,
	}, nil
}

// Generate renders prior turns as "username: text" user messages, appends
// the cleaned trigger as the final user turn, and requests a completion.
func (c *Client) Generate(ctx context.Context, turns []responder.Turn, userMessage string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(turns)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: SystemPrompt,
	})
	for _, turn := range turns {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: fmt.Sprintf("%s: %s", turn.Author, turn.Text),
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userMessage,
	})

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
