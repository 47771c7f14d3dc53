package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/project-management-api/internal/config"
)

// AIService generates short texts through an OpenAI-compatible endpoint,
// typically a local inference server.
type AIService struct {
	client *openai.Client
	model  string
}

// NewAIService returns nil when no endpoint is configured.
func NewAIService(cfg config.AIConfig) *AIService {
	if cfg.BaseURL == "" {
		return nil
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &AIService{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
	}
}

// GenerateProjectDescription writes a two or three sentence description for a project.
func (s *AIService) GenerateProjectDescription(ctx context.Context, name, details string) (string, error) {
	if s == nil || s.client == nil {
		return "", ErrAIServiceNotConfigured
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrProjectNameRequired
	}

	prompt := fmt.Sprintf(`Write a concise description (2-3 sentences) for a project named %q.`, name)
	if details = strings.TrimSpace(details); details != "" {
		prompt += "\n\nAdditional context:\n" + details
	}
	prompt += "\n\nReturn only the description text, without a heading or quotes."

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You help project managers describe their projects clearly.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.7,
			MaxTokens:   200,
		},
	)
	if err != nil {
		return "", fmt.Errorf("text generation failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrAIEmptyResponse
	}

	description := strings.Trim(strings.TrimSpace(resp.Choices[0].Message.Content), `"`)
	if description == "" {
		return "", ErrAIEmptyResponse
	}
	return description, nil
}
