package synth

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/v0xg/surveywalk/internal/survey"
)

// OpenAIProvider synthesizes test cases with an OpenAI chat model.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider reads the API key from the environment.
func NewOpenAIProvider(model string) (*OpenAIProvider, error) {
	apiKey := os.Getenv("SURVEYWALK_OPENAI_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("SURVEYWALK_OPENAI_KEY or OPENAI_API_KEY environment variable required")
	}

	client := openai.NewClient(apiKey)

	if model == "" {
		model = "gpt-4o"
	}

	return &OpenAIProvider{client: client, model: model}, nil
}

func (p *OpenAIProvider) Synthesize(ctx context.Context, field *survey.FieldDescriptor) ([]survey.TestCase, error) {
	descriptor, err := fieldJSON(field)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: p.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: buildUserPrompt(descriptor),
				},
			},
			MaxTokens: 1024,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	cases, err := parseCasesJSON(resp.Choices[0].Message.Content, "openai:"+p.model)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OpenAI response as JSON: %w", err)
	}
	return cases, nil
}
