package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/voiceunleashed/fluency/internal/domain/analysis"
	"github.com/voiceunleashed/fluency/internal/infra/ai/prompt"
)

const maxTokens = 1024

type Client struct {
	*openai.Client
	Model string
}

func NewClient(apiKey, model string) *Client {
	return &Client{Client: openai.NewClient(apiKey), Model: model}
}

// Synthesize implements analysis.Synthesizer. One call per request,
// no retry: a non-conforming response surfaces as ErrBadFeedback.
func (c *Client) Synthesize(ctx context.Context, kind analysis.MediaKind, transcript string, signal analysis.VisualSignal) (analysis.Feedback, error) {
	model := c.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	userPrompt := prompt.GetAudioPrompt(transcript)
	if kind == analysis.KindVideo {
		userPrompt = prompt.GetVideoPrompt(transcript, signal)
	}

	req := openai.ChatCompletionRequest{
		Model: model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return analysis.Feedback{}, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return analysis.Feedback{}, fmt.Errorf("%w: model returned no choices", analysis.ErrBadFeedback)
	}

	return prompt.ParseFeedback(resp.Choices[0].Message.Content)
}
