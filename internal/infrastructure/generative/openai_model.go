package generative

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"pinkong/internal/bootstrap/config"
	"pinkong/internal/errs"
	"pinkong/internal/ports"
)

var _ ports.ContentModel = (*OpenAIModel)(nil)

// OpenAIModel implements ports.ContentModel over the chat completions API
// with a JSON-object response format.
type OpenAIModel struct {
	client     openai.Client
	model      string
	configured bool
}

func NewOpenAIModel(cfg config.GenerativeConfig) *OpenAIModel {
	if !cfg.Configured() {
		return &OpenAIModel{configured: false}
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIModel{
		client:     openai.NewClient(opts...),
		model:      cfg.Model,
		configured: true,
	}
}

func (m *OpenAIModel) Configured() bool {
	return m != nil && m.configured
}

func (m *OpenAIModel) GenerateJSON(ctx context.Context, systemPrompt string, userPrompt string) (map[string]string, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if !m.Configured() {
		return nil, errors.New("generative service is not configured")
	}

	resp, err := m.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(m.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return nil, errs.Wrap(err, "chat completion")
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}

	return ParseJSONObject(resp.Choices[0].Message.Content)
}

// ParseJSONObject decodes a top-level JSON object and renders every value as
// a string. Values are deliberately not type-checked beyond that.
func ParseJSONObject(body string) (map[string]string, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(body)), &raw); err != nil {
		return nil, errs.Wrap(err, "parse response body")
	}

	out := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case string:
			out[key] = v
		case nil:
			out[key] = ""
		default:
			out[key] = fmt.Sprintf("%v", v)
		}
	}
	return out, nil
}
