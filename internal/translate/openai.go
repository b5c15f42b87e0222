package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

// OpenAI translates with the Responses API
type OpenAI struct {
	client openai.Client
	model  string
	source string
	target string
}

// NewOpenAI creates a translator for the source -> target pair.
func NewOpenAI(apiKey, model, source, target string, opts ...option.RequestOption) *OpenAI {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAI{
		client: openai.NewClient(opts...),
		model:  model,
		source: source,
		target: target,
	}
}

func (o *OpenAI) instructions() string {
	return fmt.Sprintf("Translate the user's film description from %q to %q. "+
		"Reply with the translation only, without quotes or commentary.", o.source, o.target)
}

// Translate implements Translator.
func (o *OpenAI) Translate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	if o.model == "" {
		return "", errors.New("openai translate: model is empty")
	}

	params := responses.ResponseNewParams{
		Model:        o.model,
		Instructions: openai.String(o.instructions()),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(text, responses.EasyInputMessageRoleUser),
			},
		},
	}

	resp, err := o.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai translate: %w", err)
	}

	out := strings.TrimSpace(resp.OutputText())
	if out == "" {
		return "", errors.New("openai translate: empty output")
	}
	return out, nil
}
