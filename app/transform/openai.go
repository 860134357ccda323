package transform

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Categories the generated posts are sorted into. The model is asked to
// pick one; anything else is coerced to the default.
var knownCategories = map[string]bool{
	"Buying a Business":  true,
	"Selling a Business": true,
	"Valuation":          true,
	"Financing":          true,
	"Due Diligence":      true,
	"General":            true,
}

const defaultCategory = "General"

const transformPrompt = `You are an editor who turns video transcripts into blog articles.
Given a video transcript, title and description, write a well-structured markdown article.
Respond with a single JSON object and nothing else, using exactly these keys:
"title" (a concise article headline), "excerpt" (one to two sentences), "content" (the full markdown article), "category" (one of: Buying a Business, Selling a Business, Valuation, Financing, Due Diligence, General), "tags" (three to six short lowercase strings).
Do not invent facts that are not supported by the transcript.`

// OpenAI implements Transformer with a chat completion call.
type OpenAI struct {
	client *openai.Client
	model  string
}

var _ Transformer = (*OpenAI)(nil)

func NewOpenAI(apiKey, model string) *OpenAI {
	return &OpenAI{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (o *OpenAI) Transform(ctx context.Context, req TransformRequest) (*BlogDraft, error) {
	userMsg := fmt.Sprintf("Video title: %s\n\nVideo description:\n%s\n\nTranscript:\n%s",
		req.Title, req.Description, req.Transcript)

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: transformPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMsg},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to transform content: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("transformation returned no choices")
	}

	draft, err := ParseDraft(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	return draft, nil
}

// ParseDraft decodes the model reply, tolerating a fenced code block around
// the JSON object.
func ParseDraft(reply string) (*BlogDraft, error) {
	reply = strings.TrimSpace(reply)
	reply = strings.TrimPrefix(reply, "```json")
	reply = strings.TrimPrefix(reply, "```")
	reply = strings.TrimSuffix(reply, "```")
	reply = strings.TrimSpace(reply)

	var draft BlogDraft
	if err := json.Unmarshal([]byte(reply), &draft); err != nil {
		return nil, fmt.Errorf("failed to parse transformation reply: %w", err)
	}

	if draft.Title == "" || draft.Content == "" {
		return nil, fmt.Errorf("transformation reply is missing title or content")
	}

	if !knownCategories[draft.Category] {
		draft.Category = defaultCategory
	}

	return &draft, nil
}
