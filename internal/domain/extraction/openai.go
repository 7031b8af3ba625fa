package extraction

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"tokopos/pkg/logger"
)

const extractionPrompt = `You are a data extraction assistant for a point-of-sale catalog.
Extract every product row from the document. Respond with JSON only:
{"products":[{"name":"...","description":"...","price":0,"costPrice":0,"stock":0}]}
Prices are plain numbers in the document's currency. Use 0 for any value
that is not present. Do not invent rows.`

// OpenAIExtractor implements Extractor with a chat completion call.
type OpenAIExtractor struct {
	client *openai.Client
	model  string
}

// NewOpenAIExtractor creates an extractor backed by the OpenAI API.
func NewOpenAIExtractor(client *openai.Client, model string) *OpenAIExtractor {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIExtractor{client: client, model: model}
}

type extractionResponse struct {
	Products []ProductCandidate `json:"products"`
}

// ExtractProducts sends the document to the model and parses the JSON
// candidate list out of the reply. Image payloads go as data URIs,
// anything else as text.
func (e *OpenAIExtractor) ExtractProducts(ctx context.Context, document []byte, mimeType string) ([]ProductCandidate, error) {
	if len(document) == 0 {
		return nil, fmt.Errorf("empty document payload")
	}

	userMessage := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if strings.HasPrefix(mimeType, "image/") {
		dataURI := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(document))
		userMessage.MultiContent = []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: "Extract the products from this document."},
			{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURI}},
		}
	} else {
		userMessage.Content = string(document)
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractionPrompt},
			userMessage,
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no completion choices returned")
	}

	var parsed extractionResponse
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		return nil, fmt.Errorf("parse extraction response: %w", err)
	}

	candidates := make([]ProductCandidate, 0, len(parsed.Products))
	for _, c := range parsed.Products {
		if strings.TrimSpace(c.Name) == "" {
			continue
		}
		candidates = append(candidates, c)
	}

	logger.Info(ctx, "products extracted from document",
		"mime_type", mimeType,
		"candidates", len(candidates),
	)
	return candidates, nil
}

var _ Extractor = (*OpenAIExtractor)(nil)
