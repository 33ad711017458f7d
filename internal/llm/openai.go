package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

// Message is a minimal chat message passed to the provider.
// Role must be one of: "system", "user", or "assistant".
type Message struct {
	Role    string
	Content string
}

// Completion is the provider's reply to a synthesis call. FinishReason is
// "stop" when the model completed its answer normally; anything else means
// the completion was cut short (token budget, content filter, etc).
type Completion struct {
	Content      string
	FinishReason string
}

// Client defines the two provider calls the question pipeline makes.
// Complete runs a free-form chat completion with the configured generation
// parameters. Categorize forces the provider to pick exactly one of the
// given category names via a constrained function call.
type Client interface {
	Complete(ctx context.Context, messages []Message) (Completion, error)
	Categorize(ctx context.Context, question string, categories []string) (string, error)
}

const categorizeFunctionName = "categorize_question"

// categorizeInstruction frames the classification call. The answer itself is
// constrained by the function schema, not by this text.
const categorizeInstruction = "You categorize member questions for a caregiving organization. " +
	"Pick the single category that best matches the question."

// OpenAIClient calls the OpenAI API for classification and draft synthesis.
// Generation parameters are injected at construction and never change.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewOpenAIClient constructs an OpenAI-backed provider client with the given
// model and generation parameters.
func NewOpenAIClient(apiKey, model string, temperature float32, maxTokens int) *OpenAIClient {
	return &OpenAIClient{
		client:      openai.NewClient(apiKey),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// Complete sends the message pair to the chat completion API and returns the
// answer text together with the finish reason.
func (c *OpenAIClient) Complete(ctx context.Context, messages []Message) (Completion, error) {
	if c.client == nil {
		return Completion{}, errors.New("openai client not initialized")
	}

	oaMsgs := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := m.Role
		if role != openai.ChatMessageRoleSystem && role != openai.ChatMessageRoleUser && role != openai.ChatMessageRoleAssistant {
			// coerce anything unknown to user
			role = openai.ChatMessageRoleUser
		}
		oaMsgs = append(oaMsgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    oaMsgs,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return Completion{}, err
	}
	if len(resp.Choices) == 0 {
		return Completion{}, errors.New("provider returned no completion choices")
	}
	choice := resp.Choices[0]
	return Completion{
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
	}, nil
}

// Categorize asks the provider to classify the question, restricting the
// output to the given category names through a forced function call. It
// returns the raw category string from the function arguments.
func (c *OpenAIClient) Categorize(ctx context.Context, question string, categories []string) (string, error) {
	if c.client == nil {
		return "", errors.New("openai client not initialized")
	}

	fn := openai.FunctionDefinition{
		Name:        categorizeFunctionName,
		Description: "Categorize the member's question into one specific category",
		Parameters: jsonschema.Definition{
			Type: jsonschema.Object,
			Properties: map[string]jsonschema.Definition{
				"category": {
					Type:        jsonschema.String,
					Enum:        categories,
					Description: "The category that best matches the question",
				},
			},
			Required: []string{"category"},
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: categorizeInstruction},
			{Role: openai.ChatMessageRoleUser, Content: question},
		},
		Functions:    []openai.FunctionDefinition{fn},
		FunctionCall: openai.FunctionCall{Name: categorizeFunctionName},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("provider returned no completion choices")
	}
	call := resp.Choices[0].Message.FunctionCall
	if call == nil {
		return "", errors.New("provider returned no function call")
	}

	var args struct {
		Category string `json:"category"`
	}
	if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
		return "", fmt.Errorf("parsing category arguments: %w", err)
	}
	if args.Category == "" {
		return "", errors.New("provider returned empty category")
	}
	return args.Category, nil
}
