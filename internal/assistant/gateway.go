package assistant

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"patienthelpdesk/internal/logging"
)

// ErrUnavailable is returned when the completion service cannot answer:
// missing API key or an upstream call failure.
var ErrUnavailable = errors.New("assistant unavailable")

// ApologyReply is the static degraded response relayed to the user when the
// assistant cannot answer.
const ApologyReply = "I'm sorry, I'm unable to respond right now. Please try again later or contact support."

// systemPrompt pins the assistant to the insurance helpdesk domain.
const systemPrompt = "You are a Patient Helpdesk Assistant specialized in insurance policies, claims, and denials. " +
	"Provide helpful, accurate, and concise responses related to health insurance inquiries, policy details, " +
	"claim processes, and denial reasons (e.g., 'Insufficient documentation', 'Policy expired'). " +
	"Focus on policies like Basic Health Insurance and Comprehensive Health Insurance, and assist with " +
	"resolving denied claims. If the user asks about unrelated topics, politely redirect them to " +
	"insurance-related queries."

// Completion parameters are fixed constants of the gateway.
const (
	completionModel       = openai.GPT3Dot5Turbo
	completionMaxTokens   = 150
	completionTemperature = 0.7
)

// Turn is one entry in the running chat transcript.
type Turn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// chatClient is the slice of the OpenAI client the gateway uses.
type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Gateway is a stateless adapter over an external chat-completion service.
type Gateway struct {
	client chatClient
	logger *logging.Logger
}

// NewGateway builds a gateway; with an empty API key the gateway stays in
// the degraded state and every reply fails with ErrUnavailable.
func NewGateway(apiKey string, logger *logging.Logger) *Gateway {
	g := &Gateway{logger: logger}
	if apiKey != "" {
		g.client = openai.NewClient(apiKey)
	}
	return g
}

// newGatewayWithClient is used by tests to inject a fake client.
func newGatewayWithClient(client chatClient, logger *logging.Logger) *Gateway {
	return &Gateway{client: client, logger: logger}
}

// Reply sends the fixed system instruction, the running transcript, and the
// new user utterance to the completion service and returns the text of the
// first completion.
func (g *Gateway) Reply(ctx context.Context, history []Turn, input string) (string, error) {
	if g.client == nil {
		return "", ErrUnavailable
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, turn := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    turnRole(turn.Role),
			Content: turn.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: input,
	})

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       completionModel,
		Messages:    messages,
		MaxTokens:   completionMaxTokens,
		Temperature: completionTemperature,
	})
	if err != nil {
		g.logger.Warn("chat completion failed", "error", err)
		return "", ErrUnavailable
	}
	if len(resp.Choices) == 0 {
		g.logger.Warn("chat completion returned no choices")
		return "", ErrUnavailable
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func turnRole(role string) string {
	if role == "assistant" {
		return openai.ChatMessageRoleAssistant
	}
	return openai.ChatMessageRoleUser
}
