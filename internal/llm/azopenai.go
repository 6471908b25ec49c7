package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azopenai"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"go.uber.org/zap"
)

const DefaultTopK = 4

// chatClient is the part of *azopenai.Client the answerer uses
type chatClient interface {
	GetChatCompletions(ctx context.Context, body azopenai.ChatCompletionsOptions, options *azopenai.GetChatCompletionsOptions) (azopenai.GetChatCompletionsResponse, error)
}

// AzOpenAIAnswerer answers from retrieved document chunks with an Azure OpenAI deployment
type AzOpenAIAnswerer struct {
	client       chatClient
	deploymentID string
	retriever    *Retriever
	topK         int
	history      *History
	logger       *zap.Logger
}

// NewAzOpenAIAnswerer creates an answerer using key authentication.
// The deploymentID is used for every completion request. A nil history
// keeps the default number of turns per conversation.
func NewAzOpenAIAnswerer(endpoint, apiKey, deploymentID string, retriever *Retriever, topK int, history *History, logger *zap.Logger) (*AzOpenAIAnswerer, error) {
	keyCredential := azcore.NewKeyCredential(apiKey)
	client, err := azopenai.NewClientWithKeyCredential(endpoint, keyCredential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure OpenAI client: %w", err)
	}
	return newAzOpenAIAnswerer(client, deploymentID, retriever, topK, history, logger), nil
}

func newAzOpenAIAnswerer(client chatClient, deploymentID string, retriever *Retriever, topK int, history *History, logger *zap.Logger) *AzOpenAIAnswerer {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if retriever == nil {
		retriever = NewRetriever(nil, logger)
	}
	if history == nil {
		history = NewHistory(DefaultHistoryTurns, DefaultHistorySessions)
	}
	return &AzOpenAIAnswerer{
		client:       client,
		deploymentID: deploymentID,
		retriever:    retriever,
		topK:         topK,
		history:      history,
		logger:       logger,
	}
}

// Answer retrieves context for question and asks the model.
// Sources lists each contributing document once, best match first.
// When ctx carries a session, earlier turns of that session are sent
// ahead of the question and the new turn is recorded.
func (a *AzOpenAIAnswerer) Answer(ctx context.Context, question string) (*Response, error) {
	chunks := a.retriever.Search(question, a.topK)
	session := SessionFrom(ctx)

	var turns []Turn
	if session != "" {
		turns = a.history.Turns(session)
	}

	resp, err := a.client.GetChatCompletions(
		ctx,
		azopenai.ChatCompletionsOptions{
			DeploymentName: to.Ptr(a.deploymentID),
			Messages:       buildMessages(turns, buildPrompt(question, chunks)),
		},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat completion: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil || resp.Choices[0].Message.Content == nil {
		return nil, ErrNoCompletion
	}

	text := strings.TrimSpace(*resp.Choices[0].Message.Content)
	if session != "" {
		a.history.Add(session, Turn{Question: question, Answer: text})
	}

	sources := sourcesOf(chunks)
	a.logger.Debug("Completion received",
		zap.String("deployment", a.deploymentID),
		zap.Int("history_turns", len(turns)),
		zap.Strings("sources", sources))

	return &Response{
		Text:    text,
		Sources: sources,
	}, nil
}

// buildMessages replays earlier turns as plain question/answer pairs;
// only the current question carries retrieved context.
func buildMessages(turns []Turn, prompt string) []azopenai.ChatRequestMessageClassification {
	messages := make([]azopenai.ChatRequestMessageClassification, 0, 2*len(turns)+1)
	for _, t := range turns {
		messages = append(messages,
			&azopenai.ChatRequestUserMessage{Content: azopenai.NewChatRequestUserMessageContent(t.Question)},
			&azopenai.ChatRequestAssistantMessage{Content: azopenai.NewChatRequestAssistantMessageContent(t.Answer)},
		)
	}
	return append(messages, &azopenai.ChatRequestUserMessage{
		Content: azopenai.NewChatRequestUserMessageContent(prompt),
	})
}

func buildPrompt(question string, chunks []Chunk) string {
	var b strings.Builder
	b.WriteString("Use the following pieces of context to answer the question at the end. ")
	b.WriteString("If you don't know the answer, just say that you don't know.\n\n")
	for _, c := range chunks {
		b.WriteString(c.Text)
		b.WriteString("\n\n")
	}
	b.WriteString("Question: ")
	b.WriteString(question)
	b.WriteString("\nHelpful Answer:")
	return b.String()
}

func sourcesOf(chunks []Chunk) []string {
	seen := make(map[string]struct{}, len(chunks))
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if _, ok := seen[c.Source]; ok {
			continue
		}
		seen[c.Source] = struct{}{}
		out = append(out, c.Source)
	}
	return out
}
