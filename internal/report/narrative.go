package report

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Summarizer appends a short model-written paragraph to a rendered
// report. It is strictly optional: construction fails without an API
// key, and callers treat summary failures as non-fatal.
type Summarizer struct {
	client openai.Client
	model  string
}

// NewSummarizer builds a Summarizer for the given OpenAI API key.
func NewSummarizer(apiKey string) (*Summarizer, error) {
	if apiKey == "" {
		return nil, errors.New("no OpenAI API key configured")
	}
	return &Summarizer{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  openai.ChatModelGPT4oMini,
	}, nil
}

// Summarize asks the model for a two-sentence plain-language takeaway of
// the rendered report and returns the report with the summary appended.
// Any API failure returns the original text unchanged.
func (s *Summarizer) Summarize(ctx context.Context, reportText string) string {
	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: s.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You summarize weather suitability reports. Reply with at most two plain sentences: the overall verdict and the single biggest caveat. No emoji, no markdown."),
			openai.UserMessage(reportText),
		},
	})
	if err != nil {
		log.Printf("report: summary request failed: %v", err)
		return reportText
	}
	if len(resp.Choices) == 0 {
		log.Printf("report: summary response had no choices")
		return reportText
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		return reportText
	}
	return reportText + fmt.Sprintf("\n📝 SUMMARY: %s\n", summary)
}
