package llm

import (
	"context"
	"errors"

	"github.com/moodlet/moodlet-backend/internal/style"
)

// ErrImageUnsupported is returned by providers that cannot render images.
var ErrImageUnsupported = errors.New("provider does not support image generation")

// Client is the AI surface the survey flow depends on.
type Client interface {
	// FollowupQuestions writes open-ended questions tailored to the
	// multiple-choice answers given so far.
	FollowupQuestions(ctx context.Context, choiceAnswers map[string]any) ([]FollowupQuestion, error)
	// AnalyzeStyle picks styles that go well with, and clash with, an
	// already decided final style.
	AnalyzeStyle(ctx context.Context, finalStyle style.Code, textAnswers map[string]string) (StyleAnalysis, error)
	// GenerateImage renders prompt and returns PNG bytes.
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// FollowupQuestion is one AI generated open question.
type FollowupQuestion struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// StyleAnalysis contains the AI's view of a final style.
type StyleAnalysis struct {
	// WorstStyle is empty when the model named no valid style.
	WorstStyle      style.Code
	Prompt          string
	BestMatchStyles []style.Code
}

// Provider is a raw model backend.
type Provider interface {
	Chat(ctx context.Context, req ChatRequest) (string, error)
	Image(ctx context.Context, prompt string) ([]byte, error)
}

// ChatRequest is a single-turn chat completion request.
type ChatRequest struct {
	System      string
	User        string
	Temperature float64
}
