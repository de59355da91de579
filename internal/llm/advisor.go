package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/moodlet/moodlet-backend/internal/common"
	"github.com/moodlet/moodlet-backend/internal/service"
	"github.com/moodlet/moodlet-backend/internal/style"
)

const (
	followupTemperature = 0.5
	analysisTemperature = 0.25
	followupCount       = 3
)

var _ Client = (*Advisor)(nil)

// Advisor implements Client on top of a Provider.
type Advisor struct {
	provider    Provider
	cache       *analysisCache
	logger      *slog.Logger
	rateLimiter *rateLimiter
	retryOpts   service.RetryOptions
}

// NewAdvisor wraps provider with rate limiting, retries and an analysis cache.
func NewAdvisor(provider Provider, cfg Config, logger *slog.Logger) *Advisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Advisor{
		provider:    provider,
		cache:       newAnalysisCache(cfg.CacheTTL),
		logger:      logger,
		rateLimiter: newRateLimiter(cfg.RateLimit),
		retryOpts:   retryOptions(cfg),
	}
}

// Close stops the cache sweeper and fails any later rate-limited call.
func (a *Advisor) Close() {
	a.rateLimiter.Close()
	a.cache.Close()
}

// FollowupQuestions asks the model for open questions about the user's taste.
func (a *Advisor) FollowupQuestions(ctx context.Context, choiceAnswers map[string]any) ([]FollowupQuestion, error) {
	answers, err := marshalUnescaped(choiceAnswers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode choice answers: %w", err)
	}

	content, err := a.chat(ctx, ChatRequest{
		System:      "출력은 반드시 JSON 배열만 반환하세요.",
		User:        buildFollowupPrompt(answers),
		Temperature: followupTemperature,
	})
	if err != nil {
		return nil, err
	}

	questions, err := parseFollowupQuestions(content)
	if err != nil {
		return nil, err
	}

	a.logger.Info("follow-up questions generated", "count", len(questions))
	return questions, nil
}

// AnalyzeStyle asks the model for matching and clashing styles. The image
// prompt always comes from the style catalog.
func (a *Advisor) AnalyzeStyle(ctx context.Context, finalStyle style.Code, textAnswers map[string]string) (StyleAnalysis, error) {
	if !finalStyle.Valid() {
		return StyleAnalysis{}, fmt.Errorf("%w: unknown final style %q", common.ErrInvalidInput, finalStyle)
	}

	prompt, err := style.RenderPrompt(finalStyle)
	if err != nil {
		return StyleAnalysis{}, err
	}

	key := analysisKey(finalStyle, textAnswers)
	if cached, ok := a.cache.get(key); ok {
		a.logger.Debug("cache hit for style analysis", "style", finalStyle)
		return cached, nil
	}

	content, err := a.chat(ctx, ChatRequest{
		System:      "출력은 반드시 JSON만 반환하세요.",
		User:        buildAnalysisPrompt(finalStyle, textAnswers),
		Temperature: analysisTemperature,
	})
	if err != nil {
		return StyleAnalysis{}, err
	}

	analysis, err := parseStyleAnalysis(content)
	if err != nil {
		return StyleAnalysis{}, err
	}
	analysis.Prompt = prompt

	a.cache.set(key, analysis)

	a.logger.Info("style analyzed",
		"style", finalStyle,
		"best_matches", analysis.BestMatchStyles,
		"worst", analysis.WorstStyle)

	return analysis, nil
}

// GenerateImage renders prompt into PNG bytes.
func (a *Advisor) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("%w: empty image prompt", common.ErrInvalidInput)
	}

	var image []byte
	err := common.WithRetry(ctx, func(ctx context.Context) error {
		if err := a.rateLimiter.wait(ctx); err != nil {
			return err
		}
		var imgErr error
		image, imgErr = a.provider.Image(ctx, prompt)
		return imgErr
	}, a.retryOpts)
	if err != nil {
		return nil, fmt.Errorf("image generation failed: %w", err)
	}

	a.logger.Info("image generated", "bytes", len(image))
	return image, nil
}

func (a *Advisor) chat(ctx context.Context, req ChatRequest) (string, error) {
	var content string
	err := common.WithRetry(ctx, func(ctx context.Context) error {
		if err := a.rateLimiter.wait(ctx); err != nil {
			return err
		}
		var chatErr error
		content, chatErr = a.provider.Chat(ctx, req)
		return chatErr
	}, a.retryOpts)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	return content, nil
}

func buildFollowupPrompt(answersJSON string) string {
	var b strings.Builder
	b.WriteString("너는 인테리어 취향을 더 깊이 알아보기 위한 follow-up 질문을 만드는 전문가다.\n\n")
	b.WriteString("사용자가 고른 선택형 답변:\n")
	b.WriteString(answersJSON)
	b.WriteString("\n\n")
	b.WriteString("규칙:\n")
	b.WriteString("- 보기 값(A/B/C)이 아니라 보기의 의미를 바탕으로 질문한다.\n")
	b.WriteString("- \"A스타일\" 같은 표현은 쓰지 않는다.\n")
	fmt.Fprintf(&b, "- 서술형 질문 %d개를 만든다.\n\n", followupCount)
	b.WriteString("다음 형식의 JSON 배열만 반환한다:\n[\n")
	for i := 1; i <= followupCount; i++ {
		fmt.Fprintf(&b, "  {\"id\":\"T%d\",\"text\":\"...\"}", i)
		if i < followupCount {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString("]\n")
	return b.String()
}

func buildAnalysisPrompt(finalStyle style.Code, textAnswers map[string]string) string {
	codes := style.All()
	quoted := make([]string, len(codes))
	for i, c := range codes {
		quoted[i] = fmt.Sprintf("%q", string(c))
	}

	keys := make([]string, 0, len(textAnswers))
	for k := range textAnswers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("너는 인테리어 스타일 전문가다.\n\n")
	fmt.Fprintf(&b, "이미 확정된 최종 스타일: finalStyle = %q\n\n", string(finalStyle))
	fmt.Fprintf(&b, "선택 가능한 스타일 코드: %s\n\n", strings.Join(quoted, ", "))
	b.WriteString("사용자의 서술형 답변:\n")
	if len(keys) == 0 {
		b.WriteString("(없음)\n")
	}
	for _, k := range keys {
		fmt.Fprintf(&b, "- %s: %s\n", k, textAnswers[k])
	}
	b.WriteString("\n할 일:\n")
	b.WriteString("1) finalStyle과 잘 어울리는 스타일 2~3개를 bestMatchStyles로 고른다.\n")
	b.WriteString("2) finalStyle과 가장 대비되는 스타일 1개를 worstStyle로 고른다.\n")
	b.WriteString("3) 위 스타일 코드 목록에 있는 값만 사용한다.\n\n")
	b.WriteString("다음 형식의 JSON만 반환한다:\n")
	b.WriteString("{\"bestMatchStyles\": [\"...\", \"...\"], \"worstStyle\": \"...\"}\n")
	return b.String()
}

func marshalUnescaped(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
