package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/moodlet/moodlet-backend/internal/common"
	"github.com/moodlet/moodlet-backend/internal/style"
)

// cleanMarkdownWrapper strips a surrounding ```json fence from a model reply.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	content = strings.TrimPrefix(content, "```")
	if nl := strings.IndexByte(content, '\n'); nl >= 0 {
		// drop the language tag line
		content = content[nl+1:]
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}

// decodeLenient unmarshals content into out. When the whole reply is not
// JSON it retries with the span from the first open to the last close
// delimiter, which recovers replies that wrap the JSON in prose.
func decodeLenient(content string, open, closing byte, out any) error {
	content = cleanMarkdownWrapper(content)
	if err := json.Unmarshal([]byte(content), out); err == nil {
		return nil
	}

	start := strings.IndexByte(content, open)
	end := strings.LastIndexByte(content, closing)
	if start < 0 || end <= start {
		return fmt.Errorf("%w: no JSON %c...%c block in %q", common.ErrAIResponse, open, closing, truncate(content, 200))
	}

	if err := json.Unmarshal([]byte(content[start:end+1]), out); err != nil {
		return fmt.Errorf("%w: %w", common.ErrAIResponse, err)
	}
	return nil
}

// parseFollowupQuestions normalises a follow-up reply. Items may be objects
// with id/text or bare strings; missing ids become T<n>.
func parseFollowupQuestions(content string) ([]FollowupQuestion, error) {
	var items []json.RawMessage
	if err := decodeLenient(content, '[', ']', &items); err != nil {
		return nil, err
	}

	questions := make([]FollowupQuestion, 0, len(items))
	for i, raw := range items {
		q := FollowupQuestion{}

		var obj struct {
			ID   any `json:"id"`
			Text any `json:"text"`
		}
		if err := json.Unmarshal(raw, &obj); err == nil && (obj.ID != nil || obj.Text != nil) {
			q.ID = stringify(obj.ID)
			q.Text = stringify(obj.Text)
		} else {
			var s string
			if err := json.Unmarshal(raw, &s); err == nil {
				q.Text = s
			} else {
				q.Text = strings.TrimSpace(string(raw))
			}
		}

		if q.ID == "" {
			q.ID = fmt.Sprintf("T%d", i+1)
		}
		questions = append(questions, q)
	}

	return questions, nil
}

// parseStyleAnalysis reads the analysis reply keeping only valid style codes.
func parseStyleAnalysis(content string) (StyleAnalysis, error) {
	var raw struct {
		WorstStyle      any   `json:"worstStyle"`
		BestMatchStyles []any `json:"bestMatchStyles"`
	}
	if err := decodeLenient(content, '{', '}', &raw); err != nil {
		return StyleAnalysis{}, err
	}

	analysis := StyleAnalysis{BestMatchStyles: []style.Code{}}
	for _, v := range raw.BestMatchStyles {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if code := style.Code(s); code.Valid() {
			analysis.BestMatchStyles = append(analysis.BestMatchStyles, code)
		}
	}

	if s, ok := raw.WorstStyle.(string); ok && style.Code(s).Valid() {
		analysis.WorstStyle = style.Code(s)
	}

	return analysis, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprint(t)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
