package survey

import (
	"encoding/json"

	"github.com/moodlet/moodlet-backend/internal/llm"
	"github.com/moodlet/moodlet-backend/internal/model"
	"github.com/moodlet/moodlet-backend/internal/style"
)

// DefaultFormCode names the single survey form the backend serves.
const DefaultFormCode = "default"

// Question is a survey question as shown to clients.
type Question struct {
	Code     string                 `json:"code"`
	Question string                 `json:"question"`
	Type     model.QuestionType     `json:"type"`
	Options  []model.QuestionOption `json:"options"`
}

// Form is the ordered list of active questions.
type Form struct {
	Code      string     `json:"code"`
	Questions []Question `json:"questions"`
}

// StartRequest opens a session, optionally for a signed-in user.
type StartRequest struct {
	UserID   *int64 `json:"user_id"`
	FormCode string `json:"form_code"`
}

// StartResult carries the new session id and its questions.
type StartResult struct {
	Questions []Question `json:"questions"`
	SessionID int64      `json:"session_id"`
}

// AnswerItem is the answer to one session question instance.
type AnswerItem struct {
	Answer     json.RawMessage `json:"answer"`
	QuestionID int64           `json:"qinst_id"`
}

// SaveAnswersRequest is the body of the answer submission.
type SaveAnswersRequest struct {
	Answers   []AnswerItem `json:"answers"`
	SessionID int64        `json:"session_id"`
}

// FollowupRequest asks for AI questions based on the choice answers.
type FollowupRequest struct {
	SessionID     *int64         `json:"session_id"`
	ChoiceAnswers map[string]any `json:"choiceAnswers"`
}

// FollowupResult lists the generated questions.
type FollowupResult struct {
	SessionID *int64                 `json:"session_id"`
	Questions []llm.FollowupQuestion `json:"questions"`
}

// FinalRequest carries every answer of the survey.
type FinalRequest struct {
	SessionID     *int64            `json:"session_id"`
	ChoiceAnswers map[string]any    `json:"choiceAnswers"`
	TextAnswers   map[string]string `json:"textAnswers"`
}

// FinalResult is the outcome of the survey. Image is nil when rendering failed.
type FinalResult struct {
	SessionID            *int64       `json:"session_id"`
	WorstStyle           *style.Code  `json:"worstStyle"`
	WorstStyleLabel      *string      `json:"worstStyleLabel"`
	Image                *string      `json:"image"`
	FinalStyle           style.Code   `json:"finalStyle"`
	FinalStyleLabel      string       `json:"finalStyleLabel"`
	Prompt               string       `json:"prompt"`
	BestMatchStyles      []style.Code `json:"bestMatchStyles"`
	BestMatchStyleLabels []string     `json:"bestMatchStyleLabels"`
}

// ChoiceAnswers reduces loosely typed client answers to classifier input.
// A value is either the option letter or an object with a "value" field;
// anything else is skipped.
func ChoiceAnswers(raw map[string]any) style.Answers {
	answers := make(style.Answers, len(raw))
	for question, v := range raw {
		switch val := v.(type) {
		case string:
			answers[question] = val
		case map[string]any:
			if s, ok := val["value"].(string); ok {
				answers[question] = s
			}
		}
	}
	return answers
}

func globalToQuestion(q model.GlobalQuestion) Question {
	return Question{
		Code:     q.Code,
		Question: q.QuestionText,
		Type:     q.Type,
		Options:  optionsOrEmpty(q.Options),
	}
}

func optionsOrEmpty(options []model.QuestionOption) []model.QuestionOption {
	if options == nil {
		return []model.QuestionOption{}
	}
	return options
}
