// Package model defines the core domain models used throughout the application.
package model

import (
	"encoding/json"
	"time"
)

// QuestionType indicates how a survey question is answered.
type QuestionType string

// Question type constants.
const (
	QuestionSingle QuestionType = "SINGLE"
	QuestionMulti  QuestionType = "MULTI"
	QuestionScale  QuestionType = "SCALE"
	QuestionText   QuestionType = "TEXT"
)

// Valid reports whether t is one of the known question types.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionSingle, QuestionMulti, QuestionScale, QuestionText:
		return true
	}
	return false
}

// QuestionSource indicates where a session question came from.
type QuestionSource string

// Question source constants.
const (
	SourceGlobal QuestionSource = "GLOBAL"
	SourceAI     QuestionSource = "AI"
)

// QuestionOption is one selectable answer of a choice question.
type QuestionOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// GlobalQuestion is a question of the shared survey form.
type GlobalQuestion struct {
	Code         string
	Type         QuestionType
	QuestionText string
	Options      []QuestionOption
	ID           int64
	OrderNo      int
	Active       bool
}

// Session is one user's run through the survey.
type Session struct {
	StartedAt   time.Time
	CompletedAt *time.Time
	UserID      *int64
	ID          int64
}

// SessionQuestion is a question snapshotted into a session, either copied
// from the global form or generated by the AI.
type SessionQuestion struct {
	CreatedAt    time.Time
	Code         string
	Source       QuestionSource
	Type         QuestionType
	QuestionText string
	Options      []QuestionOption
	ID           int64
	SessionID    int64
	OrderNo      int
}

// SessionAnswer is the stored answer to a session question. The answer is
// kept as raw JSON since its shape depends on the question type.
type SessionAnswer struct {
	AnsweredAt time.Time
	Answer     json.RawMessage
	SessionID  int64
	QuestionID int64
}

// StyleResult ranks a style theme for a session.
type StyleResult struct {
	ID        int64
	SessionID int64
	ThemeID   int64
	Score     float64
	Rank      int
}
