// Package survey runs the style survey: serving the form, recording answers,
// generating AI follow-up questions and producing the final analysis.
package survey

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/moodlet/moodlet-backend/internal/common"
	"github.com/moodlet/moodlet-backend/internal/llm"
	"github.com/moodlet/moodlet-backend/internal/model"
	"github.com/moodlet/moodlet-backend/internal/service"
	"github.com/moodlet/moodlet-backend/internal/style"
)

const msgSessionNotFound = "Session not found"

const (
	followupOrderBase = 100
	finalScore        = 1.0
	bestMatchScore    = 0.8
)

// ImageStore persists a generated image and returns its public URL.
type ImageStore interface {
	SavePNG(data []byte) (string, error)
}

// Service implements the survey flow.
type Service struct {
	storage service.Storage
	ai      llm.Client
	images  ImageStore
	logger  *slog.Logger
	now     func() time.Time
}

// NewService wires the survey flow to its collaborators.
func NewService(storage service.Storage, ai llm.Client, images ImageStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		storage: storage,
		ai:      ai,
		images:  images,
		logger:  logger,
		now:     time.Now,
	}
}

// Form returns the active global questions under the requested form code.
func (s *Service) Form(ctx context.Context, code string) (*Form, error) {
	rows, err := s.storage.ListActiveGlobalQuestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load survey form: %w", err)
	}

	form := &Form{Code: code, Questions: make([]Question, 0, len(rows))}
	for _, r := range rows {
		form.Questions = append(form.Questions, globalToQuestion(r))
	}
	return form, nil
}

// StartSession creates a session and snapshots the global questions into it.
func (s *Service) StartSession(ctx context.Context, req StartRequest) (*StartResult, error) {
	rows, err := s.storage.ListActiveGlobalQuestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load survey form: %w", err)
	}

	tx, err := s.storage.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	session, err := tx.CreateSession(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	snapshot := make([]model.SessionQuestion, 0, len(rows))
	for _, r := range rows {
		snapshot = append(snapshot, model.SessionQuestion{
			SessionID:    session.ID,
			Source:       model.SourceGlobal,
			Code:         r.Code,
			Type:         r.Type,
			OrderNo:      r.OrderNo,
			QuestionText: r.QuestionText,
			Options:      r.Options,
		})
	}
	if err := tx.AddSessionQuestions(ctx, snapshot); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit session: %w", err)
	}

	result := &StartResult{SessionID: session.ID, Questions: make([]Question, 0, len(rows))}
	for _, r := range rows {
		result.Questions = append(result.Questions, globalToQuestion(r))
	}

	s.logger.Info("survey session started",
		"session_id", session.ID,
		"questions", len(snapshot))
	return result, nil
}

// SaveAnswers stores the answers of a session, replacing earlier answers to
// the same question instances.
func (s *Service) SaveAnswers(ctx context.Context, sessionID int64, req SaveAnswersRequest) error {
	if req.SessionID != sessionID {
		return common.ErrSessionMismatch
	}
	if err := s.requireSession(ctx, sessionID); err != nil {
		return err
	}

	tx, err := s.storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, item := range req.Answers {
		answer := item.Answer
		if len(answer) == 0 {
			answer = json.RawMessage("null")
		}
		if err := tx.UpsertSessionAnswer(ctx, sessionID, item.QuestionID, answer); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit answers: %w", err)
	}

	s.logger.Debug("survey answers saved", "session_id", sessionID, "count", len(req.Answers))
	return nil
}

// linkedSession reports the session a stateless request refers to. A missing
// or non-positive id means the request is not tied to a session.
func linkedSession(id *int64) (int64, bool) {
	if id == nil || *id <= 0 {
		return 0, false
	}
	return *id, true
}

// Followup generates open questions from the choice answers. With a session
// id they are also stored on the session as AI text questions.
func (s *Service) Followup(ctx context.Context, req FollowupRequest) (*FollowupResult, error) {
	sessionID, attached := linkedSession(req.SessionID)
	if attached {
		if err := s.requireSession(ctx, sessionID); err != nil {
			return nil, err
		}
	}

	generated, err := s.ai.FollowupQuestions(ctx, req.ChoiceAnswers)
	if err != nil {
		return nil, fmt.Errorf("failed to generate follow-up questions: %w", err)
	}

	questions := make([]llm.FollowupQuestion, 0, len(generated))
	for _, q := range generated {
		if strings.TrimSpace(q.Text) == "" {
			continue
		}
		questions = append(questions, q)
	}

	if attached && len(questions) > 0 {
		stored := make([]model.SessionQuestion, 0, len(questions))
		for i, q := range questions {
			stored = append(stored, model.SessionQuestion{
				SessionID:    sessionID,
				Source:       model.SourceAI,
				Code:         q.ID,
				Type:         model.QuestionText,
				OrderNo:      followupOrderBase + i + 1,
				QuestionText: q.Text,
			})
		}
		if err := s.storage.AddSessionQuestions(ctx, stored); err != nil {
			return nil, err
		}
	}

	return &FollowupResult{SessionID: req.SessionID, Questions: questions}, nil
}

// FinalAnalysis classifies the choice answers, asks the AI for matching and
// clashing styles, renders the room image and records the ranking.
func (s *Service) FinalAnalysis(ctx context.Context, req FinalRequest) (*FinalResult, error) {
	sessionID, attached := linkedSession(req.SessionID)
	if attached {
		if err := s.requireSession(ctx, sessionID); err != nil {
			return nil, err
		}
	}

	finalStyle := style.PickFinalStyle(ChoiceAnswers(req.ChoiceAnswers))
	prompt, err := style.RenderPrompt(finalStyle)
	if err != nil {
		return nil, err
	}

	var (
		analysis llm.StyleAnalysis
		imageURL *string
	)

	// Both branches degrade instead of failing, so the group only joins them.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		result, err := s.ai.AnalyzeStyle(gctx, finalStyle, req.TextAnswers)
		if err != nil {
			s.logger.Warn("style analysis failed, using catalog pairings",
				"style", finalStyle,
				"error", err)
			result = catalogAnalysis(finalStyle)
		}
		analysis = result
		return nil
	})
	g.Go(func() error {
		url, err := s.renderImage(gctx, prompt)
		if err != nil {
			s.logger.Warn("image generation failed", "style", finalStyle, "error", err)
			return nil
		}
		imageURL = &url
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &FinalResult{
		SessionID:            req.SessionID,
		FinalStyle:           finalStyle,
		FinalStyleLabel:      style.Label(finalStyle),
		BestMatchStyles:      analysis.BestMatchStyles,
		BestMatchStyleLabels: make([]string, 0, len(analysis.BestMatchStyles)),
		Prompt:               prompt,
		Image:                imageURL,
	}
	if result.BestMatchStyles == nil {
		result.BestMatchStyles = []style.Code{}
	}
	for _, c := range result.BestMatchStyles {
		result.BestMatchStyleLabels = append(result.BestMatchStyleLabels, style.Label(c))
	}
	if analysis.WorstStyle != "" {
		worst := analysis.WorstStyle
		label := style.Label(worst)
		result.WorstStyle = &worst
		result.WorstStyleLabel = &label
	}

	if attached {
		if err := s.recordResults(ctx, sessionID, finalStyle, result.BestMatchStyles); err != nil {
			return nil, err
		}
	}

	s.logger.Info("survey analyzed",
		"session_id", req.SessionID,
		"style", finalStyle,
		"best_matches", result.BestMatchStyles,
		"image", imageURL != nil)
	return result, nil
}

func (s *Service) requireSession(ctx context.Context, sessionID int64) error {
	_, err := s.storage.GetSession(ctx, sessionID)
	if errors.Is(err, common.ErrNotFound) {
		return common.NewUserError(msgSessionNotFound, err)
	}
	return err
}

func (s *Service) renderImage(ctx context.Context, prompt string) (string, error) {
	data, err := s.ai.GenerateImage(ctx, prompt)
	if err != nil {
		return "", err
	}
	return s.images.SavePNG(data)
}

// recordResults replaces the session ranking with the final style followed by
// the distinct best matches, then marks the session completed.
func (s *Service) recordResults(ctx context.Context, sessionID int64, finalStyle style.Code, best []style.Code) error {
	results := RankStyles(finalStyle, best)

	tx, err := s.storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.ReplaceStyleResults(ctx, sessionID, results); err != nil {
		return err
	}
	if err := tx.CompleteSession(ctx, sessionID, s.now()); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit style results: %w", err)
	}
	return nil
}

// RankStyles builds the persisted ranking: the final style at rank 1 and each
// distinct best match after it. Styles without a theme are skipped.
func RankStyles(finalStyle style.Code, best []style.Code) []model.StyleResult {
	var results []model.StyleResult
	seen := make(map[int64]bool)
	rank := 1

	if id, ok := style.ThemeID(string(finalStyle)); ok {
		results = append(results, model.StyleResult{ThemeID: id, Score: finalScore, Rank: rank})
		seen[id] = true
		rank++
	}
	for _, c := range best {
		id, ok := style.ThemeID(string(c))
		if !ok || seen[id] {
			continue
		}
		results = append(results, model.StyleResult{ThemeID: id, Score: bestMatchScore, Rank: rank})
		seen[id] = true
		rank++
	}
	return results
}

func catalogAnalysis(finalStyle style.Code) llm.StyleAnalysis {
	analysis := llm.StyleAnalysis{BestMatchStyles: style.Compatible(finalStyle)}
	if worst, ok := style.Opposite(finalStyle); ok {
		analysis.WorstStyle = worst
	}
	return analysis
}
