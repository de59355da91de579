package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/moodlet/moodlet-backend/internal/common"
	"github.com/moodlet/moodlet-backend/internal/model"
)

// ListActiveGlobalQuestions returns the active questions of the shared form ordered by order_no.
func (s *SQLiteStorage) ListActiveGlobalQuestions(ctx context.Context) ([]model.GlobalQuestion, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT gq_id, code, type, order_no, question_text, options_json, active
		FROM survey_global_question
		WHERE active = 1
		ORDER BY order_no ASC, gq_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query global questions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var questions []model.GlobalQuestion
	for rows.Next() {
		var (
			q       model.GlobalQuestion
			qType   string
			options sql.NullString
		)
		if err := rows.Scan(&q.ID, &q.Code, &qType, &q.OrderNo, &q.QuestionText, &options, &q.Active); err != nil {
			return nil, fmt.Errorf("failed to scan global question: %w", err)
		}
		q.Type = model.QuestionType(qType)
		if q.Options, err = decodeOptions(options); err != nil {
			return nil, fmt.Errorf("question %s: %w", q.Code, err)
		}
		questions = append(questions, q)
	}

	return questions, rows.Err()
}

// CreateSession starts a new survey session, optionally owned by a user.
func (s *SQLiteStorage) CreateSession(ctx context.Context, userID *int64) (*model.Session, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if userID != nil {
		if err := validateID(*userID, "userID"); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	result, err := s.q.ExecContext(ctx, `
		INSERT INTO survey_session (user_id, started_at) VALUES (?, ?)
	`, nullInt64(userID), now)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get session id: %w", err)
	}

	return &model.Session{ID: id, UserID: userID, StartedAt: now}, nil
}

// GetSession retrieves a session by id.
func (s *SQLiteStorage) GetSession(ctx context.Context, id int64) (*model.Session, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "sessionID"); err != nil {
		return nil, err
	}

	var (
		session   model.Session
		userID    sql.NullInt64
		completed sql.NullTime
	)
	err := s.q.QueryRowContext(ctx, `
		SELECT session_id, user_id, started_at, completed_at
		FROM survey_session
		WHERE session_id = ?
	`, id).Scan(&session.ID, &userID, &session.StartedAt, &completed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if userID.Valid {
		session.UserID = &userID.Int64
	}
	if completed.Valid {
		session.CompletedAt = &completed.Time
	}

	return &session, nil
}

// CompleteSession records when a session finished.
func (s *SQLiteStorage) CompleteSession(ctx context.Context, id int64, at time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "sessionID"); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx, `
		UPDATE survey_session SET completed_at = ? WHERE session_id = ?
	`, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to complete session: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("session %d: %w", id, common.ErrNotFound)
	}
	return nil
}

// AddSessionQuestions snapshots questions into their sessions. The generated
// ids are written back into the slice.
func (s *SQLiteStorage) AddSessionQuestions(ctx context.Context, questions []model.SessionQuestion) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	for i := range questions {
		if err := validateSessionQuestion(&questions[i]); err != nil {
			return err
		}
	}
	if len(questions) == 0 {
		return nil
	}

	return s.withTx(ctx, func(q querier) error {
		now := time.Now().UTC()
		for i := range questions {
			sq := &questions[i]
			options, err := encodeOptions(sq.Options)
			if err != nil {
				return fmt.Errorf("question %s: %w", sq.Code, err)
			}
			if sq.CreatedAt.IsZero() {
				sq.CreatedAt = now
			}

			result, err := q.ExecContext(ctx, `
				INSERT INTO session_question
					(session_id, source, code, type, order_no, question_text, options_json, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`, sq.SessionID, string(sq.Source), sq.Code, string(sq.Type), sq.OrderNo, sq.QuestionText, options, sq.CreatedAt)
			if err != nil {
				return fmt.Errorf("failed to insert session question %s: %w", sq.Code, err)
			}

			if sq.ID, err = result.LastInsertId(); err != nil {
				return fmt.Errorf("failed to get session question id: %w", err)
			}
		}
		return nil
	})
}

// ListSessionQuestions returns the questions of a session ordered by order_no.
func (s *SQLiteStorage) ListSessionQuestions(ctx context.Context, sessionID int64) ([]model.SessionQuestion, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(sessionID, "sessionID"); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT qinst_id, session_id, source, code, type, order_no, question_text, options_json, created_at
		FROM session_question
		WHERE session_id = ?
		ORDER BY order_no ASC, qinst_id ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query session questions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var questions []model.SessionQuestion
	for rows.Next() {
		var (
			sq            model.SessionQuestion
			source, qType string
			orderNo       sql.NullInt64
			options       sql.NullString
		)
		if err := rows.Scan(&sq.ID, &sq.SessionID, &source, &sq.Code, &qType, &orderNo,
			&sq.QuestionText, &options, &sq.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session question: %w", err)
		}
		sq.Source = model.QuestionSource(source)
		sq.Type = model.QuestionType(qType)
		sq.OrderNo = int(orderNo.Int64)
		if sq.Options, err = decodeOptions(options); err != nil {
			return nil, fmt.Errorf("question %s: %w", sq.Code, err)
		}
		questions = append(questions, sq)
	}

	return questions, rows.Err()
}

// UpsertSessionAnswer stores the answer to a session question, replacing any
// earlier answer. The question must belong to the session.
func (s *SQLiteStorage) UpsertSessionAnswer(ctx context.Context, sessionID, questionID int64, answer json.RawMessage) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(sessionID, "sessionID"); err != nil {
		return err
	}
	if err := validateID(questionID, "questionID"); err != nil {
		return err
	}
	if len(answer) == 0 || !json.Valid(answer) {
		return fmt.Errorf("%w: answer must be valid JSON", ErrInvalidAnswer)
	}

	var owner int64
	err := s.q.QueryRowContext(ctx, `
		SELECT session_id FROM session_question WHERE qinst_id = ?
	`, questionID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("session question %d: %w", questionID, common.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to look up session question: %w", err)
	}
	if owner != sessionID {
		return fmt.Errorf("%w: question %d belongs to session %d", common.ErrSessionMismatch, questionID, owner)
	}

	_, err = s.q.ExecContext(ctx, `
		INSERT INTO session_answer (session_id, qinst_id, answer_json, answered_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id, qinst_id) DO UPDATE SET
			answer_json = excluded.answer_json,
			answered_at = excluded.answered_at
	`, sessionID, questionID, string(answer), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save answer: %w", err)
	}
	return nil
}

// ListSessionAnswers returns every stored answer of a session.
func (s *SQLiteStorage) ListSessionAnswers(ctx context.Context, sessionID int64) ([]model.SessionAnswer, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(sessionID, "sessionID"); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT session_id, qinst_id, answer_json, answered_at
		FROM session_answer
		WHERE session_id = ?
		ORDER BY qinst_id ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query answers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var answers []model.SessionAnswer
	for rows.Next() {
		var (
			a   model.SessionAnswer
			raw string
		)
		if err := rows.Scan(&a.SessionID, &a.QuestionID, &raw, &a.AnsweredAt); err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		a.Answer = json.RawMessage(raw)
		answers = append(answers, a)
	}

	return answers, rows.Err()
}

func encodeOptions(options []model.QuestionOption) (sql.NullString, error) {
	if len(options) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(options)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode options: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func decodeOptions(raw sql.NullString) ([]model.QuestionOption, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var options []model.QuestionOption
	if err := json.Unmarshal([]byte(raw.String), &options); err != nil {
		return nil, fmt.Errorf("failed to decode options: %w", err)
	}
	return options, nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
