package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/moodlet/moodlet-backend/internal/common"
	"github.com/moodlet/moodlet-backend/internal/model"
)

// ReplaceStyleResults drops a session's previous ranking and stores results in its place.
func (s *SQLiteStorage) ReplaceStyleResults(ctx context.Context, sessionID int64, results []model.StyleResult) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(sessionID, "sessionID"); err != nil {
		return err
	}
	for i := range results {
		if err := validateStyleResult(&results[i]); err != nil {
			return err
		}
	}

	return s.withTx(ctx, func(q querier) error {
		if _, err := q.ExecContext(ctx, `
			DELETE FROM session_style_result WHERE session_id = ?
		`, sessionID); err != nil {
			return fmt.Errorf("failed to clear style results: %w", err)
		}

		for i := range results {
			r := &results[i]
			r.SessionID = sessionID
			result, err := q.ExecContext(ctx, `
				INSERT INTO session_style_result (session_id, style_id, score, rank_no)
				VALUES (?, ?, ?, ?)
			`, sessionID, r.ThemeID, r.Score, r.Rank)
			if err != nil {
				return fmt.Errorf("failed to insert style result: %w", err)
			}
			if r.ID, err = result.LastInsertId(); err != nil {
				return fmt.Errorf("failed to get style result id: %w", err)
			}
		}
		return nil
	})
}

// ListStyleResults returns a session's ranking ordered by rank.
func (s *SQLiteStorage) ListStyleResults(ctx context.Context, sessionID int64) ([]model.StyleResult, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(sessionID, "sessionID"); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT result_id, session_id, style_id, score, rank_no
		FROM session_style_result
		WHERE session_id = ?
		ORDER BY rank_no ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query style results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []model.StyleResult
	for rows.Next() {
		var r model.StyleResult
		if err := rows.Scan(&r.ID, &r.SessionID, &r.ThemeID, &r.Score, &r.Rank); err != nil {
			return nil, fmt.Errorf("failed to scan style result: %w", err)
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

// GetTopStyleResult returns the rank-1 result of a session.
func (s *SQLiteStorage) GetTopStyleResult(ctx context.Context, sessionID int64) (*model.StyleResult, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(sessionID, "sessionID"); err != nil {
		return nil, err
	}

	var r model.StyleResult
	err := s.q.QueryRowContext(ctx, `
		SELECT result_id, session_id, style_id, score, rank_no
		FROM session_style_result
		WHERE session_id = ? AND rank_no = 1
		LIMIT 1
	`, sessionID).Scan(&r.ID, &r.SessionID, &r.ThemeID, &r.Score, &r.Rank)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("style result for session %d: %w", sessionID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get style result: %w", err)
	}

	return &r, nil
}
