package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/moodlet/moodlet-backend/internal/model"
	"github.com/moodlet/moodlet-backend/internal/style"
)

// ExpectedSchemaVersion is the PRAGMA user_version a fully migrated
// database reports. Migrate fails when it cannot reach it.
const ExpectedSchemaVersion = 3

// Migration is one forward schema step. Up runs inside the transaction that
// also records Version.
type Migration struct {
	Up          func(ctx context.Context, q querier) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(ctx context.Context, q querier) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS users (
					user_id INTEGER PRIMARY KEY AUTOINCREMENT,
					email TEXT UNIQUE NOT NULL,
					name TEXT,
					image_url TEXT,
					oauth_provider TEXT NOT NULL,
					oauth_subject TEXT UNIQUE NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS style_theme (
					style_id INTEGER PRIMARY KEY,
					style_name TEXT UNIQUE NOT NULL,
					description TEXT
				)`,

				`CREATE TABLE IF NOT EXISTS survey_global_question (
					gq_id INTEGER PRIMARY KEY AUTOINCREMENT,
					code TEXT UNIQUE NOT NULL,
					type TEXT NOT NULL CHECK (type IN ('SINGLE','MULTI','SCALE','TEXT')),
					order_no INTEGER NOT NULL,
					question_text TEXT NOT NULL,
					options_json TEXT,
					active BOOLEAN DEFAULT 1
				)`,
				`CREATE INDEX idx_global_question_order ON survey_global_question(active, order_no)`,

				`CREATE TABLE IF NOT EXISTS survey_session (
					session_id INTEGER PRIMARY KEY AUTOINCREMENT,
					user_id INTEGER REFERENCES users(user_id) ON DELETE CASCADE,
					started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					completed_at DATETIME
				)`,

				`CREATE TABLE IF NOT EXISTS session_question (
					qinst_id INTEGER PRIMARY KEY AUTOINCREMENT,
					session_id INTEGER NOT NULL REFERENCES survey_session(session_id) ON DELETE CASCADE,
					source TEXT NOT NULL CHECK (source IN ('GLOBAL','AI')),
					code TEXT NOT NULL,
					type TEXT NOT NULL,
					order_no INTEGER,
					question_text TEXT NOT NULL,
					options_json TEXT,
					meta_json TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_session_question_session ON session_question(session_id, order_no)`,

				`CREATE TABLE IF NOT EXISTS session_answer (
					session_id INTEGER NOT NULL REFERENCES survey_session(session_id) ON DELETE CASCADE,
					qinst_id INTEGER NOT NULL REFERENCES session_question(qinst_id) ON DELETE CASCADE,
					answer_json TEXT NOT NULL,
					answered_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					PRIMARY KEY (session_id, qinst_id)
				)`,

				`CREATE TABLE IF NOT EXISTS session_style_result (
					result_id INTEGER PRIMARY KEY AUTOINCREMENT,
					session_id INTEGER NOT NULL REFERENCES survey_session(session_id) ON DELETE CASCADE,
					style_id INTEGER NOT NULL REFERENCES style_theme(style_id),
					score REAL NOT NULL,
					rank_no INTEGER NOT NULL
				)`,
				`CREATE INDEX idx_style_result_session ON session_style_result(session_id, rank_no)`,

				`CREATE TABLE IF NOT EXISTS furniture_product (
					product_id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL,
					detail_url TEXT,
					image_url TEXT,
					category TEXT,
					width REAL,
					depth REAL,
					height REAL,
					bed_size_code TEXT,
					material TEXT,
					color TEXT,
					style_id INTEGER REFERENCES style_theme(style_id),
					score REAL,
					lowest_price INTEGER,
					highest_price INTEGER,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_furniture_style_category ON furniture_product(style_id, category)`,

				`CREATE TABLE IF NOT EXISTS furniture_price (
					price_id INTEGER PRIMARY KEY AUTOINCREMENT,
					product_id INTEGER REFERENCES furniture_product(product_id) ON DELETE CASCADE,
					mall_name TEXT,
					mall_price TEXT,
					ship_fee TEXT,
					mall_url TEXT
				)`,
				`CREATE INDEX idx_furniture_price_product ON furniture_price(product_id)`,
			}

			return execAll(ctx, q, queries)
		},
	},
	{
		Version:     2,
		Description: "Seed style themes",
		Up: func(ctx context.Context, q querier) error {
			for _, code := range style.All() {
				id, ok := style.ThemeID(string(code))
				if !ok {
					return fmt.Errorf("no theme id for style %s", code)
				}
				if _, err := q.ExecContext(ctx,
					`INSERT OR IGNORE INTO style_theme (style_id, style_name, description) VALUES (?, ?, ?)`,
					id, string(code), style.Label(code),
				); err != nil {
					return fmt.Errorf("failed to seed style theme %s: %w", code, err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Seed default survey questions",
		Up: func(ctx context.Context, q querier) error {
			for i, sq := range defaultQuestions {
				options, err := json.Marshal(sq.options)
				if err != nil {
					return fmt.Errorf("failed to encode options for %s: %w", sq.code, err)
				}
				if _, err := q.ExecContext(ctx,
					`INSERT OR IGNORE INTO survey_global_question (code, type, order_no, question_text, options_json, active)
					VALUES (?, ?, ?, ?, ?, 1)`,
					sq.code, string(model.QuestionSingle), i+1, sq.text, string(options),
				); err != nil {
					return fmt.Errorf("failed to seed question %s: %w", sq.code, err)
				}
			}
			slog.Info("Seeded default survey questions", "count", len(defaultQuestions))
			return nil
		},
	},
}

type seedQuestion struct {
	code    string
	text    string
	options []model.QuestionOption
}

// Option A leans minimal/industrial, B natural/nordic/plants, C vintage/pastel/retro.
var defaultQuestions = []seedQuestion{
	{
		code: "Q1",
		text: "집에 들어섰을 때 가장 먼저 느끼고 싶은 분위기는?",
		options: []model.QuestionOption{
			{Value: "A", Label: "깔끔하고 세련된 느낌"},
			{Value: "B", Label: "따뜻하고 편안한 느낌"},
			{Value: "C", Label: "개성 있고 감성적인 느낌"},
		},
	},
	{
		code: "Q2",
		text: "주말에 집에서 주로 무엇을 하나요?",
		options: []model.QuestionOption{
			{Value: "A", Label: "정돈된 공간에서 일이나 공부에 집중"},
			{Value: "B", Label: "햇살 아래에서 차 한 잔과 휴식"},
			{Value: "C", Label: "좋아하는 소품을 꾸미고 취미 생활"},
		},
	},
	{
		code: "Q3",
		text: "가장 끌리는 색 조합은?",
		options: []model.QuestionOption{
			{Value: "A", Label: "화이트, 그레이, 블랙 같은 무채색"},
			{Value: "B", Label: "베이지, 우드, 브라운 같은 자연색"},
			{Value: "C", Label: "파스텔이나 진한 포인트 컬러"},
		},
	},
	{
		code: "Q4",
		text: "선호하는 가구 재질은?",
		options: []model.QuestionOption{
			{Value: "A", Label: "메탈, 콘크리트, 유리"},
			{Value: "B", Label: "원목, 라탄, 린넨"},
			{Value: "C", Label: "가죽, 벨벳, 빈티지 우드"},
		},
	},
	{
		code: "Q5",
		text: "소품은 어느 정도 두고 싶나요?",
		options: []model.QuestionOption{
			{Value: "A", Label: "꼭 필요한 것만 최소한으로"},
			{Value: "B", Label: "식물이나 자연 소재 소품 몇 가지"},
			{Value: "C", Label: "포스터, 오브제 등 취향이 드러나는 소품 가득"},
		},
	},
	{
		code: "Q6",
		text: "평소 공간의 정리 상태는?",
		options: []model.QuestionOption{
			{Value: "A", Label: "항상 비워두고 깔끔하게"},
			{Value: "B", Label: "적당히 생활감 있게"},
			{Value: "C", Label: "자유롭게 채워진 상태"},
		},
	},
	{
		code: "Q7",
		text: "원하는 조명 분위기는?",
		options: []model.QuestionOption{
			{Value: "A", Label: "밝고 균일한 간접 조명"},
			{Value: "B", Label: "따뜻한 색의 은은한 조명"},
			{Value: "C", Label: "분위기 있는 스탠드나 펜던트 조명"},
		},
	},
}

func execAll(ctx context.Context, q querier, statements []string) error {
	for i, stmt := range statements {
		if _, err := q.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("statement %d: %w", i+1, err)
		}
	}
	return nil
}

// Migrate brings the schema to ExpectedSchemaVersion, one transaction per
// pending migration.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	current, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := s.apply(ctx, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}
		slog.Info("Applied migration", "version", m.Version, "description", m.Description)
		current = m.Version
	}

	if current != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, current)
	}
	return nil
}

func (s *SQLiteStorage) apply(ctx context.Context, m Migration) error {
	return s.withTx(ctx, func(q querier) error {
		if err := m.Up(ctx, q); err != nil {
			return err
		}
		// PRAGMA does not take bound parameters.
		_, err := q.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", m.Version))
		return err
	})
}

// SchemaVersion reads PRAGMA user_version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
