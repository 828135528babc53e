package quiz

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// HistoryStore keeps the round/attempt history in SQLite. Unlike the JSON
// documents it is append-mostly and transactional, so a crash mid-round never
// tears it.
type HistoryStore struct {
	db *sql.DB
}

func NewHistoryStore(path string) (*HistoryStore, error) {
	if strings.TrimSpace(path) == "" {
		path = "history.db"
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	store := &HistoryStore{db: db}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *HistoryStore) Close() error {
	return s.db.Close()
}

func (s *HistoryStore) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id INTEGER PRIMARY KEY AUTOINCREMENT,
			mode TEXT NOT NULL,
			question_count INTEGER NOT NULL,
			correct_count INTEGER NOT NULL DEFAULT 0,
			started_at_unix INTEGER NOT NULL,
			finished_at_unix INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS attempts (
			session_id INTEGER NOT NULL,
			question_id INTEGER NOT NULL,
			q_type TEXT NOT NULL,
			answer_raw TEXT NOT NULL,
			answer_norm TEXT NOT NULL,
			correct INTEGER NOT NULL,
			answered_at_unix INTEGER NOT NULL,
			PRIMARY KEY (session_id, question_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at_unix DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_question ON attempts(question_id);`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *HistoryStore) BeginSession(ctx context.Context, mode Mode, questionCount int) (int64, error) {
	result, err := s.db.ExecContext(
		ctx,
		`INSERT INTO sessions (mode, question_count, started_at_unix) VALUES (?, ?, ?)`,
		string(mode),
		questionCount,
		time.Now().UTC().UnixNano(),
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// RecordAttempt stores one graded submission. A question is graded at most
// once per round, so the (session, question) key conflicts only if a caller
// misbehaves; the first verdict then wins.
func (s *HistoryStore) RecordAttempt(ctx context.Context, sessionID int64, attempt Attempt) error {
	correct := 0
	if attempt.Correct {
		correct = 1
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO attempts (session_id, question_id, q_type, answer_raw, answer_norm, correct, answered_at_unix)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sessionID,
		attempt.QuestionID,
		string(attempt.Type),
		attempt.Raw,
		attempt.Norm,
		correct,
		time.Now().UTC().UnixNano(),
	)
	return err
}

func (s *HistoryStore) FinishSession(ctx context.Context, sessionID int64, correctCount int) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE sessions SET correct_count = ?, finished_at_unix = ? WHERE session_id = ?`,
		correctCount,
		time.Now().UTC().UnixNano(),
		sessionID,
	)
	return err
}

func (s *HistoryStore) RecentSessions(ctx context.Context, limit int) ([]SessionSummary, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT session_id, mode, question_count, correct_count, started_at_unix, finished_at_unix
		 FROM sessions
		 ORDER BY started_at_unix DESC, session_id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]SessionSummary, 0, limit)
	for rows.Next() {
		var (
			item       SessionSummary
			mode       string
			startedNs  int64
			finishedNs int64
		)
		if err := rows.Scan(&item.ID, &mode, &item.QuestionCount, &item.CorrectCount, &startedNs, &finishedNs); err != nil {
			return nil, err
		}
		item.Mode = Mode(mode)
		item.StartedAt = time.Unix(0, startedNs).UTC()
		if finishedNs > 0 {
			item.FinishedAt = time.Unix(0, finishedNs).UTC()
		}
		sessions = append(sessions, item)
	}

	return sessions, rows.Err()
}

// WrongRate aggregates how often a question was missed across all recorded
// rounds, for the per-question drill-down in the stats view.
func (s *HistoryStore) WrongRate(ctx context.Context, questionID int) (answered, wrong int, err error) {
	err = s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(*), COUNT(*) - COALESCE(SUM(correct), 0) FROM attempts WHERE question_id = ?`,
		questionID,
	).Scan(&answered, &wrong)
	if err != nil {
		return 0, 0, err
	}
	return answered, wrong, nil
}
