package quiz

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNoQuestions reports an empty selection pool or an attempt to begin a
	// round with no questions.
	ErrNoQuestions = errors.New("no questions available")
	// ErrAnswerRequired reports a blank submission for a question type that
	// requires an explicit selection.
	ErrAnswerRequired = errors.New("answer required")
	// ErrSessionState reports an operation attempted outside its valid
	// session state.
	ErrSessionState = errors.New("invalid session state")
)

// BankRepository persists the parsed question bank. The bank is replaced
// wholesale on each parse; there is no incremental merge.
type BankRepository interface {
	SaveBank(questions []Question) error
	LoadBank() ([]Question, error)
}

// WrongRepository persists the wrong-question set, deduplicated by question
// id; re-adding an already-present id overwrites it.
type WrongRepository interface {
	LoadWrong() ([]Question, error)
	SaveWrong(questions []Question) error
	UpsertWrong(q Question) error
}

// StatsRepository persists the aggregate answer statistics.
type StatsRepository interface {
	LoadStats() Stats
	SaveStats(s Stats) error
	ResetStats() (Stats, error)
}

// FavoritesRepository persists the favorited question ids. Ids with no
// matching question in the current bank are inert, not invalid.
type FavoritesRepository interface {
	LoadFavorites() map[int]bool
	SaveFavorites(ids map[int]bool) error
}

// Attempt is one graded submission, recorded for the session history.
type Attempt struct {
	QuestionID int
	Type       QType
	Raw        string
	Norm       string
	Correct    bool
}

// SessionSummary is one row of the persisted round history.
type SessionSummary struct {
	ID            int64
	Mode          Mode
	QuestionCount int
	CorrectCount  int
	StartedAt     time.Time
	FinishedAt    time.Time // zero while the round is still open
}

// HistoryRepository records rounds and their graded submissions.
type HistoryRepository interface {
	BeginSession(ctx context.Context, mode Mode, questionCount int) (int64, error)
	RecordAttempt(ctx context.Context, sessionID int64, attempt Attempt) error
	FinishSession(ctx context.Context, sessionID int64, correctCount int) error
	RecentSessions(ctx context.Context, limit int) ([]SessionSummary, error)
	WrongRate(ctx context.Context, questionID int) (answered, wrong int, err error)
}
