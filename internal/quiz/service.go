package quiz

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
)

// Service wires the stores together and hands out quiz rounds. It owns no
// round state itself; each Begin* call returns a Session that does.
type Service struct {
	bank    BankRepository
	wrong   WrongRepository
	stats   StatsRepository
	history HistoryRepository // nil disables attempt history
	rng     *rand.Rand        // selection and shuffle source, seedable in tests
	log     zerolog.Logger
}

func NewService(bank BankRepository, wrong WrongRepository, stats StatsRepository, history HistoryRepository, log zerolog.Logger) *Service {
	return &Service{
		bank:    bank,
		wrong:   wrong,
		stats:   stats,
		history: history,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		log:     log,
	}
}

// ImportDocx parses a .docx question bank and replaces the persisted bank
// with the result. Returns the parsed questions for the post-import summary.
func (s *Service) ImportDocx(path string) ([]Question, error) {
	questions, err := ParseDocx(path)
	if err != nil {
		return nil, err
	}
	if err := s.bank.SaveBank(questions); err != nil {
		return nil, err
	}

	counts := CountByType(questions)
	s.log.Info().
		Int("total", len(questions)).
		Int("single", counts[TypeSingle]).
		Int("blank", counts[TypeBlank]).
		Int("tf", counts[TypeTF]).
		Int("short", counts[TypeShort]).
		Msg("question bank imported")
	return questions, nil
}

// Bank returns the persisted question bank.
func (s *Service) Bank() ([]Question, error) {
	return s.bank.LoadBank()
}

// WrongList returns the persisted wrong-question set.
func (s *Service) WrongList() ([]Question, error) {
	return s.wrong.LoadWrong()
}

// Stats returns the persisted aggregate statistics.
func (s *Service) Stats() Stats {
	return s.stats.LoadStats()
}

// ResetStats zeroes the persisted statistics.
func (s *Service) ResetStats() (Stats, error) {
	return s.stats.ResetStats()
}

// FilterByType narrows a pool to one question type; an empty filter keeps all.
func FilterByType(pool []Question, qtype QType) []Question {
	if qtype == "" {
		return pool
	}
	filtered := make([]Question, 0, len(pool))
	for _, q := range pool {
		if q.Type == qtype {
			filtered = append(filtered, q)
		}
	}
	return filtered
}

// SampleQuestions draws a uniform random sample without replacement from rng.
// An over-request silently clamps to the pool size.
func SampleQuestions(rng *rand.Rand, pool []Question, count int) []Question {
	if count > len(pool) {
		count = len(pool)
	}
	if count <= 0 {
		return nil
	}
	sample := make([]Question, 0, count)
	for _, idx := range rng.Perm(len(pool))[:count] {
		sample = append(sample, pool[idx])
	}
	return sample
}

// BeginNormal starts a round over the bank, filtered by type ("" for all),
// clamped to the available pool.
func (s *Service) BeginNormal(ctx context.Context, qtype QType, count int) (*Session, error) {
	pool, err := s.bank.LoadBank()
	if err != nil {
		return nil, err
	}
	return s.begin(ctx, ModeNormal, SampleQuestions(s.rng, FilterByType(pool, qtype), count))
}

// BeginWrongOnly starts a round over the wrong-list.
func (s *Service) BeginWrongOnly(ctx context.Context, count int) (*Session, error) {
	pool, err := s.wrong.LoadWrong()
	if err != nil {
		return nil, err
	}
	return s.begin(ctx, ModeWrongOnly, SampleQuestions(s.rng, pool, count))
}

// begin shuffles a non-empty selection into a fresh Session.
func (s *Service) begin(ctx context.Context, mode Mode, selected []Question) (*Session, error) {
	if len(selected) == 0 {
		return nil, ErrNoQuestions
	}

	questions := make([]Question, len(selected))
	copy(questions, selected)
	s.rng.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})

	session := &Session{
		mode:      mode,
		service:   s,
		questions: questions,
		results:   make([]*Result, len(questions)),
		tally:     NewRoundTally(),
		wrongIDs:  map[int]bool{},
		rightIDs:  map[int]bool{},
	}
	session.historyID = s.beginHistory(ctx, mode, len(questions))
	return session, nil
}

// RecentHistory returns the latest persisted session summaries, newest first.
// Without a history store it returns nothing.
func (s *Service) RecentHistory(ctx context.Context, limit int) []SessionSummary {
	if s.history == nil {
		return nil
	}
	sessions, err := s.history.RecentSessions(ctx, limit)
	if err != nil {
		s.log.Warn().Err(err).Msg("could not read session history")
		return nil
	}
	return sessions
}

// QuestionDifficulty reports how often a question was answered and how often
// it was answered wrong, from the attempt history. Without a history store, or
// on error, both counts are zero.
func (s *Service) QuestionDifficulty(ctx context.Context, questionID int) (answered, wrong int) {
	if s.history == nil {
		return 0, 0
	}
	answered, wrong, err := s.history.WrongRate(ctx, questionID)
	if err != nil {
		s.log.Warn().Err(err).Int("question_id", questionID).Msg("could not read attempt history")
		return 0, 0
	}
	return answered, wrong
}

// History failures are logged and swallowed: the history DB is a convenience
// record and must never block quizzing.

func (s *Service) beginHistory(ctx context.Context, mode Mode, questionCount int) int64 {
	if s.history == nil {
		return 0
	}
	id, err := s.history.BeginSession(ctx, mode, questionCount)
	if err != nil {
		s.log.Warn().Err(err).Msg("could not open history session")
		return 0
	}
	return id
}

func (s *Service) recordAttempt(ctx context.Context, sessionID int64, attempt Attempt) {
	if s.history == nil || sessionID == 0 {
		return
	}
	if err := s.history.RecordAttempt(ctx, sessionID, attempt); err != nil {
		s.log.Warn().Err(err).Int("question_id", attempt.QuestionID).Msg("could not record attempt")
	}
}

func (s *Service) finishSession(ctx context.Context, sessionID int64, correctCount int) {
	if s.history == nil || sessionID == 0 {
		return
	}
	if err := s.history.FinishSession(ctx, sessionID, correctCount); err != nil {
		s.log.Warn().Err(err).Msg("could not close history session")
	}
}
