package quiz

import (
	"context"
	"strings"
)

// Mode selects where a round draws from and how its wrong answers feed back
// into the persisted wrong-list.
type Mode string

const (
	// ModeNormal draws from the bank; wrong answers join the wrong-list.
	ModeNormal Mode = "normal"
	// ModeWrongOnly draws from the wrong-list; questions answered correctly
	// graduate out of it.
	ModeWrongOnly Mode = "wrong"
)

// Result is the stored feedback for one graded question.
type Result struct {
	Correct  bool
	Raw      string
	UserNorm string
	RefNorm  string
}

// Session drives one quiz round. It owns the shuffled order, the cursor, the
// per-question results, and the per-type tallies; all of it is ephemeral and
// folded into persistent state by Finish. A Session is single-goroutine, like
// everything else here.
type Session struct {
	mode      Mode
	service   *Service
	questions []Question
	results   []*Result
	cursor    int
	tally     RoundTally
	wrongIDs  map[int]bool
	rightIDs  map[int]bool
	pending   *Result // short-answer verdict awaiting self-assessment
	finished  bool
	historyID int64
}

// Mode returns the round's mode.
func (s *Session) Mode() Mode { return s.mode }

// Len returns the number of questions in the round.
func (s *Session) Len() int { return len(s.questions) }

// Position returns the 1-based cursor position.
func (s *Session) Position() int { return s.cursor + 1 }

// Finished reports whether Finish has folded this round.
func (s *Session) Finished() bool { return s.finished }

// Current returns the question under the cursor and its stored result, nil
// while the question still awaits an answer.
func (s *Session) Current() (Question, *Result) {
	return s.questions[s.cursor], s.results[s.cursor]
}

// Submit grades the current question. Blank answers are rejected for choice
// and true/false questions, which need an explicit selection; fill-in and
// short-answer questions accept a blank and grade it as an empty string.
//
// Short-answer questions are never auto-graded: Submit stores the normalized
// forms and the round waits for Judge before tallying. Every other type is
// tallied immediately, and a wrong answer is pushed into the persisted
// wrong-list at once so an aborted round loses nothing.
func (s *Session) Submit(ctx context.Context, raw string) (Result, error) {
	if s.finished || s.pending != nil {
		return Result{}, ErrSessionState
	}
	if s.results[s.cursor] != nil {
		// Revisiting a graded question is read-only.
		return Result{}, ErrSessionState
	}

	question, _ := s.Current()
	trimmed := strings.TrimSpace(raw)
	switch question.Type {
	case TypeSingle, TypeTF:
		if trimmed == "" {
			return Result{}, ErrAnswerRequired
		}
	case TypeBlank, TypeShort:
		// Blank accepted; grading an empty string keeps the round moving.
	}

	correct, userNorm, refNorm := CheckAnswer(question, trimmed)
	result := Result{Correct: correct, Raw: trimmed, UserNorm: userNorm, RefNorm: refNorm}

	if question.Type == TypeShort {
		s.pending = &result
		return result, nil
	}

	s.settle(ctx, result)
	return result, nil
}

// NeedsJudgment reports whether the round is waiting on a self-assessment
// verdict for the current short-answer question.
func (s *Session) NeedsJudgment() bool { return s.pending != nil }

// Judge resolves a pending short-answer submission with the test-taker's own
// verdict and tallies it like any other result.
func (s *Session) Judge(ctx context.Context, correct bool) (Result, error) {
	if s.pending == nil {
		return Result{}, ErrSessionState
	}
	result := *s.pending
	result.Correct = correct
	s.pending = nil
	s.settle(ctx, result)
	return result, nil
}

func (s *Session) settle(ctx context.Context, result Result) {
	question := s.questions[s.cursor]

	stored := result
	s.results[s.cursor] = &stored

	s.tally.Answered[question.Type]++
	if result.Correct {
		s.tally.Correct[question.Type]++
		s.rightIDs[question.ID] = true
		delete(s.wrongIDs, question.ID)
	} else {
		s.wrongIDs[question.ID] = true
		delete(s.rightIDs, question.ID)

		question.WrongCount++
		s.questions[s.cursor] = question
		if err := s.service.wrong.UpsertWrong(question); err != nil {
			s.service.log.Warn().Err(err).Int("question_id", question.ID).Msg("could not persist wrong answer")
		}
	}

	s.service.recordAttempt(ctx, s.historyID, Attempt{
		QuestionID: question.ID,
		Type:       question.Type,
		Raw:        result.Raw,
		Norm:       result.UserNorm,
		Correct:    result.Correct,
	})
}

// Advance moves the cursor forward. Past the last question it finishes the
// round and reports done. Moving onto an already-graded question leaves its
// stored result in place; it can be re-read but not re-submitted.
func (s *Session) Advance(ctx context.Context) (bool, error) {
	if s.finished || s.pending != nil {
		return false, ErrSessionState
	}
	if s.cursor+1 < len(s.questions) {
		s.cursor++
		return false, nil
	}
	return true, s.Finish(ctx)
}

// Back moves the cursor to the previous question for non-destructive review.
func (s *Session) Back() bool {
	if s.finished || s.pending != nil || s.cursor == 0 {
		return false
	}
	s.cursor--
	return true
}

// Finish folds the round into persistent state: tallies merge additively into
// statistics, and the wrong-list is updated per mode. Questions never answered
// this round are left untouched either way. Finishing twice is an error.
func (s *Session) Finish(ctx context.Context) error {
	if s.finished || s.pending != nil {
		return ErrSessionState
	}
	s.finished = true

	if s.tally.TotalAnswered() > 0 {
		stats := s.service.stats.LoadStats()
		stats.Merge(s.tally)
		if err := s.service.stats.SaveStats(stats); err != nil {
			s.service.log.Warn().Err(err).Msg("could not persist statistics")
		}
	}

	if err := s.updateWrongList(); err != nil {
		s.service.log.Warn().Err(err).Msg("could not update wrong-list")
	}

	s.service.finishSession(ctx, s.historyID, s.tally.TotalCorrect())
	return nil
}

// updateWrongList merges this round's outcomes into the persisted wrong-list.
// Normal mode re-merges wrong answers (idempotent next to the per-submission
// upserts). Wrong-only mode additionally removes questions answered correctly
// this round: that is how a question graduates out of the wrong-list.
func (s *Session) updateWrongList() error {
	if len(s.wrongIDs) == 0 && (s.mode != ModeWrongOnly || len(s.rightIDs) == 0) {
		return nil
	}

	existing, err := s.service.wrong.LoadWrong()
	if err != nil {
		return err
	}
	byID := make(map[int]Question, len(existing))
	order := make([]int, 0, len(existing))
	for _, q := range existing {
		if _, seen := byID[q.ID]; !seen {
			order = append(order, q.ID)
		}
		byID[q.ID] = q
	}

	for _, q := range s.questions {
		switch {
		case s.wrongIDs[q.ID]:
			if _, seen := byID[q.ID]; !seen {
				order = append(order, q.ID)
			}
			byID[q.ID] = q
		case s.mode == ModeWrongOnly && s.rightIDs[q.ID]:
			delete(byID, q.ID)
		}
	}

	merged := make([]Question, 0, len(byID))
	for _, id := range order {
		if q, ok := byID[id]; ok {
			merged = append(merged, q)
		}
	}
	return s.service.wrong.SaveWrong(merged)
}

// Tally exposes the round's running counts for the end-of-round summary.
func (s *Session) Tally() RoundTally { return s.tally }
