package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"quiz-drill/internal/quiz"
)

func newTestStore(t *testing.T) *quiz.Store {
	t.Helper()
	dir := t.TempDir()
	return quiz.NewStore(quiz.StorePaths{
		Bank:      filepath.Join(dir, "questions.json"),
		Wrong:     filepath.Join(dir, "wrong_questions.json"),
		Stats:     filepath.Join(dir, "stats.json"),
		Favorites: filepath.Join(dir, "favorites.json"),
	}, zerolog.Nop())
}

func TestRunStopsWhenInputEndsMidQuestion(t *testing.T) {
	store := newTestStore(t)
	if err := store.SaveBank([]quiz.Question{
		{ID: 1, Type: quiz.TypeSingle, Prompt: "pick one", Options: map[string]string{"A": "x", "B": "y"}, Answer: "A"},
	}); err != nil {
		t.Fatalf("save bank: %v", err)
	}
	service := quiz.NewService(store, store, store, nil, zerolog.Nop())

	// Menu 2, single choice, one question, then the input ends at the answer
	// prompt. Run must abort the round and return instead of re-prompting.
	in := strings.NewReader("2\n1\n1\n")
	var out bytes.Buffer
	if err := Run(context.Background(), in, &out, service, store, "questions.docx"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Len() > 1<<16 {
		t.Fatalf("output suspiciously large (%d bytes), likely a re-prompt loop", out.Len())
	}
}

func TestRunFoldsAnsweredQuestionsWhenInputEnds(t *testing.T) {
	store := newTestStore(t)
	if err := store.SaveBank([]quiz.Question{
		{ID: 1, Type: quiz.TypeSingle, Prompt: "first", Options: map[string]string{"A": "x"}, Answer: "A"},
		{ID: 2, Type: quiz.TypeSingle, Prompt: "second", Options: map[string]string{"A": "x"}, Answer: "A"},
	}); err != nil {
		t.Fatalf("save bank: %v", err)
	}
	service := quiz.NewService(store, store, store, nil, zerolog.Nop())

	// One question answered, then the input ends on the second one.
	in := strings.NewReader("2\n1\n2\nA\n\n")
	var out bytes.Buffer
	if err := Run(context.Background(), in, &out, service, store, "questions.docx"); err != nil {
		t.Fatalf("run: %v", err)
	}

	stats := store.LoadStats()
	if stats.TotalAnswered != 1 || stats.TotalCorrect != 1 {
		t.Fatalf("stats = %d/%d, want the answered question folded in", stats.TotalCorrect, stats.TotalAnswered)
	}
}
