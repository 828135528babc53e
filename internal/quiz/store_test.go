package quiz

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	return NewStore(StorePaths{
		Bank:      filepath.Join(dir, "questions.json"),
		Wrong:     filepath.Join(dir, "wrong_questions.json"),
		Stats:     filepath.Join(dir, "stats.json"),
		Favorites: filepath.Join(dir, "favorites.json"),
	}, zerolog.Nop())
}

func TestBankRoundTrip(t *testing.T) {
	store := newTestStore(t)

	questions := []Question{
		{ID: 1, Type: TypeSingle, Prompt: "题干", Options: map[string]string{"A": "x", "B": "y"}, Answer: "A"},
		{ID: 2, Type: TypeBlank, Prompt: "填空", Options: map[string]string{}, Answer: "答案"},
	}
	if err := store.SaveBank(questions); err != nil {
		t.Fatalf("save bank: %v", err)
	}

	loaded, err := store.LoadBank()
	if err != nil {
		t.Fatalf("load bank: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(loaded))
	}
	if loaded[0].ID != 1 || loaded[0].Options["B"] != "y" {
		t.Fatalf("round trip mangled the record: %+v", loaded[0])
	}
}

func TestLoadBankMissingFileIsEmpty(t *testing.T) {
	store := newTestStore(t)

	loaded, err := store.LoadBank()
	if err != nil {
		t.Fatalf("load of missing bank: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("missing bank should read as empty, got %d records", len(loaded))
	}
}

func TestLoadBankUnparseableFileIsEmpty(t *testing.T) {
	store := newTestStore(t)
	if err := os.WriteFile(store.paths.Bank, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	loaded, err := store.LoadBank()
	if err != nil {
		t.Fatalf("load of corrupt bank: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("corrupt bank should read as empty, got %d records", len(loaded))
	}
}

func TestLoadBankRecoversIrregularRecords(t *testing.T) {
	store := newTestStore(t)
	payload := `[
		{"id": 3, "q_type": "single", "question": "完整记录", "options": {"A": "x"}, "answer": "A"},
		{"id": 4}
	]`
	if err := os.WriteFile(store.paths.Bank, []byte(payload), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	loaded, err := store.LoadBank()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("irregular record must be kept, got %d records", len(loaded))
	}

	recovered := loaded[1]
	if recovered.ID != 4 || recovered.Prompt != "" || recovered.Answer != "" {
		t.Fatalf("defaults not substituted: %+v", recovered)
	}
	if recovered.Options == nil {
		t.Fatalf("options must default to an empty map, not nil")
	}
}

func TestSaveWrongDeduplicatesByID(t *testing.T) {
	store := newTestStore(t)

	if err := store.SaveWrong([]Question{
		{ID: 1, Answer: "old"},
		{ID: 2, Answer: "two"},
		{ID: 1, Answer: "new"},
	}); err != nil {
		t.Fatalf("save wrong: %v", err)
	}

	loaded, err := store.LoadWrong()
	if err != nil {
		t.Fatalf("load wrong: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected deduplicated list of 2, got %d", len(loaded))
	}
	if loaded[0].ID != 1 || loaded[0].Answer != "new" {
		t.Fatalf("last write should win for duplicate ids: %+v", loaded[0])
	}
}

func TestUpsertWrongUpdatesInPlace(t *testing.T) {
	store := newTestStore(t)

	if err := store.UpsertWrong(Question{ID: 5, WrongCount: 1}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := store.UpsertWrong(Question{ID: 5, WrongCount: 2}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if err := store.UpsertWrong(Question{ID: 6, WrongCount: 1}); err != nil {
		t.Fatalf("third upsert: %v", err)
	}

	loaded, err := store.LoadWrong()
	if err != nil {
		t.Fatalf("load wrong: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("set size must track distinct ids, got %d", len(loaded))
	}
	if loaded[0].WrongCount != 2 {
		t.Fatalf("upsert did not overwrite: %+v", loaded[0])
	}
}

func TestLoadStatsInitializesDefaults(t *testing.T) {
	store := newTestStore(t)

	stats := store.LoadStats()
	if stats.TotalAnswered != 0 || stats.TotalCorrect != 0 {
		t.Fatalf("fresh stats should be zeroed: %+v", stats)
	}
	if stats.PerTypeTotal == nil || stats.PerTypeCorrect == nil {
		t.Fatalf("per-type maps must be initialized")
	}

	// The defaults are written back immediately.
	if _, err := os.Stat(store.paths.Stats); err != nil {
		t.Fatalf("stats file not created on first load: %v", err)
	}
}

func TestLoadStatsCorruptFileResets(t *testing.T) {
	store := newTestStore(t)
	if err := os.WriteFile(store.paths.Stats, []byte("%%%"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	stats := store.LoadStats()
	if stats.TotalAnswered != 0 {
		t.Fatalf("corrupt stats should reset to defaults: %+v", stats)
	}

	// And the file is usable again afterwards.
	stats.TotalAnswered = 5
	if err := store.SaveStats(stats); err != nil {
		t.Fatalf("save after reset: %v", err)
	}
	if got := store.LoadStats(); got.TotalAnswered != 5 {
		t.Fatalf("stats not persisted after reset: %+v", got)
	}
}

func TestStatsMergeRoundTrip(t *testing.T) {
	store := newTestStore(t)

	tally := NewRoundTally()
	tally.Answered[TypeSingle] = 3
	tally.Correct[TypeSingle] = 2
	tally.Answered[TypeTF] = 1

	stats := store.LoadStats()
	stats.Merge(tally)
	if err := store.SaveStats(stats); err != nil {
		t.Fatalf("save stats: %v", err)
	}

	loaded := store.LoadStats()
	if loaded.TotalAnswered != 4 || loaded.TotalCorrect != 2 {
		t.Fatalf("merge totals wrong: %+v", loaded)
	}
	if loaded.PerTypeTotal[TypeSingle] != 3 || loaded.PerTypeCorrect[TypeSingle] != 2 {
		t.Fatalf("per-type merge wrong: %+v", loaded)
	}
}

func TestFavoritesToggleAndCorruptFile(t *testing.T) {
	store := newTestStore(t)

	if fav, err := store.ToggleFavorite(9); err != nil || !fav {
		t.Fatalf("first toggle: fav=%v err=%v", fav, err)
	}
	if fav, err := store.ToggleFavorite(9); err != nil || fav {
		t.Fatalf("second toggle should unfavorite: fav=%v err=%v", fav, err)
	}
	if _, err := store.ToggleFavorite(4); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	favorites := store.LoadFavorites()
	if len(favorites) != 1 || !favorites[4] {
		t.Fatalf("unexpected favorites: %+v", favorites)
	}

	if err := os.WriteFile(store.paths.Favorites, []byte("oops"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if favorites := store.LoadFavorites(); len(favorites) != 0 {
		t.Fatalf("corrupt favorites should read as empty, got %+v", favorites)
	}
}

func TestDeleteBankRemovesFilesAndResetsStats(t *testing.T) {
	store := newTestStore(t)

	if err := store.SaveBank([]Question{{ID: 1}}); err != nil {
		t.Fatalf("save bank: %v", err)
	}
	if err := store.UpsertWrong(Question{ID: 1}); err != nil {
		t.Fatalf("upsert wrong: %v", err)
	}
	stats := store.LoadStats()
	stats.TotalAnswered = 10
	if err := store.SaveStats(stats); err != nil {
		t.Fatalf("save stats: %v", err)
	}

	if err := store.DeleteBank(); err != nil {
		t.Fatalf("delete bank: %v", err)
	}

	if _, err := os.Stat(store.paths.Bank); !os.IsNotExist(err) {
		t.Fatalf("bank file should be gone, stat err = %v", err)
	}
	if _, err := os.Stat(store.paths.Wrong); !os.IsNotExist(err) {
		t.Fatalf("wrong-list file should be gone, stat err = %v", err)
	}
	if got := store.LoadStats(); got.TotalAnswered != 0 {
		t.Fatalf("stats not reset: %+v", got)
	}

	// Deleting again is harmless.
	if err := store.DeleteBank(); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}
