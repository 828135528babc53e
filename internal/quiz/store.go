package quiz

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
)

// StorePaths names the JSON documents the store manages.
type StorePaths struct {
	Bank      string
	Wrong     string
	Stats     string
	Favorites string
}

// Store persists the bank, the wrong-list, statistics, and favorites as
// whole JSON documents. Loads substitute defaults for anything missing or
// corrupt instead of failing: a broken field is recovered per record, a
// broken document falls back to empty. Writes replace the file wholesale.
type Store struct {
	paths StorePaths
	log   zerolog.Logger
}

func NewStore(paths StorePaths, log zerolog.Logger) *Store {
	return &Store{paths: paths, log: log}
}

func (s *Store) SaveBank(questions []Question) error {
	return s.writeJSON(s.paths.Bank, questions)
}

func (s *Store) LoadBank() ([]Question, error) {
	return s.loadQuestionFile(s.paths.Bank)
}

func (s *Store) LoadWrong() ([]Question, error) {
	return s.loadQuestionFile(s.paths.Wrong)
}

// SaveWrong persists the wrong-list deduplicated by id, last write wins,
// ordered by id for stable files.
func (s *Store) SaveWrong(questions []Question) error {
	byID := make(map[int]Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	deduped := make([]Question, 0, len(byID))
	for _, q := range byID {
		deduped = append(deduped, q)
	}
	sort.Slice(deduped, func(i, j int) bool { return deduped[i].ID < deduped[j].ID })

	return s.writeJSON(s.paths.Wrong, deduped)
}

// UpsertWrong merges a single question into the persisted wrong-list. Called
// on every incorrect submission so an aborted round loses nothing.
func (s *Store) UpsertWrong(q Question) error {
	existing, err := s.LoadWrong()
	if err != nil {
		return err
	}

	replaced := false
	for idx := range existing {
		if existing[idx].ID == q.ID {
			existing[idx] = q
			replaced = true
			break
		}
	}
	if !replaced {
		existing = append(existing, q)
	}
	return s.SaveWrong(existing)
}

// LoadStats returns the persisted statistics, writing back zeroed defaults
// when the file is missing or unparseable.
func (s *Store) LoadStats() Stats {
	data, err := os.ReadFile(s.paths.Stats)
	if err != nil {
		stats := NewStats()
		if writeErr := s.SaveStats(stats); writeErr != nil {
			s.log.Warn().Err(writeErr).Str("path", s.paths.Stats).Msg("could not initialize stats file")
		}
		return stats
	}

	var stats Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		s.log.Warn().Err(err).Str("path", s.paths.Stats).Msg("stats file unparseable, resetting to defaults")
		stats = NewStats()
		if writeErr := s.SaveStats(stats); writeErr != nil {
			s.log.Warn().Err(writeErr).Str("path", s.paths.Stats).Msg("could not reset stats file")
		}
		return stats
	}

	if stats.PerTypeTotal == nil {
		stats.PerTypeTotal = map[QType]int{}
	}
	if stats.PerTypeCorrect == nil {
		stats.PerTypeCorrect = map[QType]int{}
	}
	return stats
}

func (s *Store) SaveStats(stats Stats) error {
	return s.writeJSON(s.paths.Stats, stats)
}

func (s *Store) ResetStats() (Stats, error) {
	stats := NewStats()
	return stats, s.SaveStats(stats)
}

// LoadFavorites returns the favorited question ids; missing or corrupt files
// read as an empty set.
func (s *Store) LoadFavorites() map[int]bool {
	data, err := os.ReadFile(s.paths.Favorites)
	if err != nil {
		return map[int]bool{}
	}

	var ids []int
	if err := json.Unmarshal(data, &ids); err != nil {
		s.log.Warn().Err(err).Str("path", s.paths.Favorites).Msg("favorites file unparseable, treating as empty")
		return map[int]bool{}
	}

	favorites := make(map[int]bool, len(ids))
	for _, id := range ids {
		favorites[id] = true
	}
	return favorites
}

func (s *Store) SaveFavorites(favorites map[int]bool) error {
	ids := make([]int, 0, len(favorites))
	for id, ok := range favorites {
		if ok {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return s.writeJSON(s.paths.Favorites, ids)
}

// ToggleFavorite flips one id's membership and reports the new state.
func (s *Store) ToggleFavorite(id int) (bool, error) {
	favorites := s.LoadFavorites()
	if favorites[id] {
		delete(favorites, id)
	} else {
		favorites[id] = true
	}
	return favorites[id], s.SaveFavorites(favorites)
}

// DeleteBank removes the bank and wrong-list files and resets statistics.
func (s *Store) DeleteBank() error {
	for _, path := range []string{s.paths.Bank, s.paths.Wrong} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	_, err := s.ResetStats()
	return err
}

// loadQuestionFile reads a JSON array of question records. A missing file or
// an unparseable document yields an empty list; an irregular record is
// rebuilt with defaults rather than dropped, and recoveries are counted.
func (s *Store) loadQuestionFile(path string) ([]Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		s.log.Warn().Err(err).Str("path", path).Msg("question file unparseable, treating as empty")
		return nil, nil
	}

	questions := make([]Question, 0, len(raws))
	recovered := 0
	for _, raw := range raws {
		q, status := decodeRecord(raw)
		if status == RecordRecovered {
			recovered++
		}
		questions = append(questions, q)
	}
	if recovered > 0 {
		s.log.Warn().Int("recovered", recovered).Str("path", path).Msg("rebuilt records with default fields")
	}
	return questions, nil
}

func (s *Store) writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
