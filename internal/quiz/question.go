package quiz

import (
	"encoding/json"
	"sort"
)

// QType is the closed set of question kinds. Grading and rendering switch
// exhaustively on it so a new kind is a compile-visible change.
type QType string

const (
	TypeSingle QType = "single"
	TypeBlank  QType = "blank"
	TypeTF     QType = "tf"
	TypeShort  QType = "short"
)

// AllTypes lists every question kind in display order.
var AllTypes = []QType{TypeSingle, TypeBlank, TypeTF, TypeShort}

// Label returns a human-readable name for the type.
func (t QType) Label() string {
	switch t {
	case TypeSingle:
		return "single choice"
	case TypeBlank:
		return "fill in the blank"
	case TypeTF:
		return "true/false"
	case TypeShort:
		return "short answer"
	default:
		return "unknown (" + string(t) + ")"
	}
}

// Question is a single quiz item. ID is the question number from the source
// document and joins the bank, the wrong-list, and favorites.
type Question struct {
	ID          int               `json:"id"`
	Type        QType             `json:"q_type"`
	Prompt      string            `json:"question"`
	Options     map[string]string `json:"options"`
	Answer      string            `json:"answer"`
	Source      string            `json:"source,omitempty"`
	Explanation string            `json:"explanation,omitempty"`
	WrongCount  int               `json:"wrong_count,omitempty"`
}

// OptionLetters returns the option labels in ascending order for display.
func (q Question) OptionLetters() []string {
	letters := make([]string, 0, len(q.Options))
	for letter := range q.Options {
		letters = append(letters, letter)
	}
	sort.Strings(letters)
	return letters
}

// RecordStatus classifies how a persisted record was reconstructed.
type RecordStatus int

const (
	RecordValid RecordStatus = iota
	RecordRecovered
)

// rawQuestion mirrors the on-disk record with pointer fields so missing keys
// are distinguishable from zero values.
type rawQuestion struct {
	ID          *int               `json:"id"`
	Type        *string            `json:"q_type"`
	Prompt      *string            `json:"question"`
	Options     *map[string]string `json:"options"`
	Answer      *string            `json:"answer"`
	Source      *string            `json:"source"`
	Explanation *string            `json:"explanation"`
	WrongCount  *int               `json:"wrong_count"`
}

// decodeRecord rebuilds a Question from a raw JSON record, substituting safe
// defaults for anything missing. Corruption of one field never invalidates the
// whole record.
func decodeRecord(raw json.RawMessage) (Question, RecordStatus) {
	var rec rawQuestion
	status := RecordValid
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Question{Options: map[string]string{}}, RecordRecovered
	}

	q := Question{Options: map[string]string{}}
	if rec.ID != nil {
		q.ID = *rec.ID
	} else {
		status = RecordRecovered
	}
	if rec.Type != nil {
		q.Type = QType(*rec.Type)
	} else {
		status = RecordRecovered
	}
	if rec.Prompt != nil {
		q.Prompt = *rec.Prompt
	} else {
		status = RecordRecovered
	}
	if rec.Options != nil && *rec.Options != nil {
		q.Options = *rec.Options
	} else if rec.Options == nil {
		status = RecordRecovered
	}
	if rec.Answer != nil {
		q.Answer = *rec.Answer
	} else {
		status = RecordRecovered
	}
	if rec.Source != nil {
		q.Source = *rec.Source
	}
	if rec.Explanation != nil {
		q.Explanation = *rec.Explanation
	}
	if rec.WrongCount != nil && *rec.WrongCount > 0 {
		q.WrongCount = *rec.WrongCount
	}

	return q, status
}
