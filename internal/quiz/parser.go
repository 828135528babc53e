package quiz

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/width"

	"quiz-drill/internal/docx"
)

// Line grammar for the question-bank documents. Question numbering and option
// labels may use full-width punctuation and letters, so the classes cover both.
var (
	// "1、xxx" / "2. xxx" / "3．xxx" / "１、xxx"
	questionStartRe = regexp.MustCompile(`^([0-9０-９]+)[、.．]\s*(.*)`)
	// "A、 text" / "Ｂ. text"
	optionRe = regexp.MustCompile(`^([A-HＡ-Ｈ])[、,，.．]\s*(.*)`)
	// "一、 单选题（共100题）"
	sectionRe = regexp.MustCompile(`^[一二三四五六七八九十]+[、.．]\s*(.*)`)
)

const answerMarker = "正确答案"

type lineKind int

const (
	lineBlank lineKind = iota
	lineSection
	lineQuestionStart
	lineOption
	lineAnswer
	linePlain
)

// lineToken is the classified form of one document line. Classification is
// purely lexical; whether an option token is honored as an option depends on
// parser state (an "A." inside an answer block is literal answer text).
type lineToken struct {
	kind  lineKind
	qtype QType  // lineSection: type from the heading keywords, "" if none
	id    int    // lineQuestionStart
	label string // lineOption, normalized to half-width uppercase
	text  string
	raw   string // trimmed full line, for contexts that ignore the match
}

func scanLine(line string) lineToken {
	text := strings.TrimSpace(line)
	if text == "" {
		return lineToken{kind: lineBlank}
	}

	if m := sectionRe.FindStringSubmatch(text); m != nil {
		return lineToken{kind: lineSection, qtype: sectionType(m[1]), text: m[1], raw: text}
	}

	if m := questionStartRe.FindStringSubmatch(text); m != nil {
		id, err := strconv.Atoi(width.Narrow.String(m[1]))
		if err == nil {
			return lineToken{kind: lineQuestionStart, id: id, text: strings.TrimSpace(m[2]), raw: text}
		}
	}

	if strings.HasPrefix(text, answerMarker) {
		rest := ""
		if _, after, found := strings.Cut(text, "："); found {
			rest = after
		} else if _, after, found := strings.Cut(text, ":"); found {
			rest = after
		}
		return lineToken{kind: lineAnswer, text: strings.TrimSpace(rest), raw: text}
	}

	if m := optionRe.FindStringSubmatch(text); m != nil {
		return lineToken{kind: lineOption, label: normalizeOptionLabel(m[1]), text: strings.TrimSpace(m[2]), raw: text}
	}

	return lineToken{kind: linePlain, text: text, raw: text}
}

// sectionType maps a section heading title to a question type by keyword
// containment, first match wins.
func sectionType(title string) QType {
	switch {
	case strings.Contains(title, "单选"), strings.Contains(title, "选择"):
		return TypeSingle
	case strings.Contains(title, "填空"):
		return TypeBlank
	case strings.Contains(title, "判断"):
		return TypeTF
	case strings.Contains(title, "简答"), strings.Contains(title, "问答"):
		return TypeShort
	default:
		return ""
	}
}

// normalizeOptionLabel folds a full-width option letter to half-width and
// upper-cases it.
func normalizeOptionLabel(label string) string {
	return strings.ToUpper(width.Narrow.String(strings.TrimSpace(label)))
}

type parseState int

const (
	statePrompt parseState = iota
	stateOptions
	stateAnswer
)

type rawRecord struct {
	id          int
	sectionType QType
	promptLines []string
	options     map[string]string
	answerLines []string
}

// ParseLines converts an ordered sequence of document lines into Questions,
// sorted by id ascending. It is a pure function of its input: a document with
// no question-start lines yields an empty list, and text before the first
// question start is discarded.
func ParseLines(lines []string) []Question {
	var (
		records []rawRecord
		current *rawRecord
		state   = statePrompt
		section QType
	)

	flush := func() {
		if current != nil {
			records = append(records, *current)
			current = nil
		}
	}

	for _, line := range lines {
		token := scanLine(line)

		switch token.kind {
		case lineBlank:
			continue
		case lineSection:
			// Headings group questions but never belong to one.
			if token.qtype != "" {
				section = token.qtype
			}
			continue
		case lineQuestionStart:
			flush()
			current = &rawRecord{
				id:          token.id,
				sectionType: section,
				options:     map[string]string{},
			}
			if token.text != "" {
				current.promptLines = append(current.promptLines, token.text)
			}
			state = statePrompt
			continue
		}

		if current == nil {
			continue
		}

		switch token.kind {
		case lineAnswer:
			if token.text != "" {
				current.answerLines = append(current.answerLines, token.text)
			}
			state = stateAnswer
		case lineOption:
			// Option letters are honored only while collecting the prompt or
			// options; inside an answer block they are literal answer text.
			if state == stateAnswer {
				current.answerLines = append(current.answerLines, token.raw)
				continue
			}
			current.options[token.label] = token.text
			state = stateOptions
		default:
			if state == stateAnswer {
				current.answerLines = append(current.answerLines, token.text)
			} else {
				current.promptLines = append(current.promptLines, token.text)
			}
		}
	}
	flush()

	questions := make([]Question, 0, len(records))
	for _, rec := range records {
		questions = append(questions, buildQuestion(rec))
	}
	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].ID < questions[j].ID
	})
	return questions
}

// ParseDocx extracts a document's paragraphs and parses them into Questions.
func ParseDocx(path string) ([]Question, error) {
	paragraphs, err := docx.ExtractParagraphs(path)
	if err != nil {
		return nil, err
	}
	return ParseLines(paragraphs), nil
}

// tfInferenceTokens is the vocabulary that marks an untyped question as
// true/false when its whole answer reduces to one of these.
var tfInferenceTokens = map[string]bool{
	"对": true, "錯": true, "错": true, "正确": true, "错误": true,
	"√": true, "×": true,
	"T": true, "F": true, "TRUE": true, "FALSE": true,
	"1": true, "0": true,
}

const blankAnswerMaxRunes = 20

// inferType resolves a record's question type: section heading wins, then a
// non-empty options map means single choice, a true/false answer token means
// true/false, a short single-line answer means fill-in, anything else is a
// short-answer question.
func inferType(rec rawRecord) QType {
	if rec.sectionType != "" {
		return rec.sectionType
	}
	if len(rec.options) > 0 {
		return TypeSingle
	}

	joined := strings.TrimSpace(strings.Join(rec.answerLines, ""))
	norm := strings.ToUpper(strings.ReplaceAll(joined, " ", ""))
	if tfInferenceTokens[norm] {
		return TypeTF
	}

	if len(rec.answerLines) <= 1 && utf8.RuneCountInString(norm) <= blankAnswerMaxRunes {
		return TypeBlank
	}
	return TypeShort
}

func buildQuestion(rec rawRecord) Question {
	qtype := inferType(rec)

	// Choice and true/false answers are short label/token sequences, so their
	// lines concatenate; text answers keep line structure for multiple blanks.
	var answer string
	switch qtype {
	case TypeSingle, TypeTF:
		answer = strings.TrimSpace(strings.Join(rec.answerLines, ""))
	case TypeBlank, TypeShort:
		answer = strings.TrimSpace(strings.Join(rec.answerLines, "\n"))
	default:
		answer = strings.TrimSpace(strings.Join(rec.answerLines, "\n"))
	}

	return Question{
		ID:      rec.id,
		Type:    qtype,
		Prompt:  strings.TrimSpace(strings.Join(rec.promptLines, "\n")),
		Options: rec.options,
		Answer:  answer,
	}
}

// CountByType tallies questions per type, for the post-parse summary.
func CountByType(questions []Question) map[QType]int {
	counts := make(map[QType]int, len(AllTypes))
	for _, q := range questions {
		counts[q.Type]++
	}
	return counts
}
