package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"quiz-drill/internal/quiz"
)

const defaultRoundSize = 10

// App is the interactive menu front-end. All terminal I/O goes through the
// injected reader and writer so the flow is testable.
type App struct {
	service  *quiz.Service
	store    *quiz.Store
	docxPath string
	in       *bufio.Reader
	out      io.Writer
}

func New(service *quiz.Service, store *quiz.Store, docxPath string, in io.Reader, out io.Writer) *App {
	return &App{
		service:  service,
		store:    store,
		docxPath: docxPath,
		in:       bufio.NewReader(in),
		out:      out,
	}
}

func Run(ctx context.Context, in io.Reader, out io.Writer, service *quiz.Service, store *quiz.Store, docxPath string) error {
	return New(service, store, docxPath, in, out).Run(ctx)
}

func (a *App) Run(ctx context.Context) error {
	for {
		a.printMenu()
		choice, err := a.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		switch choice {
		case "1":
			a.importBank()
		case "2":
			a.runNormalQuiz(ctx)
		case "3":
			a.runWrongQuiz(ctx)
		case "4":
			a.showStats(ctx)
		case "5":
			a.manageFavorites()
		case "6":
			a.resetStats()
		case "7":
			a.deleteBank()
		case "0", "q":
			fmt.Fprintln(a.out, "Bye.")
			return nil
		default:
			fmt.Fprintln(a.out, "Unknown choice, enter one of the listed numbers.")
		}
	}
}

func (a *App) printMenu() {
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "========================================")
	fmt.Fprintln(a.out, " quiz-drill")
	fmt.Fprintln(a.out, "========================================")
	fmt.Fprintln(a.out, "1. Import question bank from .docx")
	fmt.Fprintln(a.out, "2. Start a quiz round")
	fmt.Fprintln(a.out, "3. Drill wrong questions only")
	fmt.Fprintln(a.out, "4. Show statistics")
	fmt.Fprintln(a.out, "5. Favorites")
	fmt.Fprintln(a.out, "6. Reset statistics")
	fmt.Fprintln(a.out, "7. Delete question bank")
	fmt.Fprintln(a.out, "0. Quit")
	fmt.Fprint(a.out, "> ")
}

func (a *App) importBank() {
	fmt.Fprintf(a.out, "Document path (enter for %s): ", a.docxPath)
	path, err := a.readLine()
	if err != nil {
		return
	}
	if path == "" {
		path = a.docxPath
	}

	questions, err := a.service.ImportDocx(path)
	if err != nil {
		fmt.Fprintf(a.out, "Import failed: %v\n", err)
		return
	}

	counts := quiz.CountByType(questions)
	fmt.Fprintf(a.out, "Imported %d questions.\n", len(questions))
	for _, qtype := range quiz.AllTypes {
		fmt.Fprintf(a.out, "  %-18s %d\n", qtype.Label()+":", counts[qtype])
	}
}

func (a *App) runNormalQuiz(ctx context.Context) {
	qtype, ok := a.chooseType()
	if !ok {
		return
	}

	pool, err := a.service.Bank()
	if err != nil {
		fmt.Fprintf(a.out, "Could not load the bank: %v\n", err)
		return
	}
	pool = quiz.FilterByType(pool, qtype)
	if len(pool) == 0 {
		fmt.Fprintln(a.out, "The bank has no questions of that type. Import a bank first.")
		return
	}

	count := a.askCount(len(pool))
	session, err := a.service.BeginNormal(ctx, qtype, count)
	if err != nil {
		fmt.Fprintf(a.out, "Could not start the round: %v\n", err)
		return
	}
	a.playRound(ctx, session)
}

func (a *App) runWrongQuiz(ctx context.Context) {
	pool, err := a.service.WrongList()
	if err != nil {
		fmt.Fprintf(a.out, "Could not load the wrong-list: %v\n", err)
		return
	}
	if len(pool) == 0 {
		fmt.Fprintln(a.out, "The wrong-list is empty. Do a normal round first; missed questions land here.")
		return
	}

	fmt.Fprintf(a.out, "The wrong-list holds %d questions.\n", len(pool))
	count := a.askCount(len(pool))
	session, err := a.service.BeginWrongOnly(ctx, count)
	if err != nil {
		fmt.Fprintf(a.out, "Could not start the round: %v\n", err)
		return
	}
	a.playRound(ctx, session)
}

func (a *App) chooseType() (quiz.QType, bool) {
	fmt.Fprintln(a.out, "\nQuestion type:")
	fmt.Fprintln(a.out, "1. single choice")
	fmt.Fprintln(a.out, "2. fill in the blank")
	fmt.Fprintln(a.out, "3. true/false")
	fmt.Fprintln(a.out, "4. short answer")
	fmt.Fprintln(a.out, "9. all types mixed")
	fmt.Fprintln(a.out, "0. back")

	for {
		fmt.Fprint(a.out, "> ")
		choice, err := a.readLine()
		if err != nil {
			return "", false
		}
		switch choice {
		case "0":
			return "", false
		case "1":
			return quiz.TypeSingle, true
		case "2":
			return quiz.TypeBlank, true
		case "3":
			return quiz.TypeTF, true
		case "4":
			return quiz.TypeShort, true
		case "9":
			return "", true
		}
		fmt.Fprintln(a.out, "Enter 0 / 1 / 2 / 3 / 4 / 9.")
	}
}

func (a *App) askCount(poolSize int) int {
	suggested := defaultRoundSize
	if poolSize < suggested {
		suggested = poolSize
	}

	fmt.Fprintf(a.out, "How many questions (1-%d, enter for %d): ", poolSize, suggested)
	answer, err := a.readLine()
	if err != nil || answer == "" {
		return suggested
	}
	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 {
		return suggested
	}
	return n // over-requests clamp to the pool during selection
}

func (a *App) playRound(ctx context.Context, session *quiz.Session) {
	fmt.Fprintf(a.out, "\nRound of %d questions, here we go.\n", session.Len())

	for {
		question, _ := session.Current()
		a.printQuestion(session, question)

		result, err := a.collectAnswer(ctx, session, question)
		if err != nil {
			// Input gone; fold what was answered so far.
			_ = session.Finish(ctx)
			return
		}
		a.printFeedback(question, result)

		fmt.Fprint(a.out, "Press enter for the next question...")
		if _, err := a.readLine(); err != nil {
			// Input gone; fold what was answered so far.
			_ = session.Finish(ctx)
			return
		}

		done, err := session.Advance(ctx)
		if err != nil {
			fmt.Fprintf(a.out, "Round error: %v\n", err)
			return
		}
		if done {
			a.printRoundSummary(session)
			return
		}
	}
}

func (a *App) printQuestion(session *quiz.Session, question quiz.Question) {
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, strings.Repeat("=", 40))
	fmt.Fprintf(a.out, "Question %d / %d  [%s]  (id %d)\n",
		session.Position(), session.Len(), question.Type.Label(), question.ID)
	fmt.Fprintln(a.out, strings.Repeat("-", 40))
	fmt.Fprintln(a.out, question.Prompt)
	if len(question.Options) > 0 {
		fmt.Fprintln(a.out)
		for _, letter := range question.OptionLetters() {
			fmt.Fprintf(a.out, "%s. %s\n", letter, question.Options[letter])
		}
	}
	fmt.Fprintln(a.out)
}

func (a *App) collectAnswer(ctx context.Context, session *quiz.Session, question quiz.Question) (quiz.Result, error) {
	for {
		fmt.Fprint(a.out, "Your answer: ")
		raw, err := a.readLine()
		if err != nil {
			// Re-prompting without input would spin forever.
			return quiz.Result{}, err
		}

		result, submitErr := session.Submit(ctx, raw)
		if errors.Is(submitErr, quiz.ErrAnswerRequired) {
			fmt.Fprintln(a.out, "This question type needs an explicit answer.")
			continue
		}
		if submitErr != nil {
			return quiz.Result{}, submitErr
		}

		if session.NeedsJudgment() {
			return a.selfJudge(ctx, session, question), nil
		}
		return result, nil
	}
}

// selfJudge shows the reference answer for a short-answer question and asks
// the test-taker for the verdict; the engine never grades these itself.
func (a *App) selfJudge(ctx context.Context, session *quiz.Session, question quiz.Question) quiz.Result {
	fmt.Fprintln(a.out, "\nReference answer:")
	fmt.Fprintln(a.out, orPlaceholder(question.Answer, "(no answer in the bank)"))

	for {
		fmt.Fprint(a.out, "Count this as correct? (y/n, enter for n): ")
		answer, err := a.readLine()
		if err != nil {
			answer = "n"
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			result, _ := session.Judge(ctx, true)
			return result
		case "n", "no", "":
			result, _ := session.Judge(ctx, false)
			return result
		}
		fmt.Fprintln(a.out, "Enter y or n.")
	}
}

func (a *App) printFeedback(question quiz.Question, result quiz.Result) {
	fmt.Fprintln(a.out)
	fmt.Fprintf(a.out, "Your answer: %s\n", orPlaceholder(result.Raw, "(blank)"))
	if question.Type != quiz.TypeShort {
		fmt.Fprintln(a.out, "Reference answer:")
		fmt.Fprintln(a.out, orPlaceholder(question.Answer, "(no answer in the bank)"))
	}

	if result.Correct {
		fmt.Fprintln(a.out, "Correct!")
	} else {
		fmt.Fprintln(a.out, "Wrong.")
	}

	switch question.Type {
	case quiz.TypeSingle, quiz.TypeTF:
		fmt.Fprintf(a.out, "Normalized: yours %s, reference %s\n",
			orPlaceholder(result.UserNorm, "(blank)"), orPlaceholder(result.RefNorm, "(unknown)"))
	}
	fmt.Fprintln(a.out, strings.Repeat("-", 40))
}

func (a *App) printRoundSummary(session *quiz.Session) {
	tally := session.Tally()
	answered := tally.TotalAnswered()
	correct := tally.TotalCorrect()

	fmt.Fprintln(a.out, "\nRound finished.")
	fmt.Fprintf(a.out, "Answered %d, correct %d, wrong %d (%.2f%%)\n",
		answered, correct, answered-correct, quiz.Rate(correct, answered))
	if session.Mode() == quiz.ModeWrongOnly {
		fmt.Fprintln(a.out, "Questions answered correctly have left the wrong-list.")
	}
}

func (a *App) showStats(ctx context.Context) {
	stats := a.service.Stats()

	fmt.Fprintln(a.out, "\n====== Statistics ======")
	fmt.Fprintf(a.out, "Total answered: %d\n", stats.TotalAnswered)
	fmt.Fprintf(a.out, "Total correct:  %d\n", stats.TotalCorrect)
	fmt.Fprintf(a.out, "Overall rate:   %.2f%%\n", quiz.Rate(stats.TotalCorrect, stats.TotalAnswered))

	if stats.TotalAnswered == 0 {
		fmt.Fprintln(a.out, "No rounds recorded yet.")
		return
	}

	fmt.Fprintln(a.out, "\nPer type:")
	for _, qtype := range quiz.AllTypes {
		total := stats.PerTypeTotal[qtype]
		if total == 0 {
			continue
		}
		correct := stats.PerTypeCorrect[qtype]
		fmt.Fprintf(a.out, "  %-18s answered %-4d correct %-4d rate %.2f%%\n",
			qtype.Label(), total, correct, quiz.Rate(correct, total))
	}

	history := a.service.RecentHistory(ctx, 5)
	if len(history) > 0 {
		fmt.Fprintln(a.out, "\nRecent rounds:")
		for _, item := range history {
			fmt.Fprintf(a.out, "  %s  mode=%-6s  %d/%d correct\n",
				item.StartedAt.Format("2006-01-02 15:04"), item.Mode, item.CorrectCount, item.QuestionCount)
		}
	}

	a.printDifficulty(ctx)
}

// printDifficulty lists attempt counts for the current wrong-list, hardest
// questions the test-taker keeps missing first by position in the file.
func (a *App) printDifficulty(ctx context.Context) {
	wrongList, err := a.service.WrongList()
	if err != nil || len(wrongList) == 0 {
		return
	}

	const maxRows = 5
	printed := 0
	header := false
	for _, q := range wrongList {
		if printed == maxRows {
			break
		}
		answered, wrong := a.service.QuestionDifficulty(ctx, q.ID)
		if answered == 0 {
			continue
		}
		if !header {
			fmt.Fprintln(a.out, "\nWrong-list difficulty:")
			header = true
		}
		fmt.Fprintf(a.out, "  id %-4d wrong %d of %d (%.0f%%)  %s\n",
			q.ID, wrong, answered, quiz.Rate(wrong, answered), preview(q.Prompt, 30))
		printed++
	}
}

func (a *App) manageFavorites() {
	favorites := a.store.LoadFavorites()
	bank, err := a.service.Bank()
	if err != nil {
		fmt.Fprintf(a.out, "Could not load the bank: %v\n", err)
		return
	}
	byID := make(map[int]quiz.Question, len(bank))
	for _, q := range bank {
		byID[q.ID] = q
	}

	if len(favorites) == 0 {
		fmt.Fprintln(a.out, "\nNo favorites yet.")
	} else {
		fmt.Fprintf(a.out, "\nFavorites (%d):\n", len(favorites))
		for _, q := range bank {
			if favorites[q.ID] {
				fmt.Fprintf(a.out, "  id %-4d [%s] %s\n", q.ID, q.Type.Label(), preview(q.Prompt, 40))
			}
		}
	}

	fmt.Fprint(a.out, "Question id to toggle (enter to go back): ")
	answer, err := a.readLine()
	if err != nil || answer == "" {
		return
	}
	id, err := strconv.Atoi(answer)
	if err != nil {
		fmt.Fprintln(a.out, "Not a question id.")
		return
	}

	nowFavorite, err := a.store.ToggleFavorite(id)
	if err != nil {
		fmt.Fprintf(a.out, "Could not save favorites: %v\n", err)
		return
	}
	if _, inBank := byID[id]; !inBank {
		fmt.Fprintln(a.out, "Note: that id is not in the current bank; it stays inert until a bank containing it is loaded.")
	}
	if nowFavorite {
		fmt.Fprintf(a.out, "Question %d favorited.\n", id)
	} else {
		fmt.Fprintf(a.out, "Question %d unfavorited.\n", id)
	}
}

func (a *App) resetStats() {
	if _, err := a.service.ResetStats(); err != nil {
		fmt.Fprintf(a.out, "Could not reset statistics: %v\n", err)
		return
	}
	fmt.Fprintln(a.out, "Statistics reset.")
}

func (a *App) deleteBank() {
	fmt.Fprint(a.out, "Delete the bank, the wrong-list, and the statistics? (yes/no): ")
	answer, err := a.readLine()
	if err != nil || strings.ToLower(answer) != "yes" {
		fmt.Fprintln(a.out, "Nothing deleted.")
		return
	}
	if err := a.store.DeleteBank(); err != nil {
		fmt.Fprintf(a.out, "Delete failed: %v\n", err)
		return
	}
	fmt.Fprintln(a.out, "Bank deleted.")
}

func (a *App) readLine() (string, error) {
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func orPlaceholder(s, placeholder string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}

func preview(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
