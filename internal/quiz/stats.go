package quiz

// Stats is the persisted aggregate of every completed round. Counters only
// grow; the sole way back to zero is an explicit reset.
type Stats struct {
	TotalAnswered  int           `json:"total_answered"`
	TotalCorrect   int           `json:"total_correct"`
	PerTypeTotal   map[QType]int `json:"per_type_total"`
	PerTypeCorrect map[QType]int `json:"per_type_correct"`
}

func NewStats() Stats {
	return Stats{
		PerTypeTotal:   map[QType]int{},
		PerTypeCorrect: map[QType]int{},
	}
}

// RoundTally is one round's per-type answered/correct counts, folded into
// Stats when the round finishes.
type RoundTally struct {
	Answered map[QType]int
	Correct  map[QType]int
}

func NewRoundTally() RoundTally {
	return RoundTally{
		Answered: map[QType]int{},
		Correct:  map[QType]int{},
	}
}

func (t RoundTally) TotalAnswered() int {
	total := 0
	for _, n := range t.Answered {
		total += n
	}
	return total
}

func (t RoundTally) TotalCorrect() int {
	total := 0
	for _, n := range t.Correct {
		total += n
	}
	return total
}

// Merge folds a completed round into the aggregate. Additive only.
func (s *Stats) Merge(tally RoundTally) {
	if s.PerTypeTotal == nil {
		s.PerTypeTotal = map[QType]int{}
	}
	if s.PerTypeCorrect == nil {
		s.PerTypeCorrect = map[QType]int{}
	}

	s.TotalAnswered += tally.TotalAnswered()
	s.TotalCorrect += tally.TotalCorrect()
	for qtype, n := range tally.Answered {
		s.PerTypeTotal[qtype] += n
	}
	for qtype, n := range tally.Correct {
		s.PerTypeCorrect[qtype] += n
	}
}

// Rate returns correct/answered as a percentage, 0 when nothing was answered.
func Rate(correct, answered int) float64 {
	if answered <= 0 {
		return 0
	}
	return float64(correct) * 100.0 / float64(answered)
}
