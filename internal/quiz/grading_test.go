package quiz

import "testing"

func TestNormalizeChoice(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "single letter", input: "a", want: "A"},
		{name: "order insensitive", input: "ba", want: "AB"},
		{name: "full width and spaces", input: "Ａ Ｂ", want: "AB"},
		{name: "duplicates collapse", input: "AAB", want: "AB"},
		{name: "punctuation ignored", input: "A、C", want: "AC"},
		{name: "no letters", input: "123", want: ""},
		{name: "empty", input: "", want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeChoice(tc.input); got != tc.want {
				t.Fatalf("NormalizeChoice(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalizeTF(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"对", "T"},
		{"正确", "T"},
		{"true", "T"},
		{"YES", "T"},
		{"1", "T"},
		{"错", "F"},
		{"错误。", "F"},
		{"False", "F"},
		{"no", "F"},
		{"0", "F"},
		{" t ", "T"},
		{"Ｔ", "T"},
		{"ＴＲＵＥ", "T"},
		{"１", "T"},
		{"０", "F"},
		{"maybe", "MAYBE"},
		{"", ""},
	}

	for _, tc := range tests {
		if got := NormalizeTF(tc.input); got != tc.want {
			t.Fatalf("NormalizeTF(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestCheckAnswerSingleChoice(t *testing.T) {
	q := Question{ID: 7, Type: TypeSingle, Options: map[string]string{"A": "x", "B": "y"}, Answer: "A"}

	correct, userNorm, refNorm := CheckAnswer(q, "a")
	if !correct || userNorm != "A" || refNorm != "A" {
		t.Fatalf("got (%v, %q, %q), want (true, A, A)", correct, userNorm, refNorm)
	}

	correct, userNorm, refNorm = CheckAnswer(q, "B")
	if correct || userNorm != "B" || refNorm != "A" {
		t.Fatalf("got (%v, %q, %q), want (false, B, A)", correct, userNorm, refNorm)
	}
}

func TestCheckAnswerMultiSelectOrderInsensitive(t *testing.T) {
	q := Question{Type: TypeSingle, Answer: "AB"}

	for _, raw := range []string{"AB", "ba", "Ａ Ｂ", "b,a"} {
		if correct, _, _ := CheckAnswer(q, raw); !correct {
			t.Fatalf("answer %q should match reference %q", raw, q.Answer)
		}
	}
}

func TestCheckAnswerMalformedReferencesNeverMatch(t *testing.T) {
	tests := []struct {
		name string
		q    Question
		raw  string
	}{
		{name: "single choice letterless reference", q: Question{Type: TypeSingle, Answer: "见解析"}, raw: "见解析"},
		{name: "tf reference outside vocabulary", q: Question{Type: TypeTF, Answer: "也许"}, raw: "也许"},
		{name: "blank empty reference", q: Question{Type: TypeBlank, Answer: "  "}, raw: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if correct, _, _ := CheckAnswer(tc.q, tc.raw); correct {
				t.Fatalf("malformed reference %q must never grade correct", tc.q.Answer)
			}
		})
	}
}

func TestCheckAnswerTrueFalse(t *testing.T) {
	q := Question{Type: TypeTF, Answer: "正确"}

	if correct, _, _ := CheckAnswer(q, "对"); !correct {
		t.Fatalf("对 should match reference 正确")
	}
	if correct, _, _ := CheckAnswer(q, "Ｔ"); !correct {
		t.Fatalf("full-width Ｔ should match reference 正确")
	}
	if correct, _, _ := CheckAnswer(q, "错"); correct {
		t.Fatalf("错 should not match reference 正确")
	}
	if correct, _, _ := CheckAnswer(q, "maybe"); correct {
		t.Fatalf("out-of-vocabulary answer should never be correct")
	}
}

func TestCheckAnswerBlank(t *testing.T) {
	q := Question{Type: TypeBlank, Answer: "hello   world"}

	if correct, userNorm, refNorm := CheckAnswer(q, "  hello world "); !correct {
		t.Fatalf("whitespace-collapsed comparison failed: (%q, %q)", userNorm, refNorm)
	}
	if correct, _, _ := CheckAnswer(q, "helloworld"); correct {
		t.Fatalf("different canonical text should not match")
	}
}

func TestCheckAnswerShortNeverAutoGrades(t *testing.T) {
	q := Question{Type: TypeShort, Answer: "任何答案"}

	correct, userNorm, refNorm := CheckAnswer(q, "任何答案")
	if correct {
		t.Fatalf("short answers must never auto-grade correct")
	}
	if userNorm == "" || refNorm == "" {
		t.Fatalf("normalized forms must still be reported, got (%q, %q)", userNorm, refNorm)
	}
}

func TestCheckAnswerReflexiveForObjectiveTypes(t *testing.T) {
	questions := []Question{
		{Type: TypeSingle, Answer: "C"},
		{Type: TypeSingle, Answer: "ＡＢ"},
		{Type: TypeTF, Answer: "错误"},
		{Type: TypeTF, Answer: "T"},
		{Type: TypeBlank, Answer: "三次握手"},
	}

	for _, q := range questions {
		if correct, _, _ := CheckAnswer(q, q.Answer); !correct {
			t.Fatalf("reference answer %q should grade correct against itself", q.Answer)
		}
	}
}
