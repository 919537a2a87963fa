package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"

	"quizrun/internal/i18n"
	"quizrun/internal/model"
	"quizrun/internal/quiz"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	if err := i18n.Init("en"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fakeService struct {
	records []json.RawMessage
	err     error
}

func (f *fakeService) GetQuestions(_ context.Context, _ model.Level) ([]json.RawMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func record(question string, wrong ...string) json.RawMessage {
	rec := model.RawQuestionRecord{
		Question:      question,
		CorrectAnswer: "right",
		WrongAnswers:  wrong,
	}
	data, _ := json.Marshal(rec)
	return data
}

var allLevels = []model.Level{model.LevelEasy, model.LevelMedium, model.LevelHard}

// runScript feeds a scripted session to the UI and returns everything it
// printed.
func runScript(t *testing.T, svc quiz.Service, input string) string {
	t.Helper()
	loader := quiz.NewLoader(svc, quiz.WithRand(rand.New(rand.NewPCG(1, 2))))
	var out bytes.Buffer
	cfg := model.QuizConfig{Levels: allLevels, Lang: "en"}
	u := New(loader, cfg, strings.NewReader(input), &out)
	if err := u.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String()
}

func TestQuitFromMenu(t *testing.T) {
	out := runScript(t, &fakeService{}, "q\n")
	if !strings.Contains(out, "Choose a level:") {
		t.Errorf("level menu not shown:\n%s", out)
	}
	if !strings.Contains(out, "Goodbye!") {
		t.Errorf("no goodbye on quit:\n%s", out)
	}
	for _, lv := range allLevels {
		if !strings.Contains(out, string(lv)) {
			t.Errorf("level %q missing from menu:\n%s", lv, out)
		}
	}
}

func TestInvalidLevelReprompts(t *testing.T) {
	out := runScript(t, &fakeService{}, "9\nnope\nq\n")
	if got := strings.Count(out, "Please enter a number between 1 and 3."); got != 2 {
		t.Errorf("expected 2 reprompts, got %d:\n%s", got, out)
	}
}

func TestFullSession(t *testing.T) {
	svc := &fakeService{records: []json.RawMessage{
		record("First?", "wrong a", "wrong b"),
		record("Second?", "wrong c", "wrong d"),
	}}

	out := runScript(t, svc, "1\nA\n\nA\n\nh\n")

	for _, want := range []string{
		"Loading questions...",
		"2 questions ready.",
		"Question 1 of 2",
		"Question 2 of 2",
		"Quiz complete!",
		"of 2 (",
		"Goodbye!",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "First?") || !strings.Contains(out, "Second?") {
		t.Errorf("question texts missing:\n%s", out)
	}
}

func TestInvalidOptionReprompts(t *testing.T) {
	svc := &fakeService{records: []json.RawMessage{record("Only?", "wrong")}}

	// "Z" is out of range for two options, "AB" is not a single letter.
	out := runScript(t, svc, "1\nZ\nAB\nA\n\nh\n")
	if got := strings.Count(out, "Please enter a letter between A and B."); got != 2 {
		t.Errorf("expected 2 reprompts, got %d:\n%s", got, out)
	}
	if !strings.Contains(out, "Quiz complete!") {
		t.Errorf("session did not finish:\n%s", out)
	}
}

func TestRevealShowsVerdictAndExplanation(t *testing.T) {
	rec := model.RawQuestionRecord{
		Question:      "Explained?",
		CorrectAnswer: "right",
		WrongAnswers:  []string{"wrong"},
		Explanation:   "Because reasons.",
	}
	data, _ := json.Marshal(rec)
	svc := &fakeService{records: []json.RawMessage{data}}

	out := runScript(t, svc, "1\nA\n\nh\n")
	if !strings.Contains(out, "Correct!") && !strings.Contains(out, "Wrong. The correct answer is right.") {
		t.Errorf("no verdict shown:\n%s", out)
	}
	if !strings.Contains(out, "Explanation: Because reasons.") {
		t.Errorf("explanation missing:\n%s", out)
	}
}

func TestLoadErrorRetryAndChangeLevel(t *testing.T) {
	svc := &fakeService{err: errors.New("connection refused")}

	out := runScript(t, svc, "1\nr\nl\nq\n")
	if got := strings.Count(out, "Could not load questions: connection refused"); got != 2 {
		t.Errorf("expected failure shown twice (initial + retry), got %d:\n%s", got, out)
	}
	// Change level returns to the menu, shown a second time before quit.
	if got := strings.Count(out, "Choose a level:"); got != 2 {
		t.Errorf("expected menu twice, got %d:\n%s", got, out)
	}
}

func TestRestartFromResults(t *testing.T) {
	svc := &fakeService{records: []json.RawMessage{record("Again?", "wrong")}}

	out := runScript(t, svc, "1\nA\n\nr\nA\n\nh\n")
	if got := strings.Count(out, "Quiz complete!"); got != 2 {
		t.Errorf("expected two completed runs, got %d:\n%s", got, out)
	}
	// The second run reloads questions.
	if got := strings.Count(out, "Loading questions..."); got != 2 {
		t.Errorf("expected two loads, got %d:\n%s", got, out)
	}
}

func TestChangeLevelFromResults(t *testing.T) {
	svc := &fakeService{records: []json.RawMessage{record("One?", "wrong")}}

	out := runScript(t, svc, "1\nA\n\nl\nq\n")
	if got := strings.Count(out, "Choose a level:"); got != 2 {
		t.Errorf("expected menu twice, got %d:\n%s", got, out)
	}
}

func TestEOFMidSessionEndsCleanly(t *testing.T) {
	svc := &fakeService{records: []json.RawMessage{record("Cut short?", "wrong")}}

	// Input ends right after the question is shown.
	out := runScript(t, svc, "1\n")
	if !strings.Contains(out, "Question 1 of 1") {
		t.Errorf("question not shown before EOF:\n%s", out)
	}
}

func TestOptionIndex(t *testing.T) {
	tests := []struct {
		input  string
		count  int
		want   int
		wantOK bool
	}{
		{"A", 4, 0, true},
		{"d", 4, 3, true},
		{" b ", 4, 1, true},
		{"E", 4, 0, false},
		{"", 4, 0, false},
		{"AB", 4, 0, false},
		{"1", 4, 0, false},
	}

	for _, tt := range tests {
		got, ok := optionIndex(tt.input, tt.count)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("optionIndex(%q, %d) = (%d, %v), want (%d, %v)",
				tt.input, tt.count, got, ok, tt.want, tt.wantOK)
		}
	}
}
