package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"quizrun/internal/i18n"
	"quizrun/internal/model"
	"quizrun/internal/quiz"
)

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	correctColor = color.New(color.FgGreen, color.Bold)
	wrongColor   = color.New(color.FgRed, color.Bold)
	faintColor   = color.New(color.Faint)
)

// UI drives the quiz flow on a terminal. It owns the event loop: it renders
// the current phase, reads one action from the player, and feeds it to the
// state machine. Reader and writer are injected so sessions can be scripted
// in tests.
type UI struct {
	loader *quiz.Loader
	cfg    model.QuizConfig
	in     *bufio.Reader
	out    io.Writer
}

// New creates a UI over the given loader. The level menu and the UI language
// come from cfg.
func New(loader *quiz.Loader, cfg model.QuizConfig, in io.Reader, out io.Writer) *UI {
	return &UI{
		loader: loader,
		cfg:    cfg,
		in:     bufio.NewReader(in),
		out:    out,
	}
}

// Run executes quiz sessions until the player goes home or input ends.
// Returning from Run is the "return home" navigation: control goes back
// to the caller.
func (u *UI) Run(ctx context.Context) error {
	ctx = i18n.WithLocalizer(ctx, i18n.NewLocalizer(u.cfg.Lang))
	runner := quiz.NewRunner()

	for {
		var quit bool
		var err error
		switch runner.Phase() {
		case quiz.PhaseAwaitingLevel:
			quit, err = u.stepLevelMenu(ctx, runner)
		case quiz.PhaseError:
			quit, err = u.stepError(ctx, runner)
		case quiz.PhaseAnswering:
			quit, err = u.stepAnswering(ctx, runner)
		case quiz.PhaseRevealed:
			quit, err = u.stepRevealed(ctx, runner)
		case quiz.PhaseFinished:
			quit, err = u.stepFinished(ctx, runner)
		default:
			return fmt.Errorf("unexpected phase %s", runner.Phase())
		}
		if err != nil || quit {
			return err
		}
	}
}

func (u *UI) stepLevelMenu(ctx context.Context, runner *quiz.Runner) (bool, error) {
	fmt.Fprintln(u.out)
	titleColor.Fprintln(u.out, i18n.T(ctx, "AppTitle"))
	fmt.Fprintln(u.out, i18n.T(ctx, "ChooseLevel"))
	for i, lv := range u.cfg.Levels {
		fmt.Fprintf(u.out, "  %d. %s\n", i+1, lv)
	}
	fmt.Fprint(u.out, i18n.T(ctx, "PromptLevel"))

	line, err := u.readLine()
	if err != nil {
		return true, ignoreEOF(err)
	}
	if strings.EqualFold(line, "q") {
		fmt.Fprintln(u.out, i18n.T(ctx, "Goodbye"))
		return true, nil
	}

	n, convErr := strconv.Atoi(line)
	if convErr != nil || n < 1 || n > len(u.cfg.Levels) {
		fmt.Fprintln(u.out, i18n.Td(ctx, "InvalidLevel", map[string]any{"Max": len(u.cfg.Levels)}))
		return false, nil
	}

	level := u.cfg.Levels[n-1]
	u.load(ctx, runner, func() (int, bool) { return runner.ChooseLevel(level) })
	return false, nil
}

// load runs one fetch: start the load action, fetch synchronously, and hand
// the result back under the same generation. The loop shows nothing but the
// loading notice in between, so no input is read while the fetch is pending.
func (u *UI) load(ctx context.Context, runner *quiz.Runner, begin func() (int, bool)) {
	gen, ok := begin()
	if !ok {
		return
	}
	fmt.Fprintln(u.out, i18n.T(ctx, "Loading"))

	qs, err := u.loader.Load(ctx, runner.Level())
	runner.FinishLoad(gen, qs, err)

	if runner.Phase() == quiz.PhaseAnswering {
		fmt.Fprintln(u.out, i18n.Tp(ctx, "QuestionsReady", len(runner.Session().Questions)))
	}
}

func (u *UI) stepError(ctx context.Context, runner *quiz.Runner) (bool, error) {
	wrongColor.Fprintln(u.out, i18n.Td(ctx, "LoadFailed", map[string]any{"Reason": runner.LoadErr().Error()}))
	fmt.Fprint(u.out, i18n.T(ctx, "PromptErrorAction"))

	line, err := u.readLine()
	if err != nil {
		return true, ignoreEOF(err)
	}
	switch strings.ToLower(line) {
	case "r":
		u.load(ctx, runner, runner.Retry)
	case "l":
		runner.ChangeLevel()
	}
	return false, nil
}

func (u *UI) stepAnswering(ctx context.Context, runner *quiz.Runner) (bool, error) {
	q, ok := runner.CurrentQuestion()
	if !ok {
		return false, nil
	}
	sess := runner.Session()

	fmt.Fprintln(u.out)
	titleColor.Fprintln(u.out, i18n.Td(ctx, "QuestionHeader", map[string]any{
		"Num":   sess.CurrentIndex + 1,
		"Total": len(sess.Questions),
	}))
	fmt.Fprintln(u.out, q.Text)
	for i, opt := range q.Options {
		fmt.Fprintf(u.out, "  %c. %s\n", 'A'+i, opt)
	}
	fmt.Fprint(u.out, i18n.T(ctx, "PromptAnswer"))

	line, err := u.readLine()
	if err != nil {
		return true, ignoreEOF(err)
	}

	idx, ok := optionIndex(line, len(q.Options))
	if !ok {
		fmt.Fprintln(u.out, i18n.Td(ctx, "InvalidOption", map[string]any{
			"Max": string(rune('A' + len(q.Options) - 1)),
		}))
		return false, nil
	}

	runner.SelectAnswer(q.Options[idx])
	return false, nil
}

func (u *UI) stepRevealed(ctx context.Context, runner *quiz.Runner) (bool, error) {
	q, _ := runner.CurrentQuestion()
	if runner.SelectionCorrect() {
		correctColor.Fprintln(u.out, i18n.T(ctx, "Correct"))
	} else {
		wrongColor.Fprintln(u.out, i18n.Td(ctx, "Incorrect", map[string]any{"Answer": q.Answer}))
	}
	if q.Explanation != "" {
		faintColor.Fprintln(u.out, i18n.T(ctx, "ExplanationLabel")+" "+q.Explanation)
	}
	fmt.Fprint(u.out, i18n.T(ctx, "PressEnter"))

	if _, err := u.readLine(); err != nil {
		return true, ignoreEOF(err)
	}
	runner.Advance()
	return false, nil
}

func (u *UI) stepFinished(ctx context.Context, runner *quiz.Runner) (bool, error) {
	sess := runner.Session()

	fmt.Fprintln(u.out)
	titleColor.Fprintln(u.out, i18n.T(ctx, "ResultsTitle"))
	fmt.Fprintln(u.out, i18n.Td(ctx, "FinalScore", map[string]any{
		"Score":   sess.Score,
		"Total":   len(sess.Questions),
		"Percent": runner.Percentage(),
	}))
	fmt.Fprint(u.out, i18n.T(ctx, "PromptResultAction"))

	line, err := u.readLine()
	if err != nil {
		return true, ignoreEOF(err)
	}
	switch strings.ToLower(line) {
	case "r":
		u.load(ctx, runner, runner.Restart)
	case "l":
		runner.ChangeLevel()
	case "h":
		fmt.Fprintln(u.out, i18n.T(ctx, "Goodbye"))
		return true, nil
	}
	return false, nil
}

// optionIndex parses a single option letter (case-insensitive) into an index
// within [0, optionCount).
func optionIndex(input string, optionCount int) (int, bool) {
	input = strings.ToUpper(strings.TrimSpace(input))
	if len(input) != 1 {
		return 0, false
	}
	idx := int(input[0] - 'A')
	if idx < 0 || idx >= optionCount {
		return 0, false
	}
	return idx, true
}

func (u *UI) readLine() (string, error) {
	line, err := u.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
