package quiz

import (
	"math"
	"slices"

	"quizrun/internal/model"
)

// Phase is the state of the quiz flow. Exactly one phase is active at a time;
// actions invoked outside their listed phase are ignored.
type Phase int

const (
	// PhaseAwaitingLevel is the initial state, before a level is chosen.
	PhaseAwaitingLevel Phase = iota
	// PhaseLoading means a question fetch is in flight; user input is ignored.
	PhaseLoading
	// PhaseError means the last fetch failed; retry and change-level apply.
	PhaseError
	// PhaseAnswering presents the current question with no answer chosen yet.
	PhaseAnswering
	// PhaseRevealed shows correctness and explanation for the chosen answer.
	PhaseRevealed
	// PhaseFinished is terminal for the session and shows the final score.
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingLevel:
		return "awaiting_level"
	case PhaseLoading:
		return "loading"
	case PhaseError:
		return "error"
	case PhaseAnswering:
		return "answering"
	case PhaseRevealed:
		return "revealed"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Session is the transient in-memory state of a single quiz attempt.
// It is created when questions arrive and discarded on restart or level change.
type Session struct {
	Level          model.Level
	Questions      []model.Question
	CurrentIndex   int
	SelectedAnswer string // empty until an option is chosen for the current question
	Score          int
	Completed      bool
}

// Runner is the quiz state machine. It is pure and single-threaded: the
// caller's event loop invokes one action at a time, and the only external
// effect (fetching questions) happens outside the Runner, reported back via
// FinishLoad with the generation token the load action returned.
type Runner struct {
	phase   Phase
	level   model.Level
	session *Session
	loadErr error
	gen     int
}

// NewRunner creates a Runner in the level-selection state.
func NewRunner() *Runner {
	return &Runner{phase: PhaseAwaitingLevel}
}

// Phase returns the current phase.
func (r *Runner) Phase() Phase { return r.phase }

// Level returns the level chosen for the current run.
func (r *Runner) Level() model.Level { return r.level }

// Session returns the active session, or nil outside an active run.
func (r *Runner) Session() *Session { return r.session }

// LoadErr returns the failure that put the Runner into PhaseError.
func (r *Runner) LoadErr() error { return r.loadErr }

// CurrentQuestion returns the question being presented. ok is false outside
// the answering and revealed phases.
func (r *Runner) CurrentQuestion() (model.Question, bool) {
	if r.phase != PhaseAnswering && r.phase != PhaseRevealed {
		return model.Question{}, false
	}
	return r.session.Questions[r.session.CurrentIndex], true
}

// ChooseLevel starts a quiz run for the given level. Valid only in
// PhaseAwaitingLevel; returns the load generation the caller must pass to
// FinishLoad, and ok=false when the action was ignored.
func (r *Runner) ChooseLevel(level model.Level) (gen int, ok bool) {
	if r.phase != PhaseAwaitingLevel {
		return 0, false
	}
	r.level = level
	return r.beginLoad(), true
}

// Retry re-fetches the same level after a failure. Valid only in PhaseError.
func (r *Runner) Retry() (gen int, ok bool) {
	if r.phase != PhaseError {
		return 0, false
	}
	return r.beginLoad(), true
}

// Restart discards the finished session and fetches a fresh shuffled batch
// for the same level. Valid only in PhaseFinished.
func (r *Runner) Restart() (gen int, ok bool) {
	if r.phase != PhaseFinished {
		return 0, false
	}
	r.session = nil
	return r.beginLoad(), true
}

// ChangeLevel discards the session and returns to level selection.
// Valid in PhaseFinished and PhaseError.
func (r *Runner) ChangeLevel() bool {
	if r.phase != PhaseFinished && r.phase != PhaseError {
		return false
	}
	r.session = nil
	r.loadErr = nil
	r.level = ""
	r.phase = PhaseAwaitingLevel
	return true
}

// beginLoad enters PhaseLoading under a new generation. Bumping the
// generation makes any still-pending earlier fetch stale: its FinishLoad
// will be discarded, so the latest request always wins.
func (r *Runner) beginLoad() int {
	r.gen++
	r.loadErr = nil
	r.phase = PhaseLoading
	return r.gen
}

// FinishLoad delivers the result of the fetch started under gen. Stale
// completions (superseded generation, or the Runner no longer loading) are
// ignored. On success the Runner presents the first question; on failure it
// enters PhaseError.
func (r *Runner) FinishLoad(gen int, questions []model.Question, err error) {
	if r.phase != PhaseLoading || gen != r.gen {
		return
	}
	if err != nil {
		r.loadErr = err
		r.phase = PhaseError
		return
	}
	r.session = &Session{
		Level:     r.level,
		Questions: questions,
	}
	r.phase = PhaseAnswering
}

// SelectAnswer records the chosen option for the current question, scores it,
// and reveals the result. Valid only in PhaseAnswering with an option the
// question actually offers; anything else is a no-op, so a second click on
// an already-answered question cannot change the score.
func (r *Runner) SelectAnswer(option string) bool {
	if r.phase != PhaseAnswering {
		return false
	}
	q := r.session.Questions[r.session.CurrentIndex]
	if !slices.Contains(q.Options, option) {
		return false
	}
	r.session.SelectedAnswer = option
	if option == q.Answer {
		r.session.Score++
	}
	r.phase = PhaseRevealed
	return true
}

// SelectionCorrect reports whether the revealed selection was the answer.
func (r *Runner) SelectionCorrect() bool {
	if r.phase != PhaseRevealed {
		return false
	}
	q := r.session.Questions[r.session.CurrentIndex]
	return r.session.SelectedAnswer == q.Answer
}

// Advance moves to the next question, or finishes the session after the
// last one. Valid only in PhaseRevealed.
func (r *Runner) Advance() bool {
	if r.phase != PhaseRevealed {
		return false
	}
	if r.session.CurrentIndex+1 < len(r.session.Questions) {
		r.session.CurrentIndex++
		r.session.SelectedAnswer = ""
		r.phase = PhaseAnswering
		return true
	}
	r.session.Completed = true
	r.phase = PhaseFinished
	return true
}

// Percentage returns the final score as a rounded percentage of the total,
// e.g. 3 of 4 yields 75.
func (r *Runner) Percentage() int {
	if r.session == nil || len(r.session.Questions) == 0 {
		return 0
	}
	return int(math.Round(float64(r.session.Score) / float64(len(r.session.Questions)) * 100))
}
