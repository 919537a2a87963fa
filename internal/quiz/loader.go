package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand/v2"

	"github.com/google/uuid"

	"quizrun/internal/model"
)

// ErrNoQuestions means the fetched batch contained no usable records.
var ErrNoQuestions = errors.New("no questions available for this level")

// Service is the slice of the question service the loader depends on.
type Service interface {
	GetQuestions(ctx context.Context, level model.Level) ([]json.RawMessage, error)
}

// Loader fetches question batches and turns them into playable questions.
type Loader struct {
	svc   Service
	rng   *rand.Rand
	limit int
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithRand sets the random source used for shuffling. Inject a seeded
// source in tests to make option and question order deterministic.
func WithRand(rng *rand.Rand) LoaderOption {
	return func(l *Loader) {
		l.rng = rng
	}
}

// WithLimit caps the number of questions per session. Zero means no cap.
func WithLimit(n int) LoaderOption {
	return func(l *Loader) {
		l.limit = n
	}
}

// NewLoader creates a Loader backed by the given service.
func NewLoader(svc Service, opts ...LoaderOption) *Loader {
	l := &Loader{
		svc: svc,
		rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches the batch for a level and normalizes it. Records that fail to
// decode or miss required fields are skipped with a warning; they never abort
// the batch and never reach the user. Returns ErrNoQuestions when nothing
// usable remains, or the service's fetch error unchanged.
//
// Both the options within each question and the question order are shuffled
// with a uniform Fisher-Yates permutation.
func (l *Loader) Load(ctx context.Context, level model.Level) ([]model.Question, error) {
	records, err := l.svc.GetQuestions(ctx, level)
	if err != nil {
		return nil, err
	}

	questions := make([]model.Question, 0, len(records))
	for i, raw := range records {
		var rec model.RawQuestionRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			slog.Warn("skipping malformed question record", "index", i, "error", err)
			continue
		}
		if !rec.Valid() {
			slog.Warn("skipping incomplete question record", "index", i, "question", rec.Question)
			continue
		}
		questions = append(questions, l.build(rec))
	}

	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	l.rng.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})

	if l.limit > 0 && l.limit < len(questions) {
		questions = questions[:l.limit]
	}

	return questions, nil
}

// build assembles a Question from a validated record, shuffling the correct
// answer in among the distractors.
func (l *Loader) build(rec model.RawQuestionRecord) model.Question {
	options := make([]string, 0, len(rec.WrongAnswers)+1)
	options = append(options, rec.WrongAnswers...)
	options = append(options, rec.CorrectAnswer)

	l.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return model.Question{
		ID:          uuid.NewString(),
		Text:        rec.Question,
		Options:     options,
		Answer:      rec.CorrectAnswer,
		Explanation: rec.Explanation,
	}
}
