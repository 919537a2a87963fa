package model

import "time"

// Level identifies a difficulty tier used to select a question set.
// It is opaque to the client beyond being passable to the question service,
// and immutable for the duration of a quiz run.
type Level string

// Common difficulty labels. The question service may define others;
// these are only the defaults offered by the level menu.
const (
	LevelEasy   Level = "easy"
	LevelMedium Level = "medium"
	LevelHard   Level = "hard"
)

// RawQuestionRecord is one multiple-choice question as delivered by the
// question service. Field names match the external JSON payload.
type RawQuestionRecord struct {
	Question      string   `json:"question"`
	CorrectAnswer string   `json:"correctAnswer"`
	WrongAnswers  []string `json:"wrongAnswers"`
	Explanation   string   `json:"explanation,omitempty"`
}

// Valid reports whether the record carries everything a playable question
// needs: a question text, a correct answer, and at least one distractor.
func (r RawQuestionRecord) Valid() bool {
	if r.Question == "" || r.CorrectAnswer == "" || len(r.WrongAnswers) == 0 {
		return false
	}
	for _, w := range r.WrongAnswers {
		if w == "" {
			return false
		}
	}
	return true
}

// Question is the normalized form presented to the player.
// Answer is always a member of Options; the option order is randomized
// when the question is built and carries no meaning across re-fetches.
type Question struct {
	ID          string
	Text        string
	Options     []string
	Answer      string
	Explanation string
}

// QuizConfig holds runtime quiz parameters set via CLI flags.
type QuizConfig struct {
	ServiceURL   string        // Base URL of the question service
	Levels       []Level       // Levels offered by the selection menu
	NumQuestions int           // Cap per session, 0 means all fetched
	Timeout      time.Duration // Per-fetch HTTP timeout
	Lang         string        // UI language (en, ru)
}
