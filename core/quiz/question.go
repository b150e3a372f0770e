// Package quiz scores quiz attempts and drives a learner through a quiz, one question at a time.
package quiz

import (
	"math"
	"strings"

	"github.com/pkg/errors"
)

type Type string

const (
	MultipleChoice Type = "multiple-choice"
	TrueFalse      Type = "true-false"
	FillInTheBlank Type = "fill-in-the-blank"
)

var ErrInvalidAnswer = errors.New("invalid answer")

// Question is an immutable quiz question. Key holds the option index for multiple-choice,
// a boolean for true-false and the expected text for fill-in-the-blank.
type Question struct {
	Prompt      string   `json:"question" validate:"notblank"`
	Type        Type     `json:"type" validate:"oneof=multiple-choice true-false fill-in-the-blank"`
	Options     []string `json:"options,omitempty" validate:"omitempty,dive,notblank"`
	Key         Answer   `json:"answer"`
	Explanation string   `json:"explanation,omitempty"`
}

// Accepts reports whether a can be submitted for q; unset answers are accepted.
func (q Question) Accepts(a Answer) bool {
	switch a.kind {
	case KindUnset:
		return true
	case KindChoice:
		return q.Type == MultipleChoice && a.choice >= 0 && a.choice < len(q.Options)
	case KindTruth:
		return q.Type == TrueFalse
	case KindText:
		return q.Type == FillInTheBlank
	}
	return false
}

// IsCorrect compares a to the answer key: exact match for multiple-choice and true-false,
// case-insensitive and whitespace-trimmed for fill-in-the-blank.
func (q Question) IsCorrect(a Answer) bool {
	if !a.IsSet() || a.kind != q.Key.kind {
		return false
	}
	switch q.Type {
	case MultipleChoice:
		return a.choice == q.Key.choice
	case TrueFalse:
		return a.truth == q.Key.truth
	case FillInTheBlank:
		return normalizeText(a.text) == normalizeText(q.Key.text)
	}
	return false
}

// CheckAnswers verifies that answers fit questions: no more answers than questions, each of the right kind.
func CheckAnswers(questions []Question, answers []Answer) error {
	if len(answers) > len(questions) {
		return errors.Wrapf(ErrInvalidAnswer, "got %d answers for %d questions", len(answers), len(questions))
	}
	for i, a := range answers {
		if !questions[i].Accepts(a) {
			return errors.Wrapf(ErrInvalidAnswer, "question %d: %s answer for a %s question", i, a.kind, questions[i].Type)
		}
	}
	return nil
}

// Score returns round(100 * correct / len(questions)). answers[i] answers questions[i];
// missing and unset answers are wrong. A quiz without questions scores 0.
func Score(questions []Question, answers []Answer) int {
	if len(questions) == 0 {
		return 0
	}
	var correct int
	for i, q := range questions {
		if i < len(answers) && q.IsCorrect(answers[i]) {
			correct++
		}
	}
	return int(math.Round(100 * float64(correct) / float64(len(questions))))
}

func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
