package quiz

import (
	"context"

	"github.com/pkg/errors"
)

var (
	ErrNoQuestions      = errors.New("quiz has no questions")
	ErrAnswerRequired   = errors.New("answer the current question first")
	ErrResultsShown     = errors.New("quiz is finished")
	ErrNotFinished      = errors.New("quiz is not finished")
	ErrAlreadySubmitted = errors.New("quiz already submitted")
)

// Submitter receives the results of a finished quiz.
// answers is ordered by question, with unset values for unanswered questions.
type Submitter interface {
	SubmitQuiz(ctx context.Context, answers []Answer, score int) error
}

// ReviewItem is the read-only outcome of one question once results are shown.
type ReviewItem struct {
	Index    int      `json:"index"`
	Question Question `json:"question"`
	Answer   Answer   `json:"answer"`
	Correct  bool     `json:"correct"`
}

type Option func(*Runner)

// RequireBlankAnswers makes fill-in-the-blank questions block Next until answered,
// like the other question types.
func RequireBlankAnswers() Option {
	return func(r *Runner) { r.requireBlank = true }
}

// Runner walks a learner through an ordered list of questions.
// It is not safe for concurrent use.
type Runner struct {
	questions    []Question
	requireBlank bool

	current     int
	answers     map[int]Answer
	showResults bool
	score       int
	submitted   bool
}

func NewRunner(questions []Question, opts ...Option) (*Runner, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	r := &Runner{
		questions: questions,
		answers:   make(map[int]Answer, len(questions)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Runner) Len() int                { return len(r.questions) }
func (r *Runner) Current() int            { return r.current }
func (r *Runner) Question() Question      { return r.questions[r.current] }
func (r *Runner) IsLast() bool            { return r.current == len(r.questions)-1 }
func (r *Runner) ShowResults() bool       { return r.showResults }
func (r *Runner) Submitted() bool         { return r.submitted }
func (r *Runner) AnswerAt(idx int) Answer { return r.answers[idx] }

// Score is only meaningful once results are shown.
func (r *Runner) Score() int { return r.score }

// Answers returns the answers ordered by question.
func (r *Runner) Answers() []Answer {
	answers := make([]Answer, len(r.questions))
	for idx, a := range r.answers {
		answers[idx] = a
	}
	return answers
}

// Answer records or overwrites the answer to question idx. It does not move to another question.
// Setting an unset Answer clears it.
func (r *Runner) Answer(idx int, a Answer) error {
	if r.showResults {
		return ErrResultsShown
	}
	if idx < 0 || idx >= len(r.questions) {
		return errors.Wrapf(ErrInvalidAnswer, "no question %d", idx)
	}
	if !r.questions[idx].Accepts(a) {
		return errors.Wrapf(ErrInvalidAnswer, "%s answer for a %s question", a.kind, r.questions[idx].Type)
	}
	if a.IsSet() {
		r.answers[idx] = a
	} else {
		delete(r.answers, idx)
	}
	return nil
}

// CanAdvance reports whether Next may be called.
func (r *Runner) CanAdvance() bool {
	if r.showResults {
		return false
	}
	if _, ok := r.answers[r.current]; ok {
		return true
	}
	return r.questions[r.current].Type == FillInTheBlank && !r.requireBlank
}

// Next moves to the following question, or scores the quiz and shows results after the last one.
func (r *Runner) Next() error {
	if r.showResults {
		return ErrResultsShown
	}
	if !r.CanAdvance() {
		return ErrAnswerRequired
	}
	if r.IsLast() {
		r.score = Score(r.questions, r.Answers())
		r.showResults = true
		return nil
	}
	r.current++
	return nil
}

// Previous moves back one question; it is a no-op on the first one.
func (r *Runner) Previous() {
	if r.showResults || r.current == 0 {
		return
	}
	r.current--
}

func (r *Runner) Review() ([]ReviewItem, error) {
	if !r.showResults {
		return nil, ErrNotFinished
	}
	items := make([]ReviewItem, 0, len(r.questions))
	for i, q := range r.questions {
		a := r.answers[i]
		items = append(items, ReviewItem{
			Index:    i,
			Question: q,
			Answer:   a,
			Correct:  q.IsCorrect(a),
		})
	}
	return items, nil
}

// Submit hands the results to s. A failed submission may be retried.
func (r *Runner) Submit(ctx context.Context, s Submitter) error {
	if !r.showResults {
		return ErrNotFinished
	}
	if r.submitted {
		return ErrAlreadySubmitted
	}
	if err := s.SubmitQuiz(ctx, r.Answers(), r.score); err != nil {
		return errors.Wrap(err, "submitting quiz")
	}
	r.submitted = true
	return nil
}
