package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Damian-Sonwa/Academician-hub-sub001/client"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/content"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/quiz"
)

var questions = []quiz.Question{
	{Prompt: "Powerhouse of the cell?", Type: quiz.MultipleChoice, Options: []string{"Mitochondria", "Nucleus"}, Key: quiz.Choice(0)},
	{Prompt: "Cells have membranes.", Type: quiz.TrueFalse, Key: quiz.Truth(true)},
	{Prompt: "Plants store energy as ___.", Type: quiz.FillInTheBlank, Key: quiz.Text("Starch"), Explanation: "Starch is a polysaccharide."},
}

type fakeSubmitter struct {
	failures int
	calls    int
	answers  []quiz.Answer
	score    int
}

func (s *fakeSubmitter) SubmitQuiz(_ context.Context, answers []quiz.Answer, score int) error {
	s.calls++
	if s.calls <= s.failures {
		return &client.NetworkError{Method: "POST", URL: "http://api", Attempts: 1, Err: errors.New("connection refused")}
	}
	s.answers, s.score = answers, score
	return nil
}

func newTestLearner(input string) (*learner, *bytes.Buffer) {
	out := new(bytes.Buffer)
	sess := client.NewSession(client.New(client.Options{BaseURL: "http://localhost:0"}))
	return newLearner(sess, strings.NewReader(input), out, "biology", content.LevelBeginner), out
}

func Test_learner_runQuiz(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		failures    int
		wantErr     bool
		wantScore   int
		wantAnswers []quiz.Answer
		wantOutput  []string
	}{
		{
			name:        "all correct",
			input:       "1\ntrue\n starch \n",
			wantScore:   100,
			wantAnswers: []quiz.Answer{quiz.Choice(0), quiz.Truth(true), quiz.Text("starch")},
			wantOutput:  []string{"Question 1/3", "  2. Nucleus", "3/3 correct. Score: 100%"},
		},
		{
			name:        "invalid answers, back and skipped blank",
			input:       "3\n\n2\n:prev\n1\nmaybe\nf\n\n",
			wantScore:   33,
			wantAnswers: []quiz.Answer{quiz.Choice(0), quiz.Truth(false), {}},
			wantOutput: []string{
				"pick an option between 1 and 2",
				"Answer the question first.",
				"(current answer: Nucleus)",
				"answer true or false",
				"[x] 3. Plants store energy as ___.: - (expected Starch)",
				"    Starch is a polysaccharide.",
				"1/3 correct. Score: 33%",
			},
		},
		{
			name:        "submission retried",
			input:       "1\ntrue\nstarch\ny\n",
			failures:    1,
			wantScore:   100,
			wantAnswers: []quiz.Answer{quiz.Choice(0), quiz.Truth(true), quiz.Text("starch")},
			wantOutput:  []string{"Cannot reach the server, try again later."},
		},
		{
			name:       "submission abandoned",
			input:      "1\ntrue\nstarch\nn\n",
			failures:   1,
			wantErr:    true,
			wantOutput: []string{"Retry? [y/N]"},
		},
		{
			name:    "input closed",
			input:   "1\n",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, out := newTestLearner(tt.input)
			sub := &fakeSubmitter{failures: tt.failures}

			err := l.runQuiz(context.Background(), questions, sub)
			for _, want := range tt.wantOutput {
				assert.Contains(t, out.String(), want)
			}
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantScore, sub.score)
			assert.Equal(t, tt.wantAnswers, sub.answers)
		})
	}
}

func Test_learner_run(t *testing.T) {
	l, out := newTestLearner("\nweeks\nopen two\nquiz 1\nlol\nhelp\nquit\nweeks\n")
	l.run(context.Background())

	assert.Equal(t, 1, strings.Count(out.String(), "Not connected."))
	assert.Equal(t, 2, strings.Count(out.String(), "wrong arguments, type help"))
	assert.Contains(t, out.String(), "unknown command, type help")
	assert.Equal(t, 2, strings.Count(out.String(), "Commands:"))
}

func Test_notification(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: &client.AccessDeniedError{RequiredWeek: 2, Message: "previous week must be completed before accessing this week"}, want: "Locked: complete week 2 first."},
		{err: errors.Wrap(client.ErrNotFound, "week not found"), want: "Not found."},
		{err: errors.Wrap(client.ErrUnauthorized, "invalid or expired jwt"), want: "Your session expired, log in again."},
		{err: &client.ValidationError{Fields: map[string]string{"score": "must be between 0 and 100"}}, want: "Rejected: score: must be between 0 and 100"},
		{err: errors.New("boom"), want: "Error: boom"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, notification(tt.err))
	}
}
