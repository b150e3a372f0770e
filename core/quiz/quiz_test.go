package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

func sampleQuestions() []Question {
	return []Question{
		{Prompt: "Powerhouse of the cell?", Type: MultipleChoice, Options: []string{"Mitochondria", "Nucleus"}, Key: Choice(0)},
		{Prompt: "DNA is a double helix.", Type: TrueFalse, Key: Truth(true)},
		{Prompt: "Capital of France?", Type: FillInTheBlank, Key: Text("Paris")},
	}
}

func TestScore(t *testing.T) {
	qs := sampleQuestions()

	tests := []struct {
		name    string
		answers []Answer
		want    int
	}{
		{name: "all correct, blank trimmed and case-insensitive", answers: []Answer{Choice(0), Truth(true), Text(" paris ")}, want: 100},
		{name: "all wrong", answers: []Answer{Choice(1), Truth(false), Text("Lyon")}, want: 0},
		{name: "one of three", answers: []Answer{Choice(0), Truth(false), Text("Lyon")}, want: 33},
		{name: "two of three", answers: []Answer{Choice(0), Truth(true), Text("")}, want: 67},
		{name: "unanswered count as wrong", answers: []Answer{Choice(0)}, want: 33},
		{name: "no answers", want: 0},
		{name: "wrong kind is wrong", answers: []Answer{Truth(true), Choice(0), Text("paris")}, want: 33},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(qs, tt.answers))
		})
	}

	assert.Equal(t, 0, Score(nil, nil))
}

func TestAnswer_JSON(t *testing.T) {
	var answers []Answer
	require.NoError(t, json.Unmarshal([]byte(`[0, true, " paris ", null]`), &answers))
	assert.Equal(t, []Answer{Choice(0), Truth(true), Text(" paris "), {}}, answers)

	data, err := json.Marshal(answers)
	require.NoError(t, err)
	assert.JSONEq(t, `[0, true, " paris ", null]`, string(data))

	var a Answer
	assert.Error(t, json.Unmarshal([]byte(`1.5`), &a))
	assert.Error(t, json.Unmarshal([]byte(`{"a": 1}`), &a))
}

func TestAnswer_YAML(t *testing.T) {
	var doc struct {
		Answers []Answer `yaml:"answers"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("answers: [2, false, Paris]"), &doc))
	assert.Equal(t, []Answer{Choice(2), Truth(false), Text("Paris")}, doc.Answers)
}

func TestParseKey(t *testing.T) {
	opts := []string{"Mitochondria", "Nucleus"}

	tests := []struct {
		name    string
		qtype   Type
		value   interface{}
		want    Answer
		wantErr bool
	}{
		{name: "mc index", qtype: MultipleChoice, value: float64(1), want: Choice(1)},
		{name: "mc option text", qtype: MultipleChoice, value: " nucleus", want: Choice(1)},
		{name: "mc numeric string", qtype: MultipleChoice, value: "0", want: Choice(0)},
		{name: "mc unknown option", qtype: MultipleChoice, value: "Ribosome", wantErr: true},
		{name: "mc bool", qtype: MultipleChoice, value: true, wantErr: true},
		{name: "tf bool", qtype: TrueFalse, value: false, want: Truth(false)},
		{name: "tf string", qtype: TrueFalse, value: "True", want: Truth(true)},
		{name: "tf garbage", qtype: TrueFalse, value: "maybe", wantErr: true},
		{name: "blank text", qtype: FillInTheBlank, value: "Paris", want: Text("Paris")},
		{name: "blank number", qtype: FillInTheBlank, value: 42, want: Text("42")},
		{name: "missing", qtype: FillInTheBlank, value: nil, wantErr: true},
		{name: "unknown type", qtype: "essay", value: "x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKey(tt.qtype, opts, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckAnswers(t *testing.T) {
	qs := sampleQuestions()

	assert.NoError(t, CheckAnswers(qs, []Answer{Choice(1), {}, Text("x")}))
	assert.NoError(t, CheckAnswers(qs, nil))
	assert.True(t, errors.Is(CheckAnswers(qs, []Answer{Choice(2)}), ErrInvalidAnswer), "option out of range")
	assert.True(t, errors.Is(CheckAnswers(qs, []Answer{Text("a")}), ErrInvalidAnswer), "wrong kind")
	assert.True(t, errors.Is(CheckAnswers(qs, make([]Answer, 4)), ErrInvalidAnswer), "too many answers")
}

type submitterFunc func(ctx context.Context, answers []Answer, score int) error

func (f submitterFunc) SubmitQuiz(ctx context.Context, answers []Answer, score int) error {
	return f(ctx, answers, score)
}

func TestRunner(t *testing.T) {
	_, err := NewRunner(nil)
	assert.Equal(t, ErrNoQuestions, err)

	r, err := NewRunner(sampleQuestions())
	require.NoError(t, err)

	// cannot leave an unanswered multiple-choice question
	assert.Equal(t, 0, r.Current())
	assert.False(t, r.CanAdvance())
	assert.Equal(t, ErrAnswerRequired, r.Next())

	r.Previous() // no-op at the boundary
	assert.Equal(t, 0, r.Current())

	assert.True(t, errors.Is(r.Answer(0, Truth(true)), ErrInvalidAnswer))
	assert.True(t, errors.Is(r.Answer(5, Choice(0)), ErrInvalidAnswer))

	// answering does not advance; overwriting is allowed
	require.NoError(t, r.Answer(0, Choice(1)))
	require.NoError(t, r.Answer(0, Choice(0)))
	assert.Equal(t, 0, r.Current())
	require.NoError(t, r.Next())
	assert.Equal(t, 1, r.Current())

	r.Previous()
	assert.Equal(t, 0, r.Current())
	assert.Equal(t, Choice(0), r.AnswerAt(0))
	require.NoError(t, r.Next())

	require.NoError(t, r.Answer(1, Truth(true)))
	require.NoError(t, r.Next())

	// fill-in-the-blank may be skipped
	assert.True(t, r.IsLast())
	assert.True(t, r.CanAdvance())

	_, err = r.Review()
	assert.Equal(t, ErrNotFinished, err)
	assert.Equal(t, ErrNotFinished, r.Submit(context.Background(), nil))

	require.NoError(t, r.Next())
	assert.True(t, r.ShowResults())
	assert.Equal(t, 67, r.Score())
	assert.Equal(t, ErrResultsShown, r.Next())
	assert.Equal(t, ErrResultsShown, r.Answer(2, Text("Paris")))

	review, err := r.Review()
	require.NoError(t, err)
	require.Len(t, review, 3)
	assert.True(t, review[0].Correct)
	assert.True(t, review[1].Correct)
	assert.False(t, review[2].Correct)
	assert.False(t, review[2].Answer.IsSet())

	// a failed submission can be retried
	var calls int
	var got []Answer
	var gotScore int
	s := submitterFunc(func(_ context.Context, answers []Answer, score int) error {
		calls++
		if calls == 1 {
			return errors.New("network down")
		}
		got, gotScore = answers, score
		return nil
	})
	assert.Error(t, r.Submit(context.Background(), s))
	assert.False(t, r.Submitted())
	require.NoError(t, r.Submit(context.Background(), s))
	assert.Equal(t, []Answer{Choice(0), Truth(true), {}}, got)
	assert.Equal(t, 67, gotScore)
	assert.Equal(t, ErrAlreadySubmitted, r.Submit(context.Background(), s))
	assert.Equal(t, 2, calls)
}

func TestRunner_RequireBlankAnswers(t *testing.T) {
	r, err := NewRunner([]Question{{Prompt: "Capital of France?", Type: FillInTheBlank, Key: Text("Paris")}}, RequireBlankAnswers())
	require.NoError(t, err)

	assert.Equal(t, ErrAnswerRequired, r.Next())
	require.NoError(t, r.Answer(0, Text("PARIS ")))
	require.NoError(t, r.Next())
	assert.Equal(t, 100, r.Score())
}

func TestRunner_ClearAnswer(t *testing.T) {
	r, err := NewRunner(sampleQuestions()[:1])
	require.NoError(t, err)

	require.NoError(t, r.Answer(0, Choice(0)))
	assert.True(t, r.CanAdvance())
	require.NoError(t, r.Answer(0, Answer{}))
	assert.False(t, r.CanAdvance())
}
